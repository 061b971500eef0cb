// Package kafka publica las entradas de auditoría confirmadas en un tópico.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/clinic-ledger/internal/domain/entity"
)

// messageWriter lo que el publicador necesita de *kafka.Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// AuditPublisher escribe cada entrada como JSON; la clave es la clínica.
type AuditPublisher struct {
	writer messageWriter
}

// NewAuditPublisher crea el productor sobre brokers y topic.
func NewAuditPublisher(brokers []string, topic string) *AuditPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
	}
	return &AuditPublisher{writer: writer}
}

// Publish envía la entrada. La clave por clínica mantiene el orden dentro de ella.
func (p *AuditPublisher) Publish(ctx context.Context, e *entity.AuditLogEntry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal audit log: %w", err)
	}
	key := e.ClinicIDValue()
	if key == "" {
		key = "system"
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  e.Timestamp,
		Headers: []kafka.Header{
			{Key: "log_id", Value: []byte(e.LogID)},
			{Key: "action_type", Value: []byte(e.ActionType)},
		},
	})
}

// Close cierra el productor.
func (p *AuditPublisher) Close() error {
	return p.writer.Close()
}
