package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/clinic-ledger/internal/domain/entity"
)

type captureWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublish_ClavePorClinica(t *testing.T) {
	w := &captureWriter{}
	p := &AuditPublisher{writer: w}
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, p.Publish(context.Background(), &entity.AuditLogEntry{
		LogID: "log-1", Timestamp: ts, ClinicID: entity.ClinicRef("C1"), ActionType: entity.ActionInventoryConsumed,
	}))
	require.NoError(t, p.Publish(context.Background(), &entity.AuditLogEntry{
		LogID: "log-2", Timestamp: ts, ActionType: entity.ActionAuditCleanup,
	}))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, "C1", string(w.msgs[0].Key))
	assert.Equal(t, "system", string(w.msgs[1].Key))
	assert.Equal(t, ts, w.msgs[0].Time)
	assert.Equal(t, "log-1", string(w.msgs[0].Headers[0].Value))

	var back entity.AuditLogEntry
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &back))
	assert.Equal(t, entity.ActionInventoryConsumed, back.ActionType)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}
