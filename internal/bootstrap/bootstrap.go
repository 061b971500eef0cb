// Package bootstrap arma los casos de uso a partir de la configuración.
// Lo comparten la API y el job de retención.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jhoicas/clinic-ledger/internal/application/access"
	"github.com/jhoicas/clinic-ledger/internal/application/audit"
	"github.com/jhoicas/clinic-ledger/internal/application/inventory"
	"github.com/jhoicas/clinic-ledger/internal/domain/repository"
	"github.com/jhoicas/clinic-ledger/internal/infrastructure/dynamo"
	"github.com/jhoicas/clinic-ledger/internal/infrastructure/kafka"
	"github.com/jhoicas/clinic-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/clinic-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/clinic-ledger/internal/infrastructure/objectstore"
	"github.com/jhoicas/clinic-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/clinic-ledger/pkg/clock"
	"github.com/jhoicas/clinic-ledger/pkg/config"
	"github.com/jhoicas/clinic-ledger/pkg/logger"
)

// Services casos de uso listos para servir.
type Services struct {
	Ledger  *inventory.LedgerUseCase
	Trail   *audit.TrailUseCase
	Clock   clock.Clock
	Metrics *metrics.Ledger // nil si METRICS_ENABLED=false

	closers []func()
}

// Close libera conexiones en orden inverso a su apertura.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// Stores par de repositorios sobre el mismo backend.
type Stores struct {
	Records repository.InventoryRecordRepository
	Audit   repository.AuditLogRepository
}

// OpenStores abre el backend elegido por STORE_DRIVER.
func OpenStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (Stores, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		dsn := cfg.DB.ConnectionString()
		if cfg.DB.Migrate {
			if err := postgres.Migrate(dsn, log.Component("migrate")); err != nil {
				return Stores{}, nil, err
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return Stores{}, nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		return Stores{
			Records: postgres.NewInventoryRecordRepository(pool),
			Audit:   postgres.NewAuditLogRepository(pool),
		}, pool.Close, nil

	case config.DriverDynamoDB:
		client, err := dynamo.NewClient(ctx, cfg.Dynamo)
		if err != nil {
			return Stores{}, nil, fmt.Errorf("cliente DynamoDB: %w", err)
		}
		store := dynamo.NewStore(client, cfg.Dynamo.RecordsTable, cfg.Dynamo.AuditTable)
		return Stores{Records: store, Audit: store}, func() {}, nil

	default:
		store := memory.NewStore()
		return Stores{Records: store, Audit: store}, func() {}, nil
	}
}

// Build abre el store, los adaptadores opcionales (Kafka, S3, métricas) y
// construye los casos de uso.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Services, error) {
	svc := &Services{Clock: clock.NewMonotonic()}

	stores, closeStores, err := OpenStores(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	svc.closers = append(svc.closers, closeStores)
	log.Info().Str("driver", cfg.Store.Driver).Msg("almacenamiento listo")

	var opts []audit.Option
	if cfg.Kafka.Enabled() {
		pub := kafka.NewAuditPublisher(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		svc.closers = append(svc.closers, func() {
			if err := pub.Close(); err != nil {
				log.Warn().Err(err).Msg("cerrar publicador de auditoría")
			}
		})
		opts = append(opts, audit.WithPublisher(pub))
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.AuditTopic).Msg("stream de auditoría habilitado")
	}
	if cfg.S3.Enabled() {
		sink, err := objectstore.NewS3Sink(ctx, cfg.S3)
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("destino S3: %w", err)
		}
		opts = append(opts, audit.WithSink(sink))
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("exportación a S3 habilitada")
	}

	var m inventory.Metrics
	if cfg.Metrics.Enabled {
		svc.Metrics = metrics.NewLedger("clinic")
		m = svc.Metrics
	}

	scope := access.NewScopeUseCase()
	svc.Trail = audit.NewTrailUseCase(stores.Audit, scope, svc.Clock, clock.UUIDv7{}, log.Component("audit"), opts...)
	policy := inventory.RetryPolicy{
		MaxAttempts:  cfg.Ledger.MaxAttempts,
		BaseBackoff:  cfg.Ledger.BaseBackoff,
		MaxBackoff:   cfg.Ledger.MaxBackoff,
		StoreTimeout: cfg.Ledger.StoreTimeout,
	}
	svc.Ledger = inventory.NewLedgerUseCase(stores.Records, scope, svc.Trail, svc.Clock, policy, m, log.Component("ledger"))
	return svc, nil
}
