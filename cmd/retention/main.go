// Job de retención: exporta a S3 lo que va a vencer y luego depura la bitácora.
// Uso: go run ./cmd/retention [-dry-run] [-skip-export]
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/clinic-ledger/internal/bootstrap"
	"github.com/jhoicas/clinic-ledger/internal/domain/entity"
	"github.com/jhoicas/clinic-ledger/internal/domain/repository"
	"github.com/jhoicas/clinic-ledger/pkg/config"
	"github.com/jhoicas/clinic-ledger/pkg/logger"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "solo cuenta lo que se borraría")
	skipExport := flag.Bool("skip-export", false, "no exporta a S3 antes de borrar")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Service: "retention"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar servicios")
	}
	defer svc.Close()

	actor := entity.SystemActor("retention-job")
	before := svc.Clock.Now().AddDate(0, 0, -cfg.Audit.RetentionDays)

	if !*skipExport && cfg.S3.Enabled() {
		res, err := svc.Trail.ExportToSink(ctx, actor, repository.AuditFilter{To: &before})
		if err != nil {
			log.Fatal().Err(err).Msg("exportar antes de depurar")
		}
		log.Info().Str("key", res.Key).Int("count", res.Count).Msg("exportación enviada")
	}

	res, err := svc.Trail.Cleanup(ctx, actor, before, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("depurar auditoría")
	}
	log.Info().
		Int("deleted", res.Deleted).
		Bool("dry_run", res.DryRun).
		Str("before", res.Before.Format(time.RFC3339)).
		Msg("retención completada")
}
