package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/clinic-ledger/internal/application/audit"
	"github.com/jhoicas/clinic-ledger/internal/domain/entity"
	"github.com/jhoicas/clinic-ledger/internal/domain/repository"
	"github.com/jhoicas/clinic-ledger/internal/domain/validation"
)

// ReconcileReport resultado de una reconciliación.
type ReconcileReport struct {
	ClinicID string
	Checked  int
	Repaired []string // product_id con entrada compensatoria
}

// Reconcile compara la versión de cada registro de la clínica con el after.version
// de su última entrada de éxito. Si difieren (un cambio sin rastro en la bitácora),
// agrega una entrada inventory_audit_repaired con la foto actual.
func (uc *LedgerUseCase) Reconcile(ctx context.Context, actor entity.Actor, clinicID string) (*ReconcileReport, error) {
	if err := uc.authorize(ctx, actor, clinicID, "", entity.PermInventoryReconcile); err != nil {
		return nil, err
	}
	var v validation.Validator
	v.Add(validation.Required("clinic_id", clinicID))
	if err := v.Err(); err != nil {
		return nil, err
	}

	var records []*entity.InventoryRecord
	err := uc.ctrl.call(ctx, func(cctx context.Context) error {
		var err error
		records, err = uc.repo.ListByClinic(cctx, clinicID)
		return err
	})
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{ClinicID: clinicID, Repaired: []string{}}
	for _, rec := range records {
		report.Checked++
		logged, err := uc.lastLoggedSnapshot(ctx, rec)
		if err != nil {
			return report, err
		}
		if logged != nil && logged.Version == rec.Version {
			continue
		}
		var loggedVersion int64
		if logged != nil {
			loggedVersion = logged.Version
		}
		err = uc.trail.Append(ctx, &entity.AuditLogEntry{
			ActorID:      actor.ID,
			ClinicID:     entity.ClinicRef(clinicID),
			ActionType:   entity.ActionAuditRepaired,
			ResourceType: entity.ResourceInventoryRecord,
			ResourceID:   entity.InventoryResourceID(clinicID, rec.ProductID),
			Details: entity.AuditDetails{
				ProductID: rec.ProductID,
				Before:    logged,
				After:     rec.Snapshot(),
				Reason:    fmt.Sprintf("la bitácora registraba la versión %d y el registro está en la %d", loggedVersion, rec.Version),
			},
			Severity: entity.SeverityWarning,
			Status:   entity.StatusSuccess,
		})
		if err != nil {
			return report, err
		}
		uc.log.Warn().Str("clinic_id", clinicID).Str("product_id", rec.ProductID).
			Int64("logged_version", loggedVersion).Int64("version", rec.Version).Msg("auditoría reparada")
		report.Repaired = append(report.Repaired, rec.ProductID)
	}
	return report, nil
}

// lastLoggedSnapshot busca el after de la entrada de éxito más reciente del registro.
func (uc *LedgerUseCase) lastLoggedSnapshot(ctx context.Context, rec *entity.InventoryRecord) (*entity.Snapshot, error) {
	filter := repository.AuditFilter{
		ClinicID:     rec.ClinicID,
		ResourceType: entity.ResourceInventoryRecord,
		ResourceID:   entity.InventoryResourceID(rec.ClinicID, rec.ProductID),
		Status:       entity.StatusSuccess,
		Limit:        audit.DefaultLimit,
	}
	for {
		var page []*entity.AuditLogEntry
		var total int
		err := uc.ctrl.call(ctx, func(cctx context.Context) error {
			var err error
			page, total, err = uc.trail.Repository().Query(cctx, filter)
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, e := range page {
			if e.Details.After != nil {
				return e.Details.After, nil
			}
		}
		filter.Offset += len(page)
		if len(page) == 0 || filter.Offset >= total {
			return nil, nil
		}
	}
}
