package service

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/loopworks/therapysync/internal/audit/domain"
	"github.com/loopworks/therapysync/internal/records/storage"
	"github.com/loopworks/therapysync/internal/store/ops"
)

func (s *Service) GetUserEntriesFrom(ctx context.Context, from int64, includeMaintenance bool, limit int) ([]auditdomain.UserEntry, error) {
	return s.audit.List(ctx, auditdomain.ListRequest{
		FromTimestamp:      from,
		IncludeMaintenance: includeMaintenance,
		Limit:              limit,
	})
}

type tableOp struct {
	table string
	purge func(context.Context, *gorm.DB, int64) (int64, error)
	clear func(context.Context, *gorm.DB) error
}

func recordTables() []tableOp {
	return []tableOp{
		{"boluses", ops.PurgeOlderThan[storage.Bolus], ops.ClearTable[storage.Bolus]},
		{"carbs", ops.PurgeOlderThan[storage.Carbs], ops.ClearTable[storage.Carbs]},
		{"bolus_calculator_results", ops.PurgeOlderThan[storage.BolusCalculatorResult], ops.ClearTable[storage.BolusCalculatorResult]},
		{"extended_boluses", ops.PurgeOlderThan[storage.ExtendedBolus], ops.ClearTable[storage.ExtendedBolus]},
		{"temporary_basals", ops.PurgeOlderThan[storage.TemporaryBasal], ops.ClearTable[storage.TemporaryBasal]},
		{"temporary_targets", ops.PurgeOlderThan[storage.TemporaryTarget], ops.ClearTable[storage.TemporaryTarget]},
		{"therapy_events", ops.PurgeOlderThan[storage.TherapyEvent], ops.ClearTable[storage.TherapyEvent]},
		{"profile_switches", ops.PurgeOlderThan[storage.ProfileSwitch], ops.ClearTable[storage.ProfileSwitch]},
		{"effective_profile_switches", ops.PurgeOlderThan[storage.EffectiveProfileSwitch], ops.ClearTable[storage.EffectiveProfileSwitch]},
		{"glucose_values", ops.PurgeOlderThan[storage.GlucoseValue], ops.ClearTable[storage.GlucoseValue]},
		{"running_modes", ops.PurgeOlderThan[storage.RunningMode], ops.ClearTable[storage.RunningMode]},
		{"foods", ops.PurgeOlderThan[storage.Food], ops.ClearTable[storage.Food]},
		{"device_statuses", ops.PurgeOlderThan[storage.DeviceStatus], ops.ClearTable[storage.DeviceStatus]},
		{"heart_rates", ops.PurgeOlderThan[storage.HeartRate], ops.ClearTable[storage.HeartRate]},
		{"steps_counts", ops.PurgeOlderThan[storage.StepsCount], ops.ClearTable[storage.StepsCount]},
		{"total_daily_doses", ops.PurgeOlderThan[storage.TotalDailyDose], ops.ClearTable[storage.TotalDailyDose]},
	}
}

// CleanupOldEntries physically deletes records older than the retention
// window. The purge is the only mutation path that removes rows; it
// leaves one maintenance entry in the audit log when anything went.
func (s *Service) CleanupOldEntries(ctx context.Context) (int64, error) {
	cutoff := s.clock.Now().AddDate(0, 0, -s.cfg.RetentionDays).UnixMilli()

	var total int64
	for _, t := range recordTables() {
		n, err := t.purge(ctx, s.db, cutoff)
		if err != nil {
			s.log.Error("retention purge failed",
				zap.String("table", t.table),
				zap.Int64("cutoff", cutoff),
				zap.Error(err),
			)
			return total, err
		}
		total += n
	}

	if total > 0 {
		s.log.Info("retention purge done",
			zap.Int64("rows", total),
			zap.Int64("cutoff", cutoff),
		)
		s.logAudit(ctx, []auditdomain.Entry{{
			Action: auditdomain.ActionCleanup,
			Source: auditdomain.SourceAutomation,
			Values: []auditdomain.ValueWithUnit{auditdomain.Timestamp(cutoff)},
		}})
	}
	return total, nil
}

// ClearDatabase wipes every record table and the audit log. Reset only.
func (s *Service) ClearDatabase(ctx context.Context) error {
	for _, t := range recordTables() {
		if err := t.clear(ctx, s.db); err != nil {
			s.log.Error("table clear failed", zap.String("table", t.table), zap.Error(err))
			return err
		}
	}
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&auditdomain.UserEntry{}).Error; err != nil {
		s.log.Error("table clear failed", zap.String("table", "user_entries"), zap.Error(err))
		return err
	}
	s.log.Warn("database cleared")
	return nil
}
