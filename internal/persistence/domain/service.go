// Package domain defines the call contract of the synchronization and
// audit facade: one coarse-grained method per record type and mutation
// kind. Callers never reach the transaction operations directly.
package domain

import (
	"context"
	"errors"

	auditdomain "github.com/loopworks/therapysync/internal/audit/domain"
	records "github.com/loopworks/therapysync/internal/records/domain"
)

// Provenance is the caller-supplied audit metadata attached to a
// mutation: what happened, which subsystem did it, and the ordered value
// snapshots shown in the history browser.
type Provenance struct {
	Action auditdomain.Action
	Source auditdomain.Source
	Note   string
	Values []auditdomain.ValueWithUnit
}

// Result aliases the categorized outcome aggregate per domain type.
type Result[T any] = records.TransactionResult[T]

// Service is the synchronization and audit facade.
//
// Every method executes its store interaction on the database connection
// pool, off the caller's goroutine state, and is cooperatively
// cancellable through ctx. Store failures are logged with full record
// context and re-thrown unchanged; a returned result with empty
// categories means the call completed but matched no applicable state.
type Service interface {
	// Bolus
	InsertOrUpdateBolus(ctx context.Context, bolus records.Bolus, prov Provenance) (*Result[records.Bolus], error)
	SyncPumpBolus(ctx context.Context, bolus records.Bolus) (*Result[records.Bolus], error)
	SyncRemoteBoluses(ctx context.Context, boluses []records.Bolus, doLog bool) (*Result[records.Bolus], error)
	UpdateBolusRemoteIDs(ctx context.Context, boluses []records.Bolus) (*Result[records.Bolus], error)
	InvalidateBolus(ctx context.Context, id int64, prov Provenance) (*Result[records.Bolus], error)
	GetBolusesFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.Bolus, error)
	GetNewestBolus(ctx context.Context) (*records.Bolus, error)

	// Carbs
	InsertOrUpdateCarbs(ctx context.Context, carbs records.Carbs, prov Provenance) (*Result[records.Carbs], error)
	SyncRemoteCarbs(ctx context.Context, carbs []records.Carbs, doLog bool) (*Result[records.Carbs], error)
	UpdateCarbsRemoteIDs(ctx context.Context, carbs []records.Carbs) (*Result[records.Carbs], error)
	InvalidateCarbs(ctx context.Context, id int64, prov Provenance) (*Result[records.Carbs], error)
	GetCarbsFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.Carbs, error)

	// Bolus calculator results
	InsertOrUpdateBolusCalculatorResult(ctx context.Context, result records.BolusCalculatorResult, prov Provenance) (*Result[records.BolusCalculatorResult], error)
	SyncRemoteBolusCalculatorResults(ctx context.Context, results []records.BolusCalculatorResult, doLog bool) (*Result[records.BolusCalculatorResult], error)
	UpdateBolusCalculatorResultRemoteIDs(ctx context.Context, results []records.BolusCalculatorResult) (*Result[records.BolusCalculatorResult], error)
	InvalidateBolusCalculatorResult(ctx context.Context, id int64, prov Provenance) (*Result[records.BolusCalculatorResult], error)
	GetBolusCalculatorResultsFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.BolusCalculatorResult, error)

	// Extended boluses
	SyncPumpExtendedBolus(ctx context.Context, bolus records.ExtendedBolus) (*Result[records.ExtendedBolus], error)
	SyncRemoteExtendedBoluses(ctx context.Context, boluses []records.ExtendedBolus, doLog bool) (*Result[records.ExtendedBolus], error)
	UpdateExtendedBolusRemoteIDs(ctx context.Context, boluses []records.ExtendedBolus) (*Result[records.ExtendedBolus], error)
	InvalidateExtendedBolus(ctx context.Context, id int64, prov Provenance) (*Result[records.ExtendedBolus], error)
	CancelCurrentExtendedBolusIfAny(ctx context.Context, at int64, prov Provenance) (*Result[records.ExtendedBolus], error)
	GetExtendedBolusActiveAt(ctx context.Context, at int64) (*records.ExtendedBolus, error)
	GetExtendedBolusesFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.ExtendedBolus, error)

	// Temporary basals
	InsertAndCancelCurrentTemporaryBasal(ctx context.Context, basal records.TemporaryBasal, prov Provenance) (*Result[records.TemporaryBasal], error)
	SyncPumpTemporaryBasal(ctx context.Context, basal records.TemporaryBasal) (*Result[records.TemporaryBasal], error)
	SyncRemoteTemporaryBasals(ctx context.Context, basals []records.TemporaryBasal, doLog bool) (*Result[records.TemporaryBasal], error)
	UpdateTemporaryBasalRemoteIDs(ctx context.Context, basals []records.TemporaryBasal) (*Result[records.TemporaryBasal], error)
	InvalidateTemporaryBasal(ctx context.Context, id int64, prov Provenance) (*Result[records.TemporaryBasal], error)
	CancelCurrentTemporaryBasalIfAny(ctx context.Context, at int64, prov Provenance) (*Result[records.TemporaryBasal], error)
	GetTemporaryBasalActiveAt(ctx context.Context, at int64) (*records.TemporaryBasal, error)
	GetTemporaryBasalsFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.TemporaryBasal, error)

	// Temporary targets
	InsertAndCancelCurrentTemporaryTarget(ctx context.Context, target records.TemporaryTarget, prov Provenance) (*Result[records.TemporaryTarget], error)
	SyncRemoteTemporaryTargets(ctx context.Context, targets []records.TemporaryTarget, doLog bool) (*Result[records.TemporaryTarget], error)
	UpdateTemporaryTargetRemoteIDs(ctx context.Context, targets []records.TemporaryTarget) (*Result[records.TemporaryTarget], error)
	InvalidateTemporaryTarget(ctx context.Context, id int64, prov Provenance) (*Result[records.TemporaryTarget], error)
	CancelCurrentTemporaryTargetIfAny(ctx context.Context, at int64, prov Provenance) (*Result[records.TemporaryTarget], error)
	GetTemporaryTargetActiveAt(ctx context.Context, at int64) (*records.TemporaryTarget, error)
	GetTemporaryTargetsFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.TemporaryTarget, error)

	// Therapy events
	InsertOrUpdateTherapyEvent(ctx context.Context, event records.TherapyEvent, prov Provenance) (*Result[records.TherapyEvent], error)
	SyncRemoteTherapyEvents(ctx context.Context, events []records.TherapyEvent, doLog bool) (*Result[records.TherapyEvent], error)
	UpdateTherapyEventRemoteIDs(ctx context.Context, events []records.TherapyEvent) (*Result[records.TherapyEvent], error)
	InvalidateTherapyEvent(ctx context.Context, id int64, prov Provenance) (*Result[records.TherapyEvent], error)
	GetTherapyEventsFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.TherapyEvent, error)

	// Profile switches
	InsertOrUpdateProfileSwitch(ctx context.Context, profileSwitch records.ProfileSwitch, prov Provenance) (*Result[records.ProfileSwitch], error)
	SyncRemoteProfileSwitches(ctx context.Context, switches []records.ProfileSwitch, doLog bool) (*Result[records.ProfileSwitch], error)
	UpdateProfileSwitchRemoteIDs(ctx context.Context, switches []records.ProfileSwitch) (*Result[records.ProfileSwitch], error)
	InvalidateProfileSwitch(ctx context.Context, id int64, prov Provenance) (*Result[records.ProfileSwitch], error)
	GetProfileSwitchesFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.ProfileSwitch, error)

	// Effective profile switches
	InsertEffectiveProfileSwitch(ctx context.Context, profileSwitch records.EffectiveProfileSwitch, prov Provenance) (*Result[records.EffectiveProfileSwitch], error)
	SyncRemoteEffectiveProfileSwitches(ctx context.Context, switches []records.EffectiveProfileSwitch, doLog bool) (*Result[records.EffectiveProfileSwitch], error)
	UpdateEffectiveProfileSwitchRemoteIDs(ctx context.Context, switches []records.EffectiveProfileSwitch) (*Result[records.EffectiveProfileSwitch], error)
	InvalidateEffectiveProfileSwitch(ctx context.Context, id int64, prov Provenance) (*Result[records.EffectiveProfileSwitch], error)
	GetEffectiveProfileSwitchesFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.EffectiveProfileSwitch, error)

	// Glucose values
	SyncCGMValues(ctx context.Context, values []records.GlucoseValue, calibrations []records.Calibration, sensorInsertionTime *int64, source auditdomain.Source) (*Result[records.GlucoseValue], error)
	SyncRemoteGlucoseValues(ctx context.Context, values []records.GlucoseValue, doLog bool) (*Result[records.GlucoseValue], error)
	UpdateGlucoseValueRemoteIDs(ctx context.Context, values []records.GlucoseValue) (*Result[records.GlucoseValue], error)
	InvalidateGlucoseValue(ctx context.Context, id int64, prov Provenance) (*Result[records.GlucoseValue], error)
	GetGlucoseValuesFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.GlucoseValue, error)
	GetNewestGlucoseValue(ctx context.Context) (*records.GlucoseValue, error)

	// Running modes
	InsertAndCancelCurrentRunningMode(ctx context.Context, mode records.RunningMode, prov Provenance) (*Result[records.RunningMode], error)
	SyncRemoteRunningModes(ctx context.Context, modes []records.RunningMode, doLog bool) (*Result[records.RunningMode], error)
	UpdateRunningModeRemoteIDs(ctx context.Context, modes []records.RunningMode) (*Result[records.RunningMode], error)
	InvalidateRunningMode(ctx context.Context, id int64, prov Provenance) (*Result[records.RunningMode], error)
	GetRunningModeActiveAt(ctx context.Context, at int64) (*records.RunningMode, error)
	GetRunningModesFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.RunningMode, error)

	// Food
	InsertOrUpdateFood(ctx context.Context, food records.Food, prov Provenance) (*Result[records.Food], error)
	SyncRemoteFoods(ctx context.Context, foods []records.Food, doLog bool) (*Result[records.Food], error)
	UpdateFoodRemoteIDs(ctx context.Context, foods []records.Food) (*Result[records.Food], error)
	InvalidateFood(ctx context.Context, id int64, prov Provenance) (*Result[records.Food], error)
	GetFoodsFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.Food, error)

	// Device statuses (insert-only)
	InsertDeviceStatus(ctx context.Context, status records.DeviceStatus) (*Result[records.DeviceStatus], error)
	UpdateDeviceStatusRemoteIDs(ctx context.Context, statuses []records.DeviceStatus) (*Result[records.DeviceStatus], error)
	GetDeviceStatusesFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.DeviceStatus, error)

	// Heart rate / steps (wearable sync)
	InsertOrUpdateHeartRate(ctx context.Context, rate records.HeartRate, prov Provenance) (*Result[records.HeartRate], error)
	GetHeartRatesFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.HeartRate, error)
	InsertOrUpdateStepsCount(ctx context.Context, steps records.StepsCount, prov Provenance) (*Result[records.StepsCount], error)
	GetStepsCountsFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.StepsCount, error)

	// Total daily doses
	SyncPumpTotalDailyDose(ctx context.Context, dose records.TotalDailyDose) (*Result[records.TotalDailyDose], error)
	GetTotalDailyDosesFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.TotalDailyDose, error)
	GetLastTotalDailyDoses(ctx context.Context, count int) ([]records.TotalDailyDose, error)

	// Audit queries
	GetUserEntriesFrom(ctx context.Context, from int64, includeMaintenance bool, limit int) ([]auditdomain.UserEntry, error)

	// Maintenance
	CleanupOldEntries(ctx context.Context) (int64, error)
	ClearDatabase(ctx context.Context) error
}

var ErrInvalidID = errors.New("invalid_id")
