package service

import (
	"context"

	syncdomain "github.com/loopworks/therapysync/internal/persistence/domain"
	records "github.com/loopworks/therapysync/internal/records/domain"
	"github.com/loopworks/therapysync/internal/store/ops"
)

// Boluses

func (s *Service) InsertOrUpdateBolus(ctx context.Context, bolus records.Bolus, prov syncdomain.Provenance) (*syncdomain.Result[records.Bolus], error) {
	return insertOrUpdate(ctx, s, bolusBinding, bolus, prov)
}

func (s *Service) SyncPumpBolus(ctx context.Context, bolus records.Bolus) (*syncdomain.Result[records.Bolus], error) {
	return syncDevice(ctx, s, bolusBinding, bolus)
}

func (s *Service) SyncRemoteBoluses(ctx context.Context, boluses []records.Bolus, doLog bool) (*syncdomain.Result[records.Bolus], error) {
	return syncRemote(ctx, s, bolusBinding, boluses, doLog)
}

func (s *Service) UpdateBolusRemoteIDs(ctx context.Context, boluses []records.Bolus) (*syncdomain.Result[records.Bolus], error) {
	updates := make([]ops.RemoteIDUpdate, 0, len(boluses))
	for _, b := range boluses {
		updates = append(updates, remoteIDUpdate(b.Base))
	}
	return backfillRemoteIDs(ctx, s, bolusBinding, updates)
}

func (s *Service) InvalidateBolus(ctx context.Context, id int64, prov syncdomain.Provenance) (*syncdomain.Result[records.Bolus], error) {
	return invalidate(ctx, s, bolusBinding, id, prov)
}

func (s *Service) GetBolusesFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.Bolus, error) {
	return listFrom(ctx, s, bolusBinding, from, includeInvalid)
}

func (s *Service) GetNewestBolus(ctx context.Context) (*records.Bolus, error) {
	return newest(ctx, s, bolusBinding)
}

// Carbs

func (s *Service) InsertOrUpdateCarbs(ctx context.Context, carbs records.Carbs, prov syncdomain.Provenance) (*syncdomain.Result[records.Carbs], error) {
	return insertOrUpdate(ctx, s, carbsBinding, carbs, prov)
}

func (s *Service) SyncRemoteCarbs(ctx context.Context, carbs []records.Carbs, doLog bool) (*syncdomain.Result[records.Carbs], error) {
	return syncRemote(ctx, s, carbsBinding, carbs, doLog)
}

func (s *Service) UpdateCarbsRemoteIDs(ctx context.Context, carbs []records.Carbs) (*syncdomain.Result[records.Carbs], error) {
	updates := make([]ops.RemoteIDUpdate, 0, len(carbs))
	for _, c := range carbs {
		updates = append(updates, remoteIDUpdate(c.Base))
	}
	return backfillRemoteIDs(ctx, s, carbsBinding, updates)
}

func (s *Service) InvalidateCarbs(ctx context.Context, id int64, prov syncdomain.Provenance) (*syncdomain.Result[records.Carbs], error) {
	return invalidate(ctx, s, carbsBinding, id, prov)
}

func (s *Service) GetCarbsFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.Carbs, error) {
	return listFrom(ctx, s, carbsBinding, from, includeInvalid)
}

// Bolus calculator results

func (s *Service) InsertOrUpdateBolusCalculatorResult(ctx context.Context, result records.BolusCalculatorResult, prov syncdomain.Provenance) (*syncdomain.Result[records.BolusCalculatorResult], error) {
	return insertOrUpdate(ctx, s, bolusCalcBinding, result, prov)
}

func (s *Service) SyncRemoteBolusCalculatorResults(ctx context.Context, results []records.BolusCalculatorResult, doLog bool) (*syncdomain.Result[records.BolusCalculatorResult], error) {
	return syncRemote(ctx, s, bolusCalcBinding, results, doLog)
}

func (s *Service) UpdateBolusCalculatorResultRemoteIDs(ctx context.Context, results []records.BolusCalculatorResult) (*syncdomain.Result[records.BolusCalculatorResult], error) {
	updates := make([]ops.RemoteIDUpdate, 0, len(results))
	for _, r := range results {
		updates = append(updates, remoteIDUpdate(r.Base))
	}
	return backfillRemoteIDs(ctx, s, bolusCalcBinding, updates)
}

func (s *Service) InvalidateBolusCalculatorResult(ctx context.Context, id int64, prov syncdomain.Provenance) (*syncdomain.Result[records.BolusCalculatorResult], error) {
	return invalidate(ctx, s, bolusCalcBinding, id, prov)
}

func (s *Service) GetBolusCalculatorResultsFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.BolusCalculatorResult, error) {
	return listFrom(ctx, s, bolusCalcBinding, from, includeInvalid)
}

// Extended boluses

func (s *Service) SyncPumpExtendedBolus(ctx context.Context, bolus records.ExtendedBolus) (*syncdomain.Result[records.ExtendedBolus], error) {
	return syncDevice(ctx, s, extendedBolusBinding, bolus)
}

func (s *Service) SyncRemoteExtendedBoluses(ctx context.Context, boluses []records.ExtendedBolus, doLog bool) (*syncdomain.Result[records.ExtendedBolus], error) {
	return syncRemote(ctx, s, extendedBolusBinding, boluses, doLog)
}

func (s *Service) UpdateExtendedBolusRemoteIDs(ctx context.Context, boluses []records.ExtendedBolus) (*syncdomain.Result[records.ExtendedBolus], error) {
	updates := make([]ops.RemoteIDUpdate, 0, len(boluses))
	for _, b := range boluses {
		updates = append(updates, remoteIDUpdate(b.Base))
	}
	return backfillRemoteIDs(ctx, s, extendedBolusBinding, updates)
}

func (s *Service) InvalidateExtendedBolus(ctx context.Context, id int64, prov syncdomain.Provenance) (*syncdomain.Result[records.ExtendedBolus], error) {
	return invalidate(ctx, s, extendedBolusBinding, id, prov)
}

func (s *Service) CancelCurrentExtendedBolusIfAny(ctx context.Context, at int64, prov syncdomain.Provenance) (*syncdomain.Result[records.ExtendedBolus], error) {
	return cancelInterval(ctx, s, extendedBolusBinding, at, prov)
}

func (s *Service) GetExtendedBolusActiveAt(ctx context.Context, at int64) (*records.ExtendedBolus, error) {
	return activeInterval(ctx, s, extendedBolusBinding, at)
}

func (s *Service) GetExtendedBolusesFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.ExtendedBolus, error) {
	return listFrom(ctx, s, extendedBolusBinding, from, includeInvalid)
}

// Temporary basals

func (s *Service) InsertAndCancelCurrentTemporaryBasal(ctx context.Context, basal records.TemporaryBasal, prov syncdomain.Provenance) (*syncdomain.Result[records.TemporaryBasal], error) {
	return startInterval(ctx, s, tempBasalBinding, basal, prov)
}

func (s *Service) SyncPumpTemporaryBasal(ctx context.Context, basal records.TemporaryBasal) (*syncdomain.Result[records.TemporaryBasal], error) {
	return syncDevice(ctx, s, tempBasalBinding, basal)
}

func (s *Service) SyncRemoteTemporaryBasals(ctx context.Context, basals []records.TemporaryBasal, doLog bool) (*syncdomain.Result[records.TemporaryBasal], error) {
	return syncRemote(ctx, s, tempBasalBinding, basals, doLog)
}

func (s *Service) UpdateTemporaryBasalRemoteIDs(ctx context.Context, basals []records.TemporaryBasal) (*syncdomain.Result[records.TemporaryBasal], error) {
	updates := make([]ops.RemoteIDUpdate, 0, len(basals))
	for _, b := range basals {
		updates = append(updates, remoteIDUpdate(b.Base))
	}
	return backfillRemoteIDs(ctx, s, tempBasalBinding, updates)
}

func (s *Service) InvalidateTemporaryBasal(ctx context.Context, id int64, prov syncdomain.Provenance) (*syncdomain.Result[records.TemporaryBasal], error) {
	return invalidate(ctx, s, tempBasalBinding, id, prov)
}

func (s *Service) CancelCurrentTemporaryBasalIfAny(ctx context.Context, at int64, prov syncdomain.Provenance) (*syncdomain.Result[records.TemporaryBasal], error) {
	return cancelInterval(ctx, s, tempBasalBinding, at, prov)
}

func (s *Service) GetTemporaryBasalActiveAt(ctx context.Context, at int64) (*records.TemporaryBasal, error) {
	return activeInterval(ctx, s, tempBasalBinding, at)
}

func (s *Service) GetTemporaryBasalsFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.TemporaryBasal, error) {
	return listFrom(ctx, s, tempBasalBinding, from, includeInvalid)
}

// Temporary targets

func (s *Service) InsertAndCancelCurrentTemporaryTarget(ctx context.Context, target records.TemporaryTarget, prov syncdomain.Provenance) (*syncdomain.Result[records.TemporaryTarget], error) {
	return startInterval(ctx, s, tempTargetBinding, target, prov)
}

func (s *Service) SyncRemoteTemporaryTargets(ctx context.Context, targets []records.TemporaryTarget, doLog bool) (*syncdomain.Result[records.TemporaryTarget], error) {
	return syncRemote(ctx, s, tempTargetBinding, targets, doLog)
}

func (s *Service) UpdateTemporaryTargetRemoteIDs(ctx context.Context, targets []records.TemporaryTarget) (*syncdomain.Result[records.TemporaryTarget], error) {
	updates := make([]ops.RemoteIDUpdate, 0, len(targets))
	for _, t := range targets {
		updates = append(updates, remoteIDUpdate(t.Base))
	}
	return backfillRemoteIDs(ctx, s, tempTargetBinding, updates)
}

func (s *Service) InvalidateTemporaryTarget(ctx context.Context, id int64, prov syncdomain.Provenance) (*syncdomain.Result[records.TemporaryTarget], error) {
	return invalidate(ctx, s, tempTargetBinding, id, prov)
}

func (s *Service) CancelCurrentTemporaryTargetIfAny(ctx context.Context, at int64, prov syncdomain.Provenance) (*syncdomain.Result[records.TemporaryTarget], error) {
	return cancelInterval(ctx, s, tempTargetBinding, at, prov)
}

func (s *Service) GetTemporaryTargetActiveAt(ctx context.Context, at int64) (*records.TemporaryTarget, error) {
	return activeInterval(ctx, s, tempTargetBinding, at)
}

func (s *Service) GetTemporaryTargetsFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.TemporaryTarget, error) {
	return listFrom(ctx, s, tempTargetBinding, from, includeInvalid)
}

// Therapy events

func (s *Service) InsertOrUpdateTherapyEvent(ctx context.Context, event records.TherapyEvent, prov syncdomain.Provenance) (*syncdomain.Result[records.TherapyEvent], error) {
	return insertOrUpdate(ctx, s, therapyEventBinding, event, prov)
}

func (s *Service) SyncRemoteTherapyEvents(ctx context.Context, events []records.TherapyEvent, doLog bool) (*syncdomain.Result[records.TherapyEvent], error) {
	return syncRemote(ctx, s, therapyEventBinding, events, doLog)
}

func (s *Service) UpdateTherapyEventRemoteIDs(ctx context.Context, events []records.TherapyEvent) (*syncdomain.Result[records.TherapyEvent], error) {
	updates := make([]ops.RemoteIDUpdate, 0, len(events))
	for _, e := range events {
		updates = append(updates, remoteIDUpdate(e.Base))
	}
	return backfillRemoteIDs(ctx, s, therapyEventBinding, updates)
}

func (s *Service) InvalidateTherapyEvent(ctx context.Context, id int64, prov syncdomain.Provenance) (*syncdomain.Result[records.TherapyEvent], error) {
	return invalidate(ctx, s, therapyEventBinding, id, prov)
}

func (s *Service) GetTherapyEventsFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.TherapyEvent, error) {
	return listFrom(ctx, s, therapyEventBinding, from, includeInvalid)
}

// Profile switches

func (s *Service) InsertOrUpdateProfileSwitch(ctx context.Context, profileSwitch records.ProfileSwitch, prov syncdomain.Provenance) (*syncdomain.Result[records.ProfileSwitch], error) {
	return insertOrUpdate(ctx, s, profileSwitchBinding, profileSwitch, prov)
}

func (s *Service) SyncRemoteProfileSwitches(ctx context.Context, switches []records.ProfileSwitch, doLog bool) (*syncdomain.Result[records.ProfileSwitch], error) {
	return syncRemote(ctx, s, profileSwitchBinding, switches, doLog)
}

func (s *Service) UpdateProfileSwitchRemoteIDs(ctx context.Context, switches []records.ProfileSwitch) (*syncdomain.Result[records.ProfileSwitch], error) {
	updates := make([]ops.RemoteIDUpdate, 0, len(switches))
	for _, p := range switches {
		updates = append(updates, remoteIDUpdate(p.Base))
	}
	return backfillRemoteIDs(ctx, s, profileSwitchBinding, updates)
}

func (s *Service) InvalidateProfileSwitch(ctx context.Context, id int64, prov syncdomain.Provenance) (*syncdomain.Result[records.ProfileSwitch], error) {
	return invalidate(ctx, s, profileSwitchBinding, id, prov)
}

func (s *Service) GetProfileSwitchesFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.ProfileSwitch, error) {
	return listFrom(ctx, s, profileSwitchBinding, from, includeInvalid)
}

// Effective profile switches

func (s *Service) InsertEffectiveProfileSwitch(ctx context.Context, profileSwitch records.EffectiveProfileSwitch, prov syncdomain.Provenance) (*syncdomain.Result[records.EffectiveProfileSwitch], error) {
	return insertOrUpdate(ctx, s, effectiveProfileSwitchBinding, profileSwitch, prov)
}

func (s *Service) SyncRemoteEffectiveProfileSwitches(ctx context.Context, switches []records.EffectiveProfileSwitch, doLog bool) (*syncdomain.Result[records.EffectiveProfileSwitch], error) {
	return syncRemote(ctx, s, effectiveProfileSwitchBinding, switches, doLog)
}

func (s *Service) UpdateEffectiveProfileSwitchRemoteIDs(ctx context.Context, switches []records.EffectiveProfileSwitch) (*syncdomain.Result[records.EffectiveProfileSwitch], error) {
	updates := make([]ops.RemoteIDUpdate, 0, len(switches))
	for _, p := range switches {
		updates = append(updates, remoteIDUpdate(p.Base))
	}
	return backfillRemoteIDs(ctx, s, effectiveProfileSwitchBinding, updates)
}

func (s *Service) InvalidateEffectiveProfileSwitch(ctx context.Context, id int64, prov syncdomain.Provenance) (*syncdomain.Result[records.EffectiveProfileSwitch], error) {
	return invalidate(ctx, s, effectiveProfileSwitchBinding, id, prov)
}

func (s *Service) GetEffectiveProfileSwitchesFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.EffectiveProfileSwitch, error) {
	return listFrom(ctx, s, effectiveProfileSwitchBinding, from, includeInvalid)
}

// Glucose values (remote path; the CGM source path lives in cgm.go)

func (s *Service) SyncRemoteGlucoseValues(ctx context.Context, values []records.GlucoseValue, doLog bool) (*syncdomain.Result[records.GlucoseValue], error) {
	return syncRemote(ctx, s, glucoseValueBinding, values, doLog)
}

func (s *Service) UpdateGlucoseValueRemoteIDs(ctx context.Context, values []records.GlucoseValue) (*syncdomain.Result[records.GlucoseValue], error) {
	updates := make([]ops.RemoteIDUpdate, 0, len(values))
	for _, v := range values {
		updates = append(updates, remoteIDUpdate(v.Base))
	}
	return backfillRemoteIDs(ctx, s, glucoseValueBinding, updates)
}

func (s *Service) InvalidateGlucoseValue(ctx context.Context, id int64, prov syncdomain.Provenance) (*syncdomain.Result[records.GlucoseValue], error) {
	return invalidate(ctx, s, glucoseValueBinding, id, prov)
}

func (s *Service) GetGlucoseValuesFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.GlucoseValue, error) {
	return listFrom(ctx, s, glucoseValueBinding, from, includeInvalid)
}

func (s *Service) GetNewestGlucoseValue(ctx context.Context) (*records.GlucoseValue, error) {
	return newest(ctx, s, glucoseValueBinding)
}

// Running modes

func (s *Service) InsertAndCancelCurrentRunningMode(ctx context.Context, mode records.RunningMode, prov syncdomain.Provenance) (*syncdomain.Result[records.RunningMode], error) {
	return startInterval(ctx, s, runningModeBinding, mode, prov)
}

func (s *Service) SyncRemoteRunningModes(ctx context.Context, modes []records.RunningMode, doLog bool) (*syncdomain.Result[records.RunningMode], error) {
	return syncRemote(ctx, s, runningModeBinding, modes, doLog)
}

func (s *Service) UpdateRunningModeRemoteIDs(ctx context.Context, modes []records.RunningMode) (*syncdomain.Result[records.RunningMode], error) {
	updates := make([]ops.RemoteIDUpdate, 0, len(modes))
	for _, m := range modes {
		updates = append(updates, remoteIDUpdate(m.Base))
	}
	return backfillRemoteIDs(ctx, s, runningModeBinding, updates)
}

func (s *Service) InvalidateRunningMode(ctx context.Context, id int64, prov syncdomain.Provenance) (*syncdomain.Result[records.RunningMode], error) {
	return invalidate(ctx, s, runningModeBinding, id, prov)
}

func (s *Service) GetRunningModeActiveAt(ctx context.Context, at int64) (*records.RunningMode, error) {
	return activeInterval(ctx, s, runningModeBinding, at)
}

func (s *Service) GetRunningModesFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.RunningMode, error) {
	return listFrom(ctx, s, runningModeBinding, from, includeInvalid)
}

// Food

func (s *Service) InsertOrUpdateFood(ctx context.Context, food records.Food, prov syncdomain.Provenance) (*syncdomain.Result[records.Food], error) {
	return insertOrUpdate(ctx, s, foodBinding, food, prov)
}

func (s *Service) SyncRemoteFoods(ctx context.Context, foods []records.Food, doLog bool) (*syncdomain.Result[records.Food], error) {
	return syncRemote(ctx, s, foodBinding, foods, doLog)
}

func (s *Service) UpdateFoodRemoteIDs(ctx context.Context, foods []records.Food) (*syncdomain.Result[records.Food], error) {
	updates := make([]ops.RemoteIDUpdate, 0, len(foods))
	for _, f := range foods {
		updates = append(updates, remoteIDUpdate(f.Base))
	}
	return backfillRemoteIDs(ctx, s, foodBinding, updates)
}

func (s *Service) InvalidateFood(ctx context.Context, id int64, prov syncdomain.Provenance) (*syncdomain.Result[records.Food], error) {
	return invalidate(ctx, s, foodBinding, id, prov)
}

func (s *Service) GetFoodsFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.Food, error) {
	return listFrom(ctx, s, foodBinding, from, includeInvalid)
}

// Device statuses

func (s *Service) InsertDeviceStatus(ctx context.Context, status records.DeviceStatus) (*syncdomain.Result[records.DeviceStatus], error) {
	status.ID = 0
	return insertOrUpdate(ctx, s, deviceStatusBinding, status, syncdomain.Provenance{})
}

func (s *Service) UpdateDeviceStatusRemoteIDs(ctx context.Context, statuses []records.DeviceStatus) (*syncdomain.Result[records.DeviceStatus], error) {
	updates := make([]ops.RemoteIDUpdate, 0, len(statuses))
	for _, st := range statuses {
		updates = append(updates, remoteIDUpdate(st.Base))
	}
	return backfillRemoteIDs(ctx, s, deviceStatusBinding, updates)
}

func (s *Service) GetDeviceStatusesFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.DeviceStatus, error) {
	return listFrom(ctx, s, deviceStatusBinding, from, includeInvalid)
}

// Heart rates and steps

func (s *Service) InsertOrUpdateHeartRate(ctx context.Context, rate records.HeartRate, prov syncdomain.Provenance) (*syncdomain.Result[records.HeartRate], error) {
	return insertOrUpdate(ctx, s, heartRateBinding, rate, prov)
}

func (s *Service) GetHeartRatesFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.HeartRate, error) {
	return listFrom(ctx, s, heartRateBinding, from, includeInvalid)
}

func (s *Service) InsertOrUpdateStepsCount(ctx context.Context, steps records.StepsCount, prov syncdomain.Provenance) (*syncdomain.Result[records.StepsCount], error) {
	return insertOrUpdate(ctx, s, stepsCountBinding, steps, prov)
}

func (s *Service) GetStepsCountsFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.StepsCount, error) {
	return listFrom(ctx, s, stepsCountBinding, from, includeInvalid)
}

// Total daily doses

func (s *Service) SyncPumpTotalDailyDose(ctx context.Context, dose records.TotalDailyDose) (*syncdomain.Result[records.TotalDailyDose], error) {
	return syncDevice(ctx, s, totalDailyDoseBinding, dose)
}

func (s *Service) GetTotalDailyDosesFrom(ctx context.Context, from int64, includeInvalid bool) ([]records.TotalDailyDose, error) {
	return listFrom(ctx, s, totalDailyDoseBinding, from, includeInvalid)
}

func (s *Service) GetLastTotalDailyDoses(ctx context.Context, count int) ([]records.TotalDailyDose, error) {
	return last(ctx, s, totalDailyDoseBinding, count)
}
