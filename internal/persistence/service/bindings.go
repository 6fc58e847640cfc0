package service

import (
	"bytes"

	auditdomain "github.com/loopworks/therapysync/internal/audit/domain"
	"github.com/loopworks/therapysync/internal/records/convert"
	records "github.com/loopworks/therapysync/internal/records/domain"
	"github.com/loopworks/therapysync/internal/records/storage"
	"github.com/loopworks/therapysync/internal/store/ops"
)

// Content equality in the hooks below compares clinical payloads only.
// Identity, correlation id, validity and the gorm timestamps are managed
// by the operations themselves and never participate.

var bolusBinding = binding[records.Bolus, storage.Bolus, *storage.Bolus]{
	kind:      records.KindBolus,
	toStorage: convert.BolusToStorage,
	toDomain:  convert.BolusToDomain,
	hooks: ops.Hooks[storage.Bolus, *storage.Bolus]{
		Equal: func(a, b *storage.Bolus) bool {
			return a.Timestamp == b.Timestamp && a.Amount == b.Amount &&
				a.Type == b.Type && a.Notes == b.Notes
		},
		Apply: func(dst, src *storage.Bolus) {
			dst.Timestamp = src.Timestamp
			dst.Amount = src.Amount
			dst.Type = src.Type
			dst.Notes = src.Notes
		},
	},
	action: func(r records.Bolus) auditdomain.Action {
		if r.Type == records.BolusSMB {
			return auditdomain.ActionSMB
		}
		return auditdomain.ActionBolus
	},
	values: func(r records.Bolus) []auditdomain.ValueWithUnit {
		return []auditdomain.ValueWithUnit{
			auditdomain.Timestamp(r.Timestamp),
			auditdomain.Insulin(r.Amount),
		}
	},
}

var carbsBinding = binding[records.Carbs, storage.Carbs, *storage.Carbs]{
	kind:      records.KindCarbs,
	toStorage: convert.CarbsToStorage,
	toDomain:  convert.CarbsToDomain,
	hooks: ops.Hooks[storage.Carbs, *storage.Carbs]{
		Equal: func(a, b *storage.Carbs) bool {
			return a.Timestamp == b.Timestamp && a.Amount == b.Amount &&
				a.Duration == b.Duration && a.Notes == b.Notes
		},
		Apply: func(dst, src *storage.Carbs) {
			dst.Timestamp = src.Timestamp
			dst.Amount = src.Amount
			dst.Duration = src.Duration
			dst.Notes = src.Notes
		},
	},
	action: constAction[records.Carbs](auditdomain.ActionCarbs),
	values: func(r records.Carbs) []auditdomain.ValueWithUnit {
		return []auditdomain.ValueWithUnit{
			auditdomain.Timestamp(r.Timestamp),
			auditdomain.Gram(r.Amount),
		}
	},
}

var bolusCalcBinding = binding[records.BolusCalculatorResult, storage.BolusCalculatorResult, *storage.BolusCalculatorResult]{
	kind:      records.KindBolusCalculatorResult,
	toStorage: convert.BolusCalculatorResultToStorage,
	toDomain:  convert.BolusCalculatorResultToDomain,
	hooks: ops.Hooks[storage.BolusCalculatorResult, *storage.BolusCalculatorResult]{
		Equal: func(a, b *storage.BolusCalculatorResult) bool {
			return a.Timestamp == b.Timestamp && a.GlucoseValue == b.GlucoseValue &&
				a.Carbs == b.Carbs && a.COB == b.COB && a.IOB == b.IOB &&
				a.TotalInsulin == b.TotalInsulin && a.Note == b.Note
		},
		Apply: func(dst, src *storage.BolusCalculatorResult) {
			dst.Timestamp = src.Timestamp
			dst.GlucoseValue = src.GlucoseValue
			dst.Carbs = src.Carbs
			dst.COB = src.COB
			dst.IOB = src.IOB
			dst.TotalInsulin = src.TotalInsulin
			dst.Note = src.Note
		},
	},
	action: constAction[records.BolusCalculatorResult](auditdomain.ActionBolusCalculation),
	values: func(r records.BolusCalculatorResult) []auditdomain.ValueWithUnit {
		return []auditdomain.ValueWithUnit{
			auditdomain.Timestamp(r.Timestamp),
			auditdomain.Insulin(r.TotalInsulin),
		}
	},
}

var extendedBolusBinding = binding[records.ExtendedBolus, storage.ExtendedBolus, *storage.ExtendedBolus]{
	kind:      records.KindExtendedBolus,
	toStorage: convert.ExtendedBolusToStorage,
	toDomain:  convert.ExtendedBolusToDomain,
	hooks: ops.Hooks[storage.ExtendedBolus, *storage.ExtendedBolus]{
		Equal: func(a, b *storage.ExtendedBolus) bool {
			return a.Timestamp == b.Timestamp && a.Amount == b.Amount &&
				a.Duration == b.Duration && a.EmulatingTempBasal == b.EmulatingTempBasal
		},
		Apply: func(dst, src *storage.ExtendedBolus) {
			dst.Timestamp = src.Timestamp
			dst.Amount = src.Amount
			dst.Duration = src.Duration
			dst.EmulatingTempBasal = src.EmulatingTempBasal
		},
	},
	action: constAction[records.ExtendedBolus](auditdomain.ActionExtendedBolus),
	values: func(r records.ExtendedBolus) []auditdomain.ValueWithUnit {
		return []auditdomain.ValueWithUnit{
			auditdomain.Timestamp(r.Timestamp),
			auditdomain.Insulin(r.Amount),
			auditdomain.Minute(r.Duration / 60_000),
		}
	},
}

var tempBasalBinding = binding[records.TemporaryBasal, storage.TemporaryBasal, *storage.TemporaryBasal]{
	kind:      records.KindTemporaryBasal,
	toStorage: convert.TemporaryBasalToStorage,
	toDomain:  convert.TemporaryBasalToDomain,
	hooks: ops.Hooks[storage.TemporaryBasal, *storage.TemporaryBasal]{
		Equal: func(a, b *storage.TemporaryBasal) bool {
			return a.Timestamp == b.Timestamp && a.Rate == b.Rate &&
				a.Duration == b.Duration && a.IsAbsolute == b.IsAbsolute &&
				a.Reason == b.Reason
		},
		Apply: func(dst, src *storage.TemporaryBasal) {
			dst.Timestamp = src.Timestamp
			dst.Rate = src.Rate
			dst.Duration = src.Duration
			dst.IsAbsolute = src.IsAbsolute
			dst.Reason = src.Reason
		},
	},
	action: constAction[records.TemporaryBasal](auditdomain.ActionTempBasal),
	values: func(r records.TemporaryBasal) []auditdomain.ValueWithUnit {
		values := []auditdomain.ValueWithUnit{auditdomain.Timestamp(r.Timestamp)}
		if r.IsAbsolute {
			values = append(values, auditdomain.InsulinPerHour(r.Rate))
		} else {
			values = append(values, auditdomain.Percent(int(r.Rate)))
		}
		return append(values, auditdomain.Minute(r.Duration/60_000))
	},
}

var tempTargetBinding = binding[records.TemporaryTarget, storage.TemporaryTarget, *storage.TemporaryTarget]{
	kind:      records.KindTemporaryTarget,
	toStorage: convert.TemporaryTargetToStorage,
	toDomain:  convert.TemporaryTargetToDomain,
	hooks: ops.Hooks[storage.TemporaryTarget, *storage.TemporaryTarget]{
		Equal: func(a, b *storage.TemporaryTarget) bool {
			return a.Timestamp == b.Timestamp && a.LowTarget == b.LowTarget &&
				a.HighTarget == b.HighTarget && a.Duration == b.Duration &&
				a.Reason == b.Reason
		},
		Apply: func(dst, src *storage.TemporaryTarget) {
			dst.Timestamp = src.Timestamp
			dst.LowTarget = src.LowTarget
			dst.HighTarget = src.HighTarget
			dst.Duration = src.Duration
			dst.Reason = src.Reason
		},
	},
	action: constAction[records.TemporaryTarget](auditdomain.ActionTempTarget),
	values: func(r records.TemporaryTarget) []auditdomain.ValueWithUnit {
		return []auditdomain.ValueWithUnit{
			auditdomain.Timestamp(r.Timestamp),
			auditdomain.MgDl(r.LowTarget),
			auditdomain.MgDl(r.HighTarget),
			auditdomain.Minute(r.Duration / 60_000),
		}
	},
}

var therapyEventBinding = binding[records.TherapyEvent, storage.TherapyEvent, *storage.TherapyEvent]{
	kind:      records.KindTherapyEvent,
	toStorage: convert.TherapyEventToStorage,
	toDomain:  convert.TherapyEventToDomain,
	hooks: ops.Hooks[storage.TherapyEvent, *storage.TherapyEvent]{
		Equal: func(a, b *storage.TherapyEvent) bool {
			return a.Timestamp == b.Timestamp && a.Type == b.Type &&
				a.Duration == b.Duration && a.Note == b.Note &&
				a.EnteredBy == b.EnteredBy && floatPtrEqual(a.GlucoseValue, b.GlucoseValue) &&
				a.GlucoseUnit == b.GlucoseUnit
		},
		Apply: func(dst, src *storage.TherapyEvent) {
			dst.Timestamp = src.Timestamp
			dst.Type = src.Type
			dst.Duration = src.Duration
			dst.Note = src.Note
			dst.EnteredBy = src.EnteredBy
			dst.GlucoseValue = src.GlucoseValue
			dst.GlucoseUnit = src.GlucoseUnit
		},
	},
	action: constAction[records.TherapyEvent](auditdomain.ActionCareportal),
	values: func(r records.TherapyEvent) []auditdomain.ValueWithUnit {
		return []auditdomain.ValueWithUnit{
			auditdomain.Timestamp(r.Timestamp),
			auditdomain.Text(string(r.Type)),
		}
	},
}

var profileSwitchBinding = binding[records.ProfileSwitch, storage.ProfileSwitch, *storage.ProfileSwitch]{
	kind:      records.KindProfileSwitch,
	toStorage: convert.ProfileSwitchToStorage,
	toDomain:  convert.ProfileSwitchToDomain,
	hooks: ops.Hooks[storage.ProfileSwitch, *storage.ProfileSwitch]{
		Equal: func(a, b *storage.ProfileSwitch) bool {
			return a.Timestamp == b.Timestamp && a.ProfileName == b.ProfileName &&
				a.Percentage == b.Percentage && a.TimeShiftHours == b.TimeShiftHours &&
				a.Duration == b.Duration
		},
		Apply: func(dst, src *storage.ProfileSwitch) {
			dst.Timestamp = src.Timestamp
			dst.ProfileName = src.ProfileName
			dst.Percentage = src.Percentage
			dst.TimeShiftHours = src.TimeShiftHours
			dst.Duration = src.Duration
		},
	},
	action: constAction[records.ProfileSwitch](auditdomain.ActionProfileSwitch),
	values: func(r records.ProfileSwitch) []auditdomain.ValueWithUnit {
		return []auditdomain.ValueWithUnit{
			auditdomain.Timestamp(r.Timestamp),
			auditdomain.Text(r.ProfileName),
			auditdomain.Percent(r.Percentage),
		}
	},
}

var effectiveProfileSwitchBinding = binding[records.EffectiveProfileSwitch, storage.EffectiveProfileSwitch, *storage.EffectiveProfileSwitch]{
	kind:      records.KindEffectiveProfileSwitch,
	toStorage: convert.EffectiveProfileSwitchToStorage,
	toDomain:  convert.EffectiveProfileSwitchToDomain,
	hooks: ops.Hooks[storage.EffectiveProfileSwitch, *storage.EffectiveProfileSwitch]{
		Equal: func(a, b *storage.EffectiveProfileSwitch) bool {
			return a.Timestamp == b.Timestamp && a.ProfileName == b.ProfileName &&
				a.OriginalPercentage == b.OriginalPercentage &&
				a.OriginalTimeShift == b.OriginalTimeShift &&
				a.OriginalDuration == b.OriginalDuration
		},
		Apply: func(dst, src *storage.EffectiveProfileSwitch) {
			dst.Timestamp = src.Timestamp
			dst.ProfileName = src.ProfileName
			dst.OriginalPercentage = src.OriginalPercentage
			dst.OriginalTimeShift = src.OriginalTimeShift
			dst.OriginalDuration = src.OriginalDuration
		},
	},
	action: constAction[records.EffectiveProfileSwitch](auditdomain.ActionProfileSwitch),
	values: func(r records.EffectiveProfileSwitch) []auditdomain.ValueWithUnit {
		return []auditdomain.ValueWithUnit{
			auditdomain.Timestamp(r.Timestamp),
			auditdomain.Text(r.ProfileName),
		}
	},
}

var glucoseValueBinding = binding[records.GlucoseValue, storage.GlucoseValue, *storage.GlucoseValue]{
	kind:      records.KindGlucoseValue,
	toStorage: convert.GlucoseValueToStorage,
	toDomain:  convert.GlucoseValueToDomain,
	hooks: ops.Hooks[storage.GlucoseValue, *storage.GlucoseValue]{
		Equal: func(a, b *storage.GlucoseValue) bool {
			return a.Timestamp == b.Timestamp && a.Value == b.Value &&
				a.TrendArrow == b.TrendArrow && a.SourceSensor == b.SourceSensor
		},
		Apply: func(dst, src *storage.GlucoseValue) {
			dst.Timestamp = src.Timestamp
			dst.Value = src.Value
			dst.Raw = src.Raw
			dst.Noise = src.Noise
			dst.TrendArrow = src.TrendArrow
			dst.SourceSensor = src.SourceSensor
		},
	},
	action: constAction[records.GlucoseValue](auditdomain.ActionCalibration),
	values: func(r records.GlucoseValue) []auditdomain.ValueWithUnit {
		return []auditdomain.ValueWithUnit{
			auditdomain.Timestamp(r.Timestamp),
			auditdomain.MgDl(r.Value),
		}
	},
}

var runningModeBinding = binding[records.RunningMode, storage.RunningMode, *storage.RunningMode]{
	kind:      records.KindRunningMode,
	toStorage: convert.RunningModeToStorage,
	toDomain:  convert.RunningModeToDomain,
	hooks: ops.Hooks[storage.RunningMode, *storage.RunningMode]{
		Equal: func(a, b *storage.RunningMode) bool {
			return a.Timestamp == b.Timestamp && a.Mode == b.Mode &&
				a.Duration == b.Duration && a.Reason == b.Reason
		},
		Apply: func(dst, src *storage.RunningMode) {
			dst.Timestamp = src.Timestamp
			dst.Mode = src.Mode
			dst.Duration = src.Duration
			dst.Reason = src.Reason
		},
	},
	action: constAction[records.RunningMode](auditdomain.ActionRunningModeChange),
	values: func(r records.RunningMode) []auditdomain.ValueWithUnit {
		return []auditdomain.ValueWithUnit{
			auditdomain.Timestamp(r.Timestamp),
			auditdomain.Text(string(r.Mode)),
		}
	},
}

var foodBinding = binding[records.Food, storage.Food, *storage.Food]{
	kind:      records.KindFood,
	toStorage: convert.FoodToStorage,
	toDomain:  convert.FoodToDomain,
	hooks: ops.Hooks[storage.Food, *storage.Food]{
		Equal: func(a, b *storage.Food) bool {
			return a.Name == b.Name && a.Category == b.Category &&
				a.Portion == b.Portion && a.Unit == b.Unit && a.Carbs == b.Carbs &&
				intPtrEqual(a.Fat, b.Fat) && intPtrEqual(a.Protein, b.Protein) &&
				intPtrEqual(a.Energy, b.Energy) &&
				intPtrEqual(a.GlycemicIndex, b.GlycemicIndex)
		},
		Apply: func(dst, src *storage.Food) {
			dst.Name = src.Name
			dst.Category = src.Category
			dst.Portion = src.Portion
			dst.Unit = src.Unit
			dst.Carbs = src.Carbs
			dst.Fat = src.Fat
			dst.Protein = src.Protein
			dst.Energy = src.Energy
			dst.GlycemicIndex = src.GlycemicIndex
		},
	},
	action: constAction[records.Food](auditdomain.ActionFood),
	values: func(r records.Food) []auditdomain.ValueWithUnit {
		return []auditdomain.ValueWithUnit{
			auditdomain.Text(r.Name),
			auditdomain.Gram(float64(r.Carbs)),
		}
	},
}

var deviceStatusBinding = binding[records.DeviceStatus, storage.DeviceStatus, *storage.DeviceStatus]{
	kind:      records.KindDeviceStatus,
	toStorage: convert.DeviceStatusToStorage,
	toDomain:  convert.DeviceStatusToDomain,
	hooks: ops.Hooks[storage.DeviceStatus, *storage.DeviceStatus]{
		Equal: func(a, b *storage.DeviceStatus) bool {
			return a.Timestamp == b.Timestamp && a.Device == b.Device &&
				a.UploaderBattery == b.UploaderBattery &&
				bytes.Equal(a.Pump, b.Pump) && bytes.Equal(a.Suggested, b.Suggested) &&
				bytes.Equal(a.Enacted, b.Enacted)
		},
	},
	// No action: device statuses are loop telemetry, not user events.
}

var heartRateBinding = binding[records.HeartRate, storage.HeartRate, *storage.HeartRate]{
	kind:      records.KindHeartRate,
	toStorage: convert.HeartRateToStorage,
	toDomain:  convert.HeartRateToDomain,
	action:    constAction[records.HeartRate](auditdomain.ActionHeartRate),
	values: func(r records.HeartRate) []auditdomain.ValueWithUnit {
		return []auditdomain.ValueWithUnit{
			auditdomain.Timestamp(r.Timestamp),
			auditdomain.Bpm(r.BeatsPerMinute),
		}
	},
}

var stepsCountBinding = binding[records.StepsCount, storage.StepsCount, *storage.StepsCount]{
	kind:      records.KindStepsCount,
	toStorage: convert.StepsCountToStorage,
	toDomain:  convert.StepsCountToDomain,
	action:    constAction[records.StepsCount](auditdomain.ActionStepsCount),
	values: func(r records.StepsCount) []auditdomain.ValueWithUnit {
		return []auditdomain.ValueWithUnit{
			auditdomain.Timestamp(r.Timestamp),
			{Unit: auditdomain.UnitNone, Value: r.Steps},
		}
	},
}

var totalDailyDoseBinding = binding[records.TotalDailyDose, storage.TotalDailyDose, *storage.TotalDailyDose]{
	kind:      records.KindTotalDailyDose,
	toStorage: convert.TotalDailyDoseToStorage,
	toDomain:  convert.TotalDailyDoseToDomain,
	hooks: ops.Hooks[storage.TotalDailyDose, *storage.TotalDailyDose]{
		Equal: func(a, b *storage.TotalDailyDose) bool {
			return a.Timestamp == b.Timestamp && a.BasalAmount == b.BasalAmount &&
				a.BolusAmount == b.BolusAmount && a.TotalAmount == b.TotalAmount
		},
		Apply: func(dst, src *storage.TotalDailyDose) {
			dst.Timestamp = src.Timestamp
			dst.BasalAmount = src.BasalAmount
			dst.BolusAmount = src.BolusAmount
			dst.TotalAmount = src.TotalAmount
		},
	},
	action: constAction[records.TotalDailyDose](auditdomain.ActionTotalDailyDose),
	values: func(r records.TotalDailyDose) []auditdomain.ValueWithUnit {
		return []auditdomain.ValueWithUnit{
			auditdomain.Timestamp(r.Timestamp),
			auditdomain.Insulin(r.TotalAmount),
		}
	},
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
