// Package convert holds the pure mapping functions between the domain
// record types and their storage entities. No business rules live here.
package convert

import (
	"encoding/json"

	"github.com/loopworks/therapysync/internal/records/domain"
	"github.com/loopworks/therapysync/internal/records/storage"
	"gorm.io/datatypes"
)

func baseToColumns(b domain.Base) storage.SyncColumns {
	return storage.SyncColumns{
		ID:        b.ID,
		Timestamp: b.Timestamp,
		RemoteID:  b.RemoteID,
		Valid:     b.Valid,
	}
}

func columnsToBase(c storage.SyncColumns) domain.Base {
	return domain.Base{
		ID:        c.ID,
		Timestamp: c.Timestamp,
		RemoteID:  c.RemoteID,
		Valid:     c.Valid,
	}
}

func deviceToColumns(d domain.DeviceRef) storage.DeviceColumns {
	return storage.DeviceColumns{
		PumpType:   d.PumpType,
		PumpSerial: d.PumpSerial,
		PumpID:     d.PumpID,
	}
}

func columnsToDevice(c storage.DeviceColumns) domain.DeviceRef {
	return domain.DeviceRef{
		PumpType:   c.PumpType,
		PumpSerial: c.PumpSerial,
		PumpID:     c.PumpID,
	}
}

func BolusToStorage(r domain.Bolus) *storage.Bolus {
	return &storage.Bolus{
		SyncColumns:   baseToColumns(r.Base),
		DeviceColumns: deviceToColumns(r.DeviceRef),
		Amount:        r.Amount,
		Type:          string(r.Type),
		Notes:         r.Notes,
	}
}

func BolusToDomain(e *storage.Bolus) domain.Bolus {
	return domain.Bolus{
		Base:      columnsToBase(e.SyncColumns),
		DeviceRef: columnsToDevice(e.DeviceColumns),
		Amount:    e.Amount,
		Type:      domain.BolusType(e.Type),
		Notes:     e.Notes,
	}
}

func CarbsToStorage(r domain.Carbs) *storage.Carbs {
	return &storage.Carbs{
		SyncColumns: baseToColumns(r.Base),
		Amount:      r.Amount,
		Duration:    r.Duration,
		Notes:       r.Notes,
	}
}

func CarbsToDomain(e *storage.Carbs) domain.Carbs {
	return domain.Carbs{
		Base:     columnsToBase(e.SyncColumns),
		Amount:   e.Amount,
		Duration: e.Duration,
		Notes:    e.Notes,
	}
}

func BolusCalculatorResultToStorage(r domain.BolusCalculatorResult) *storage.BolusCalculatorResult {
	return &storage.BolusCalculatorResult{
		SyncColumns:  baseToColumns(r.Base),
		GlucoseValue: r.GlucoseValue,
		Carbs:        r.Carbs,
		COB:          r.COB,
		IOB:          r.IOB,
		TotalInsulin: r.TotalInsulin,
		Note:         r.Note,
	}
}

func BolusCalculatorResultToDomain(e *storage.BolusCalculatorResult) domain.BolusCalculatorResult {
	return domain.BolusCalculatorResult{
		Base:         columnsToBase(e.SyncColumns),
		GlucoseValue: e.GlucoseValue,
		Carbs:        e.Carbs,
		COB:          e.COB,
		IOB:          e.IOB,
		TotalInsulin: e.TotalInsulin,
		Note:         e.Note,
	}
}

func ExtendedBolusToStorage(r domain.ExtendedBolus) *storage.ExtendedBolus {
	return &storage.ExtendedBolus{
		SyncColumns:        baseToColumns(r.Base),
		DeviceColumns:      deviceToColumns(r.DeviceRef),
		Amount:             r.Amount,
		Duration:           r.Duration,
		EmulatingTempBasal: r.EmulatingTempBasal,
	}
}

func ExtendedBolusToDomain(e *storage.ExtendedBolus) domain.ExtendedBolus {
	return domain.ExtendedBolus{
		Base:               columnsToBase(e.SyncColumns),
		DeviceRef:          columnsToDevice(e.DeviceColumns),
		Amount:             e.Amount,
		Duration:           e.Duration,
		EmulatingTempBasal: e.EmulatingTempBasal,
	}
}

func TemporaryBasalToStorage(r domain.TemporaryBasal) *storage.TemporaryBasal {
	return &storage.TemporaryBasal{
		SyncColumns:   baseToColumns(r.Base),
		DeviceColumns: deviceToColumns(r.DeviceRef),
		Rate:          r.Rate,
		Duration:      r.Duration,
		IsAbsolute:    r.IsAbsolute,
		Reason:        r.Reason,
	}
}

func TemporaryBasalToDomain(e *storage.TemporaryBasal) domain.TemporaryBasal {
	return domain.TemporaryBasal{
		Base:       columnsToBase(e.SyncColumns),
		DeviceRef:  columnsToDevice(e.DeviceColumns),
		Rate:       e.Rate,
		Duration:   e.Duration,
		IsAbsolute: e.IsAbsolute,
		Reason:     e.Reason,
	}
}

func TemporaryTargetToStorage(r domain.TemporaryTarget) *storage.TemporaryTarget {
	return &storage.TemporaryTarget{
		SyncColumns: baseToColumns(r.Base),
		LowTarget:   r.LowTarget,
		HighTarget:  r.HighTarget,
		Duration:    r.Duration,
		Reason:      r.Reason,
	}
}

func TemporaryTargetToDomain(e *storage.TemporaryTarget) domain.TemporaryTarget {
	return domain.TemporaryTarget{
		Base:       columnsToBase(e.SyncColumns),
		LowTarget:  e.LowTarget,
		HighTarget: e.HighTarget,
		Duration:   e.Duration,
		Reason:     e.Reason,
	}
}

func TherapyEventToStorage(r domain.TherapyEvent) *storage.TherapyEvent {
	return &storage.TherapyEvent{
		SyncColumns:  baseToColumns(r.Base),
		Type:         string(r.Type),
		Duration:     r.Duration,
		Note:         r.Note,
		EnteredBy:    r.EnteredBy,
		GlucoseValue: r.GlucoseValue,
		GlucoseUnit:  r.GlucoseUnit,
	}
}

func TherapyEventToDomain(e *storage.TherapyEvent) domain.TherapyEvent {
	return domain.TherapyEvent{
		Base:         columnsToBase(e.SyncColumns),
		Type:         domain.TherapyEventType(e.Type),
		Duration:     e.Duration,
		Note:         e.Note,
		EnteredBy:    e.EnteredBy,
		GlucoseValue: e.GlucoseValue,
		GlucoseUnit:  e.GlucoseUnit,
	}
}

func ProfileSwitchToStorage(r domain.ProfileSwitch) *storage.ProfileSwitch {
	return &storage.ProfileSwitch{
		SyncColumns:    baseToColumns(r.Base),
		ProfileName:    r.ProfileName,
		Percentage:     r.Percentage,
		TimeShiftHours: r.TimeShiftHours,
		Duration:       r.Duration,
	}
}

func ProfileSwitchToDomain(e *storage.ProfileSwitch) domain.ProfileSwitch {
	return domain.ProfileSwitch{
		Base:           columnsToBase(e.SyncColumns),
		ProfileName:    e.ProfileName,
		Percentage:     e.Percentage,
		TimeShiftHours: e.TimeShiftHours,
		Duration:       e.Duration,
	}
}

func EffectiveProfileSwitchToStorage(r domain.EffectiveProfileSwitch) *storage.EffectiveProfileSwitch {
	return &storage.EffectiveProfileSwitch{
		SyncColumns:        baseToColumns(r.Base),
		ProfileName:        r.ProfileName,
		OriginalPercentage: r.OriginalPercentage,
		OriginalTimeShift:  r.OriginalTimeShift,
		OriginalDuration:   r.OriginalDuration,
	}
}

func EffectiveProfileSwitchToDomain(e *storage.EffectiveProfileSwitch) domain.EffectiveProfileSwitch {
	return domain.EffectiveProfileSwitch{
		Base:               columnsToBase(e.SyncColumns),
		ProfileName:        e.ProfileName,
		OriginalPercentage: e.OriginalPercentage,
		OriginalTimeShift:  e.OriginalTimeShift,
		OriginalDuration:   e.OriginalDuration,
	}
}

func GlucoseValueToStorage(r domain.GlucoseValue) *storage.GlucoseValue {
	return &storage.GlucoseValue{
		SyncColumns:  baseToColumns(r.Base),
		Value:        r.Value,
		Raw:          r.Raw,
		Noise:        r.Noise,
		TrendArrow:   string(r.TrendArrow),
		SourceSensor: r.SourceSensor,
	}
}

func GlucoseValueToDomain(e *storage.GlucoseValue) domain.GlucoseValue {
	return domain.GlucoseValue{
		Base:         columnsToBase(e.SyncColumns),
		Value:        e.Value,
		Raw:          e.Raw,
		Noise:        e.Noise,
		TrendArrow:   domain.TrendArrow(e.TrendArrow),
		SourceSensor: e.SourceSensor,
	}
}

func RunningModeToStorage(r domain.RunningMode) *storage.RunningMode {
	return &storage.RunningMode{
		SyncColumns: baseToColumns(r.Base),
		Mode:        string(r.Mode),
		Duration:    r.Duration,
		Reason:      r.Reason,
	}
}

func RunningModeToDomain(e *storage.RunningMode) domain.RunningMode {
	return domain.RunningMode{
		Base:     columnsToBase(e.SyncColumns),
		Mode:     domain.RunningModeName(e.Mode),
		Duration: e.Duration,
		Reason:   e.Reason,
	}
}

func FoodToStorage(r domain.Food) *storage.Food {
	return &storage.Food{
		SyncColumns:   baseToColumns(r.Base),
		Name:          r.Name,
		Category:      r.Category,
		Portion:       r.Portion,
		Unit:          r.Unit,
		Carbs:         r.Carbs,
		Fat:           r.Fat,
		Protein:       r.Protein,
		Energy:        r.Energy,
		GlycemicIndex: r.GlycemicIndex,
	}
}

func FoodToDomain(e *storage.Food) domain.Food {
	return domain.Food{
		Base:          columnsToBase(e.SyncColumns),
		Name:          e.Name,
		Category:      e.Category,
		Portion:       e.Portion,
		Unit:          e.Unit,
		Carbs:         e.Carbs,
		Fat:           e.Fat,
		Protein:       e.Protein,
		Energy:        e.Energy,
		GlycemicIndex: e.GlycemicIndex,
	}
}

func DeviceStatusToStorage(r domain.DeviceStatus) *storage.DeviceStatus {
	return &storage.DeviceStatus{
		SyncColumns:     baseToColumns(r.Base),
		Device:          r.Device,
		UploaderBattery: r.UploaderBattery,
		Pump:            mapToJSON(r.Pump),
		Suggested:       mapToJSON(r.Suggested),
		Enacted:         mapToJSON(r.Enacted),
	}
}

func DeviceStatusToDomain(e *storage.DeviceStatus) domain.DeviceStatus {
	return domain.DeviceStatus{
		Base:            columnsToBase(e.SyncColumns),
		Device:          e.Device,
		UploaderBattery: e.UploaderBattery,
		Pump:            jsonToMap(e.Pump),
		Suggested:       jsonToMap(e.Suggested),
		Enacted:         jsonToMap(e.Enacted),
	}
}

func HeartRateToStorage(r domain.HeartRate) *storage.HeartRate {
	return &storage.HeartRate{
		SyncColumns:    baseToColumns(r.Base),
		Device:         r.Device,
		BeatsPerMinute: r.BeatsPerMinute,
		Duration:       r.Duration,
	}
}

func HeartRateToDomain(e *storage.HeartRate) domain.HeartRate {
	return domain.HeartRate{
		Base:           columnsToBase(e.SyncColumns),
		Device:         e.Device,
		BeatsPerMinute: e.BeatsPerMinute,
		Duration:       e.Duration,
	}
}

func StepsCountToStorage(r domain.StepsCount) *storage.StepsCount {
	return &storage.StepsCount{
		SyncColumns: baseToColumns(r.Base),
		Device:      r.Device,
		Steps:       r.Steps,
		Duration:    r.Duration,
	}
}

func StepsCountToDomain(e *storage.StepsCount) domain.StepsCount {
	return domain.StepsCount{
		Base:     columnsToBase(e.SyncColumns),
		Device:   e.Device,
		Steps:    e.Steps,
		Duration: e.Duration,
	}
}

func TotalDailyDoseToStorage(r domain.TotalDailyDose) *storage.TotalDailyDose {
	return &storage.TotalDailyDose{
		SyncColumns:   baseToColumns(r.Base),
		DeviceColumns: deviceToColumns(r.DeviceRef),
		BasalAmount:   r.BasalAmount,
		BolusAmount:   r.BolusAmount,
		TotalAmount:   r.TotalAmount,
	}
}

func TotalDailyDoseToDomain(e *storage.TotalDailyDose) domain.TotalDailyDose {
	return domain.TotalDailyDose{
		Base:        columnsToBase(e.SyncColumns),
		DeviceRef:   columnsToDevice(e.DeviceColumns),
		BasalAmount: e.BasalAmount,
		BolusAmount: e.BolusAmount,
		TotalAmount: e.TotalAmount,
	}
}

func mapToJSON(m map[string]any) datatypes.JSON {
	if len(m) == 0 {
		return nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func jsonToMap(raw datatypes.JSON) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}
