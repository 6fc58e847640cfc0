package domain

// RecordKind discriminates the therapy record family. It keys change
// streams, metrics labels and the HTTP record routes.
type RecordKind string

const (
	KindBolus                  RecordKind = "bolus"
	KindCarbs                  RecordKind = "carbs"
	KindBolusCalculatorResult  RecordKind = "bolus_calculator_result"
	KindExtendedBolus          RecordKind = "extended_bolus"
	KindTemporaryBasal         RecordKind = "temporary_basal"
	KindTemporaryTarget        RecordKind = "temporary_target"
	KindTherapyEvent           RecordKind = "therapy_event"
	KindProfileSwitch          RecordKind = "profile_switch"
	KindEffectiveProfileSwitch RecordKind = "effective_profile_switch"
	KindGlucoseValue           RecordKind = "glucose_value"
	KindRunningMode            RecordKind = "running_mode"
	KindFood                   RecordKind = "food"
	KindDeviceStatus           RecordKind = "device_status"
	KindHeartRate              RecordKind = "heart_rate"
	KindStepsCount             RecordKind = "steps_count"
	KindTotalDailyDose         RecordKind = "total_daily_dose"
	KindUserEntry              RecordKind = "user_entry"
)

// Kinds lists every record kind with a change stream, resolved at startup.
func Kinds() []RecordKind {
	return []RecordKind{
		KindBolus, KindCarbs, KindBolusCalculatorResult, KindExtendedBolus,
		KindTemporaryBasal, KindTemporaryTarget, KindTherapyEvent,
		KindProfileSwitch, KindEffectiveProfileSwitch, KindGlucoseValue,
		KindRunningMode, KindFood, KindDeviceStatus, KindHeartRate,
		KindStepsCount, KindTotalDailyDose, KindUserEntry,
	}
}

// Base carries the fields shared by every therapy record.
//
// ID is the local storage identity, zero until first persisted and
// immutable afterwards. RemoteID is the correlation id assigned by the
// remote journal; it is nil until the record round-trips and is only
// written through the dedicated backfill operation. Valid implements
// soft deletion: invalidated records stay in the store for sync
// reconciliation and the audit trail.
type Base struct {
	ID        int64   `json:"id"`
	Timestamp int64   `json:"timestamp"`
	RemoteID  *string `json:"remote_id,omitempty"`
	Valid     bool    `json:"valid"`
}

// DeviceRef identifies the physical device a record was observed from.
// PumpID is the device-assigned sequence number; together with type and
// serial it dedupes device-sync inserts.
type DeviceRef struct {
	PumpType   string `json:"pump_type,omitempty"`
	PumpSerial string `json:"pump_serial,omitempty"`
	PumpID     *int64 `json:"pump_id,omitempty"`
}

// BolusType distinguishes user boluses from loop-issued micro boluses
// and tube-priming deliveries excluded from IOB.
type BolusType string

const (
	BolusNormal  BolusType = "normal"
	BolusSMB     BolusType = "smb"
	BolusPriming BolusType = "priming"
)

type Bolus struct {
	Base
	DeviceRef
	Amount float64   `json:"amount"`
	Type   BolusType `json:"type"`
	Notes  string    `json:"notes,omitempty"`
}

type Carbs struct {
	Base
	Amount   float64 `json:"amount"`
	Duration int64   `json:"duration"`
	Notes    string  `json:"notes,omitempty"`
}

type BolusCalculatorResult struct {
	Base
	GlucoseValue float64 `json:"glucose_value"`
	Carbs        float64 `json:"carbs"`
	COB          float64 `json:"cob"`
	IOB          float64 `json:"iob"`
	TotalInsulin float64 `json:"total_insulin"`
	Note         string  `json:"note,omitempty"`
}

type ExtendedBolus struct {
	Base
	DeviceRef
	Amount             float64 `json:"amount"`
	Duration           int64   `json:"duration"`
	EmulatingTempBasal bool    `json:"emulating_temp_basal"`
}

type TemporaryBasal struct {
	Base
	DeviceRef
	Rate       float64 `json:"rate"`
	Duration   int64   `json:"duration"`
	IsAbsolute bool    `json:"is_absolute"`
	Reason     string  `json:"reason,omitempty"`
}

type TemporaryTarget struct {
	Base
	LowTarget  float64 `json:"low_target"`
	HighTarget float64 `json:"high_target"`
	Duration   int64   `json:"duration"`
	Reason     string  `json:"reason,omitempty"`
}

// TherapyEventType enumerates care-portal event categories.
type TherapyEventType string

const (
	EventCannulaChange     TherapyEventType = "cannula_change"
	EventInsulinChange     TherapyEventType = "insulin_change"
	EventSensorChange      TherapyEventType = "sensor_change"
	EventSensorStarted     TherapyEventType = "sensor_started"
	EventFingerStickBG     TherapyEventType = "finger_stick_bg"
	EventExercise          TherapyEventType = "exercise"
	EventNote              TherapyEventType = "note"
	EventAnnouncement      TherapyEventType = "announcement"
	EventQuestion          TherapyEventType = "question"
	EventPumpBatteryChange TherapyEventType = "pump_battery_change"
)

type TherapyEvent struct {
	Base
	Type         TherapyEventType `json:"type"`
	Duration     int64            `json:"duration"`
	Note         string           `json:"note,omitempty"`
	EnteredBy    string           `json:"entered_by,omitempty"`
	GlucoseValue *float64         `json:"glucose_value,omitempty"`
	GlucoseUnit  string           `json:"glucose_unit,omitempty"`
}

type ProfileSwitch struct {
	Base
	ProfileName    string `json:"profile_name"`
	Percentage     int    `json:"percentage"`
	TimeShiftHours int    `json:"time_shift_hours"`
	Duration       int64  `json:"duration"`
}

type EffectiveProfileSwitch struct {
	Base
	ProfileName        string `json:"profile_name"`
	OriginalPercentage int    `json:"original_percentage"`
	OriginalTimeShift  int    `json:"original_time_shift"`
	OriginalDuration   int64  `json:"original_duration"`
}

// TrendArrow is the CGM slope indicator reported with a glucose value.
type TrendArrow string

const (
	TrendNone          TrendArrow = "none"
	TrendTripleUp      TrendArrow = "triple_up"
	TrendDoubleUp      TrendArrow = "double_up"
	TrendSingleUp      TrendArrow = "single_up"
	TrendFortyFiveUp   TrendArrow = "forty_five_up"
	TrendFlat          TrendArrow = "flat"
	TrendFortyFiveDown TrendArrow = "forty_five_down"
	TrendSingleDown    TrendArrow = "single_down"
	TrendDoubleDown    TrendArrow = "double_down"
	TrendTripleDown    TrendArrow = "triple_down"
)

type GlucoseValue struct {
	Base
	Value        float64    `json:"value"`
	Raw          *float64   `json:"raw,omitempty"`
	Noise        *float64   `json:"noise,omitempty"`
	TrendArrow   TrendArrow `json:"trend_arrow"`
	SourceSensor string     `json:"source_sensor,omitempty"`
}

// RunningMode captures the loop operating mode over a time span.
type RunningModeName string

const (
	ModeOpenLoop         RunningModeName = "open_loop"
	ModeClosedLoop       RunningModeName = "closed_loop"
	ModeClosedLoopLGS    RunningModeName = "closed_loop_lgs"
	ModeLoopDisabled     RunningModeName = "loop_disabled"
	ModeSuperBolus       RunningModeName = "super_bolus"
	ModeDisconnectedPump RunningModeName = "disconnected_pump"
	ModeSuspendedByPump  RunningModeName = "suspended_by_pump"
	ModeSuspendedByUser  RunningModeName = "suspended_by_user"
)

type RunningMode struct {
	Base
	Mode     RunningModeName `json:"mode"`
	Duration int64           `json:"duration"`
	Reason   string          `json:"reason,omitempty"`
}

type Food struct {
	Base
	Name          string  `json:"name"`
	Category      string  `json:"category,omitempty"`
	Portion       float64 `json:"portion"`
	Unit          string  `json:"unit,omitempty"`
	Carbs         int     `json:"carbs"`
	Fat           *int    `json:"fat,omitempty"`
	Protein       *int    `json:"protein,omitempty"`
	Energy        *int    `json:"energy,omitempty"`
	GlycemicIndex *int    `json:"glycemic_index,omitempty"`
}

type DeviceStatus struct {
	Base
	Device          string         `json:"device"`
	UploaderBattery int            `json:"uploader_battery"`
	Pump            map[string]any `json:"pump,omitempty"`
	Suggested       map[string]any `json:"suggested,omitempty"`
	Enacted         map[string]any `json:"enacted,omitempty"`
}

type HeartRate struct {
	Base
	Device         string  `json:"device,omitempty"`
	BeatsPerMinute float64 `json:"beats_per_minute"`
	Duration       int64   `json:"duration"`
}

type StepsCount struct {
	Base
	Device   string `json:"device,omitempty"`
	Steps    int    `json:"steps"`
	Duration int64  `json:"duration"`
}

type TotalDailyDose struct {
	Base
	DeviceRef
	BasalAmount float64 `json:"basal_amount"`
	BolusAmount float64 `json:"bolus_amount"`
	TotalAmount float64 `json:"total_amount"`
}

// Calibration is a sensor calibration reading delivered alongside a CGM
// source sync; it is persisted as a finger-stick therapy event.
type Calibration struct {
	Timestamp   int64   `json:"timestamp"`
	Value       float64 `json:"value"`
	GlucoseUnit string  `json:"glucose_unit"`
}

// End returns the instant an interval record stops covering.
func (b Base) End(duration int64) int64 {
	return b.Timestamp + duration
}

// Covers reports whether an interval starting at the record timestamp
// with the given duration spans the instant t.
func Covers(timestamp, duration, t int64) bool {
	return timestamp <= t && t < timestamp+duration
}
