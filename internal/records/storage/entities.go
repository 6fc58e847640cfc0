package storage

import (
	"time"

	"gorm.io/datatypes"
)

// SyncColumns is the shared storage shape of every therapy record.
// Split from the domain types so the schema can evolve independently.
type SyncColumns struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Timestamp int64     `gorm:"not null;index"`
	RemoteID  *string   `gorm:"column:remote_id;index"`
	Valid     bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// DeviceColumns carry the device identity triple for pump-origin rows.
type DeviceColumns struct {
	PumpType   string `gorm:"column:pump_type"`
	PumpSerial string `gorm:"column:pump_serial"`
	PumpID     *int64 `gorm:"column:pump_id;index"`
}

type Bolus struct {
	SyncColumns
	DeviceColumns
	Amount float64 `gorm:"not null"`
	Type   string  `gorm:"not null;default:normal"`
	Notes  string
}

func (Bolus) TableName() string { return "boluses" }

type Carbs struct {
	SyncColumns
	Amount   float64 `gorm:"not null"`
	Duration int64   `gorm:"not null;default:0"`
	Notes    string
}

func (Carbs) TableName() string { return "carbs" }

type BolusCalculatorResult struct {
	SyncColumns
	GlucoseValue float64
	Carbs        float64
	COB          float64 `gorm:"column:cob"`
	IOB          float64 `gorm:"column:iob"`
	TotalInsulin float64
	Note         string
}

func (BolusCalculatorResult) TableName() string { return "bolus_calculator_results" }

type ExtendedBolus struct {
	SyncColumns
	DeviceColumns
	Amount             float64 `gorm:"not null"`
	Duration           int64   `gorm:"not null"`
	EmulatingTempBasal bool    `gorm:"not null;default:false"`
}

func (ExtendedBolus) TableName() string { return "extended_boluses" }

type TemporaryBasal struct {
	SyncColumns
	DeviceColumns
	Rate       float64 `gorm:"not null"`
	Duration   int64   `gorm:"not null"`
	IsAbsolute bool    `gorm:"not null;default:true"`
	Reason     string
}

func (TemporaryBasal) TableName() string { return "temporary_basals" }

type TemporaryTarget struct {
	SyncColumns
	LowTarget  float64 `gorm:"not null"`
	HighTarget float64 `gorm:"not null"`
	Duration   int64   `gorm:"not null"`
	Reason     string
}

func (TemporaryTarget) TableName() string { return "temporary_targets" }

type TherapyEvent struct {
	SyncColumns
	Type         string `gorm:"not null;index"`
	Duration     int64  `gorm:"not null;default:0"`
	Note         string
	EnteredBy    string
	GlucoseValue *float64
	GlucoseUnit  string
}

func (TherapyEvent) TableName() string { return "therapy_events" }

type ProfileSwitch struct {
	SyncColumns
	ProfileName    string `gorm:"not null"`
	Percentage     int    `gorm:"not null;default:100"`
	TimeShiftHours int    `gorm:"not null;default:0"`
	Duration       int64  `gorm:"not null;default:0"`
}

func (ProfileSwitch) TableName() string { return "profile_switches" }

type EffectiveProfileSwitch struct {
	SyncColumns
	ProfileName        string `gorm:"not null"`
	OriginalPercentage int    `gorm:"not null;default:100"`
	OriginalTimeShift  int    `gorm:"not null;default:0"`
	OriginalDuration   int64  `gorm:"not null;default:0"`
}

func (EffectiveProfileSwitch) TableName() string { return "effective_profile_switches" }

type GlucoseValue struct {
	SyncColumns
	Value        float64 `gorm:"not null"`
	Raw          *float64
	Noise        *float64
	TrendArrow   string `gorm:"not null;default:none"`
	SourceSensor string `gorm:"index"`
}

func (GlucoseValue) TableName() string { return "glucose_values" }

type RunningMode struct {
	SyncColumns
	Mode     string `gorm:"not null"`
	Duration int64  `gorm:"not null"`
	Reason   string
}

func (RunningMode) TableName() string { return "running_modes" }

type Food struct {
	SyncColumns
	Name          string `gorm:"not null"`
	Category      string
	Portion       float64
	Unit          string
	Carbs         int `gorm:"not null;default:0"`
	Fat           *int
	Protein       *int
	Energy        *int
	GlycemicIndex *int
}

func (Food) TableName() string { return "foods" }

type DeviceStatus struct {
	SyncColumns
	Device          string `gorm:"not null"`
	UploaderBattery int
	Pump            datatypes.JSON `gorm:"type:jsonb"`
	Suggested       datatypes.JSON `gorm:"type:jsonb"`
	Enacted         datatypes.JSON `gorm:"type:jsonb"`
}

func (DeviceStatus) TableName() string { return "device_statuses" }

type HeartRate struct {
	SyncColumns
	Device         string
	BeatsPerMinute float64 `gorm:"not null"`
	Duration       int64   `gorm:"not null;default:0"`
}

func (HeartRate) TableName() string { return "heart_rates" }

type StepsCount struct {
	SyncColumns
	Device   string
	Steps    int   `gorm:"not null"`
	Duration int64 `gorm:"not null;default:0"`
}

func (StepsCount) TableName() string { return "steps_counts" }

type TotalDailyDose struct {
	SyncColumns
	DeviceColumns
	BasalAmount float64 `gorm:"not null;default:0"`
	BolusAmount float64 `gorm:"not null;default:0"`
	TotalAmount float64 `gorm:"not null;default:0"`
}

func (TotalDailyDose) TableName() string { return "total_daily_doses" }

// AllModels lists every storage entity for AutoMigrate-based setups
// (sqlite and mysql dev mode, and the test suites).
func AllModels() []any {
	return []any{
		&Bolus{}, &Carbs{}, &BolusCalculatorResult{}, &ExtendedBolus{},
		&TemporaryBasal{}, &TemporaryTarget{}, &TherapyEvent{},
		&ProfileSwitch{}, &EffectiveProfileSwitch{}, &GlucoseValue{},
		&RunningMode{}, &Food{}, &DeviceStatus{}, &HeartRate{},
		&StepsCount{}, &TotalDailyDose{},
	}
}
