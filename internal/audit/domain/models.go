package domain

import (
	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Action enumerates the clinically meaningful mutation kinds recorded in
// the user entry log.
type Action string

const (
	ActionBolus               Action = "bolus"
	ActionSMB                 Action = "smb"
	ActionBolusCalculation    Action = "bolus_calculation"
	ActionCarbs               Action = "carbs"
	ActionExtendedBolus       Action = "extended_bolus"
	ActionCancelExtendedBolus Action = "cancel_extended_bolus"
	ActionTempBasal           Action = "temp_basal"
	ActionCancelTempBasal     Action = "cancel_temp_basal"
	ActionTempTarget          Action = "temp_target"
	ActionCancelTempTarget    Action = "cancel_temp_target"
	ActionProfileSwitch       Action = "profile_switch"
	ActionCareportal          Action = "careportal"
	ActionSiteChange          Action = "site_change"
	ActionSensorChange        Action = "sensor_change"
	ActionCalibration         Action = "calibration"
	ActionFood                Action = "food"
	ActionRunningModeChange   Action = "running_mode_change"
	ActionTotalDailyDose      Action = "total_daily_dose"
	ActionHeartRate           Action = "heart_rate"
	ActionStepsCount          Action = "steps_count"
	ActionRemoved             Action = "removed"
	ActionSync                Action = "sync"
	ActionCleanup             Action = "cleanup"
	ActionUnknown             Action = "unknown"
)

// Source names the subsystem a mutation originated from.
type Source string

const (
	SourceUI         Source = "ui"
	SourcePump       Source = "pump"
	SourceRemote     Source = "remote"
	SourceLoop       Source = "loop"
	SourceSensor     Source = "sensor"
	SourceWear       Source = "wear"
	SourceAutomation Source = "automation"
	SourceUnknown    Source = "unknown"
)

// MaintenanceActions are bookkeeping entries excluded from the default
// history view.
func MaintenanceActions() []Action {
	return []Action{ActionSync, ActionCleanup}
}

// Unit labels a value snapshot for audit display.
type Unit string

const (
	UnitNone           Unit = ""
	UnitInsulin        Unit = "U"
	UnitInsulinPerHour Unit = "U/h"
	UnitGram           Unit = "g"
	UnitMinute         Unit = "min"
	UnitHour           Unit = "h"
	UnitMgDl           Unit = "mg/dl"
	UnitMmolL          Unit = "mmol/l"
	UnitPercent        Unit = "%"
	UnitBpm            Unit = "bpm"
	UnitTimestamp      Unit = "timestamp"
)

// ValueWithUnit is one typed value snapshot in the ordered list attached
// to an audit entry.
type ValueWithUnit struct {
	Unit  Unit `json:"unit"`
	Value any  `json:"value"`
}

func Insulin(v float64) ValueWithUnit { return ValueWithUnit{Unit: UnitInsulin, Value: v} }
func InsulinPerHour(v float64) ValueWithUnit {
	return ValueWithUnit{Unit: UnitInsulinPerHour, Value: v}
}
func Gram(v float64) ValueWithUnit    { return ValueWithUnit{Unit: UnitGram, Value: v} }
func Minute(v int64) ValueWithUnit    { return ValueWithUnit{Unit: UnitMinute, Value: v} }
func MgDl(v float64) ValueWithUnit    { return ValueWithUnit{Unit: UnitMgDl, Value: v} }
func Percent(v int) ValueWithUnit     { return ValueWithUnit{Unit: UnitPercent, Value: v} }
func Bpm(v float64) ValueWithUnit     { return ValueWithUnit{Unit: UnitBpm, Value: v} }
func Timestamp(v int64) ValueWithUnit { return ValueWithUnit{Unit: UnitTimestamp, Value: v} }
func Text(v string) ValueWithUnit     { return ValueWithUnit{Unit: UnitNone, Value: v} }

// UserEntry is one append-only audit record. Timestamp is the audit
// write time, not the event's own timestamp.
type UserEntry struct {
	ID        snowflake.ID   `gorm:"primaryKey" json:"id"`
	Timestamp int64          `gorm:"not null;index" json:"timestamp"`
	Action    Action         `gorm:"not null" json:"action"`
	Source    Source         `gorm:"not null" json:"source"`
	Note      string         `json:"note,omitempty"`
	Values    datatypes.JSON `gorm:"type:jsonb" json:"values,omitempty"`
}

func (UserEntry) TableName() string { return "user_entries" }
