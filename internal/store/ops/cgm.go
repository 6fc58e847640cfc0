package ops

import (
	"context"
	"errors"

	"github.com/loopworks/therapysync/internal/records/domain"
	"github.com/loopworks/therapysync/internal/records/storage"
	"gorm.io/gorm"
)

// CGMOutcome is the result of one CGM source sync: the glucose value
// categories plus the therapy-event side channels created as byproducts.
type CGMOutcome struct {
	Values           SyncOutcome[*storage.GlucoseValue]
	SensorInsertions []*storage.TherapyEvent
	Calibrations     []*storage.TherapyEvent
}

// SyncCGM reconciles a batch of glucose values from a CGM source.
// Values are deduplicated by (timestamp, source sensor). A reported
// sensor insertion time creates a sensor-change therapy event once;
// calibrations are persisted as finger-stick events, also once.
func SyncCGM(ctx context.Context, db *gorm.DB, values []*storage.GlucoseValue, calibrations []domain.Calibration, sensorInsertionTime *int64) (CGMOutcome, error) {
	var out CGMOutcome
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, src := range values {
			if err := syncGlucoseValue(tx, src, &out.Values); err != nil {
				return err
			}
		}

		if sensorInsertionTime != nil {
			event, created, err := ensureTherapyEvent(tx, *sensorInsertionTime,
				string(domain.EventSensorChange), nil, "")
			if err != nil {
				return err
			}
			if created {
				out.SensorInsertions = append(out.SensorInsertions, event)
			}
		}

		for _, cal := range calibrations {
			value := cal.Value
			event, created, err := ensureTherapyEvent(tx, cal.Timestamp,
				string(domain.EventFingerStickBG), &value, cal.GlucoseUnit)
			if err != nil {
				return err
			}
			if created {
				out.Calibrations = append(out.Calibrations, event)
			}
		}
		return nil
	})
	if err != nil {
		return CGMOutcome{}, err
	}
	return out, nil
}

func syncGlucoseValue(tx *gorm.DB, src *storage.GlucoseValue, out *SyncOutcome[*storage.GlucoseValue]) error {
	var existing storage.GlucoseValue
	err := tx.Where("timestamp = ? AND source_sensor = ?", src.Timestamp, src.SourceSensor).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		src.ID = 0
		if err := tx.Create(src).Error; err != nil {
			return err
		}
		out.Inserted = append(out.Inserted, src)
		return nil
	}
	if err != nil {
		return err
	}

	if existing.Value == src.Value && existing.TrendArrow == src.TrendArrow {
		out.NotUpdated = append(out.NotUpdated, &existing)
		return nil
	}

	existing.Value = src.Value
	existing.Raw = src.Raw
	existing.Noise = src.Noise
	existing.TrendArrow = src.TrendArrow
	if err := tx.Save(&existing).Error; err != nil {
		return err
	}
	out.Updated = append(out.Updated, &existing)
	return nil
}

func ensureTherapyEvent(tx *gorm.DB, timestamp int64, eventType string, glucoseValue *float64, glucoseUnit string) (*storage.TherapyEvent, bool, error) {
	var existing storage.TherapyEvent
	err := tx.Where("timestamp = ? AND type = ?", timestamp, eventType).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	event := &storage.TherapyEvent{
		SyncColumns:  storage.SyncColumns{Timestamp: timestamp, Valid: true},
		Type:         eventType,
		GlucoseValue: glucoseValue,
		GlucoseUnit:  glucoseUnit,
	}
	if err := tx.Create(event).Error; err != nil {
		return nil, false, err
	}
	return event, true, nil
}
