package ops

import (
	"context"
	"errors"

	"github.com/loopworks/therapysync/internal/records/storage"
	"gorm.io/gorm"
)

// CancelCurrentInterval truncates the valid interval covering the
// instant at, if any, so that it ends exactly there. cancelled is false
// when no interval covers the instant.
func CancelCurrentInterval[E any, PE storage.IntervalPtr[E]](ctx context.Context, db *gorm.DB, at int64) (rec PE, cancelled bool, err error) {
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := activeAt[E, PE](tx, at)
		if err != nil || existing == nil {
			return err
		}

		existing.SetDuration(at - existing.GetTimestamp())
		if err := tx.Model(new(E)).Where("id = ?", existing.GetID()).
			Update("duration", existing.GetDuration()).Error; err != nil {
			return err
		}
		rec = existing
		cancelled = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return rec, cancelled, nil
}

// InsertAndCancelCurrent starts a new interval, implicitly ending the
// one covering its start. At most one valid interval covers any instant
// afterwards.
func InsertAndCancelCurrent[E any, PE storage.IntervalPtr[E]](ctx context.Context, db *gorm.DB, rec PE) (ended PE, err error) {
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := activeAt[E, PE](tx, rec.GetTimestamp())
		if err != nil {
			return err
		}
		if current != nil {
			current.SetDuration(rec.GetTimestamp() - current.GetTimestamp())
			if err := tx.Model(new(E)).Where("id = ?", current.GetID()).
				Update("duration", current.GetDuration()).Error; err != nil {
				return err
			}
			ended = current
		}

		rec.SetID(0)
		return tx.Create(rec).Error
	})
	if err != nil {
		return nil, err
	}
	return ended, nil
}

// ActiveIntervalAt returns the valid interval covering the instant, or
// nil when none does.
func ActiveIntervalAt[E any, PE storage.IntervalPtr[E]](ctx context.Context, db *gorm.DB, at int64) (PE, error) {
	return activeAt[E, PE](db.WithContext(ctx), at)
}

func activeAt[E any, PE storage.IntervalPtr[E]](tx *gorm.DB, at int64) (PE, error) {
	var existing E
	err := tx.Where("valid = ? AND timestamp <= ? AND timestamp + duration > ?", true, at, at).
		Order("timestamp desc").
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return PE(&existing), nil
}
