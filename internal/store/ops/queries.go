package ops

import (
	"context"
	"errors"

	"github.com/loopworks/therapysync/internal/records/storage"
	"gorm.io/gorm"
)

// ListFrom returns records at or after the given timestamp, oldest
// first. Soft-deleted rows are excluded unless includeInvalid is set.
func ListFrom[E any, PE storage.RecordPtr[E]](ctx context.Context, db *gorm.DB, from int64, includeInvalid bool) ([]PE, error) {
	stmt := db.WithContext(ctx).Model(new(E)).Where("timestamp >= ?", from)
	if !includeInvalid {
		stmt = stmt.Where("valid = ?", true)
	}

	var rows []*E
	if err := stmt.Order("timestamp asc, id asc").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]PE, 0, len(rows))
	for _, row := range rows {
		out = append(out, PE(row))
	}
	return out, nil
}

// Newest returns the most recent valid record, or nil on an empty table.
func Newest[E any, PE storage.RecordPtr[E]](ctx context.Context, db *gorm.DB) (PE, error) {
	var existing E
	err := db.WithContext(ctx).Where("valid = ?", true).
		Order("timestamp desc, id desc").
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return PE(&existing), nil
}

// Last returns up to n of the most recent valid records, newest first.
func Last[E any, PE storage.RecordPtr[E]](ctx context.Context, db *gorm.DB, n int) ([]PE, error) {
	if n <= 0 {
		return nil, nil
	}
	var rows []*E
	err := db.WithContext(ctx).Where("valid = ?", true).
		Order("timestamp desc, id desc").
		Limit(n).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]PE, 0, len(rows))
	for _, row := range rows {
		out = append(out, PE(row))
	}
	return out, nil
}

// GetByID fetches a record regardless of validity, or nil when absent.
func GetByID[E any, PE storage.RecordPtr[E]](ctx context.Context, db *gorm.DB, id int64) (PE, error) {
	var existing E
	err := db.WithContext(ctx).First(&existing, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return PE(&existing), nil
}
