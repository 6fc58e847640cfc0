package ops

import (
	"context"

	"gorm.io/gorm"
)

// PurgeOlderThan physically deletes rows older than the cutoff. This is
// the only path besides ClearTable that removes rows; invalidation never
// deletes.
func PurgeOlderThan[E any](ctx context.Context, db *gorm.DB, cutoff int64) (int64, error) {
	res := db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(new(E))
	return res.RowsAffected, res.Error
}

// ClearTable removes every row. Reset and tests only.
func ClearTable[E any](ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Where("1 = 1").Delete(new(E)).Error
}
