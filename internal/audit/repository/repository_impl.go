package repository

import (
	"context"

	"github.com/loopworks/therapysync/internal/audit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entries []*domain.UserEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(entries).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.UserEntry, error) {
	var entries []*domain.UserEntry
	stmt := db.WithContext(ctx).Model(&domain.UserEntry{}).
		Where("timestamp >= ?", filter.FromTimestamp)

	if len(filter.ExcludedActions) > 0 {
		stmt = stmt.Where("action NOT IN ?", filter.ExcludedActions)
	}

	stmt = stmt.Order("timestamp desc, id desc")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}

	if err := stmt.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
