package domain

import (
	"context"

	"gorm.io/gorm"
)

type ListFilter struct {
	FromTimestamp   int64
	ExcludedActions []Action
	Limit           int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entries []*UserEntry) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*UserEntry, error)
}
