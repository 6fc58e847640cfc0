package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/loopworks/therapysync/internal/audit/domain"
	"github.com/loopworks/therapysync/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  auditdomain.Repository
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Append persists one user entry per provenance payload. Entries with an
// empty action are dropped rather than rejected wholesale so one bad
// payload cannot suppress the rest of a batch.
func (s *Service) Append(ctx context.Context, entries []auditdomain.Entry) (int, error) {
	rows := make([]*auditdomain.UserEntry, 0, len(entries))
	now := s.clock.Now().UnixMilli()

	for _, entry := range entries {
		action := auditdomain.Action(strings.TrimSpace(string(entry.Action)))
		if action == "" {
			s.log.Warn("dropping audit entry without action", zap.String("note", entry.Note))
			continue
		}
		source := entry.Source
		if source == "" {
			source = auditdomain.SourceUnknown
		}

		var values datatypes.JSON
		if len(entry.Values) > 0 {
			raw, err := json.Marshal(entry.Values)
			if err != nil {
				s.log.Warn("failed to encode audit values", zap.String("action", string(action)), zap.Error(err))
			} else {
				values = datatypes.JSON(raw)
			}
		}

		rows = append(rows, &auditdomain.UserEntry{
			ID:        s.genID.Generate(),
			Timestamp: now,
			Action:    action,
			Source:    source,
			Note:      entry.Note,
			Values:    values,
		})
	}

	if len(rows) == 0 {
		return 0, nil
	}

	if err := s.repo.Insert(ctx, s.db, rows); err != nil {
		s.log.Warn("failed to write audit entries", zap.Int("count", len(rows)), zap.Error(err))
		return 0, err
	}
	return len(rows), nil
}

func (s *Service) List(ctx context.Context, req auditdomain.ListRequest) ([]auditdomain.UserEntry, error) {
	if req.FromTimestamp < 0 {
		return nil, auditdomain.ErrInvalidTimeRange
	}

	filter := auditdomain.ListFilter{
		FromTimestamp: req.FromTimestamp,
		Limit:         req.Limit,
	}
	if !req.IncludeMaintenance {
		filter.ExcludedActions = auditdomain.MaintenanceActions()
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	entries := make([]auditdomain.UserEntry, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		entries = append(entries, *item)
	}
	return entries, nil
}
