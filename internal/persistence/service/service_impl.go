// Package service implements the synchronization and audit facade. Each
// facade method converts between the domain record types and their
// storage entities, delegates the store interaction to one atomic
// transaction operation, and layers the audit, change notification and
// metrics bookkeeping on top.
package service

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/loopworks/therapysync/internal/audit/domain"
	"github.com/loopworks/therapysync/internal/clock"
	"github.com/loopworks/therapysync/internal/config"
	"github.com/loopworks/therapysync/internal/events"
	"github.com/loopworks/therapysync/internal/observability/metrics"
	syncdomain "github.com/loopworks/therapysync/internal/persistence/domain"
	records "github.com/loopworks/therapysync/internal/records/domain"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Config  config.Config
	Audit   auditdomain.Service
	Hub     *events.Hub
	Metrics *metrics.SyncMetrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	cfg     config.Config
	audit   auditdomain.Service
	hub     *events.Hub
	metrics *metrics.SyncMetrics
}

func NewService(p Params) syncdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("persistence"),
		clock:   p.Clock,
		cfg:     p.Config,
		audit:   p.Audit,
		hub:     p.Hub,
		metrics: p.Metrics,
	}
}

// storeErr logs a failed store interaction with the full record context
// and hands the error back unchanged for the caller to surface.
func (s *Service) storeErr(ctx context.Context, op string, kind records.RecordKind, record any, err error) error {
	s.log.Error("store transaction failed",
		zap.String("kind", string(kind)),
		zap.String("op", op),
		zap.Any("record", record),
		zap.Error(err),
	)
	return err
}

// logAudit appends the synthesized entries after the mutation committed.
// A client-only instance mirrors a remote journal and must not re-emit
// entries for changes it did not originate, so the write is suppressed
// facade-wide. Audit failures never fail the mutation.
func (s *Service) logAudit(ctx context.Context, entries []auditdomain.Entry) {
	if len(entries) == 0 || s.cfg.ClientOnly {
		return
	}
	n, err := s.audit.Append(ctx, entries)
	if err != nil {
		s.log.Warn("audit append failed", zap.Int("entries", len(entries)), zap.Error(err))
		s.metrics.ObserveAuditFailure()
		return
	}
	s.metrics.ObserveAuditEntries(n)
	if n > 0 {
		s.publish(records.KindUserEntry, events.OutcomeInserted, 0, s.clock.Now().UnixMilli())
	}
	s.throttle(ctx, n)
}

// throttle paces batch audit writes so a large sync cannot flood the
// audit table. Cancelling the context ends the wait early.
func (s *Service) throttle(ctx context.Context, n int) {
	d := time.Duration(n) * s.cfg.AuditThrottle
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (s *Service) publish(kind records.RecordKind, outcome string, id, timestamp int64) {
	s.hub.Publish(events.ChangeEvent{
		Kind:      kind,
		Outcome:   outcome,
		RecordID:  id,
		Timestamp: timestamp,
	})
}

func (s *Service) observe(kind records.RecordKind, outcome string, n int) {
	if n > 0 {
		s.metrics.ObserveMutation(string(kind), outcome, n)
	}
}

// provEntries turns caller provenance into at most one audit entry.
func provEntries(prov syncdomain.Provenance) []auditdomain.Entry {
	if prov.Action == "" {
		return nil
	}
	source := prov.Source
	if source == "" {
		source = auditdomain.SourceUnknown
	}
	return []auditdomain.Entry{{
		Action: prov.Action,
		Source: source,
		Note:   prov.Note,
		Values: prov.Values,
	}}
}
