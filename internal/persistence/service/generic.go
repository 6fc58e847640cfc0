package service

import (
	"context"

	auditdomain "github.com/loopworks/therapysync/internal/audit/domain"
	"github.com/loopworks/therapysync/internal/events"
	syncdomain "github.com/loopworks/therapysync/internal/persistence/domain"
	records "github.com/loopworks/therapysync/internal/records/domain"
	"github.com/loopworks/therapysync/internal/records/storage"
	"github.com/loopworks/therapysync/internal/store/ops"
)

// binding ties one domain record type to its storage entity: the
// converters, the reconciliation hooks and the audit defaults. The
// facade methods are thin wrappers around the generic flows below, each
// instantiated with its type's binding.
type binding[D any, E any, PE storage.RecordPtr[E]] struct {
	kind      records.RecordKind
	toStorage func(D) PE
	toDomain  func(PE) D
	hooks     ops.Hooks[E, PE]

	// action and values describe a record in the audit log when the
	// facade synthesizes entries itself, e.g. during a remote sync.
	action func(D) auditdomain.Action
	values func(D) []auditdomain.ValueWithUnit
}

func constAction[D any](a auditdomain.Action) func(D) auditdomain.Action {
	return func(D) auditdomain.Action { return a }
}

func insertOrUpdate[D, E any, PE storage.RecordPtr[E]](ctx context.Context, s *Service, b binding[D, E, PE], rec D, prov syncdomain.Provenance) (*records.TransactionResult[D], error) {
	ent := b.toStorage(rec)
	inserted, found, err := ops.InsertOrUpdate[E, PE](ctx, s.db, ent)
	if err != nil {
		return nil, s.storeErr(ctx, "insert_or_update", b.kind, rec, err)
	}

	result := records.NewTransactionResult[D]()
	switch {
	case inserted:
		result.Inserted = append(result.Inserted, b.toDomain(ent))
		s.publish(b.kind, events.OutcomeInserted, ent.GetID(), ent.GetTimestamp())
		s.observe(b.kind, events.OutcomeInserted, 1)
	case found:
		result.Updated = append(result.Updated, b.toDomain(ent))
		s.publish(b.kind, events.OutcomeUpdated, ent.GetID(), ent.GetTimestamp())
		s.observe(b.kind, events.OutcomeUpdated, 1)
	}
	if result.Mutated() {
		s.logAudit(ctx, entriesFor(b, rec, prov))
	}
	return result, nil
}

// entriesFor fills empty caller provenance from the binding's per-type
// defaults before synthesizing the audit entry. A binding without an
// action describes telemetry that leaves no user trace.
func entriesFor[D, E any, PE storage.RecordPtr[E]](b binding[D, E, PE], rec D, prov syncdomain.Provenance) []auditdomain.Entry {
	if prov.Action == "" {
		if b.action == nil {
			return nil
		}
		prov.Action = b.action(rec)
		if len(prov.Values) == 0 && b.values != nil {
			prov.Values = b.values(rec)
		}
	}
	return provEntries(prov)
}

func invalidate[D, E any, PE storage.RecordPtr[E]](ctx context.Context, s *Service, b binding[D, E, PE], id int64, prov syncdomain.Provenance) (*records.TransactionResult[D], error) {
	if id <= 0 {
		return nil, syncdomain.ErrInvalidID
	}
	rec, transitioned, err := ops.Invalidate[E, PE](ctx, s.db, id)
	if err != nil {
		return nil, s.storeErr(ctx, "invalidate", b.kind, id, err)
	}

	result := records.NewTransactionResult[D]()
	if !transitioned {
		return result, nil
	}
	result.Invalidated = append(result.Invalidated, b.toDomain(rec))
	s.publish(b.kind, events.OutcomeInvalidated, rec.GetID(), rec.GetTimestamp())
	s.observe(b.kind, events.OutcomeInvalidated, 1)
	if prov.Action == "" {
		prov.Action = auditdomain.ActionRemoved
	}
	s.logAudit(ctx, provEntries(prov))
	return result, nil
}

func backfillRemoteIDs[D, E any, PE storage.RecordPtr[E]](ctx context.Context, s *Service, b binding[D, E, PE], updates []ops.RemoteIDUpdate) (*records.TransactionResult[D], error) {
	updated, err := ops.UpdateRemoteIDs[E, PE](ctx, s.db, updates)
	if err != nil {
		return nil, s.storeErr(ctx, "update_remote_ids", b.kind, updates, err)
	}

	// Correlation bookkeeping only, nothing for the audit log.
	result := records.NewTransactionResult[D]()
	for _, rec := range updated {
		result.UpdatedRemoteID = append(result.UpdatedRemoteID, b.toDomain(rec))
		s.publish(b.kind, events.OutcomeUpdatedRemoteID, rec.GetID(), rec.GetTimestamp())
	}
	s.observe(b.kind, events.OutcomeUpdatedRemoteID, len(updated))
	return result, nil
}

func syncRemote[D, E any, PE storage.RecordPtr[E]](ctx context.Context, s *Service, b binding[D, E, PE], recs []D, doLog bool) (*records.TransactionResult[D], error) {
	incoming := make([]PE, 0, len(recs))
	for _, r := range recs {
		incoming = append(incoming, b.toStorage(r))
	}
	s.metrics.ObserveBatch(len(incoming))

	out, err := ops.SyncFromRemote(ctx, s.db, incoming, b.hooks)
	if err != nil {
		return nil, s.storeErr(ctx, "sync_remote", b.kind, recs, err)
	}

	result := records.NewTransactionResult[D]()
	collect(s, b, out.Inserted, events.OutcomeInserted, &result.Inserted)
	collect(s, b, out.Updated, events.OutcomeUpdated, &result.Updated)
	collect(s, b, out.Invalidated, events.OutcomeInvalidated, &result.Invalidated)
	collect(s, b, out.UpdatedRemoteID, events.OutcomeUpdatedRemoteID, &result.UpdatedRemoteID)
	collect(s, b, out.UpdatedDuration, events.OutcomeUpdatedDuration, &result.UpdatedDuration)
	collect(s, b, out.NotUpdated, "", &result.NotUpdated)

	if doLog {
		s.logAudit(ctx, remoteEntries(b, result))
	}
	return result, nil
}

// collect maps one outcome category into the result and fans out the
// change notifications. NotUpdated passes an empty outcome: nothing
// durable happened, so nothing is published.
func collect[D, E any, PE storage.RecordPtr[E]](s *Service, b binding[D, E, PE], recs []PE, outcome string, dst *[]D) {
	for _, rec := range recs {
		*dst = append(*dst, b.toDomain(rec))
		if outcome != "" {
			s.publish(b.kind, outcome, rec.GetID(), rec.GetTimestamp())
		}
	}
	if outcome != "" {
		s.observe(b.kind, outcome, len(recs))
	}
}

// remoteEntries synthesizes the audit entries of a remote sync, in
// category order. Correlation-id backfills and untouched records leave
// no trace; a replayed batch therefore audits nothing the second time.
func remoteEntries[D, E any, PE storage.RecordPtr[E]](b binding[D, E, PE], result *records.TransactionResult[D]) []auditdomain.Entry {
	var entries []auditdomain.Entry
	add := func(recs []D, action func(D) auditdomain.Action) {
		for _, r := range recs {
			e := auditdomain.Entry{Action: action(r), Source: auditdomain.SourceRemote}
			if b.values != nil {
				e.Values = b.values(r)
			}
			entries = append(entries, e)
		}
	}
	add(result.Inserted, b.action)
	add(result.Updated, b.action)
	add(result.Invalidated, constAction[D](auditdomain.ActionRemoved))
	add(result.UpdatedDuration, b.action)
	return entries
}

func syncDevice[D, E any, PE storage.DevicePtr[E]](ctx context.Context, s *Service, b binding[D, E, PE], rec D) (*records.TransactionResult[D], error) {
	ent := b.toStorage(rec)
	inserted, changed, err := ops.SyncDevice(ctx, s.db, ent, b.hooks)
	if err != nil {
		return nil, s.storeErr(ctx, "sync_device", b.kind, rec, err)
	}

	result := records.NewTransactionResult[D]()
	switch {
	case inserted:
		result.Inserted = append(result.Inserted, b.toDomain(ent))
		s.publish(b.kind, events.OutcomeInserted, ent.GetID(), ent.GetTimestamp())
		s.observe(b.kind, events.OutcomeInserted, 1)
	case changed:
		result.Updated = append(result.Updated, b.toDomain(ent))
		s.publish(b.kind, events.OutcomeUpdated, ent.GetID(), ent.GetTimestamp())
		s.observe(b.kind, events.OutcomeUpdated, 1)
	default:
		result.NotUpdated = append(result.NotUpdated, b.toDomain(ent))
	}
	return result, nil
}

// startInterval begins a new interval record and truncates the one
// covering its start, keeping at most one active interval per instant.
func startInterval[D, E any, PE storage.IntervalPtr[E]](ctx context.Context, s *Service, b binding[D, E, PE], rec D, prov syncdomain.Provenance) (*records.TransactionResult[D], error) {
	ent := b.toStorage(rec)
	ended, err := ops.InsertAndCancelCurrent[E, PE](ctx, s.db, ent)
	if err != nil {
		return nil, s.storeErr(ctx, "insert_and_cancel_current", b.kind, rec, err)
	}

	result := records.NewTransactionResult[D]()
	result.Inserted = append(result.Inserted, b.toDomain(ent))
	s.publish(b.kind, events.OutcomeInserted, ent.GetID(), ent.GetTimestamp())
	s.observe(b.kind, events.OutcomeInserted, 1)
	if ended != nil {
		result.Ended = append(result.Ended, b.toDomain(ended))
		s.publish(b.kind, events.OutcomeEnded, ended.GetID(), ended.GetTimestamp())
		s.observe(b.kind, events.OutcomeEnded, 1)
	}
	s.logAudit(ctx, provEntries(prov))
	return result, nil
}

// cancelInterval truncates the interval covering the given instant. The
// shortened record lands in Updated: the caller modified an existing
// row, unlike startInterval where the supersession is a byproduct and
// the old record is reported as Ended.
func cancelInterval[D, E any, PE storage.IntervalPtr[E]](ctx context.Context, s *Service, b binding[D, E, PE], at int64, prov syncdomain.Provenance) (*records.TransactionResult[D], error) {
	rec, cancelled, err := ops.CancelCurrentInterval[E, PE](ctx, s.db, at)
	if err != nil {
		return nil, s.storeErr(ctx, "cancel_current", b.kind, at, err)
	}

	result := records.NewTransactionResult[D]()
	if !cancelled {
		return result, nil
	}
	result.Updated = append(result.Updated, b.toDomain(rec))
	s.publish(b.kind, events.OutcomeUpdated, rec.GetID(), rec.GetTimestamp())
	s.observe(b.kind, events.OutcomeUpdated, 1)
	s.logAudit(ctx, provEntries(prov))
	return result, nil
}

func activeInterval[D, E any, PE storage.IntervalPtr[E]](ctx context.Context, s *Service, b binding[D, E, PE], at int64) (*D, error) {
	rec, err := ops.ActiveIntervalAt[E, PE](ctx, s.db, at)
	if err != nil {
		return nil, s.storeErr(ctx, "active_at", b.kind, at, err)
	}
	if rec == nil {
		return nil, nil
	}
	d := b.toDomain(rec)
	return &d, nil
}

func listFrom[D, E any, PE storage.RecordPtr[E]](ctx context.Context, s *Service, b binding[D, E, PE], from int64, includeInvalid bool) ([]D, error) {
	recs, err := ops.ListFrom[E, PE](ctx, s.db, from, includeInvalid)
	if err != nil {
		return nil, s.storeErr(ctx, "list_from", b.kind, from, err)
	}
	out := make([]D, 0, len(recs))
	for _, rec := range recs {
		out = append(out, b.toDomain(rec))
	}
	return out, nil
}

func newest[D, E any, PE storage.RecordPtr[E]](ctx context.Context, s *Service, b binding[D, E, PE]) (*D, error) {
	rec, err := ops.Newest[E, PE](ctx, s.db)
	if err != nil {
		return nil, s.storeErr(ctx, "newest", b.kind, nil, err)
	}
	if rec == nil {
		return nil, nil
	}
	d := b.toDomain(rec)
	return &d, nil
}

func last[D, E any, PE storage.RecordPtr[E]](ctx context.Context, s *Service, b binding[D, E, PE], n int) ([]D, error) {
	recs, err := ops.Last[E, PE](ctx, s.db, n)
	if err != nil {
		return nil, s.storeErr(ctx, "last", b.kind, n, err)
	}
	out := make([]D, 0, len(recs))
	for _, rec := range recs {
		out = append(out, b.toDomain(rec))
	}
	return out, nil
}

// remoteIDUpdate extracts the backfill pair from a record's base fields.
func remoteIDUpdate(b records.Base) ops.RemoteIDUpdate {
	u := ops.RemoteIDUpdate{ID: b.ID}
	if b.RemoteID != nil {
		u.RemoteID = *b.RemoteID
	}
	return u
}
