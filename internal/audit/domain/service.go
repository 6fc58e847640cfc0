package domain

import (
	"context"
	"errors"
)

// Entry is the provenance payload callers attach to a mutation; the sink
// turns it into one persisted UserEntry.
type Entry struct {
	Action Action
	Source Source
	Note   string
	Values []ValueWithUnit
}

// ListRequest queries the audit log from a timestamp onward.
// IncludeMaintenance controls whether sync/cleanup bookkeeping entries
// are returned alongside clinical ones.
type ListRequest struct {
	FromTimestamp      int64
	IncludeMaintenance bool
	Limit              int
}

// Service is the append-only audit sink. Append is best-effort from the
// caller's point of view: a failed audit write must never fail the
// mutation that triggered it.
type Service interface {
	Append(ctx context.Context, entries []Entry) (int, error)
	List(ctx context.Context, req ListRequest) ([]UserEntry, error)
}

var (
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
)
