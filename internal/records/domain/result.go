package domain

// TransactionResult reports the categorized outcome of one facade call.
// Every list is always non-nil so callers can iterate unconditionally.
// The categories are semantically distinct and deliberately not collapsed:
// each carries different downstream audit consequences.
type TransactionResult[T any] struct {
	Inserted        []T `json:"inserted"`
	Updated         []T `json:"updated"`
	Invalidated     []T `json:"invalidated"`
	Ended           []T `json:"ended"`
	UpdatedRemoteID []T `json:"updated_remote_id"`
	UpdatedDuration []T `json:"updated_duration"`

	// Side channels of a CGM source sync: auto-generated sensor change
	// events and calibration readings persisted as therapy events.
	SensorInsertionsInserted []TherapyEvent `json:"sensor_insertions_inserted"`
	CalibrationsInserted     []TherapyEvent `json:"calibrations_inserted"`

	// NotUpdated holds records the operation matched but deliberately
	// left untouched. It is not a failure and not merged into Updated.
	NotUpdated []T `json:"not_updated"`
}

// NewTransactionResult returns a result with every category allocated.
func NewTransactionResult[T any]() *TransactionResult[T] {
	return &TransactionResult[T]{
		Inserted:                 []T{},
		Updated:                  []T{},
		Invalidated:              []T{},
		Ended:                    []T{},
		UpdatedRemoteID:          []T{},
		UpdatedDuration:          []T{},
		SensorInsertionsInserted: []TherapyEvent{},
		CalibrationsInserted:     []TherapyEvent{},
		NotUpdated:               []T{},
	}
}

// Mutated reports whether the call durably changed anything.
func (r *TransactionResult[T]) Mutated() bool {
	return len(r.Inserted)+len(r.Updated)+len(r.Invalidated)+len(r.Ended)+
		len(r.UpdatedRemoteID)+len(r.UpdatedDuration)+
		len(r.SensorInsertionsInserted)+len(r.CalibrationsInserted) > 0
}
