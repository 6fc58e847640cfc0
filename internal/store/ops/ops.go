// Package ops implements the transaction operations the persistence
// facade delegates to. Every operation executes atomically inside one
// gorm transaction and reports categorized outcomes; the facade does the
// domain conversion and audit bookkeeping on top.
package ops

import (
	"context"
	"errors"

	"github.com/loopworks/therapysync/internal/records/storage"
	"gorm.io/gorm"
)

// Hooks supply the per-entity behavior the generic operations cannot
// derive: content equality (ignoring identity and bookkeeping columns)
// and application of remote-mutable fields.
type Hooks[E any, PE storage.RecordPtr[E]] struct {
	Equal func(a, b PE) bool
	Apply func(dst, src PE)
}

// SyncOutcome categorizes the result of a remote batch reconciliation.
// Lists are allocated lazily; callers treat nil as empty.
type SyncOutcome[PE any] struct {
	Inserted        []PE
	Updated         []PE
	Invalidated     []PE
	UpdatedRemoteID []PE
	UpdatedDuration []PE
	NotUpdated      []PE
}

// InsertOrUpdate persists rec: without identity it inserts, with
// identity it updates the existing row in place. found is false when an
// identity was supplied but no row carries it.
func InsertOrUpdate[E any, PE storage.RecordPtr[E]](ctx context.Context, db *gorm.DB, rec PE) (inserted, found bool, err error) {
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if rec.GetID() == 0 {
			if err := tx.Create(rec).Error; err != nil {
				return err
			}
			inserted, found = true, true
			return nil
		}

		var existing E
		if err := tx.First(&existing, rec.GetID()).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		// Identity and remote correlation id never change through a
		// general update.
		rec.SetRemoteID(PE(&existing).GetRemoteID())
		if err := tx.Save(rec).Error; err != nil {
			return err
		}
		found = true
		return nil
	})
	return inserted, found, err
}

// Invalidate flips the soft-delete flag of the row with the given id.
// transitioned is true only when the row actually changed state, so a
// repeated invalidation cannot produce a duplicate audit entry.
func Invalidate[E any, PE storage.RecordPtr[E]](ctx context.Context, db *gorm.DB, id int64) (rec PE, transitioned bool, err error) {
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing E
		if err := tx.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		rec = PE(&existing)
		if !rec.IsValid() {
			return nil
		}

		rec.SetValid(false)
		if err := tx.Save(rec).Error; err != nil {
			return err
		}
		transitioned = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return rec, transitioned, nil
}

// RemoteIDUpdate pairs a local identity with a newly learned remote
// correlation id.
type RemoteIDUpdate struct {
	ID       int64
	RemoteID string
}

// UpdateRemoteIDs backfills remote correlation ids. Only the remote id
// column is touched; rows without a matching identity are skipped.
func UpdateRemoteIDs[E any, PE storage.RecordPtr[E]](ctx context.Context, db *gorm.DB, updates []RemoteIDUpdate) ([]PE, error) {
	var updated []PE
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			if u.ID == 0 || u.RemoteID == "" {
				continue
			}
			var existing E
			if err := tx.First(&existing, u.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return err
			}
			rec := PE(&existing)
			if rid := rec.GetRemoteID(); rid != nil && *rid == u.RemoteID {
				continue
			}
			remoteID := u.RemoteID
			rec.SetRemoteID(&remoteID)
			if err := tx.Model(new(E)).Where("id = ?", u.ID).
				Update("remote_id", remoteID).Error; err != nil {
				return err
			}
			updated = append(updated, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SyncFromRemote reconciles a batch received from the remote journal.
// Each record is matched and resolved independently by its own
// correlation id (falling back to an exact-timestamp match for rows that
// have not round-tripped yet), so the end state does not depend on batch
// order and replaying an identical batch lands everything in NotUpdated.
func SyncFromRemote[E any, PE storage.RecordPtr[E]](ctx context.Context, db *gorm.DB, incoming []PE, h Hooks[E, PE]) (SyncOutcome[PE], error) {
	var out SyncOutcome[PE]
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, src := range incoming {
			if err := syncOne(tx, src, h, &out); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SyncOutcome[PE]{}, err
	}
	return out, nil
}

func syncOne[E any, PE storage.RecordPtr[E]](tx *gorm.DB, src PE, h Hooks[E, PE], out *SyncOutcome[PE]) error {
	local, err := matchLocal[E, PE](tx, src)
	if err != nil {
		return err
	}

	if local == nil {
		if !src.IsValid() {
			// Remote tombstone for a record this instance never had.
			out.NotUpdated = append(out.NotUpdated, src)
			return nil
		}
		src.SetID(0)
		if err := tx.Create(src).Error; err != nil {
			return err
		}
		out.Inserted = append(out.Inserted, src)
		return nil
	}

	if !src.IsValid() {
		if !local.IsValid() {
			out.NotUpdated = append(out.NotUpdated, local)
			return nil
		}
		local.SetValid(false)
		updates := map[string]any{"valid": false}
		if local.GetRemoteID() == nil && src.GetRemoteID() != nil {
			local.SetRemoteID(src.GetRemoteID())
			updates["remote_id"] = *src.GetRemoteID()
		}
		if err := tx.Model(new(E)).Where("id = ?", local.GetID()).
			Updates(updates).Error; err != nil {
			return err
		}
		out.Invalidated = append(out.Invalidated, local)
		return nil
	}

	// Backfill the correlation id on rows matched by timestamp.
	if local.GetRemoteID() == nil && src.GetRemoteID() != nil {
		local.SetRemoteID(src.GetRemoteID())
		if err := tx.Model(new(E)).Where("id = ?", local.GetID()).
			Update("remote_id", *src.GetRemoteID()).Error; err != nil {
			return err
		}
		out.UpdatedRemoteID = append(out.UpdatedRemoteID, local)
		return nil
	}

	if li, ok := any(local).(storage.Interval); ok {
		si := any(src).(storage.Interval)
		if li.GetDuration() != si.GetDuration() {
			li.SetDuration(si.GetDuration())
			if err := tx.Model(new(E)).Where("id = ?", local.GetID()).
				Update("duration", si.GetDuration()).Error; err != nil {
				return err
			}
			out.UpdatedDuration = append(out.UpdatedDuration, local)
			return nil
		}
	}

	if h.Equal != nil && h.Equal(local, src) {
		out.NotUpdated = append(out.NotUpdated, local)
		return nil
	}

	if h.Apply == nil {
		out.NotUpdated = append(out.NotUpdated, local)
		return nil
	}
	h.Apply(local, src)
	if err := tx.Save(local).Error; err != nil {
		return err
	}
	out.Updated = append(out.Updated, local)
	return nil
}

func matchLocal[E any, PE storage.RecordPtr[E]](tx *gorm.DB, src PE) (PE, error) {
	if rid := src.GetRemoteID(); rid != nil && *rid != "" {
		var existing E
		err := tx.Where("remote_id = ?", *rid).First(&existing).Error
		if err == nil {
			return PE(&existing), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var existing E
	err := tx.Where("timestamp = ? AND remote_id IS NULL", src.GetTimestamp()).First(&existing).Error
	if err == nil {
		return PE(&existing), nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

// SyncDevice reconciles a record observed from a physical device,
// deduplicated by the device identity triple. changed reports whether an
// existing row was materially updated.
func SyncDevice[E any, PE storage.DevicePtr[E]](ctx context.Context, db *gorm.DB, rec PE, h Hooks[E, PE]) (inserted, changed bool, err error) {
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pumpID, pumpType, pumpSerial := rec.DeviceKey()
		if pumpID == nil {
			if err := tx.Create(rec).Error; err != nil {
				return err
			}
			inserted = true
			return nil
		}

		var existing E
		err := tx.Where("pump_id = ? AND pump_type = ? AND pump_serial = ?",
			*pumpID, pumpType, pumpSerial).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := tx.Create(rec).Error; err != nil {
				return err
			}
			inserted = true
			return nil
		}
		if err != nil {
			return err
		}

		local := PE(&existing)
		if h.Equal != nil && h.Equal(local, rec) {
			rec.SetID(local.GetID())
			return nil
		}
		if h.Apply != nil {
			h.Apply(local, rec)
			if err := tx.Save(local).Error; err != nil {
				return err
			}
			changed = true
		}
		rec.SetID(local.GetID())
		return nil
	})
	return inserted, changed, err
}
