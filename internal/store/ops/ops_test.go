package ops

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/loopworks/therapysync/internal/records/storage"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(storage.AllModels()...))
	return db
}

func strPtr(s string) *string { return &s }

func bolusHooks() Hooks[storage.Bolus, *storage.Bolus] {
	return Hooks[storage.Bolus, *storage.Bolus]{
		Equal: func(a, b *storage.Bolus) bool {
			return a.Timestamp == b.Timestamp && a.Amount == b.Amount &&
				a.Type == b.Type && a.Notes == b.Notes
		},
		Apply: func(dst, src *storage.Bolus) {
			dst.Timestamp = src.Timestamp
			dst.Amount = src.Amount
			dst.Type = src.Type
			dst.Notes = src.Notes
		},
	}
}

func newBolus(ts int64, amount float64) *storage.Bolus {
	return &storage.Bolus{
		SyncColumns: storage.SyncColumns{Timestamp: ts, Valid: true},
		Amount:      amount,
		Type:        "normal",
	}
}

func TestInsertOrUpdate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rec := newBolus(1000, 1.5)
	inserted, found, err := InsertOrUpdate[storage.Bolus](ctx, db, rec)
	require.NoError(t, err)
	require.True(t, inserted)
	require.True(t, found)
	require.NotZero(t, rec.ID)

	rec.Amount = 2.0
	inserted, found, err = InsertOrUpdate[storage.Bolus](ctx, db, rec)
	require.NoError(t, err)
	require.False(t, inserted)
	require.True(t, found)

	var got storage.Bolus
	require.NoError(t, db.First(&got, rec.ID).Error)
	require.Equal(t, 2.0, got.Amount)
}

func TestInsertOrUpdateMissingID(t *testing.T) {
	db := openTestDB(t)

	rec := newBolus(1000, 1.5)
	rec.ID = 42
	inserted, found, err := InsertOrUpdate[storage.Bolus](context.Background(), db, rec)
	require.NoError(t, err)
	require.False(t, inserted)
	require.False(t, found)
}

func TestInsertOrUpdatePreservesRemoteID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rec := newBolus(1000, 1.5)
	rec.RemoteID = strPtr("remote-1")
	_, _, err := InsertOrUpdate[storage.Bolus](ctx, db, rec)
	require.NoError(t, err)

	update := newBolus(1000, 3.0)
	update.ID = rec.ID
	update.RemoteID = strPtr("tampered")
	_, _, err = InsertOrUpdate[storage.Bolus](ctx, db, update)
	require.NoError(t, err)

	var got storage.Bolus
	require.NoError(t, db.First(&got, rec.ID).Error)
	require.NotNil(t, got.RemoteID)
	require.Equal(t, "remote-1", *got.RemoteID)
	require.Equal(t, 3.0, got.Amount)
}

func TestInvalidateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rec := newBolus(1000, 1.5)
	_, _, err := InsertOrUpdate[storage.Bolus](ctx, db, rec)
	require.NoError(t, err)

	got, transitioned, err := Invalidate[storage.Bolus](ctx, db, rec.ID)
	require.NoError(t, err)
	require.True(t, transitioned)
	require.False(t, got.IsValid())

	_, transitioned, err = Invalidate[storage.Bolus](ctx, db, rec.ID)
	require.NoError(t, err)
	require.False(t, transitioned)

	_, transitioned, err = Invalidate[storage.Bolus](ctx, db, 9999)
	require.NoError(t, err)
	require.False(t, transitioned)
}

func TestUpdateRemoteIDs(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rec := newBolus(1000, 1.5)
	_, _, err := InsertOrUpdate[storage.Bolus](ctx, db, rec)
	require.NoError(t, err)

	updated, err := UpdateRemoteIDs[storage.Bolus](ctx, db, []RemoteIDUpdate{
		{ID: rec.ID, RemoteID: "remote-7"},
		{ID: 9999, RemoteID: "ghost"},
		{ID: rec.ID, RemoteID: ""},
	})
	require.NoError(t, err)
	require.Len(t, updated, 1)

	var got storage.Bolus
	require.NoError(t, db.First(&got, rec.ID).Error)
	require.Equal(t, "remote-7", *got.RemoteID)

	// Same value again is a no-op.
	updated, err = UpdateRemoteIDs[storage.Bolus](ctx, db, []RemoteIDUpdate{
		{ID: rec.ID, RemoteID: "remote-7"},
	})
	require.NoError(t, err)
	require.Empty(t, updated)
}

func TestSyncFromRemoteInsertAndReplay(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	incoming := []*storage.Bolus{newBolus(1000, 1.5), newBolus(2000, 2.5)}
	incoming[0].RemoteID = strPtr("r1")
	incoming[1].RemoteID = strPtr("r2")

	out, err := SyncFromRemote(ctx, db, incoming, bolusHooks())
	require.NoError(t, err)
	require.Len(t, out.Inserted, 2)

	// Replaying the identical batch changes nothing.
	replay := []*storage.Bolus{newBolus(1000, 1.5), newBolus(2000, 2.5)}
	replay[0].RemoteID = strPtr("r1")
	replay[1].RemoteID = strPtr("r2")
	out, err = SyncFromRemote(ctx, db, replay, bolusHooks())
	require.NoError(t, err)
	require.Empty(t, out.Inserted)
	require.Len(t, out.NotUpdated, 2)

	var count int64
	require.NoError(t, db.Model(&storage.Bolus{}).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestSyncFromRemoteOrderIndependent(t *testing.T) {
	ctx := context.Background()

	run := func(t *testing.T, batch []*storage.Bolus) []storage.Bolus {
		db := openTestDB(t)
		_, err := SyncFromRemote(ctx, db, batch, bolusHooks())
		require.NoError(t, err)
		var rows []storage.Bolus
		require.NoError(t, db.Order("timestamp asc").Find(&rows).Error)
		return rows
	}

	t.Run("forward", func(t *testing.T) {
		a := newBolus(1000, 1.5)
		a.RemoteID = strPtr("r1")
		b := newBolus(2000, 2.5)
		b.RemoteID = strPtr("r2")
		rows := run(t, []*storage.Bolus{a, b})
		require.Len(t, rows, 2)
		require.Equal(t, 1.5, rows[0].Amount)
		require.Equal(t, 2.5, rows[1].Amount)
	})

	t.Run("reversed", func(t *testing.T) {
		a := newBolus(1000, 1.5)
		a.RemoteID = strPtr("r1")
		b := newBolus(2000, 2.5)
		b.RemoteID = strPtr("r2")
		rows := run(t, []*storage.Bolus{b, a})
		require.Len(t, rows, 2)
		require.Equal(t, 1.5, rows[0].Amount)
		require.Equal(t, 2.5, rows[1].Amount)
	})
}

func TestSyncFromRemoteInvalidation(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	local := newBolus(1000, 1.5)
	_, _, err := InsertOrUpdate[storage.Bolus](ctx, db, local)
	require.NoError(t, err)

	tombstone := newBolus(1000, 1.5)
	tombstone.RemoteID = strPtr("r1")
	tombstone.Valid = false

	out, err := SyncFromRemote(ctx, db, []*storage.Bolus{tombstone}, bolusHooks())
	require.NoError(t, err)
	require.Len(t, out.Invalidated, 1)

	// The row is kept, flipped invalid, and learned its correlation id.
	var got storage.Bolus
	require.NoError(t, db.First(&got, local.ID).Error)
	require.False(t, got.Valid)
	require.NotNil(t, got.RemoteID)
	require.Equal(t, "r1", *got.RemoteID)

	// Replay resolves into NotUpdated.
	tombstone2 := newBolus(1000, 1.5)
	tombstone2.RemoteID = strPtr("r1")
	tombstone2.Valid = false
	out, err = SyncFromRemote(ctx, db, []*storage.Bolus{tombstone2}, bolusHooks())
	require.NoError(t, err)
	require.Empty(t, out.Invalidated)
	require.Len(t, out.NotUpdated, 1)
}

func TestSyncFromRemoteUnknownTombstone(t *testing.T) {
	db := openTestDB(t)

	tombstone := newBolus(5000, 1.0)
	tombstone.RemoteID = strPtr("never-seen")
	tombstone.Valid = false

	out, err := SyncFromRemote(context.Background(), db, []*storage.Bolus{tombstone}, bolusHooks())
	require.NoError(t, err)
	require.Len(t, out.NotUpdated, 1)

	var count int64
	require.NoError(t, db.Model(&storage.Bolus{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestSyncFromRemoteBackfillsRemoteID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	local := newBolus(1000, 1.5)
	_, _, err := InsertOrUpdate[storage.Bolus](ctx, db, local)
	require.NoError(t, err)

	src := newBolus(1000, 1.5)
	src.RemoteID = strPtr("r1")
	out, err := SyncFromRemote(ctx, db, []*storage.Bolus{src}, bolusHooks())
	require.NoError(t, err)
	require.Len(t, out.UpdatedRemoteID, 1)
	require.Empty(t, out.Updated)

	var got storage.Bolus
	require.NoError(t, db.First(&got, local.ID).Error)
	require.Equal(t, "r1", *got.RemoteID)
}

func TestSyncFromRemoteAppliesChanges(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	local := newBolus(1000, 1.5)
	local.RemoteID = strPtr("r1")
	_, _, err := InsertOrUpdate[storage.Bolus](ctx, db, local)
	require.NoError(t, err)

	src := newBolus(1000, 4.0)
	src.RemoteID = strPtr("r1")
	out, err := SyncFromRemote(ctx, db, []*storage.Bolus{src}, bolusHooks())
	require.NoError(t, err)
	require.Len(t, out.Updated, 1)

	var got storage.Bolus
	require.NoError(t, db.First(&got, local.ID).Error)
	require.Equal(t, 4.0, got.Amount)
}

func TestSyncFromRemoteUpdatesIntervalDuration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	local := &storage.TemporaryBasal{
		SyncColumns: storage.SyncColumns{Timestamp: 1000, RemoteID: strPtr("r1"), Valid: true},
		Rate:        2.0,
		Duration:    1_800_000,
		IsAbsolute:  true,
	}
	_, _, err := InsertOrUpdate[storage.TemporaryBasal](ctx, db, local)
	require.NoError(t, err)

	src := &storage.TemporaryBasal{
		SyncColumns: storage.SyncColumns{Timestamp: 1000, RemoteID: strPtr("r1"), Valid: true},
		Rate:        2.0,
		Duration:    600_000,
		IsAbsolute:  true,
	}
	out, err := SyncFromRemote(ctx, db, []*storage.TemporaryBasal{src},
		Hooks[storage.TemporaryBasal, *storage.TemporaryBasal]{})
	require.NoError(t, err)
	require.Len(t, out.UpdatedDuration, 1)

	var got storage.TemporaryBasal
	require.NoError(t, db.First(&got, local.ID).Error)
	require.EqualValues(t, 600_000, got.Duration)
	require.Equal(t, 2.0, got.Rate)
}

func TestSyncDevice(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	pumpID := int64(17)
	rec := newBolus(1000, 1.5)
	rec.DeviceColumns = storage.DeviceColumns{PumpType: "dana", PumpSerial: "abc", PumpID: &pumpID}

	inserted, changed, err := SyncDevice(ctx, db, rec, bolusHooks())
	require.NoError(t, err)
	require.True(t, inserted)
	require.False(t, changed)

	// Same device record again dedupes.
	again := newBolus(1000, 1.5)
	again.DeviceColumns = storage.DeviceColumns{PumpType: "dana", PumpSerial: "abc", PumpID: &pumpID}
	inserted, changed, err = SyncDevice(ctx, db, again, bolusHooks())
	require.NoError(t, err)
	require.False(t, inserted)
	require.False(t, changed)
	require.Equal(t, rec.ID, again.ID)

	// A changed payload for the same key updates in place.
	amended := newBolus(1000, 2.5)
	amended.DeviceColumns = storage.DeviceColumns{PumpType: "dana", PumpSerial: "abc", PumpID: &pumpID}
	inserted, changed, err = SyncDevice(ctx, db, amended, bolusHooks())
	require.NoError(t, err)
	require.False(t, inserted)
	require.True(t, changed)

	var count int64
	require.NoError(t, db.Model(&storage.Bolus{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestListFromAndNewest(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, b := range []*storage.Bolus{newBolus(1000, 1), newBolus(2000, 2), newBolus(3000, 3)} {
		_, _, err := InsertOrUpdate[storage.Bolus](ctx, db, b)
		require.NoError(t, err)
	}
	invalid := newBolus(2500, 9)
	invalid.Valid = false
	_, _, err := InsertOrUpdate[storage.Bolus](ctx, db, invalid)
	require.NoError(t, err)

	rows, err := ListFrom[storage.Bolus](ctx, db, 2000, false)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.EqualValues(t, 2000, rows[0].Timestamp)

	rows, err = ListFrom[storage.Bolus](ctx, db, 2000, true)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	latest, err := Newest[storage.Bolus](ctx, db)
	require.NoError(t, err)
	require.NotNil(t, latest)
	require.EqualValues(t, 3000, latest.Timestamp)

	recent, err := Last[storage.Bolus](ctx, db, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.EqualValues(t, 3000, recent[0].Timestamp)
	require.EqualValues(t, 2000, recent[1].Timestamp)
}

func TestPurgeOlderThan(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, b := range []*storage.Bolus{newBolus(1000, 1), newBolus(2000, 2), newBolus(3000, 3)} {
		_, _, err := InsertOrUpdate[storage.Bolus](ctx, db, b)
		require.NoError(t, err)
	}

	n, err := PurgeOlderThan[storage.Bolus](ctx, db, 2500)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	var count int64
	require.NoError(t, db.Model(&storage.Bolus{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}
