package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loopworks/therapysync/internal/records/domain"
	"github.com/loopworks/therapysync/internal/records/storage"
)

func newTempBasal(ts, duration int64, rate float64) *storage.TemporaryBasal {
	return &storage.TemporaryBasal{
		SyncColumns: storage.SyncColumns{Timestamp: ts, Valid: true},
		Rate:        rate,
		Duration:    duration,
		IsAbsolute:  true,
	}
}

func TestInsertAndCancelCurrent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first := newTempBasal(1000, 1_800_000, 2.0)
	ended, err := InsertAndCancelCurrent[storage.TemporaryBasal](ctx, db, first)
	require.NoError(t, err)
	require.Nil(t, ended)

	second := newTempBasal(601_000, 900_000, 0.5)
	ended, err = InsertAndCancelCurrent[storage.TemporaryBasal](ctx, db, second)
	require.NoError(t, err)
	require.NotNil(t, ended)
	require.Equal(t, first.ID, ended.GetID())
	require.EqualValues(t, 600_000, ended.GetDuration())

	// The truncated interval keeps its clinical payload.
	var got storage.TemporaryBasal
	require.NoError(t, db.First(&got, first.ID).Error)
	require.Equal(t, 2.0, got.Rate)
	require.EqualValues(t, 600_000, got.Duration)

	// At most one valid interval covers any instant.
	active, err := ActiveIntervalAt[storage.TemporaryBasal](ctx, db, 1_000_000)
	require.NoError(t, err)
	require.NotNil(t, active)
	require.Equal(t, second.ID, active.GetID())
}

func TestCancelCurrentInterval(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	basal := newTempBasal(1000, 1_800_000, 2.0)
	_, err := InsertAndCancelCurrent[storage.TemporaryBasal](ctx, db, basal)
	require.NoError(t, err)

	rec, cancelled, err := CancelCurrentInterval[storage.TemporaryBasal](ctx, db, 601_000)
	require.NoError(t, err)
	require.True(t, cancelled)
	require.EqualValues(t, 600_000, rec.GetDuration())

	// Nothing active anymore, a second cancel is a no-op.
	_, cancelled, err = CancelCurrentInterval[storage.TemporaryBasal](ctx, db, 700_000)
	require.NoError(t, err)
	require.False(t, cancelled)
}

func TestActiveIntervalAtIgnoresInvalid(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	basal := newTempBasal(1000, 1_800_000, 2.0)
	basal.Valid = false
	require.NoError(t, db.Create(basal).Error)

	active, err := ActiveIntervalAt[storage.TemporaryBasal](ctx, db, 2000)
	require.NoError(t, err)
	require.Nil(t, active)
}

func TestSyncCGM(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	values := []*storage.GlucoseValue{
		{SyncColumns: storage.SyncColumns{Timestamp: 1000, Valid: true}, Value: 120, TrendArrow: "flat", SourceSensor: "g6"},
		{SyncColumns: storage.SyncColumns{Timestamp: 2000, Valid: true}, Value: 125, TrendArrow: "flat", SourceSensor: "g6"},
	}
	insertion := int64(500)
	calibrations := []domain.Calibration{{Timestamp: 800, Value: 118, GlucoseUnit: "mg/dl"}}

	out, err := SyncCGM(ctx, db, values, calibrations, &insertion)
	require.NoError(t, err)
	require.Len(t, out.Values.Inserted, 2)
	require.Len(t, out.SensorInsertions, 1)
	require.Len(t, out.Calibrations, 1)

	// Re-uploading the same window adds nothing.
	replay := []*storage.GlucoseValue{
		{SyncColumns: storage.SyncColumns{Timestamp: 1000, Valid: true}, Value: 120, TrendArrow: "flat", SourceSensor: "g6"},
	}
	out, err = SyncCGM(ctx, db, replay, calibrations, &insertion)
	require.NoError(t, err)
	require.Empty(t, out.Values.Inserted)
	require.Len(t, out.Values.NotUpdated, 1)
	require.Empty(t, out.SensorInsertions)
	require.Empty(t, out.Calibrations)

	// A corrected reading for the same slot updates in place.
	corrected := []*storage.GlucoseValue{
		{SyncColumns: storage.SyncColumns{Timestamp: 1000, Valid: true}, Value: 122, TrendArrow: "single_up", SourceSensor: "g6"},
	}
	out, err = SyncCGM(ctx, db, corrected, nil, nil)
	require.NoError(t, err)
	require.Len(t, out.Values.Updated, 1)

	var count int64
	require.NoError(t, db.Model(&storage.GlucoseValue{}).Count(&count).Error)
	require.EqualValues(t, 2, count)
	require.NoError(t, db.Model(&storage.TherapyEvent{}).Count(&count).Error)
	require.EqualValues(t, 2, count)
}
