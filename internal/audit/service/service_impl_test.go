package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/loopworks/therapysync/internal/audit/domain"
	"github.com/loopworks/therapysync/internal/audit/repository"
	"github.com/loopworks/therapysync/internal/clock"
)

func setupAudit(t *testing.T) (auditdomain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&auditdomain.UserEntry{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.UnixMilli(1_700_000_000_000))

	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  repository.Provide(),
	})
	return svc, db, fake
}

func TestAppendStampsEntries(t *testing.T) {
	svc, db, fake := setupAudit(t)
	ctx := context.Background()

	n, err := svc.Append(ctx, []auditdomain.Entry{{
		Action: auditdomain.ActionBolus,
		Source: auditdomain.SourceUI,
		Note:   "correction",
		Values: []auditdomain.ValueWithUnit{auditdomain.Insulin(1.5)},
	}})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	var row auditdomain.UserEntry
	require.NoError(t, db.First(&row).Error)
	require.NotZero(t, row.ID)
	require.Equal(t, fake.Now().UnixMilli(), row.Timestamp)
	require.Equal(t, auditdomain.ActionBolus, row.Action)
	require.Equal(t, auditdomain.SourceUI, row.Source)
	require.Equal(t, "correction", row.Note)
	require.NotEmpty(t, row.Values)
}

func TestAppendDropsEmptyAction(t *testing.T) {
	svc, db, _ := setupAudit(t)

	n, err := svc.Append(context.Background(), []auditdomain.Entry{
		{Action: "  ", Note: "no action"},
		{Action: auditdomain.ActionCarbs},
	})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	var count int64
	require.NoError(t, db.Model(&auditdomain.UserEntry{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestAppendDefaultsSourceToUnknown(t *testing.T) {
	svc, db, _ := setupAudit(t)

	_, err := svc.Append(context.Background(), []auditdomain.Entry{{Action: auditdomain.ActionBolus}})
	require.NoError(t, err)

	var row auditdomain.UserEntry
	require.NoError(t, db.First(&row).Error)
	require.Equal(t, auditdomain.SourceUnknown, row.Source)
}

func TestListFiltersMaintenance(t *testing.T) {
	svc, _, fake := setupAudit(t)
	ctx := context.Background()

	_, err := svc.Append(ctx, []auditdomain.Entry{
		{Action: auditdomain.ActionBolus, Source: auditdomain.SourceUI},
		{Action: auditdomain.ActionCleanup, Source: auditdomain.SourceAutomation},
	})
	require.NoError(t, err)
	fake.Advance(time.Minute)
	_, err = svc.Append(ctx, []auditdomain.Entry{
		{Action: auditdomain.ActionCarbs, Source: auditdomain.SourceUI},
	})
	require.NoError(t, err)

	entries, err := svc.List(ctx, auditdomain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Newest first.
	require.Equal(t, auditdomain.ActionCarbs, entries[0].Action)
	require.Equal(t, auditdomain.ActionBolus, entries[1].Action)

	entries, err = svc.List(ctx, auditdomain.ListRequest{IncludeMaintenance: true})
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

func TestListHonorsFromAndLimit(t *testing.T) {
	svc, _, fake := setupAudit(t)
	ctx := context.Background()

	base := fake.Now().UnixMilli()
	for i := 0; i < 3; i++ {
		_, err := svc.Append(ctx, []auditdomain.Entry{{Action: auditdomain.ActionBolus}})
		require.NoError(t, err)
		fake.Advance(time.Minute)
	}

	entries, err := svc.List(ctx, auditdomain.ListRequest{FromTimestamp: base + 1})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	entries, err = svc.List(ctx, auditdomain.ListRequest{Limit: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestListRejectsNegativeFrom(t *testing.T) {
	svc, _, _ := setupAudit(t)

	_, err := svc.List(context.Background(), auditdomain.ListRequest{FromTimestamp: -1})
	require.ErrorIs(t, err, auditdomain.ErrInvalidTimeRange)
}
