package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func observedGlobals(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func query(sql string) func() (string, int64) {
	return func() (string, int64) { return sql, 1 }
}

func TestGormLoggerSlowQuery(t *testing.T) {
	logs := observedGlobals(t)
	l := NewGormLogger(GormLoggerConfig{
		Level:         gormlogger.Warn,
		SlowThreshold: time.Millisecond,
	})

	l.Trace(context.Background(), time.Now().Add(-50*time.Millisecond), query("SELECT 1"), nil)

	entries := logs.FilterMessage("gorm.query").All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)
	require.Equal(t, "SELECT 1", entries[0].ContextMap()["sql"])
}

func TestGormLoggerFailedQuery(t *testing.T) {
	logs := observedGlobals(t)
	l := NewGormLogger(DefaultGormLoggerConfig())

	l.Trace(context.Background(), time.Now(), query("SELECT broken"), errors.New("syntax error"))

	entries := logs.FilterMessage("gorm.query").All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestGormLoggerIgnoresRecordNotFound(t *testing.T) {
	logs := observedGlobals(t)
	l := NewGormLogger(DefaultGormLoggerConfig())

	l.Trace(context.Background(), time.Now(), query("SELECT 1"), gormlogger.ErrRecordNotFound)

	require.Zero(t, logs.Len())
}

func TestGormLoggerLogMode(t *testing.T) {
	logs := observedGlobals(t)
	l := NewGormLogger(DefaultGormLoggerConfig())

	silent := l.LogMode(gormlogger.Silent)
	silent.Trace(context.Background(), time.Now().Add(-time.Second), query("SELECT 1"), errors.New("boom"))

	require.Zero(t, logs.Len())

	// The original logger keeps its own level.
	l.Trace(context.Background(), time.Now(), query("SELECT broken"), errors.New("boom"))
	require.Equal(t, 1, logs.Len())
}
