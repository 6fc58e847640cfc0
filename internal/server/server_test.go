package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/loopworks/therapysync/internal/audit/domain"
	auditrepo "github.com/loopworks/therapysync/internal/audit/repository"
	auditservice "github.com/loopworks/therapysync/internal/audit/service"
	"github.com/loopworks/therapysync/internal/clock"
	"github.com/loopworks/therapysync/internal/config"
	"github.com/loopworks/therapysync/internal/events"
	persistservice "github.com/loopworks/therapysync/internal/persistence/service"
	records "github.com/loopworks/therapysync/internal/records/domain"
	"github.com/loopworks/therapysync/internal/records/storage"
)

func setupServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	models := append(storage.AllModels(), &auditdomain.UserEntry{})
	require.NoError(t, db.AutoMigrate(models...))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.UnixMilli(1_700_000_000_000))
	log := zap.NewNop()
	cfg := config.Config{RetentionDays: 90, DBType: "sqlite"}

	auditSvc := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: fake,
		Repo:  auditrepo.Provide(),
	})
	hub := events.NewHub()
	svc := persistservice.NewService(persistservice.Params{
		DB:     db,
		Log:    log,
		Clock:  fake,
		Config: cfg,
		Audit:  auditSvc,
		Hub:    hub,
	})

	engine := gin.New()
	NewServer(ServerParams{Gin: engine, Cfg: cfg, SyncSvc: svc, Hub: hub})
	return engine, db
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = raw
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestUpsertAndListBolus(t *testing.T) {
	engine, _ := setupServer(t)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/records/bolus", gin.H{
		"record": gin.H{"timestamp": 1000, "valid": true, "amount": 1.5, "type": "normal"},
		"action": "bolus",
		"source": "ui",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result records.TransactionResult[records.Bolus]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Inserted, 1)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/records/bolus", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []records.Bolus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	require.Equal(t, 1.5, rows[0].Amount)
}

func TestSyncEndpointIsIdempotent(t *testing.T) {
	engine, db := setupServer(t)

	body := gin.H{"records": []gin.H{
		{"timestamp": 1000, "remote_id": "c1", "valid": true, "amount": 12},
		{"timestamp": 2000, "remote_id": "c2", "valid": true, "amount": 30},
	}}
	w := doJSON(t, engine, http.MethodPost, "/api/v1/records/carbs/sync", body)
	require.Equal(t, http.StatusOK, w.Code)
	var result records.TransactionResult[records.Carbs]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Inserted, 2)

	w = doJSON(t, engine, http.MethodPost, "/api/v1/records/carbs/sync", body)
	require.Equal(t, http.StatusOK, w.Code)
	result = records.TransactionResult[records.Carbs]{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Empty(t, result.Inserted)
	require.Len(t, result.NotUpdated, 2)

	var count int64
	require.NoError(t, db.Model(&storage.Carbs{}).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestInvalidateRecord(t *testing.T) {
	engine, _ := setupServer(t)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/records/carbs", gin.H{
		"record": gin.H{"timestamp": 1000, "valid": true, "amount": 12},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var result records.TransactionResult[records.Carbs]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	id := result.Inserted[0].ID

	w = doJSON(t, engine, http.MethodDelete, fmt.Sprintf("/api/v1/records/carbs/%d?source=ui", id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/records/carbs", nil)
	var rows []records.Carbs
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Empty(t, rows)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/records/carbs?include_invalid=true", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	require.False(t, rows[0].Valid)
}

func TestUnknownKindAndUnsupportedOp(t *testing.T) {
	engine, _ := setupServer(t)

	w := doJSON(t, engine, http.MethodGet, "/api/v1/records/nonsense", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	// Glucose values only arrive via source sync, never direct upsert.
	w = doJSON(t, engine, http.MethodPost, "/api/v1/records/glucose_value", gin.H{
		"record": gin.H{"timestamp": 1000, "value": 120},
	})
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/api/v1/records/heart_rate/sync", gin.H{
		"records": []gin.H{{"timestamp": 1000}},
	})
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestBadRequestBodies(t *testing.T) {
	engine, _ := setupServer(t)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/records/bolus", gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, engine, http.MethodDelete, "/api/v1/records/bolus/abc", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserEntriesEndpoint(t *testing.T) {
	engine, _ := setupServer(t)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/records/bolus", gin.H{
		"record": gin.H{"timestamp": 1000, "valid": true, "amount": 1.5, "type": "normal"},
		"action": "bolus",
		"source": "ui",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/user-entries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []auditdomain.UserEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	require.Equal(t, auditdomain.ActionBolus, entries[0].Action)
}

func TestCleanupEndpoint(t *testing.T) {
	engine, _ := setupServer(t)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/maintenance/cleanup", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]int64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Zero(t, resp["purged"])
}
