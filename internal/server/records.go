package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	auditdomain "github.com/loopworks/therapysync/internal/audit/domain"
	syncdomain "github.com/loopworks/therapysync/internal/persistence/domain"
	records "github.com/loopworks/therapysync/internal/records/domain"
)

// kindOps adapts the typed facade methods of one record kind to the
// uniform JSON route surface. A nil function means the kind does not
// support that operation.
type kindOps struct {
	sync       func(ctx context.Context, body json.RawMessage, doLog bool) (any, error)
	upsert     func(ctx context.Context, body json.RawMessage, prov syncdomain.Provenance) (any, error)
	invalidate func(ctx context.Context, id int64, prov syncdomain.Provenance) (any, error)
	list       func(ctx context.Context, from int64, includeInvalid bool) (any, error)
}

func kindOpsFor[D any](
	syncFn func(context.Context, []D, bool) (*syncdomain.Result[D], error),
	upsertFn func(context.Context, D, syncdomain.Provenance) (*syncdomain.Result[D], error),
	invalidateFn func(context.Context, int64, syncdomain.Provenance) (*syncdomain.Result[D], error),
	listFn func(context.Context, int64, bool) ([]D, error),
) kindOps {
	ops := kindOps{}
	if syncFn != nil {
		ops.sync = func(ctx context.Context, body json.RawMessage, doLog bool) (any, error) {
			var recs []D
			if err := json.Unmarshal(body, &recs); err != nil {
				return nil, ErrBadRequest
			}
			return syncFn(ctx, recs, doLog)
		}
	}
	if upsertFn != nil {
		ops.upsert = func(ctx context.Context, body json.RawMessage, prov syncdomain.Provenance) (any, error) {
			var rec D
			if err := json.Unmarshal(body, &rec); err != nil {
				return nil, ErrBadRequest
			}
			return upsertFn(ctx, rec, prov)
		}
	}
	if invalidateFn != nil {
		ops.invalidate = func(ctx context.Context, id int64, prov syncdomain.Provenance) (any, error) {
			return invalidateFn(ctx, id, prov)
		}
	}
	if listFn != nil {
		ops.list = func(ctx context.Context, from int64, includeInvalid bool) (any, error) {
			return listFn(ctx, from, includeInvalid)
		}
	}
	return ops
}

// kindRegistry resolves every routable record kind once at startup.
func kindRegistry(svc syncdomain.Service) map[string]kindOps {
	return map[string]kindOps{
		string(records.KindBolus): kindOpsFor(
			svc.SyncRemoteBoluses, svc.InsertOrUpdateBolus, svc.InvalidateBolus, svc.GetBolusesFrom),
		string(records.KindCarbs): kindOpsFor(
			svc.SyncRemoteCarbs, svc.InsertOrUpdateCarbs, svc.InvalidateCarbs, svc.GetCarbsFrom),
		string(records.KindBolusCalculatorResult): kindOpsFor(
			svc.SyncRemoteBolusCalculatorResults, svc.InsertOrUpdateBolusCalculatorResult,
			svc.InvalidateBolusCalculatorResult, svc.GetBolusCalculatorResultsFrom),
		string(records.KindExtendedBolus): kindOpsFor[records.ExtendedBolus](
			svc.SyncRemoteExtendedBoluses, nil, svc.InvalidateExtendedBolus, svc.GetExtendedBolusesFrom),
		string(records.KindTemporaryBasal): kindOpsFor(
			svc.SyncRemoteTemporaryBasals, svc.InsertAndCancelCurrentTemporaryBasal,
			svc.InvalidateTemporaryBasal, svc.GetTemporaryBasalsFrom),
		string(records.KindTemporaryTarget): kindOpsFor(
			svc.SyncRemoteTemporaryTargets, svc.InsertAndCancelCurrentTemporaryTarget,
			svc.InvalidateTemporaryTarget, svc.GetTemporaryTargetsFrom),
		string(records.KindTherapyEvent): kindOpsFor(
			svc.SyncRemoteTherapyEvents, svc.InsertOrUpdateTherapyEvent,
			svc.InvalidateTherapyEvent, svc.GetTherapyEventsFrom),
		string(records.KindProfileSwitch): kindOpsFor(
			svc.SyncRemoteProfileSwitches, svc.InsertOrUpdateProfileSwitch,
			svc.InvalidateProfileSwitch, svc.GetProfileSwitchesFrom),
		string(records.KindEffectiveProfileSwitch): kindOpsFor(
			svc.SyncRemoteEffectiveProfileSwitches, svc.InsertEffectiveProfileSwitch,
			svc.InvalidateEffectiveProfileSwitch, svc.GetEffectiveProfileSwitchesFrom),
		string(records.KindGlucoseValue): kindOpsFor[records.GlucoseValue](
			svc.SyncRemoteGlucoseValues, nil, svc.InvalidateGlucoseValue, svc.GetGlucoseValuesFrom),
		string(records.KindRunningMode): kindOpsFor(
			svc.SyncRemoteRunningModes, svc.InsertAndCancelCurrentRunningMode,
			svc.InvalidateRunningMode, svc.GetRunningModesFrom),
		string(records.KindFood): kindOpsFor(
			svc.SyncRemoteFoods, svc.InsertOrUpdateFood, svc.InvalidateFood, svc.GetFoodsFrom),
		string(records.KindDeviceStatus): kindOpsFor[records.DeviceStatus](
			nil,
			func(ctx context.Context, rec records.DeviceStatus, _ syncdomain.Provenance) (*syncdomain.Result[records.DeviceStatus], error) {
				return svc.InsertDeviceStatus(ctx, rec)
			},
			nil, svc.GetDeviceStatusesFrom),
		string(records.KindHeartRate): kindOpsFor[records.HeartRate](
			nil, svc.InsertOrUpdateHeartRate, nil, svc.GetHeartRatesFrom),
		string(records.KindStepsCount): kindOpsFor[records.StepsCount](
			nil, svc.InsertOrUpdateStepsCount, nil, svc.GetStepsCountsFrom),
		string(records.KindTotalDailyDose): kindOpsFor[records.TotalDailyDose](
			nil,
			func(ctx context.Context, rec records.TotalDailyDose, _ syncdomain.Provenance) (*syncdomain.Result[records.TotalDailyDose], error) {
				return svc.SyncPumpTotalDailyDose(ctx, rec)
			},
			nil, svc.GetTotalDailyDosesFrom),
	}
}

type syncRequest struct {
	Records json.RawMessage `json:"records"`
	DoLog   *bool           `json:"do_log"`
}

type upsertRequest struct {
	Record json.RawMessage    `json:"record"`
	Action auditdomain.Action `json:"action"`
	Source auditdomain.Source `json:"source"`
	Note   string             `json:"note"`
}

func (s *Server) SyncRemoteRecords(c *gin.Context) {
	ops, ok := s.kinds[c.Param("kind")]
	if !ok || ops.sync == nil {
		s.kindError(c, ok)
		return
	}

	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Records) == 0 {
		AbortWithError(c, ErrBadRequest)
		return
	}
	doLog := true
	if req.DoLog != nil {
		doLog = *req.DoLog
	}

	result, err := ops.sync(c.Request.Context(), req.Records, doLog)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) UpsertRecord(c *gin.Context) {
	ops, ok := s.kinds[c.Param("kind")]
	if !ok || ops.upsert == nil {
		s.kindError(c, ok)
		return
	}

	var req upsertRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Record) == 0 {
		AbortWithError(c, ErrBadRequest)
		return
	}

	result, err := ops.upsert(c.Request.Context(), req.Record, syncdomain.Provenance{
		Action: req.Action,
		Source: req.Source,
		Note:   req.Note,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) InvalidateRecord(c *gin.Context) {
	ops, ok := s.kinds[c.Param("kind")]
	if !ok || ops.invalidate == nil {
		s.kindError(c, ok)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		AbortWithError(c, ErrBadRequest)
		return
	}

	prov := syncdomain.Provenance{
		Action: auditdomain.ActionRemoved,
		Source: auditdomain.Source(c.Query("source")),
		Note:   c.Query("note"),
	}
	result, invErr := ops.invalidate(c.Request.Context(), id, prov)
	if invErr != nil {
		AbortWithError(c, invErr)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) ListRecords(c *gin.Context) {
	ops, ok := s.kinds[c.Param("kind")]
	if !ok || ops.list == nil {
		s.kindError(c, ok)
		return
	}

	from, err := parseInt64Query(c, "from", 0)
	if err != nil {
		AbortWithError(c, ErrBadRequest)
		return
	}
	includeInvalid := c.Query("include_invalid") == "true"

	result, listErr := ops.list(c.Request.Context(), from, includeInvalid)
	if listErr != nil {
		AbortWithError(c, listErr)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) ListUserEntries(c *gin.Context) {
	from, err := parseInt64Query(c, "from", 0)
	if err != nil {
		AbortWithError(c, ErrBadRequest)
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			AbortWithError(c, ErrBadRequest)
			return
		}
	}
	includeMaintenance := c.Query("include_maintenance") == "true"

	entries, listErr := s.syncSvc.GetUserEntriesFrom(c.Request.Context(), from, includeMaintenance, limit)
	if listErr != nil {
		AbortWithError(c, listErr)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) Cleanup(c *gin.Context) {
	purged, err := s.syncSvc.CleanupOldEntries(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purged": purged})
}

func (s *Server) kindError(c *gin.Context, kindKnown bool) {
	if kindKnown {
		AbortWithError(c, ErrUnsupported)
		return
	}
	AbortWithError(c, ErrUnknownKind)
}

func parseInt64Query(c *gin.Context, key string, def int64) (int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
