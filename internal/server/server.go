package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/loopworks/therapysync/internal/audit"
	"github.com/loopworks/therapysync/internal/clock"
	"github.com/loopworks/therapysync/internal/config"
	"github.com/loopworks/therapysync/internal/events"
	"github.com/loopworks/therapysync/internal/migration"
	"github.com/loopworks/therapysync/internal/observability"
	obslogger "github.com/loopworks/therapysync/internal/observability/logger"
	obstracing "github.com/loopworks/therapysync/internal/observability/tracing"
	"github.com/loopworks/therapysync/internal/persistence"
	syncdomain "github.com/loopworks/therapysync/internal/persistence/domain"
	"github.com/loopworks/therapysync/pkg/db"
)

var Module = fx.Module("http.server",
	config.Module,
	observability.Module,
	clock.Module,
	db.Module,
	migration.Module,
	events.Module,
	audit.Module,
	persistence.Module,
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug: obsCfg.Debug(),
	}))
	r.Use(obstracing.GinMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine  *gin.Engine
	cfg     config.Config
	syncSvc syncdomain.Service
	hub     *events.Hub

	// kinds is the per-record-kind handler table, resolved once at
	// construction so a bad route never reaches the facade.
	kinds map[string]kindOps
}

type ServerParams struct {
	fx.In

	Gin     *gin.Engine
	Cfg     config.Config
	SyncSvc syncdomain.Service
	Hub     *events.Hub
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:  p.Gin,
		cfg:     p.Cfg,
		syncSvc: p.SyncSvc,
		hub:     p.Hub,
		kinds:   kindRegistry(p.SyncSvc),
	}

	api := s.engine.Group("/api/v1")
	{
		api.POST("/records/:kind/sync", s.SyncRemoteRecords)
		api.POST("/records/:kind", s.UpsertRecord)
		api.DELETE("/records/:kind/:id", s.InvalidateRecord)
		api.GET("/records/:kind", s.ListRecords)
		api.GET("/records/:kind/stream", s.StreamRecordChanges)

		api.GET("/user-entries", s.ListUserEntries)
		api.POST("/maintenance/cleanup", s.Cleanup)
	}

	return s
}
