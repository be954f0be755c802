package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wardenhq/warden/internal/config"
	"github.com/wardenhq/warden/internal/metrics"
	"github.com/wardenhq/warden/internal/ratelimit"
	reportdomain "github.com/wardenhq/warden/internal/report/domain"
	tenantdomain "github.com/wardenhq/warden/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Route-level fixed-window limits for the write path.
const (
	submitLimitPerMinute = 10
	quotaLimitPerMinute  = 60
)

// Module wires the HTTP server.
var Module = fx.Module("http.server",
	fx.Provide(
		NewEngine,
		NewServer,
	),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

// Server holds the handler dependencies.
type Server struct {
	engine    *gin.Engine
	cfg       config.Config
	log       *zap.Logger
	resolver  tenantdomain.Resolver
	limiter   *ratelimit.Limiter
	reportSvc reportdomain.Service
	metrics   *metrics.Metrics
}

// NewServer builds the server.
func NewServer(
	engine *gin.Engine,
	cfg config.Config,
	log *zap.Logger,
	resolver tenantdomain.Resolver,
	limiter *ratelimit.Limiter,
	reportSvc reportdomain.Service,
	m *metrics.Metrics,
) *Server {
	return &Server{
		engine:    engine,
		cfg:       cfg,
		log:       log.Named("server"),
		resolver:  resolver,
		limiter:   limiter,
		reportSvc: reportSvc,
		metrics:   m,
	}
}

// NewEngine builds the gin engine with the base middleware chain.
func NewEngine(cfg config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// RegisterRoutes mounts the API surface.
func (s *Server) RegisterRoutes() {
	api := s.engine.Group("/api", s.TenantContext())

	// Tenancy is optional here: the frontend probes this endpoint to decide
	// whether the host maps to a tenant at all.
	api.GET("/tenant", s.GetTenant)

	authed := api.Group("", s.RequireTenant(), UserRequired())
	authed.POST("/reports",
		s.RateLimit("report_create", submitLimitPerMinute, time.Minute),
		s.CreateReport,
	)
	authed.GET("/reports", s.ListReports)
	authed.GET("/reports/quota",
		s.RateLimit("report_quota", quotaLimitPerMinute, time.Minute),
		s.GetReportQuota,
	)

	archive := authed.Group("/archive", s.RequireFeature(tenantdomain.FeatureArchive))
	archive.GET("/reports", s.ListArchivedReports)
}

func registerRoutes(s *Server) {
	s.RegisterRoutes()
}

func run(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.log.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.log.Fatal("http server failed", zap.Error(err))
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
