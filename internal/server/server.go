package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/web2native/bridge/internal/audit"
	"github.com/web2native/bridge/internal/codec"
	"github.com/web2native/bridge/internal/config"
	"github.com/web2native/bridge/internal/host/sim"
	"github.com/web2native/bridge/internal/logging"
	"github.com/web2native/bridge/internal/middleware"
	"github.com/web2native/bridge/internal/monitoring"
	"github.com/web2native/bridge/internal/policy"
	"github.com/web2native/bridge/internal/profile"
	"github.com/web2native/bridge/internal/providers"
	"github.com/web2native/bridge/internal/providers/browser"
	"github.com/web2native/bridge/internal/providers/browser/preflight"
	"github.com/web2native/bridge/internal/registry"
	"github.com/web2native/bridge/internal/ws"
)

const shutdownTimeout = 5 * time.Second

// Options configures a devhost server. Config and Profile are required;
// Logger and Metrics default to inert implementations.
type Options struct {
	Config  *config.Config
	Profile profile.Profile
	Logger  *logging.Logger
	Metrics *monitoring.Metrics
}

// Server wires the dispatch stack to the page-facing HTTP surface.
type Server struct {
	cfg     *config.Config
	logger  *logging.Logger
	metrics *monitoring.Metrics
	router  *gin.Engine
	http    *http.Server

	device   *sim.Device
	flags    *policy.Flags
	registry *registry.Registry
	hub      *ws.Hub
	auditor  audit.Store
}

// New assembles a server from a configuration and a device profile.
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("server requires a config")
	}
	cfg := opts.Config

	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	auditor, err := buildAuditStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	flags := policy.NewFlags(opts.Profile.SeedFlags())
	device := sim.New(opts.Profile, logger)

	var checker browser.Preflighter
	if cfg.Browser.Preflight || opts.Profile.Browser.Preflight {
		checker = preflight.New(cfg.Browser.PreflightTimeout)
		logger.Info("browser preflight enabled",
			zap.Duration("timeout", cfg.Browser.PreflightTimeout))
	}

	reg := registry.New()
	for _, p := range providers.All(providers.Deps{
		Surface:   device,
		Flags:     flags,
		Preflight: checker,
	}) {
		if err := reg.Register(p); err != nil {
			return nil, fmt.Errorf("register provider: %w", err)
		}
	}

	var recorder audit.Recorder
	if auditor != nil {
		recorder = auditor
	}

	hub, err := ws.NewHub(ws.Deps{
		Registry:     reg,
		Enforcer:     policy.NewEnforcer(flags),
		Codec:        codec.New(cfg.Bridge.MaxEnvelopeBytes),
		Auditor:      recorder,
		Logger:       logger,
		Metrics:      opts.Metrics,
		SessionRPS:   cfg.Bridge.SessionRPS,
		SessionBurst: cfg.Bridge.SessionBurst,
	})
	if err != nil {
		return nil, err
	}

	// Host lifecycle calls reach pages as control events. Reloading pages
	// re-announce themselves with an unload frame before navigating, which
	// is what cancels their in-flight requests.
	device.SetHooks(sim.Hooks{
		Reload: func(context.Context) error {
			n := hub.BroadcastEvent(ws.EventReload)
			logger.Info("page reload requested", zap.Int("sessions", n))
			return nil
		},
		Finish: func(context.Context) error {
			n := hub.BroadcastEvent(ws.EventFinish)
			logger.Info("app finish requested", zap.Int("sessions", n))
			return nil
		},
	})

	s := &Server{
		cfg:      cfg,
		logger:   logger.Component("server"),
		metrics:  opts.Metrics,
		device:   device,
		flags:    flags,
		registry: reg,
		hub:      hub,
		auditor:  auditor,
	}
	s.router = s.buildRouter()

	logger.Info("devhost initialized",
		zap.String("device", opts.Profile.Identity().Description()),
		zap.Int("commands", len(reg.Names())))
	return s, nil
}

// buildAuditStore selects the audit backend: disabled, in-memory ring, or a
// sqlite file when a path is configured. A broken configured path fails
// startup rather than silently losing the trail.
func buildAuditStore(cfg *config.Config, logger *logging.Logger) (audit.Store, error) {
	if !cfg.Audit.Enabled {
		return nil, nil
	}
	if cfg.Audit.Path == "" {
		return audit.NewMemory(cfg.Audit.Capacity), nil
	}

	store, err := audit.OpenSQLite(cfg.Audit.Path)
	if err != nil {
		return nil, fmt.Errorf("open audit store: %w", err)
	}
	logger.Info("audit trail on sqlite", zap.String("path", cfg.Audit.Path))
	return store, nil
}

func (s *Server) buildRouter() *gin.Engine {
	if !s.cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(s.metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if s.cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: s.cfg.RateLimit.RequestsPerSecond,
			Burst:             s.cfg.RateLimit.Burst,
		}))
	}

	router.GET("/", s.index)
	router.GET("/bridge.js", s.bridgeJS)
	router.GET("/ws", middleware.PairingToken(s.cfg.Server.PairingToken), s.hub.Handle)
	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/metrics/json", s.metricsJSON)

	debug := router.Group("/debug")
	debug.GET("/services", s.listServices)
	debug.GET("/pending", s.listPending)
	debug.GET("/audit", s.recentAudit)
	debug.GET("/device", s.deviceState)
	debug.POST("/tag", s.injectTag)

	return router
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	addr := net.JoinHostPort(s.cfg.Server.Host, s.cfg.Server.Port)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("devhost listening", zap.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close disconnects every page session, drains the HTTP server, and releases
// the audit store.
func (s *Server) Close() error {
	s.logger.Info("shutting down devhost")
	s.hub.Shutdown("host shutdown")

	if s.http != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.http.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
	}

	if s.auditor != nil {
		if err := s.auditor.Close(); err != nil {
			s.logger.Warn("audit store close failed", zap.Error(err))
		}
	}

	_ = s.logger.Sync()
	return nil
}
