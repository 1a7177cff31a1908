// Package server wires the store, registry, window manager and API into
// one process and owns its boot and shutdown sequence.
package server

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ronmurphy/window-manager-electron-sub001/internal/api/http"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/api/middleware"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/api/ws"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/domain/lifecycle"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/domain/registry"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/domain/theme"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/domain/window"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/infrastructure/config"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/infrastructure/logging"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/infrastructure/monitoring"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/infrastructure/resilience"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/infrastructure/tracing"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/shared/types"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/store"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	config     *config.Config
	logger     *logging.Logger
	metrics    *monitoring.Metrics
	tracer     *tracing.Tracer
	store      store.Store
	registry   *registry.Registry
	windows    *window.Manager
	controller *lifecycle.Controller
	themes     *theme.Service
	hub        *ws.Hub
	router     *gin.Engine

	unsubscribe func()
}

// Snapshot is what a freshly connected stream client receives
type Snapshot struct {
	Projection interface{} `json:"projection"`
	Windows    interface{} `json:"windows"`
	Theme      theme.Theme `json:"theme"`
}

// New builds every component from cfg. The durable store is opened but
// the registry is not loaded until Boot.
func New(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing widget shell",
		zap.String("addr", cfg.Addr()),
		zap.String("store", cfg.Store.Path),
		zap.Bool("ephemeral", cfg.Store.Ephemeral),
	)

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(promReg)

	inner, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	storeLog := logger.Component("store")
	st := store.NewGuarded(inner, store.GuardOptions{
		Timeout:     cfg.Store.Timeout,
		MaxFailures: cfg.Store.BreakerFailures,
		Observer:    metrics.ObserveStore,
		OnStateChange: breakerObserver(storeLog, metrics),
	})

	reg := registry.New(st, registry.Options{
		Logger:   logger.Component("registry"),
		Recorder: metrics,
	})
	themes := theme.NewService(st, logger.Component("theme"))

	s := &Server{
		config:   cfg,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracing.New(logger.Component("trace")),
		store:    st,
		registry: reg,
		themes:   themes,
	}

	s.hub = ws.NewHub(s.snapshot, logger.Component("ws")).WithMetrics(metrics)
	s.windows = window.NewManager(logger.Component("window")).
		WithMetrics(metrics).
		WithNotifier(func(e window.Event) {
			s.hub.BroadcastEvent(ws.TypeWindow, e.Type, e.Window)
		})
	s.controller = lifecycle.NewController(reg, s.windows, logger.Component("lifecycle")).WithMetrics(metrics)
	s.unsubscribe = reg.Subscribe(func(p types.Projection) {
		s.hub.BroadcastEvent(ws.TypeProjection, "registry.changed", p)
	})

	s.router = s.buildRouter(promReg)
	logger.Info("Server initialized successfully")
	return s, nil
}

// breakerObserver logs store breaker transitions by state name and
// mirrors them into the breaker gauge
func breakerObserver(log *zap.Logger, metrics *monitoring.Metrics) func(string, resilience.State, resilience.State) {
	return func(name string, from, to resilience.State) {
		log.Warn("Store breaker changed state",
			zap.String("breaker", name),
			zap.Stringer("from", from),
			zap.Stringer("to", to),
		)
		metrics.SetBreakerState(name, from, to)
	}
}

func openStore(cfg *config.Config, logger *logging.Logger) (store.Store, error) {
	if cfg.Store.Ephemeral {
		logger.Info("Using in-memory store")
		return store.NewMemory(), nil
	}
	f, err := store.OpenFile(cfg.Store.Path, logger.Component("store"))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return f, nil
}

func (s *Server) buildRouter(promReg *prometheus.Registry) *gin.Engine {
	if !s.config.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(tracing.HTTPMiddleware(s.tracer))
	router.Use(middleware.Logger(s.logger.Component("http")))
	router.Use(monitoring.Middleware(s.metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(s.config.Server.CORSOrigins)))
	if s.config.RateLimit.Enabled {
		s.logger.Info("Rate limiting enabled",
			zap.Int("rps", s.config.RateLimit.RequestsPerSecond),
			zap.Int("burst", s.config.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: s.config.RateLimit.RequestsPerSecond,
			Burst:             s.config.RateLimit.Burst,
		}))
	}

	handlers := http.NewHandlers(http.Deps{
		Registry:   s.registry,
		Controller: s.controller,
		Windows:    s.windows,
		Themes:     s.themes,
		Metrics:    s.metrics,
		Logger:     s.logger.Component("http"),
	})
	handlers.Register(router)

	router.GET("/stream", s.hub.HandleConnection)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))
	return router
}

func (s *Server) snapshot() interface{} {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Store.Timeout)
	defer cancel()
	return Snapshot{
		Projection: s.registry.Projection(),
		Windows:    s.windows.List(nil),
		Theme:      s.themes.Current(ctx),
	}
}

// Boot loads the registry, seeds it from the configured widget folder
// when it is empty and runs the auto-start sweep
func (s *Server) Boot(ctx context.Context) {
	span, ctx := s.tracer.StartSpan(ctx, "boot")
	defer s.tracer.Submit(span)

	start := time.Now()
	s.registry.Load(ctx)

	if base := s.config.Widgets.BasePath; base != "" {
		if len(s.registry.Records()) == 0 {
			if _, err := s.registry.ImportFromFolder(ctx, base); err != nil {
				s.logger.Warn("Failed to seed widgets", zap.String("folder", base), zap.Error(err))
			}
		} else if s.registry.BasePath(ctx) == "" {
			if err := s.registry.SetBasePath(ctx, base); err != nil {
				s.logger.Warn("Failed to set widget base path", zap.Error(err))
			}
		}
	}

	launched := 0
	if s.config.Widgets.Autostart {
		launched = s.controller.BootSweep(ctx)
	}
	span.SetTag("launched", strconv.Itoa(launched))
	s.logger.Info("Boot complete",
		zap.Int("widgets", len(s.registry.Records())),
		zap.Int("launched", launched),
		zap.Duration("duration", time.Since(start)),
	)
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &nethttp.Server{
		Addr:              s.config.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Handler returns the configured router
func (s *Server) Handler() nethttp.Handler {
	return s.router
}

// Registry returns the widget registry
func (s *Server) Registry() *registry.Registry {
	return s.registry
}

// Controller returns the lifecycle controller
func (s *Server) Controller() *lifecycle.Controller {
	return s.controller
}

// Close detaches the stream hub from the registry and drops its clients.
// The logger stays open; it belongs to the caller.
func (s *Server) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.hub.Close()
	s.tracer.Close()
}
