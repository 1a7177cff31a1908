package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ronmurphy/window-manager-electron-sub001/internal/domain/lifecycle"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/domain/registry"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/domain/theme"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/domain/window"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/infrastructure/monitoring"
)

// Version is reported by the root endpoint
const Version = "0.3.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	registry   *registry.Registry
	controller *lifecycle.Controller
	windows    *window.Manager
	themes     *theme.Service
	metrics    *monitoring.Metrics
	logger     *zap.Logger
}

// Deps groups the handler dependencies
type Deps struct {
	Registry   *registry.Registry
	Controller *lifecycle.Controller
	Windows    *window.Manager
	Themes     *theme.Service
	Metrics    *monitoring.Metrics // Optional
	Logger     *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(d Deps) *Handlers {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		registry:   d.Registry,
		controller: d.Controller,
		windows:    d.Windows,
		themes:     d.Themes,
		metrics:    d.Metrics,
		logger:     logger,
	}
}

// Register mounts every route on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	widgets := r.Group("/widgets")
	widgets.GET("", h.ListWidgets)
	widgets.POST("", h.AddWidget)
	widgets.GET("/scan", h.ScanFolder)
	widgets.POST("/import", h.ImportFolder)
	widgets.POST("/cleanup", h.Cleanup)
	widgets.POST("/reset", h.Reset)
	widgets.GET("/:id", h.GetWidget)
	widgets.PATCH("/:id/settings", h.UpdateSettings)
	widgets.POST("/:id/launch", h.LaunchWidget)
	widgets.POST("/:id/autostart", h.ToggleAutostart)

	modules := r.Group("/modules")
	modules.GET("", h.ListModules)
	modules.POST("", h.AddModule)
	modules.DELETE("/:id", h.RemoveModule)
	modules.POST("/:id/launch", h.LaunchModule)

	windows := r.Group("/windows")
	windows.GET("", h.ListWindows)
	windows.POST("/:id/minimize", h.MinimizeWindow)
	windows.POST("/:id/restore", h.RestoreWindow)
	windows.POST("/:id/close", h.CloseWindow)

	r.GET("/theme", h.GetTheme)
	r.PUT("/theme", h.SetTheme)

	r.GET("/content/*filepath", h.Content)
}

// Root reports service identity
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "widget-shell",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	resp := gin.H{
		"status":   "healthy",
		"registry": h.registry.Stats(),
		"windows":  h.windows.Stats(),
	}
	if h.metrics != nil {
		resp["metrics"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, resp)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func notFound(c *gin.Context, what, id string) {
	c.JSON(http.StatusNotFound, gin.H{"error": what + " not found", "id": id})
}
