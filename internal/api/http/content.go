package http

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ronmurphy/window-manager-electron-sub001/internal/shared/paths"
)

// Content serves widget files from the widget base path. Stored record
// paths map directly: widgets/clock/index.html is /content/clock/index.html.
func (h *Handlers) Content(c *gin.Context) {
	base := h.registry.BasePath(c.Request.Context())
	if base == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no widget base path configured"})
		return
	}

	resolved, err := paths.Resolve(base, paths.WidgetRoot+c.Param("filepath"))
	if err != nil || !paths.IsWithin(base, resolved) {
		h.logger.Warn("Rejected content path", zap.String("path", c.Param("filepath")), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid content path"})
		return
	}

	info, err := os.Stat(resolved)
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{"error": "content not found"})
		return
	}
	c.File(resolved)
}
