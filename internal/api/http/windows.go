package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ronmurphy/window-manager-electron-sub001/internal/shared/types"
)

// ListWindows lists open windows, optionally filtered by ?state=
func (h *Handlers) ListWindows(c *gin.Context) {
	var filter *types.WindowState
	if s := c.Query("state"); s != "" {
		state := types.WindowState(s)
		if state != types.WindowRunning && state != types.WindowMinimized {
			c.JSON(http.StatusBadRequest, gin.H{"error": "state must be running or minimized"})
			return
		}
		filter = &state
	}

	c.JSON(http.StatusOK, gin.H{
		"windows": h.windows.List(filter),
		"stats":   h.windows.Stats(),
	})
}

// MinimizeWindow hides a running window
func (h *Handlers) MinimizeWindow(c *gin.Context) {
	h.windowAction(c, h.windows.Minimize)
}

// RestoreWindow shows a minimized window
func (h *Handlers) RestoreWindow(c *gin.Context) {
	h.windowAction(c, h.windows.Restore)
}

// CloseWindow destroys a window
func (h *Handlers) CloseWindow(c *gin.Context) {
	h.windowAction(c, h.windows.Close)
}

func (h *Handlers) windowAction(c *gin.Context, action func(string) bool) {
	id := c.Param("id")
	if _, ok := h.windows.Get(id); !ok {
		notFound(c, "window", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": action(id), "id": id})
}
