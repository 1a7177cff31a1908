package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ronmurphy/window-manager-electron-sub001/internal/domain/registry"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/shared/types"
)

// ListModules returns the category-grouped module view
func (h *Handlers) ListModules(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": h.registry.Projection().Categories,
	})
}

// AddModule stores a local-html or youtube-embed module
func (h *Handlers) AddModule(c *gin.Context) {
	var m types.Module
	if err := c.ShouldBindJSON(&m); err != nil {
		badRequest(c, err)
		return
	}

	stored, err := h.registry.AddModule(c.Request.Context(), m)
	if err != nil {
		if errors.Is(err, registry.ErrInvalidModule) {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, stored)
}

// RemoveModule deletes a module
func (h *Handlers) RemoveModule(c *gin.Context) {
	id := c.Param("id")
	removed, err := h.registry.RemoveModule(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if !removed {
		notFound(c, "module", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

// LaunchModule dispatches a launch for any module type
func (h *Handlers) LaunchModule(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.registry.Module(id); !ok {
		notFound(c, "module", id)
		return
	}
	launched := h.controller.LaunchModule(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{"id": id, "launched": launched})
}
