package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ronmurphy/window-manager-electron-sub001/internal/domain/registry"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/shared/types"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/shared/utils"
)

// ImportRequest names the folder to import
type ImportRequest struct {
	Folder string `json:"folder" binding:"required"`
}

// ListWidgets returns the widget view and registry stats
func (h *Handlers) ListWidgets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"widgets": h.registry.Projection().Widgets,
		"stats":   h.registry.Stats(),
	})
}

// GetWidget returns one record with its window state
func (h *Handlers) GetWidget(c *gin.Context) {
	id := c.Param("id")
	rec, ok := h.registry.Get(id)
	if !ok {
		notFound(c, "widget", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"widget": rec,
		"state":  h.windows.State(id),
	})
}

// AddWidget stores a widget record
func (h *Handlers) AddWidget(c *gin.Context) {
	var rec types.WidgetRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		badRequest(c, err)
		return
	}
	if err := validateRecord(rec); err != nil {
		badRequest(c, err)
		return
	}

	stored := h.registry.Add(c.Request.Context(), rec)
	if stored == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "widget could not be stored"})
		return
	}
	c.JSON(http.StatusCreated, stored)
}

// UpdateSettings merges a settings patch
func (h *Handlers) UpdateSettings(c *gin.Context) {
	id := c.Param("id")
	var patch types.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	if patch.IsEmpty() {
		badRequest(c, errors.New("settings patch is empty"))
		return
	}
	if err := validatePatch(patch); err != nil {
		badRequest(c, err)
		return
	}

	rec, ok := h.registry.UpdateSettings(c.Request.Context(), id, patch)
	if !ok {
		notFound(c, "widget", id)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// LaunchWidget dispatches a launch for one record
func (h *Handlers) LaunchWidget(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.registry.Get(id); !ok {
		notFound(c, "widget", id)
		return
	}
	launched := h.controller.Launch(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{"id": id, "launched": launched})
}

// ToggleAutostart flips the autoload flag
func (h *Handlers) ToggleAutostart(c *gin.Context) {
	id := c.Param("id")
	autoload, ok := h.controller.ToggleAutostart(c.Request.Context(), id)
	if !ok {
		notFound(c, "widget", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "autoload": autoload})
}

// Cleanup runs the dedup pass
func (h *Handlers) Cleanup(c *gin.Context) {
	c.JSON(http.StatusOK, h.controller.Cleanup(c.Request.Context()))
}

// Reset clears the registry
func (h *Handlers) Reset(c *gin.Context) {
	if !h.registry.Reset(c.Request.Context()) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "registry could not be reset"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ImportFolder imports every widget directory below a folder
func (h *Handlers) ImportFolder(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.registry.ImportFromFolder(c.Request.Context(), req.Folder)
	switch {
	case errors.Is(err, registry.ErrNoWidgetsFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "folder": req.Folder})
	case errors.Is(err, registry.ErrFolderUnreadable):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "folder": req.Folder})
	case err != nil:
		h.logger.Warn("Import interrupted", zap.String("folder", req.Folder), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, result)
	}
}

// ScanFolder lists manifest-backed widgets below a folder without importing
func (h *Handlers) ScanFolder(c *gin.Context) {
	dir := c.Query("dir")
	if dir == "" {
		badRequest(c, errors.New("dir is required"))
		return
	}
	entries, err := h.registry.Scan(c.Request.Context(), dir)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"folder": dir, "widgets": entries})
}

func validateRecord(rec types.WidgetRecord) error {
	if err := utils.ValidateName(rec.Name, "name"); err != nil {
		return err
	}
	if rec.ID != "" {
		if err := utils.ValidateID(rec.ID, "id", false); err != nil {
			return err
		}
	}
	if err := utils.ValidatePath(rec.Path, "path", false); err != nil {
		return err
	}
	if err := utils.ValidateCategory(rec.Category, false); err != nil {
		return err
	}
	if err := utils.ValidateIcon(rec.Icon); err != nil {
		return err
	}
	if err := utils.ValidateDescription(rec.Description, "description", false); err != nil {
		return err
	}
	// Zero dimensions are filled with defaults on store
	size := rec.Settings.Size
	if size.Width == 0 {
		size.Width = types.DefaultWidth
	}
	if size.Height == 0 {
		size.Height = types.DefaultHeight
	}
	return validatePatch(types.SettingsPatch{Position: &rec.Settings.Position, Size: &size})
}

func validatePatch(p types.SettingsPatch) error {
	if p.Position != nil {
		if err := utils.ValidateCoordinate(p.Position.X, "position.x"); err != nil {
			return err
		}
		if err := utils.ValidateCoordinate(p.Position.Y, "position.y"); err != nil {
			return err
		}
	}
	if p.Size != nil {
		if err := utils.ValidateDimension(p.Size.Width, "size.width"); err != nil {
			return fmt.Errorf("invalid size: %w", err)
		}
		if err := utils.ValidateDimension(p.Size.Height, "size.height"); err != nil {
			return fmt.Errorf("invalid size: %w", err)
		}
	}
	return nil
}
