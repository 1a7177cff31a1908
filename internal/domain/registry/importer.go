package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ronmurphy/window-manager-electron-sub001/internal/domain/manifest"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/shared/types"
)

var (
	// ErrFolderUnreadable is returned when the import folder cannot be listed
	ErrFolderUnreadable = errors.New("widget folder unreadable")
	// ErrNoWidgetsFound is returned when an import folder yields no widgets
	ErrNoWidgetsFound = errors.New("no widgets found")
)

// ImportResult summarizes a folder import
type ImportResult struct {
	Folder  string               `json:"folder"`
	Added   []types.WidgetRecord `json:"added"`
	Skipped []string             `json:"skipped,omitempty"`
}

// ScanEntry is one manifest-backed widget found by Scan
type ScanEntry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// ImportFromFolder resolves every immediate subdirectory of dir and adds
// each resulting record. Unusable subdirectories are skipped and logged.
// On success dir becomes the widget base path.
func (r *Registry) ImportFromFolder(ctx context.Context, dir string) (*ImportResult, error) {
	start := time.Now()
	candidates, err := listCandidates(dir)
	if err != nil {
		r.logger.Warn("Failed to read widget folder", zap.String("folder", dir), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrFolderUnreadable, err)
	}

	result := &ImportResult{Folder: dir, Added: []types.WidgetRecord{}}
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		res := r.resolver.Resolve(ctx, candidate, manifest.Hint{Name: filepath.Base(candidate)})
		if res == nil {
			result.Skipped = append(result.Skipped, filepath.Base(candidate))
			continue
		}

		stored := r.Add(ctx, res.Record)
		if stored == nil {
			result.Skipped = append(result.Skipped, filepath.Base(candidate))
			continue
		}
		result.Added = append(result.Added, *stored)
	}

	if len(result.Added) == 0 {
		r.logger.Warn("No widgets found in folder",
			zap.String("folder", dir),
			zap.Int("candidates", len(candidates)),
		)
		return result, ErrNoWidgetsFound
	}

	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	if err := r.SetBasePath(ctx, dir); err != nil {
		r.logger.Warn("Imported widgets but could not persist base path", zap.Error(err))
	}

	r.logger.Info("Widget folder imported",
		zap.String("folder", dir),
		zap.Int("added", len(result.Added)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// Scan lists the manifest-backed widgets below dir without touching the
// registry. Directories without a usable manifest are left out.
func (r *Registry) Scan(ctx context.Context, dir string) ([]ScanEntry, error) {
	candidates, err := listCandidates(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFolderUnreadable, err)
	}

	entries := make([]ScanEntry, 0, len(candidates))
	for _, candidate := range candidates {
		res := r.resolver.Resolve(ctx, candidate, manifest.Hint{})
		if res == nil || res.Source == manifest.SourceFallback {
			continue
		}
		entries = append(entries, ScanEntry{
			Name:        res.Record.Name,
			Path:        res.Record.Path,
			Icon:        res.Record.Icon,
			Description: res.Record.Description,
		})
	}
	return entries, nil
}

// listCandidates returns the visible subdirectories of dir in name order.
// Symlinks that point at directories count as candidates.
func listCandidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		full := filepath.Join(dir, e.Name())
		if e.IsDir() {
			out = append(out, full)
			continue
		}
		if e.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(full); err == nil && info.IsDir() {
				out = append(out, full)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}
