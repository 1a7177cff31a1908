package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
	"github.com/goccy/go-yaml"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/ronmurphy/window-manager-electron-sub001/internal/shared/paths"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/shared/types"
)

const (
	// MaxManifestSize caps how much of a manifest file is read
	MaxManifestSize = 256 * 1024
	// DefaultEntryDepth bounds the entry document search below a widget dir
	DefaultEntryDepth = 3

	entryPattern = "**/*.{html,htm}"
)

// Source tells where a resolved record came from
type Source string

const (
	SourceJSON     Source = "widget.json"
	SourceYAML     Source = "widget.yaml"
	SourceFallback Source = "fallback"
)

// Resolution is the outcome of resolving one candidate directory
type Resolution struct {
	Record types.WidgetRecord
	Source Source
	// Warning is set when the manifest was present but unusable and the
	// record was built from defaults instead
	Warning error
}

// Resolver turns candidate widget directories into normalized records
type Resolver struct {
	logger     *zap.Logger
	policy     *bluemonday.Policy
	entryDepth int
}

// NewResolver creates a descriptor resolver
func NewResolver(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		logger:     logger,
		policy:     bluemonday.StrictPolicy(),
		entryDepth: DefaultEntryDepth,
	}
}

// Resolve reads <dir>/widget.json (or widget.yaml) and maps it into a
// record. A missing or malformed manifest never fails the call: the record
// is built from hint plus defaults and the problem is logged. Resolve
// returns nil only when dir is not a readable directory.
func (r *Resolver) Resolve(ctx context.Context, dir string, hint Hint) *Resolution {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		r.logger.Warn("Skipping widget candidate", zap.String("dir", dir), zap.Error(err))
		return nil
	}

	dirName := filepath.Base(dir)
	if hint.Name == "" {
		hint.Name = dirName
	}

	m, source, warn := r.readManifest(dir)
	if warn != nil {
		r.logger.Warn("Unusable widget manifest, using defaults",
			zap.String("dir", dir),
			zap.Error(warn),
		)
	}

	if m == nil {
		entry := hint.Path
		if entry == "" {
			entry = paths.WidgetPath(dirName, r.locateEntry(ctx, dir, ""))
		}
		return &Resolution{
			Record: types.WidgetRecord{
				Name:        r.clean(hint.Name),
				Path:        paths.NormalizeWidgetPath(entry),
				Category:    types.DefaultCategory,
				Icon:        orDefault(hint.Icon, types.DefaultIcon),
				Description: orDefault(r.clean(hint.Description), types.DefaultDescription),
				Version:     types.DefaultVersion,
				Settings:    types.DefaultSettings(),
			},
			Source:  SourceFallback,
			Warning: warn,
		}
	}

	entry := hint.Path
	if entry == "" || m.Main != "" {
		entry = paths.WidgetPath(dirName, r.locateEntry(ctx, dir, m.Main))
	}

	return &Resolution{
		Record: types.WidgetRecord{
			Name:        orDefault(r.clean(m.Name), r.clean(hint.Name)),
			Path:        paths.NormalizeWidgetPath(entry),
			Category:    orDefault(r.clean(m.Category), types.DefaultCategory),
			Icon:        orDefault(strings.TrimSpace(m.Icon), orDefault(hint.Icon, types.DefaultIcon)),
			Description: orDefault(r.clean(m.Description), orDefault(r.clean(hint.Description), types.DefaultDescription)),
			Version:     orDefault(strings.TrimSpace(m.Version), types.DefaultVersion),
			Settings:    m.settings(),
		},
		Source: source,
	}
}

// readManifest returns nil with no warning when the directory has no
// manifest at all
func (r *Resolver) readManifest(dir string) (*Manifest, Source, error) {
	data, err := readLimited(filepath.Join(dir, paths.ManifestJSON))
	if err == nil {
		var m Manifest
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, SourceFallback, fmt.Errorf("parse %s: %w", paths.ManifestJSON, err)
		}
		return &m, SourceJSON, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, SourceFallback, err
	}

	data, err = readLimited(filepath.Join(dir, paths.ManifestYAML))
	if err == nil {
		var m Manifest
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, SourceFallback, fmt.Errorf("parse %s: %w", paths.ManifestYAML, err)
		}
		return &m, SourceYAML, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, SourceFallback, err
	}
	return nil, SourceFallback, nil
}

func readLimited(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", filepath.Base(path))
	}
	if info.Size() > MaxManifestSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", filepath.Base(path), MaxManifestSize)
	}
	return os.ReadFile(path)
}

// locateEntry finds the widget's entry document, relative to dir.
// Order: the manifest's "main", index.html, then the shallowest HTML file
// found below dir. Falls back to index.html when nothing is found.
func (r *Resolver) locateEntry(ctx context.Context, dir, main string) string {
	if main != "" {
		rel := filepath.Clean(filepath.FromSlash(main))
		if paths.IsWithin(dir, filepath.Join(dir, rel)) && isFile(filepath.Join(dir, rel)) {
			return filepath.ToSlash(rel)
		}
		r.logger.Warn("Manifest entry not found, searching directory",
			zap.String("dir", dir),
			zap.String("main", main),
		)
	}

	if isFile(filepath.Join(dir, paths.DefaultEntry)) {
		return paths.DefaultEntry
	}

	if found := r.searchEntry(ctx, dir); found != "" {
		return found
	}
	return paths.DefaultEntry
}

func (r *Resolver) searchEntry(ctx context.Context, dir string) string {
	var (
		mu         sync.Mutex
		candidates []string
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Unreadable subtrees are skipped
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules" || strings.Count(rel, "/")+1 >= r.entryDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if ok, _ := doublestar.Match(entryPattern, rel); ok && looksLikeHTML(path) {
			mu.Lock()
			candidates = append(candidates, rel)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		r.logger.Debug("Entry search aborted", zap.String("dir", dir), zap.Error(err))
	}

	if len(candidates) == 0 {
		return ""
	}
	sort.Slice(candidates, func(i, j int) bool {
		di, dj := strings.Count(candidates[i], "/"), strings.Count(candidates[j], "/")
		if di != dj {
			return di < dj
		}
		return candidates[i] < candidates[j]
	})
	return candidates[0]
}

// looksLikeHTML rejects binary files that merely carry an .html name
func looksLikeHTML(path string) bool {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return false
	}
	return mt.Is("text/html") || mt.Is("text/plain")
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// clean strips markup from manifest text; widget manifests are untrusted
func (r *Resolver) clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(r.policy.Sanitize(s)))
}
