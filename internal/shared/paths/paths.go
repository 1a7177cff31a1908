package paths

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// WidgetRoot is the root segment every stored widget path starts with
const WidgetRoot = "widgets"

// Well-known file names inside a widget directory
const (
	ManifestJSON = "widget.json"
	ManifestYAML = "widget.yaml"
	DefaultEntry = "index.html"
)

// NormalizeWidgetPath converts p to forward slashes, drops leading "./" and
// "/" and prefixes the widget root segment when it is missing. Leading ".."
// segments are dropped so the result never points above the root and
// normalizing twice changes nothing. An empty input stays empty.
func NormalizeWidgetPath(p string) string {
	p = cleanSlashed(p)
	for p == ".." || strings.HasPrefix(p, "../") {
		p = strings.TrimPrefix(strings.TrimPrefix(p, ".."), "/")
	}
	if p == "" || p == "." {
		return ""
	}
	if p == WidgetRoot || strings.HasPrefix(p, WidgetRoot+"/") {
		return p
	}
	return WidgetRoot + "/" + p
}

// cleanSlashed is p with forward slashes, without leading "./" or "/", and
// lexically cleaned. Empty input yields "".
func cleanSlashed(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimSpace(p)
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	p = strings.TrimLeft(p, "/")
	if p == "" {
		return ""
	}
	return path.Clean(p)
}

// escapesRoot reports whether p climbs above the widget root
func escapesRoot(p string) bool {
	p = cleanSlashed(p)
	switch {
	case p == WidgetRoot:
		p = ""
	case strings.HasPrefix(p, WidgetRoot+"/"):
		p = strings.TrimPrefix(p, WidgetRoot+"/")
	}
	return p == ".." || strings.HasPrefix(p, "../")
}

// WidgetPath builds the stored path for an entry document inside a widget directory
func WidgetPath(dirName, entry string) string {
	return NormalizeWidgetPath(path.Join(filepath.ToSlash(dirName), filepath.ToSlash(entry)))
}

// Resolve maps a stored widget path onto the filesystem below basePath.
// The widget root segment stands for basePath itself. Paths that would
// escape basePath are rejected.
func Resolve(basePath, stored string) (string, error) {
	if escapesRoot(stored) {
		return "", fmt.Errorf("widget path %q escapes base path", stored)
	}
	norm := NormalizeWidgetPath(stored)
	if norm == "" {
		return "", fmt.Errorf("empty widget path")
	}
	rel := strings.TrimPrefix(strings.TrimPrefix(norm, WidgetRoot), "/")
	if basePath == "" {
		return norm, nil
	}
	return filepath.Join(basePath, filepath.FromSlash(rel)), nil
}

// IsWithin checks whether target lies inside root
func IsWithin(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
