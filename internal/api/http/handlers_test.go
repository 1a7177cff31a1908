package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronmurphy/window-manager-electron-sub001/internal/domain/lifecycle"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/domain/registry"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/domain/theme"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/domain/window"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/shared/types"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/store"
)

type testEnv struct {
	router  *gin.Engine
	store   store.Store
	reg     *registry.Registry
	windows *window.Manager
}

func newEnv(t *testing.T, st store.Store) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := registry.New(st, registry.Options{})
	reg.Load(context.Background())
	windows := window.NewManager(nil)
	h := NewHandlers(Deps{
		Registry:   reg,
		Controller: lifecycle.NewController(reg, windows, nil),
		Windows:    windows,
		Themes:     theme.NewService(st, nil),
	})

	r := gin.New()
	h.Register(r)
	return &testEnv{router: r, store: st, reg: reg, windows: windows}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		data, err := sonic.Marshal(body)
		require.NoError(t, err)
		buf.Write(data)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), v))
}

func (e *testEnv) addWidget(t *testing.T, name string) types.WidgetRecord {
	t.Helper()
	w := e.do(t, http.MethodPost, "/widgets", map[string]interface{}{
		"name": name,
		"path": name + "/index.html",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var rec types.WidgetRecord
	decode(t, w, &rec)
	return rec
}

func TestRootAndHealth(t *testing.T) {
	env := newEnv(t, store.NewMemory())

	w := env.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body, "registry")
	assert.Contains(t, body, "windows")
}

func TestAddAndGetWidget(t *testing.T) {
	env := newEnv(t, store.NewMemory())
	rec := env.addWidget(t, "clock")

	assert.Equal(t, "widgets/clock/index.html", rec.Path)
	assert.Equal(t, types.DefaultSettings(), rec.Settings)

	w := env.do(t, http.MethodGet, "/widgets/"+rec.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Widget types.WidgetRecord `json:"widget"`
		State  types.WindowState  `json:"state"`
	}
	decode(t, w, &body)
	assert.Equal(t, rec, body.Widget)
	assert.Equal(t, types.WindowStopped, body.State)

	w = env.do(t, http.MethodGet, "/widgets/widget-404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/widgets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Widgets []types.WidgetEntry `json:"widgets"`
		Stats   types.RegistryStats `json:"stats"`
	}
	decode(t, w, &list)
	require.Len(t, list.Widgets, 1)
	assert.Equal(t, 1, list.Stats.TotalWidgets)
}

func TestAddWidgetValidation(t *testing.T) {
	env := newEnv(t, store.NewMemory())

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing name", map[string]interface{}{"path": "x/index.html"}},
		{"path escape", map[string]interface{}{"name": "x", "path": "../../etc/passwd"}},
		{"bad size", map[string]interface{}{"name": "x", "settings": map[string]interface{}{"size": map[string]int{"width": -5}}}},
		{"not json", "just a string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/widgets", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestUpdateSettings(t *testing.T) {
	env := newEnv(t, store.NewMemory())
	rec := env.addWidget(t, "clock")

	w := env.do(t, http.MethodPatch, "/widgets/"+rec.ID+"/settings", map[string]interface{}{
		"position": map[string]int{"x": 400, "y": 10},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var got types.WidgetRecord
	decode(t, w, &got)
	assert.Equal(t, types.Position{X: 400, Y: 10}, got.Settings.Position)
	assert.Equal(t, rec.Settings.Size, got.Settings.Size)

	w = env.do(t, http.MethodPatch, "/widgets/"+rec.ID+"/settings", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPatch, "/widgets/"+rec.ID+"/settings", map[string]interface{}{
		"size": map[string]int{"width": 0, "height": 10},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPatch, "/widgets/widget-404/settings", map[string]interface{}{"autoload": true})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestToggleAutostart(t *testing.T) {
	env := newEnv(t, store.NewMemory())
	rec := env.addWidget(t, "clock")

	var body struct {
		Autoload bool `json:"autoload"`
	}
	w := env.do(t, http.MethodPost, "/widgets/"+rec.ID+"/autostart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &body)
	assert.True(t, body.Autoload)

	w = env.do(t, http.MethodPost, "/widgets/"+rec.ID+"/autostart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &body)
	assert.False(t, body.Autoload)

	w = env.do(t, http.MethodPost, "/widgets/widget-404/autostart", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLaunchAndWindowActions(t *testing.T) {
	env := newEnv(t, store.NewMemory())
	rec := env.addWidget(t, "clock")

	w := env.do(t, http.MethodPost, "/widgets/"+rec.ID+"/launch", nil)
	require.Equal(t, http.StatusOK, w.Code)

	win, ok := env.windows.FindByModule(rec.ID)
	require.True(t, ok)
	assert.Equal(t, rec.Path, win.ContentPath)

	w = env.do(t, http.MethodPost, "/windows/"+win.ID+"/minimize", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/windows?state=minimized", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Windows []types.Window `json:"windows"`
	}
	decode(t, w, &list)
	require.Len(t, list.Windows, 1)

	w = env.do(t, http.MethodGet, "/windows?state=flying", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/windows/"+win.ID+"/restore", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPost, "/windows/"+win.ID+"/close", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/windows/"+win.ID+"/close", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/widgets/widget-404/launch", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func writeWidgetDir(t *testing.T, root, name, manifest string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>"+name+"</html>"), 0o644))
	if manifest != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "widget.json"), []byte(manifest), 0o644))
	}
}

func TestImportScanAndContent(t *testing.T) {
	env := newEnv(t, store.NewMemory())
	root := t.TempDir()
	writeWidgetDir(t, root, "clock", `{"name":"Clock"}`)
	writeWidgetDir(t, root, "bare", "")

	w := env.do(t, http.MethodGet, "/widgets/scan?dir="+root, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var scan struct {
		Widgets []registry.ScanEntry `json:"widgets"`
	}
	decode(t, w, &scan)
	require.Len(t, scan.Widgets, 1)
	assert.Equal(t, "Clock", scan.Widgets[0].Name)

	w = env.do(t, http.MethodGet, "/content/clock/index.html", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "no base path yet")

	w = env.do(t, http.MethodPost, "/widgets/import", ImportRequest{Folder: root})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result registry.ImportResult
	decode(t, w, &result)
	assert.Len(t, result.Added, 2)

	w = env.do(t, http.MethodGet, "/content/clock/index.html", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<html>clock</html>", w.Body.String())

	w = env.do(t, http.MethodGet, "/content/clock/missing.html", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImportErrors(t *testing.T) {
	env := newEnv(t, store.NewMemory())

	w := env.do(t, http.MethodPost, "/widgets/import", ImportRequest{Folder: t.TempDir()})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/widgets/import", ImportRequest{Folder: filepath.Join(t.TempDir(), "missing")})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/widgets/import", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/widgets/scan", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCleanupAndReset(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	require.NoError(t, store.SetJSON(ctx, st, store.KeyWidgets, []types.WidgetRecord{
		{ID: "widget-1", Name: "Clock", Path: "widgets/a/index.html", LastUpdated: 1},
		{ID: "widget-2", Name: "Clock", Path: "widgets/b/index.html", LastUpdated: 2},
	}))
	env := newEnv(t, st)

	w := env.do(t, http.MethodPost, "/widgets/cleanup", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report lifecycle.CleanupReport
	decode(t, w, &report)
	require.Len(t, report.Removed, 1)
	assert.Equal(t, "widget-1", report.Removed[0].ID)
	assert.Len(t, env.reg.Records(), 1)

	w = env.do(t, http.MethodPost, "/widgets/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, env.reg.Records())
}

func TestModulesEndpoints(t *testing.T) {
	env := newEnv(t, store.NewMemory())

	w := env.do(t, http.MethodPost, "/modules", types.Module{
		Name:    "Lofi",
		Type:    types.ModuleTypeYouTubeEmbed,
		VideoID: "jfKfPfyJRdk",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var m types.Module
	decode(t, w, &m)

	w = env.do(t, http.MethodPost, "/modules", types.Module{Name: "Bad", Type: "iframe"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/modules", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view struct {
		Categories []types.CategoryGroup `json:"categories"`
	}
	decode(t, w, &view)
	require.Len(t, view.Categories, 1)
	assert.Equal(t, "Lofi", view.Categories[0].Modules[0].Name)

	w = env.do(t, http.MethodPost, "/modules/"+m.ID+"/launch", nil)
	require.Equal(t, http.StatusOK, w.Code)
	win, ok := env.windows.FindByModule(m.ID)
	require.True(t, ok)
	assert.Equal(t, "https://www.youtube.com/embed/jfKfPfyJRdk", win.ContentPath)
	assert.False(t, win.IsWidget)

	w = env.do(t, http.MethodDelete, "/modules/"+m.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodDelete, "/modules/"+m.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodPost, "/modules/"+m.ID+"/launch", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestThemeEndpoints(t *testing.T) {
	env := newEnv(t, store.NewMemory())

	w := env.do(t, http.MethodGet, "/theme", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var current struct {
		Theme theme.Theme `json:"theme"`
	}
	decode(t, w, &current)
	assert.Equal(t, "dark", current.Theme.ID)

	w = env.do(t, http.MethodPut, "/theme", ThemeRequest{Palette: []string{"#fefefe", "#f0f0f0"}})
	require.Equal(t, http.StatusOK, w.Code)
	var derived theme.Theme
	decode(t, w, &derived)
	assert.Equal(t, theme.TypeLight, derived.Type)

	w = env.do(t, http.MethodPut, "/theme", ThemeRequest{Preset: "light"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPut, "/theme", ThemeRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodPut, "/theme", ThemeRequest{Preset: "neon"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// downStore fails every write
type downStore struct {
	*store.Memory
}

func (downStore) Set(context.Context, string, []byte) error { return errors.New("disk gone") }
func (downStore) Delete(context.Context, string) error      { return errors.New("disk gone") }

func TestStoreFailureSurfacesAs503(t *testing.T) {
	env := newEnv(t, downStore{Memory: store.NewMemory()})

	w := env.do(t, http.MethodPost, "/widgets", map[string]string{"name": "clock"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = env.do(t, http.MethodPost, "/widgets/reset", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
