package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ronmurphy/window-manager-electron-sub001/internal/infrastructure/config"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/infrastructure/logging"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/infrastructure/monitoring"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/infrastructure/resilience"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Ephemeral = true
	cfg.RateLimit.Enabled = false
	cfg.Logging.Development = true
	return cfg
}

func writeWidget(t *testing.T, root, name, manifest string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "widget.json"), []byte(manifest), 0o644))
}

func TestBootSeedsAndAutostarts(t *testing.T) {
	root := t.TempDir()
	writeWidget(t, root, "clock", `{"name":"Clock","settings":{"autoload":true}}`)
	writeWidget(t, root, "notes", `{"name":"Notes"}`)

	cfg := testConfig(t)
	cfg.Widgets.BasePath = root

	srv, err := New(cfg, logging.NewNop())
	require.NoError(t, err)
	defer srv.Close()

	srv.Boot(context.Background())

	records := srv.Registry().Records()
	require.Len(t, records, 2)
	assert.Equal(t, 1, srv.windows.Stats().Running)

	abs, _ := filepath.Abs(root)
	assert.Equal(t, abs, srv.Registry().BasePath(context.Background()))
}

func TestBootWithoutAutostart(t *testing.T) {
	root := t.TempDir()
	writeWidget(t, root, "clock", `{"name":"Clock","settings":{"autoload":true}}`)

	cfg := testConfig(t)
	cfg.Widgets.BasePath = root
	cfg.Widgets.Autostart = false

	srv, err := New(cfg, logging.NewNop())
	require.NoError(t, err)
	defer srv.Close()

	srv.Boot(context.Background())
	assert.Len(t, srv.Registry().Records(), 1)
	assert.Zero(t, srv.windows.Stats().Total)
}

func TestRoutes(t *testing.T) {
	srv, err := New(testConfig(t), logging.NewNop())
	require.NoError(t, err)
	defer srv.Close()
	srv.Boot(context.Background())

	for _, path := range []string{"/", "/health", "/widgets", "/modules", "/windows", "/theme", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), "widget_shell_http_requests_total")
}

func TestBreakerObserverLogsStateNames(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())

	breakerObserver(zap.New(core), metrics)("store", resilience.StateClosed, resilience.StateOpen)

	entries := logs.FilterMessage("Store breaker changed state").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "store", fields["breaker"])
	assert.Equal(t, "closed", fields["from"])
	assert.Equal(t, "open", fields["to"])
	assert.Equal(t, float64(resilience.StateOpen), testutil.ToFloat64(metrics.StoreBreaker))
}
