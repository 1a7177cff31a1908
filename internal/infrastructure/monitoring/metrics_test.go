package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/ronmurphy/window-manager-electron-sub001/internal/infrastructure/resilience"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/store"
)

func TestRegistryMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordRegistryOp("add", "ok", time.Millisecond)
	m.RecordRegistryOp("add", "ok", time.Millisecond)
	m.RecordRegistryOp("add", "error", time.Millisecond)
	m.SetRegistrySize(3, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RegistryOps.WithLabelValues("add", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RegistryOps.WithLabelValues("add", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RegistryWidgets))

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.Widgets)
	assert.Equal(t, int64(1), snap.Modules)
}

func TestObserveStoreClassifiesErrors(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveStore("get", time.Millisecond, nil)
	m.ObserveStore("get", time.Millisecond, store.ErrNotFound)
	m.ObserveStore("set", time.Millisecond, resilience.ErrTimeout)
	m.ObserveStore("set", time.Millisecond, resilience.ErrCircuitOpen)
	m.ObserveStore("set", time.Millisecond, errors.New("disk full"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreCalls.WithLabelValues("get", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreCalls.WithLabelValues("get", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreCalls.WithLabelValues("set", "timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreCalls.WithLabelValues("set", "circuit_open")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreCalls.WithLabelValues("set", "error")))
	assert.Equal(t, int64(3), m.Snapshot().StoreFailures)
}

func TestBreakerAndWindowGauges(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.SetBreakerState("store", resilience.StateClosed, resilience.StateOpen)
	assert.Equal(t, float64(resilience.StateOpen), testutil.ToFloat64(m.StoreBreaker))

	m.SetOpenWindows(2, 1)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.WindowsOpen.WithLabelValues("running")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WindowsOpen.WithLabelValues("minimized")))

	m.RecordLaunch("widget", "ok")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Launches.WithLabelValues("widget", "ok")))
}

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics(prometheus.NewRegistry())

	r := gin.New()
	r.Use(Middleware(m))
	r.GET("/widgets/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, path := range []string{"/widgets/a", "/widgets/b", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/widgets/:id", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.TotalRequests)
	assert.Equal(t, int64(3), snap.TotalErrors)
}

func TestWSConnectionsSnapshot(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.IncWSConnections()
	m.IncWSConnections()
	m.DecWSConnections()
	assert.Equal(t, int64(1), m.Snapshot().ActiveConnections)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WSConnections))
}
