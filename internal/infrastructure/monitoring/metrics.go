package monitoring

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ronmurphy/window-manager-electron-sub001/internal/infrastructure/resilience"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/store"
)

const namespace = "widget_shell"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Registry metrics
	RegistryOps      *prometheus.CounterVec
	RegistryDuration *prometheus.HistogramVec
	RegistryWidgets  prometheus.Gauge
	RegistryModules  prometheus.Gauge

	// Store metrics
	StoreCalls    *prometheus.CounterVec
	StoreDuration *prometheus.HistogramVec
	StoreBreaker  prometheus.Gauge

	// Lifecycle and window metrics
	Launches     *prometheus.CounterVec
	WindowEvents *prometheus.CounterVec
	WindowsOpen  *prometheus.GaugeVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	startTime time.Time

	// Snapshot for the JSON health endpoint
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current metric values for the JSON API
type Snapshot struct {
	TotalRequests     int64   `json:"total_requests"`
	TotalErrors       int64   `json:"total_errors"`
	AvgLatencyMs      float64 `json:"avg_latency_ms"`
	Widgets           int64   `json:"widgets"`
	Modules           int64   `json:"modules"`
	ActiveConnections int64   `json:"active_connections"`
	StoreFailures     int64   `json:"store_failures"`
	UptimeSeconds     float64 `json:"uptime_seconds"`

	totalDuration float64
}

// NewMetrics creates a metrics collector registered with reg. A nil reg
// uses the default Prometheus registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	m := &Metrics{
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),

		RegistryOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "registry_operations_total",
				Help:      "Registry mutations by operation and outcome",
			},
			[]string{"op", "status"},
		),
		RegistryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "registry_operation_duration_seconds",
				Help:      "Registry operation duration including store I/O",
				Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"op"},
		),
		RegistryWidgets: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "registry_widgets",
				Help:      "Number of widget records",
			},
		),
		RegistryModules: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "registry_modules",
				Help:      "Number of non-widget modules",
			},
		),

		StoreCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_calls_total",
				Help:      "Durable store calls by operation and outcome",
			},
			[]string{"op", "status"},
		),
		StoreDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_call_duration_seconds",
				Help:      "Durable store call duration",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"op"},
		),
		StoreBreaker: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "store_breaker_state",
				Help:      "Store circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
		),

		Launches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "launches_total",
				Help:      "Launch dispatches by module kind and outcome",
			},
			[]string{"kind", "status"},
		),
		WindowEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "window_events_total",
				Help:      "Window state changes",
			},
			[]string{"event"},
		),
		WindowsOpen: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "windows_open",
				Help:      "Open windows by state",
			},
			[]string{"state"},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ws_connections",
				Help:      "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ws_messages_total",
				Help:      "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Server uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordRegistryOp records a registry operation
func (m *Metrics) RecordRegistryOp(op, status string, duration time.Duration) {
	m.RegistryOps.WithLabelValues(op, status).Inc()
	m.RegistryDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// SetRegistrySize sets the registry gauges
func (m *Metrics) SetRegistrySize(widgets, modules int) {
	m.RegistryWidgets.Set(float64(widgets))
	m.RegistryModules.Set(float64(modules))

	m.mu.Lock()
	m.snapshot.Widgets = int64(widgets)
	m.snapshot.Modules = int64(modules)
	m.mu.Unlock()
}

// ObserveStore records a guarded store call
func (m *Metrics) ObserveStore(op string, duration time.Duration, err error) {
	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		status = "not_found"
	case errors.Is(err, resilience.ErrCircuitOpen):
		status = "circuit_open"
	case errors.Is(err, resilience.ErrTimeout):
		status = "timeout"
	default:
		status = "error"
	}
	m.StoreCalls.WithLabelValues(op, status).Inc()
	m.StoreDuration.WithLabelValues(op).Observe(duration.Seconds())

	if status != "ok" && status != "not_found" {
		m.mu.Lock()
		m.snapshot.StoreFailures++
		m.mu.Unlock()
	}
}

// SetBreakerState tracks circuit breaker transitions
func (m *Metrics) SetBreakerState(_ string, _, to resilience.State) {
	m.StoreBreaker.Set(float64(to))
}

// RecordLaunch records a launch dispatch
func (m *Metrics) RecordLaunch(kind, status string) {
	m.Launches.WithLabelValues(kind, status).Inc()
}

// RecordWindowEvent records a window state change
func (m *Metrics) RecordWindowEvent(event string) {
	m.WindowEvents.WithLabelValues(event).Inc()
}

// SetOpenWindows sets the open window gauges
func (m *Metrics) SetOpenWindows(running, minimized int) {
	m.WindowsOpen.WithLabelValues("running").Set(float64(running))
	m.WindowsOpen.WithLabelValues("minimized").Set(float64(minimized))
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// Snapshot returns the current values for the JSON API
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	if s.TotalRequests > 0 {
		s.AvgLatencyMs = s.totalDuration / float64(s.TotalRequests) * 1000
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
