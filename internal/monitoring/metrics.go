// Package monitoring exposes Prometheus metrics for the bridge and devhost.
package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. All record methods are safe on a nil
// receiver so the core stays runnable without a collector.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Dispatch metrics
	CommandsTotal    *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec
	DenialsTotal     *prometheus.CounterVec
	PendingRequests  prometheus.Gauge
	CancelledTotal   prometheus.Counter
	SwallowedTotal   prometheus.Counter
	ProviderPanics   prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot Snapshot

	mu sync.RWMutex
}

// Snapshot holds current metric values for the JSON debug API.
type Snapshot struct {
	TotalCommands     int64   `json:"total_commands"`
	TotalErrors       int64   `json:"total_errors"`
	TotalDenials      int64   `json:"total_denials"`
	ActiveConnections int64   `json:"active_connections"`
	TotalDuration     float64 `json:"-"`
	AvgDispatchMs     float64 `json:"avg_dispatch_ms"`
}

// NewMetrics creates a new metrics collector registered on the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridge_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		CommandsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_commands_total",
				Help: "Total number of dispatched commands by outcome",
			},
			[]string{"command", "outcome"},
		),
		DispatchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridge_dispatch_duration_seconds",
				Help:    "Time from dispatch to resolution",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 30},
			},
			[]string{"command"},
		),
		DenialsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_denials_total",
				Help: "Total authorization denials by reason",
			},
			[]string{"reason"},
		),
		PendingRequests: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "bridge_pending_requests",
				Help: "Number of in-flight commands awaiting resolution",
			},
		),
		CancelledTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "bridge_cancelled_total",
				Help: "Total pending commands cancelled by page lifecycle",
			},
		),
		SwallowedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "bridge_swallowed_callbacks_total",
				Help: "Late or duplicate provider callbacks discarded",
			},
		),
		ProviderPanics: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "bridge_provider_panics_total",
				Help: "Provider invocations recovered from panic",
			},
		),

		WSConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "bridge_ws_connections",
				Help: "Number of active WebSocket page sessions",
			},
		),
		WSMessages: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_ws_messages_total",
				Help: "Total WebSocket messages by direction",
			},
			[]string{"direction"},
		),

		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "bridge_uptime_seconds",
				Help: "Devhost uptime in seconds",
			},
		),
	}

	go m.updateUptime()

	return m
}

func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCommand records a terminal command outcome. outcome is "ok" or an
// error taxonomy kind.
func (m *Metrics) RecordCommand(command, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(command, outcome).Inc()
	m.DispatchDuration.WithLabelValues(command).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalCommands++
	m.snapshot.TotalDuration += duration.Seconds()
	if outcome != "ok" {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordDenial records an authorization denial.
func (m *Metrics) RecordDenial(reason string) {
	if m == nil {
		return
	}
	m.DenialsTotal.WithLabelValues(reason).Inc()

	m.mu.Lock()
	m.snapshot.TotalDenials++
	m.mu.Unlock()
}

// IncPending counts a newly dispatched in-flight command. The gauge is
// additive because every page session runs its own gateway against the same
// collector.
func (m *Metrics) IncPending() {
	if m == nil {
		return
	}
	m.PendingRequests.Inc()
}

// DecPending removes n settled commands from the in-flight gauge.
func (m *Metrics) DecPending(n int) {
	if m == nil {
		return
	}
	m.PendingRequests.Sub(float64(n))
}

// AddCancelled counts commands dropped by page lifecycle cancellation.
func (m *Metrics) AddCancelled(count int) {
	if m == nil {
		return
	}
	m.CancelledTotal.Add(float64(count))
}

// IncSwallowed counts a discarded late or duplicate provider callback.
func (m *Metrics) IncSwallowed() {
	if m == nil {
		return
	}
	m.SwallowedTotal.Inc()
}

// IncProviderPanic counts a recovered provider panic.
func (m *Metrics) IncProviderPanic() {
	if m == nil {
		return
	}
	m.ProviderPanics.Inc()
}

// RecordWSMessage records a WebSocket message ("in" or "out").
func (m *Metrics) RecordWSMessage(direction string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction).Inc()
}

// IncWSConnections increments active page sessions.
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()

	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements active page sessions.
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()

	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// GetSnapshot returns current values for the JSON debug API.
func (m *Metrics) GetSnapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := m.snapshot
	if snap.TotalCommands > 0 {
		snap.AvgDispatchMs = snap.TotalDuration / float64(snap.TotalCommands) * 1000
	}
	return snap
}
