// Package metrics provides Prometheus metrics for the pelada service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Draws
	teamsBuilt        prometheus.Counter
	teamsBuildRefused prometheus.Counter
	teamPlayers       *prometheus.HistogramVec
	reservePlayers    prometheus.Histogram
	partitionLatency  prometheus.Histogram

	// Roster state
	rosterPlayers     prometheus.Gauge
	rosterConfirmed   prometheus.Gauge
	rosterGoalkeepers prometheus.Gauge
	rosterCollected   prometheus.Gauge
	rosterMutations   *prometheus.CounterVec
	idempotentReplays prometheus.Counter

	// Store
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// squadBuckets cover 0..5 players per team.
var squadBuckets = []float64{0, 1, 2, 3, 4, 5} //nolint:gochecknoglobals // constant bucket layout

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// latencyBucketsMs covers sub-millisecond draws up to slow database round trips.
var latencyBucketsMs = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000} //nolint:gochecknoglobals // read-only

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pelada",
		subsystem:        "roster",
		histogramBuckets: latencyBucketsMs,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates and registers every collector.
func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of collectors
	auto := promauto.With(m.registry)

	m.teamsBuilt = auto.NewCounter(m.counterOpts("teams_built_total", "Total number of team draws"))
	m.teamsBuildRefused = auto.NewCounter(m.counterOpts("teams_build_refused_total", "Draw requests refused for lack of confirmed players"))
	m.teamPlayers = auto.NewHistogramVec(
		m.histogramOpts("team_players", "Players placed per team in a draw", squadBuckets),
		[]string{"team"},
	)
	m.reservePlayers = auto.NewHistogram(m.histogramOpts("reserve_players", "Players left in reserve per draw", []float64{0, 1, 2, 4, 8, 16, 32}))
	m.partitionLatency = auto.NewHistogram(m.histogramOpts("partition_latency_milliseconds", "Time spent drawing teams in milliseconds", m.histogramBuckets))

	m.rosterPlayers = auto.NewGauge(m.gaugeOpts("players", "Players on the roster"))
	m.rosterConfirmed = auto.NewGauge(m.gaugeOpts("confirmed_players", "Players confirmed for the session"))
	m.rosterGoalkeepers = auto.NewGauge(m.gaugeOpts("goalkeepers", "Players flagged as goalkeeper"))
	m.rosterCollected = auto.NewGauge(m.gaugeOpts("collected_amount", "Total amount paid by the roster"))
	m.rosterMutations = auto.NewCounterVec(m.counterOpts("mutations_total", "Roster changes by operation"), []string{"op"})
	m.idempotentReplays = auto.NewCounter(m.counterOpts("idempotent_replays_total", "Add-player requests answered from an earlier attempt"))

	m.storeLatency = auto.NewHistogramVec(
		m.histogramOpts("store_latency_milliseconds", "Roster store operation latency in milliseconds", m.histogramBuckets),
		[]string{"op"},
	)
	m.storeErrors = auto.NewCounterVec(m.counterOpts("store_errors_total", "Roster store errors by operation"), []string{"op"})

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component and type"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by HTTP endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of failed operations in milliseconds", m.histogramBuckets),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Allocated heap memory in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_milliseconds", "Average GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordTeamsBuilt records one draw and the size of each group.
func RecordTeamsBuilt(teamA, teamB, reserves int, latencyMs float64) {
	globalManager.teamsBuilt.Inc()
	globalManager.teamPlayers.WithLabelValues("a").Observe(float64(teamA))
	globalManager.teamPlayers.WithLabelValues("b").Observe(float64(teamB))
	globalManager.reservePlayers.Observe(float64(reserves))
	globalManager.partitionLatency.Observe(latencyMs)
}

// RecordTeamsBuildRefused counts a draw refused by the confirmed-player gate.
func RecordTeamsBuildRefused() {
	globalManager.teamsBuildRefused.Inc()
}

// UpdateRoster sets the roster gauges.
func UpdateRoster(players, confirmed, goalkeepers int, collected float64) {
	globalManager.rosterPlayers.Set(float64(players))
	globalManager.rosterConfirmed.Set(float64(confirmed))
	globalManager.rosterGoalkeepers.Set(float64(goalkeepers))
	globalManager.rosterCollected.Set(collected)
}

// RecordRosterMutation counts a roster change, e.g. "add" or "presence".
func RecordRosterMutation(op string) {
	globalManager.rosterMutations.WithLabelValues(op).Inc()
}

// RecordIdempotentReplay counts an add-player request served from its key.
func RecordIdempotentReplay() {
	globalManager.idempotentReplays.Inc()
}

// RecordStoreLatency records a store operation latency in milliseconds.
func RecordStoreLatency(op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordStoreError counts a failed store operation.
func RecordStoreError(op string) {
	globalManager.storeErrors.WithLabelValues(op).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error by component and type.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error by HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets allocated memory in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
