// Package metrics provides Prometheus metrics for the tellsight validator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the validator.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Cycle metrics - the heartbeat of the evaluation loop
	cyclesTotal     prometheus.Counter
	cyclesDegraded  prometheus.Counter
	cycleDuration   prometheus.Histogram
	chunksPerCycle  prometheus.Gauge
	handsPerCycle   prometheus.Gauge
	lastCycleUnix   prometheus.Gauge

	// Dispatch metrics - fan-out health per worker round trip
	dispatchLatency prometheus.Histogram
	workerResponses *prometheus.CounterVec
	rosterSize      prometheus.Gauge

	// Scoring and allocation metrics
	topComposite  prometheus.Gauge
	eligibleCount prometheus.Gauge
	burnWeight    prometheus.Gauge

	// Corpus metrics
	corpusExhaustions prometheus.Counter

	// HTTP metrics for the admin API
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tellsight",
		subsystem:        "validator",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.cyclesTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cycles_total",
		Help:      "Total number of evaluation cycles completed",
	})

	m.cyclesDegraded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cycles_degraded_total",
		Help:      "Cycles that ran with fewer chunks than targeted",
	})

	m.cycleDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cycle_duration_seconds",
		Help:      "Wall-clock duration of one full evaluation cycle",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})

	m.chunksPerCycle = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "chunks_per_cycle",
		Help:      "Number of chunks dispatched in the latest cycle",
	})

	m.handsPerCycle = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "hands_per_cycle",
		Help:      "Number of hands dispatched in the latest cycle",
	})

	m.lastCycleUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_cycle_unix",
		Help:      "Unix timestamp of the latest completed cycle",
	})

	m.dispatchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dispatch_latency_milliseconds",
		Help:      "Per worker-chunk round-trip latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerResponses = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "worker_responses_total",
			Help:      "Worker-chunk outcomes by status (ok, timeout, invalid)",
		},
		[]string{"status"},
	)

	m.rosterSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "roster_size",
		Help:      "Number of registered workers eligible for dispatch",
	})

	m.topComposite = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "top_composite_score",
		Help:      "Best composite score observed in the latest cycle",
	})

	m.eligibleCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "eligible_workers",
		Help:      "Workers with a positive composite score in the latest cycle",
	})

	m.burnWeight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "burn_weight",
		Help:      "Weight fraction assigned to the reserved identity",
	})

	m.corpusExhaustions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "corpus_exhaustions_total",
		Help:      "Times the corpus could not fill a requested batch",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of admin HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "Admin HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// RecordCycle increments the completed-cycle counter.
func RecordCycle() {
	globalManager.cyclesTotal.Inc()
}

// RecordCycleDegraded increments the degraded-cycle counter.
func RecordCycleDegraded() {
	globalManager.cyclesDegraded.Inc()
}

// RecordCycleDuration records the wall-clock duration of a cycle.
func RecordCycleDuration(seconds float64) {
	globalManager.cycleDuration.Observe(seconds)
}

// UpdateCycleShape sets the chunk/hand gauges for the latest cycle.
func UpdateCycleShape(chunks, hands int) {
	globalManager.chunksPerCycle.Set(float64(chunks))
	globalManager.handsPerCycle.Set(float64(hands))
}

// UpdateLastCycleUnix sets the completion timestamp of the latest cycle.
func UpdateLastCycleUnix(unix int64) {
	globalManager.lastCycleUnix.Set(float64(unix))
}

// RecordDispatchLatency records one worker-chunk round trip.
func RecordDispatchLatency(latencyMs float64) {
	globalManager.dispatchLatency.Observe(latencyMs)
}

// RecordWorkerResponse counts a worker-chunk outcome by status.
func RecordWorkerResponse(status string) {
	globalManager.workerResponses.WithLabelValues(status).Inc()
}

// UpdateRosterSize sets the registered worker count.
func UpdateRosterSize(count int) {
	globalManager.rosterSize.Set(float64(count))
}

// UpdateScoreboard sets the scoring gauges for the latest cycle.
func UpdateScoreboard(topComposite float64, eligible int) {
	globalManager.topComposite.Set(topComposite)
	globalManager.eligibleCount.Set(float64(eligible))
}

// UpdateBurnWeight sets the reserved identity's latest weight share.
func UpdateBurnWeight(weight float64) {
	globalManager.burnWeight.Set(weight)
}

// RecordCorpusExhaustion counts a failed batch fill.
func RecordCorpusExhaustion() {
	globalManager.corpusExhaustions.Inc()
}

// RecordHTTPRequest records an admin HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records admin HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
