package analyze

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics provides Prometheus-compatible metrics collection for
// analysis runs in production environments.
//
// Metrics exposed (all namespaced with "flowaudit_"):
//
//  1. runs_total (counter): analysis runs by outcome.
//     Labels: status (ok, empty_input, fault).
//
//  2. analyzer_latency_ms (histogram): per-analyzer execution duration.
//     Labels: analyzer, status (success, error).
//     Buckets: [1, 5, 10, 50, 100, 500, 1000, 5000, 10000].
//
//  3. external_fallbacks_total (counter): external reasoning calls that
//     degraded to the local heuristic.
//     Labels: analyzer, reason (timeout, transport, malformed).
//
//  4. findings_total (counter): findings produced per analyzer
//     (duplicate pairs, gaps, high-risk steps, ordering violations).
//     Labels: analyzer.
//
// Usage:
//
//	registry := prometheus.NewRegistry()
//	metrics := analyze.NewPrometheusMetrics(registry)
//	engine, _ := analyze.New(analyze.WithMetrics(metrics))
//	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
//
// Thread-safe: prometheus collectors handle concurrent updates internally.
type PrometheusMetrics struct {
	runs            *prometheus.CounterVec
	analyzerLatency *prometheus.HistogramVec
	fallbacks       *prometheus.CounterVec
	findings        *prometheus.CounterVec

	registry prometheus.Registerer

	mu      sync.RWMutex
	enabled bool
}

// NewPrometheusMetrics creates and registers all analysis metrics with the
// provided Prometheus registry.
//
// Parameters:
//   - registry: registry to register metrics with (nil uses
//     prometheus.DefaultRegisterer).
//
// Histograms use buckets optimized for typical analyzer latencies
// (sub-millisecond heuristics up to multi-second external calls).
func NewPrometheusMetrics(registry prometheus.Registerer) *PrometheusMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	pm := &PrometheusMetrics{
		registry: registry,
		enabled:  true,
	}

	pm.runs = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flowaudit",
		Name:      "runs_total",
		Help:      "Analysis runs by outcome",
	}, []string{"status"}) // status: ok, empty_input, fault

	pm.analyzerLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "flowaudit",
		Name:      "analyzer_latency_ms",
		Help:      "Analyzer execution duration in milliseconds",
		Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
	}, []string{"analyzer", "status"}) // status: success, error

	pm.fallbacks = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flowaudit",
		Name:      "external_fallbacks_total",
		Help:      "External reasoning calls that degraded to the local heuristic",
	}, []string{"analyzer", "reason"}) // reason: timeout, transport, malformed

	pm.findings = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flowaudit",
		Name:      "findings_total",
		Help:      "Findings produced per analyzer",
	}, []string{"analyzer"})

	return pm
}

// RecordRun increments the run counter for the given outcome
// ("ok", "empty_input", "fault").
func (pm *PrometheusMetrics) RecordRun(status string) {
	if pm == nil || !pm.isEnabled() {
		return
	}
	pm.runs.WithLabelValues(status).Inc()
}

// RecordAnalyzerLatency records the execution duration of one analyzer.
func (pm *PrometheusMetrics) RecordAnalyzerLatency(analyzer string, latency time.Duration, status string) {
	if pm == nil || !pm.isEnabled() {
		return
	}
	pm.analyzerLatency.WithLabelValues(analyzer, status).Observe(float64(latency.Milliseconds()))
}

// IncrementFallbacks increments the fallback counter for an analyzer and
// reason ("timeout", "transport", "malformed").
func (pm *PrometheusMetrics) IncrementFallbacks(analyzer, reason string) {
	if pm == nil || !pm.isEnabled() {
		return
	}
	pm.fallbacks.WithLabelValues(analyzer, reason).Inc()
}

// AddFindings adds to the findings counter for an analyzer.
func (pm *PrometheusMetrics) AddFindings(analyzer string, count int) {
	if pm == nil || !pm.isEnabled() || count <= 0 {
		return
	}
	pm.findings.WithLabelValues(analyzer).Add(float64(count))
}

// Disable temporarily disables metric recording (useful for testing).
func (pm *PrometheusMetrics) Disable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = false
}

// Enable re-enables metric recording after Disable().
func (pm *PrometheusMetrics) Enable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = true
}

func (pm *PrometheusMetrics) isEnabled() bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.enabled
}
