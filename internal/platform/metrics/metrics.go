package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the gateway. Registered once in
// main via New and passed down to the pieces that observe.
type Metrics struct {
	UpstreamRequestDurationMs *prometheus.HistogramVec
	UpstreamRequestErrors     *prometheus.CounterVec
	CacheHits                 prometheus.Counter
	CacheMisses               prometheus.Counter
	FlowOutcomes              *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		UpstreamRequestDurationMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "unemigw_upstream_request_duration_ms",
			Help:    "Latency of upstream UNEMI system calls in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		}, []string{"system", "operation"}),
		UpstreamRequestErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "unemigw_upstream_request_errors_total",
			Help: "Upstream calls that failed after retries",
		}, []string{"system", "operation"}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "unemigw_cache_hits_total",
			Help: "Student record cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "unemigw_cache_misses_total",
			Help: "Student record cache misses",
		}),
		FlowOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "unemigw_flow_outcomes_total",
			Help: "Terminal outcomes of the student resolution flow",
		}, []string{"outcome"}),
	}
}

// ObserveUpstream records one upstream call.
func (m *Metrics) ObserveUpstream(system, operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.UpstreamRequestDurationMs.WithLabelValues(system, operation).
		Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	if err != nil {
		m.UpstreamRequestErrors.WithLabelValues(system, operation).Inc()
	}
}

// ObserveOutcome records the terminal outcome of one resolution.
func (m *Metrics) ObserveOutcome(outcome string) {
	if m == nil {
		return
	}
	m.FlowOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveCache records a cache lookup result.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Inc()
	} else {
		m.CacheMisses.Inc()
	}
}
