package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SearchHub metrics - using explicit registration
var (
	// Per-engine request counter
	EngineRequestsTotal *prometheus.CounterVec

	// Per-engine call latency
	EngineLatency *prometheus.HistogramVec

	// Adapter cache hits
	CacheHitsTotal *prometheus.CounterVec

	// Circuit breaker state gauge
	CircuitBreakerState *prometheus.GaugeVec
)

// init creates and registers all metrics with the default registry
func init() {
	EngineRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchhub",
			Subsystem: "engine",
			Name:      "requests_total",
			Help:      "Total search requests issued per engine",
		},
		[]string{"engine", "status"},
	)

	EngineLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "searchhub",
			Subsystem: "engine",
			Name:      "latency_seconds",
			Help:      "Engine call duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"engine"},
	)

	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchhub",
			Subsystem: "engine",
			Name:      "cache_hits_total",
			Help:      "Adapter response cache hits",
		},
		[]string{"engine"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "searchhub",
			Subsystem: "engine",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 0.5=half-open, 1=open)",
		},
		[]string{"engine"},
	)

	prometheus.MustRegister(
		EngineRequestsTotal,
		EngineLatency,
		CacheHitsTotal,
		CircuitBreakerState,
	)
}

// RecordEngineRequest increments the request counter for an engine
func RecordEngineRequest(engine, status string) {
	EngineRequestsTotal.WithLabelValues(engine, status).Inc()
}

// RecordEngineLatency observes one engine call duration
func RecordEngineLatency(engine string, seconds float64) {
	EngineLatency.WithLabelValues(engine).Observe(seconds)
}

// RecordCacheHit increments the cache hit counter for an engine
func RecordCacheHit(engine string) {
	CacheHitsTotal.WithLabelValues(engine).Inc()
}

// SetCircuitBreakerState records breaker state as a gauge value
func SetCircuitBreakerState(engine string, state float64) {
	CircuitBreakerState.WithLabelValues(engine).Set(state)
}
