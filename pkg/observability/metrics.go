package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for the comparison engine.
type Metrics struct {
	ComparisonsTotal      *prometheus.CounterVec
	RuleEvaluationSeconds prometheus.Histogram
	ParseErrorsTotal      prometheus.Counter
	CacheHitsTotal        prometheus.Counter
	CacheMissesTotal      prometheus.Counter
}

// NewMetrics creates and registers the engine metrics on the given
// registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		ComparisonsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protosign_comparisons_total",
				Help: "Total number of file-pair comparisons by verdict",
			},
			[]string{"verdict"},
		),
		RuleEvaluationSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "protosign_rule_evaluation_seconds",
				Help:    "Duration of rule evaluation per file pair",
				Buckets: prometheus.DefBuckets,
			},
		),
		ParseErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "protosign_parse_errors_total",
				Help: "Total number of parse or normalize failures",
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "protosign_fingerprint_cache_hits_total",
				Help: "Fingerprint cache hits",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "protosign_fingerprint_cache_misses_total",
				Help: "Fingerprint cache misses",
			},
		),
	}

	if registry != nil {
		registry.MustRegister(
			m.ComparisonsTotal,
			m.RuleEvaluationSeconds,
			m.ParseErrorsTotal,
			m.CacheHitsTotal,
			m.CacheMissesTotal,
		)
	}
	return m
}
