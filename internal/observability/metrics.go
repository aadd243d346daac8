package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// risk engine.
type Metrics struct {
	WellsScored   prometheus.Counter
	ScoringErrors prometheus.Counter
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter

	AnalysisDuration prometheus.Histogram
	WellScore        prometheus.Histogram
	EngineRunning    prometheus.Gauge
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		WellsScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wellrisk",
			Name:      "wells_scored_total",
			Help:      "Total wells scored across all runs.",
		}),
		ScoringErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wellrisk",
			Name:      "scoring_errors_total",
			Help:      "Total wells that failed scoring.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wellrisk",
			Name:      "cache_hits_total",
			Help:      "Runs answered from the result cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wellrisk",
			Name:      "cache_misses_total",
			Help:      "Runs that required full recomputation.",
		}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wellrisk",
			Name:      "analysis_duration_seconds",
			Help:      "Duration of a complete scoring run.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		}),
		WellScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wellrisk",
			Name:      "well_final_score",
			Help:      "Distribution of final risk scores.",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
		EngineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wellrisk",
			Name:      "engine_running",
			Help:      "1 while a scoring run is active, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.WellsScored,
		m.ScoringErrors,
		m.CacheHits,
		m.CacheMisses,
		m.AnalysisDuration,
		m.WellScore,
		m.EngineRunning,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests
// can construct engines repeatedly without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		WellsScored:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wellrisk", Name: "wells_scored_total"}),
		ScoringErrors:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wellrisk", Name: "scoring_errors_total"}),
		CacheHits:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wellrisk", Name: "cache_hits_total"}),
		CacheMisses:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wellrisk", Name: "cache_misses_total"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "wellrisk", Name: "analysis_duration_seconds"}),
		WellScore:        prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "wellrisk", Name: "well_final_score"}),
		EngineRunning:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "wellrisk", Name: "engine_running"}),
	}
}
