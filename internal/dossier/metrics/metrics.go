package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the dossier lookup pipeline.
type Metrics struct {
	// Per-source fetch latencies
	SourceLatency *prometheus.HistogramVec

	// Section outcomes by source and status
	SourceOutcome *prometheus.CounterVec

	// Overall lookup latency including all source fetches
	LookupLatency prometheus.Histogram
}

// New creates a Metrics instance with all dossier pipeline metrics registered
// on the default registry.
func New() *Metrics {
	return &Metrics{
		SourceLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dossier_source_fetch_duration_seconds",
			Help:    "Duration of upstream registry fetches by source",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}), // source: "identity", "payments", "publications"

		SourceOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dossier_source_outcomes_total",
			Help: "Total section outcomes by source and status",
		}, []string{"source", "status"}),

		LookupLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "dossier_lookup_duration_seconds",
			Help:    "Duration of full dossier builds including all source fetches",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}

// ObserveSourceLatency records the duration of one upstream fetch.
func (m *Metrics) ObserveSourceLatency(source string, d time.Duration) {
	if m != nil {
		m.SourceLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// IncrementOutcome records a section outcome.
func (m *Metrics) IncrementOutcome(source, status string) {
	if m != nil {
		m.SourceOutcome.WithLabelValues(source, status).Inc()
	}
}

// ObserveLookupLatency records the total build duration.
func (m *Metrics) ObserveLookupLatency(d time.Duration) {
	if m != nil {
		m.LookupLatency.Observe(d.Seconds())
	}
}
