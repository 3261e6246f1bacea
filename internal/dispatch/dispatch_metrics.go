package dispatch

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the dispatch coordinator.
type Metrics struct {
	DispatchesTotal    *prometheus.CounterVec
	DispatchedOfficers prometheus.Histogram
}

// NewMetrics registers and returns dispatch metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DispatchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unilert_dispatches_total",
			Help: "Total dispatch attempts by outcome.",
		}, []string{"outcome"}),
		DispatchedOfficers: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "unilert_dispatched_officers",
			Help:    "Officers per successful dispatch.",
			Buckets: prometheus.LinearBuckets(1, 1, 8), // 1 .. 8
		}),
	}

	reg.MustRegister(
		m.DispatchesTotal,
		m.DispatchedOfficers,
	)
	return m
}
