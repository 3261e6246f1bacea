package incident

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the incident registry.
type Metrics struct {
	ReportsTotal     prometheus.Counter
	TransitionsTotal *prometheus.CounterVec
}

// NewMetrics registers and returns incident metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ReportsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "unilert_incident_reports_total",
			Help: "Total incidents ingested.",
		}),
		TransitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unilert_incident_transitions_total",
			Help: "Total incident status transitions by target status.",
		}, []string{"status"}),
	}

	reg.MustRegister(
		m.ReportsTotal,
		m.TransitionsTotal,
	)
	return m
}
