package sos

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the SOS coordinator.
type Metrics struct {
	AlertsTotal  *prometheus.CounterVec
	ActiveAlerts prometheus.Gauge
}

// NewMetrics registers and returns SOS metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AlertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unilert_sos_alerts_total",
			Help: "Total SOS alert events: ingested, responded, resolved.",
		}, []string{"event"}),
		ActiveAlerts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "unilert_sos_active_alerts",
			Help: "SOS alerts currently active.",
		}),
	}

	reg.MustRegister(
		m.AlertsTotal,
		m.ActiveAlerts,
	)
	return m
}
