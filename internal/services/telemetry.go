package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Telemetry holds the Prometheus counters of the storefront.
type Telemetry struct {
	ClicksRecorded prometheus.Counter
	ClicksDropped  prometheus.Counter
	ClicksFailed   prometheus.Counter
	DashboardLoads *prometheus.CounterVec
}

// NewTelemetry registers the counters on reg.
func NewTelemetry(reg prometheus.Registerer) *Telemetry {
	factory := promauto.With(reg)
	return &Telemetry{
		ClicksRecorded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "affilink",
			Name:      "clicks_recorded_total",
			Help:      "Clicks written to the store",
		}),
		ClicksDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "affilink",
			Name:      "clicks_dropped_total",
			Help:      "Clicks dropped because the recorder queue was full",
		}),
		ClicksFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "affilink",
			Name:      "clicks_failed_total",
			Help:      "Clicks the store refused to insert",
		}),
		DashboardLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "affilink",
			Name:      "dashboard_loads_total",
			Help:      "Dashboard loads by outcome",
		}, []string{"status"}),
	}
}
