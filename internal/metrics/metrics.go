package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus instruments exported on /metrics.
type Metrics struct {
	RemindersPublished prometheus.Counter
	ExternalCallErrors *prometheus.CounterVec
	ExternalCallTime   *prometheus.HistogramVec
	FlightAssignments  *prometheus.CounterVec
}

// New registers and returns the service metrics under the given namespace.
func New(namespace string) *Metrics {
	return &Metrics{
		RemindersPublished: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_published_total",
			Help:      "Flight reminder events published to the broker",
		}),
		ExternalCallErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "external_call_errors_total",
			Help:      "Failed calls to external services",
		}, []string{"service"}),
		ExternalCallTime: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "external_call_duration_seconds",
			Help:      "Latency of calls to external services",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service"}),
		FlightAssignments: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flight_assignments_total",
			Help:      "Flight slot accept/decline operations by outcome",
		}, []string{"op", "outcome"}),
	}
}
