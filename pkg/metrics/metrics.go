package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Triage metrics
	TriageClassifications *prometheus.CounterVec
	FlaggedLogs           prometheus.Counter

	// Alert lifecycle metrics
	AlertTransitions   *prometheus.CounterVec
	InvalidTransitions prometheus.Counter

	// Registration metrics
	EnrollmentsPending prometheus.Counter

	// Outbox metrics
	OutboxEventsProcessed prometheus.Counter
	OutboxEventsFailed    prometheus.Counter
	OutboxQueueLatency    prometheus.Histogram
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		TriageClassifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triage_classifications_total",
			Help:      "Symptom classifications by condition and severity",
		}, []string{"condition", "severity"}),
		FlaggedLogs: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triage_flagged_logs_total",
			Help:      "Symptom logs flagged for clinician review",
		}),
		AlertTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_transitions_total",
			Help:      "Emergency alert lifecycle transitions by target state",
		}, []string{"to"}),
		InvalidTransitions: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_invalid_transitions_total",
			Help:      "Rejected emergency alert transitions",
		}),
		EnrollmentsPending: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_enrollment_pending_total",
			Help:      "Patient registrations completed without an available doctor",
		}),
		OutboxEventsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_processed_total",
			Help:      "Total number of successfully processed outbox events",
		}),
		OutboxEventsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_failed_total",
			Help:      "Total number of failed outbox events",
		}),
		OutboxQueueLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "outbox_publish_duration_seconds",
			Help:      "Time spent publishing outbox events",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
	}
}
