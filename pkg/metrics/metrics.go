package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all engine metrics
type Metrics struct {
	// Reconciliation metrics
	ReconcilePasses  *prometheus.CounterVec
	ReconcileLatency prometheus.Histogram

	// Delivery metrics
	NotificationsScheduled prometheus.Counter
	NotificationsCancelled prometheus.Counter
	NotificationsSkipped   *prometheus.CounterVec
	DeliveryErrors         *prometheus.CounterVec

	// Index metrics
	IndexRebuilds  prometheus.Counter
	IndexRollovers prometheus.Counter

	// Snooze metrics
	SnoozesRequested prometheus.Counter
}

// NewMetrics creates and registers all engine metrics on the default
// registerer.
func NewMetrics(namespace, subsystem string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, namespace, subsystem)
}

// NewMetricsWith registers on an explicit registerer; tests pass a fresh
// registry so repeated construction does not collide.
func NewMetricsWith(reg prometheus.Registerer, namespace, subsystem string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ReconcilePasses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reconcile_passes_total",
			Help:      "Total reconciliation passes by result",
		}, []string{"result"}),
		ReconcileLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reconcile_duration_seconds",
			Help:      "Time spent in one reconciliation pass",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		NotificationsScheduled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_scheduled_total",
			Help:      "Total notifications handed to the delivery capability",
		}),
		NotificationsCancelled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_cancelled_total",
			Help:      "Total notifications cancelled with the delivery capability",
		}),
		NotificationsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_skipped_total",
			Help:      "Slots that produced no delivery call, by reason",
		}, []string{"reason"}),
		DeliveryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "delivery_errors_total",
			Help:      "Failed delivery capability calls by operation",
		}, []string{"operation"}),
		IndexRebuilds: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "index_rebuilds_total",
			Help:      "Times a corrupt index was discarded and rebuilt",
		}),
		IndexRollovers: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "index_rollovers_total",
			Help:      "Day rollovers observed since process start",
		}),
		SnoozesRequested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "snoozes_requested_total",
			Help:      "Snooze operations requested by the user",
		}),
	}
}
