package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeSuccess   = "success"
	OutcomeConflict  = "conflict"
	OutcomeInvalid   = "invalid"
	OutcomeTransient = "transient"
	OutcomeSent      = "sent"
	OutcomeFailed    = "failed"
	OutcomeDropped   = "dropped"
)

const namespace = "slotbook"

// BookingMetrics groups the counters and histograms of the booking core.
type BookingMetrics struct {
	claims        *prometheus.CounterVec
	claimLatency  prometheus.Histogram
	notifications *prometheus.CounterVec
	queueDepth    prometheus.Gauge
}

var (
	bookingOnce     sync.Once
	bookingRegistry *BookingMetrics
)

// Booking returns the lazily registered metrics on the default registry.
func Booking() *BookingMetrics {
	bookingOnce.Do(func() {
		bookingRegistry = NewBookingMetrics(prometheus.DefaultRegisterer)
	})
	return bookingRegistry
}

// NewBookingMetrics creates the metrics and registers them on reg. A nil reg skips registration.
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		claims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "claims_total",
			Help:      "Slot claims segmented by outcome.",
		}, []string{"outcome"}),
		claimLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "claim_duration_seconds",
			Help:      "Latency of ClaimSlot up to the ledger write.",
			Buckets:   prometheus.DefBuckets,
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notification",
			Name:      "deliveries_total",
			Help:      "Notification channel deliveries segmented by channel and outcome.",
		}, []string{"channel", "outcome"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "notification",
			Name:      "queue_depth",
			Help:      "Reservations waiting for notification dispatch.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.claims, m.claimLatency, m.notifications, m.queueDepth)
	}
	return m
}

// ObserveClaim records one ClaimSlot call.
func (m *BookingMetrics) ObserveClaim(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.claims.WithLabelValues(outcome).Inc()
	m.claimLatency.Observe(seconds)
}

// ObserveDelivery records one channel attempt.
func (m *BookingMetrics) ObserveDelivery(channel, outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(channel, outcome).Inc()
}

// SetQueueDepth publishes the notification backlog.
func (m *BookingMetrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}
