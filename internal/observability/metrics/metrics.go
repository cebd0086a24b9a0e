// Package metrics registers the Prometheus instruments for the booking
// platform and adapts them to the small observer interfaces the domain
// packages consume.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry bundles the platform's counters and histograms. It satisfies the
// bookings, reminders, and payments metrics interfaces. All methods are
// nil-safe so wiring metrics stays optional.
type Registry struct {
	bookingsCreated prometheus.Counter
	transitions     *prometheus.CounterVec
	remindersSent   *prometheus.CounterVec
	paymentWebhooks *prometheus.CounterVec
	reminderScan    prometheus.Histogram
}

// New registers the platform metrics on reg, falling back to the default
// registerer when reg is nil.
func New(reg prometheus.Registerer) *Registry {
	m := &Registry{
		bookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "herhealth",
			Subsystem: "bookings",
			Name:      "created_total",
			Help:      "Total bookings created",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "herhealth",
			Subsystem: "bookings",
			Name:      "transitions_total",
			Help:      "Total booking status transitions",
		}, []string{"to"}),
		remindersSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "herhealth",
			Subsystem: "reminders",
			Name:      "sent_total",
			Help:      "Reminder dispatch attempts by result",
		}, []string{"result"}),
		paymentWebhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "herhealth",
			Subsystem: "payments",
			Name:      "webhooks_total",
			Help:      "Stripe webhook deliveries by outcome",
		}, []string{"status"}),
		reminderScan: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "herhealth",
			Subsystem: "reminders",
			Name:      "scan_duration_seconds",
			Help:      "Duration of reminder scan passes",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsCreated, m.transitions, m.remindersSent, m.paymentWebhooks, m.reminderScan)
	return m
}

// ObserveBookingCreated counts a new booking.
func (m *Registry) ObserveBookingCreated() {
	if m == nil {
		return
	}
	m.bookingsCreated.Inc()
}

// ObserveTransition counts a booking status transition.
func (m *Registry) ObserveTransition(to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(to).Inc()
}

// ObserveReminder counts one reminder dispatch attempt.
func (m *Registry) ObserveReminder(result string) {
	if m == nil {
		return
	}
	m.remindersSent.WithLabelValues(result).Inc()
}

// ObserveReminderScan records one scan pass.
func (m *Registry) ObserveReminderScan(duration time.Duration, _ int) {
	if m == nil {
		return
	}
	m.reminderScan.Observe(duration.Seconds())
}

// ObservePaymentWebhook counts a Stripe webhook delivery by outcome.
func (m *Registry) ObservePaymentWebhook(status string) {
	if m == nil {
		return
	}
	m.paymentWebhooks.WithLabelValues(status).Inc()
}
