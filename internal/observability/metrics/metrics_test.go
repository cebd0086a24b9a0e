package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegistryCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveBookingCreated()
	m.ObserveBookingCreated()
	m.ObserveTransition("confirmed")
	m.ObserveTransition("confirmed")
	m.ObserveTransition("cancelled")
	m.ObserveReminder("sent")
	m.ObserveReminder("error")
	m.ObservePaymentWebhook("duplicate")
	m.ObserveReminderScan(150*time.Millisecond, 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookingsCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("confirmed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("cancelled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.remindersSent.WithLabelValues("sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.remindersSent.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.paymentWebhooks.WithLabelValues("duplicate")))
}

func TestNilRegistryIsSafe(t *testing.T) {
	var m *Registry
	assert.NotPanics(t, func() {
		m.ObserveBookingCreated()
		m.ObserveTransition("confirmed")
		m.ObserveReminder("sent")
		m.ObserveReminderScan(time.Second, 1)
		m.ObservePaymentWebhook("confirmed")
	})
}
