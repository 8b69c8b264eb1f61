package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBookingMetrics_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveClaim(OutcomeSuccess, 0.01)
	m.ObserveClaim(OutcomeConflict, 0.02)
	m.ObserveClaim(OutcomeConflict, 0.02)
	m.ObserveDelivery("whatsapp", OutcomeFailed)
	m.SetQueueDepth(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.claims.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.claims.WithLabelValues(OutcomeConflict)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("whatsapp", OutcomeFailed)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.queueDepth))
}

func TestBookingMetrics_NilIsNoop(t *testing.T) {
	var m *BookingMetrics
	assert.NotPanics(t, func() {
		m.ObserveClaim(OutcomeSuccess, 0)
		m.ObserveDelivery("email", OutcomeSent)
		m.SetQueueDepth(1)
	})
}
