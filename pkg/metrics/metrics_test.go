package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBookingTransitionsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("marketplace", reg)

	m.BookingTransitions.WithLabelValues("pending", "accepted").Inc()
	m.BookingTransitions.WithLabelValues("pending", "accepted").Inc()
	m.BookingsCreated.Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BookingTransitions.WithLabelValues("pending", "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingsCreated))
}

func TestNewNopDoesNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNop()
		NewNop()
	})
}
