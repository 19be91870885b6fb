package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_AuthAttempt(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.AuthAttempt("login", "success")
	m.AuthAttempt("login", "success")
	m.AuthAttempt("login", "rejected")

	assert.InDelta(t, 2, testutil.ToFloat64(m.AuthAttempts.WithLabelValues("login", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.AuthAttempts.WithLabelValues("login", "rejected")), 0)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.AuthAttempt("login", "success") })
}
