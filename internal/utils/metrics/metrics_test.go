package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordGeneration("success")
	m.RecordGeneration("success")
	m.RecordGeneration("quota_exhausted")
	m.RecordCreditsGranted("pro", 40)
	m.RecordCheckoutSession("basic")
	m.RecordHTTPRequest("GET", "/api/generations", 200, 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("quota_exhausted")))
	assert.Equal(t, 40.0, testutil.ToFloat64(m.CreditsGrantedTotal.WithLabelValues("pro")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CheckoutSessionsTotal.WithLabelValues("basic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/generations", "200")))
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordGeneration("success")
		m.RecordAIRequest("ok", time.Second)
		m.RecordCreditsGranted("basic", 20)
	})
}
