package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ProviderAttempt("mock", true)
		m.Turn("GENERAL_CHAT", "ok")
		m.ToolExecution("x", false)
		m.ObserveModel(time.Second)
		m.ObserveRequest("GET", "/", 200, time.Millisecond)
	})
}

func TestCountersIncrement(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ProviderAttempt("hf", false)
	m.ProviderAttempt("hf", false)
	m.ProviderAttempt("mock", true)
	m.ToolExecution("get_student_status", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ProviderAttempts.WithLabelValues("hf", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderAttempts.WithLabelValues("mock", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolExecutions.WithLabelValues("get_student_status", "true")))
}
