// Package metrics holds the Prometheus collectors of the agent.
//
// All methods are safe on a nil *Metrics so components can run without
// instrumentation (tests, the CLI).
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ProviderAttempts *prometheus.CounterVec
	Turns            *prometheus.CounterVec
	ToolExecutions   *prometheus.CounterVec
	RequestCount     *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	ModelLatency     prometheus.Histogram
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ProviderAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intentagent_provider_attempts_total",
				Help: "Language model calls by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		Turns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intentagent_turns_total",
				Help: "Dialogue turns by intent and outcome",
			},
			[]string{"intent", "outcome"},
		),
		ToolExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intentagent_tool_executions_total",
				Help: "Tool executions by tool and success",
			},
			[]string{"tool", "success"},
		),
		RequestCount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intentagent_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "intentagent_http_request_duration_seconds",
				Help: "HTTP request duration in seconds",
			},
			[]string{"method", "endpoint"},
		),
		ModelLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name: "intentagent_model_latency_seconds",
				Help: "Latency of a full router call in seconds",
			},
		),
	}
}

func (m *Metrics) ProviderAttempt(provider string, ok bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	m.ProviderAttempts.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) Turn(intent, outcome string) {
	if m == nil {
		return
	}
	m.Turns.WithLabelValues(intent, outcome).Inc()
}

func (m *Metrics) ToolExecution(tool string, success bool) {
	if m == nil {
		return
	}
	m.ToolExecutions.WithLabelValues(tool, strconv.FormatBool(success)).Inc()
}

func (m *Metrics) ObserveModel(d time.Duration) {
	if m == nil {
		return
	}
	m.ModelLatency.Observe(d.Seconds())
}

func (m *Metrics) ObserveRequest(method, endpoint string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestCount.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, endpoint).Observe(d.Seconds())
}
