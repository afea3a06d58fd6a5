package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "leadform"

// Submission outcomes
const (
	OutcomeAccepted = "accepted"
	OutcomeInvalid  = "invalid"
	OutcomeSpam     = "spam"
	OutcomeSilent   = "silent"
	OutcomeFailed   = "failed"
)

// Metrics owns a private registry so tests can build as many as they like
type Metrics struct {
	registry           *prometheus.Registry
	rateLimitDecisions *prometheus.CounterVec
	submissions        *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rateLimitDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_decisions_total",
			Help:      "Rate limiter admissions and rejections per scope.",
		}, []string{"scope", "decision"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Form submissions by kind and outcome.",
		}, []string{"kind", "outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}

	m.registry.MustRegister(
		m.rateLimitDecisions,
		m.submissions,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) RateLimitDecision(scope string, allowed bool) {
	decision := "allowed"
	if !allowed {
		decision = "rejected"
	}
	m.rateLimitDecisions.WithLabelValues(scope, decision).Inc()
}

func (m *Metrics) Submission(kind, outcome string) {
	m.submissions.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	m.requestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
