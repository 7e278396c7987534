// Package metrics holds the Prometheus counters for the auth service. All
// recording methods are safe on a nil *Metrics so callers need no guards.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "auth"

type Metrics struct {
	registry *prometheus.Registry

	logins           *prometheus.CounterVec
	twoFactor        *prometheus.CounterVec
	signups          *prometheus.CounterVec
	tokenValidations *prometheus.CounterVec
	tokensIssued     prometheus.Counter
	tokensRevoked    prometheus.Counter
	notifyFailures   prometheus.Counter
	sweptRecords     prometheus.Counter
}

// New registers all collectors on a fresh registry rather than the global one.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	f := promauto.With(registry)
	return &Metrics{
		registry: registry,
		logins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		twoFactor: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "two_factor_verifications_total",
			Help:      "Two-factor verification attempts by outcome.",
		}, []string{"outcome"}),
		signups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signups_total",
			Help:      "Signup attempts by outcome.",
		}, []string{"outcome"}),
		tokenValidations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_validations_total",
			Help:      "Token validations by result.",
		}, []string{"result"}),
		tokensIssued: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Session tokens issued.",
		}),
		tokensRevoked: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_revoked_total",
			Help:      "Session tokens revoked.",
		}),
		notifyFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "One-time code deliveries that failed.",
		}),
		sweptRecords: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "housekeeping_swept_records_total",
			Help:      "Expired challenges and revocation records removed by housekeeping.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Login(outcome string) {
	if m != nil {
		m.logins.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) TwoFactor(outcome string) {
	if m != nil {
		m.twoFactor.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) Signup(outcome string) {
	if m != nil {
		m.signups.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) TokenValidation(result string) {
	if m != nil {
		m.tokenValidations.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) TokenIssued() {
	if m != nil {
		m.tokensIssued.Inc()
	}
}

func (m *Metrics) TokenRevoked() {
	if m != nil {
		m.tokensRevoked.Inc()
	}
}

func (m *Metrics) NotificationFailed() {
	if m != nil {
		m.notifyFailures.Inc()
	}
}

func (m *Metrics) Swept(n int64) {
	if m != nil && n > 0 {
		m.sweptRecords.Add(float64(n))
	}
}
