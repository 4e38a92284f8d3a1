// Package metrics exposes Prometheus counters for moderation activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the bot's counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ModerationActionsTotal *prometheus.CounterVec
	JailSweepTotal         *prometheus.CounterVec
	IdentityChecksTotal    *prometheus.CounterVec
	BadgeRequestsTotal     *prometheus.CounterVec
}

// New registers the counters on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ModerationActionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "modbot_moderation_actions_total",
			Help: "Moderation actions taken, by action and violation category.",
		}, []string{"action", "category"}),
		JailSweepTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "modbot_jail_sweep_total",
			Help: "Expired jails processed by the sweeper, by outcome.",
		}, []string{"outcome"}),
		IdentityChecksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "modbot_identity_checks_total",
			Help: "External profile checks, by check and result.",
		}, []string{"check", "result"}),
		BadgeRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "modbot_badge_requests_total",
			Help: "Badge request transitions, by resulting status.",
		}, []string{"status"}),
	}
}

func (m *Metrics) ModerationAction(action, category string) {
	if m == nil {
		return
	}
	m.ModerationActionsTotal.WithLabelValues(action, category).Inc()
}

func (m *Metrics) JailSweep(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.JailSweepTotal.WithLabelValues(outcome).Add(float64(n))
}

func (m *Metrics) IdentityCheck(check, result string) {
	if m == nil {
		return
	}
	m.IdentityChecksTotal.WithLabelValues(check, result).Inc()
}

func (m *Metrics) BadgeRequest(status string) {
	if m == nil {
		return
	}
	m.BadgeRequestsTotal.WithLabelValues(status).Inc()
}

// Gatherer returns the registry backing these metrics.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
