// Package metrics exposes Prometheus instrumentation for the evaluation
// workflow. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login results.
const (
	LoginSuccess     = "success"
	LoginUnknownUser = "unknown_user"
	LoginBadPassword = "bad_password"
	LoginError       = "error"
)

// Metrics holds the collectors registered on its own registry.
type Metrics struct {
	registry    *prometheus.Registry
	logins      *prometheus.CounterVec
	scoresSaved *prometheus.CounterVec
	navigation  *prometheus.CounterVec
	ledgerWrite prometheus.Histogram
}

// New creates and registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paraeval",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		scoresSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paraeval",
			Name:      "scores_saved_total",
			Help:      "Score saves by model and result.",
		}, []string{"model", "result"}),
		navigation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paraeval",
			Name:      "navigation_total",
			Help:      "Cursor navigation requests by action.",
		}, []string{"action"}),
		ledgerWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "paraeval",
			Name:      "ledger_write_seconds",
			Help:      "Latency of score ledger upserts.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}
	reg.MustRegister(
		m.logins, m.scoresSaved, m.navigation, m.ledgerWrite,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// LoginAttempt counts one login by result.
func (m *Metrics) LoginAttempt(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

// ScoreSaved counts one save for model, labelled by whether err is nil.
func (m *Metrics) ScoreSaved(model string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.scoresSaved.WithLabelValues(model, result).Inc()
}

// Navigated counts one navigation action (next, prev, goto, model).
func (m *Metrics) Navigated(action string) {
	if m == nil {
		return
	}
	m.navigation.WithLabelValues(action).Inc()
}

// ObserveLedgerWrite records the duration of one ledger upsert.
func (m *Metrics) ObserveLedgerWrite(d time.Duration) {
	if m == nil {
		return
	}
	m.ledgerWrite.Observe(d.Seconds())
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
