// Package metrics exposes Prometheus instrumentation for the decision
// engine along with small statistical helpers used for score comparison.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "steelyard"

// Collector owns the Prometheus metrics exposed by the serve command.
type Collector struct {
	registry *prometheus.Registry

	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
	gateVerdictsTotal  *prometheus.CounterVec
	policyReloadsTotal prometheus.Counter
	historySize        prometheus.Gauge
}

// NewCollector creates and registers the engine metrics. A nil registry
// gets a fresh one, keeping callers isolated from the default registry.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,

		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Total number of policy evaluations",
			},
			[]string{"policy", "best"},
		),

		evaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of a single policy evaluation in seconds",
				// Evaluations are pure arithmetic and stay well under 16ms.
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
		),

		gateVerdictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gate_verdicts_total",
				Help:      "Total number of gate verdicts by mode and outcome",
			},
			[]string{"mode", "verdict"},
		),

		policyReloadsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "policy_reloads_total",
				Help:      "Total number of policy document reloads",
			},
		),

		historySize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "history_decisions",
				Help:      "Number of decisions currently stored in history",
			},
		),
	}

	registry.MustRegister(
		c.evaluationsTotal,
		c.evaluationDuration,
		c.gateVerdictsTotal,
		c.policyReloadsTotal,
		c.historySize,
	)

	return c
}

// RecordEvaluation records one evaluation and its latency.
func (c *Collector) RecordEvaluation(policy, best string, duration time.Duration) {
	c.evaluationsTotal.WithLabelValues(policy, best).Inc()
	c.evaluationDuration.Observe(duration.Seconds())
}

// RecordGateVerdict records a gate outcome by mode.
func (c *Collector) RecordGateVerdict(mode string, passed bool) {
	verdict := "fail"
	if passed {
		verdict = "pass"
	}
	c.gateVerdictsTotal.WithLabelValues(mode, verdict).Inc()
}

// RecordPolicyReload records a policy document reload.
func (c *Collector) RecordPolicyReload() {
	c.policyReloadsTotal.Inc()
}

// SetHistorySize updates the stored decision count gauge.
func (c *Collector) SetHistorySize(n int64) {
	c.historySize.Set(float64(n))
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}
