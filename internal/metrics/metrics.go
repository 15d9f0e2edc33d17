// Package metrics exports filter engine activity as Prometheus metrics.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kin"

// Metrics implements kin.Observer.
type Metrics struct {
	registry *prometheus.Registry

	applied  *prometheus.CounterVec
	tested   *prometheus.CounterVec
	matched  *prometheus.CounterVec
	loops    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New registers the kin collectors, plus the Go and process collectors,
// on a fresh registry.
func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		applied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filters_applied_total",
			Help:      "Number of times a filter was applied.",
		}, []string{"filter"}),
		tested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "people_tested_total",
			Help:      "Number of people checked against a filter.",
		}, []string{"filter"}),
		matched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "people_matched_total",
			Help:      "Number of people who passed a filter.",
		}, []string{"filter"}),
		loops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relationship_loops_total",
			Help:      "Number of filter applications aborted by a relationship loop.",
		}, []string{"filter"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "apply_duration_seconds",
			Help:      "Time taken to apply a filter to a list of people.",
			Buckets:   []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}, []string{"filter"}),
	}

	for _, c := range []prometheus.Collector{
		m.applied, m.tested, m.matched, m.loops, m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("registering collector: %w", err)
		}
	}
	return m, nil
}

// FilterApplied records one successful filter application.
func (m *Metrics) FilterApplied(filter string, tested, matched int, elapsed time.Duration) {
	m.applied.WithLabelValues(filter).Inc()
	m.tested.WithLabelValues(filter).Add(float64(tested))
	m.matched.WithLabelValues(filter).Add(float64(matched))
	m.duration.WithLabelValues(filter).Observe(elapsed.Seconds())
}

// LoopDetected records a filter application that hit a relationship loop.
func (m *Metrics) LoopDetected(filter string) {
	m.loops.WithLabelValues(filter).Inc()
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
