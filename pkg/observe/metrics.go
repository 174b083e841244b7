// Package observe provides observability hooks for reactor engines:
// a Prometheus metrics observer and an OpenTelemetry tracing observer.
// Both implement reactor.Observer and attach via reactor.WithObserver.
package observe

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/reactor"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "reactor").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for mutation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the mutation duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:   "reactor",
		Subsystem:   "",
		ConstLabels: nil,
		Buckets:     prometheus.DefBuckets,
		Registry:    prometheus.DefaultRegisterer,
	}
}

// affectedBuckets sizes the affected-cells histogram. Graphs past a few
// hundred cells are unusual for this engine.
var affectedBuckets = []float64{0, 1, 2, 4, 8, 16, 32, 64, 128}

// Metrics is a reactor.Observer that exports engine activity as Prometheus
// metrics.
//
// Metrics collected:
//   - reactor_cells_total: Counter of cells created by kind
//   - reactor_evaluations_total: Counter of compute function invocations
//   - reactor_mutations_total: Counter of input mutations
//   - reactor_mutation_duration_seconds: Histogram of mutation duration
//   - reactor_affected_cells: Histogram of compute cells affected per mutation
//   - reactor_callbacks_fired_total: Counter of callback invocations
//   - reactor_callbacks_registered: Gauge of currently registered callbacks
//
// Evaluation counts make the cost of the engine's uncached design visible:
// a single mutation evaluates every affected cell twice, plus once per
// level of recursion below it.
type Metrics struct {
	cellsTotal       *prometheus.CounterVec
	evaluationsTotal prometheus.Counter
	mutationsTotal   prometheus.Counter
	mutationDuration prometheus.Histogram
	affectedCells    prometheus.Histogram
	callbacksFired   prometheus.Counter
	callbacksLive    prometheus.Gauge
}

var _ reactor.Observer = (*Metrics)(nil)

// NewMetrics creates the observer and registers its collectors on the
// configured registry. Registration follows promauto rules: registering
// the same metrics twice on one registry panics, so give each observer
// its own registry or namespace.
//
// Example:
//
//	m := observe.NewMetrics(observe.WithNamespace("sheet"))
//	r := reactor.New[float64](reactor.WithObserver[float64](m))
//	http.Handle("/metrics", promhttp.Handler())
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		cellsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cells_total",
			Help:        "Total number of cells created by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		evaluationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "evaluations_total",
			Help:        "Total number of compute function invocations",
			ConstLabels: config.ConstLabels,
		}),

		mutationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mutations_total",
			Help:        "Total number of input mutations",
			ConstLabels: config.ConstLabels,
		}),

		mutationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mutation_duration_seconds",
			Help:        "Input mutation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		affectedCells: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "affected_cells",
			Help:        "Compute cells affected per mutation",
			ConstLabels: config.ConstLabels,
			Buckets:     affectedBuckets,
		}),

		callbacksFired: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "callbacks_fired_total",
			Help:        "Total number of callback invocations",
			ConstLabels: config.ConstLabels,
		}),

		callbacksLive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "callbacks_registered",
			Help:        "Number of currently registered callbacks",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// InputCreated implements reactor.Observer.
func (m *Metrics) InputCreated(id reactor.InputCellID, initial any) {
	m.cellsTotal.WithLabelValues("input").Inc()
}

// ComputeCreated implements reactor.Observer.
func (m *Metrics) ComputeCreated(id reactor.ComputeCellID, deps []reactor.CellID) {
	m.cellsTotal.WithLabelValues("compute").Inc()
}

// CellEvaluated implements reactor.Observer.
func (m *Metrics) CellEvaluated(id reactor.ComputeCellID) {
	m.evaluationsTotal.Inc()
}

// InputSet implements reactor.Observer.
func (m *Metrics) InputSet(id reactor.InputCellID, value any, affected, notified int, elapsed time.Duration) {
	m.mutationsTotal.Inc()
	m.mutationDuration.Observe(elapsed.Seconds())
	m.affectedCells.Observe(float64(affected))
}

// CallbackAdded implements reactor.Observer.
func (m *Metrics) CallbackAdded(cell reactor.ComputeCellID, id reactor.CallbackID) {
	m.callbacksLive.Inc()
}

// CallbackRemoved implements reactor.Observer.
func (m *Metrics) CallbackRemoved(cell reactor.ComputeCellID, id reactor.CallbackID) {
	m.callbacksLive.Dec()
}

// CallbackFired implements reactor.Observer.
func (m *Metrics) CallbackFired(cell reactor.ComputeCellID, id reactor.CallbackID, value any) {
	m.callbacksFired.Inc()
}
