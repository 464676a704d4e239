package instrument

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/reactor/pkg/reactive"
)

// anonymous labels effects and computeds created without a name.
const anonymous = "anonymous"

// MetricsConfig configures the Prometheus instrumentation.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "reactor").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus instrumentation.
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

// WithBuckets sets the duration histogram buckets.
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

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "reactor",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// flushSizeBuckets covers a handful of observers up to very wide fan-outs.
var flushSizeBuckets = []float64{1, 2, 5, 10, 25, 50, 100, 250, 1000}

// Metrics records engine events as Prometheus metrics.
//
// Metrics collected:
//   - reactor_signal_writes_total: Counter of value-changing signal writes
//   - reactor_recomputes_total: Counter of computed re-evaluations by name
//   - reactor_recompute_duration_seconds: Histogram of re-evaluation time by name
//   - reactor_effect_runs_total: Counter of effect runs by effect name
//   - reactor_effect_duration_seconds: Histogram of effect run time by name
//   - reactor_flushes_total: Counter of batch flushes
//   - reactor_flush_size: Histogram of observers run per flush
//   - reactor_cycles_total: Counter of cyclic computed reads by name
//   - reactor_tx_total: Counter of named transactions by name
//   - reactor_tx_duration_seconds: Histogram of named transaction time
type Metrics struct {
	writes            prometheus.Counter
	recomputes        *prometheus.CounterVec
	recomputeDuration *prometheus.HistogramVec
	effectRuns        *prometheus.CounterVec
	effectDuration    *prometheus.HistogramVec
	flushes           prometheus.Counter
	flushSize         prometheus.Histogram
	cycles            *prometheus.CounterVec
	txTotal           *prometheus.CounterVec
	txDuration        *prometheus.HistogramVec
}

var _ reactive.Instrumentation = (*Metrics)(nil)

// NewPrometheus registers the engine metrics and returns the instrumentation
// that feeds them. Every call registers a fresh set of collectors, so a
// second call against the same registry panics; share the returned Metrics
// between runtimes instead.
//
// Example:
//
//	m := instrument.NewPrometheus(instrument.WithNamespace("myapp"))
//	rt := reactive.New(reactive.WithInstrumentation(m))
func NewPrometheus(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		writes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "signal_writes_total",
			Help:        "Total number of value-changing signal writes",
			ConstLabels: config.ConstLabels,
		}),

		recomputes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "recomputes_total",
			Help:        "Total number of computed re-evaluations",
			ConstLabels: config.ConstLabels,
		}, []string{"computed"}),

		recomputeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "recompute_duration_seconds",
			Help:        "Computed re-evaluation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"computed"}),

		effectRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_runs_total",
			Help:        "Total number of effect runs",
			ConstLabels: config.ConstLabels,
		}, []string{"effect"}),

		effectDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_duration_seconds",
			Help:        "Effect run duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"effect"}),

		flushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flushes_total",
			Help:        "Total number of batch flushes",
			ConstLabels: config.ConstLabels,
		}),

		flushSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_size",
			Help:        "Number of observers run per batch flush",
			ConstLabels: config.ConstLabels,
			Buckets:     flushSizeBuckets,
		}),

		cycles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cycles_total",
			Help:        "Total number of cyclic computed reads",
			ConstLabels: config.ConstLabels,
		}, []string{"computed"}),

		txTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "tx_total",
			Help:        "Total number of named transactions",
			ConstLabels: config.ConstLabels,
		}, []string{"tx"}),

		txDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "tx_duration_seconds",
			Help:        "Named transaction duration in seconds, flush included",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"tx"}),
	}
}

func label(name string) string {
	if name == "" {
		return anonymous
	}
	return name
}

func (m *Metrics) OnWrite(reactive.NodeID) {
	m.writes.Inc()
}

func (m *Metrics) OnRecompute(_ reactive.NodeID, name string, t reactive.Timing) {
	name = label(name)
	m.recomputes.WithLabelValues(name).Inc()
	m.recomputeDuration.WithLabelValues(name).Observe(t.Elapsed.Seconds())
}

func (m *Metrics) OnEffectRun(_ reactive.NodeID, name string, t reactive.Timing) {
	name = label(name)
	m.effectRuns.WithLabelValues(name).Inc()
	m.effectDuration.WithLabelValues(name).Observe(t.Elapsed.Seconds())
}

func (m *Metrics) OnFlush(size int, _ reactive.Timing) {
	m.flushes.Inc()
	m.flushSize.Observe(float64(size))
}

func (m *Metrics) OnCycle(_ reactive.NodeID, name string) {
	m.cycles.WithLabelValues(label(name)).Inc()
}

func (m *Metrics) OnTx(_ context.Context, name string, t reactive.Timing) {
	name = label(name)
	m.txTotal.WithLabelValues(name).Inc()
	m.txDuration.WithLabelValues(name).Observe(t.Elapsed.Seconds())
}
