package instrument

import (
	"context"
	"time"

	"github.com/vango-dev/reactor/pkg/reactive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for the reactive engine.
const defaultTracerName = "github.com/vango-dev/reactor"

// TracingConfig configures the OpenTelemetry instrumentation.
type TracingConfig struct {
	// TracerName is the name of the tracer resolved from the global
	// provider (default: "github.com/vango-dev/reactor").
	TracerName string

	// Tracer overrides the global provider lookup.
	Tracer trace.Tracer

	// Effects creates a span for every effect run.
	// Enabled by default.
	Effects bool

	// Flushes creates a span for every batch flush.
	// Enabled by default.
	Flushes bool

	// Recomputes creates a span for every computed re-evaluation. These are
	// the most frequent events of the engine.
	// Disabled by default.
	Recomputes bool

	// Attributes are added to every span.
	Attributes []attribute.KeyValue
}

// TracingOption configures the OpenTelemetry instrumentation.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithTracer uses tracer instead of the global provider.
func WithTracer(tracer trace.Tracer) TracingOption {
	return func(c *TracingConfig) {
		c.Tracer = tracer
	}
}

// WithEffectSpans enables/disables effect run spans.
func WithEffectSpans(enabled bool) TracingOption {
	return func(c *TracingConfig) {
		c.Effects = enabled
	}
}

// WithFlushSpans enables/disables batch flush spans.
func WithFlushSpans(enabled bool) TracingOption {
	return func(c *TracingConfig) {
		c.Flushes = enabled
	}
}

// WithRecomputeSpans enables/disables computed re-evaluation spans.
func WithRecomputeSpans(enabled bool) TracingOption {
	return func(c *TracingConfig) {
		c.Recomputes = enabled
	}
}

// WithAttributes adds attributes to every span.
func WithAttributes(attrs ...attribute.KeyValue) TracingOption {
	return func(c *TracingConfig) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

func defaultTracingConfig() TracingConfig {
	return TracingConfig{
		TracerName: defaultTracerName,
		Effects:    true,
		Flushes:    true,
	}
}

// Tracing records engine events as OpenTelemetry spans. Hooks fire after the
// event finished, so spans are created retroactively from the reported
// Timing.
//
// Named transactions are children of the context passed to
// Runtime.TxNamed. Effect, recompute and flush spans are roots: the engine
// carries no context through notifications.
type Tracing struct {
	tracer trace.Tracer
	config TracingConfig
}

var _ reactive.Instrumentation = (*Tracing)(nil)

// NewTracing creates the tracing instrumentation.
//
// The tracer uses the global OpenTelemetry tracer provider unless WithTracer
// is given. Configure the provider in main() before creating runtimes:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func NewTracing(opts ...TracingOption) *Tracing {
	config := defaultTracingConfig()
	for _, opt := range opts {
		opt(&config)
	}

	tracer := config.Tracer
	if tracer == nil {
		tracer = otel.Tracer(config.TracerName)
	}
	return &Tracing{tracer: tracer, config: config}
}

// record creates and ends a span covering t.
func (tr *Tracing) record(ctx context.Context, name string, t reactive.Timing, status codes.Code, desc string, attrs ...attribute.KeyValue) {
	attrs = append(attrs, tr.config.Attributes...)
	_, span := tr.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(t.Start),
	)
	span.SetStatus(status, desc)
	span.End(trace.WithTimestamp(t.Start.Add(t.Elapsed)))
}

// OnWrite is not traced: writes are too frequent and carry no duration.
func (tr *Tracing) OnWrite(reactive.NodeID) {}

func (tr *Tracing) OnRecompute(id reactive.NodeID, name string, t reactive.Timing) {
	if !tr.config.Recomputes {
		return
	}
	tr.record(context.Background(), "reactive.recompute", t, codes.Ok, "",
		attribute.String("reactive.node", id.String()),
		attribute.String("reactive.computed", label(name)),
	)
}

func (tr *Tracing) OnEffectRun(id reactive.NodeID, name string, t reactive.Timing) {
	if !tr.config.Effects {
		return
	}
	tr.record(context.Background(), "reactive.effect", t, codes.Ok, "",
		attribute.String("reactive.node", id.String()),
		attribute.String("reactive.effect", label(name)),
	)
}

func (tr *Tracing) OnFlush(size int, t reactive.Timing) {
	if !tr.config.Flushes {
		return
	}
	tr.record(context.Background(), "reactive.flush", t, codes.Ok, "",
		attribute.Int("reactive.flush_size", size),
	)
}

// OnCycle records a zero-length span with error status.
func (tr *Tracing) OnCycle(id reactive.NodeID, name string) {
	t := reactive.Timing{Start: time.Now()}
	tr.record(context.Background(), "reactive.cycle", t, codes.Error, "cycle detected",
		attribute.String("reactive.node", id.String()),
		attribute.String("reactive.computed", label(name)),
	)
}

func (tr *Tracing) OnTx(ctx context.Context, name string, t reactive.Timing) {
	tr.record(ctx, "reactive.tx "+label(name), t, codes.Ok, "",
		attribute.String("reactive.tx", label(name)),
	)
}
