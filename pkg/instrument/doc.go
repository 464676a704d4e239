// Package instrument provides reactive.Instrumentation implementations that
// export engine events to production observability stacks.
//
// This package includes:
//   - Prometheus counters and histograms
//   - OpenTelemetry spans
//   - structured slog event logging
//   - Tee for combining several of them
//
// # Prometheus Metrics
//
//	reg := prometheus.NewRegistry()
//	rt := reactive.New(reactive.WithInstrumentation(
//	    instrument.NewPrometheus(instrument.WithRegistry(reg)),
//	))
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// # OpenTelemetry Tracing
//
// The tracer defaults to the global OpenTelemetry tracer provider:
//
//	rt := reactive.New(reactive.WithInstrumentation(
//	    instrument.Tee(
//	        instrument.NewPrometheus(),
//	        instrument.NewTracing(instrument.WithTracerName("my-app")),
//	    ),
//	))
//
// Hooks run on the runtime's goroutine, but one Metrics value may be shared by
// runtimes on different goroutines: the Prometheus collectors are safe for
// concurrent use. Tracing and Log hold no mutable state.
package instrument
