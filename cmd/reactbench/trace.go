package main

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/instrument"
)

// newTracerProvider returns a tracer provider that writes every finished
// span to w as one JSON object per line.
func newTracerProvider(w io.Writer) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}
	return sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter)), nil
}

// tracing installs a span exporter on stderr as the global tracer provider
// and returns the engine hooks that feed it. shutdown flushes the exporter.
func (a *app) tracing() (tr *instrument.Tracing, shutdown func(), err error) {
	tp, err := newTracerProvider(a.stderr)
	if err != nil {
		return nil, nil, errors.New("R103").Wrap(err)
	}
	otel.SetTracerProvider(tp)

	shutdown = func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			a.logger.Warn("tracer shutdown failed", "error", err)
		}
	}
	tr = instrument.NewTracing(
		instrument.WithTracerName(a.cfg.Tracing.TracerName),
		instrument.WithRecomputeSpans(a.cfg.Tracing.Recomputes),
	)
	return tr, shutdown, nil
}
