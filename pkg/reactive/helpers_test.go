package reactive

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// logBuffer captures log output from a Runtime.
type logBuffer struct {
	buf bytes.Buffer
}

func (l *logBuffer) logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&l.buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (l *logBuffer) count(substr string) int {
	return strings.Count(l.buf.String(), substr)
}

// newTestRuntime returns a runtime logging into a buffer.
func newTestRuntime(opts ...Option) (*Runtime, *logBuffer) {
	logs := &logBuffer{}
	all := append([]Option{WithLogger(logs.logger())}, opts...)
	return New(all...), logs
}

// recorder counts instrumentation events.
type recorder struct {
	NopInstrumentation

	writes     int
	recomputes int
	recomputed []string
	effectRuns map[string]int
	flushes    []int
	cycles     int
	txs        []string
}

func newRecorder() *recorder {
	return &recorder{effectRuns: make(map[string]int)}
}

func (r *recorder) OnWrite(NodeID) { r.writes++ }
func (r *recorder) OnRecompute(_ NodeID, name string, _ Timing) {
	r.recomputes++
	r.recomputed = append(r.recomputed, name)
}
func (r *recorder) OnEffectRun(_ NodeID, name string, _ Timing) {
	r.effectRuns[name]++
}
func (r *recorder) OnFlush(size int, _ Timing) { r.flushes = append(r.flushes, size) }
func (r *recorder) OnCycle(NodeID, string)     { r.cycles++ }
func (r *recorder) OnTx(_ context.Context, name string, _ Timing) {
	r.txs = append(r.txs, name)
}

// expectPanic fails the test unless fn panics with an error matching target.
func expectPanic(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		err, ok := r.(error)
		if !ok {
			t.Fatalf("expected panic with %v, got %v", target, r)
		}
		if !errors.Is(err, target) {
			t.Fatalf("panic error = %v, want %v", err, target)
		}
	}()
	fn()
}

// counter returns an effect body that counts its runs while reading deps.
func counter(runs *int, deps ...func()) func() Cleanup {
	return func() Cleanup {
		*runs++
		for _, d := range deps {
			d()
		}
		return nil
	}
}
