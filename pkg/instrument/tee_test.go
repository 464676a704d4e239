package instrument

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vango-dev/reactor/pkg/reactive"
)

type eventLog struct {
	reactive.NopInstrumentation
	events []string
}

func (e *eventLog) OnWrite(reactive.NodeID) { e.events = append(e.events, "write") }
func (e *eventLog) OnEffectRun(_ reactive.NodeID, name string, _ reactive.Timing) {
	e.events = append(e.events, "effect:"+name)
}
func (e *eventLog) OnTx(_ context.Context, name string, _ reactive.Timing) {
	e.events = append(e.events, "tx:"+name)
}

func TestTeeForwardsToEveryHook(t *testing.T) {
	first, second := &eventLog{}, &eventLog{}
	rt := reactive.New(reactive.WithInstrumentation(Tee(first, nil, second)))

	s := reactive.NewSignal(rt, 0)
	reactive.CreateEffect(rt, func() reactive.Cleanup {
		_ = s.Get()
		return nil
	}, reactive.EffectName("e"))
	rt.TxNamed(context.Background(), "t", func() { s.Set(1) })

	want := []string{"effect:e", "write", "effect:e", "tx:t"}
	if diff := cmp.Diff(want, first.events); diff != "" {
		t.Errorf("first (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, second.events); diff != "" {
		t.Errorf("second (-want +got):\n%s", diff)
	}
}

func TestTeeCollapses(t *testing.T) {
	if _, ok := Tee().(reactive.NopInstrumentation); !ok {
		t.Errorf("Tee() = %T, want NopInstrumentation", Tee())
	}
	one := &eventLog{}
	if got := Tee(nil, one); got != one {
		t.Errorf("Tee(nil, x) = %v, want x itself", got)
	}
}

func TestTeeWithPrometheusAndTracing(t *testing.T) {
	m := NewPrometheus(WithRegistry(prometheus.NewRegistry()))
	tr, _, sr := newRecordedTracing(t)
	rt := reactive.New(reactive.WithInstrumentation(Tee(m, tr)))

	s := reactive.NewSignal(rt, 0)
	reactive.CreateEffect(rt, func() reactive.Cleanup {
		_ = s.Get()
		return nil
	})
	s.Set(1)

	if got := metricCounterValue(t, m.writes); got != 1 {
		t.Errorf("writes = %v, want 1", got)
	}
	if n := len(named(sr, "reactive.effect")); n != 2 {
		t.Errorf("effect spans = %d, want 2", n)
	}
}

func TestLogInstrumentation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	rt := reactive.New(reactive.WithInstrumentation(NewLog(logger)))

	s := reactive.NewSignal(rt, 0)
	c := reactive.NewComputed(rt, func() int { return s.Get() }).WithName("mirror")
	reactive.CreateEffect(rt, func() reactive.Cleanup {
		_ = c.Get()
		return nil
	}, reactive.EffectName("view"))
	rt.Batch(func() { s.Set(1) })

	out := buf.String()
	for _, want := range []string{
		`msg="signal write"`,
		"msg=recompute",
		"computed=mirror",
		`msg="effect run"`,
		"effect=view",
		"msg=flush",
		"size=1",
		"component=reactive",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
