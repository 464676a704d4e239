package instrument

import (
	"context"

	"github.com/vango-dev/reactor/pkg/reactive"
)

// Tee returns an Instrumentation that forwards every event to each of hooks
// in order. Nil hooks are skipped.
func Tee(hooks ...reactive.Instrumentation) reactive.Instrumentation {
	var live tee
	for _, h := range hooks {
		if h != nil {
			live = append(live, h)
		}
	}
	switch len(live) {
	case 0:
		return reactive.NopInstrumentation{}
	case 1:
		return live[0]
	}
	return live
}

type tee []reactive.Instrumentation

func (t tee) OnWrite(id reactive.NodeID) {
	for _, h := range t {
		h.OnWrite(id)
	}
}

func (t tee) OnRecompute(id reactive.NodeID, name string, tm reactive.Timing) {
	for _, h := range t {
		h.OnRecompute(id, name, tm)
	}
}

func (t tee) OnEffectRun(id reactive.NodeID, name string, tm reactive.Timing) {
	for _, h := range t {
		h.OnEffectRun(id, name, tm)
	}
}

func (t tee) OnFlush(size int, tm reactive.Timing) {
	for _, h := range t {
		h.OnFlush(size, tm)
	}
}

func (t tee) OnCycle(id reactive.NodeID, name string) {
	for _, h := range t {
		h.OnCycle(id, name)
	}
}

func (t tee) OnTx(ctx context.Context, name string, tm reactive.Timing) {
	for _, h := range t {
		h.OnTx(ctx, name, tm)
	}
}
