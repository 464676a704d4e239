package reactive

import (
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEffectRunsImmediately(t *testing.T) {
	rt := New()
	runs := 0
	CreateEffect(rt, counter(&runs))
	if runs != 1 {
		t.Errorf("expected effect to run once at creation, got %d", runs)
	}
}

func TestEffectDeferred(t *testing.T) {
	rt := New()
	s := NewSignal(rt, 0)
	runs := 0
	e := CreateEffect(rt, counter(&runs, func() { _ = s.Get() }), Deferred())

	if runs != 0 {
		t.Fatalf("deferred effect ran at creation")
	}
	s.Set(1)
	if runs != 0 {
		t.Fatalf("deferred effect without dependencies re-ran")
	}

	e.Run()
	s.Set(2)
	if runs != 2 {
		t.Fatalf("runs = %d, want 2", runs)
	}
}

func TestEffectRunCountMatchesDistinctWrites(t *testing.T) {
	rt := New()
	a := NewSignal(rt, 0)
	b := NewSignal(rt, 0)
	runs := 0
	CreateEffect(rt, counter(&runs, func() { _ = a.Get() }, func() { _ = b.Get() }))

	a.Set(1)
	a.Set(1) // no change
	b.Set(1)
	a.Set(2)

	if runs != 4 {
		t.Errorf("runs = %d, want 1 initial + 3 changes", runs)
	}
}

func TestEffectStop(t *testing.T) {
	rt := New()
	s := NewSignal(rt, 0)
	runs := 0
	cleanups := 0
	e := CreateEffect(rt, func() Cleanup {
		runs++
		_ = s.Get()
		return func() { cleanups++ }
	})

	s.Set(1)
	if cleanups != 1 {
		t.Fatalf("cleanup before re-run = %d, want 1", cleanups)
	}

	e.Stop()
	e.Stop()
	if e.Active() {
		t.Fatal("effect still active after Stop")
	}
	if cleanups != 2 {
		t.Fatalf("cleanups after Stop = %d, want 2", cleanups)
	}

	s.Set(2)
	s.Set(3)
	e.Run()
	if runs != 2 {
		t.Errorf("runs = %d, want 2 (stopped effects never run)", runs)
	}
	if subs := rt.Subscribers(s.ID()); len(subs) != 0 {
		t.Errorf("stopped effect still subscribed: %v", subs)
	}
	if rt.Alive(e.ID()) {
		t.Error("stopped effect still in arena")
	}
}

func TestEffectDependenciesAreRebuiltEachRun(t *testing.T) {
	rt := New()
	show := NewSignal(rt, true)
	detail := NewSignal(rt, "d")
	runs := 0
	e := CreateEffect(rt, func() Cleanup {
		runs++
		if show.Get() {
			_ = detail.Get()
		}
		return nil
	})

	show.Set(false)
	if diff := cmp.Diff([]NodeID{show.ID()}, rt.Dependencies(e.ID())); diff != "" {
		t.Fatalf("dependencies (-want +got):\n%s", diff)
	}

	detail.Set("x")
	if runs != 2 {
		t.Errorf("runs = %d, want 2 (detail no longer tracked)", runs)
	}
}

func TestEffectReadsComputed(t *testing.T) {
	rt := New()
	a := NewSignal(rt, 1)
	doubled := NewComputed(rt, func() int { return a.Get() * 2 })

	var seen []int
	CreateEffect(rt, func() Cleanup {
		seen = append(seen, doubled.Get())
		return nil
	})

	a.Set(2)
	a.Set(3)

	if diff := cmp.Diff([]int{2, 4, 6}, seen); diff != "" {
		t.Errorf("values (-want +got):\n%s", diff)
	}
}

func TestEffectOwnsNestedEffects(t *testing.T) {
	rt := New()
	outer := NewSignal(rt, 0)
	inner := NewSignal(rt, 0)

	innerRuns := 0
	CreateEffect(rt, func() Cleanup {
		_ = outer.Get()
		CreateEffect(rt, counter(&innerRuns, func() { _ = inner.Get() }))
		return nil
	})

	outer.Set(1)
	outer.Set(2)
	if got := rt.Stats().Effects; got != 2 {
		t.Fatalf("live effects = %d, want 2 (outer + latest inner)", got)
	}

	innerRuns = 0
	inner.Set(1)
	if innerRuns != 1 {
		t.Errorf("inner runs = %d, want 1 (old inner effects were stopped)", innerRuns)
	}
}

func TestEffectStopsItself(t *testing.T) {
	rt := New()
	s := NewSignal(rt, 0)
	cleanups := 0
	runs := 0

	var e *Effect
	e = CreateEffect(rt, func() Cleanup {
		runs++
		if s.Get() >= 2 {
			e.Stop()
		}
		return func() { cleanups++ }
	})

	s.Set(1)
	s.Set(2)
	s.Set(3)

	if runs != 3 {
		t.Errorf("runs = %d, want 3", runs)
	}
	if cleanups != 3 {
		t.Errorf("cleanups = %d, want 3", cleanups)
	}
	if rt.IsTracking() {
		t.Error("tracking context leaked")
	}
}

func TestEffectOnCleanup(t *testing.T) {
	rt := New()
	s := NewSignal(rt, 0)
	var log []string

	e := CreateEffect(rt, func() Cleanup {
		v := s.Get()
		rt.OnCleanup(func() { log = append(log, "first", strconv.Itoa(v)) })
		rt.OnCleanup(func() { log = append(log, "second", strconv.Itoa(v)) })
		return nil
	})

	s.Set(1)
	e.Stop()

	want := []string{"second", "0", "first", "0", "second", "1", "first", "1"}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("cleanup order (-want +got):\n%s", diff)
	}

	if rt.OnCleanup(func() {}) {
		t.Error("OnCleanup outside an owner should report false")
	}
}

func TestEffectPanicPropagatesAndRestoresTracking(t *testing.T) {
	rt := New()
	s := NewSignal(rt, 0)
	CreateEffect(rt, func() Cleanup {
		if s.Get() == 1 {
			panic("effect failed")
		}
		return nil
	})

	func() {
		defer func() {
			if r := recover(); r != "effect failed" {
				t.Fatalf("recover() = %v", r)
			}
		}()
		s.Set(1)
	}()

	if rt.IsTracking() {
		t.Fatal("tracking context not restored")
	}
	if owner := rt.Tracking().Owner(); owner != 0 {
		t.Fatalf("owner not restored: %v", owner)
	}
}

func TestEffectInstrumentation(t *testing.T) {
	rec := newRecorder()
	rt := New(WithInstrumentation(rec))
	s := NewSignal(rt, 0)
	CreateEffect(rt, func() Cleanup { _ = s.Get(); return nil }, EffectName("render"))

	s.Set(1)
	s.Set(2)
	if rec.effectRuns["render"] != 3 {
		t.Errorf("instrumented runs = %d, want 3", rec.effectRuns["render"])
	}
	if rec.writes != 2 {
		t.Errorf("instrumented writes = %d, want 2", rec.writes)
	}
}

func TestOnMountAndOnUpdate(t *testing.T) {
	rt := New()
	s := NewSignal(rt, 0)

	mounted := 0
	OnMount(rt, func() {
		mounted++
		_ = s.Get()
	})

	updates := 0
	OnUpdate(rt, func() { _ = s.Get() }, func() { updates++ })

	s.Set(1)
	s.Set(2)

	if mounted != 1 {
		t.Errorf("OnMount ran %d times, want 1", mounted)
	}
	if updates != 2 {
		t.Errorf("OnUpdate callback ran %d times, want 2", updates)
	}
}

func TestEffectNilFunc(t *testing.T) {
	rt := New()
	expectPanic(t, ErrNilFunc, func() { CreateEffect(rt, nil) })
	expectPanic(t, ErrNilFunc, func() { OnMount(rt, nil) })
	expectPanic(t, ErrNilFunc, func() { OnUpdate(rt, nil, func() {}) })
}
