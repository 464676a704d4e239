package reactive

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSignalBasic(t *testing.T) {
	rt := New()
	s := NewSignal(rt, 42)

	if s.Get() != 42 {
		t.Errorf("expected 42, got %d", s.Get())
	}

	s.Set(100)
	if s.Get() != 100 {
		t.Errorf("expected 100, got %d", s.Get())
	}
}

func TestSignalPassiveReadsDoNotSubscribe(t *testing.T) {
	rt := New()
	s := NewSignal(rt, 1)

	for i := 0; i < 100; i++ {
		_ = s.Get()
		_ = s.Peek()
	}

	if subs := rt.Subscribers(s.ID()); len(subs) != 0 {
		t.Fatalf("passive reads created %d subscriptions", len(subs))
	}
	if got := rt.Stats().Edges; got != 0 {
		t.Fatalf("Stats().Edges = %d, want 0", got)
	}
}

func TestSignalSameValueWriteIsNoop(t *testing.T) {
	rt, _ := newTestRuntime()
	rec := newRecorder()
	rt.instr = rec

	s := NewSignal(rt, "a")
	runs := 0
	CreateEffect(rt, counter(&runs, func() { _ = s.Get() }))

	s.Set("a")
	if runs != 1 {
		t.Errorf("same-value write re-ran effect: runs = %d", runs)
	}
	if rec.writes != 0 {
		t.Errorf("same-value write reported %d writes", rec.writes)
	}

	s.Set("b")
	if runs != 2 {
		t.Errorf("expected 2 runs after change, got %d", runs)
	}
}

func TestSignalUpdate(t *testing.T) {
	rt := New()
	s := NewSignal(rt, 10)
	s.Update(func(n int) int { return n + 5 })
	if s.Peek() != 15 {
		t.Errorf("expected 15, got %d", s.Peek())
	}
}

func TestSignalFuncEquality(t *testing.T) {
	rt := New()
	s := NewSignalFunc(rt, []int{1, 2}, slices.Equal[[]int])

	runs := 0
	CreateEffect(rt, counter(&runs, func() { _ = s.Get() }))

	s.Set([]int{1, 2})
	if runs != 1 {
		t.Errorf("equal slice write re-ran effect: runs = %d", runs)
	}
	s.Set([]int{1, 2, 3})
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}

	always := NewSignalFunc(rt, 0, func(int, int) bool { return false })
	alwaysRuns := 0
	CreateEffect(rt, counter(&alwaysRuns, func() { _ = always.Get() }))
	always.Set(0)
	always.Set(0)
	if alwaysRuns != 3 {
		t.Errorf("never-equal signal: runs = %d, want 3", alwaysRuns)
	}
}

func TestSignalNotifiesInRegistrationOrder(t *testing.T) {
	rt := New()
	s := NewSignal(rt, 0)

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		CreateEffect(rt, func() Cleanup {
			if s.Get() > 0 {
				order = append(order, name)
			}
			return nil
		})
	}

	s.Set(1)
	if diff := cmp.Diff([]string{"first", "second", "third"}, order); diff != "" {
		t.Errorf("notification order (-want +got):\n%s", diff)
	}
}

func TestSignalSubscribe(t *testing.T) {
	rt := New()
	s := NewSignal(rt, 1)

	var seen []int
	unsubscribe := s.Subscribe(func(v int) {
		seen = append(seen, v)
	})

	s.Set(2)
	s.Set(2)
	s.Set(3)
	unsubscribe()
	s.Set(4)
	unsubscribe()

	if diff := cmp.Diff([]int{1, 2, 3}, seen); diff != "" {
		t.Errorf("subscription values (-want +got):\n%s", diff)
	}
	if got := rt.Stats().Listeners; got != 0 {
		t.Errorf("listeners after unsubscribe = %d, want 0", got)
	}
}

func TestSignalSubscribeIsNotTracked(t *testing.T) {
	rt := New()
	s := NewSignal(rt, 1)
	other := NewSignal(rt, "x")

	// A callback reading another signal must not subscribe anything to it.
	s.Subscribe(func(int) { _ = other.Get() })
	s.Set(2)

	if subs := rt.Subscribers(other.ID()); len(subs) != 0 {
		t.Fatalf("callback read subscribed %v", subs)
	}
}

func TestSignalSubscribeInsideBatchIsDeferred(t *testing.T) {
	rt := New()
	s := NewSignal(rt, 0)

	var seen []int
	s.Subscribe(func(v int) { seen = append(seen, v) })

	rt.Batch(func() {
		s.Set(1)
		s.Set(2)
		if len(seen) != 1 {
			t.Errorf("callback ran inside batch: %v", seen)
		}
	})

	if diff := cmp.Diff([]int{0, 2}, seen); diff != "" {
		t.Errorf("batched subscription values (-want +got):\n%s", diff)
	}
}

func TestSignalCallbackMayUnsubscribeDuringNotify(t *testing.T) {
	rt := New()
	s := NewSignal(rt, 0)

	var calls []string
	var unsubA Unsubscribe
	unsubA = s.Subscribe(func(v int) {
		if v > 0 {
			calls = append(calls, "a")
			unsubA()
		}
	})
	s.Subscribe(func(v int) {
		if v > 0 {
			calls = append(calls, "b")
		}
	})

	s.Set(1)
	s.Set(2)

	if diff := cmp.Diff([]string{"a", "b", "b"}, calls); diff != "" {
		t.Errorf("calls (-want +got):\n%s", diff)
	}
}

func TestSignalDispose(t *testing.T) {
	rt := New()
	s := NewSignal(rt, 1)
	runs := 0
	e := CreateEffect(rt, counter(&runs, func() { _ = s.Get() }))
	s.Subscribe(func(int) {})

	s.Dispose()
	s.Dispose()

	if deps := rt.Dependencies(e.ID()); len(deps) != 0 {
		t.Errorf("effect still depends on disposed signal: %v", deps)
	}
	if got := rt.Stats().Listeners; got != 0 {
		t.Errorf("listeners after dispose = %d, want 0", got)
	}

	expectPanic(t, ErrDisposed, func() { s.Get() })
	expectPanic(t, ErrDisposed, func() { s.Set(2) })
}

func TestSignalNilFuncs(t *testing.T) {
	rt := New()
	s := NewSignal(rt, 0)

	expectPanic(t, ErrNilFunc, func() { s.Update(nil) })
	expectPanic(t, ErrNilFunc, func() { s.Subscribe(nil) })
	expectPanic(t, ErrNilFunc, func() { NewSignalFunc[int](rt, 0, nil) })
}

func TestSignalCreatedByEffectOutlivesRerun(t *testing.T) {
	rt := New()
	trigger := NewSignal(rt, 0)

	var held *Signal[int]
	CreateEffect(rt, func() Cleanup {
		_ = trigger.Get()
		if held == nil {
			held = NewSignal(rt, 42)
		}
		return nil
	})

	trigger.Set(1)
	trigger.Set(2)
	if !rt.Alive(held.ID()) {
		t.Fatal("signal disposed by its creator's re-run")
	}
	if got := held.Get(); got != 42 {
		t.Errorf("Get() = %d, want 42", got)
	}
	held.Set(43)
	if got := held.Peek(); got != 43 {
		t.Errorf("Peek() = %d, want 43", got)
	}
}

func TestSubscribeInsideEffectOutlivesRerun(t *testing.T) {
	rt := New()
	trigger := NewSignal(rt, 0)
	src := NewSignal(rt, 0)

	var seen []int
	var unsubscribe Unsubscribe
	CreateEffect(rt, func() Cleanup {
		_ = trigger.Get()
		if unsubscribe == nil {
			unsubscribe = src.Subscribe(func(v int) { seen = append(seen, v) })
		}
		return nil
	})

	trigger.Set(1)
	src.Set(7)
	unsubscribe()
	src.Set(8)

	if diff := cmp.Diff([]int{0, 7}, seen); diff != "" {
		t.Errorf("subscription values (-want +got):\n%s", diff)
	}
	if got := rt.Stats().Listeners; got != 0 {
		t.Errorf("listeners after unsubscribe = %d, want 0", got)
	}
}

func TestScopeAdoptsSignalsAndListeners(t *testing.T) {
	rt := New()
	src := NewSignal(rt, 0)
	sc := NewScope(rt, nil)

	var local *Signal[string]
	calls := 0
	sc.Run(func() {
		local = NewSignal(rt, "x")
		src.Subscribe(func(int) { calls++ })
	})

	if got := len(sc.Owned()); got != 2 {
		t.Fatalf("owned = %d, want 2", got)
	}
	sc.Dispose()

	if rt.Alive(local.ID()) {
		t.Error("signal survived its scope")
	}
	src.Set(1)
	if calls != 1 {
		t.Errorf("listener calls = %d, want 1", calls)
	}
	if st := rt.Stats(); st.Signals != 1 || st.Listeners != 0 {
		t.Errorf("stats = %+v, want only src left", st)
	}
}
