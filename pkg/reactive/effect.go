package reactive

import "time"

// Effect is a reactive side effect that re-runs when its dependencies change.
//
// Effects run immediately when created unless Deferred is given, and re-run
// whenever any signal or computed they read during their last run changes.
// The body may return a Cleanup that is called before the next run and when
// the effect is stopped.
//
// Stop is the only way to end an effect. A consumer that creates effects for
// a rendering scope must stop them (or dispose the owning Scope) when the
// scope is destroyed, otherwise the subscriptions stay alive.
type Effect struct {
	rt *Runtime
	id NodeID

	// fn is the effect body.
	fn func() Cleanup

	// active is cleared by Stop; inactive effects ignore notifications.
	active bool

	// immediate runs the body at creation time.
	immediate bool

	// name identifies the effect in logs and instrumentation.
	name string
}

// EffectOption configures an Effect.
type EffectOption interface {
	applyEffect(e *Effect)
}

type effectOptionFunc func(*Effect)

func (f effectOptionFunc) applyEffect(e *Effect) { f(e) }

// Deferred creates the effect without running it. It has no dependencies
// until Run is called for the first time.
func Deferred() EffectOption {
	return effectOptionFunc(func(e *Effect) {
		e.immediate = false
	})
}

// EffectName sets the name reported to logs and instrumentation.
func EffectName(name string) EffectOption {
	return effectOptionFunc(func(e *Effect) {
		e.name = name
	})
}

// CreateEffect creates an effect and, unless Deferred is given, runs it
// once. An effect created while another effect, computed or Scope is running
// is owned by it and stopped together with it.
//
// Example:
//
//	e := reactive.CreateEffect(rt, func() reactive.Cleanup {
//	    fmt.Println("Count is:", count.Get())
//	    return func() { fmt.Println("Cleanup") }
//	})
//	defer e.Stop()
func CreateEffect(rt *Runtime, fn func() Cleanup, opts ...EffectOption) *Effect {
	if fn == nil {
		misuse(ErrNilFunc, "CreateEffect")
	}

	e := &Effect{
		rt:        rt,
		fn:        fn,
		active:    true,
		immediate: true,
	}
	for _, opt := range opts {
		opt.applyEffect(e)
	}
	e.id = rt.alloc(kindEffect, e, e)

	if e.immediate {
		e.Run()
	}
	return e
}

// ID returns the effect's arena handle.
func (e *Effect) ID() NodeID {
	return e.id
}

// Name returns the name given with EffectName.
func (e *Effect) Name() string {
	return e.name
}

// Active reports whether the effect still reacts to changes.
func (e *Effect) Active() bool {
	return e.active
}

// Run executes the effect body now. Nodes created by the previous run are
// disposed, the previous cleanup runs, every dependency edge from the
// previous run is dropped, and the body re-registers whatever it reads. Run
// on a stopped effect does nothing.
func (e *Effect) Run() {
	if !e.active {
		return
	}

	// Cleanups, owned children and old edges go away before the body runs.
	e.rt.reset(e.id)

	start := time.Now()
	e.rt.runAs(e.id, func() {
		cleanup := e.fn()
		if cleanup == nil {
			return
		}
		if n := e.rt.nodes.get(e.id); n != nil && e.active {
			n.cleanups = append(n.cleanups, cleanup)
		} else {
			// The body stopped its own effect.
			cleanup()
		}
	})
	e.rt.instr.OnEffectRun(e.id, e.name, Timing{Start: start, Elapsed: time.Since(start)})
}

func (e *Effect) run() {
	e.Run()
}

// Stop permanently removes every edge of the effect, stops effects and
// computeds it created, runs its cleanup and disables further runs. Stop is
// idempotent.
func (e *Effect) Stop() {
	if !e.active {
		return
	}
	e.active = false
	e.rt.destroy(e.id)
	if e.rt.debug {
		e.rt.logger.Debug("reactive: effect stopped", "node", e.id.String(), "name", e.name)
	}
}

func (e *Effect) dispose() {
	e.Stop()
}

// OnMount creates an effect that runs fn once and never tracks anything.
func OnMount(rt *Runtime, fn func()) *Effect {
	if fn == nil {
		misuse(ErrNilFunc, "OnMount")
	}
	return CreateEffect(rt, func() Cleanup {
		rt.Untracked(fn)
		return nil
	})
}

// OnUpdate creates an effect that skips the callback on the first run.
// deps is called on every run to establish dependencies; callback only runs
// when those dependencies change.
//
// Example:
//
//	reactive.OnUpdate(rt,
//	    func() { _ = count.Get() },         // deps: read signals to track
//	    func() { fmt.Println("Updated!") }, // callback: only on changes
//	)
func OnUpdate(rt *Runtime, deps func(), callback func()) *Effect {
	if deps == nil || callback == nil {
		misuse(ErrNilFunc, "OnUpdate")
	}
	first := true
	return CreateEffect(rt, func() Cleanup {
		deps()
		if first {
			first = false
			return nil
		}
		rt.Untracked(callback)
		return nil
	})
}
