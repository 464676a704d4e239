package reactive

// Cleanup is a function returned by effects to clean up resources.
// It is called before the effect re-runs and when the effect is stopped.
type Cleanup func()

// Unsubscribe removes a subscription created by Subscribe. Calling it more
// than once is harmless.
type Unsubscribe func()

// listener is a plain Subscribe callback. It lives in the arena like any
// other observer so notifications keep registration order and batching.
type listener struct {
	rt   *Runtime
	id   NodeID
	fire func()
}

func (l *listener) run() {
	// Callbacks never subscribe whatever observer happens to be running.
	l.rt.Untracked(l.fire)
}

func (l *listener) dispose() {
	l.rt.destroy(l.id)
}

func subscribe[T any](rt *Runtime, src NodeID, get func() T, fn func(T)) Unsubscribe {
	if fn == nil {
		misuse(ErrNilFunc, "Subscribe")
	}
	l := &listener{rt: rt}
	l.fire = func() { fn(get()) }
	l.id = rt.alloc(kindListener, l, l)
	rt.nodes.addEdge(src, l.id)

	l.run()

	return func() {
		l.dispose()
	}
}
