package reactive

import "time"

// Computed is a cached derivation that tracks its dependencies automatically.
// When a dependency changes the computed is marked dirty and tells its own
// subscribers, but it only re-evaluates on the next read. If several sources
// change before a read, it recomputes once.
//
// A computed reading itself while it is being computed does not recurse: the
// read returns the previous cached value and logs a warning.
type Computed[T any] struct {
	rt *Runtime
	id NodeID

	// fn computes the value.
	fn func() T

	// cached is the last computed value.
	cached T

	// dirty is set by a dependency change and cleared only by a complete
	// recomputation.
	dirty bool

	// computing guards against re-entrant evaluation.
	computing bool

	name string
}

// NewComputed creates a computed value. fn does not run until the first read.
func NewComputed[T any](rt *Runtime, fn func() T) *Computed[T] {
	if fn == nil {
		misuse(ErrNilFunc, "NewComputed")
	}
	c := &Computed[T]{
		rt:    rt,
		fn:    fn,
		dirty: true,
	}
	c.id = rt.alloc(kindComputed, c, c)
	return c
}

// WithName names the computed in logs and instrumentation.
func (c *Computed[T]) WithName(name string) *Computed[T] {
	c.rt.mustNode(c.id, "Computed.WithName")
	c.name = name
	return c
}

// ID returns the computed's arena handle.
func (c *Computed[T]) ID() NodeID {
	return c.id
}

// Get returns the value, recomputing it first if it is dirty, and subscribes
// the current observer.
func (c *Computed[T]) Get() T {
	c.rt.mustNode(c.id, "Computed.Get")
	c.refresh()
	c.rt.track(c.id)
	return c.cached
}

// Peek returns the value without subscribing. It still recomputes a dirty
// value.
func (c *Computed[T]) Peek() T {
	c.rt.mustNode(c.id, "Computed.Peek")
	c.refresh()
	return c.cached
}

// Dirty reports whether the next read will recompute.
func (c *Computed[T]) Dirty() bool {
	return c.dirty
}

// Subscribe registers a plain callback that receives the value now and after
// every change. The computed re-evaluates to deliver each notification.
func (c *Computed[T]) Subscribe(fn func(T)) Unsubscribe {
	c.rt.mustNode(c.id, "Computed.Subscribe")
	return subscribe(c.rt, c.id, c.Peek, fn)
}

// Dispose removes the computed, its dependency edges and everything it
// created while computing. Dispose is idempotent.
func (c *Computed[T]) Dispose() {
	c.dispose()
}

func (c *Computed[T]) dispose() {
	n := c.rt.nodes.get(c.id)
	if n == nil {
		return
	}
	for _, sub := range append([]NodeID(nil), n.subs...) {
		if sn := c.rt.nodes.get(sub); sn != nil && sn.kind == kindListener {
			sn.cell.dispose()
		}
	}
	c.rt.destroy(c.id)
}

// run is called when a dependency changed. Only the clean to dirty transition
// propagates, which also stops notification loops between computeds that
// read each other.
func (c *Computed[T]) run() {
	if c.dirty {
		return
	}
	c.dirty = true
	c.rt.notify(c.id)
}

func (c *Computed[T]) refresh() {
	if c.computing {
		c.rt.cycle(c.id, c.name)
		return
	}
	if !c.dirty {
		return
	}

	c.rt.reset(c.id)

	c.computing = true
	defer func() { c.computing = false }()

	start := time.Now()
	var value T
	c.rt.runAs(c.id, func() {
		value = c.fn()
	})

	c.cached = value
	c.dirty = false
	c.rt.instr.OnRecompute(c.id, c.name, Timing{Start: start, Elapsed: time.Since(start)})
}

func (c *Computed[T]) readable() {}

// cycle reports a cyclic read of a computed.
func (rt *Runtime) cycle(id NodeID, name string) {
	rt.logger.Warn("reactive: cycle detected, returning cached value",
		"node", id.String(),
		"name", name,
	)
	rt.instr.OnCycle(id, name)
}
