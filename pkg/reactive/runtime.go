package reactive

import (
	"context"
	"log/slog"
	"time"
)

// Timing describes when an instrumented operation started and how long it
// took.
type Timing struct {
	Start   time.Time
	Elapsed time.Duration
}

// Instrumentation receives engine events. Implementations must be cheap:
// hooks run synchronously on the runtime's goroutine.
type Instrumentation interface {
	// OnWrite is called after a value-changing write to a signal.
	OnWrite(id NodeID)
	// OnRecompute is called after a computed re-evaluated its function.
	// name is the one given with WithName.
	OnRecompute(id NodeID, name string, t Timing)
	// OnEffectRun is called after an effect body ran.
	OnEffectRun(id NodeID, name string, t Timing)
	// OnFlush is called after the outermost batch drained its pending set.
	OnFlush(size int, t Timing)
	// OnCycle is called when a computed read itself while computing.
	OnCycle(id NodeID, name string)
	// OnTx is called when a named transaction completes.
	OnTx(ctx context.Context, name string, t Timing)
}

// NopInstrumentation ignores every event. Embed it to implement a subset of
// Instrumentation.
type NopInstrumentation struct{}

func (NopInstrumentation) OnWrite(NodeID) {}
func (NopInstrumentation) OnRecompute(NodeID, string, Timing) {}
func (NopInstrumentation) OnEffectRun(NodeID, string, Timing) {}
func (NopInstrumentation) OnFlush(int, Timing) {}
func (NopInstrumentation) OnCycle(NodeID, string) {}
func (NopInstrumentation) OnTx(context.Context, string, Timing) {}

// Options configures a Runtime.
type Options struct {
	// Logger receives cycle warnings and debug output.
	// Default: slog.Default()
	Logger *slog.Logger

	// Instrumentation receives engine events.
	// Default: NopInstrumentation
	Instrumentation Instrumentation

	// Debug enables debug logging of transactions and effect lifecycle.
	Debug bool
}

// Option configures a Runtime.
type Option func(*Options)

// WithLogger sets the logger used for warnings and debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithInstrumentation sets the instrumentation hooks.
func WithInstrumentation(i Instrumentation) Option {
	return func(o *Options) {
		o.Instrumentation = i
	}
}

// WithDebug enables debug logging.
func WithDebug(debug bool) Option {
	return func(o *Options) {
		o.Debug = debug
	}
}

func defaultOptions() Options {
	return Options{
		Logger:          slog.Default(),
		Instrumentation: NopInstrumentation{},
	}
}

// Runtime owns a reactive graph: the node arena, the tracking context and the
// batch scheduler. A Runtime must only be used from one goroutine.
type Runtime struct {
	nodes    arena
	tracking TrackingContext

	logger *slog.Logger
	instr  Instrumentation
	debug  bool
}

// New creates an empty Runtime.
func New(opts ...Option) *Runtime {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Instrumentation == nil {
		o.Instrumentation = NopInstrumentation{}
	}

	return &Runtime{
		logger: o.Logger,
		instr:  o.Instrumentation,
		debug:  o.Debug,
	}
}

// Logger returns the runtime's logger.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

// alloc creates a node owned by the current owner, if that owner adopts
// nodes of this kind.
func (rt *Runtime) alloc(kind nodeKind, cell disposable, obs observer) NodeID {
	id := rt.nodes.alloc(kind, cell, obs)
	if owner := rt.nodes.get(rt.tracking.owner); owner != nil && adopts(owner.kind, kind) {
		owner.owned = append(owner.owned, id)
		rt.nodes.get(id).owner = rt.tracking.owner
	}
	return id
}

// adopts reports whether an owner of kind owner takes ownership of a new
// node of kind child. Signals and Subscribe listeners live until disposed or
// unsubscribed by whoever holds them; only an explicit Scope adopts them.
func adopts(owner, child nodeKind) bool {
	switch child {
	case kindSignal, kindListener:
		return owner == kindScope
	default:
		return true
	}
}

// mustNode returns the live node for id or panics with ErrDisposed.
func (rt *Runtime) mustNode(id NodeID, op string) *node {
	n := rt.nodes.get(id)
	if n == nil {
		misuse(ErrDisposed, "%s on node %v", op, id)
	}
	return n
}

// reset prepares an owner for a fresh run: owned nodes are disposed newest
// first, then cleanups fire newest first, then every dependency edge is
// dropped.
func (rt *Runtime) reset(id NodeID) {
	n := rt.nodes.get(id)
	if n == nil {
		return
	}

	// The owned list is detached before disposal so children removing
	// themselves from it don't mutate the slice being walked.
	owned := n.owned
	n.owned = nil
	for i := len(owned) - 1; i >= 0; i-- {
		if child := rt.nodes.get(owned[i]); child != nil {
			child.owner = 0
			child.cell.dispose()
		}
	}

	if n = rt.nodes.get(id); n == nil {
		return
	}
	cleanups := n.cleanups
	n.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}

	rt.nodes.clearDeps(id)
}

// destroy tears a node down completely and frees its slot.
func (rt *Runtime) destroy(id NodeID) {
	n := rt.nodes.get(id)
	if n == nil {
		return
	}

	rt.reset(id)
	rt.nodes.clearSubs(id)

	if n = rt.nodes.get(id); n == nil {
		return
	}
	if owner := rt.nodes.get(n.owner); owner != nil {
		owner.owned = removeID(owner.owned, id)
	}
	if rt.tracking.observer == id {
		rt.tracking.observer = 0
	}
	if rt.tracking.owner == id {
		rt.tracking.owner = 0
	}
	rt.nodes.release(id)
}

// OnCleanup registers fn to run when the current owner re-runs or is
// disposed. It reports false, and does nothing, when no owner is active.
func (rt *Runtime) OnCleanup(fn func()) bool {
	if fn == nil {
		misuse(ErrNilFunc, "OnCleanup")
	}
	n := rt.nodes.get(rt.tracking.owner)
	if n == nil {
		return false
	}
	n.cleanups = append(n.cleanups, fn)
	return true
}

// Stats is a snapshot of the arena.
type Stats struct {
	Nodes     int
	Signals   int
	Computeds int
	Effects   int
	Listeners int
	Scopes    int
	// Edges counts dependency edges (each edge once).
	Edges    int
	Pending  int
	Batching bool
}

// Stats returns a snapshot of the runtime's graph.
func (rt *Runtime) Stats() Stats {
	s := Stats{
		Nodes:    rt.nodes.live,
		Pending:  len(rt.tracking.pending),
		Batching: rt.tracking.batchDepth > 0,
	}
	rt.nodes.each(func(_ NodeID, n *node) {
		switch n.kind {
		case kindSignal:
			s.Signals++
		case kindComputed:
			s.Computeds++
		case kindEffect:
			s.Effects++
		case kindListener:
			s.Listeners++
		case kindScope:
			s.Scopes++
		}
		s.Edges += len(n.deps)
	})
	return s
}

// Subscribers returns the observers currently subscribed to id, in
// notification order. It returns nil for unknown or disposed nodes.
func (rt *Runtime) Subscribers(id NodeID) []NodeID {
	n := rt.nodes.get(id)
	if n == nil || len(n.subs) == 0 {
		return nil
	}
	return append([]NodeID(nil), n.subs...)
}

// Dependencies returns the sources id read during its last run.
func (rt *Runtime) Dependencies(id NodeID) []NodeID {
	n := rt.nodes.get(id)
	if n == nil || len(n.deps) == 0 {
		return nil
	}
	return append([]NodeID(nil), n.deps...)
}

// Alive reports whether id refers to a live node.
func (rt *Runtime) Alive(id NodeID) bool {
	return rt.nodes.get(id) != nil
}
