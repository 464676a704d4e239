package reactive

// Scope owns reactive nodes created inside Run. When a Scope is disposed,
// all signals, computeds, effects, subscriptions and child scopes it owns are
// disposed too, newest first, and then its cleanups run, newest first.
//
// A rendering layer typically creates one Scope per component and disposes it
// on unmount.
type Scope struct {
	rt *Runtime
	id NodeID
}

// NewScope creates a Scope. With a nil parent the Scope is owned by whatever
// owner is active (an effect, computed or Scope running right now), or is a
// root Scope when nothing is running.
func NewScope(rt *Runtime, parent *Scope) *Scope {
	s := &Scope{rt: rt}
	if parent == nil {
		s.id = rt.alloc(kindScope, s, nil)
		return s
	}

	if parent.rt != rt {
		misuse(ErrForeignRuntime, "NewScope parent")
	}
	rt.mustNode(parent.id, "NewScope parent")
	rt.withOwner(parent.id, func() {
		s.id = rt.alloc(kindScope, s, nil)
	})
	return s
}

// ID returns the scope's arena handle.
func (s *Scope) ID() NodeID {
	return s.id
}

// Disposed reports whether the Scope has been disposed.
func (s *Scope) Disposed() bool {
	return !s.rt.Alive(s.id)
}

// Run runs fn with this Scope as the owner of any node fn creates. Tracking
// is left untouched: reads inside fn still subscribe the current observer.
func (s *Scope) Run(fn func()) {
	if fn == nil {
		misuse(ErrNilFunc, "Scope.Run")
	}
	s.rt.mustNode(s.id, "Scope.Run")
	s.rt.withOwner(s.id, fn)
}

// OnCleanup registers fn to run when the Scope is disposed. On a disposed
// Scope fn runs immediately.
func (s *Scope) OnCleanup(fn func()) {
	if fn == nil {
		misuse(ErrNilFunc, "Scope.OnCleanup")
	}
	n := s.rt.nodes.get(s.id)
	if n == nil {
		fn()
		return
	}
	n.cleanups = append(n.cleanups, fn)
}

// Owned returns the handles of the nodes this Scope currently owns.
func (s *Scope) Owned() []NodeID {
	n := s.rt.nodes.get(s.id)
	if n == nil || len(n.owned) == 0 {
		return nil
	}
	return append([]NodeID(nil), n.owned...)
}

// Dispose disposes everything the Scope owns and runs its cleanups. Dispose
// is idempotent.
func (s *Scope) Dispose() {
	s.dispose()
}

func (s *Scope) dispose() {
	s.rt.destroy(s.id)
}
