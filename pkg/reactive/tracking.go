package reactive

// TrackingContext holds the reactive state of a Runtime.
// At most one observer is current at any instant; entering an observer saves
// the previous one and restores it on exit, even when the body panics.
type TrackingContext struct {
	// observer is what's currently tracking dependencies.
	// Zero means no tracking (reads don't create subscriptions).
	observer NodeID

	// owner will own nodes created right now.
	owner NodeID

	// batchDepth tracks nested Batch() calls.
	// When > 0, writes queue observers instead of running them.
	batchDepth int

	// pending holds queued observers in first-insertion order; queued
	// deduplicates them by NodeID.
	pending []NodeID
	queued  map[NodeID]struct{}
}

// Observer returns the current observer, or zero when nothing is tracking.
func (tc *TrackingContext) Observer() NodeID {
	return tc.observer
}

// Owner returns the node that owns nodes created right now.
func (tc *TrackingContext) Owner() NodeID {
	return tc.owner
}

// BatchDepth returns the current batch nesting depth.
func (tc *TrackingContext) BatchDepth() int {
	return tc.batchDepth
}

func (tc *TrackingContext) enqueue(id NodeID) {
	if tc.queued == nil {
		tc.queued = make(map[NodeID]struct{})
	}
	if _, ok := tc.queued[id]; ok {
		return
	}
	tc.queued[id] = struct{}{}
	tc.pending = append(tc.pending, id)
}

// drain returns and clears the pending queue.
func (tc *TrackingContext) drain() []NodeID {
	pending := tc.pending
	tc.pending = nil
	clear(tc.queued)
	return pending
}

// Tracking returns the runtime's tracking context.
func (rt *Runtime) Tracking() *TrackingContext {
	return &rt.tracking
}

// IsTracking reports whether a read right now would register a dependency.
func (rt *Runtime) IsTracking() bool {
	return rt.tracking.observer != 0
}

// IsBatching reports whether a batch scope is open.
func (rt *Runtime) IsBatching() bool {
	return rt.tracking.batchDepth > 0
}

// track registers the current observer as a subscriber of src.
// Self-edges are never created.
func (rt *Runtime) track(src NodeID) {
	if obs := rt.tracking.observer; obs != 0 && obs != src {
		rt.nodes.addEdge(src, obs)
	}
}

// runAs runs fn with id as both the current observer and the current owner.
func (rt *Runtime) runAs(id NodeID, fn func()) {
	prevObserver, prevOwner := rt.tracking.observer, rt.tracking.owner
	rt.tracking.observer, rt.tracking.owner = id, id
	defer func() {
		rt.tracking.observer, rt.tracking.owner = prevObserver, prevOwner
	}()
	fn()
}

// withOwner runs fn with id as the current owner, leaving tracking untouched.
func (rt *Runtime) withOwner(id NodeID, fn func()) {
	prev := rt.tracking.owner
	rt.tracking.owner = id
	defer func() { rt.tracking.owner = prev }()
	fn()
}

// Untracked runs fn without tracking reads as dependencies.
//
// Example:
//
//	rt.Untracked(func() {
//	    // Reading count here won't subscribe the running effect
//	    log.Println(count.Get())
//	})
//
// For single reads, Peek is shorter.
func (rt *Runtime) Untracked(fn func()) {
	prev := rt.tracking.observer
	rt.tracking.observer = 0
	defer func() { rt.tracking.observer = prev }()
	fn()
}

// notify delivers a change of src to its subscribers. The subscriber list is
// copied first because a notified observer may subscribe or unsubscribe
// while the loop runs.
func (rt *Runtime) notify(src NodeID) {
	n := rt.nodes.get(src)
	if n == nil || len(n.subs) == 0 {
		return
	}
	subs := make([]NodeID, len(n.subs))
	copy(subs, n.subs)

	if rt.tracking.batchDepth > 0 {
		for _, sub := range subs {
			rt.tracking.enqueue(sub)
		}
		return
	}
	for _, sub := range subs {
		rt.runObserver(sub)
	}
}

// runObserver runs a queued or notified observer if it is still alive.
func (rt *Runtime) runObserver(id NodeID) {
	if n := rt.nodes.get(id); n != nil && n.obs != nil {
		n.obs.run()
	}
}
