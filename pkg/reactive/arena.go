package reactive

import (
	"fmt"
	"slices"
)

// NodeID is a stable handle to a node in a Runtime's arena.
// The low 32 bits index the slot and the high 32 bits carry the slot
// generation, so a handle to a released node never aliases its successor.
// The zero NodeID is never allocated.
type NodeID uint64

func makeNodeID(index, gen uint32) NodeID {
	return NodeID(uint64(gen)<<32 | uint64(index))
}

func (id NodeID) index() uint32 { return uint32(id) }

func (id NodeID) generation() uint32 { return uint32(id >> 32) }

// String renders the handle as index#generation.
func (id NodeID) String() string {
	if id == 0 {
		return "none"
	}
	return fmt.Sprintf("%d#%d", id.index(), id.generation())
}

type nodeKind uint8

const (
	kindSignal nodeKind = iota + 1
	kindComputed
	kindEffect
	kindListener
	kindScope
)

func (k nodeKind) String() string {
	switch k {
	case kindSignal:
		return "signal"
	case kindComputed:
		return "computed"
	case kindEffect:
		return "effect"
	case kindListener:
		return "listener"
	case kindScope:
		return "scope"
	default:
		return "unknown"
	}
}

// observer is anything that reacts when one of its sources changes.
// It is sealed: only Effect, Computed and subscription listeners implement it.
type observer interface {
	run()
}

// disposable is anything the arena can tear down on behalf of an owner.
type disposable interface {
	dispose()
}

// node is one arena slot. Edges are ordered index sets: subs keeps
// registration order, which is the order notifications fire in.
type node struct {
	gen  uint32
	live bool
	kind nodeKind

	obs  observer
	cell disposable

	// subs are the observers that read this node during their last run.
	subs []NodeID
	// deps are the sources this node read during its last run.
	deps []NodeID

	// owner is the node that created this one while it was running.
	owner NodeID
	// owned are the nodes created during this node's current run.
	owned []NodeID
	// cleanups run before the next run and on disposal, newest first.
	cleanups []func()
}

// arena stores every node of a Runtime. Slots are pointers so a *node stays
// valid while user code allocates more nodes.
type arena struct {
	slots []*node
	free  []uint32
	live  int
}

func (a *arena) alloc(kind nodeKind, cell disposable, obs observer) NodeID {
	var idx uint32
	var n *node
	if k := len(a.free); k > 0 {
		idx = a.free[k-1]
		a.free = a.free[:k-1]
		n = a.slots[idx]
	} else {
		idx = uint32(len(a.slots))
		n = &node{}
		a.slots = append(a.slots, n)
	}
	n.gen++
	n.live = true
	n.kind = kind
	n.cell = cell
	n.obs = obs
	a.live++
	return makeNodeID(idx, n.gen)
}

// get returns the live node for id, or nil if id is stale or unknown.
func (a *arena) get(id NodeID) *node {
	if id == 0 {
		return nil
	}
	idx := id.index()
	if int(idx) >= len(a.slots) {
		return nil
	}
	n := a.slots[idx]
	if !n.live || n.gen != id.generation() {
		return nil
	}
	return n
}

// release returns the slot to the free list. Edges must already be cleared.
func (a *arena) release(id NodeID) {
	n := a.get(id)
	if n == nil {
		return
	}
	gen := n.gen
	*n = node{gen: gen}
	a.free = append(a.free, id.index())
	a.live--
}

func (a *arena) each(fn func(id NodeID, n *node)) {
	for i, n := range a.slots {
		if n.live {
			fn(makeNodeID(uint32(i), n.gen), n)
		}
	}
}

// addEdge links sub as an observer of dep. Both sides deduplicate.
func (a *arena) addEdge(dep, sub NodeID) {
	dn, sn := a.get(dep), a.get(sub)
	if dn == nil || sn == nil || dep == sub {
		return
	}
	if !slices.Contains(dn.subs, sub) {
		dn.subs = append(dn.subs, sub)
	}
	if !slices.Contains(sn.deps, dep) {
		sn.deps = append(sn.deps, dep)
	}
}

// clearDeps removes every edge where id is the observer.
func (a *arena) clearDeps(id NodeID) {
	n := a.get(id)
	if n == nil {
		return
	}
	for _, dep := range n.deps {
		if dn := a.get(dep); dn != nil {
			dn.subs = removeID(dn.subs, id)
		}
	}
	n.deps = n.deps[:0]
}

// clearSubs removes every edge where id is the source.
func (a *arena) clearSubs(id NodeID) {
	n := a.get(id)
	if n == nil {
		return
	}
	for _, sub := range n.subs {
		if sn := a.get(sub); sn != nil {
			sn.deps = removeID(sn.deps, id)
		}
	}
	n.subs = n.subs[:0]
}

// removeID deletes id from s keeping the order of the remaining entries.
func removeID(s []NodeID, id NodeID) []NodeID {
	if i := slices.Index(s, id); i >= 0 {
		return slices.Delete(s, i, i+1)
	}
	return s
}
