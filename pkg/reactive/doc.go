// Package reactive provides a fine-grained reactive core: signals, computed
// values, effects and a batching scheduler.
//
// Dependencies are tracked automatically at runtime. Reading a signal while an
// effect or computed is running subscribes that observer to the signal, and
// writing the signal notifies it again.
//
// # Core Types
//
// Signal[T] is a reactive value container:
//
//	rt := reactive.New()
//	count := reactive.NewSignal(rt, 0)
//	value := count.Get()  // Read (subscribes current observer)
//	count.Set(5)          // Write (notifies subscribers)
//	count.Update(func(n int) int { return n + 1 })
//
// Computed[T] is a lazily evaluated, cached derivation:
//
//	doubled := reactive.NewComputed(rt, func() int { return count.Get() * 2 })
//	value := doubled.Get()  // Recomputes only if a dependency changed
//
// Effect runs side effects when dependencies change:
//
//	e := reactive.CreateEffect(rt, func() reactive.Cleanup {
//	    fmt.Println("Count is:", count.Get())
//	    return nil
//	})
//	defer e.Stop()
//
// # Batching
//
// Multiple writes can be batched so each affected observer runs once:
//
//	rt.Batch(func() {
//	    a.Set(1)
//	    b.Set(2)
//	})
//
// # Ownership
//
// Every node lives in the Runtime's arena under a NodeID. Effects, computeds
// and scopes created while an effect, computed or Scope is running are owned
// by it and disposed with it, so re-running an effect never leaks the
// observers it created last time. Signals and Subscribe listeners are only
// adopted by an explicit Scope; otherwise they live until disposed or
// unsubscribed.
//
// # Threading
//
// A Runtime is single-threaded: it takes no locks and must be confined to one
// goroutine. Independent runtimes can live on different goroutines.
package reactive
