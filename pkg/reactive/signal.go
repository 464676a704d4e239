package reactive

// Signal is a reactive value container.
// Reading a Signal's value while an effect or computed runs automatically
// subscribes that observer to receive notifications when the value changes.
type Signal[T any] struct {
	rt *Runtime
	id NodeID

	// value is the current signal value.
	value T

	// equal decides whether a write changes the value.
	equal func(a, b T) bool
}

// NewSignal creates a new signal with the given initial value.
// Writes are compared with ==; a write of an equal value is a no-op.
func NewSignal[T comparable](rt *Runtime, initial T) *Signal[T] {
	return newSignal(rt, initial, func(a, b T) bool { return a == b })
}

// NewSignalFunc creates a signal for values that are not comparable with ==,
// using equal to decide whether a write changes the value. Passing a function
// that always returns false makes every write notify.
func NewSignalFunc[T any](rt *Runtime, initial T, equal func(a, b T) bool) *Signal[T] {
	if equal == nil {
		misuse(ErrNilFunc, "NewSignalFunc equality")
	}
	return newSignal(rt, initial, equal)
}

func newSignal[T any](rt *Runtime, initial T, equal func(a, b T) bool) *Signal[T] {
	s := &Signal[T]{
		rt:    rt,
		value: initial,
		equal: equal,
	}
	s.id = rt.alloc(kindSignal, s, nil)
	return s
}

// ID returns the signal's arena handle.
func (s *Signal[T]) ID() NodeID {
	return s.id
}

// Get returns the current value and subscribes the current observer.
func (s *Signal[T]) Get() T {
	s.rt.mustNode(s.id, "Signal.Get")
	s.rt.track(s.id)
	return s.value
}

// Peek returns the current value without subscribing.
func (s *Signal[T]) Peek() T {
	s.rt.mustNode(s.id, "Signal.Peek")
	return s.value
}

// Set updates the value and notifies subscribers if it changed.
// Inside a batch, subscribers are queued instead of run.
func (s *Signal[T]) Set(value T) {
	s.rt.mustNode(s.id, "Signal.Set")
	if s.equal(s.value, value) {
		return
	}
	s.value = value
	s.rt.instr.OnWrite(s.id)
	s.rt.notify(s.id)
}

// Update reads, transforms and writes the value in one step.
func (s *Signal[T]) Update(fn func(T) T) {
	if fn == nil {
		misuse(ErrNilFunc, "Signal.Update")
	}
	s.Set(fn(s.Peek()))
}

// Subscribe registers a plain callback that is not tied to tracking.
// The callback runs immediately with the current value and then after every
// change. Calling the returned function removes it.
func (s *Signal[T]) Subscribe(fn func(T)) Unsubscribe {
	s.rt.mustNode(s.id, "Signal.Subscribe")
	return subscribe(s.rt, s.id, s.Peek, fn)
}

// Dispose removes the signal and every edge to it. Subscription callbacks
// registered with Subscribe are removed as well. Dispose is idempotent.
func (s *Signal[T]) Dispose() {
	s.dispose()
}

func (s *Signal[T]) dispose() {
	n := s.rt.nodes.get(s.id)
	if n == nil {
		return
	}
	for _, sub := range append([]NodeID(nil), n.subs...) {
		if sn := s.rt.nodes.get(sub); sn != nil && sn.kind == kindListener {
			sn.cell.dispose()
		}
	}
	s.rt.destroy(s.id)
}

func (s *Signal[T]) readable() {}
