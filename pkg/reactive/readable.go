package reactive

import "fmt"

// Readable is the read side shared by Signal and Computed.
// It is sealed: only types in this package implement it.
type Readable[T any] interface {
	// Get returns the value and subscribes the current observer.
	Get() T
	// Peek returns the value without subscribing.
	Peek() T
	// Subscribe registers a plain callback; see Signal.Subscribe.
	Subscribe(fn func(T)) Unsubscribe
	// ID returns the arena handle.
	ID() NodeID

	readable()
}

var (
	_ Readable[int] = (*Signal[int])(nil)
	_ Readable[int] = (*Computed[int])(nil)
)

// AsReadable returns v as a Readable[T]. It fails with ErrNotReactive when v
// is neither a Signal[T] nor a Computed[T].
func AsReadable[T any](v any) (Readable[T], error) {
	if r, ok := v.(Readable[T]); ok {
		return r, nil
	}
	var zero T
	return nil, fmt.Errorf("%w: got %T, want Signal[%T] or Computed[%T]", ErrNotReactive, v, zero, zero)
}

// MustReadable is like AsReadable but panics on failure.
func MustReadable[T any](v any) Readable[T] {
	r, err := AsReadable[T](v)
	if err != nil {
		panic(err)
	}
	return r
}

// Unwrap reads the current value of a reactive v, subscribing the current
// observer. It is what a rendering layer uses to interpolate a cell.
func Unwrap[T any](v any) (T, error) {
	r, err := AsReadable[T](v)
	if err != nil {
		var zero T
		return zero, err
	}
	return r.Get(), nil
}
