package reactive

import (
	"errors"
	"fmt"
)

// ErrDisposed is raised when a signal, computed, effect or scope is used after
// it was disposed or stopped.
var ErrDisposed = errors.New("reactive: node disposed")

// ErrNilFunc is raised when a nil function is passed where a computation,
// effect body or callback is required.
var ErrNilFunc = errors.New("reactive: nil function")

// ErrNotReactive is returned when a value that is not a Signal or Computed is
// passed where a Readable is expected.
var ErrNotReactive = errors.New("reactive: value is not reactive")

// ErrForeignRuntime is raised when nodes from two different runtimes are
// linked together.
var ErrForeignRuntime = errors.New("reactive: node belongs to a different runtime")

// misuse panics with err wrapped in a descriptive message.
func misuse(err error, format string, args ...any) {
	panic(fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...)))
}
