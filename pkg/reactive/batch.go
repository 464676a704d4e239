package reactive

import (
	"context"
	"time"
)

// Batch groups writes into a single notification phase.
// Observers affected by writes inside fn are queued, deduplicated and run
// once when the outermost batch completes, in the order they were first
// queued. Nested batches are transparent and never flush early.
//
// No dependency-aware ordering is applied: in a diamond-shaped graph an
// observer may run once with a half-updated view before its final run. Only
// the state after the flush is guaranteed consistent.
//
// The pending set is cleared before the flush starts, so a panicking
// observer aborts the rest of that flush without leaking queued observers
// into the next batch. A panic from fn still closes the batch and flushes.
//
// Example:
//
//	rt.Batch(func() {
//	    firstName.Set("John")
//	    lastName.Set("Doe")
//	})
//	// Effects reading both names run once
func (rt *Runtime) Batch(fn func()) {
	if fn == nil {
		misuse(ErrNilFunc, "Batch")
	}
	rt.tracking.batchDepth++

	defer func() {
		rt.tracking.batchDepth--
		if rt.tracking.batchDepth == 0 {
			rt.flush()
		}
	}()

	fn()
}

// Tx runs fn as a transaction. It is an alias for Batch.
func (rt *Runtime) Tx(fn func()) {
	rt.Batch(fn)
}

// TxNamed runs fn as a named transaction. The name is reported to
// instrumentation (for tracing under ctx) and logged in debug mode.
//
// Example:
//
//	rt.TxNamed(ctx, "user-profile-update", func() {
//	    user.Set(newUser)
//	    profile.Set(newProfile)
//	})
func (rt *Runtime) TxNamed(ctx context.Context, name string, fn func()) {
	if ctx == nil {
		ctx = context.Background()
	}
	if rt.debug {
		rt.logger.Debug("reactive: tx start", "tx", name)
	}
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		if rt.debug {
			rt.logger.Debug("reactive: tx end", "tx", name, "elapsed", elapsed)
		}
		rt.instr.OnTx(ctx, name, Timing{Start: start, Elapsed: elapsed})
	}()

	rt.Batch(fn)
}

// flush runs every queued observer once.
func (rt *Runtime) flush() {
	pending := rt.tracking.drain()
	if len(pending) == 0 {
		return
	}

	start := time.Now()
	for _, id := range pending {
		rt.runObserver(id)
	}
	rt.instr.OnFlush(len(pending), Timing{Start: start, Elapsed: time.Since(start)})
}
