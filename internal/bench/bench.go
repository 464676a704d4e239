// Package bench runs reproducible workloads against the reactive engine and
// reports what the engine did: writes, recomputations, effect runs and
// flushes, plus wall time and allocations.
//
// Every scenario also checks the final state of its graph, so a run doubles
// as a smoke test of the engine's consistency guarantees.
package bench

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/instrument"
	"github.com/vango-dev/reactor/pkg/reactive"
)

// Params sizes a scenario run.
type Params struct {
	// Size is the graph size: chain length, fan-out width, diamond width or
	// batch width.
	Size int `json:"size"`

	// Iterations is the number of write rounds.
	Iterations int `json:"iterations"`
}

// Result is what one scenario run did.
type Result struct {
	Scenario   string        `json:"scenario"`
	Size       int           `json:"size"`
	Iterations int           `json:"iterations"`
	Writes     int64         `json:"writes"`
	Recomputes int64         `json:"recomputes"`
	EffectRuns int64         `json:"effect_runs"`
	Flushes    int64         `json:"flushes"`
	Cycles     int64         `json:"cycles"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	AllocBytes uint64        `json:"alloc_bytes"`
}

// NsPerWrite is the mean wall time per signal write, propagation included.
func (r Result) NsPerWrite() float64 {
	if r.Writes == 0 {
		return 0
	}
	return float64(r.Elapsed.Nanoseconds()) / float64(r.Writes)
}

// Options configures a run.
type Options struct {
	// Logger receives progress at debug level and engine warnings.
	// Default: slog.Default()
	Logger *slog.Logger

	// Instrumentation receives engine events in addition to the counters
	// behind Result, e.g. instrument.NewPrometheus.
	Instrumentation reactive.Instrumentation
}

// counts tallies engine events for a Result. A run is confined to one
// goroutine, so plain integers suffice.
type counts struct {
	reactive.NopInstrumentation
	writes, recomputes, effectRuns, flushes, cycles int64
}

func (c *counts) OnWrite(reactive.NodeID)                              { c.writes++ }
func (c *counts) OnRecompute(reactive.NodeID, string, reactive.Timing) { c.recomputes++ }
func (c *counts) OnEffectRun(reactive.NodeID, string, reactive.Timing) { c.effectRuns++ }
func (c *counts) OnFlush(int, reactive.Timing)                         { c.flushes++ }
func (c *counts) OnCycle(reactive.NodeID, string)                      { c.cycles++ }

// Run executes the named scenario on a fresh runtime.
func Run(ctx context.Context, name string, p Params, opts Options) (Result, error) {
	sc, ok := Lookup(name)
	if !ok {
		return Result{}, errors.New("R110").
			WithDetailf("scenario %q is not registered", name).
			WithSuggestion("Run 'reactbench run --list' to see available scenarios")
	}
	if p.Size <= 0 || p.Iterations <= 0 {
		return Result{}, errors.New("R111").
			WithDetailf("size=%d iterations=%d, both must be positive", p.Size, p.Iterations)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &counts{}
	rt := reactive.New(
		reactive.WithLogger(logger),
		reactive.WithInstrumentation(instrument.Tee(c, opts.Instrumentation)),
	)

	logger.Debug("scenario start", "scenario", name, "size", p.Size, "iterations", p.Iterations)

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	start := time.Now()
	err := sc.run(ctx, rt, p)
	elapsed := time.Since(start)
	runtime.ReadMemStats(&after)

	if err != nil {
		return Result{}, err
	}

	res := Result{
		Scenario:   name,
		Size:       p.Size,
		Iterations: p.Iterations,
		Writes:     c.writes,
		Recomputes: c.recomputes,
		EffectRuns: c.effectRuns,
		Flushes:    c.flushes,
		Cycles:     c.cycles,
		Elapsed:    elapsed,
		AllocBytes: after.TotalAlloc - before.TotalAlloc,
	}
	logger.Debug("scenario done", "scenario", name, "elapsed", elapsed, "writes", res.Writes)
	return res, nil
}

// RunAll runs the named scenarios in order and stops at the first error or
// when ctx is cancelled.
func RunAll(ctx context.Context, names []string, p Params, opts Options) ([]Result, error) {
	results := make([]Result, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := Run(ctx, name, p, opts)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
