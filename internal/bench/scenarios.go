package bench

import (
	"context"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/reactive"
)

// Scenario is a named workload.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	run func(ctx context.Context, rt *reactive.Runtime, p Params) error
}

var scenarios = []Scenario{
	{
		Name:        "chain",
		Description: "signal -> size computeds in a line -> effect; one write per iteration",
		run:         runChain,
	},
	{
		Name:        "fanout",
		Description: "one signal read by size effects; one write per iteration",
		run:         runFanout,
	},
	{
		Name:        "diamond",
		Description: "signal -> size computeds -> one summing effect; one write per iteration",
		run:         runDiamond,
	},
	{
		Name:        "batch",
		Description: "size signals summed by one effect, all written in one batch per iteration",
		run:         runBatch,
	},
	{
		Name:        "scope",
		Description: "create and dispose a scope owning size signals, a computed and an effect",
		run:         runScope,
	},
}

// Scenarios returns every registered scenario.
func Scenarios() []Scenario {
	out := make([]Scenario, len(scenarios))
	copy(out, scenarios)
	return out
}

// Lookup returns the scenario called name.
func Lookup(name string) (Scenario, bool) {
	for _, sc := range scenarios {
		if sc.Name == name {
			return sc, true
		}
	}
	return Scenario{}, false
}

func mismatch(scenario, format string, args ...any) error {
	return errors.New("R112").WithDetailf(scenario+": "+format, args...)
}

func runChain(ctx context.Context, rt *reactive.Runtime, p Params) error {
	src := reactive.NewSignal(rt, 0)
	var tail reactive.Readable[int] = src
	for i := 0; i < p.Size; i++ {
		prev := tail
		tail = reactive.NewComputed(rt, func() int { return prev.Get() + 1 })
	}

	seen := -1
	reactive.CreateEffect(rt, func() reactive.Cleanup {
		seen = tail.Get()
		return nil
	}, reactive.EffectName("chain"))

	for i := 1; i <= p.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		src.Set(i)
		if seen != i+p.Size {
			return mismatch("chain", "after write %d tail = %d, want %d", i, seen, i+p.Size)
		}
	}
	return nil
}

func runFanout(ctx context.Context, rt *reactive.Runtime, p Params) error {
	src := reactive.NewSignal(rt, 0)
	values := make([]int, p.Size)
	for k := range values {
		reactive.CreateEffect(rt, func() reactive.Cleanup {
			values[k] = src.Get()
			return nil
		}, reactive.EffectName("fanout"))
	}

	for i := 1; i <= p.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		src.Set(i)
		for k, v := range values {
			if v != i {
				return mismatch("fanout", "effect %d saw %d after write %d", k, v, i)
			}
		}
	}
	return nil
}

func runDiamond(ctx context.Context, rt *reactive.Runtime, p Params) error {
	src := reactive.NewSignal(rt, 0)
	arms := make([]*reactive.Computed[int], p.Size)
	for k := range arms {
		arms[k] = reactive.NewComputed(rt, func() int { return src.Get() + k })
	}

	sum := 0
	reactive.CreateEffect(rt, func() reactive.Cleanup {
		total := 0
		for _, arm := range arms {
			total += arm.Get()
		}
		sum = total
		return nil
	}, reactive.EffectName("diamond"))

	offsets := p.Size * (p.Size - 1) / 2
	for i := 1; i <= p.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		src.Set(i)
		// Intermediate runs may see a mix of old and new arms; only the
		// settled sum is checked.
		if want := p.Size*i + offsets; sum != want {
			return mismatch("diamond", "after write %d sum = %d, want %d", i, sum, want)
		}
	}
	return nil
}

func runBatch(ctx context.Context, rt *reactive.Runtime, p Params) error {
	signals := make([]*reactive.Signal[int], p.Size)
	for k := range signals {
		signals[k] = reactive.NewSignal(rt, 0)
	}

	runs, sum := 0, 0
	reactive.CreateEffect(rt, func() reactive.Cleanup {
		runs++
		total := 0
		for _, s := range signals {
			total += s.Get()
		}
		sum = total
		return nil
	}, reactive.EffectName("batch"))

	for i := 1; i <= p.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		rt.Batch(func() {
			for _, s := range signals {
				s.Set(i)
			}
		})
		if sum != p.Size*i {
			return mismatch("batch", "after batch %d sum = %d, want %d", i, sum, p.Size*i)
		}
		if runs != i+1 {
			return mismatch("batch", "effect ran %d times after %d batches, want %d", runs, i, i+1)
		}
	}
	return nil
}

func runScope(ctx context.Context, rt *reactive.Runtime, p Params) error {
	baseline := rt.Stats().Nodes
	for i := 1; i <= p.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		sc := reactive.NewScope(rt, nil)
		sc.Run(func() {
			signals := make([]*reactive.Signal[int], p.Size)
			for k := range signals {
				signals[k] = reactive.NewSignal(rt, k)
			}
			total := reactive.NewComputed(rt, func() int {
				t := 0
				for _, s := range signals {
					t += s.Get()
				}
				return t
			})
			reactive.CreateEffect(rt, func() reactive.Cleanup {
				_ = total.Get()
				return nil
			}, reactive.EffectName("scope"))
			signals[0].Set(i + p.Size)
		})
		sc.Dispose()

		if st := rt.Stats(); st.Nodes != baseline || st.Edges != 0 {
			return mismatch("scope", "iteration %d leaked %d nodes and %d edges", i, st.Nodes-baseline, st.Edges)
		}
	}
	return nil
}
