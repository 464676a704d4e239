package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"github.com/vango-dev/reactor/internal/bench"
	"github.com/vango-dev/reactor/internal/config"
	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/instrument"
	"github.com/vango-dev/reactor/pkg/reactive"
)

func runCmd(a *app) *cobra.Command {
	var (
		scenarios  []string
		size       int
		iterations int
		output     string
		list       bool
		trace      bool
		metrics    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run bench scenarios",
		Long: `Run bench scenarios against a fresh engine runtime each.

Every scenario verifies the settled state of its graph after each
write round and fails with R112 when the engine gets it wrong.

Examples:
  reactbench run
  reactbench run --list
  reactbench run -s chain,diamond --size 500 --iterations 10000
  reactbench run -o json --metrics
  reactbench run --trace --size 3 --iterations 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				return writeScenarioList(cmd.OutOrStdout())
			}

			cfg := a.cfg
			flags := cmd.Flags()
			if flags.Changed("scenario") {
				cfg.Bench.Scenarios = scenarios
			}
			if flags.Changed("size") {
				if size <= 0 {
					return errors.New("R130").WithDetailf("--size must be positive, got %d", size)
				}
				cfg.Bench.Size = size
			}
			if flags.Changed("iterations") {
				if iterations <= 0 {
					return errors.New("R130").WithDetailf("--iterations must be positive, got %d", iterations)
				}
				cfg.Bench.Iterations = iterations
			}
			if flags.Changed("output") {
				cfg.Bench.Output = output
			}
			if flags.Changed("trace") {
				cfg.Tracing.Enabled = trace
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			hooks := []reactive.Instrumentation{
				instrument.NewPrometheus(
					instrument.WithRegistry(reg),
					instrument.WithNamespace(cfg.Metrics.Namespace),
					instrument.WithSubsystem(cfg.Metrics.Subsystem),
				),
			}
			if cfg.Tracing.Enabled {
				tr, shutdown, err := a.tracing()
				if err != nil {
					return err
				}
				defer shutdown()
				hooks = append(hooks, tr)
			}
			if cfg.Log.Level == "debug" {
				hooks = append(hooks, instrument.NewLog(a.logger))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			results, runErr := bench.RunAll(ctx, cfg.Bench.Scenarios, bench.Params{
				Size:       cfg.Bench.Size,
				Iterations: cfg.Bench.Iterations,
			}, bench.Options{
				Logger:          a.logger,
				Instrumentation: instrument.Tee(hooks...),
			})

			// Partial results are still reported.
			out := cmd.OutOrStdout()
			if len(results) > 0 {
				var err error
				if cfg.Bench.Output == "json" {
					err = bench.WriteJSON(out, results)
				} else {
					err = bench.WriteTable(out, results)
				}
				if err != nil {
					return err
				}
			}
			if runErr != nil {
				return runErr
			}
			if metrics {
				return writeMetrics(out, reg)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringSliceVarP(&scenarios, "scenario", "s", nil, "scenarios to run (default from config)")
	f.IntVarP(&size, "size", "n", config.DefaultSize, "graph size")
	f.IntVarP(&iterations, "iterations", "i", config.DefaultIterations, "write rounds per scenario")
	f.StringVarP(&output, "output", "o", "table", "report format: table or json")
	f.BoolVarP(&list, "list", "l", false, "list scenarios and exit")
	f.BoolVar(&trace, "trace", false, "write OpenTelemetry spans for engine events to stderr")
	f.BoolVar(&metrics, "metrics", false, "print Prometheus metrics after the report")

	return cmd
}

func writeScenarioList(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, sc := range bench.Scenarios() {
		fmt.Fprintf(tw, "%s\t%s\n", sc.Name, sc.Description)
	}
	return tw.Flush()
}

func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	fmt.Fprintln(w)
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
