package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vango-dev/reactor/internal/bench"
	"github.com/vango-dev/reactor/internal/benchserver"
)

func serveCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scenarios and metrics over HTTP",
		Long: `Start an HTTP server that runs scenarios on request and exposes
the engine metrics they produce.

Routes:
  GET  /healthz
  GET  /metrics
  GET  /scenarios
  POST /scenarios/{name}?size=N&iterations=N

Examples:
  reactbench serve
  reactbench serve --addr 127.0.0.1:9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			sc := benchserver.Config{
				Addr:            cfg.Server.Addr,
				ReadTimeout:     cfg.Server.ReadTimeout,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
				Defaults: bench.Params{
					Size:       cfg.Bench.Size,
					Iterations: cfg.Bench.Iterations,
				},
				Limits: bench.Params{
					Size:       cfg.Server.MaxSize,
					Iterations: cfg.Server.MaxIterations,
				},
				Namespace: cfg.Metrics.Namespace,
				Subsystem: cfg.Metrics.Subsystem,
				Logger:    a.logger,
			}
			if cfg.Tracing.Enabled {
				tr, shutdown, err := a.tracing()
				if err != nil {
					return err
				}
				defer shutdown()
				sc.Instrumentation = tr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return benchserver.New(sc).Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config)")

	return cmd
}
