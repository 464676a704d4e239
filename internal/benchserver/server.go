// Package benchserver exposes the bench scenarios over HTTP together with
// the Prometheus metrics the runs produce.
//
// Routes:
//
//	GET  /healthz              liveness probe
//	GET  /metrics              Prometheus exposition
//	GET  /scenarios            registered scenarios
//	POST /scenarios/{name}     run one scenario (?size=&iterations=)
package benchserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vango-dev/reactor/internal/bench"
	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/instrument"
	"github.com/vango-dev/reactor/pkg/reactive"
)

// Config configures the bench server.
type Config struct {
	// Addr is the listen address.
	Addr string

	// ReadTimeout bounds reading a request, headers included.
	ReadTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// Defaults are used for query parameters a request omits.
	Defaults bench.Params

	// Limits are the largest size and iterations a request may ask for.
	// Default: 10000 and 100000
	Limits bench.Params

	// Namespace and Subsystem name the engine metrics.
	Namespace string
	Subsystem string

	// Registry collects every metric served on /metrics.
	// Default: a fresh registry with Go and process collectors.
	Registry *prometheus.Registry

	// Instrumentation receives engine events next to the Prometheus
	// metrics, e.g. instrument.NewTracing.
	Instrumentation reactive.Instrumentation

	// Logger receives request logs.
	// Default: slog.Default()
	Logger *slog.Logger
}

// Server serves the bench routes.
type Server struct {
	config     Config
	router     chi.Router
	logger     *slog.Logger
	instr      reactive.Instrumentation
	requests   *prometheus.CounterVec
	httpServer *http.Server
}

// New creates a Server and registers its metrics.
func New(config Config) *Server {
	if config.Addr == "" {
		config.Addr = ":9464"
	}
	if config.ReadTimeout == 0 {
		config.ReadTimeout = 5 * time.Second
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 10 * time.Second
	}
	if config.Defaults.Size == 0 {
		config.Defaults.Size = 100
	}
	if config.Defaults.Iterations == 0 {
		config.Defaults.Iterations = 1000
	}
	if config.Limits.Size == 0 {
		config.Limits.Size = 10_000
	}
	if config.Limits.Iterations == 0 {
		config.Limits.Iterations = 100_000
	}
	if config.Namespace == "" {
		config.Namespace = "reactor"
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
		config.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics := instrument.NewPrometheus(
		instrument.WithRegistry(config.Registry),
		instrument.WithNamespace(config.Namespace),
		instrument.WithSubsystem(config.Subsystem),
	)

	s := &Server{
		config: config,
		logger: logger.With("component", "benchserver"),
		instr:  instrument.Tee(metrics, config.Instrumentation),
		requests: promauto.With(config.Registry).NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: "benchserver",
			Name:      "http_requests_total",
			Help:      "Total number of bench server requests by route and status",
		}, []string{"route", "code"}),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.config.Registry, promhttp.HandlerOpts{}))

	r.Route("/scenarios", func(r chi.Router) {
		r.Get("/", s.listScenarios)
		r.Post("/{name}", s.runScenario)
	})
	return r
}

// observe logs every request and counts it by route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"elapsed", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) listScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, bench.Scenarios())
}

func (s *Server) runScenario(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	params := s.config.Defaults

	query := r.URL.Query()
	for _, p := range []struct {
		key   string
		dst   *int
		limit int
	}{
		{"size", &params.Size, s.config.Limits.Size},
		{"iterations", &params.Iterations, s.config.Limits.Iterations},
	} {
		if raw := query.Get(p.key); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, errors.New("R121").WithDetailf("%s=%q is not an integer", p.key, raw))
				return
			}
			*p.dst = v
		}
		if *p.dst > p.limit {
			writeError(w, errors.New("R121").
				WithDetailf("%s=%d exceeds the limit of %d", p.key, *p.dst, p.limit).
				WithSuggestion("Raise server.maxSize or server.maxIterations in the config"))
			return
		}
	}

	res, err := bench.Run(r.Context(), name, params, bench.Options{
		Logger:          s.logger,
		Instrumentation: s.instr,
	})
	if err != nil {
		s.logger.Warn("scenario failed", "scenario", name, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return errors.New("R120").WithDetailf("listen on %s", s.config.Addr).Wrap(err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.config.ReadTimeout,
		ReadTimeout:       s.config.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return errors.New("R120").Wrap(err)
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps bench errors to HTTP statuses and writes them as JSON.
func writeError(w http.ResponseWriter, err error) {
	e := errors.FromError(err, "R120")
	status := http.StatusInternalServerError
	switch e.Code {
	case "R110":
		status = http.StatusNotFound
	case "R111", "R121":
		status = http.StatusBadRequest
	}
	if errors.Is(err, context.Canceled) {
		// Client went away; nobody reads the body.
		status = 499
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(e.FormatJSON()))
}
