package config

import (
	"os"
	"slices"
	"time"

	"github.com/vango-dev/reactor/internal/errors"
	"gopkg.in/yaml.v3"
)

const (
	// EnvConfig names the environment variable holding the config path.
	EnvConfig = "REACTBENCH_CONFIG"

	// DefaultAddr is the default bench server address.
	DefaultAddr = ":9464"

	// DefaultSize is the default graph size per scenario.
	DefaultSize = 100

	// DefaultIterations is the default number of writes per scenario.
	DefaultIterations = 1000

	// DefaultMaxSize caps the graph size a bench server request may ask for.
	DefaultMaxSize = 10_000

	// DefaultMaxIterations caps the write rounds a bench server request may
	// ask for.
	DefaultMaxIterations = 100_000

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "reactor"
)

// DefaultScenarios are run when the config names none.
var DefaultScenarios = []string{"chain", "fanout", "diamond", "batch"}

// Config represents the complete reactbench configuration.
type Config struct {
	// Log configures the process logger.
	Log LogConfig `yaml:"log"`

	// Bench configures the scenarios run by "reactbench run".
	Bench BenchConfig `yaml:"bench"`

	// Server configures "reactbench serve".
	Server ServerConfig `yaml:"server"`

	// Metrics configures the Prometheus instrumentation.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing configures the OpenTelemetry instrumentation.
	Tracing TracingConfig `yaml:"tracing"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// BenchConfig contains scenario settings.
type BenchConfig struct {
	// Scenarios lists the scenarios to run, in order.
	Scenarios []string `yaml:"scenarios"`

	// Size is the graph size (chain length, fan-out width, batch width).
	Size int `yaml:"size"`

	// Iterations is the number of write rounds per scenario.
	Iterations int `yaml:"iterations"`

	// Output is table or json.
	Output string `yaml:"output"`
}

// ServerConfig contains bench server settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `yaml:"addr"`

	// ReadTimeout bounds reading a request, headers included.
	ReadTimeout time.Duration `yaml:"readTimeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`

	// MaxSize and MaxIterations bound the parameters of one request.
	MaxSize       int `yaml:"maxSize"`
	MaxIterations int `yaml:"maxIterations"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
	Subsystem string `yaml:"subsystem"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled turns span export on.
	Enabled bool `yaml:"enabled"`

	// TracerName is the tracer resolved from the global provider.
	TracerName string `yaml:"tracerName"`

	// Recomputes also traces computed re-evaluations.
	Recomputes bool `yaml:"recomputes"`
}

// New creates a Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from path. An empty path falls back to
// $REACTBENCH_CONFIG, and when that is unset too the defaults are returned.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		return New(), nil
	}
	return LoadFile(path)
}

// LoadFile reads configuration from a YAML file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("R100").
				WithDetailf("No config file at %s", path).
				WithSuggestion("Check the --config flag or unset " + EnvConfig)
		}
		return nil, errors.New("R101").Wrap(err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.configPath = path
	return cfg, nil
}

// Parse decodes YAML configuration, applies defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("R101").
			WithDetail("Failed to parse config: " + err.Error()).
			WithSuggestion("Check that the file is valid YAML")
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	c.configPath = path
	return nil
}

// Path returns the path the config was loaded from, or "" for defaults.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	// Log
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	// Bench
	if len(c.Bench.Scenarios) == 0 {
		c.Bench.Scenarios = slices.Clone(DefaultScenarios)
	}
	if c.Bench.Size == 0 {
		c.Bench.Size = DefaultSize
	}
	if c.Bench.Iterations == 0 {
		c.Bench.Iterations = DefaultIterations
	}
	if c.Bench.Output == "" {
		c.Bench.Output = "table"
	}

	// Server
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 5 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.MaxSize == 0 {
		c.Server.MaxSize = DefaultMaxSize
	}
	if c.Server.MaxIterations == 0 {
		c.Server.MaxIterations = DefaultMaxIterations
	}

	// Metrics
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}

	// Tracing
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = "reactbench"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New("R102").WithDetailf(format, args...)
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Log.Level) {
		return invalid("log.level %q must be one of debug, info, warn, error", c.Log.Level)
	}
	if !slices.Contains([]string{"text", "json"}, c.Log.Format) {
		return invalid("log.format %q must be text or json", c.Log.Format)
	}
	if c.Bench.Size < 0 {
		return invalid("bench.size must be positive, got %d", c.Bench.Size)
	}
	if c.Bench.Iterations < 0 {
		return invalid("bench.iterations must be positive, got %d", c.Bench.Iterations)
	}
	if !slices.Contains([]string{"table", "json"}, c.Bench.Output) {
		return invalid("bench.output %q must be table or json", c.Bench.Output)
	}
	if slices.Contains(c.Bench.Scenarios, "") {
		return invalid("bench.scenarios contains an empty name")
	}
	if c.Server.ReadTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return invalid("server timeouts must not be negative")
	}
	if c.Server.MaxSize < 0 || c.Server.MaxIterations < 0 {
		return invalid("server.maxSize and server.maxIterations must not be negative")
	}
	return nil
}
