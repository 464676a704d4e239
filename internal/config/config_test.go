package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/vango-dev/reactor/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Bench.Size != DefaultSize {
		t.Errorf("Bench.Size = %d, want %d", cfg.Bench.Size, DefaultSize)
	}
	if cfg.Bench.Iterations != DefaultIterations {
		t.Errorf("Bench.Iterations = %d, want %d", cfg.Bench.Iterations, DefaultIterations)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Server.MaxSize != DefaultMaxSize || cfg.Server.MaxIterations != DefaultMaxIterations {
		t.Errorf("Server limits = %d/%d, want %d/%d",
			cfg.Server.MaxSize, cfg.Server.MaxIterations, DefaultMaxSize, DefaultMaxIterations)
	}
	if diff := cmp.Diff(DefaultScenarios, cfg.Bench.Scenarios); diff != "" {
		t.Errorf("Bench.Scenarios (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()

	// Test loading non-existent config
	_, err := LoadFile(filepath.Join(tmpDir, "missing.yaml"))
	if !errors.HasCode(err, "R100") {
		t.Fatalf("expected R100 for missing config, got %v", err)
	}

	configPath := filepath.Join(tmpDir, "reactbench.yaml")
	configYAML := `
log:
  level: debug
  format: json
bench:
  scenarios: [diamond, chain]
  size: 8
  iterations: 50
server:
  addr: "127.0.0.1:0"
  shutdownTimeout: 2s
tracing:
  enabled: true
`
	if err := os.WriteFile(configPath, []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	want := &Config{
		Log:   LogConfig{Level: "debug", Format: "json"},
		Bench: BenchConfig{Scenarios: []string{"diamond", "chain"}, Size: 8, Iterations: 50, Output: "table"},
		Server: ServerConfig{
			Addr:            "127.0.0.1:0",
			ReadTimeout:     5 * time.Second,
			ShutdownTimeout: 2 * time.Second,
			MaxSize:         DefaultMaxSize,
			MaxIterations:   DefaultMaxIterations,
		},
		Metrics: MetricsConfig{Namespace: DefaultNamespace},
		Tracing: TracingConfig{Enabled: true, TracerName: "reactbench"},
	}
	if diff := cmp.Diff(want, cfg, cmpopts.IgnoreUnexported(Config{})); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
	if cfg.Path() != configPath {
		t.Errorf("Path() = %q, want %q", cfg.Path(), configPath)
	}
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "reactbench.yaml")
	if err := os.WriteFile(configPath, []byte("bench: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(configPath)
	if !errors.HasCode(err, "R101") {
		t.Errorf("expected R101, got %v", err)
	}
}

func TestLoadUsesEnvironment(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "env.yaml")
	if err := os.WriteFile(configPath, []byte("bench:\n  size: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvConfig, configPath)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Bench.Size != 3 {
		t.Errorf("Bench.Size = %d, want 3", cfg.Bench.Size)
	}

	t.Setenv(EnvConfig, "")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load() without config error: %v", err)
	}
	if cfg.Path() != "" || cfg.Bench.Size != DefaultSize {
		t.Errorf("expected defaults, got path=%q size=%d", cfg.Path(), cfg.Bench.Size)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log level", func(c *Config) { c.Log.Level = "trace" }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
		{"negative size", func(c *Config) { c.Bench.Size = -1 }},
		{"negative iterations", func(c *Config) { c.Bench.Iterations = -5 }},
		{"output", func(c *Config) { c.Bench.Output = "csv" }},
		{"empty scenario", func(c *Config) { c.Bench.Scenarios = []string{"chain", ""} }},
		{"negative timeout", func(c *Config) { c.Server.ShutdownTimeout = -time.Second }},
		{"negative max size", func(c *Config) { c.Server.MaxSize = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.HasCode(err, "R102") {
				t.Errorf("Validate() = %v, want R102", err)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := New()
	cfg.Bench.Size = 42
	cfg.Server.ReadTimeout = 750 * time.Millisecond

	path := filepath.Join(t.TempDir(), "saved.yaml")
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded, cmpopts.IgnoreUnexported(Config{})); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}
