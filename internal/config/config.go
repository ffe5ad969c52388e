package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/efebarandurmaz/reach/internal/graph"
)

// ErrInvalidConfig wraps every hard configuration error.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all application configuration.
type Config struct {
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Graph    GraphConfig    `mapstructure:"graph"`
	Temporal TemporalConfig `mapstructure:"temporal"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Log      LogConfig      `mapstructure:"log"`
	Secrets  SecretsConfig  `mapstructure:"secrets"`
	Worker   WorkerConfig   `mapstructure:"worker"`
}

type AnalysisConfig struct {
	// Hops lists the hop limits to compute a distribution for.
	Hops []int `mapstructure:"hops"`
	// Kinds restricts traversal. Empty means every known kind.
	Kinds     []string `mapstructure:"kinds"`
	Workers   int      `mapstructure:"workers"`
	OutputDir string   `mapstructure:"output_dir"`
}

// KindList parses the configured kinds.
func (a AnalysisConfig) KindList() ([]graph.Kind, error) {
	return graph.KindsFromStrings(a.Kinds)
}

type GraphConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type SecretsConfig struct {
	// Provider is "env" or "file". Graph.Password, when set, wins over both.
	Provider string `mapstructure:"provider"`
	File     string `mapstructure:"file"`
}

type WorkerConfig struct {
	// HealthAddr is where the worker serves health probes. Empty disables them.
	HealthAddr      string        `mapstructure:"health_addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type TemporalConfig struct {
	Host      string `mapstructure:"host"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

type TracingConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	Environment  string  `mapstructure:"environment"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns the configuration used when no file is present: hop
// limits 1 and 2 over all six known kinds, written to the working directory.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Hops:      []int{1, 2},
			Workers:   1,
			OutputDir: ".",
		},
		Graph: GraphConfig{
			URI:      "neo4j://localhost:7687",
			Username: "neo4j",
		},
		Temporal: TemporalConfig{
			Host:      "localhost:7233",
			Namespace: "default",
			TaskQueue: "reach",
		},
		Tracing: TracingConfig{
			ServiceName: "reach",
			Environment: "development",
			SampleRate:  1.0,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Secrets: SecretsConfig{
			Provider: "env",
		},
		Worker: WorkerConfig{
			HealthAddr:      ":8081",
			ShutdownTimeout: 30 * time.Second,
		},
	}
}

// Check returns an error for configuration that cannot be run.
func (c *Config) Check() error {
	for _, h := range c.Analysis.Hops {
		if h < 0 {
			return fmt.Errorf("%w: hop limit %d is negative", ErrInvalidConfig, h)
		}
	}
	if c.Analysis.Workers < 0 {
		return fmt.Errorf("%w: workers %d is negative", ErrInvalidConfig, c.Analysis.Workers)
	}
	if _, err := c.Analysis.KindList(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch c.Secrets.Provider {
	case "", "env":
	case "file":
		if c.Secrets.File == "" {
			return fmt.Errorf("%w: secrets.file is required for the file provider", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown secrets provider %q", ErrInvalidConfig, c.Secrets.Provider)
	}
	return nil
}

// Validate checks configuration for questionable values and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	if len(c.Analysis.Hops) == 0 {
		warnings = append(warnings, "analysis.hops is empty; no distributions will be computed")
	}
	for _, h := range c.Analysis.Hops {
		if h == 0 {
			warnings = append(warnings, "analysis.hops contains 0; every company will have an empty neighborhood")
			break
		}
	}

	for _, k := range c.Analysis.Kinds {
		if strings.EqualFold(strings.TrimSpace(k), string(graph.KindUnknown)) {
			warnings = append(warnings, "analysis.kinds includes 'unknown'; unknown relationships are never ingested")
			break
		}
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		warnings = append(warnings, fmt.Sprintf("tracing sample_rate %.2f is outside [0.0, 1.0]", c.Tracing.SampleRate))
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		warnings = append(warnings, fmt.Sprintf("log format '%s' is not recognized; using text", c.Log.Format))
	}

	if c.Worker.ShutdownTimeout < 0 {
		warnings = append(warnings, "worker.shutdown_timeout is negative; using 30s")
	}

	return warnings
}

// Load reads configuration from file and environment, layered over Default.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())
	v.SetConfigFile(path)
	v.SetEnvPrefix("REACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Check(); err != nil {
		return nil, err
	}

	for _, warning := range cfg.Validate() {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("analysis.hops", d.Analysis.Hops)
	v.SetDefault("analysis.kinds", d.Analysis.Kinds)
	v.SetDefault("analysis.workers", d.Analysis.Workers)
	v.SetDefault("analysis.output_dir", d.Analysis.OutputDir)
	v.SetDefault("graph.uri", d.Graph.URI)
	v.SetDefault("graph.username", d.Graph.Username)
	v.SetDefault("graph.password", d.Graph.Password)
	v.SetDefault("temporal.host", d.Temporal.Host)
	v.SetDefault("temporal.namespace", d.Temporal.Namespace)
	v.SetDefault("temporal.task_queue", d.Temporal.TaskQueue)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("tracing.environment", d.Tracing.Environment)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("secrets.provider", d.Secrets.Provider)
	v.SetDefault("secrets.file", d.Secrets.File)
	v.SetDefault("worker.health_addr", d.Worker.HealthAddr)
	v.SetDefault("worker.shutdown_timeout", d.Worker.ShutdownTimeout)
}
