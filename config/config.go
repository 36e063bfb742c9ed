// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

var (
	// ErrInvalidPeriod is returned when the loop period is not positive.
	ErrInvalidPeriod = errors.New("loop period must be positive")

	// ErrInvalidLogOutput is returned when an invalid log output destination is specified.
	ErrInvalidLogOutput = errors.New("invalid log output")
)

// Config holds everything the magicbot binary reads from the environment.
// Command line flags override these values.
type Config struct {
	Robot       string        `env:"MAGICBOT_ROBOT_NAME"      envDefault:"magicbot"`
	Period      time.Duration `env:"MAGICBOT_LOOP_PERIOD"     envDefault:"20ms"`
	Verbose     bool          `env:"MAGICBOT_VERBOSE"`
	Autonomous  string        `env:"MAGICBOT_AUTONOMOUS_MODE"`
	MetricsAddr string        `env:"MAGICBOT_METRICS_ADDR"`
	NoBanner    bool          `env:"MAGICBOT_NO_BANNER"`

	Log       Log
	Telemetry Telemetry
}

// Log controls the slog setup.
type Log struct {
	JSON        bool       `env:"LOG_JSON"`
	Level       slog.Level `env:"LOG_LEVEL"        envDefault:"info"`
	LegacyLevel slog.Level `env:"LEGACY_LOG_LEVEL" envDefault:"info"`
	Output      string     `env:"LOG_OUTPUT"       envDefault:"stdout"`
}

// Telemetry controls the OpenTelemetry exporters.
type Telemetry struct {
	Enabled        bool          `env:"OTEL_ENABLED"`
	ServiceName    string        `env:"OTEL_SERVICE_NAME"                  envDefault:"magicbot"`
	ServiceVersion string        `env:"OTEL_SERVICE_VERSION"               envDefault:"1.0.0"`
	Environment    string        `env:"OTEL_ENVIRONMENT"                   envDefault:"local"`
	TracesEndpoint string        `env:"OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"`
	LogsEndpoint   string        `env:"OTEL_EXPORTER_OTLP_LOGS_ENDPOINT"`
	Timeout        time.Duration `env:"OTEL_EXPORTER_OTLP_TIMEOUT"         envDefault:"5s"`
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	return cfg, cfg.Validate()
}

// LoadFrom reads the configuration from the given variables instead of the
// process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	var cfg Config

	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate checks values the parser cannot.
func (c Config) Validate() error {
	if c.Period <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPeriod, c.Period)
	}

	switch c.Log.Output {
	case "stdout", "stderr":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogOutput, c.Log.Output)
	}

	return nil
}
