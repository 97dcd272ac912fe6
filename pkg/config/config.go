// Package config holds report settings.
//
// Settings are layered: defaults, then TOML files in order, then
// EXAM_REPORT_* environment variables (optionally seeded from a .env file),
// then CLI flags applied by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full report configuration.
type Config struct {
	Report  ReportConfig  `toml:"report"`
	Charts  ChartsConfig  `toml:"charts"`
	Server  ServerConfig  `toml:"server"`
	Logging LoggingConfig `toml:"logging"`
}

// ReportConfig controls report content.
type ReportConfig struct {
	DataPath            string `toml:"data_path"`                              // empty = built-in sample
	ClassRankHighlight  int    `toml:"class_rank_highlight" validate:"gte=1"`  // highlight class ranks <= this
	SchoolRankHighlight int    `toml:"school_rank_highlight" validate:"gte=1"` // highlight school ranks <= this
	Generator           string `toml:"generator" validate:"required"`          // shown in the page footer
}

// ChartsConfig controls chart sizes and rank axes.
type ChartsConfig struct {
	Width      int        `toml:"width" validate:"gte=200,lte=4000"`
	Height     int        `toml:"height" validate:"gte=100,lte=4000"`
	BarHeight  int        `toml:"bar_height" validate:"gte=100,lte=4000"`
	ClassRank  AxisConfig `toml:"class_rank"`
	SchoolRank AxisConfig `toml:"school_rank"`
}

// AxisConfig is a fixed rank axis. Rank axes are drawn reversed.
type AxisConfig struct {
	Min   float64   `toml:"min" validate:"gte=0"`
	Max   float64   `toml:"max" validate:"gtfield=Min"`
	Ticks []float64 `toml:"ticks" validate:"dive,gte=0"`
}

// ServerConfig controls the serve command.
type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port" validate:"gte=1,lte=65535"`
	ShutdownTimeout string `toml:"shutdown_timeout" validate:"required"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level string `toml:"level" validate:"oneof=debug info warn error"`
}

// NewDefaultConfig returns the built-in defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Report: ReportConfig{
			ClassRankHighlight:  10,
			SchoolRankHighlight: 300,
			Generator:           "exam-report",
		},
		Charts: ChartsConfig{
			Width:     480,
			Height:    250,
			BarHeight: 300,
			ClassRank: AxisConfig{
				Min:   1,
				Max:   50,
				Ticks: []float64{1, 10, 20, 30, 40, 50},
			},
			SchoolRank: AxisConfig{
				Min:   1,
				Max:   900,
				Ticks: []float64{1, 250, 500, 750, 900},
			},
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ShutdownTimeout: "5s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> files -> env.
// Later files override earlier ones; empty paths are skipped.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadEnvFile seeds the process environment from a .env file. A missing
// file is not an error; variables already set are left alone.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies EXAM_REPORT_* variables.
func applyEnvOverrides(config *Config) error {
	if v := os.Getenv("EXAM_REPORT_DATA"); v != "" {
		config.Report.DataPath = v
	}
	if v := os.Getenv("EXAM_REPORT_SERVER_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("EXAM_REPORT_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"EXAM_REPORT_SERVER_PORT", &config.Server.Port},
		{"EXAM_REPORT_CLASS_RANK_HIGHLIGHT", &config.Report.ClassRankHighlight},
		{"EXAM_REPORT_SCHOOL_RANK_HIGHLIGHT", &config.Report.SchoolRankHighlight},
	}
	for _, e := range ints {
		v := os.Getenv(e.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, e.name, v)
		}
		*e.dst = n
	}

	return nil
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("%w: server.shutdown_timeout: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ShutdownGrace returns the parsed shutdown timeout.
func (s ServerConfig) ShutdownGrace() time.Duration {
	d, err := time.ParseDuration(s.ShutdownTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
