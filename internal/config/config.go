// Package config manages godriverstation daemon configuration using
// koanf/v2.
//
// Supports YAML files and environment variables; there is no CLI flag
// layer.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// -------------------------------------------------------------------------
// Configuration Structures
// -------------------------------------------------------------------------

// Config holds the complete godriverstation daemon configuration.
type Config struct {
	Team     uint32         `koanf:"team"`
	Alliance AllianceConfig `koanf:"alliance"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Log      LogConfig      `koanf:"log"`
}

// AllianceConfig holds the starting alliance station.
type AllianceConfig struct {
	// Side is "red" or "blue".
	Side string `koanf:"side"`
	// Position is the station position, 1-3.
	Position uint8 `koanf:"position"`
}

// MetricsConfig holds the Prometheus metrics endpoint configuration.
type MetricsConfig struct {
	// Addr is the HTTP listen address for the metrics endpoint (e.g., ":9100").
	Addr string `koanf:"addr"`
	// Path is the URL path for the metrics endpoint (e.g., "/metrics").
	Path string `koanf:"path"`
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `koanf:"level"`
	// Format is the log output format: "json" or "text".
	Format string `koanf:"format"`
}

// -------------------------------------------------------------------------
// Defaults
// -------------------------------------------------------------------------

// DefaultConfig returns a Config populated with sensible defaults: red
// alliance, station 1, info-level JSON logging, metrics on :9100.
func DefaultConfig() *Config {
	return &Config{
		Alliance: AllianceConfig{
			Side:     "red",
			Position: 1,
		},
		Metrics: MetricsConfig{
			Addr: ":9100",
			Path: "/metrics",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// -------------------------------------------------------------------------
// Loader
// -------------------------------------------------------------------------

// envPrefix is the environment variable prefix for godriverstation
// configuration. Variables are named GODS_<section>_<key>, e.g.,
// GODS_METRICS_ADDR.
const envPrefix = "GODS_"

// Load reads configuration from a YAML file at path, overlays environment
// variable overrides (GODS_ prefix), and merges on top of DefaultConfig().
// Missing fields inherit defaults.
//
// Environment variable mapping:
//
//	GODS_TEAM              -> team
//	GODS_ALLIANCE_SIDE     -> alliance.side
//	GODS_ALLIANCE_POSITION -> alliance.position
//	GODS_METRICS_ADDR      -> metrics.addr
//	GODS_METRICS_PATH      -> metrics.path
//	GODS_LOG_LEVEL         -> log.level
//	GODS_LOG_FORMAT        -> log.format
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := DefaultConfig()
	if err := loadDefaults(k, defaults); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load config from %s: %w", path, err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config from %s: %w", path, err)
	}

	return cfg, nil
}

// envKeyMapper transforms GODS_ALLIANCE_SIDE -> alliance.side. Strips the
// GODS_ prefix, lowercases, and replaces _ with .
func envKeyMapper(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "_", ".")
}

// loadDefaults marshals the default config into koanf as the base layer.
func loadDefaults(k *koanf.Koanf, defaults *Config) error {
	defaultMap := map[string]any{
		"team":              defaults.Team,
		"alliance.side":     defaults.Alliance.Side,
		"alliance.position": defaults.Alliance.Position,
		"metrics.addr":      defaults.Metrics.Addr,
		"metrics.path":      defaults.Metrics.Path,
		"log.level":         defaults.Log.Level,
		"log.format":        defaults.Log.Format,
	}

	for key, val := range defaultMap {
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

// -------------------------------------------------------------------------
// Validation
// -------------------------------------------------------------------------

// Validation errors.
var (
	// ErrEmptyMetricsAddr indicates the metrics listen address is empty.
	ErrEmptyMetricsAddr = errors.New("metrics.addr must not be empty")

	// ErrInvalidTeam indicates the configured team number is out of range.
	ErrInvalidTeam = errors.New("team must be between 1 and 9999")

	// ErrInvalidAllianceSide indicates alliance.side is neither red nor blue.
	ErrInvalidAllianceSide = errors.New("alliance.side must be red or blue")

	// ErrInvalidAlliancePosition indicates alliance.position is out of range.
	ErrInvalidAlliancePosition = errors.New("alliance.position must be 1-3")
)

// Validate checks the configuration for logical errors.
func Validate(cfg *Config) error {
	if cfg.Metrics.Addr == "" {
		return ErrEmptyMetricsAddr
	}

	if cfg.Team == 0 || cfg.Team > 9999 {
		return ErrInvalidTeam
	}

	side := strings.ToLower(cfg.Alliance.Side)
	if side != "red" && side != "blue" {
		return ErrInvalidAllianceSide
	}

	if cfg.Alliance.Position < 1 || cfg.Alliance.Position > 3 {
		return ErrInvalidAlliancePosition
	}

	return nil
}

// -------------------------------------------------------------------------
// Log Level Parsing
// -------------------------------------------------------------------------

// ParseLogLevel maps a configuration log level string to the corresponding
// slog.Level. Unknown values default to slog.LevelInfo.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
