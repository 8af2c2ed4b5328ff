// Package config loads geocoord settings from defaults, an optional YAML file,
// GEOCOORD_* environment variables and command-line flags.
package config

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"strings"

	"github.com/kass/go-geo-coordinate/pkg/geo"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

// FileName is looked up in the working directory when no file is given.
const FileName = "geocoord.yaml"

// EnvPrefix prefixes environment overrides, e.g. GEOCOORD_LOG_LEVEL.
const EnvPrefix = "GEOCOORD_"

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// Config holds the CLI settings.
type Config struct {
	// Radius is the default sphere radius for spherical literals without one.
	Radius   float64 `koanf:"radius"`
	Output   string  `koanf:"output"`
	LogLevel string  `koanf:"log_level"`
	Workers  int     `koanf:"workers"`
	Metrics  bool    `koanf:"metrics"`
}

// Defaults returns the built-in settings.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"radius":    geo.EarthRadius,
		"output":    OutputTable,
		"log_level": "info",
		"workers":   runtime.NumCPU(),
		"metrics":   false,
	}
}

// Load builds the configuration.
// Precedence (highest to lowest): changed flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path, err := findConfigFile(cfgFile)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// GEOCOORD_LOG_LEVEL -> log_level
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the CLI cannot run with.
func (c *Config) Validate() error {
	if math.IsNaN(c.Radius) || math.IsInf(c.Radius, 0) || c.Radius < 0 {
		return fmt.Errorf("config: %w", &geo.FieldError{Field: "radius", Value: c.Radius, Reason: "must be a finite number >= 0"})
	}
	switch c.Output {
	case OutputTable, OutputJSON:
	default:
		return fmt.Errorf("config: unknown output %q (want %s or %s)", c.Output, OutputTable, OutputJSON)
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be at least 1, got %d", c.Workers)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// findConfigFile returns the explicit path, or FileName if present in the
// working directory. An explicit path that does not exist is an error.
func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return explicit, nil
	}
	if _, err := os.Stat(FileName); err == nil {
		return FileName, nil
	}
	return "", nil
}
