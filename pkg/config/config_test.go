package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kass/go-geo-coordinate/pkg/geo"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Float64("radius", geo.EarthRadius, "")
	fs.String("output", OutputTable, "")
	fs.String("log-level", "info", "")
	fs.Int("workers", 1, "")
	fs.Bool("metrics", false, "")
	return fs
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "geocoord.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, geo.EarthRadius, cfg.Radius)
	assert.Equal(t, OutputTable, cfg.Output)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.GreaterOrEqual(t, cfg.Workers, 1)
	assert.False(t, cfg.Metrics)
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, "radius: 1\noutput: json\nlog_level: debug\nworkers: 3\nmetrics: true\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.Radius)
	assert.Equal(t, OutputJSON, cfg.Output)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
	assert.Equal(t, 3, cfg.Workers)
	assert.True(t, cfg.Metrics)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfig(t, "radius: 1\nworkers: 3\noutput: json\n")
	t.Setenv("GEOCOORD_WORKERS", "5")
	t.Setenv("GEOCOORD_LOG_LEVEL", "warn")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--radius", "2.5", "--log-level", "error"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.Radius, "flag beats file")
	assert.Equal(t, 5, cfg.Workers, "env beats file")
	assert.Equal(t, "error", cfg.LogLevel, "flag beats env")
	assert.Equal(t, OutputJSON, cfg.Output, "unchanged flag does not override file")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{Radius: 1, Output: OutputTable, LogLevel: "info", Workers: 1}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative radius", func(c *Config) { c.Radius = -1 }},
		{"unknown output", func(c *Config) { c.Output = "xml" }},
		{"no workers", func(c *Config) { c.Workers = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateRadiusIsInvalidArgument(t *testing.T) {
	cfg := Config{Radius: -3, Output: OutputTable, LogLevel: "info", Workers: 1}
	assert.ErrorIs(t, cfg.Validate(), geo.ErrInvalidArgument)
}
