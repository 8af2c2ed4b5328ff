package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/kass/go-geo-coordinate/pkg/config"
	"github.com/kass/go-geo-coordinate/pkg/geo"
	"github.com/kass/go-geo-coordinate/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries state shared by the subcommands once flags are parsed.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
	pool    *metrics.PoolCollector
	logOut  io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zerolog.Nop(), logOut: os.Stderr}

	rootCmd := &cobra.Command{
		Use:   "geocoord",
		Short: "Shared Cartesian and spherical coordinates",
		Long: `Work with Cartesian and spherical coordinates as shared, immutable values:
compare them, measure straight-line distances across representations and
exercise the process-wide value pools.

Coordinates are written as cart:x,y,z or sph:lat,lon[,radius]; a bare
lat,lon[,radius] is spherical. A missing radius uses --radius.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.pool == nil {
				return nil
			}
			defer geo.SetPoolObserver(nil)
			return a.reportMetrics(cmd.OutOrStdout())
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "Config file (default ./"+config.FileName+" if present)")
	pf.Float64P("radius", "r", geo.EarthRadius, "Default sphere radius for spherical coordinates")
	pf.StringP("output", "o", config.OutputTable, "Output format: table or json")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.IntP("workers", "w", runtime.NumCPU(), "Number of worker goroutines")
	pf.Bool("metrics", false, "Record pool metrics and print them after the command")

	rootCmd.AddCommand(
		a.distanceCmd(),
		a.equalCmd(),
		a.projectCmd(),
		a.convertCmd(),
		a.nearestCmd(),
		a.stressCmd(),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = zerolog.New(zerolog.ConsoleWriter{Out: a.logOut}).
		Level(cfg.Level()).
		With().Timestamp().Str("cmd", cmd.Name()).
		Logger()

	if cfg.Metrics {
		collector, err := metrics.NewPoolCollector(prometheus.NewRegistry())
		if err != nil {
			return fmt.Errorf("failed to register pool metrics: %w", err)
		}
		collector.Sync()
		geo.SetPoolObserver(collector)
		a.pool = collector
	}

	a.logger.Debug().
		Float64("radius", cfg.Radius).
		Str("output", cfg.Output).
		Int("workers", cfg.Workers).
		Bool("metrics", cfg.Metrics).
		Msg("configuration loaded")
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
