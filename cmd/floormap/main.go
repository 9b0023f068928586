package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"
	"github.com/spf13/cobra"

	"github.com/aredtech/floormap/internal/config"
	"github.com/aredtech/floormap/internal/logging"
	"github.com/aredtech/floormap/internal/overpass"
	"github.com/aredtech/floormap/internal/tui"
)

var (
	flagConfig   string
	flagEndpoint string
	flagLat      float64
	flagLon      float64
	flagZoom     float64
	flagLogFile  string
	flagLogLevel string
)

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("endpoint") {
		cfg.Overpass.Endpoint = flagEndpoint
	}
	if cmd.Flags().Changed("lat") {
		cfg.Map.Lat = flagLat
	}
	if cmd.Flags().Changed("lon") {
		cfg.Map.Lon = flagLon
	}
	if cmd.Flags().Changed("zoom") {
		cfg.Map.Zoom = flagZoom
	}
	if cmd.Flags().Changed("log-file") {
		cfg.Log.File = flagLogFile
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = flagLogLevel
	}

	// stdout belongs to the TUI; logs go to a file when configured
	closeLog, err := logging.Setup(cfg.Log.File, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer closeLog()

	client := overpass.NewClient(
		cfg.Overpass.Endpoint,
		time.Duration(cfg.Overpass.HTTPTimeoutSec)*time.Second,
		cfg.Overpass.TimeoutSec,
	)
	m := tui.New(client, tui.Options{
		Center:   orb.Point{cfg.Map.Lon, cfg.Map.Lat},
		Zoom:     cfg.Map.Zoom,
		MinZoom:  cfg.Map.MinZoom,
		Debounce: time.Duration(cfg.Map.DebounceMs) * time.Millisecond,
	})

	slog.Info("floormap starting", "endpoint", cfg.Overpass.Endpoint,
		"lat", cfg.Map.Lat, "lon", cfg.Map.Lon, "zoom", cfg.Map.Zoom)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	return err
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "floormap",
		Short: "Overlay floor plans on building footprints in the terminal",
		Long: "floormap renders OpenStreetMap building footprints on an interactive\n" +
			"terminal map and lets you pin a floor-plan image to a selected building,\n" +
			"with scaling, rotation, opacity, and masking to the footprint silhouette.",
		Version:      "0.1.0",
		SilenceUsage: true,
		RunE:         run,
	}
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "path to config file")
	rootCmd.Flags().StringVar(&flagEndpoint, "endpoint", "", "Overpass API endpoint")
	rootCmd.Flags().Float64Var(&flagLat, "lat", 0, "initial latitude")
	rootCmd.Flags().Float64Var(&flagLon, "lon", 0, "initial longitude")
	rootCmd.Flags().Float64Var(&flagZoom, "zoom", 0, "initial zoom level")
	rootCmd.Flags().StringVar(&flagLogFile, "log-file", "", "write logs to this file")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")

	if err := rootCmd.Execute(); err != nil {
		log.SetOutput(os.Stderr)
		log.Fatal(err)
	}
}
