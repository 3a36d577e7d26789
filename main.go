package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/ikkentim/AIWorld-sub000/config"
	"github.com/ikkentim/AIWorld-sub000/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config and snapshots")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config, then time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = config, unlimited if unset)")
	snapshot := flag.Bool("snapshot", false, "Save a snapshot when the run ends (needs -output-dir)")
	inspect := flag.Int("inspect", 0, "Log the fields of this agent id when the run ends")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides
	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Sim.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	ticks := *maxTicks
	if ticks == 0 {
		ticks = cfg.Sim.MaxTicks
	}

	w, err := game.NewWorld(cfg, game.Options{
		Seed:      rngSeed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
	})
	if err != nil {
		slog.Error("failed to create world", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := w.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}()

	slog.Info("starting simulation",
		"seed", rngSeed,
		"stats_window", cfg.Telemetry.StatsWindow,
		"max_ticks", ticks,
	)

	for ticks == 0 || int(w.Tick()) < ticks {
		w.Step()
	}
	slog.Info("max ticks reached", "tick", w.Tick())

	if *snapshot {
		w.SaveSnapshot()
	}
	if *inspect != 0 {
		if attrs, ok := w.Describe(*inspect); ok {
			slog.LogAttrs(context.Background(), slog.LevelInfo, "agent", attrs...)
		} else {
			slog.Warn("no such agent", "id", *inspect)
		}
	}
}
