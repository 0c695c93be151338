package main

import (
	"flag"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/michealparks/lib-ai/config"
	"github.com/michealparks/lib-ai/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	record := flag.String("record", "", "Record the session to a SQLite file (empty = config setting)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config, then time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 0, "Simulation ticks per update call (0 = use config)")

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

	// Use config stats window if not overridden by CLI
	statsWindowSec := cfg.Telemetry.StatsWindow
	if *statsWindow > 0 {
		statsWindowSec = *statsWindow
	}

	// The flag wins; otherwise recording follows the config switch.
	recordPath := *record
	if recordPath == "" && cfg.Record.Enabled {
		recordPath = cfg.Record.Path
	}

	opts := game.Options{
		Seed:           *seed,
		Headless:       *headless,
		LogStats:       *logStats,
		StatsWindowSec: statsWindowSec,
		SnapshotDir:    *snapshotDir,
		OutputDir:      *outputDir,
		StepsPerUpdate: *stepsPerUpdate,
		RecordPath:     recordPath,
	}

	if *headless {
		// Headless mode - pure CPU simulation, no raylib needed
		app, err := game.NewApp(opts)
		if err != nil {
			slog.Error("failed to initialize", "error", err)
			os.Exit(1)
		}
		defer app.Unload()

		slog.Info("starting headless simulation",
			"max_ticks", *maxTicks,
			"steps_per_update", app.StepsPerUpdate(),
		)

		for {
			app.UpdateHeadless()

			if *maxTicks > 0 && int(app.Tick()) >= *maxTicks {
				slog.Info("max ticks reached", "tick", app.Tick())
				return
			}
		}
	} else {
		// Graphical mode
		rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Steering Flock")
		defer rl.CloseWindow()

		rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

		app, err := game.NewApp(opts)
		if err != nil {
			slog.Error("failed to initialize", "error", err)
			os.Exit(1)
		}
		defer app.Unload()

		for !rl.WindowShouldClose() {
			app.Update()
			app.Draw()

			if *maxTicks > 0 && int(app.Tick()) >= *maxTicks {
				break
			}
		}
	}
}
