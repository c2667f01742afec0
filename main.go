package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/tidepool/api"
	"github.com/pthm-cable/tidepool/config"
	"github.com/pthm-cable/tidepool/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in years (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, snapshots and config")
	saveDir := flag.String("save-dir", "saves", "Directory for save slot exports (empty = disabled)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 0, "Simulation ticks per update (0 = use config)")
	addr := flag.String("addr", "", "API listen address (empty = use config)")
	debugAddr := flag.String("debug-addr", "", "Metrics/pprof listen address (empty = use config)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}
	if *stepsPerUpdate > 0 {
		cfg.Simulation.StepsPerUpdate = *stepsPerUpdate
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *debugAddr != "" {
		cfg.Server.DebugAddr = *debugAddr
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	runID := uuid.NewString()

	// JSON to stdout for structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("run_id", runID)
	slog.SetDefault(logger)
	// Keep stdout pure JSON; perf tables go to stderr.
	game.SetLogWriter(os.Stderr)

	runDir := *outputDir
	if runDir != "" {
		runDir = filepath.Join(runDir, runID)
	}

	exporter := &saveExporter{dir: *saveDir, compress: cfg.Telemetry.CompressSnapshots}
	g, err := game.NewGameWithOptions(game.Options{
		Seed:      rngSeed,
		Config:    cfg,
		SaveHook:  exporter.Export,
		OutputDir: runDir,
		LogStats:  *logStats,
		RunID:     runID,
	})
	if err != nil {
		slog.Error("failed to create world", "error", err)
		os.Exit(1)
	}
	defer g.Close()
	exporter.game = g

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := game.NewRunner(g, cfg.Simulation, cfg.Server.CommandQueue)
	runner.SetMaxTicks(*maxTicks)

	if cfg.Server.DebugAddr != "" {
		dbg := api.StartDebugServer(cfg.Server.DebugAddr)
		defer dbg.Close()
	}

	serverErr := make(chan error, 1)
	if cfg.Server.Addr != "" {
		srv := api.NewServer(runner, cfg.Server)
		runner.OnPublish(srv.Publish)
		go func() { serverErr <- srv.Start(ctx) }()
	} else {
		runner.OnPublish(api.ObserveView)
	}

	slog.Info("starting simulation",
		"seed", rngSeed,
		"width", cfg.World.Width,
		"height", cfg.World.Height,
		"minimum", cfg.Population.Minimum,
		"max_ticks", *maxTicks,
		"steps_per_update", cfg.Simulation.StepsPerUpdate,
		"addr", cfg.Server.Addr,
	)

	if err := runner.Run(ctx); err != nil {
		slog.Error("simulation stopped", "error", err)
		os.Exit(1)
	}
	stop()

	if cfg.Server.Addr != "" {
		if err := <-serverErr; err != nil {
			slog.Error("api server error", "error", err)
		}
	}
	slog.Info("simulation finished", "tick", g.Tick(), "year", g.Year(), "creatures", g.CreatureCount())
}
