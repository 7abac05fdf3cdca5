// gridbench simulates moving agents and measures how fast the spatial indexes can be
// rebuilt and queried every frame.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	spatialgrid "github.com/bmharper/spatialgrid-go"
	"github.com/bmharper/spatialgrid-go/internal/config"
	"github.com/bmharper/spatialgrid-go/internal/metrics"
	"github.com/bmharper/spatialgrid-go/internal/sim"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("gridbench: failed", "err", err)
		os.Exit(1)
	}
}

// loadConfig layers the configuration: defaults, then envFile and the environment, then args.
// A missing envFile is not an error. Variables already set in the environment win over envFile.
func loadConfig(args []string, envFile string) (config.Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config.Config{}, fmt.Errorf("loading %s: %w", envFile, err)
	}

	cfg := config.Load()
	fl := flag.NewFlagSet("gridbench", flag.ContinueOnError)
	fl.IntVar(&cfg.World.Agents, "agents", cfg.World.Agents, "Number of agents")
	fl.Float64Var(&cfg.World.Size, "world", cfg.World.Size, "World edge length")
	fl.Float64Var(&cfg.World.Precision, "precision", cfg.World.Precision, "Hash buckets per world unit")
	fl.Float64Var(&cfg.Grid.CellSize, "cell", cfg.Grid.CellSize, "Grid cell size")
	fl.Float64Var(&cfg.Grid.QueryRadius, "radius", cfg.Grid.QueryRadius, "Query radius")
	fl.IntVar(&cfg.Grid.QueriesPerFrame, "queries", cfg.Grid.QueriesPerFrame, "Radius queries per frame")
	fl.IntVar(&cfg.Grid.Workers, "workers", cfg.Grid.Workers, "Query goroutines")
	fl.IntVar(&cfg.Run.FPS, "fps", cfg.Run.FPS, "Target frames per second")
	fl.IntVar(&cfg.Run.Frames, "frames", cfg.Run.Frames, "Frames to run, 0 = until interrupted")
	fl.StringVar(&cfg.Run.MetricsAddr, "metrics", cfg.Run.MetricsAddr, "Serve /metrics on this address")
	fl.StringVar(&cfg.Run.LogLevel, "log", cfg.Run.LogLevel, "Log level: debug|info|warn|error")
	if err := fl.Parse(args); err != nil {
		return config.Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(args []string) error {
	cfg, err := loadConfig(args, ".env")
	if err != nil {
		return err
	}
	level, _ := cfg.Run.Level()
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Run.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.Run.MetricsAddr,
			Handler:           m.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("gridbench: serving metrics", "addr", cfg.Run.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("gridbench: metrics server", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	runner := sim.NewRunner(cfg, m, log)
	if err := runner.Run(ctx); err != nil {
		return err
	}

	center := spatialgrid.V2(cfg.World.Size/2, cfg.World.Size/2)
	id, err := runner.Nearest(center)
	if err != nil {
		return fmt.Errorf("nearest agent: %w", err)
	}
	log.Info("gridbench: nearest agent to world center", "id", id)
	return nil
}
