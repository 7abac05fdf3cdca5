// Package config holds the gridbench harness settings.
// Defaults live here; environment variables override them, and command line
// flags override both.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// =============================================================================
// WORLD CONFIGURATION
// =============================================================================

// WorldConfig describes the simulated agents and the square world they move in.
type WorldConfig struct {
	Agents    int     // Number of simulated agents
	Size      float64 // World edge length, in world units
	MaxSpeed  float64 // Agent speed limit, in world units per second
	Seed      int64   // Random seed for placement and velocities
	Precision float64 // UnboundedSpatialHash buckets per world unit
}

// DefaultWorld returns the default world configuration.
func DefaultWorld() WorldConfig {
	return WorldConfig{
		Agents:    100_000,
		Size:      1000,
		MaxSpeed:  25,
		Seed:      1,
		Precision: 0.1, // 10x10 unit buckets
	}
}

// WorldFromEnv returns world configuration with environment variable overrides.
func WorldFromEnv() WorldConfig {
	cfg := DefaultWorld()

	if n := getEnvInt("GRIDBENCH_AGENTS", 0); n > 0 {
		cfg.Agents = n
	}
	if s := getEnvFloat("GRIDBENCH_WORLD_SIZE", 0); s > 0 {
		cfg.Size = s
	}
	if v := getEnvFloat("GRIDBENCH_MAX_SPEED", -1); v >= 0 {
		cfg.MaxSpeed = v
	}
	if s := getEnvInt("GRIDBENCH_SEED", 0); s != 0 {
		cfg.Seed = int64(s)
	}
	if p := getEnvFloat("GRIDBENCH_HASH_PRECISION", 0); p > 0 {
		cfg.Precision = p
	}

	return cfg
}

// =============================================================================
// GRID CONFIGURATION
// =============================================================================

// GridConfig holds the FixedSizeGrid geometry and query load.
type GridConfig struct {
	CellSize        float64 // World units per cell edge
	QueryRadius     float64 // Radius of each neighbour query
	QueriesPerFrame int     // Neighbour queries issued per frame
	Workers         int     // Goroutines issuing queries against each snapshot
}

// DefaultGrid returns the default grid configuration.
func DefaultGrid() GridConfig {
	return GridConfig{
		CellSize:        20,
		QueryRadius:     30,
		QueriesPerFrame: 10_000,
		Workers:         4,
	}
}

// GridFromEnv returns grid configuration with environment variable overrides.
func GridFromEnv() GridConfig {
	cfg := DefaultGrid()

	if c := getEnvFloat("GRIDBENCH_CELL_SIZE", 0); c > 0 {
		cfg.CellSize = c
	}
	if r := getEnvFloat("GRIDBENCH_QUERY_RADIUS", 0); r > 0 {
		cfg.QueryRadius = r
	}
	if q := getEnvInt("GRIDBENCH_QUERIES", 0); q > 0 {
		cfg.QueriesPerFrame = q
	}
	if w := getEnvInt("GRIDBENCH_WORKERS", 0); w > 0 {
		cfg.Workers = w
	}

	return cfg
}

// =============================================================================
// RUN CONFIGURATION
// =============================================================================

// RunConfig controls pacing, logging and the metrics endpoint.
type RunConfig struct {
	FPS         int    // Target frames per second
	Frames      int    // Stop after this many frames, 0 = run until interrupted
	MetricsAddr string // Listen address for /metrics, empty = disabled
	LogLevel    string // debug, info, warn or error
}

// DefaultRun returns the default run configuration.
func DefaultRun() RunConfig {
	return RunConfig{
		FPS:      30,
		Frames:   300,
		LogLevel: "info",
	}
}

// RunFromEnv returns run configuration with environment variable overrides.
func RunFromEnv() RunConfig {
	cfg := DefaultRun()

	if f := getEnvInt("GRIDBENCH_FPS", 0); f > 0 {
		cfg.FPS = f
	}
	if f := getEnvInt("GRIDBENCH_FRAMES", -1); f >= 0 {
		cfg.Frames = f
	}
	if a := os.Getenv("GRIDBENCH_METRICS_ADDR"); a != "" {
		cfg.MetricsAddr = a
	}
	if l := os.Getenv("GRIDBENCH_LOG_LEVEL"); l != "" {
		cfg.LogLevel = l
	}

	return cfg
}

// =============================================================================
// COMPLETE CONFIGURATION
// =============================================================================

// Config holds the complete harness configuration.
type Config struct {
	World WorldConfig
	Grid  GridConfig
	Run   RunConfig
}

// Load returns the complete configuration with environment overrides.
func Load() Config {
	return Config{
		World: WorldFromEnv(),
		Grid:  GridFromEnv(),
		Run:   RunFromEnv(),
	}
}

// Validate rejects geometry the index cannot work with.
func (c Config) Validate() error {
	if c.World.Agents <= 0 {
		return fmt.Errorf("agents must be positive, got %d", c.World.Agents)
	}
	if !(c.World.Size > 0) {
		return fmt.Errorf("world size must be positive, got %v", c.World.Size)
	}
	if !(c.Grid.CellSize > 0) {
		return fmt.Errorf("cell size must be positive, got %v", c.Grid.CellSize)
	}
	if !(c.World.Precision > 0) {
		return fmt.Errorf("hash precision must be positive, got %v", c.World.Precision)
	}
	if c.Grid.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Grid.Workers)
	}
	if c.Run.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.Run.FPS)
	}
	if _, err := c.Run.Level(); err != nil {
		return err
	}
	return nil
}

// GridDims is the number of cells per axis needed to cover the world
func (c Config) GridDims() int {
	n := int(c.World.Size / c.Grid.CellSize)
	if float64(n)*c.Grid.CellSize < c.World.Size {
		n++
	}
	return max(n, 1)
}

// Level parses LogLevel
func (r RunConfig) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(r.LogLevel))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", r.LogLevel, err)
	}
	return l, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
