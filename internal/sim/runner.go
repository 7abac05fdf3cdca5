package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/colega/zeropool"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	spatialgrid "github.com/bmharper/spatialgrid-go"
	"github.com/bmharper/spatialgrid-go/internal/config"
	"github.com/bmharper/spatialgrid-go/internal/metrics"
)

type (
	gridItem = spatialgrid.Item[float64, uuid.UUID]
	hashItem = spatialgrid.HashItem[spatialgrid.Vec2[float64], int]
)

// FrameStats summarizes one simulated frame
type FrameStats struct {
	Moves      int
	Rebuild    time.Duration
	HashUpdate time.Duration
	Queries    time.Duration
	Neighbours int64
	HashMisses int
	Mismatches int64
}

// Runner drives the world, rebuilds a FixedSizeGrid snapshot every frame, mirrors the
// movement into an UnboundedSpatialHash, and queries the snapshot from several goroutines.
type Runner struct {
	cfg      config.Config
	world    *World
	snapshot *spatialgrid.Snapshot[float64, uuid.UUID]
	hash     *spatialgrid.SyncHash[spatialgrid.Vec2[float64], int]
	buffers  zeropool.Pool[[]gridItem]
	metrics  *metrics.Metrics
	log      *slog.Logger
}

func NewRunner(cfg config.Config, m *metrics.Metrics, log *slog.Logger) *Runner {
	w := NewWorld(cfg.World.Agents, cfg.World.Size, cfg.World.MaxSpeed, cfg.World.Seed)
	dims := cfg.GridDims()
	half := cfg.World.Size / 2
	r := &Runner{
		cfg:      cfg,
		world:    w,
		snapshot: spatialgrid.NewSnapshot[float64, uuid.UUID](spatialgrid.V2(half, half), cfg.Grid.CellSize, spatialgrid.IVec2{X: dims, Y: dims}),
		hash:     spatialgrid.NewSyncHash[spatialgrid.Vec2[float64], int](cfg.World.Precision),
		buffers:  zeropool.New(func() []gridItem { return make([]gridItem, 0, 64) }),
		metrics:  m,
		log:      log,
	}
	r.hash.Batch(func(h *spatialgrid.UnboundedSpatialHash[spatialgrid.Vec2[float64], int]) {
		for i := range w.Agents {
			h.Insert(spatialgrid.Vec2FromMgl64(w.Agents[i].Pos), i)
		}
	})
	return r
}

// Run simulates frames at the configured rate until the frame budget is used up or ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	fps := r.cfg.Run.FPS
	limiter := rate.NewLimiter(rate.Limit(fps), 1)
	dt := 1 / float64(fps)

	r.log.Info("gridbench: starting",
		"agents", len(r.world.Agents),
		"grid", r.cfg.GridDims(),
		"cell_size", r.cfg.Grid.CellSize,
		"workers", r.cfg.Grid.Workers,
		"fps", fps)

	var window FrameStats
	for frame := 0; r.cfg.Run.Frames == 0 || frame < r.cfg.Run.Frames; frame++ {
		if err := limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				r.log.Info("gridbench: stopping", "frames", frame)
				return nil
			}
			return fmt.Errorf("frame %d: %w", frame, err)
		}

		s := r.Frame(dt, int64(frame))
		window.Moves += s.Moves
		window.Rebuild += s.Rebuild
		window.HashUpdate += s.HashUpdate
		window.Queries += s.Queries
		window.Neighbours += s.Neighbours
		window.HashMisses += s.HashMisses
		window.Mismatches += s.Mismatches

		if (frame+1)%fps == 0 {
			r.logWindow(frame+1, fps, window)
			window = FrameStats{}
		}
	}
	r.log.Info("gridbench: done", "frames", r.cfg.Run.Frames)
	return nil
}

func (r *Runner) logWindow(frame, n int, w FrameStats) {
	queries := int64(n * r.cfg.Grid.QueriesPerFrame)
	perQuery := 0.0
	if queries > 0 {
		perQuery = float64(w.Neighbours) / float64(queries)
	}
	level := slog.LevelInfo
	if w.Mismatches > 0 || w.HashMisses > 0 {
		level = slog.LevelWarn
	}
	r.log.Log(context.Background(), level, "gridbench: frames",
		"frame", frame,
		"avg_rebuild", w.Rebuild/time.Duration(n),
		"avg_hash_update", w.HashUpdate/time.Duration(n),
		"avg_queries", w.Queries/time.Duration(n),
		"neighbours_per_query", perQuery,
		"moves", w.Moves,
		"hash_misses", w.HashMisses,
		"mismatches", w.Mismatches)
}

// Frame advances the world by dt and runs one frame's worth of indexing and queries
func (r *Runner) Frame(dt float64, frame int64) FrameStats {
	var s FrameStats
	moves := r.world.Step(dt)
	s.Moves = len(moves)

	start := time.Now()
	g := r.snapshot.Publish(r.world.Points, len(r.world.Agents))
	s.Rebuild = time.Since(start)
	r.metrics.Rebuild.Observe(s.Rebuild.Seconds())

	start = time.Now()
	r.hash.Batch(func(h *spatialgrid.UnboundedSpatialHash[spatialgrid.Vec2[float64], int]) {
		for _, m := range moves {
			if !h.Update(m.From, m.To) {
				s.HashMisses++
			}
		}
	})
	s.HashUpdate = time.Since(start)
	r.metrics.HashUpdate.Observe(s.HashUpdate.Seconds())
	r.metrics.HashMisses.Add(float64(s.HashMisses))
	if s.HashMisses > 0 {
		r.log.Debug("gridbench: hash updates missed", "frame", frame, "misses", s.HashMisses)
	}

	start = time.Now()
	s.Neighbours, s.Mismatches = r.query(g, frame)
	s.Queries = time.Since(start)
	r.metrics.QueryBatch.Observe(s.Queries.Seconds())
	if q := r.cfg.Grid.QueriesPerFrame; q > 0 {
		r.metrics.Neighbours.Set(float64(s.Neighbours) / float64(q))
	}
	r.metrics.Frames.Inc()
	return s
}

// query runs the frame's radius queries against g, split across the workers.
// Each worker's first query is repeated on the hash as a cross check.
func (r *Runner) query(g *spatialgrid.FixedSizeGrid[float64, uuid.UUID], frame int64) (neighbours, mismatches int64) {
	var total, bad atomic.Int64
	var wg sync.WaitGroup
	workers := r.cfg.Grid.Workers
	radius := r.cfg.Grid.QueryRadius
	size := r.cfg.World.Size
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(frame*int64(workers) + int64(w)))
			buf := r.buffers.Get()
			defer func() { r.buffers.Put(buf[:0]) }()
			var check []hashItem
			n := 0
			for i := w; i < r.cfg.Grid.QueriesPerFrame; i += workers {
				c := spatialgrid.V2(rng.Float64()*size, rng.Float64()*size)
				buf = g.WithinDistance(c, radius, buf)
				n += len(buf)
				if i == w {
					check = r.hash.InRadius(c, radius, check)
					if len(check) == len(buf) {
						r.metrics.CrossChecks.WithLabelValues("match").Inc()
					} else {
						r.metrics.CrossChecks.WithLabelValues("mismatch").Inc()
						bad.Add(1)
					}
				}
			}
			total.Add(int64(n))
		}(w)
	}
	wg.Wait()
	return total.Load(), bad.Load()
}

// ErrNoAgents is returned by Nearest when the world is empty
var ErrNoAgents = errors.New("no agents")

// Nearest returns the agent closest to p, according to the latest snapshot
func (r *Runner) Nearest(p spatialgrid.Vec2[float64]) (uuid.UUID, error) {
	item, ok := r.snapshot.Load().NearestNeighbour(p)
	if !ok {
		return uuid.Nil, ErrNoAgents
	}
	return item.Data, nil
}
