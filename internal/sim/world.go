// Package sim moves a population of agents around a square world, and keeps the
// spatial indexes in step with them.
package sim

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	spatialgrid "github.com/bmharper/spatialgrid-go"
)

// Agent is a point that moves in a straight line, bouncing off the world edges
type Agent struct {
	ID  uuid.UUID
	Pos mgl64.Vec2
	Vel mgl64.Vec2
}

// Move records an agent changing position during one Step
type Move struct {
	Index int
	From  spatialgrid.Vec2[float64]
	To    spatialgrid.Vec2[float64]
}

type World struct {
	Size   float64
	Agents []Agent
	moves  []Move
}

func NewWorld(n int, size, maxSpeed float64, seed int64) *World {
	rng := rand.New(rand.NewSource(seed))
	w := &World{
		Size:   size,
		Agents: make([]Agent, n),
		moves:  make([]Move, 0, n),
	}
	for i := range w.Agents {
		w.Agents[i] = Agent{
			ID:  uuid.Must(uuid.NewRandomFromReader(rng)),
			Pos: mgl64.Vec2{rng.Float64() * size, rng.Float64() * size},
			Vel: mgl64.Vec2{(rng.Float64()*2 - 1) * maxSpeed, (rng.Float64()*2 - 1) * maxSpeed},
		}
	}
	return w
}

// Step advances every agent by dt seconds and returns the moves.
// The returned slice is reused by the next call.
func (w *World) Step(dt float64) []Move {
	w.moves = w.moves[:0]
	for i := range w.Agents {
		a := &w.Agents[i]
		from := a.Pos
		a.Pos = a.Pos.Add(a.Vel.Mul(dt))
		for axis := 0; axis < 2; axis++ {
			if a.Pos[axis] < 0 {
				a.Pos[axis] = -a.Pos[axis]
				a.Vel[axis] = -a.Vel[axis]
			} else if a.Pos[axis] > w.Size {
				a.Pos[axis] = 2*w.Size - a.Pos[axis]
				a.Vel[axis] = -a.Vel[axis]
			}
		}
		if a.Pos != from {
			w.moves = append(w.moves, Move{
				Index: i,
				From:  spatialgrid.Vec2FromMgl64(from),
				To:    spatialgrid.Vec2FromMgl64(a.Pos),
			})
		}
	}
	return w.moves
}

// Points yields every agent's position and ID, as FixedSizeGrid.Update expects
func (w *World) Points(yield func(spatialgrid.Vec2[float64], uuid.UUID) bool) {
	for i := range w.Agents {
		if !yield(spatialgrid.Vec2FromMgl64(w.Agents[i].Pos), w.Agents[i].ID) {
			return
		}
	}
}
