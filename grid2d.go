package spatialgrid

import (
	"fmt"
	"strings"
)

// Grid2D is a dense, row-major 2D array.
// Its length is always exactly width*height.
type Grid2D[T any] struct {
	size IVec2
	data []T
}

func NewGrid2D[T any](size IVec2, fill T) *Grid2D[T] {
	g := &Grid2D[T]{
		size: size,
		data: make([]T, size.X*size.Y),
	}
	g.Fill(fill)
	return g
}

func (g *Grid2D[T]) Size() IVec2 { return g.size }
func (g *Grid2D[T]) Width() int { return g.size.X }
func (g *Grid2D[T]) Height() int { return g.size.Y }
func (g *Grid2D[T]) Len() int { return len(g.data) }

// Index returns the flat index of xy. xy is not validated.
func (g *Grid2D[T]) Index(xy IVec2) int {
	return xy.Y*g.size.X + xy.X
}

// Contains returns true if xy addresses a cell of the grid
func (g *Grid2D[T]) Contains(xy IVec2) bool {
	return xy.X >= 0 && xy.Y >= 0 && xy.X < g.size.X && xy.Y < g.size.Y
}

func (g *Grid2D[T]) GetDirect(i int) T {
	return g.data[i]
}

func (g *Grid2D[T]) SetDirect(i int, v T) {
	g.data[i] = v
}

func (g *Grid2D[T]) At(xy IVec2) T {
	return g.data[g.Index(xy)]
}

func (g *Grid2D[T]) Set(xy IVec2, v T) {
	g.data[g.Index(xy)] = v
}

// Get is the bounds checked version of At
func (g *Grid2D[T]) Get(xy IVec2) (T, bool) {
	if !g.Contains(xy) {
		var zero T
		return zero, false
	}
	return g.data[g.Index(xy)], true
}

func (g *Grid2D[T]) Fill(v T) {
	for i := range g.data {
		g.data[i] = v
	}
}

// String dumps the grid one row per line, for debugging
func (g *Grid2D[T]) String() string {
	cells := make([]string, len(g.data))
	width := 0
	for i, v := range g.data {
		cells[i] = fmt.Sprint(v)
		width = max(width, len(cells[i]))
	}
	sb := strings.Builder{}
	sb.WriteString("[\n")
	for y := 0; y < g.size.Y; y++ {
		sb.WriteString("    [")
		for x := 0; x < g.size.X; x++ {
			fmt.Fprintf(&sb, " %*s", width, cells[y*g.size.X+x])
		}
		sb.WriteString("],\n")
	}
	sb.WriteString("]")
	return sb.String()
}
