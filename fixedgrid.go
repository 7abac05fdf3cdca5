package spatialgrid

import (
	"iter"
	"math"
)

// emptyCell marks a grid cell that has no items
const emptyCell = -1

// Item is a position with its payload
type Item[F Float, T any] struct {
	Pos  Vec2[F]
	Data T
}

// FixedSizeGrid is a bucket grid over a bounded world rectangle.
// The whole index is rebuilt by Update, typically once per frame.
// Points outside the rectangle are clamped into the nearest edge cell.
//
// Query methods never mutate the grid, so any number of goroutines may query a grid
// that is not being updated.
type FixedSizeGrid[F Float, T any] struct {
	mapping  CoordMapping[F]
	cellSize F
	cells    []int        // cell key of items[i], ascending after Update
	items    []Item[F, T] // sorted alongside cells
	grid     *Grid2D[int] // offset of the first item of each cell, or emptyCell

	// copied out of mapping and grid for the classification hot path
	width       int
	height      int
	scale       Vec2[F]
	translation Vec2[F]
}

// NewFixedSizeGrid creates a grid of dims cells, each cellSize wide, centered on anchor.
// cellSize must be positive and dims must be at least 1x1.
func NewFixedSizeGrid[F Float, T any](anchor Vec2[F], cellSize F, dims IVec2) *FixedSizeGrid[F, T] {
	worldSize := Vec2[F]{F(dims.X) * cellSize, F(dims.Y) * cellSize}
	m := NewCoordMapping(RectFromCenterSize(anchor, worldSize), dims)
	return &FixedSizeGrid[F, T]{
		mapping:     m,
		cellSize:    cellSize,
		grid:        NewGrid2D(dims, emptyCell),
		width:       dims.X,
		height:      dims.Y,
		scale:       m.scale,
		translation: m.translation,
	}
}

func (g *FixedSizeGrid[F, T]) Size() IVec2 { return g.mapping.dest }
func (g *FixedSizeGrid[F, T]) SrcRect() Rect[F] { return g.mapping.src }
func (g *FixedSizeGrid[F, T]) CellSize() F { return g.cellSize }
func (g *FixedSizeGrid[F, T]) Mapping() CoordMapping[F] { return g.mapping }

// Len returns the number of items stored by the last Update
func (g *FixedSizeGrid[F, T]) Len() int {
	return len(g.items)
}

func (g *FixedSizeGrid[F, T]) ContainsCell(xy IVec2) bool {
	return g.grid.Contains(xy)
}

// MappedPoint returns the unclamped, floored grid coordinate of p
func (g *FixedSizeGrid[F, T]) MappedPoint(p Vec2[F]) Vec2[F] {
	return g.mapping.MapPoint(p)
}

// IndexClamped returns the flat cell index of p, clamped into the grid.
// This is the reference classification. Update uses cellIndex, which must always agree with it.
func (g *FixedSizeGrid[F, T]) IndexClamped(p Vec2[F]) int {
	return g.grid.Index(g.mapping.MapCellClamped(p))
}

// cellIndex is the classification fast path used by Update.
// It skips the floor: truncation equals floor for non-negative values, and negative
// values clamp to zero either way.
func (g *FixedSizeGrid[F, T]) cellIndex(p Vec2[F]) int {
	x := clampAxis(F(p.X*g.scale.X)+g.translation.X, g.width)
	y := clampAxis(F(p.Y*g.scale.Y)+g.translation.Y, g.height)
	return y*g.width + x
}

// Reserve enough space for the given number of items
func (g *FixedSizeGrid[F, T]) Reserve(size int) {
	if cap(g.items) < size {
		g.cells = make([]int, 0, size)
		g.items = make([]Item[F, T], 0, size)
	}
}

// Update replaces the entire contents of the grid with points.
func (g *FixedSizeGrid[F, T]) Update(points iter.Seq2[Vec2[F], T]) {
	// drop references to old payloads before reusing the buffer
	clear(g.items)
	g.cells = g.cells[:0]
	g.items = g.items[:0]
	for p, d := range points {
		g.cells = append(g.cells, g.cellIndex(p))
		g.items = append(g.items, Item[F, T]{Pos: p, Data: d})
	}
	g.rebuild()
}

// UpdateItems is Update for a slice of items
func (g *FixedSizeGrid[F, T]) UpdateItems(items []Item[F, T]) {
	g.Reserve(len(items))
	g.Update(func(yield func(Vec2[F], T) bool) {
		for i := range items {
			if !yield(items[i].Pos, items[i].Data) {
				return
			}
		}
	})
}

func (g *FixedSizeGrid[F, T]) rebuild() {
	if len(g.cells) > 1 {
		sortCellsAndItems(g.cells, g.items, 0, len(g.cells)-1)
	}
	g.grid.Fill(emptyCell)
	for i, c := range g.cells {
		if i == 0 || g.cells[i-1] != c {
			g.grid.SetDirect(c, i)
		}
	}
}

// run returns the half open range of items in cell key, or false if the cell is empty
func (g *FixedSizeGrid[F, T]) run(key int) (start, end int, ok bool) {
	start = g.grid.GetDirect(key)
	if start == emptyCell {
		return 0, 0, false
	}
	end = start + 1
	for end < len(g.cells) && g.cells[end] == key {
		end++
	}
	return start, end, true
}

// CellItems returns the items in the cell containing p, or nil if that cell is empty.
// The returned slice is owned by the grid and is only valid until the next Update.
func (g *FixedSizeGrid[F, T]) CellItems(p Vec2[F]) []Item[F, T] {
	start, end, ok := g.run(g.IndexClamped(p))
	if !ok {
		return nil
	}
	return g.items[start:end:end]
}

// CellData iterates the payloads in the cell containing p.
// Returns false if that cell is empty.
func (g *FixedSizeGrid[F, T]) CellData(p Vec2[F]) (iter.Seq[T], bool) {
	items := g.CellItems(p)
	if items == nil {
		return nil, false
	}
	return func(yield func(T) bool) {
		for i := range items {
			if !yield(items[i].Data) {
				return
			}
		}
	}, true
}

// InRadius returns an iterator over the payloads whose position is strictly closer than radius to center.
func (g *FixedSizeGrid[F, T]) InRadius(center Vec2[F], radius F) *InRadiusIter[F, T] {
	it := &InRadiusIter[F, T]{
		grid:    g,
		center:  center,
		radius2: radius * radius,
		cell:    emptyCell,
	}
	limit := -1
	if radius > 0 {
		// No cell is further than max(width,height) from a cell inside the grid
		l := math.Ceil(float64(radius) / float64(g.cellSize))
		limit = int(min(l, float64(max(g.width, g.height))))
	}
	it.spiral = Spiral{center: g.mapping.MapCellClamped(center), limit: limit}
	return it
}

// WithinDistance accepts a 'results' as input. If you are performing millions of queries,
// then reusing a 'results' slice will reduce the number of allocations.
func (g *FixedSizeGrid[F, T]) WithinDistance(center Vec2[F], radius F, results []Item[F, T]) []Item[F, T] {
	results = results[:0]
	it := g.InRadius(center, radius)
	for item := it.nextItem(); item != nil; item = it.nextItem() {
		results = append(results, *item)
	}
	return results
}

// NearestNeighbour returns the item closest to p.
// If p itself is stored, it is returned with a distance of zero.
func (g *FixedSizeGrid[F, T]) NearestNeighbour(p Vec2[F]) (Item[F, T], bool) {
	if len(g.items) == 0 {
		return Item[F, T]{}, false
	}
	best := -1
	var bestDist2 F
	s := NewSpiral(g.mapping.MapCellClamped(p), max(g.width, g.height))
	for {
		xy, ok := s.Next()
		if !ok {
			break
		}
		if best != -1 {
			// every unvisited item is at least (ring-1) whole cells away
			gap := F(s.Ring()-1) * g.cellSize
			if gap > 0 && bestDist2 <= gap*gap {
				break
			}
		}
		if !g.grid.Contains(xy) {
			continue
		}
		start, end, ok := g.run(g.grid.Index(xy))
		if !ok {
			continue
		}
		for i := start; i < end; i++ {
			d := g.items[i].Pos.Dist2(p)
			if best == -1 || d < bestDist2 {
				best = i
				bestDist2 = d
			}
		}
	}
	return g.items[best], true
}

// KNearestNeighbours returns up to k items closest to p, nearest first.
// results is truncated first, so that it can be reused between queries.
func (g *FixedSizeGrid[F, T]) KNearestNeighbours(p Vec2[F], k int, results []Item[F, T]) []Item[F, T] {
	results = results[:0]
	if k <= 0 || len(g.items) == 0 {
		return results
	}
	s := NewSpiral(g.mapping.MapCellClamped(p), max(g.width, g.height))
	for {
		xy, ok := s.Next()
		if !ok {
			break
		}
		if len(results) == k {
			gap := F(s.Ring()-1) * g.cellSize
			if gap > 0 && results[k-1].Pos.Dist2(p) <= gap*gap {
				break
			}
		}
		if !g.grid.Contains(xy) {
			continue
		}
		start, end, ok := g.run(g.grid.Index(xy))
		if !ok {
			continue
		}
		for i := start; i < end; i++ {
			d := g.items[i].Pos.Dist2(p)
			if len(results) < k {
				results = append(results, g.items[i])
			} else if d < results[k-1].Pos.Dist2(p) {
				results[k-1] = g.items[i]
			} else {
				continue
			}
			// keep results sorted by distance
			for j := len(results) - 1; j > 0 && results[j].Pos.Dist2(p) < results[j-1].Pos.Dist2(p); j-- {
				results[j], results[j-1] = results[j-1], results[j]
			}
		}
	}
	return results
}

// GridStats contains grid statistics for debugging
type GridStats struct {
	TotalCells     int
	NonEmptyCells  int
	TotalItems     int
	MaxInCell      int
	AvgPerNonEmpty float64
}

func (g *FixedSizeGrid[F, T]) Stats() GridStats {
	s := GridStats{
		TotalCells: g.grid.Len(),
		TotalItems: len(g.items),
	}
	for key := 0; key < g.grid.Len(); key++ {
		start, end, ok := g.run(key)
		if !ok {
			continue
		}
		s.NonEmptyCells++
		s.MaxInCell = max(s.MaxInCell, end-start)
	}
	if s.NonEmptyCells > 0 {
		s.AvgPerNonEmpty = float64(s.TotalItems) / float64(s.NonEmptyCells)
	}
	return s
}
