package spatialgrid

import "iter"

// InRadiusIter is a single-use iterator over the payloads of a FixedSizeGrid within a radius.
// It visits cells in a spiral around the query center, and scans each occupied cell's
// run of items until the cell key changes.
type InRadiusIter[F Float, T any] struct {
	grid    *FixedSizeGrid[F, T]
	center  Vec2[F]
	radius2 F
	spiral  Spiral
	cell    int // cell currently being scanned, or emptyCell
	pos     int // next item of that cell
}

// Next returns the next payload, or false when the iterator is exhausted.
func (it *InRadiusIter[F, T]) Next() (T, bool) {
	if item := it.nextItem(); item != nil {
		return item.Data, true
	}
	var zero T
	return zero, false
}

// All adapts the iterator to a range-over-func sequence.
// Like the iterator itself, the sequence can only be consumed once.
func (it *InRadiusIter[F, T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for item := it.nextItem(); item != nil; item = it.nextItem() {
			if !yield(item.Data) {
				return
			}
		}
	}
}

func (it *InRadiusIter[F, T]) nextItem() *Item[F, T] {
	g := it.grid
	for {
		if it.cell != emptyCell {
			for it.pos < len(g.cells) && g.cells[it.pos] == it.cell {
				item := &g.items[it.pos]
				it.pos++
				if item.Pos.Dist2(it.center) < it.radius2 {
					return item
				}
			}
			it.cell = emptyCell
		}

		xy, ok := it.spiral.Next()
		if !ok {
			return nil
		}
		// cells off the grid are skipped, never clamped onto the edge
		if !g.grid.Contains(xy) {
			continue
		}
		key := g.grid.Index(xy)
		if start := g.grid.GetDirect(key); start != emptyCell {
			it.cell = key
			it.pos = start
		}
	}
}
