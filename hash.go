package spatialgrid

import "math"

// bucketCapacity is the initial capacity of a new bucket
const bucketCapacity = 5

// HashItem is a position with its payload
type HashItem[P Point[P], T any] struct {
	Pos  P
	Data T
}

type cellKey [3]int

// UnboundedSpatialHash buckets points by their truncated, scaled position.
// Unlike FixedSizeGrid it has no bounds, and supports incremental insert, remove and move.
//
// Points are identified by their exact position: Remove, Update and Get only find a
// point when given the identical position that it was stored with.
//
// UnboundedSpatialHash is not safe for concurrent use. See SyncHash.
type UnboundedSpatialHash[P Point[P], T any] struct {
	buckets   map[cellKey][]HashItem[P, T]
	precision float64
	count     int
}

// NewUnboundedSpatialHash creates an empty hash.
// precision is the number of buckets per world unit along each axis, and must be positive.
// Larger values make smaller buckets.
func NewUnboundedSpatialHash[P Point[P], T any](precision float64) *UnboundedSpatialHash[P, T] {
	return &UnboundedSpatialHash[P, T]{
		buckets:   map[cellKey][]HashItem[P, T]{},
		precision: precision,
	}
}

func (h *UnboundedSpatialHash[P, T]) key(pos P) cellKey {
	var k cellKey
	for i := 0; i < pos.Axes(); i++ {
		k[i] = int(pos.Axis(i) * h.precision)
	}
	return k
}

func (h *UnboundedSpatialHash[P, T]) Precision() float64 {
	return h.precision
}

// Len returns the number of stored points
func (h *UnboundedSpatialHash[P, T]) Len() int {
	return h.count
}

// Buckets returns the number of non-empty buckets
func (h *UnboundedSpatialHash[P, T]) Buckets() int {
	return len(h.buckets)
}

func (h *UnboundedSpatialHash[P, T]) Insert(pos P, data T) {
	k := h.key(pos)
	b := h.buckets[k]
	if b == nil {
		b = make([]HashItem[P, T], 0, bucketCapacity)
	}
	h.buckets[k] = append(b, HashItem[P, T]{Pos: pos, Data: data})
	h.count++
}

// Remove the point stored at exactly pos.
// Returns false if there is no such point.
func (h *UnboundedSpatialHash[P, T]) Remove(pos P) (HashItem[P, T], bool) {
	k := h.key(pos)
	b := h.buckets[k]
	for i := range b {
		if b[i].Pos != pos {
			continue
		}
		item := b[i]
		last := len(b) - 1
		b[i] = b[last]
		b[last] = HashItem[P, T]{}
		b = b[:last]
		if len(b) == 0 {
			delete(h.buckets, k)
		} else {
			h.buckets[k] = b
		}
		h.count--
		return item, true
	}
	return HashItem[P, T]{}, false
}

// Update moves the point stored at exactly oldPos to newPos.
// When both positions share a bucket the point is not relocated, only its stored position
// is rewritten, and the result is always true.
// Otherwise the result is false if there is no point at oldPos.
func (h *UnboundedSpatialHash[P, T]) Update(oldPos, newPos P) bool {
	oldKey := h.key(oldPos)
	if oldKey == h.key(newPos) {
		b := h.buckets[oldKey]
		for i := range b {
			if b[i].Pos == oldPos {
				b[i].Pos = newPos
				break
			}
		}
		return true
	}

	item, ok := h.Remove(oldPos)
	if !ok {
		return false
	}
	h.Insert(newPos, item.Data)
	return true
}

// Get returns the payload stored at exactly pos
func (h *UnboundedSpatialHash[P, T]) Get(pos P) (T, bool) {
	b := h.buckets[h.key(pos)]
	for i := range b {
		if b[i].Pos == pos {
			return b[i].Data, true
		}
	}
	var zero T
	return zero, false
}

// InCell returns all points that share a bucket with pos, or nil.
// The returned slice is owned by the hash and is only valid until the next mutation.
func (h *UnboundedSpatialHash[P, T]) InCell(pos P) []HashItem[P, T] {
	return h.buckets[h.key(pos)]
}

// InRadius appends to results all points strictly closer than radius to center.
// results is truncated first, so that it can be reused between queries.
func (h *UnboundedSpatialHash[P, T]) InRadius(center P, radius float64, results []HashItem[P, T]) []HashItem[P, T] {
	results = results[:0]
	r2 := radius * radius
	h.scan(center, radius, func(b []HashItem[P, T]) {
		for i := range b {
			if b[i].Pos.DistanceSquared(center) < r2 {
				results = append(results, b[i])
			}
		}
	})
	return results
}

// InBox appends to results all points whose distance to center is strictly less than
// halfExtent along every axis.
// results is truncated first, so that it can be reused between queries.
func (h *UnboundedSpatialHash[P, T]) InBox(center P, halfExtent float64, results []HashItem[P, T]) []HashItem[P, T] {
	results = results[:0]
	axes := center.Axes()
	h.scan(center, halfExtent, func(b []HashItem[P, T]) {
	next:
		for i := range b {
			for a := 0; a < axes; a++ {
				if math.Abs(b[i].Pos.Axis(a)-center.Axis(a)) >= halfExtent {
					continue next
				}
			}
			results = append(results, b[i])
		}
	})
	return results
}

// scan calls visit for every bucket that may hold a point within reach of center along each axis.
// Buckets are visited in a spiral around center's bucket, with a sweep along z for 3D points.
func (h *UnboundedSpatialHash[P, T]) scan(center P, reach float64, visit func(b []HashItem[P, T])) {
	if !(reach > 0) || len(h.buckets) == 0 {
		return
	}
	c := h.key(center)
	span := math.Ceil(reach * h.precision)
	depth := 0.0
	if center.Axes() > 2 {
		depth = span
	}

	// When the walk would probe more keys than there are buckets, just look at every bucket
	probes := (2*span + 1) * (2*span + 1) * (2*depth + 1)
	if probes >= float64(len(h.buckets)) {
		for k, b := range h.buckets {
			if keyDelta(k[0], c[0]) <= span && keyDelta(k[1], c[1]) <= span && keyDelta(k[2], c[2]) <= depth {
				visit(b)
			}
		}
		return
	}

	limit := int(span)
	zReach := int(depth)
	s := NewSpiral(IVec2{c[0], c[1]}, limit)
	for {
		xy, ok := s.Next()
		if !ok {
			return
		}
		for z := c[2] - zReach; z <= c[2]+zReach; z++ {
			if b, ok := h.buckets[cellKey{xy.X, xy.Y, z}]; ok {
				visit(b)
			}
		}
	}
}

func keyDelta(a, b int) float64 {
	return float64(absInt(a - b))
}
