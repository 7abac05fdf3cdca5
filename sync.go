package spatialgrid

import (
	"iter"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
)

// Snapshot publishes immutable FixedSizeGrid snapshots to concurrent readers.
// A single writer calls Publish once per frame; each call builds a fresh grid with the
// same geometry, and atomically swaps it in. Readers call Load and may keep querying
// the grid they got for as long as they like.
type Snapshot[F Float, T any] struct {
	anchor   Vec2[F]
	cellSize F
	dims     IVec2
	current  atomic.Pointer[FixedSizeGrid[F, T]]
	version  atomic.Uint64
}

func NewSnapshot[F Float, T any](anchor Vec2[F], cellSize F, dims IVec2) *Snapshot[F, T] {
	s := &Snapshot[F, T]{
		anchor:   anchor,
		cellSize: cellSize,
		dims:     dims,
	}
	s.current.Store(NewFixedSizeGrid[F, T](anchor, cellSize, dims))
	return s
}

// Publish builds a new grid from points and makes it the current one.
// Every call allocates a fresh grid with its own cell and item buffers; grids are never
// recycled, since a reader may still hold any earlier one.
// sizeHint is used to reserve space, and may be zero.
// Publish must not be called concurrently with itself.
func (s *Snapshot[F, T]) Publish(points iter.Seq2[Vec2[F], T], sizeHint int) *FixedSizeGrid[F, T] {
	g := NewFixedSizeGrid[F, T](s.anchor, s.cellSize, s.dims)
	g.Reserve(sizeHint)
	g.Update(points)
	s.current.Store(g)
	s.version.Add(1)
	return g
}

// Load returns the most recently published grid
func (s *Snapshot[F, T]) Load() *FixedSizeGrid[F, T] {
	return s.current.Load()
}

// Version is the number of grids published so far
func (s *Snapshot[F, T]) Version() uint64 {
	return s.version.Load()
}

// SyncHash is an UnboundedSpatialHash guarded by a reader-biased RW lock.
// Mutations are serialized against each other and against queries.
type SyncHash[P Point[P], T any] struct {
	mu   *xsync.RBMutex
	hash *UnboundedSpatialHash[P, T]
}

func NewSyncHash[P Point[P], T any](precision float64) *SyncHash[P, T] {
	return &SyncHash[P, T]{
		mu:   xsync.NewRBMutex(),
		hash: NewUnboundedSpatialHash[P, T](precision),
	}
}

func (s *SyncHash[P, T]) Insert(pos P, data T) {
	s.mu.Lock()
	s.hash.Insert(pos, data)
	s.mu.Unlock()
}

func (s *SyncHash[P, T]) Remove(pos P) (HashItem[P, T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hash.Remove(pos)
}

func (s *SyncHash[P, T]) Update(oldPos, newPos P) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hash.Update(oldPos, newPos)
}

// Batch runs fn with exclusive access to the underlying hash
func (s *SyncHash[P, T]) Batch(fn func(h *UnboundedSpatialHash[P, T])) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.hash)
}

func (s *SyncHash[P, T]) Get(pos P) (T, bool) {
	t := s.mu.RLock()
	defer s.mu.RUnlock(t)
	return s.hash.Get(pos)
}

// InCell returns a copy of the bucket holding pos
func (s *SyncHash[P, T]) InCell(pos P) []HashItem[P, T] {
	t := s.mu.RLock()
	defer s.mu.RUnlock(t)
	b := s.hash.InCell(pos)
	if b == nil {
		return nil
	}
	return append([]HashItem[P, T](nil), b...)
}

func (s *SyncHash[P, T]) InRadius(center P, radius float64, results []HashItem[P, T]) []HashItem[P, T] {
	t := s.mu.RLock()
	defer s.mu.RUnlock(t)
	return s.hash.InRadius(center, radius, results)
}

func (s *SyncHash[P, T]) InBox(center P, halfExtent float64, results []HashItem[P, T]) []HashItem[P, T] {
	t := s.mu.RLock()
	defer s.mu.RUnlock(t)
	return s.hash.InBox(center, halfExtent, results)
}

func (s *SyncHash[P, T]) Len() int {
	t := s.mu.RLock()
	defer s.mu.RUnlock(t)
	return s.hash.Len()
}
