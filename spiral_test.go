package spatialgrid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func collectSpiral(s *Spiral) []IVec2 {
	cells := []IVec2{}
	for c, ok := s.Next(); ok; c, ok = s.Next() {
		cells = append(cells, c)
	}
	return cells
}

func TestSpiralZero(t *testing.T) {
	start := IVec2{1, 1}
	s := NewSpiral(start, 0)
	c, ok := s.Next()
	require.True(t, ok)
	require.Equal(t, start, c)
	_, ok = s.Next()
	require.False(t, ok)
	_, ok = s.Next()
	require.False(t, ok)
}

func TestSpiralNegativeLimit(t *testing.T) {
	require.Empty(t, collectSpiral(NewSpiral(IVec2{}, -1)))
}

func TestSpiralOne(t *testing.T) {
	expect := []IVec2{
		{0, 0},
		{0, 1},
		{-1, 1},
		{-1, 0},
		{-1, -1},
		{0, -1},
		{1, -1},
		{1, 0},
		{1, 1},
	}
	require.Equal(t, expect, collectSpiral(NewSpiral(IVec2{}, 1)))
}

func TestSpiralRings(t *testing.T) {
	center := IVec2{-3, 7}
	limit := 6
	s := NewSpiral(center, limit)
	seen := map[IVec2]bool{}
	prevRing := 0
	for c, ok := s.Next(); ok; c, ok = s.Next() {
		ring := c.Sub(center).Chebyshev()
		require.Equal(t, ring, s.Ring())
		// rings never go backwards
		require.GreaterOrEqual(t, ring, prevRing)
		prevRing = ring
		require.False(t, seen[c], "%v visited twice", c)
		seen[c] = true
	}
	side := 2*limit + 1
	require.Equal(t, side*side, len(seen))
	for x := -limit; x <= limit; x++ {
		for y := -limit; y <= limit; y++ {
			require.True(t, seen[center.Add(IVec2{x, y})])
		}
	}
}

func TestSpiralReset(t *testing.T) {
	s := NewSpiral(IVec2{2, 2}, 2)
	first := collectSpiral(s)
	s.Reset()
	require.Equal(t, first, collectSpiral(s))
	require.Len(t, first, 25)
}
