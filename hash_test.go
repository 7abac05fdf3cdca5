package spatialgrid

import (
	"math"
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func hashPayloads[P Point[P]](items []HashItem[P, int]) []int {
	r := []int{}
	for _, it := range items {
		r = append(r, it.Data)
	}
	slices.Sort(r)
	return r
}

func TestHashRoundTrip(t *testing.T) {
	h := NewUnboundedSpatialHash[Vec2[float32], string](1)
	p := V2[float32](3.25, -7.5)
	h.Insert(p, "a")
	v, ok := h.Get(p)
	require.True(t, ok)
	require.Equal(t, "a", v)
	require.Equal(t, 1, h.Len())

	// exact match is required
	_, ok = h.Get(V2[float32](3.2501, -7.5))
	require.False(t, ok)
	_, ok = h.Remove(V2[float32](3.2501, -7.5))
	require.False(t, ok)

	item, ok := h.Remove(p)
	require.True(t, ok)
	require.Equal(t, "a", item.Data)
	require.Equal(t, p, item.Pos)
	_, ok = h.Get(p)
	require.False(t, ok)
	require.Equal(t, 0, h.Len())
	require.Equal(t, 0, h.Buckets())
	require.Nil(t, h.InCell(p))
}

func TestHashBuckets(t *testing.T) {
	h := NewUnboundedSpatialHash[Vec2[float64], int](0.1)
	// all in bucket (0, 0)
	h.Insert(V2(1.0, 1.0), 1)
	h.Insert(V2(2.0, 9.0), 2)
	h.Insert(V2(-9.0, 0.5), 3)
	// bucket (1, 0)
	h.Insert(V2(10.0, 0.0), 4)
	require.Equal(t, 2, h.Buckets())
	require.Equal(t, []int{1, 2, 3}, hashPayloads(h.InCell(V2(5.0, 5.0))))
	require.Equal(t, []int{4}, hashPayloads(h.InCell(V2(15.0, 0.0))))

	_, ok := h.Remove(V2(2.0, 9.0))
	require.True(t, ok)
	require.Equal(t, []int{1, 3}, hashPayloads(h.InCell(V2(5.0, 5.0))))
	_, ok = h.Remove(V2(10.0, 0.0))
	require.True(t, ok)
	require.Equal(t, 1, h.Buckets())
}

func TestHashUpdate(t *testing.T) {
	h := NewUnboundedSpatialHash[Vec2[float64], int](1)
	old := V2(0.25, 0.25)
	h.Insert(old, 7)

	// same bucket: no relocation, always true
	moved := V2(0.75, 0.5)
	require.True(t, h.Update(old, moved))
	require.Equal(t, []int{7}, hashPayloads(h.InCell(moved)))
	v, ok := h.Get(moved)
	require.True(t, ok)
	require.Equal(t, 7, v)

	// different bucket
	far := V2(5.5, -3.5)
	require.True(t, h.Update(moved, far))
	v, ok = h.Get(far)
	require.True(t, ok)
	require.Equal(t, 7, v)
	_, ok = h.Get(moved)
	require.False(t, ok)
	require.Nil(t, h.InCell(moved))
	require.Equal(t, 1, h.Len())

	// unknown point
	require.False(t, h.Update(V2(100.0, 100.0), V2(0.0, 0.0)))
	require.Equal(t, 1, h.Len())
}

func TestHashInRadius(t *testing.T) {
	rng := rand.New(rand.NewSource(0))
	for _, precision := range []float64{0.05, 0.5, 3} {
		h := NewUnboundedSpatialHash[Vec2[float64], int](precision)
		items := randomItems[float64](rng, 3000, -100, 100)
		for _, it := range items {
			h.Insert(it.Pos, it.Data)
		}
		results := []HashItem[Vec2[float64], int]{}
		for i := 0; i < 200; i++ {
			center := V2(rng.Float64()*240-120, rng.Float64()*240-120)
			radius := rng.Float64() * 20
			results = h.InRadius(center, radius, results)
			require.Equal(t, bruteForceInRadius(items, center, radius), hashPayloads(results))
		}
	}
}

func TestHashInRadiusBoundary(t *testing.T) {
	h := NewUnboundedSpatialHash[Vec2[float64], int](1)
	h.Insert(V2(3.0, 4.0), 1)
	require.Empty(t, h.InRadius(V2(0.0, 0.0), 5, nil))
	require.Len(t, h.InRadius(V2(0.0, 0.0), 5.0001, nil), 1)
	require.Empty(t, h.InRadius(V2(0.0, 0.0), 0, nil))
	require.Empty(t, h.InRadius(V2(0.0, 0.0), math.NaN(), nil))
}

func TestHashInBox(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	h := NewUnboundedSpatialHash[Vec2[float32], int](0.25)
	items := randomItems[float32](rng, 2000, -50, 50)
	for _, it := range items {
		h.Insert(it.Pos, it.Data)
	}
	for i := 0; i < 200; i++ {
		center := V2(float32(rng.Float64()*120-60), float32(rng.Float64()*120-60))
		half := rng.Float64() * 10
		expect := []int{}
		for _, it := range items {
			if math.Abs(it.Pos.Axis(0)-center.Axis(0)) < half && math.Abs(it.Pos.Axis(1)-center.Axis(1)) < half {
				expect = append(expect, it.Data)
			}
		}
		slices.Sort(expect)
		require.Equal(t, expect, hashPayloads(h.InBox(center, half, nil)))
	}
}

func TestHash3D(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	h := NewUnboundedSpatialHash[Vec3[float64], int](0.5)
	points := make([]Vec3[float64], 4000)
	for i := range points {
		points[i] = V3(rng.Float64()*60-30, rng.Float64()*60-30, rng.Float64()*60-30)
		h.Insert(points[i], i)
	}
	for i := 0; i < 100; i++ {
		center := V3(rng.Float64()*60-30, rng.Float64()*60-30, rng.Float64()*60-30)
		radius := rng.Float64() * 6
		expect := []int{}
		for j, p := range points {
			if p.DistanceSquared(center) < radius*radius {
				expect = append(expect, j)
			}
		}
		require.Equal(t, expect, hashPayloads(h.InRadius(center, radius, nil)))
	}

	// buckets are keyed on z too
	h2 := NewUnboundedSpatialHash[Vec3[float32], int](1)
	h2.Insert(V3[float32](0.5, 0.5, 0.5), 1)
	h2.Insert(V3[float32](0.5, 0.5, 5.5), 2)
	require.Equal(t, 2, h2.Buckets())
	require.Len(t, h2.InCell(V3[float32](0.1, 0.1, 0.1)), 1)
}

func BenchmarkHashInsert(b *testing.B) {
	n := 100 * 1000
	rng := rand.New(rand.NewSource(0))
	items := randomItems[float32](rng, n, 0, 10)
	h := NewUnboundedSpatialHash[Vec2[float32], int](2)
	start := time.Now()
	for _, it := range items {
		h.Insert(it.Pos, it.Data)
	}
	b.Logf("Time to insert %v elements: %.2f milliseconds", n, time.Since(start).Seconds()*1000)
}

func BenchmarkHashUpdate(b *testing.B) {
	n := 100 * 1000
	rng := rand.New(rand.NewSource(0))
	items := randomItems[float32](rng, n, 0, 10)
	h := NewUnboundedSpatialHash[Vec2[float32], int](2)
	for _, it := range items {
		h.Insert(it.Pos, it.Data)
	}
	start := time.Now()
	for _, it := range items {
		h.Update(it.Pos, it.Pos.Add(V2[float32](0.1, 0.1)))
	}
	b.Logf("Time per update: %.2f nanoseconds", time.Since(start).Seconds()*1e9/float64(n))
}
