package spatialgrid

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/exp/constraints"
)

// Float is the scalar type of all world-space coordinates.
type Float interface {
	constraints.Float
}

// Point is the capability a position type needs to be stored in an UnboundedSpatialHash.
// Vec2 and Vec3 implement it for both float32 and float64.
type Point[P any] interface {
	comparable
	// Axes returns the number of dimensions (2 or 3)
	Axes() int
	// Axis returns coordinate i, widened to float64
	Axis(i int) float64
	DistanceSquared(other P) float64
}

// Vec2 is a 2D world-space position
type Vec2[F Float] struct {
	X, Y F
}

func V2[F Float](x, y F) Vec2[F] {
	return Vec2[F]{X: x, Y: y}
}

func (a Vec2[F]) Add(b Vec2[F]) Vec2[F] { return Vec2[F]{a.X + b.X, a.Y + b.Y} }
func (a Vec2[F]) Sub(b Vec2[F]) Vec2[F] { return Vec2[F]{a.X - b.X, a.Y - b.Y} }
func (a Vec2[F]) Mul(b Vec2[F]) Vec2[F] { return Vec2[F]{a.X * b.X, a.Y * b.Y} }
func (a Vec2[F]) Scale(s F) Vec2[F] { return Vec2[F]{a.X * s, a.Y * s} }
func (a Vec2[F]) Min(b Vec2[F]) Vec2[F] { return Vec2[F]{min(a.X, b.X), min(a.Y, b.Y)} }
func (a Vec2[F]) Max(b Vec2[F]) Vec2[F] { return Vec2[F]{max(a.X, b.X), max(a.Y, b.Y)} }

func (a Vec2[F]) Floor() Vec2[F] {
	return Vec2[F]{F(math.Floor(float64(a.X))), F(math.Floor(float64(a.Y)))}
}

func (a Vec2[F]) Axes() int { return 2 }

func (a Vec2[F]) Axis(i int) float64 {
	if i == 0 {
		return float64(a.X)
	}
	return float64(a.Y)
}

// DistanceSquared is computed in float64 so that it satisfies Point.
// Use Dist2 when the comparison must happen in the native precision.
func (a Vec2[F]) DistanceSquared(b Vec2[F]) float64 {
	return float64(a.Dist2(b))
}

func (a Vec2[F]) Dist2(b Vec2[F]) F {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// Vec3 is a 3D world-space position
type Vec3[F Float] struct {
	X, Y, Z F
}

func V3[F Float](x, y, z F) Vec3[F] {
	return Vec3[F]{X: x, Y: y, Z: z}
}

func (a Vec3[F]) Add(b Vec3[F]) Vec3[F] { return Vec3[F]{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3[F]) Sub(b Vec3[F]) Vec3[F] { return Vec3[F]{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3[F]) Scale(s F) Vec3[F] { return Vec3[F]{a.X * s, a.Y * s, a.Z * s} }

func (a Vec3[F]) Axes() int { return 3 }

func (a Vec3[F]) Axis(i int) float64 {
	switch i {
	case 0:
		return float64(a.X)
	case 1:
		return float64(a.Y)
	}
	return float64(a.Z)
}

func (a Vec3[F]) DistanceSquared(b Vec3[F]) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	dz := float64(a.Z - b.Z)
	return dx*dx + dy*dy + dz*dz
}

// IVec2 is an integer cell coordinate, or a cell count per axis
type IVec2 struct {
	X, Y int
}

func (a IVec2) Add(b IVec2) IVec2 { return IVec2{a.X + b.X, a.Y + b.Y} }
func (a IVec2) Sub(b IVec2) IVec2 { return IVec2{a.X - b.X, a.Y - b.Y} }

// Chebyshev returns max(|x|, |y|)
func (a IVec2) Chebyshev() int {
	return max(absInt(a.X), absInt(a.Y))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Rect is an axis aligned world-space rectangle
type Rect[F Float] struct {
	Min Vec2[F]
	Max Vec2[F]
}

func RectFromCorners[F Float](p0, p1 Vec2[F]) Rect[F] {
	return Rect[F]{Min: p0.Min(p1), Max: p0.Max(p1)}
}

func RectFromCenterSize[F Float](center, size Vec2[F]) Rect[F] {
	half := size.Scale(0.5)
	return Rect[F]{Min: center.Sub(half), Max: center.Add(half)}
}

func (r Rect[F]) Size() Vec2[F] {
	return r.Max.Sub(r.Min)
}

// Contains is inclusive on both edges
func (r Rect[F]) Contains(p Vec2[F]) bool {
	return p.X >= r.Min.X && p.Y >= r.Min.Y && p.X <= r.Max.X && p.Y <= r.Max.Y
}

// Conversions for hosts that keep positions in mathgl vectors.

func Vec2FromMgl32(v mgl32.Vec2) Vec2[float32] { return Vec2[float32]{v[0], v[1]} }
func Vec2FromMgl64(v mgl64.Vec2) Vec2[float64] { return Vec2[float64]{v[0], v[1]} }
func Vec3FromMgl32(v mgl32.Vec3) Vec3[float32] { return Vec3[float32]{v[0], v[1], v[2]} }
func Vec3FromMgl64(v mgl64.Vec3) Vec3[float64] { return Vec3[float64]{v[0], v[1], v[2]} }

// Mgl32 converts to a mathgl vector, narrowing if necessary
func (a Vec2[F]) Mgl32() mgl32.Vec2 { return mgl32.Vec2{float32(a.X), float32(a.Y)} }
func (a Vec2[F]) Mgl64() mgl64.Vec2 { return mgl64.Vec2{float64(a.X), float64(a.Y)} }
func (a Vec3[F]) Mgl32() mgl32.Vec3 { return mgl32.Vec3{float32(a.X), float32(a.Y), float32(a.Z)} }
func (a Vec3[F]) Mgl64() mgl64.Vec3 { return mgl64.Vec3{float64(a.X), float64(a.Y), float64(a.Z)} }
