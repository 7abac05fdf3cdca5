package spatialgrid

// CoordMapping is an affine transform from a world-space rectangle onto an integer grid of cells.
// The source rectangle must have a non-zero size on both axes, otherwise the scale is not finite.
type CoordMapping[F Float] struct {
	src         Rect[F]
	dest        IVec2
	scale       Vec2[F]
	translation Vec2[F]
}

func NewCoordMapping[F Float](src Rect[F], dest IVec2) CoordMapping[F] {
	size := src.Size()
	scale := Vec2[F]{F(dest.X) / size.X, F(dest.Y) / size.Y}
	return CoordMapping[F]{
		src:         src,
		dest:        dest,
		scale:       scale,
		translation: src.Min.Mul(scale).Scale(-1),
	}
}

// MapPoint returns the floored grid coordinate of p.
// The result is only inside [0, Dest) when p is inside Src; callers must clamp.
func (m *CoordMapping[F]) MapPoint(p Vec2[F]) Vec2[F] {
	return m.mapRaw(p).Floor()
}

// mapRaw is MapPoint without the floor.
// The explicit conversions stop the compiler from fusing the multiply-add, so that
// FixedSizeGrid's classification fast path sees bit-identical values.
func (m *CoordMapping[F]) mapRaw(p Vec2[F]) Vec2[F] {
	return Vec2[F]{
		F(p.X*m.scale.X) + m.translation.X,
		F(p.Y*m.scale.Y) + m.translation.Y,
	}
}

// MapCell is MapPoint converted to an integer cell coordinate
func (m *CoordMapping[F]) MapCell(p Vec2[F]) IVec2 {
	f := m.MapPoint(p)
	return IVec2{int(f.X), int(f.Y)}
}

// MapCellClamped is MapCell, clamped into the destination grid
func (m *CoordMapping[F]) MapCellClamped(p Vec2[F]) IVec2 {
	f := m.MapPoint(p)
	return IVec2{clampAxis(f.X, m.dest.X), clampAxis(f.Y, m.dest.Y)}
}

// clampAxis converts an already floored coordinate into [0, n).
// The comparisons happen before the int conversion so huge or infinite values do not overflow.
func clampAxis[F Float](v F, n int) int {
	if v >= F(n) {
		return n - 1
	}
	if v > 0 {
		return int(v)
	}
	return 0
}

func (m *CoordMapping[F]) Src() Rect[F] { return m.src }
func (m *CoordMapping[F]) Dest() IVec2 { return m.dest }
func (m *CoordMapping[F]) Scale() Vec2[F] { return m.scale }
func (m *CoordMapping[F]) Translation() Vec2[F] { return m.translation }
