package spatialgrid

// Spiral walks integer cells in expanding square rings around a center.
// Ring 0 is the center itself, ring 1 its 8 neighbours, ring 2 the next 16, and so on.
// Once ring r has been fully emitted, every cell within Chebyshev distance r of the
// center has been visited.
// The walk ends after ring 'limit' has been emitted.
type Spiral struct {
	center IVec2
	offset IVec2 // next offset to emit
	last   IVec2 // last emitted offset
	limit  int
}

func NewSpiral(center IVec2, limit int) *Spiral {
	return &Spiral{
		center: center,
		limit:  limit,
	}
}

// Next returns the next cell, or false once the walk has left ring 'limit'.
func (s *Spiral) Next() (IVec2, bool) {
	res := s.offset
	if absInt(res.X) > s.limit || absInt(res.Y) > s.limit {
		return IVec2{}, false
	}
	x, y := s.offset.X, s.offset.Y
	if x < y {
		if x <= -y {
			s.offset.Y--
		} else {
			s.offset.X--
		}
	} else {
		if -x <= y {
			s.offset.Y++
		} else {
			s.offset.X++
		}
	}
	s.last = res
	return s.center.Add(res), true
}

// Ring is the Chebyshev ring of the most recently emitted cell
func (s *Spiral) Ring() int {
	return s.last.Chebyshev()
}

func (s *Spiral) Reset() {
	s.offset = IVec2{}
	s.last = IVec2{}
}
