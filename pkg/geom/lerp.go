package geom

// Interpolators blend two geometries at t in [0, 1]; t outside that interval
// extrapolates for elastic easings.

// Lerp blends two numbers.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// LerpPoint blends two points.
func LerpPoint(a, b Point, t float64) Point {
	return Point{X: Lerp(a.X, b.X, t), Y: Lerp(a.Y, b.Y, t)}
}

// LerpRect blends two rectangles. Sizes never go negative.
func LerpRect(a, b Rect, t float64) Rect {
	return Rect{
		X:      Lerp(a.X, b.X, t),
		Y:      Lerp(a.Y, b.Y, t),
		Width:  max(0, Lerp(a.Width, b.Width, t)),
		Height: max(0, Lerp(a.Height, b.Height, t)),
	}
}

// LerpGlyph blends two glyphs.
func LerpGlyph(a, b Glyph, t float64) Glyph {
	return Glyph{X: Lerp(a.X, b.X, t), Y: Lerp(a.Y, b.Y, t), Size: max(0, Lerp(a.Size, b.Size, t))}
}

// LerpTick blends two ticks.
func LerpTick(a, b Tick, t float64) Tick {
	return Tick{From: LerpPoint(a.From, b.From, t), To: LerpPoint(a.To, b.To, t)}
}

// LerpPolyline blends two polylines point by point. The shorter one is padded
// by repeating its last point, so lines that gain or lose points grow out of
// or collapse into their end. A point is defined mid-way only when it is
// defined at both ends.
func LerpPolyline(a, b Polyline, t float64) Polyline {
	if t >= 1 {
		return b
	}
	n := max(len(a.Points), len(b.Points))
	out := Polyline{Points: make([]Point, n), Defined: make([]bool, n)}
	for i := 0; i < n; i++ {
		pa, da := pointAt(a, i)
		pb, db := pointAt(b, i)
		out.Points[i] = LerpPoint(pa, pb, t)
		out.Defined[i] = da && db
	}
	return out
}

func pointAt(p Polyline, i int) (Point, bool) {
	if len(p.Points) == 0 {
		return Point{}, false
	}
	if i >= len(p.Points) {
		i = len(p.Points) - 1
	}
	return p.Points[i], i < len(p.Defined) && p.Defined[i]
}

// LerpShape blends shapes of the same kind; shapes of different kinds switch
// to b.
func LerpShape(a, b Shape, t float64) Shape {
	if a.Kind != b.Kind {
		return b
	}
	switch a.Kind {
	case ShapeRect:
		return RectShape(LerpRect(a.Rect, b.Rect, t))
	case ShapeGlyph:
		return GlyphShape(LerpGlyph(a.Glyph, b.Glyph, t))
	case ShapeLine:
		return LineShape(LerpPolyline(a.Line, b.Line, t))
	}
	return b
}
