package geom

import (
	"math"
	"strings"

	"github.com/matzehuels/chartmotion/pkg/errors"
)

// Curve selects how consecutive line points are connected.
type Curve int

const (
	// CurveLinear draws straight segments.
	CurveLinear Curve = iota
	// CurveStep changes value halfway between points.
	CurveStep
	// CurveStepBefore changes value at the start of each interval.
	CurveStepBefore
	// CurveStepAfter changes value at the end of each interval.
	CurveStepAfter
	// CurveBasis is a cubic B-spline; it does not pass through interior
	// points.
	CurveBasis
	// CurveMonotoneX is a cubic spline that preserves monotonicity in y,
	// for series sorted by x.
	CurveMonotoneX
)

var curveNames = map[Curve]string{
	CurveLinear:     "linear",
	CurveStep:       "step",
	CurveStepBefore: "step-before",
	CurveStepAfter:  "step-after",
	CurveBasis:      "basis",
	CurveMonotoneX:  "monotone-x",
}

func (c Curve) String() string {
	if n, ok := curveNames[c]; ok {
		return n
	}
	return "linear"
}

// ParseCurve converts a configuration name into a Curve. The empty string
// means CurveLinear.
func ParseCurve(s string) (Curve, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return CurveLinear, nil
	}
	for c, n := range curveNames {
		if n == name {
			return c, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown curve: %q", s)
}

func writeCurve(b *strings.Builder, c Curve, pts []Point) {
	if len(pts) == 0 {
		return
	}
	b.WriteString("M" + pt(pts[0]))
	if len(pts) == 1 {
		return
	}
	switch c {
	case CurveStep:
		writeStep(b, pts, 0.5)
	case CurveStepBefore:
		writeStep(b, pts, 0)
	case CurveStepAfter:
		writeStep(b, pts, 1)
	case CurveBasis:
		writeBasis(b, pts)
	case CurveMonotoneX:
		writeMonotoneX(b, pts)
	default:
		for _, p := range pts[1:] {
			b.WriteString("L" + pt(p))
		}
	}
}

// writeStep moves horizontally for fraction t of each interval, then
// vertically, then finishes the interval.
func writeStep(b *strings.Builder, pts []Point, t float64) {
	for i := 1; i < len(pts); i++ {
		p0, p1 := pts[i-1], pts[i]
		switch {
		case t <= 0:
			b.WriteString("L" + pt(Point{p0.X, p1.Y}) + "L" + pt(p1))
		case t >= 1:
			b.WriteString("L" + pt(Point{p1.X, p0.Y}) + "L" + pt(p1))
		default:
			x := p0.X*(1-t) + p1.X*t
			b.WriteString("L" + pt(Point{x, p0.Y}) + "L" + pt(Point{x, p1.Y}))
		}
	}
	if t > 0 && t < 1 {
		b.WriteString("L" + pt(pts[len(pts)-1]))
	}
}

func bezier(b *strings.Builder, c1, c2, p Point) {
	b.WriteString("C" + pt(c1) + "," + pt(c2) + "," + pt(p))
}

// writeBasis draws a uniform cubic B-spline clamped to the end points.
func writeBasis(b *strings.Builder, pts []Point) {
	if len(pts) == 2 {
		b.WriteString("L" + pt(pts[1]))
		return
	}
	seg := func(p0, p1, p Point) {
		bezier(b,
			Point{(2*p0.X + p1.X) / 3, (2*p0.Y + p1.Y) / 3},
			Point{(p0.X + 2*p1.X) / 3, (p0.Y + 2*p1.Y) / 3},
			Point{(p0.X + 4*p1.X + p.X) / 6, (p0.Y + 4*p1.Y + p.Y) / 6},
		)
	}
	p0, p1 := pts[0], pts[1]
	b.WriteString("L" + pt(Point{(5*p0.X + p1.X) / 6, (5*p0.Y + p1.Y) / 6}))
	for _, p := range pts[2:] {
		seg(p0, p1, p)
		p0, p1 = p1, p
	}
	seg(p0, p1, p1)
	b.WriteString("L" + pt(p1))
}

// writeMonotoneX draws a Fritsch-Carlson monotone cubic.
func writeMonotoneX(b *strings.Builder, pts []Point) {
	n := len(pts)
	if n == 2 {
		b.WriteString("L" + pt(pts[1]))
		return
	}
	m := make([]float64, n)
	for i := 1; i < n-1; i++ {
		m[i] = slope3(pts[i-1], pts[i], pts[i+1])
	}
	m[0] = slope2(pts[0], pts[1], m[1])
	m[n-1] = slope2(pts[n-2], pts[n-1], m[n-2])

	for i := 1; i < n; i++ {
		p0, p1 := pts[i-1], pts[i]
		dx := (p1.X - p0.X) / 3
		bezier(b,
			Point{p0.X + dx, p0.Y + dx*m[i-1]},
			Point{p1.X - dx, p1.Y - dx*m[i]},
			p1,
		)
	}
}

func sign(v float64) float64 {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

// slope3 is the tangent at p1 given its neighbours, limited so the curve
// does not overshoot.
func slope3(p0, p1, p2 Point) float64 {
	h0, h1 := p1.X-p0.X, p2.X-p1.X
	if h0+h1 == 0 {
		return 0
	}
	var s0, s1 float64
	if h0 != 0 {
		s0 = (p1.Y - p0.Y) / h0
	}
	if h1 != 0 {
		s1 = (p2.Y - p1.Y) / h1
	}
	p := (s0*h1 + s1*h0) / (h0 + h1)
	v := (sign(s0) + sign(s1)) * math.Min(math.Min(math.Abs(s0), math.Abs(s1)), 0.5*math.Abs(p))
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// slope2 is the one-sided tangent at an end point.
func slope2(p0, p1 Point, t float64) float64 {
	h := p1.X - p0.X
	if h == 0 {
		return t
	}
	return (3*(p1.Y-p0.Y)/h - t) / 2
}
