package geom

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/chartmotion/pkg/scale"
)

// Polyline is a series mapped to points. Points[i] is only meaningful when
// Defined[i]; undefined points break the line.
type Polyline struct {
	Points  []Point `json:"points"`
	Defined []bool  `json:"defined"`
}

// Runs returns the contiguous stretches of defined points.
func (p Polyline) Runs() [][]Point {
	var runs [][]Point
	var cur []Point
	for i, pt := range p.Points {
		if i < len(p.Defined) && p.Defined[i] {
			cur = append(cur, pt)
			continue
		}
		if len(cur) > 0 {
			runs = append(runs, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}
	return runs
}

// Path renders the polyline as an SVG path with the given curve. Each run of
// defined points becomes its own subpath.
func (p Polyline) Path(c Curve) string {
	var b strings.Builder
	for _, run := range p.Runs() {
		writeCurve(&b, c, run)
	}
	return b.String()
}

// Line maps a whole series to one polyline.
type Line[D any] struct {
	Accessors[D]
	Orientation Orientation
	// Offset is added to both coordinates.
	Offset float64
}

// Polyline returns the series' line. A point is defined when both its
// coordinates are finite; ok is false when no point is.
func (l Line[D]) Polyline(data []D, sc Scales) (Polyline, bool) {
	cat, val := sc.Category(l.Orientation), sc.Value(l.Orientation)
	out := Polyline{Points: make([]Point, len(data)), Defined: make([]bool, len(data))}
	defined := false
	for i, d := range data {
		c, okc := scale.MapValue(cat, l.Category(d))
		v, okv := scale.MapValue(val, l.Value(d))
		if !okc || !okv {
			continue
		}
		c += scale.CenterOffset(cat) + l.Offset
		v += scale.CenterOffset(val) + l.Offset
		if l.Orientation == Horizontal {
			out.Points[i] = Point{X: v, Y: c}
		} else {
			out.Points[i] = Point{X: c, Y: v}
		}
		out.Defined[i] = true
		defined = true
	}
	return out, defined
}

// num formats a path coordinate with at most three decimals.
func num(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func pt(p Point) string { return num(p.X) + "," + num(p.Y) }
