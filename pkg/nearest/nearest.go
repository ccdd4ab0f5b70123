// Package nearest finds the datum closest to a pointer for hover and tooltip
// interaction.
//
// Data is searched along one pixel axis with a binary search, so series must
// be sorted along that axis in domain order (ascending or descending pixel
// positions both work). Unsorted input is detected and scanned linearly.
// Distances are reported in pixels.
package nearest

import (
	"math"
	"sort"

	"github.com/matzehuels/chartmotion/pkg/geom"
	"github.com/matzehuels/chartmotion/pkg/registry"
	"github.com/matzehuels/chartmotion/pkg/scale"
	"github.com/matzehuels/chartmotion/pkg/stack"
)

// Axis is the pixel axis searched.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Query describes one series to search.
type Query[D any] struct {
	Data        []D
	Accessors   geom.Accessors[D]
	Scales      geom.Scales
	Orientation geom.Orientation
	Axis        Axis
	// Series places the data within the category slot through
	// Scales.Group, as grouped bars are drawn. Ignored without a group scale.
	Series string
}

// Result is a located datum.
type Result[D any] struct {
	Datum D
	Index int
	// Distance is measured along the searched axis, Orthogonal along the
	// other one.
	Distance   float64
	Orthogonal float64
	// Snap is where a tooltip should anchor: the datum's own position,
	// centered in its slot on banded axes or in its bar when grouped.
	Snap geom.Point
}

type candidate struct {
	index int
	at    geom.Point
}

func (c candidate) along(a Axis) float64 {
	if a == AxisY {
		return c.at.Y
	}
	return c.at.X
}

// positions maps every datum whose position is defined.
func positions[D any](q Query[D]) []candidate {
	cat, val := q.Scales.Category(q.Orientation), q.Scales.Value(q.Orientation)
	out := make([]candidate, 0, len(q.Data))
	for i, d := range q.Data {
		c, ok := scale.MapValue(cat, q.Accessors.Category(d))
		if !ok {
			continue
		}
		v, ok := scale.MapValue(val, q.Accessors.Value(d))
		if !ok {
			continue
		}
		if q.Scales.Group != nil {
			within, ok := scale.MapValue(q.Scales.Group, q.Series)
			if !ok {
				continue
			}
			c += within + scale.CenterOffset(q.Scales.Group)
		} else {
			c += scale.CenterOffset(cat)
		}
		v += scale.CenterOffset(val)
		if q.Orientation == geom.Horizontal {
			out = append(out, candidate{i, geom.Point{X: v, Y: c}})
		} else {
			out = append(out, candidate{i, geom.Point{X: c, Y: v}})
		}
	}
	return out
}

// Find returns the datum nearest to pointer along q.Axis. ok is false when
// no datum has a defined position or an accessor is missing.
func Find[D any](q Query[D], pointer geom.Point) (Result[D], bool) {
	if q.Accessors.Validate() != nil {
		return Result[D]{}, false
	}
	cands := positions(q)
	best, ok := closest(cands, q.Axis, pointer)
	if !ok {
		return Result[D]{}, false
	}
	c := cands[best]
	p, o := split(pointer, q.Axis)
	cp, co := split(c.at, q.Axis)
	return Result[D]{
		Datum:      q.Data[c.index],
		Index:      c.index,
		Distance:   math.Abs(cp - p),
		Orthogonal: math.Abs(co - o),
		Snap:       c.at,
	}, true
}

// split returns a point's coordinate along a and across it.
func split(p geom.Point, a Axis) (along, across float64) {
	if a == AxisY {
		return p.Y, p.X
	}
	return p.X, p.Y
}

// closest returns the index into cands nearest to pointer along a. Ties go
// to the earlier datum.
func closest(cands []candidate, a Axis, pointer geom.Point) (int, bool) {
	n := len(cands)
	if n == 0 {
		return 0, false
	}
	target, _ := split(pointer, a)
	dist := func(i int) float64 { return math.Abs(cands[i].along(a) - target) }

	asc, desc := true, true
	for i := 1; i < n; i++ {
		prev, cur := cands[i-1].along(a), cands[i].along(a)
		asc = asc && cur >= prev
		desc = desc && cur <= prev
	}

	if !asc && !desc {
		best := 0
		for i := 1; i < n; i++ {
			if dist(i) < dist(best) {
				best = i
			}
		}
		return best, true
	}

	i := sort.Search(n, func(i int) bool {
		if asc {
			return cands[i].along(a) >= target
		}
		return cands[i].along(a) <= target
	})
	switch {
	case i == 0:
		return 0, true
	case i == n:
		return n - 1, true
	case dist(i-1) <= dist(i):
		return i - 1, true
	default:
		return i, true
	}
}

// =============================================================================
// Stacks
// =============================================================================

// StackQuery describes a stacked layout to search. The searched axis is the
// category axis of Orientation.
type StackQuery[D any] struct {
	Stack       *stack.Result[D]
	Scales      geom.Scales
	Orientation geom.Orientation
}

// StackResult is a located stack segment.
type StackResult[D any] struct {
	// Datum is the caller's datum behind the segment.
	Datum   D
	Segment stack.Segment[D]
	// Distance is along the category axis; Orthogonal along the value axis
	// and 0 when the pointer lies within the segment's span.
	Distance   float64
	Orthogonal float64
	Snap       geom.Point
}

// FindStacked locates the segment under or nearest to pointer: the nearest
// category along the category axis, then the segment at that category whose
// span contains the pointer or, failing that, whose edge is nearest.
// Segments whose series has no datum at the category are skipped.
func FindStacked[D any](q StackQuery[D], pointer geom.Point) (StackResult[D], bool) {
	if q.Stack == nil || q.Stack.Empty() {
		return StackResult[D]{}, false
	}
	cat, val := q.Scales.Category(q.Orientation), q.Scales.Value(q.Orientation)
	axis := AxisX
	if q.Orientation == geom.Horizontal {
		axis = AxisY
	}

	// category centers, in category order
	var cands []candidate
	for j, c := range q.Stack.Categories {
		px, ok := scale.MapValue(cat, c)
		if !ok {
			continue
		}
		px += scale.CenterOffset(cat)
		if axis == AxisX {
			cands = append(cands, candidate{j, geom.Point{X: px}})
		} else {
			cands = append(cands, candidate{j, geom.Point{Y: px}})
		}
	}
	ci, ok := closest(cands, axis, pointer)
	if !ok {
		return StackResult[D]{}, false
	}
	j := cands[ci].index
	catPx := cands[ci].along(axis)
	p, o := split(pointer, axis)

	var best StackResult[D]
	found := false
	for _, l := range q.Stack.Layers {
		seg := l.Segments[j]
		if !seg.HasSource {
			continue
		}
		lo, okLo := scale.MapValue(val, seg.Low)
		hi, okHi := scale.MapValue(val, seg.High)
		if !okLo || !okHi {
			continue
		}
		var cross float64
		if o < math.Min(lo, hi) || o > math.Max(lo, hi) {
			cross = math.Min(math.Abs(o-lo), math.Abs(o-hi))
		}
		if found && cross >= best.Orthogonal {
			continue
		}
		snap := geom.Point{X: catPx, Y: hi}
		if axis == AxisY {
			snap = geom.Point{X: hi, Y: catPx}
		}
		best = StackResult[D]{
			Datum:      seg.Source,
			Segment:    seg,
			Distance:   math.Abs(catPx - p),
			Orthogonal: cross,
			Snap:       snap,
		}
		found = true
	}
	return best, found
}

// =============================================================================
// Across series
// =============================================================================

// SeriesResult is a located datum tagged with its series key.
type SeriesResult[D any] struct {
	Result[D]
	Series string
}

// FindAcross searches every registered series and returns the overall
// nearest datum: smallest Distance, then smallest Orthogonal, then earliest
// registration.
func FindAcross[D any](reg *registry.Registry[D], sc geom.Scales, o geom.Orientation, a Axis, pointer geom.Point) (SeriesResult[D], bool) {
	var best SeriesResult[D]
	found := false
	for _, e := range reg.Entries() {
		r, ok := Find(Query[D]{
			Data:        e.Data,
			Accessors:   geom.Accessors[D]{Category: e.Category, Value: e.Value},
			Scales:      sc,
			Orientation: o,
			Axis:        a,
			Series:      e.Key,
		}, pointer)
		if !ok {
			continue
		}
		if !found || r.Distance < best.Distance ||
			(r.Distance == best.Distance && r.Orthogonal < best.Orthogonal) {
			best = SeriesResult[D]{Result: r, Series: e.Key}
			found = true
		}
	}
	return best, found
}
