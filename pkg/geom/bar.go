package geom

import (
	"math"

	"github.com/matzehuels/chartmotion/pkg/scale"
	"github.com/matzehuels/chartmotion/pkg/stack"
)

// span builds a rectangle from a position and thickness along the category
// axis and two edges along the value axis.
func span(o Orientation, pos, thickness, near, far float64) (Rect, bool) {
	if !finite(pos, thickness, near, far) {
		return Rect{}, false
	}
	lo, length := math.Min(near, far), math.Abs(far-near)
	thickness = math.Max(0, thickness)
	if o == Horizontal {
		return Rect{X: lo, Y: pos, Width: length, Height: thickness}, true
	}
	return Rect{X: pos, Y: lo, Width: thickness, Height: length}, true
}

// Bar positions single-series bars.
type Bar[D any] struct {
	Accessors[D]
	Orientation Orientation
	// Offset is added to the position along the category axis.
	Offset float64
}

// Rect returns the bar for d: the category scale places it, the value scale
// gives the far edge and Baseline the near edge.
func (b Bar[D]) Rect(d D, sc Scales) (Rect, bool) {
	cat, val := sc.Category(b.Orientation), sc.Value(b.Orientation)
	pos, ok := scale.MapValue(cat, b.Category(d))
	if !ok {
		return Rect{}, false
	}
	far, ok := scale.MapValue(val, b.Value(d))
	if !ok {
		return Rect{}, false
	}
	return span(b.Orientation, pos+b.Offset, scale.Bandwidth(cat), scale.Baseline(val), far)
}

// SeriesDatum tags a datum with the series it belongs to.
type SeriesDatum[D any] struct {
	Series string
	Datum  D
}

// GroupBar positions bars of several series side by side within each
// category slot. sc.Group maps series keys across the category bandwidth.
type GroupBar[D any] struct {
	Accessors[D]
	Orientation Orientation
	Offset      float64
}

// Rect returns the bar for one series' datum.
func (g GroupBar[D]) Rect(sd SeriesDatum[D], sc Scales) (Rect, bool) {
	cat, val := sc.Category(g.Orientation), sc.Value(g.Orientation)
	pos, ok := scale.MapValue(cat, g.Category(sd.Datum))
	if !ok {
		return Rect{}, false
	}
	within, ok := scale.MapValue(sc.Group, sd.Series)
	if !ok {
		return Rect{}, false
	}
	far, ok := scale.MapValue(val, g.Value(sd.Datum))
	if !ok {
		return Rect{}, false
	}
	return span(g.Orientation, pos+within+g.Offset, scale.Bandwidth(sc.Group), scale.Baseline(val), far)
}

// NewGroupScale builds the band scale that spreads series keys across one
// slot of the category scale.
func NewGroupScale(keys []string, category scale.Scale, opts ...scale.BandOption) *scale.Band {
	domain := make([]any, len(keys))
	for i, k := range keys {
		domain[i] = k
	}
	return scale.NewBand(domain, 0, scale.Bandwidth(category), opts...)
}

// StackBar positions stacked bar segments.
type StackBar[D any] struct {
	Orientation Orientation
	Offset      float64
}

// Rect maps a segment's [Low, High] through the value scale.
func (s StackBar[D]) Rect(seg stack.Segment[D], sc Scales) (Rect, bool) {
	cat, val := sc.Category(s.Orientation), sc.Value(s.Orientation)
	pos, ok := scale.MapValue(cat, seg.Category)
	if !ok {
		return Rect{}, false
	}
	lo, ok := scale.MapValue(val, seg.Low)
	if !ok {
		return Rect{}, false
	}
	hi, ok := scale.MapValue(val, seg.High)
	if !ok {
		return Rect{}, false
	}
	return span(s.Orientation, pos+s.Offset, scale.Bandwidth(cat), lo, hi)
}

// SegmentKey is the default identity of a stacked segment.
func SegmentKey[D any](seg stack.Segment[D]) string {
	return seg.Series + "/" + scale.KeyString(seg.Category)
}
