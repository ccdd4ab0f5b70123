package chart

import (
	"github.com/matzehuels/chartmotion/pkg/geom"
	"github.com/matzehuels/chartmotion/pkg/nearest"
)

// Hit is the datum nearest to a pointer.
type Hit struct {
	Series string `json:"series"`
	Datum  Datum  `json:"datum"`
	// Distance is along the category axis, Orthogonal across it, both in
	// pixels.
	Distance   float64    `json:"distance"`
	Orthogonal float64    `json:"orthogonal"`
	Snap       geom.Point `json:"snap"`
}

// Nearest locates the datum closest to pointer, given in plot coordinates.
// Stacked bars resolve to the segment under the pointer; other marks search
// every series along the category axis.
func (l *Layout) Nearest(pointer geom.Point) (Hit, bool) {
	if l.Stack != nil {
		r, ok := nearest.FindStacked(nearest.StackQuery[Datum]{
			Stack:       l.Stack,
			Scales:      l.Scales,
			Orientation: l.Orientation,
		}, pointer)
		if !ok {
			return Hit{}, false
		}
		return Hit{
			Series:     r.Segment.Series,
			Datum:      r.Datum,
			Distance:   r.Distance,
			Orthogonal: r.Orthogonal,
			Snap:       r.Snap,
		}, true
	}

	axis := nearest.AxisX
	if l.Orientation == geom.Horizontal {
		axis = nearest.AxisY
	}
	r, ok := nearest.FindAcross(l.Registry, l.Scales, l.Orientation, axis, pointer)
	if !ok {
		return Hit{}, false
	}
	return Hit{
		Series:     r.Series,
		Datum:      r.Datum,
		Distance:   r.Distance,
		Orthogonal: r.Orthogonal,
		Snap:       r.Snap,
	}, true
}

// Nearest builds frame and locates the datum closest to pointer.
func (c *Chart) Nearest(frame int, pointer geom.Point) (Hit, bool, error) {
	l, err := c.Build(frame)
	if err != nil {
		return Hit{}, false, err
	}
	h, ok := l.Nearest(pointer)
	return h, ok, nil
}

// PlotPoint converts a canvas position into plot coordinates.
func (c *Chart) PlotPoint(canvas geom.Point) geom.Point {
	return geom.Point{X: canvas.X - c.Margin.Left, Y: canvas.Y - c.Margin.Top}
}
