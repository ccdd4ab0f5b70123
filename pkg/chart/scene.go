package chart

import (
	"github.com/matzehuels/chartmotion/pkg/geom"
	"github.com/matzehuels/chartmotion/pkg/render"
	"github.com/matzehuels/chartmotion/pkg/scale"
)

// element is one drawable mark. place positions it under any set of scales,
// which lets the animator ask where an element would sit under the scales
// of another frame.
type element struct {
	key    string
	series string
	color  string
	place  func(sc geom.Scales) (geom.Shape, bool)
}

func placeElement(el element, sc geom.Scales) (geom.Shape, bool) { return el.place(sc) }

func elementKey(el element) string { return el.key }

// elements lists the marks of the layout in drawing order.
func (l *Layout) elements() []element {
	c := l.Chart
	o := l.Orientation
	var out []element

	switch c.Mark {
	case MarkStackedBar:
		gen := geom.StackBar[Datum]{Orientation: o}
		for _, layer := range l.Stack.Layers {
			color := c.Color(layer.Key)
			for _, seg := range layer.Segments {
				if !seg.HasSource {
					continue
				}
				out = append(out, element{
					key:    seg.Series + "/" + seg.Source.Key,
					series: seg.Series,
					color:  color,
					place: func(sc geom.Scales) (geom.Shape, bool) {
						r, ok := gen.Rect(seg, sc)
						return geom.RectShape(r), ok
					},
				})
			}
		}
		return out

	case MarkLine:
		gen := geom.Line[Datum]{Accessors: datumAccessors, Orientation: o}
		for _, e := range l.Registry.Entries() {
			out = append(out, element{
				key:    e.Key,
				series: e.Key,
				color:  c.Color(e.Key),
				place: func(sc geom.Scales) (geom.Shape, bool) {
					p, ok := gen.Polyline(e.Data, sc)
					return geom.LineShape(p), ok
				},
			})
		}
		return out
	}

	for _, e := range l.Registry.Entries() {
		color := c.Color(e.Key)
		for _, d := range e.Data {
			el := element{key: e.Key + "/" + d.Key, series: e.Key, color: color}
			switch c.Mark {
			case MarkGroupedBar:
				gen := geom.GroupBar[Datum]{Accessors: datumAccessors, Orientation: o}
				sd := geom.SeriesDatum[Datum]{Series: e.Key, Datum: d}
				el.place = func(sc geom.Scales) (geom.Shape, bool) {
					r, ok := gen.Rect(sd, sc)
					return geom.RectShape(r), ok
				}
			case MarkGlyph:
				gen := geom.Scatter[Datum]{Accessors: datumAccessors, Orientation: o, Size: c.GlyphSize}
				if d.Size > 0 {
					gen.Size = d.Size
				}
				el.place = func(sc geom.Scales) (geom.Shape, bool) {
					g, ok := gen.Glyph(d, sc)
					return geom.GlyphShape(g), ok
				}
			default:
				gen := geom.Bar[Datum]{Accessors: datumAccessors, Orientation: o}
				el.place = func(sc geom.Scales) (geom.Shape, bool) {
					r, ok := gen.Rect(d, sc)
					return geom.RectShape(r), ok
				}
			}
			out = append(out, el)
		}
	}
	return out
}

// =============================================================================
// Axes
// =============================================================================

// axisPlan is one visible axis of a layout.
type axisPlan struct {
	name   string
	gen    geom.TickGenerator
	origin geom.Point
	path   string
	ticks  []geom.TickDatum
}

// tickGenerator returns the axis spec and tick placement of axis name ("x"
// or "y").
func (c *Chart) tickGenerator(name string) (*Axis, geom.TickGenerator) {
	a, p := &c.X, geom.Bottom
	if name == "y" {
		a, p = &c.Y, geom.Left
	}
	if a.Placement != "" {
		p, _ = geom.ParsePlacement(a.Placement)
	}
	size := float64(DefaultTickSize)
	if a.TickSize != nil {
		size = *a.TickSize
	}
	return a, geom.TickGenerator{Placement: p, Offset: a.Offset, Length: size}
}

// axisScale picks the scale an axis reads from a bundle.
func axisScale(name string, sc geom.Scales) scale.Scale {
	if name == "y" {
		return sc.Y
	}
	return sc.X
}

func (l *Layout) axes() []axisPlan {
	c := l.Chart
	var out []axisPlan
	for _, name := range []string{"x", "y"} {
		a, gen := c.tickGenerator(name)
		if a.Hide {
			continue
		}
		s := axisScale(name, l.Scales)

		var origin geom.Point
		switch gen.Placement {
		case geom.Bottom:
			origin.Y = c.innerHeight()
		case geom.Right:
			origin.X = c.innerWidth()
		}

		out = append(out, axisPlan{
			name:   name,
			gen:    gen,
			origin: origin,
			path:   geom.AxisDomainPath(s, gen.Placement, gen.Length, a.Offset),
			ticks: geom.Ticks(s, geom.TickOptions{
				Count:     a.Ticks,
				Values:    a.TickValues,
				Specifier: a.Format,
			}),
		})
	}
	return out
}

func (ap axisPlan) axis() render.Axis {
	return render.Axis{Placement: ap.gen.Placement, Origin: ap.origin, Path: ap.path}
}

// =============================================================================
// Scenes
// =============================================================================

func (l *Layout) frame() render.Scene {
	c := l.Chart
	return render.Scene{
		Width:  c.Width,
		Height: c.Height,
		Margin: *c.Margin,
		Title:  c.Title,
		Curve:  c.curve,
		Frame:  l.Frame,
	}
}

// Scene positions every mark and axis of the layout at full opacity.
func (l *Layout) Scene() render.Scene {
	s := l.frame()
	for _, el := range l.elements() {
		shape, ok := el.place(l.Scales)
		if !ok {
			continue
		}
		s.Marks = append(s.Marks, render.Mark{Key: el.key, Series: el.series, Shape: shape, Color: el.color, Opacity: 1})
	}
	for _, ap := range l.axes() {
		ax := ap.axis()
		for _, td := range ap.ticks {
			t, ok := ap.gen.Geometry(td, l.Scales)
			if !ok {
				continue
			}
			ax.Ticks = append(ax.Ticks, render.AxisTick{Key: geom.TickKey(td), Label: td.Label, Tick: t, Opacity: 1})
		}
		s.Axes = append(s.Axes, ax)
	}
	return s
}

// Scene builds frame and returns its static scene.
func (c *Chart) Scene(frame int) (render.Scene, error) {
	l, err := c.Build(frame)
	if err != nil {
		return render.Scene{}, err
	}
	return l.Scene(), nil
}
