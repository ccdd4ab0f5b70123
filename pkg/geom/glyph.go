package geom

import "github.com/matzehuels/chartmotion/pkg/scale"

// DefaultGlyphSize is the glyph size used when none is configured.
const DefaultGlyphSize = 6

// Scatter positions point marks (glyphs).
type Scatter[D any] struct {
	Accessors[D]
	Orientation Orientation
	// Offset is added to both coordinates.
	Offset float64
	// Size is the constant glyph size; SizeOf overrides it per datum.
	Size   float64
	SizeOf func(D) float64
}

// Glyph returns the mark for d. Banded axes place the glyph at the slot
// center.
func (g Scatter[D]) Glyph(d D, sc Scales) (Glyph, bool) {
	cat, val := sc.Category(g.Orientation), sc.Value(g.Orientation)
	c, ok := scale.MapValue(cat, g.Category(d))
	if !ok {
		return Glyph{}, false
	}
	v, ok := scale.MapValue(val, g.Value(d))
	if !ok {
		return Glyph{}, false
	}
	c += scale.CenterOffset(cat) + g.Offset
	v += scale.CenterOffset(val) + g.Offset

	size := g.Size
	if size == 0 {
		size = DefaultGlyphSize
	}
	if g.SizeOf != nil {
		size = g.SizeOf(d)
	}
	if !finite(c, v, size) || size < 0 {
		return Glyph{}, false
	}
	if g.Orientation == Horizontal {
		return Glyph{X: v, Y: c, Size: size}, true
	}
	return Glyph{X: c, Y: v, Size: size}, true
}
