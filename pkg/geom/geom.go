package geom

import (
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/chartmotion/pkg/errors"
	"github.com/matzehuels/chartmotion/pkg/scale"
)

// =============================================================================
// Orientation
// =============================================================================

// Orientation selects which axis carries categories.
type Orientation int

const (
	// Vertical bars grow along Y; X carries categories.
	Vertical Orientation = iota
	// Horizontal bars grow along X; Y carries categories.
	Horizontal
)

func (o Orientation) String() string {
	if o == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// ParseOrientation converts a configuration name into an Orientation. The
// empty string means Vertical.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "vertical":
		return Vertical, nil
	case "horizontal":
		return Horizontal, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown orientation: %q (must be vertical or horizontal)", s)
}

// =============================================================================
// Geometry
// =============================================================================

// Point is a pixel position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle. Width and Height are never negative.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the rectangle's midpoint.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Glyph is a point mark with a size.
type Glyph struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

// Shape is a tagged union over the mark geometries so heterogeneous marks can
// share one transition engine and one renderer.
type Shape struct {
	Kind  ShapeKind `json:"kind"`
	Rect  Rect      `json:"rect,omitzero"`
	Glyph Glyph     `json:"glyph,omitzero"`
	Line  Polyline  `json:"line,omitzero"`
}

// ShapeKind discriminates Shape.
type ShapeKind int

const (
	ShapeRect ShapeKind = iota + 1
	ShapeGlyph
	ShapeLine
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeRect:
		return "rect"
	case ShapeGlyph:
		return "glyph"
	case ShapeLine:
		return "line"
	}
	return fmt.Sprintf("ShapeKind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k ShapeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// RectShape wraps a Rect.
func RectShape(r Rect) Shape { return Shape{Kind: ShapeRect, Rect: r} }

// GlyphShape wraps a Glyph.
func GlyphShape(g Glyph) Shape { return Shape{Kind: ShapeGlyph, Glyph: g} }

// LineShape wraps a Polyline.
func LineShape(p Polyline) Shape { return Shape{Kind: ShapeLine, Line: p} }

// =============================================================================
// Scales and accessors
// =============================================================================

// Scales bundles the scales a generator reads. Group is only used by grouped
// bars.
type Scales struct {
	X     scale.Scale
	Y     scale.Scale
	Group scale.Scale
}

// Copy clones every scale so the bundle is unaffected by later changes.
func (s Scales) Copy() Scales {
	c := Scales{}
	if s.X != nil {
		c.X = s.X.Copy()
	}
	if s.Y != nil {
		c.Y = s.Y.Copy()
	}
	if s.Group != nil {
		c.Group = s.Group.Copy()
	}
	return c
}

// Banded reports whether either position axis is banded.
func (s Scales) Banded() bool {
	return scale.IsBanded(s.X) || scale.IsBanded(s.Y)
}

// Category returns the scale carrying categories for o.
func (s Scales) Category(o Orientation) scale.Scale {
	if o == Horizontal {
		return s.Y
	}
	return s.X
}

// Value returns the scale carrying values for o.
func (s Scales) Value(o Orientation) scale.Scale {
	if o == Horizontal {
		return s.X
	}
	return s.Y
}

// Validate checks that the position scales are usable.
func (s Scales) Validate() error {
	if err := scale.Validate(s.X); err != nil {
		return errors.Wrap(errors.ErrCodeUnsupportedScale, err, "x scale")
	}
	if err := scale.Validate(s.Y); err != nil {
		return errors.Wrap(errors.ErrCodeUnsupportedScale, err, "y scale")
	}
	if s.Group != nil {
		if err := scale.Validate(s.Group); err != nil {
			return errors.Wrap(errors.ErrCodeUnsupportedScale, err, "group scale")
		}
	}
	return nil
}

// Accessors read the engine's view of a datum. A Value of NaN marks a
// missing value.
type Accessors[D any] struct {
	Category func(D) any
	Value    func(D) float64
	// Key identifies the datum across updates. Optional for static
	// geometry.
	Key func(D) string
}

// Validate fails when a required accessor is missing.
func (a Accessors[D]) Validate() error {
	if a.Category == nil {
		return errors.New(errors.ErrCodeMissingAccessor, "category accessor is required")
	}
	if a.Value == nil {
		return errors.New(errors.ErrCodeMissingAccessor, "value accessor is required")
	}
	return nil
}

// =============================================================================
// Generators
// =============================================================================

// Generator produces geometry for one datum; ok == false means the datum has
// no valid geometry under these scales and must not be drawn.
type Generator[D, G any] func(d D, sc Scales) (G, bool)

// Compute runs gen over data. A nil entry marks a datum to omit.
func Compute[D, G any](data []D, sc Scales, gen Generator[D, G]) []*G {
	out := make([]*G, len(data))
	for i, d := range data {
		if g, ok := gen(d, sc); ok {
			out[i] = &g
		}
	}
	return out
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
