package geom

import (
	"strings"

	"github.com/matzehuels/chartmotion/pkg/errors"
	"github.com/matzehuels/chartmotion/pkg/scale"
)

// TickDatum is one axis tick.
type TickDatum struct {
	Value any    `json:"value"`
	Index int    `json:"index"`
	Label string `json:"label"`
}

// TickOptions control tick generation. Values overrides the scale's automatic
// ticks; Format overrides the scale's formatter built from Specifier.
type TickOptions struct {
	Count     int
	Values    []any
	Specifier string
	Format    func(any) string
}

// Ticks returns labelled ticks for s.
func Ticks(s scale.Scale, opts TickOptions) []TickDatum {
	if s == nil {
		return nil
	}
	values := opts.Values
	if values == nil {
		values = s.Ticks(opts.Count)
	}
	format := opts.Format
	if format == nil {
		format = s.TickFormat(opts.Count, opts.Specifier)
	}
	out := make([]TickDatum, len(values))
	for i, v := range values {
		out[i] = TickDatum{Value: v, Index: i, Label: format(v)}
	}
	return out
}

// TickKey is the default identity of a tick across updates.
func TickKey(t TickDatum) string {
	return scale.KeyString(t.Value)
}

// TickPosition returns the pixel position of a tick: the mapped value, moved
// to the slot center on banded scales, plus offset. The offset is applied
// last so stroke alignment is not disturbed by centering.
func TickPosition(s scale.Scale, value any, offset float64) (float64, bool) {
	px, ok := scale.MapValue(s, value)
	if !ok {
		return 0, false
	}
	px += scale.CenterOffset(s) + offset
	if !finite(px) {
		return 0, false
	}
	return px, true
}

// Placement is the side of the plot an axis is drawn on.
type Placement int

const (
	Bottom Placement = iota
	Top
	Left
	Right
)

var placementNames = [...]string{Bottom: "bottom", Top: "top", Left: "left", Right: "right"}

func (p Placement) String() string {
	if p >= 0 && int(p) < len(placementNames) {
		return placementNames[p]
	}
	return "bottom"
}

// MarshalText implements encoding.TextMarshaler.
func (p Placement) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// ParsePlacement converts a configuration name into a Placement.
func ParsePlacement(s string) (Placement, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range placementNames {
		if n == name {
			return Placement(i), nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown axis placement: %q", s)
}

// Horizontal reports whether the axis runs along X.
func (p Placement) Horizontal() bool { return p == Bottom || p == Top }

// Direction is +1 when ticks point away from the plot toward positive pixel
// coordinates (bottom, right) and -1 otherwise.
func (p Placement) Direction() float64 {
	if p == Top || p == Left {
		return -1
	}
	return 1
}

// TickGenerator positions ticks along an axis.
type TickGenerator struct {
	Placement Placement
	Offset    float64
	// Length is the tick length away from the axis line.
	Length float64
}

// Tick is a tick's geometry: From on the axis line, To at the tick's tip.
type Tick struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// Line returns the tick mark as a two-point polyline.
func (t Tick) Line() Polyline {
	return Polyline{Points: []Point{t.From, t.To}, Defined: []bool{true, true}}
}

// Geometry places one tick. The axis scale is X for horizontal placements
// and Y otherwise.
func (g TickGenerator) Geometry(t TickDatum, sc Scales) (Tick, bool) {
	s := sc.Y
	if g.Placement.Horizontal() {
		s = sc.X
	}
	pos, ok := TickPosition(s, t.Value, g.Offset)
	if !ok {
		return Tick{}, false
	}
	k := g.Placement.Direction()
	if g.Placement.Horizontal() {
		return Tick{From: Point{X: pos, Y: 0}, To: Point{X: pos, Y: k * g.Length}}, true
	}
	return Tick{From: Point{X: 0, Y: pos}, To: Point{X: k * g.Length, Y: pos}}, true
}

// AxisDomainPath returns the path of the axis line across the range of s,
// with outer ticks of length outer at both ends. Coordinates are relative to
// the axis origin; offset shifts the line for crisp strokes.
func AxisDomainPath(s scale.Scale, p Placement, outer, offset float64) string {
	if s == nil {
		return ""
	}
	r := s.Range()
	r0, r1 := r[0]+offset, r[1]+offset
	k := p.Direction() * outer

	var b strings.Builder
	if p.Horizontal() {
		if outer != 0 {
			b.WriteString("M" + num(r0) + "," + num(k) + "V" + num(offset) + "H" + num(r1) + "V" + num(k))
		} else {
			b.WriteString("M" + num(r0) + "," + num(offset) + "H" + num(r1))
		}
		return b.String()
	}
	if outer != 0 {
		b.WriteString("M" + num(k) + "," + num(r0) + "H" + num(offset) + "V" + num(r1) + "H" + num(k))
	} else {
		b.WriteString("M" + num(offset) + "," + num(r0) + "V" + num(r1))
	}
	return b.String()
}
