package scale

import (
	"math"

	mscale "github.com/aclements/go-moremath/scale"
)

// DefaultTickCount is the tick count used when callers pass count <= 0.
const DefaultTickCount = 10

// Linear is a continuous scale. Domain normalization and tick selection are
// delegated to go-moremath's scale.Linear; Linear adds the pixel range,
// clamping and rounding.
type Linear struct {
	lin    mscale.Linear
	r0, r1 float64
	clamp  bool
	round  bool
}

// LinearOption configures a Linear scale.
type LinearOption func(*Linear)

// WithClamp clamps inputs to the domain so outputs stay within the range.
func WithClamp() LinearOption { return func(s *Linear) { s.clamp = true } }

// WithRound rounds outputs to integer pixels.
func WithRound() LinearOption { return func(s *Linear) { s.round = true } }

// WithNice extends the domain to round tick values.
func WithNice(count int) LinearOption { return func(s *Linear) { s.Nice(count) } }

// NewLinear creates a continuous scale mapping [d0, d1] onto [r0, r1].
func NewLinear(d0, d1, r0, r1 float64, opts ...LinearOption) *Linear {
	s := &Linear{
		lin: mscale.Linear{Min: d0, Max: d1},
		r0:  r0,
		r1:  r1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Linear) Kind() Kind         { return KindContinuous }
func (s *Linear) Bandwidth() float64 { return 0 }
func (s *Linear) Round() bool        { return s.round }
func (s *Linear) Range() [2]float64  { return [2]float64{s.r0, s.r1} }
func (s *Linear) Domain() []any      { return []any{s.lin.Min, s.lin.Max} }

// Copy returns an independent clone.
func (s *Linear) Copy() Scale {
	c := *s
	return &c
}

// Map maps a numeric value. Non-numeric values are undefined.
func (s *Linear) Map(v any) (float64, bool) {
	x, ok := ToFloat(v)
	if !ok {
		return math.NaN(), false
	}
	return s.mapFloat(x), true
}

func (s *Linear) mapFloat(x float64) float64 {
	f := 0.5
	if s.lin.Min != s.lin.Max {
		f = s.lin.Map(x)
	}
	if s.clamp {
		f = math.Max(0, math.Min(1, f))
	}
	px := s.r0 + f*(s.r1-s.r0)
	if s.round {
		px = math.Round(px)
	}
	return px
}

// Invert maps a pixel position back into the domain.
func (s *Linear) Invert(px float64) float64 {
	if s.r1 == s.r0 {
		return s.lin.Min
	}
	f := (px - s.r0) / (s.r1 - s.r0)
	if s.clamp {
		f = math.Max(0, math.Min(1, f))
	}
	return s.lin.Min + f*(s.lin.Max-s.lin.Min)
}

// ascending returns the moremath scale with Min <= Max, which is what its
// tick search expects.
func (s *Linear) ascending() mscale.Linear {
	ls := s.lin
	if ls.Min > ls.Max {
		ls.Min, ls.Max = ls.Max, ls.Min
	}
	return ls
}

// Ticks returns at most count round values inside the domain.
func (s *Linear) Ticks(count int) []any {
	major := s.tickValues(count)
	out := make([]any, len(major))
	for i, v := range major {
		out[i] = v
	}
	return out
}

func (s *Linear) tickValues(count int) []float64 {
	if count <= 0 {
		count = DefaultTickCount
	}
	ls := s.ascending()
	if !Finite(ls.Min) || !Finite(ls.Max) {
		return nil
	}
	if ls.Min == ls.Max {
		return []float64{ls.Min}
	}
	major, _ := ls.Ticks(mscale.TickOptions{Max: count})
	return major
}

// TickFormat returns a formatter for this scale's ticks. An empty specifier
// picks a fixed precision matching the tick step.
func (s *Linear) TickFormat(count int, specifier string) func(any) string {
	return numberTickFormat(s.tickValues(count), specifier)
}

// Nice extends the domain outward to multiples of the tick step for at most
// count ticks. Reversed domains stay reversed.
func (s *Linear) Nice(count int) {
	if count <= 0 {
		count = DefaultTickCount
	}
	reversed := s.lin.Min > s.lin.Max
	ls := s.ascending()
	if !Finite(ls.Min) || !Finite(ls.Max) || ls.Min == ls.Max {
		return
	}
	ls.Nice(mscale.TickOptions{Max: count})
	if reversed {
		ls.Min, ls.Max = ls.Max, ls.Min
	}
	s.lin.Min, s.lin.Max = ls.Min, ls.Max
}
