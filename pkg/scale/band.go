package scale

import (
	"math"
	"slices"
)

// Band maps an ordered set of categories onto equal-width slots across the
// range. Point is a Band with zero bandwidth.
//
// Layout follows the usual band-scale model: the range is divided into
// n - paddingInner + 2*paddingOuter steps, each category occupies
// step*(1-paddingInner) pixels, and leftover space is distributed by align.
type Band struct {
	kind         Kind
	domain       []any
	index        map[any]int
	r0, r1       float64
	paddingInner float64
	paddingOuter float64
	align        float64
	round        bool

	step      float64
	bandwidth float64
	positions []float64
}

// BandOption configures a Band or Point scale.
type BandOption func(*Band)

// WithPadding sets inner and outer padding together. For point scales it sets
// the outer padding only.
func WithPadding(p float64) BandOption {
	return func(s *Band) {
		if s.kind == KindBand {
			s.paddingInner = clamp01(p)
		}
		s.paddingOuter = math.Max(0, p)
	}
}

// WithPaddingInner sets the fraction of each step left empty between slots.
func WithPaddingInner(p float64) BandOption {
	return func(s *Band) {
		if s.kind == KindBand {
			s.paddingInner = clamp01(p)
		}
	}
}

// WithPaddingOuter sets the padding before the first and after the last slot,
// in steps.
func WithPaddingOuter(p float64) BandOption {
	return func(s *Band) { s.paddingOuter = math.Max(0, p) }
}

// WithAlign distributes outer space: 0 packs slots at the range start, 1 at
// the end. Defaults to 0.5.
func WithAlign(a float64) BandOption {
	return func(s *Band) { s.align = clamp01(a) }
}

// WithBandRound snaps the step and slot starts to integer pixels.
func WithBandRound() BandOption {
	return func(s *Band) { s.round = true }
}

// NewBand creates a band scale over domain mapped onto [r0, r1]. Duplicate
// categories keep their first position.
func NewBand(domain []any, r0, r1 float64, opts ...BandOption) *Band {
	return newBand(KindBand, domain, r0, r1, opts)
}

// NewPoint creates a point scale: categories are evenly spaced points and
// Bandwidth is 0.
func NewPoint(domain []any, r0, r1 float64, opts ...BandOption) *Band {
	return newBand(KindPoint, domain, r0, r1, opts)
}

func newBand(kind Kind, domain []any, r0, r1 float64, opts []BandOption) *Band {
	s := &Band{kind: kind, r0: r0, r1: r1, align: 0.5, index: make(map[any]int)}
	if kind == KindPoint {
		s.paddingInner = 1
	}
	for _, v := range domain {
		k := Key(v)
		if _, dup := s.index[k]; dup {
			continue
		}
		s.index[k] = len(s.domain)
		s.domain = append(s.domain, v)
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rescale()
	return s
}

func (s *Band) rescale() {
	n := float64(len(s.domain))
	reverse := s.r1 < s.r0
	start, stop := s.r0, s.r1
	if reverse {
		start, stop = stop, start
	}
	s.step = (stop - start) / math.Max(1, n-s.paddingInner+s.paddingOuter*2)
	if s.round {
		s.step = math.Floor(s.step)
	}
	start += (stop - start - s.step*(n-s.paddingInner)) * s.align
	s.bandwidth = s.step * (1 - s.paddingInner)
	if s.round {
		start = math.Round(start)
		s.bandwidth = math.Round(s.bandwidth)
	}
	s.positions = make([]float64, len(s.domain))
	for i := range s.positions {
		s.positions[i] = start + s.step*float64(i)
	}
	if reverse {
		slices.Reverse(s.positions)
	}
}

func (s *Band) Kind() Kind         { return s.kind }
func (s *Band) Bandwidth() float64 { return s.bandwidth }
func (s *Band) Round() bool        { return s.round }
func (s *Band) Range() [2]float64  { return [2]float64{s.r0, s.r1} }

// Step is the distance between the starts of adjacent slots.
func (s *Band) Step() float64 { return s.step }

// Domain returns the categories in slot order.
func (s *Band) Domain() []any { return slices.Clone(s.domain) }

// Copy returns an independent clone.
func (s *Band) Copy() Scale {
	c := *s
	c.domain = slices.Clone(s.domain)
	c.positions = slices.Clone(s.positions)
	c.index = make(map[any]int, len(s.index))
	for k, v := range s.index {
		c.index[k] = v
	}
	return &c
}

// Map returns the start of v's slot. Unknown categories are undefined.
func (s *Band) Map(v any) (float64, bool) {
	i, ok := s.index[Key(v)]
	if !ok {
		return math.NaN(), false
	}
	return s.positions[i], true
}

// Ticks returns every category; banded axes label each slot.
func (s *Band) Ticks(int) []any { return s.Domain() }

// TickFormat ignores count and specifier and labels categories verbatim.
func (s *Band) TickFormat(int, string) func(any) string { return Label }

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
