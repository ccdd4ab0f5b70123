package chart

import (
	"encoding/json"
	"math"
	"time"

	"github.com/aclements/go-moremath/stats"

	"github.com/matzehuels/chartmotion/pkg/errors"
	"github.com/matzehuels/chartmotion/pkg/geom"
	"github.com/matzehuels/chartmotion/pkg/registry"
	"github.com/matzehuels/chartmotion/pkg/scale"
	"github.com/matzehuels/chartmotion/pkg/stack"
)

// Datum is one point of a built dataset.
type Datum struct {
	Series   string  `json:"series"`
	Index    int     `json:"index"`
	Key      string  `json:"key"`
	Category any     `json:"category"`
	Value    float64 `json:"value"`
	Size     float64 `json:"size,omitempty"`
}

// MarshalJSON writes a missing value as null.
func (d Datum) MarshalJSON() ([]byte, error) {
	type plain Datum
	out := struct {
		plain
		Value *float64 `json:"value"`
	}{plain: plain(d)}
	if scale.Finite(d.Value) {
		out.Value = &d.Value
	}
	return json.Marshal(out)
}

var datumAccessors = geom.Accessors[Datum]{
	Category: func(d Datum) any { return d.Category },
	Value:    func(d Datum) float64 { return d.Value },
	Key:      func(d Datum) string { return d.Key },
}

func toData(s Series) []Datum {
	out := make([]Datum, len(s.Points))
	for i, p := range s.Points {
		v := math.NaN()
		if p.Value != nil {
			v = *p.Value
		}
		key := p.Key
		if key == "" {
			key = scale.KeyString(p.Category)
		}
		out[i] = Datum{Series: s.Key, Index: i, Key: key, Category: p.Category, Value: v, Size: p.Size}
	}
	return out
}

// =============================================================================
// Layout
// =============================================================================

// Layout is one frame of a chart with its scales resolved. Geometry is in
// plot coordinates.
type Layout struct {
	Chart       *Chart
	Frame       int
	Orientation geom.Orientation
	Scales      geom.Scales
	Registry    *registry.Registry[Datum]
	// Stack is set for stacked-bar charts.
	Stack *stack.Result[Datum]
}

// Build registers the series of frame and resolves the scales.
func (c *Chart) Build(frame int) (*Layout, error) {
	reg, err := c.register(frame)
	if err != nil {
		return nil, err
	}

	l := &Layout{Chart: c, Frame: frame, Orientation: c.orientation, Registry: reg}
	if c.Mark == MarkStackedBar {
		if l.Stack, err = reg.Stack(c.Stack); err != nil {
			return nil, err
		}
	}
	if l.Scales, err = c.resolveScales(reg, l.Stack); err != nil {
		return nil, err
	}
	return l, nil
}

// StackFrame stacks the series of frame with the chart's stack config,
// whatever its mark.
func (c *Chart) StackFrame(frame int) (*stack.Result[Datum], error) {
	reg, err := c.register(frame)
	if err != nil {
		return nil, err
	}
	return reg.Stack(c.Stack)
}

func (c *Chart) register(frame int) (*registry.Registry[Datum], error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	series, err := c.SeriesAt(frame)
	if err != nil {
		return nil, err
	}

	reg := registry.New[Datum]()
	for _, s := range series {
		color := c.Color(s.Key)
		err := reg.Register(registry.Entry[Datum]{
			Key:      s.Key,
			Data:     toData(s),
			Category: datumAccessors.Category,
			Value:    datumAccessors.Value,
			DatumKey: datumAccessors.Key,
			Color:    func(Datum) string { return color },
		})
		if err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// =============================================================================
// Scales
// =============================================================================

func (c *Chart) resolveScales(reg *registry.Registry[Datum], st *stack.Result[Datum]) (geom.Scales, error) {
	w, h := c.innerWidth(), c.innerHeight()
	catRange, valRange := [2]float64{0, w}, [2]float64{h, 0}
	if c.orientation == geom.Horizontal {
		catRange, valRange = [2]float64{0, h}, [2]float64{0, w}
	}

	cat, err := c.categoryScale(reg, st, catRange)
	if err != nil {
		return geom.Scales{}, err
	}
	val, err := c.valueScale(reg, st, valRange)
	if err != nil {
		return geom.Scales{}, err
	}

	sc := geom.Scales{X: cat, Y: val}
	if c.orientation == geom.Horizontal {
		sc = geom.Scales{X: val, Y: cat}
	}
	if c.Mark == MarkGroupedBar {
		sc.Group = geom.NewGroupScale(reg.Keys(), cat)
	}
	if err := sc.Validate(); err != nil {
		return geom.Scales{}, err
	}
	return sc, nil
}

// categories returns the distinct categories of every series in first-seen
// order.
func categories(reg *registry.Registry[Datum]) []any {
	seen := make(map[any]bool)
	var out []any
	for _, e := range reg.Entries() {
		for _, d := range e.Data {
			k := scale.Key(d.Category)
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, d.Category)
		}
	}
	return out
}

// inferKind picks a category scale for data without an explicit one: band
// slots for bars, otherwise continuous for numbers, time for timestamps and
// points for anything else.
func inferKind(m Mark, values []any) scale.Kind {
	if m.Bars() {
		return scale.KindBand
	}
	var numbers, times bool
	for _, v := range values {
		switch v.(type) {
		case float64:
			numbers = true
		case time.Time:
			times = true
		default:
			return scale.KindPoint
		}
	}
	switch {
	case numbers && times:
		return scale.KindPoint
	case times:
		return scale.KindTime
	}
	return scale.KindContinuous
}

func (c *Chart) categoryScale(reg *registry.Registry[Datum], st *stack.Result[Datum], r [2]float64) (scale.Scale, error) {
	a := c.categoryAxis()
	values := categories(reg)
	if st != nil {
		values = st.Categories
	}
	kind := c.categoryKnd
	if kind == 0 {
		kind = inferKind(c.Mark, values)
	}

	switch kind {
	case scale.KindBand, scale.KindPoint:
		domain := a.Domain
		if len(domain) == 0 {
			domain = values
		}
		opts := c.bandOptions(a)
		if kind == scale.KindPoint {
			return scale.NewPoint(domain, r[0], r[1], opts...), nil
		}
		return scale.NewBand(domain, r[0], r[1], opts...), nil

	case scale.KindTime:
		t0, t1, err := timeBounds(a.Domain, values)
		if err != nil {
			return nil, err
		}
		return scale.NewTime(t0, t1, r[0], r[1], a.Round), nil

	default:
		lo, hi, err := numberBounds(a.Domain, values)
		if err != nil {
			return nil, err
		}
		return scale.NewLinear(lo, hi, r[0], r[1], c.linearOptions(a, false)...), nil
	}
}

func (c *Chart) valueScale(reg *registry.Registry[Datum], st *stack.Result[Datum], r [2]float64) (scale.Scale, error) {
	a := c.valueAxis()
	var lo, hi float64
	switch {
	case len(a.Domain) == 2:
		var err error
		if lo, hi, err = numberBounds(a.Domain, nil); err != nil {
			return nil, err
		}
	case st != nil:
		lo, hi = st.Extent()
	default:
		var xs []float64
		for _, e := range reg.Entries() {
			for _, d := range e.Data {
				if scale.Finite(d.Value) {
					xs = append(xs, d.Value)
				}
			}
		}
		lo, hi = bounds(xs)
	}

	if len(a.Domain) == 0 {
		zero := c.Mark.Bars()
		if a.Zero != nil {
			zero = *a.Zero
		}
		if zero {
			lo, hi = math.Min(lo, 0), math.Max(hi, 0)
		}
		lo, hi = widen(lo, hi)
	}
	return scale.NewLinear(lo, hi, r[0], r[1], c.linearOptions(a, len(a.Domain) == 0)...), nil
}

func (c *Chart) bandOptions(a *Axis) []scale.BandOption {
	var opts []scale.BandOption
	switch {
	case a.Padding != nil:
		opts = append(opts, scale.WithPadding(*a.Padding))
	case a.PaddingInner == nil && a.PaddingOuter == nil && c.Mark.Bars():
		opts = append(opts, scale.WithPadding(0.1))
	}
	if a.PaddingInner != nil {
		opts = append(opts, scale.WithPaddingInner(*a.PaddingInner))
	}
	if a.PaddingOuter != nil {
		opts = append(opts, scale.WithPaddingOuter(*a.PaddingOuter))
	}
	if a.Align != nil {
		opts = append(opts, scale.WithAlign(*a.Align))
	}
	if a.Round {
		opts = append(opts, scale.WithBandRound())
	}
	return opts
}

func (c *Chart) linearOptions(a *Axis, niceByDefault bool) []scale.LinearOption {
	var opts []scale.LinearOption
	if a.Clamp {
		opts = append(opts, scale.WithClamp())
	}
	if a.Round {
		opts = append(opts, scale.WithRound())
	}
	nice := niceByDefault
	if a.Nice != nil {
		nice = *a.Nice
	}
	if nice {
		opts = append(opts, scale.WithNice(a.Ticks))
	}
	return opts
}

// bounds is stats.Bounds with an empty sample mapped to [0, 1].
func bounds(xs []float64) (lo, hi float64) {
	if len(xs) == 0 {
		return 0, 1
	}
	return stats.Bounds(xs)
}

// widen turns a zero-width domain into a unit one around it.
func widen(lo, hi float64) (float64, float64) {
	if lo != hi {
		return lo, hi
	}
	if lo == 0 {
		return 0, 1
	}
	return lo - math.Abs(lo)/2, hi + math.Abs(hi)/2
}

func numberBounds(domain, values []any) (lo, hi float64, err error) {
	if len(domain) > 0 {
		if len(domain) != 2 {
			return 0, 0, errors.New(errors.ErrCodeInvalidScale, "continuous domain needs two bounds, got %d", len(domain))
		}
		d0, ok0 := scale.ToFloat(domain[0])
		d1, ok1 := scale.ToFloat(domain[1])
		if !ok0 || !ok1 || !scale.Finite(d0) || !scale.Finite(d1) {
			return 0, 0, errors.New(errors.ErrCodeInvalidScale, "continuous domain must be two numbers, got %v", domain)
		}
		return d0, d1, nil
	}
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		f, ok := scale.ToFloat(v)
		if !ok {
			return 0, 0, errors.New(errors.ErrCodeInvalidScale, "continuous axis needs numeric categories, got %v", v)
		}
		if scale.Finite(f) {
			xs = append(xs, f)
		}
	}
	lo, hi = widen(bounds(xs))
	return lo, hi, nil
}

func timeBounds(domain, values []any) (t0, t1 time.Time, err error) {
	src := values
	if len(domain) > 0 {
		if len(domain) != 2 {
			return t0, t1, errors.New(errors.ErrCodeInvalidScale, "time domain needs two bounds, got %d", len(domain))
		}
		src = domain
	}
	if len(src) == 0 {
		t0 = time.Unix(0, 0).UTC()
		return t0, t0.Add(24 * time.Hour), nil
	}
	for i, v := range src {
		t, ok := v.(time.Time)
		if !ok {
			return t0, t1, errors.New(errors.ErrCodeInvalidScale, "time axis needs timestamps, got %v", v)
		}
		switch {
		case len(domain) > 0:
			if i == 0 {
				t0 = t
			} else {
				t1 = t
			}
		case i == 0:
			t0, t1 = t, t
		case t.Before(t0):
			t0 = t
		case t.After(t1):
			t1 = t
		}
	}
	if t0.Equal(t1) {
		t1 = t0.Add(24 * time.Hour)
	}
	return t0, t1, nil
}
