package stack

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/chartmotion/pkg/errors"
	"github.com/matzehuels/chartmotion/pkg/scale"
)

// =============================================================================
// Input
// =============================================================================

// Series is one named data series contributing to a stack.
type Series[D any] struct {
	Key      string
	Data     []D
	Category func(D) any
	Value    func(D) float64
}

// Config selects the stacking policies. The zero Config stacks as-is with the
// automatic offset.
type Config struct {
	Order  Order  `toml:"order" json:"order,omitempty"`
	Offset Offset `toml:"offset" json:"offset,omitempty"`
	// SortCategories orders categories by value instead of by first
	// appearance.
	SortCategories bool `toml:"sort_categories" json:"sort_categories,omitempty"`
}

// =============================================================================
// Output
// =============================================================================

// Datum is one category's entry across all series.
type Datum[D any] struct {
	Category    any
	Index       int
	Values      map[string]float64
	PositiveSum float64
	NegativeSum float64
	// Sources holds each series' original datum for this category.
	Sources map[string]D
}

// Total is the arithmetic sum of the category's values.
func (d *Datum[D]) Total() float64 { return d.PositiveSum + d.NegativeSum }

// Segment is the [Low, High] band one series occupies at one category.
type Segment[D any] struct {
	Series   string
	Category any
	Index    int // category index
	Low      float64
	High     float64
	Value    float64
	// Source is the series' datum for this category; HasSource is false
	// when the series has no datum there and the segment is empty.
	Source    D
	HasSource bool
}

// Layer is one series' segments, one per category in category order.
type Layer[D any] struct {
	Key      string
	Index    int // position in stacking order, 0 at the baseline
	Segments []Segment[D]
}

// Result is the stacked layout.
type Result[D any] struct {
	Categories []any
	Data       []*Datum[D]
	// Layers are in stacking order.
	Layers []Layer[D]
	// Offset is the effective offset after resolving OffsetAuto.
	Offset Offset
	Order  Order
}

// Empty reports whether the result has no segments.
func (r *Result[D]) Empty() bool {
	return len(r.Layers) == 0 || len(r.Categories) == 0
}

// Keys returns the series keys in stacking order.
func (r *Result[D]) Keys() []string {
	keys := make([]string, len(r.Layers))
	for i, l := range r.Layers {
		keys[i] = l.Key
	}
	return keys
}

// Layer returns the layer for a series key.
func (r *Result[D]) Layer(key string) (Layer[D], bool) {
	for _, l := range r.Layers {
		if l.Key == key {
			return l, true
		}
	}
	return Layer[D]{}, false
}

// Segments flattens all layers, layer by layer.
func (r *Result[D]) Segments() []Segment[D] {
	var out []Segment[D]
	for _, l := range r.Layers {
		out = append(out, l.Segments...)
	}
	return out
}

// Extent returns the smallest Low and largest High over all segments, always
// including zero for offsets anchored at zero. An empty result yields 0, 0.
func (r *Result[D]) Extent() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	switch r.Offset {
	case OffsetNone, OffsetDiverging, OffsetExpand:
		lo, hi = 0, 0
	}
	for _, l := range r.Layers {
		for _, s := range l.Segments {
			if scale.Finite(s.Low) {
				lo, hi = math.Min(lo, s.Low), math.Max(hi, s.Low)
			}
			if scale.Finite(s.High) {
				lo, hi = math.Min(lo, s.High), math.Max(hi, s.High)
			}
		}
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

// =============================================================================
// Build
// =============================================================================

// Build stacks series by category.
//
// Categories appear in first-seen order across the series, or sorted when
// Config.SortCategories is set. Values that are NaN or infinite are skipped.
// A series supplying the same category twice keeps the last value. Zero series
// or zero categories produce an empty result; a series without accessors is
// a configuration error.
func Build[D any](series []Series[D], cfg Config) (*Result[D], error) {
	seen := make(map[string]bool, len(series))
	for i, s := range series {
		if s.Category == nil {
			return nil, errors.New(errors.ErrCodeMissingAccessor, "stack series %d (%q): category accessor is required", i, s.Key)
		}
		if s.Value == nil {
			return nil, errors.New(errors.ErrCodeMissingAccessor, "stack series %d (%q): value accessor is required", i, s.Key)
		}
		if seen[s.Key] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate stack series key %q", s.Key)
		}
		seen[s.Key] = true
	}

	data, hasNegative := group(series)
	if cfg.SortCategories {
		slices.SortStableFunc(data, func(a, b *Datum[D]) int {
			return compareCategories(a.Category, b.Category)
		})
	}

	res := &Result[D]{Offset: resolveOffset(cfg.Offset, hasNegative), Order: cfg.Order}
	res.Categories = make([]any, len(data))
	for j, d := range data {
		d.Index = j
		res.Categories[j] = d.Category
	}
	res.Data = data
	if len(series) == 0 || len(data) == 0 {
		return res, nil
	}

	// values[i][j] is series i at category j, 0 when absent.
	values := make([][]float64, len(series))
	for i, s := range series {
		values[i] = make([]float64, len(data))
		for j, d := range data {
			values[i][j] = d.Values[s.Key]
		}
	}

	order := applyOrder(cfg.Order, values)
	bounds := applyOffset(res.Offset, values, order)

	res.Layers = make([]Layer[D], len(order))
	for pos, i := range order {
		s := series[i]
		layer := Layer[D]{Key: s.Key, Index: pos, Segments: make([]Segment[D], len(data))}
		for j, d := range data {
			src, ok := d.Sources[s.Key]
			layer.Segments[j] = Segment[D]{
				Series:    s.Key,
				Category:  d.Category,
				Index:     j,
				Low:       bounds[i][j][0],
				High:      bounds[i][j][1],
				Value:     values[i][j],
				Source:    src,
				HasSource: ok,
			}
		}
		res.Layers[pos] = layer
	}
	return res, nil
}

func resolveOffset(o Offset, hasNegative bool) Offset {
	if o != OffsetAuto {
		return o
	}
	if hasNegative {
		return OffsetDiverging
	}
	return OffsetNone
}

// group builds the ordered category map.
func group[D any](series []Series[D]) (data []*Datum[D], hasNegative bool) {
	index := make(map[any]int)
	for _, s := range series {
		for _, d := range s.Data {
			c := s.Category(d)
			v := s.Value(d)
			if !scale.Finite(v) {
				continue
			}
			k := scale.Key(c)
			j, ok := index[k]
			if !ok {
				j = len(data)
				index[k] = j
				data = append(data, &Datum[D]{
					Category: c,
					Values:   make(map[string]float64),
					Sources:  make(map[string]D),
				})
			}
			entry := data[j]
			if old, dup := entry.Values[s.Key]; dup {
				entry.remove(old)
			}
			entry.Values[s.Key] = v
			entry.Sources[s.Key] = d
			entry.add(v)
		}
	}
	for _, d := range data {
		if d.NegativeSum < 0 {
			hasNegative = true
			break
		}
	}
	return data, hasNegative
}

func (d *Datum[D]) add(v float64) {
	if v >= 0 {
		d.PositiveSum += v
	} else {
		d.NegativeSum += v
	}
}

func (d *Datum[D]) remove(v float64) {
	if v >= 0 {
		d.PositiveSum -= v
	} else {
		d.NegativeSum -= v
	}
}

// compareCategories orders numbers (and instants) before strings before
// anything else, each group ascending.
func compareCategories(a, b any) int {
	ka, kb := scale.Key(a), scale.Key(b)
	ra, rb := categoryRank(ka), categoryRank(kb)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch x := ka.(type) {
	case float64:
		return cmp.Compare(x, kb.(float64))
	case int64:
		return cmp.Compare(x, kb.(int64))
	case string:
		return strings.Compare(x, kb.(string))
	}
	return strings.Compare(fmt.Sprint(ka), fmt.Sprint(kb))
}

func categoryRank(k any) int {
	switch k.(type) {
	case float64:
		return 0
	case int64:
		return 1
	case string:
		return 2
	}
	return 3
}
