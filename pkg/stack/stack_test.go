package stack

import (
	"math"
	"testing"

	"github.com/matzehuels/chartmotion/pkg/errors"
)

type row struct {
	cat string
	val float64
}

func series(key string, cats []string, vals ...float64) Series[row] {
	data := make([]row, len(vals))
	for i, v := range vals {
		data[i] = row{cats[i], v}
	}
	return Series[row]{
		Key:      key,
		Data:     data,
		Category: func(r row) any { return r.cat },
		Value:    func(r row) float64 { return r.val },
	}
}

var abc = []string{"A", "B", "C"}

func segment(t *testing.T, res *Result[row], key string, j int) Segment[row] {
	t.Helper()
	l, ok := res.Layer(key)
	if !ok {
		t.Fatalf("layer %q missing", key)
	}
	return l.Segments[j]
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// Scenario A: the negative value in C selects the diverging offset.
func TestBuildAutoDiverging(t *testing.T) {
	res, err := Build([]Series[row]{
		series("one", abc, 10, 20, 30),
		series("two", abc, 5, 15, -5),
	}, Config{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if res.Offset != OffsetDiverging {
		t.Fatalf("Offset = %s, want diverging", res.Offset)
	}

	one, two := segment(t, res, "one", 2), segment(t, res, "two", 2)
	if one.Low != 0 || one.High != 30 {
		t.Errorf("one at C = [%v, %v], want [0, 30]", one.Low, one.High)
	}
	if two.Low != -5 || two.High != 0 {
		t.Errorf("two at C = [%v, %v], want [-5, 0]", two.Low, two.High)
	}

	// positive values still stack on each other
	if b := segment(t, res, "two", 1); b.Low != 20 || b.High != 35 {
		t.Errorf("two at B = [%v, %v], want [20, 35]", b.Low, b.High)
	}
}

func TestBuildAutoNone(t *testing.T) {
	res, err := Build([]Series[row]{series("one", abc, 1, 2, 3)}, Config{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Offset != OffsetNone {
		t.Errorf("Offset = %s, want none", res.Offset)
	}
}

func TestConservation(t *testing.T) {
	inputs := [][]Series[row]{
		{series("a", abc, 1, 2, 3), series("b", abc, 4, 5, 6)},
		{series("a", abc, -1, 2, -3), series("b", abc, 4, -5, 6), series("c", abc, 0, 0, 1)},
		{series("a", abc, -1, -2, -3), series("b", abc, -4, -5, -6)},
	}

	for n, in := range inputs {
		res, err := Build(in, Config{Offset: OffsetNone})
		if err != nil {
			t.Fatal(err)
		}
		for j, d := range res.Data {
			var sum float64
			for _, s := range in {
				sum += s.Data[j].val
			}
			if !approx(d.PositiveSum-math.Abs(d.NegativeSum), sum) {
				t.Errorf("input %d category %v: positive - |negative| = %v, want %v",
					n, d.Category, d.PositiveSum-math.Abs(d.NegativeSum), sum)
			}

			top := res.Layers[len(res.Layers)-1].Segments[j].High
			want := d.PositiveSum
			if d.PositiveSum == 0 {
				want = d.NegativeSum
			}
			if d.NegativeSum == 0 || d.PositiveSum == 0 {
				if !approx(top, want) {
					t.Errorf("input %d category %v: top = %v, want %v", n, d.Category, top, want)
				}
			} else if !approx(top, sum) {
				t.Errorf("input %d category %v: top = %v, want total %v", n, d.Category, top, sum)
			}
		}
	}
}

func TestOffsets(t *testing.T) {
	in := []Series[row]{
		series("a", abc, 1, 2, 4),
		series("b", abc, 3, 2, 4),
	}

	tests := []struct {
		offset Offset
		key    string
		j      int
		low    float64
		high   float64
	}{
		{OffsetNone, "b", 0, 1, 4},
		{OffsetExpand, "a", 0, 0, 0.25},
		{OffsetExpand, "b", 0, 0.25, 1},
		{OffsetSilhouette, "a", 0, -2, -1},
		{OffsetSilhouette, "b", 2, 0, 4},
		{OffsetDiverging, "b", 1, 2, 4},
	}

	for _, tt := range tests {
		t.Run(tt.offset.String()+"/"+tt.key, func(t *testing.T) {
			res, err := Build(in, Config{Offset: tt.offset})
			if err != nil {
				t.Fatal(err)
			}
			s := segment(t, res, tt.key, tt.j)
			if !approx(s.Low, tt.low) || !approx(s.High, tt.high) {
				t.Errorf("segment = [%v, %v], want [%v, %v]", s.Low, s.High, tt.low, tt.high)
			}
		})
	}
}

func TestOffsetWiggle(t *testing.T) {
	// A single layer that grows is held in place only by the baseline
	// moving down by half its growth.
	res, err := Build([]Series[row]{series("a", abc, 2, 4, 4)}, Config{Offset: OffsetWiggle})
	if err != nil {
		t.Fatal(err)
	}
	l := res.Layers[0]
	wantLow := []float64{0, -1, -1}
	for j, s := range l.Segments {
		if !approx(s.Low, wantLow[j]) {
			t.Errorf("category %d low = %v, want %v", j, s.Low, wantLow[j])
		}
		if !approx(s.High-s.Low, s.Value) {
			t.Errorf("category %d thickness = %v, want %v", j, s.High-s.Low, s.Value)
		}
	}
}

func TestExpandZeroTotal(t *testing.T) {
	res, err := Build([]Series[row]{series("a", abc, 0, 1, 1)}, Config{Offset: OffsetExpand})
	if err != nil {
		t.Fatal(err)
	}
	s := res.Layers[0].Segments[0]
	if s.Low != 0 || s.High != 0 {
		t.Errorf("zero-total category = [%v, %v], want [0, 0]", s.Low, s.High)
	}
	if lo, hi := res.Extent(); lo != 0 || hi != 1 {
		t.Errorf("Extent() = %v, %v, want 0, 1", lo, hi)
	}
}

func TestOrders(t *testing.T) {
	in := []Series[row]{
		series("mid", abc, 2, 2, 2),   // sum 6, peak 0
		series("big", abc, 1, 9, 1),   // sum 11, peak 1
		series("small", abc, 1, 1, 2), // sum 4, peak 2
	}

	tests := []struct {
		order Order
		want  []string
	}{
		{OrderAsIs, []string{"mid", "big", "small"}},
		{OrderAscending, []string{"small", "mid", "big"}},
		{OrderDescending, []string{"big", "mid", "small"}},
		{OrderReverse, []string{"small", "big", "mid"}},
		{OrderInsideOut, []string{"small", "mid", "big"}},
	}

	for _, tt := range tests {
		t.Run(tt.order.String(), func(t *testing.T) {
			res, err := Build(in, Config{Order: tt.order})
			if err != nil {
				t.Fatal(err)
			}
			got := res.Keys()
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("Keys() = %v, want %v", got, tt.want)
				}
			}
			if res.Layers[0].Segments[0].Low != 0 {
				t.Errorf("bottom layer should start at zero")
			}
		})
	}
}

func TestCategoryOrder(t *testing.T) {
	in := []Series[row]{
		series("a", []string{"C", "A"}, 1, 2),
		series("b", []string{"B", "A"}, 3, 4),
	}

	res, err := Build(in, Config{})
	if err != nil {
		t.Fatal(err)
	}
	want := []any{"C", "A", "B"}
	for i, c := range res.Categories {
		if c != want[i] {
			t.Fatalf("Categories = %v, want first-seen %v", res.Categories, want)
		}
	}

	res, err = Build(in, Config{SortCategories: true})
	if err != nil {
		t.Fatal(err)
	}
	want = []any{"A", "B", "C"}
	for i, c := range res.Categories {
		if c != want[i] {
			t.Fatalf("Categories = %v, want sorted %v", res.Categories, want)
		}
	}
	for i, d := range res.Data {
		if d.Index != i {
			t.Errorf("Data[%d].Index = %d", i, d.Index)
		}
	}
}

func TestMissingCategoryIsEmpty(t *testing.T) {
	in := []Series[row]{
		series("a", []string{"A", "B"}, 1, 2),
		series("b", []string{"A"}, 3),
	}
	res, err := Build(in, Config{})
	if err != nil {
		t.Fatal(err)
	}
	s := segment(t, res, "b", 1)
	if s.HasSource {
		t.Error("segment without datum should report HasSource = false")
	}
	if s.Low != s.High {
		t.Errorf("missing segment = [%v, %v], want empty", s.Low, s.High)
	}
	if got := segment(t, res, "b", 0); !got.HasSource || got.Source.val != 3 {
		t.Errorf("source = %+v, want datum with value 3", got.Source)
	}
}

func TestSkipsNonFiniteAndDuplicates(t *testing.T) {
	s := series("a", []string{"A", "A", "B"}, 1, 5, math.NaN())
	res, err := Build([]Series[row]{s}, Config{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Categories) != 1 {
		t.Fatalf("Categories = %v, want only A", res.Categories)
	}
	d := res.Data[0]
	if d.Values["a"] != 5 || d.PositiveSum != 5 {
		t.Errorf("duplicate category: value = %v, sum = %v, want last value 5", d.Values["a"], d.PositiveSum)
	}
}

func TestBuildEmpty(t *testing.T) {
	tests := []struct {
		name string
		in   []Series[row]
	}{
		{"no series", nil},
		{"no data", []Series[row]{series("a", nil)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Build(tt.in, Config{})
			if err != nil {
				t.Fatalf("Build() error = %v, want nil", err)
			}
			if !res.Empty() || len(res.Segments()) != 0 {
				t.Errorf("Build() = %+v, want empty result", res)
			}
			if lo, hi := res.Extent(); lo != 0 || hi != 0 {
				t.Errorf("Extent() = %v, %v, want 0, 0", lo, hi)
			}
		})
	}
}

func TestBuildErrors(t *testing.T) {
	noValue := series("a", abc, 1, 2, 3)
	noValue.Value = nil
	noCategory := series("a", abc, 1, 2, 3)
	noCategory.Category = nil

	tests := []struct {
		name string
		in   []Series[row]
		code errors.Code
	}{
		{"missing value accessor", []Series[row]{noValue}, errors.ErrCodeMissingAccessor},
		{"missing category accessor", []Series[row]{noCategory}, errors.ErrCodeMissingAccessor},
		{"duplicate key", []Series[row]{series("a", abc, 1), series("a", abc, 2)}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.in, Config{})
			if !errors.Is(err, tt.code) {
				t.Errorf("Build() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestParsePolicies(t *testing.T) {
	for _, name := range []string{"as-is", "ascending", "descending", "inside-out", "reverse"} {
		o, err := ParseOrder(name)
		if err != nil || o.String() != name {
			t.Errorf("ParseOrder(%q) = %s, %v", name, o, err)
		}
	}
	for _, name := range []string{"none", "expand", "diverging", "silhouette", "wiggle"} {
		o, err := ParseOffset(name)
		if err != nil || o.String() != name {
			t.Errorf("ParseOffset(%q) = %s, %v", name, o, err)
		}
	}
	if o, err := ParseOffset(""); err != nil || o != OffsetAuto {
		t.Errorf("ParseOffset(\"\") = %s, %v, want auto", o, err)
	}
	if _, err := ParseOrder("sideways"); err == nil {
		t.Error("ParseOrder should reject unknown names")
	}
	if _, err := ParseOffset("zigzag"); err == nil {
		t.Error("ParseOffset should reject unknown names")
	}

	var cfg Config
	if err := cfg.Offset.UnmarshalText([]byte("wiggle")); err != nil || cfg.Offset != OffsetWiggle {
		t.Errorf("UnmarshalText(wiggle) = %s, %v", cfg.Offset, err)
	}
}
