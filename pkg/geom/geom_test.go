package geom

import (
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/chartmotion/pkg/scale"
	"github.com/matzehuels/chartmotion/pkg/stack"
)

type row struct {
	cat string
	val float64
}

var rowAcc = Accessors[row]{
	Category: func(r row) any { return r.cat },
	Value:    func(r row) float64 { return r.val },
	Key:      func(r row) string { return r.cat },
}

func bandXLinearY() Scales {
	return Scales{
		X: scale.NewBand([]any{"A", "B", "C", "D"}, 0, 400),
		Y: scale.NewLinear(0, 100, 300, 0),
	}
}

func validRect(r Rect) bool {
	return finite(r.X, r.Y, r.Width, r.Height) && r.Width >= 0 && r.Height >= 0
}

// Scenario B: tick for B on a 4-slot band scale over 400px.
func TestTickPositionBand(t *testing.T) {
	s := scale.NewBand([]any{"A", "B", "C", "D"}, 0, 400)
	got, ok := TickPosition(s, "B", 0)
	if !ok || got != 150 {
		t.Errorf("TickPosition(B) = %v, %v, want 150, true", got, ok)
	}
	got, _ = TickPosition(s, "B", 0.5)
	if got != 150.5 {
		t.Errorf("TickPosition(B, 0.5) = %v, want 150.5", got)
	}
	if _, ok := TickPosition(s, "Z", 0); ok {
		t.Error("unknown category should have no tick position")
	}
}

func TestTickPositionOffsetAfterRounding(t *testing.T) {
	s := scale.NewBand([]any{"a", "b", "c"}, 0, 100, scale.WithBandRound())
	// slot start 1, rounded half bandwidth 17, offset 0.5
	got, ok := TickPosition(s, "a", 0.5)
	if !ok || got != 18.5 {
		t.Errorf("TickPosition(a) = %v, want 18.5", got)
	}
}

func TestTicks(t *testing.T) {
	s := scale.NewLinear(0, 1, 0, 100)

	ticks := Ticks(s, TickOptions{Count: 5})
	if len(ticks) != 3 {
		t.Fatalf("Ticks() = %v, want 3 ticks", ticks)
	}
	if ticks[1].Label != "0.5" || ticks[1].Index != 1 {
		t.Errorf("ticks[1] = %+v", ticks[1])
	}

	custom := Ticks(s, TickOptions{
		Values: []any{0.25},
		Format: func(v any) string { return "q" },
	})
	if len(custom) != 1 || custom[0].Label != "q" || TickKey(custom[0]) != "0.25" {
		t.Errorf("custom ticks = %+v", custom)
	}
}

func TestTickKeysDistinctForLargeValues(t *testing.T) {
	s := scale.NewLinear(1000000, 1000010, 0, 100)
	ticks := Ticks(s, TickOptions{Count: 5})
	if len(ticks) < 3 {
		t.Fatalf("Ticks() = %v, want at least 3 ticks", ticks)
	}
	seen := map[string]bool{}
	for _, tk := range ticks {
		k := TickKey(tk)
		if seen[k] {
			t.Errorf("duplicate tick key %q in %v", k, ticks)
		}
		seen[k] = true
	}
	if got := TickKey(TickDatum{Value: 1000001}); got != "1.000001e+06" {
		t.Errorf("TickKey(1000001) = %q", got)
	}
}

func TestTickGenerator(t *testing.T) {
	sc := bandXLinearY()
	bottom := TickGenerator{Placement: Bottom, Length: 6}
	tick, ok := bottom.Geometry(TickDatum{Value: "B"}, sc)
	if !ok {
		t.Fatal("bottom tick should be defined")
	}
	if tick.From != (Point{150, 0}) || tick.To != (Point{150, 6}) {
		t.Errorf("bottom tick = %+v", tick)
	}

	left := TickGenerator{Placement: Left, Length: 6}
	tick, ok = left.Geometry(TickDatum{Value: 50.0}, sc)
	if !ok || tick.From != (Point{0, 150}) || tick.To != (Point{-6, 150}) {
		t.Errorf("left tick = %+v, %v", tick, ok)
	}
}

func TestAxisDomainPath(t *testing.T) {
	s := scale.NewLinear(0, 1, 0, 400)
	tests := []struct {
		p      Placement
		outer  float64
		offset float64
		want   string
	}{
		{Bottom, 6, 0.5, "M0.5,6V0.5H400.5V6"},
		{Top, 6, 0, "M0,-6V0H400V-6"},
		{Left, 6, 0, "M-6,0H0V400H-6"},
		{Right, 0, 0, "M0,0V400"},
		{Bottom, 0, 0, "M0,0H400"},
	}
	for _, tt := range tests {
		if got := AxisDomainPath(s, tt.p, tt.outer, tt.offset); got != tt.want {
			t.Errorf("AxisDomainPath(%v, %v, %v) = %q, want %q", tt.p, tt.outer, tt.offset, got, tt.want)
		}
	}
}

func TestBar(t *testing.T) {
	sc := bandXLinearY()

	tests := []struct {
		name string
		gen  Bar[row]
		sc   Scales
		d    row
		want Rect
	}{
		{
			name: "vertical",
			gen:  Bar[row]{Accessors: rowAcc},
			sc:   sc,
			d:    row{"B", 50},
			want: Rect{X: 100, Y: 150, Width: 100, Height: 150},
		},
		{
			name: "horizontal",
			gen:  Bar[row]{Accessors: rowAcc, Orientation: Horizontal},
			sc: Scales{
				X: scale.NewLinear(0, 100, 0, 200),
				Y: scale.NewBand([]any{"A", "B"}, 0, 100),
			},
			d:    row{"B", 25},
			want: Rect{X: 0, Y: 50, Width: 50, Height: 50},
		},
		{
			name: "negative value hangs below baseline",
			gen:  Bar[row]{Accessors: rowAcc},
			sc: Scales{
				X: scale.NewBand([]any{"A"}, 0, 100),
				Y: scale.NewLinear(-50, 50, 100, 0),
			},
			d:    row{"A", -25},
			want: Rect{X: 0, Y: 50, Width: 100, Height: 25},
		},
		{
			name: "zero value is a valid empty bar",
			gen:  Bar[row]{Accessors: rowAcc},
			sc:   sc,
			d:    row{"A", 0},
			want: Rect{X: 0, Y: 300, Width: 100, Height: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.gen.Rect(tt.d, tt.sc)
			if !ok {
				t.Fatal("Rect() ok = false")
			}
			if got != tt.want {
				t.Errorf("Rect() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNullPropagation(t *testing.T) {
	sc := bandXLinearY()
	bar := Bar[row]{Accessors: rowAcc}
	glyphs := Scatter[row]{Accessors: rowAcc}

	tests := []struct {
		name string
		d    row
	}{
		{"unknown category", row{"Z", 10}},
		{"NaN value", row{"A", math.NaN()}},
		{"infinite value", row{"A", math.Inf(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if r, ok := bar.Rect(tt.d, sc); ok {
				t.Errorf("Bar.Rect() = %+v, want no geometry", r)
			}
			if g, ok := glyphs.Glyph(tt.d, sc); ok {
				t.Errorf("Scatter.Glyph() = %+v, want no geometry", g)
			}
		})
	}

	t.Run("nil value scale", func(t *testing.T) {
		if _, ok := bar.Rect(row{"A", 1}, Scales{X: sc.X}); ok {
			t.Error("bar without value scale should have no geometry")
		}
	})

	t.Run("compute keeps positions", func(t *testing.T) {
		out := Compute([]row{{"A", 10}, {"Z", 10}, {"C", 20}}, sc, bar.Rect)
		if out[0] == nil || out[1] != nil || out[2] == nil {
			t.Errorf("Compute() = %v, want [rect nil rect]", out)
		}
	})
}

func TestRectNonNegative(t *testing.T) {
	scs := []Scales{
		bandXLinearY(),
		{X: scale.NewBand([]any{"A", "B", "C", "D"}, 400, 0), Y: scale.NewLinear(-100, 100, 0, 300)},
		{X: scale.NewPoint([]any{"A", "B", "C", "D"}, 0, 400), Y: scale.NewLinear(100, 0, 0, 300)},
	}
	values := []float64{-1000, -50, 0, 0.5, 50, 1000}
	for _, o := range []Orientation{Vertical, Horizontal} {
		bar := Bar[row]{Accessors: rowAcc, Orientation: o}
		for i, sc := range scs {
			if o == Horizontal {
				sc = Scales{X: sc.Y, Y: sc.X}
			}
			for _, c := range []string{"A", "B", "C", "D"} {
				for _, v := range values {
					r, ok := bar.Rect(row{c, v}, sc)
					if ok && !validRect(r) {
						t.Errorf("%s scales %d: Rect(%s, %v) = %+v", o, i, c, v, r)
					}
				}
			}
		}
	}
}

func TestGroupBar(t *testing.T) {
	sc := bandXLinearY()
	sc.Group = NewGroupScale([]string{"one", "two"}, sc.X)
	gen := GroupBar[row]{Accessors: rowAcc}

	got, ok := gen.Rect(SeriesDatum[row]{Series: "two", Datum: row{"B", 50}}, sc)
	if !ok {
		t.Fatal("Rect() ok = false")
	}
	want := Rect{X: 150, Y: 150, Width: 50, Height: 150}
	if got != want {
		t.Errorf("Rect() = %+v, want %+v", got, want)
	}

	if _, ok := gen.Rect(SeriesDatum[row]{Series: "three", Datum: row{"B", 50}}, sc); ok {
		t.Error("unknown series should have no geometry")
	}
	sc.Group = nil
	if _, ok := gen.Rect(SeriesDatum[row]{Series: "one", Datum: row{"B", 50}}, sc); ok {
		t.Error("missing group scale should have no geometry")
	}
}

func TestStackBar(t *testing.T) {
	res, err := stack.Build([]stack.Series[row]{
		{Key: "one", Data: []row{{"A", 10}, {"B", 20}}, Category: rowAcc.Category, Value: rowAcc.Value},
		{Key: "two", Data: []row{{"A", 5}, {"B", -5}}, Category: rowAcc.Category, Value: rowAcc.Value},
	}, stack.Config{})
	if err != nil {
		t.Fatal(err)
	}
	sc := Scales{
		X: scale.NewBand([]any{"A", "B"}, 0, 200),
		Y: scale.NewLinear(-10, 30, 400, 0),
	}
	gen := StackBar[row]{}

	two, _ := res.Layer("two")
	got, ok := gen.Rect(two.Segments[1], sc)
	if !ok {
		t.Fatal("Rect() ok = false")
	}
	// [-5, 0] on a 10px-per-unit scale with zero at 300
	want := Rect{X: 100, Y: 300, Width: 100, Height: 50}
	if got != want {
		t.Errorf("Rect() = %+v, want %+v", got, want)
	}
	if key := SegmentKey(two.Segments[1]); key != "two/B" {
		t.Errorf("SegmentKey() = %q", key)
	}
}

func TestScatter(t *testing.T) {
	sc := bandXLinearY()
	gen := Scatter[row]{Accessors: rowAcc, Offset: 0.5}

	g, ok := gen.Glyph(row{"B", 50}, sc)
	if !ok {
		t.Fatal("Glyph() ok = false")
	}
	if g.X != 150.5 || g.Y != 150.5 || g.Size != DefaultGlyphSize {
		t.Errorf("Glyph() = %+v", g)
	}

	gen.SizeOf = func(r row) float64 { return r.val / 10 }
	if g, _ := gen.Glyph(row{"B", 50}, sc); g.Size != 5 {
		t.Errorf("per-datum size = %v, want 5", g.Size)
	}
	if _, ok := gen.Glyph(row{"B", -50}, sc); ok {
		t.Error("negative size should have no geometry")
	}
}

func TestLine(t *testing.T) {
	sc := Scales{
		X: scale.NewPoint([]any{"A", "B", "C", "D"}, 0, 300),
		Y: scale.NewLinear(0, 10, 100, 0),
	}
	gen := Line[row]{Accessors: rowAcc}

	pl, ok := gen.Polyline([]row{{"A", 0}, {"B", 5}, {"C", math.NaN()}, {"D", 10}}, sc)
	if !ok {
		t.Fatal("Polyline() ok = false")
	}
	if got := pl.Path(CurveLinear); got != "M0,100L100,50M300,0" {
		t.Errorf("Path() = %q", got)
	}
	if runs := pl.Runs(); len(runs) != 2 {
		t.Errorf("Runs() = %v, want 2 runs", runs)
	}

	if _, ok := gen.Polyline([]row{{"Z", 1}}, sc); ok {
		t.Error("line with no defined points should report ok = false")
	}
}

func TestCurves(t *testing.T) {
	pl := Polyline{
		Points:  []Point{{0, 0}, {10, 10}, {20, 0}},
		Defined: []bool{true, true, true},
	}
	tests := []struct {
		curve Curve
		want  string
	}{
		{CurveLinear, "M0,0L10,10L20,0"},
		{CurveStep, "M0,0L5,0L5,10L15,10L15,0L20,0"},
		{CurveStepBefore, "M0,0L0,10L10,10L10,0L20,0"},
		{CurveStepAfter, "M0,0L10,0L10,10L20,10L20,0"},
	}
	for _, tt := range tests {
		if got := pl.Path(tt.curve); got != tt.want {
			t.Errorf("Path(%s) = %q, want %q", tt.curve, got, tt.want)
		}
	}

	for _, c := range []Curve{CurveBasis, CurveMonotoneX} {
		got := pl.Path(c)
		if !strings.HasPrefix(got, "M0,0") || !strings.HasSuffix(got, "20,0") {
			t.Errorf("Path(%s) = %q, want to start at 0,0 and end at 20,0", c, got)
		}
		if !strings.Contains(got, "C") {
			t.Errorf("Path(%s) = %q, want cubic segments", c, got)
		}
	}

	for name, want := range map[string]Curve{"": CurveLinear, "monotone-x": CurveMonotoneX, "Step": CurveStep} {
		if got, err := ParseCurve(name); err != nil || got != want {
			t.Errorf("ParseCurve(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseCurve("bumpy"); err == nil {
		t.Error("ParseCurve should reject unknown curves")
	}
}

func TestLerp(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 0}
	b := Rect{X: 10, Y: 20, Width: 0, Height: 10}
	if got := LerpRect(a, b, 0.5); got != (Rect{5, 10, 5, 5}) {
		t.Errorf("LerpRect() = %+v", got)
	}
	if got := LerpRect(a, b, 1.5); got.Width < 0 {
		t.Errorf("overshoot width = %v, want clamped at 0", got.Width)
	}

	short := Polyline{Points: []Point{{0, 0}}, Defined: []bool{true}}
	long := Polyline{Points: []Point{{0, 10}, {10, 10}}, Defined: []bool{true, true}}
	mid := LerpPolyline(short, long, 0.5)
	if len(mid.Points) != 2 || mid.Points[1] != (Point{5, 5}) {
		t.Errorf("LerpPolyline() = %+v", mid)
	}
	if got := LerpPolyline(short, long, 1); len(got.Points) != 2 {
		t.Errorf("LerpPolyline(t=1) should return the target")
	}

	rs, gs := RectShape(a), GlyphShape(Glyph{Size: 1})
	if got := LerpShape(rs, gs, 0.2); got.Kind != ShapeGlyph {
		t.Errorf("LerpShape across kinds = %v, want target kind", got.Kind)
	}
}

func TestScalesValidate(t *testing.T) {
	if err := bandXLinearY().Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if err := (Scales{X: scale.NewLinear(0, 1, 0, 1)}).Validate(); err == nil {
		t.Error("Validate() should reject a missing y scale")
	}
	if err := (Accessors[row]{Category: rowAcc.Category}).Validate(); err == nil {
		t.Error("Accessors.Validate() should reject a missing value accessor")
	}
}
