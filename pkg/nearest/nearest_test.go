package nearest

import (
	"math"
	"testing"

	"github.com/matzehuels/chartmotion/pkg/geom"
	"github.com/matzehuels/chartmotion/pkg/registry"
	"github.com/matzehuels/chartmotion/pkg/scale"
	"github.com/matzehuels/chartmotion/pkg/stack"
)

type pt struct {
	x, y float64
}

var ptAcc = geom.Accessors[pt]{
	Category: func(p pt) any { return p.x },
	Value:    func(p pt) float64 { return p.y },
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func query(data []pt, x scale.Scale) Query[pt] {
	return Query[pt]{
		Data:      data,
		Accessors: ptAcc,
		Scales:    geom.Scales{X: x, Y: scale.NewLinear(0, 10, 100, 0)},
	}
}

func TestFindPicksCloserNeighbour(t *testing.T) {
	x := scale.NewLinear(10, 40, 0, 100)
	data := []pt{{10, 1}, {20, 2}, {30, 3}, {40, 4}}
	pointer, _ := x.Map(24.0)

	r, ok := Find(query(data, x), geom.Point{X: pointer, Y: 50})
	if !ok {
		t.Fatal("Find() ok = false")
	}
	if r.Datum.x != 20 || r.Index != 1 {
		t.Errorf("Find() = %+v, want datum 20", r.Datum)
	}
	// 4 domain units at 100/30 px per unit
	if !approx(r.Distance, 4*100.0/30) {
		t.Errorf("Distance = %v, want %v", r.Distance, 4*100.0/30)
	}
	if !approx(r.Orthogonal, 30) {
		t.Errorf("Orthogonal = %v, want 30 (datum at y=80)", r.Orthogonal)
	}
	if !approx(r.Snap.X, 100.0/3) || !approx(r.Snap.Y, 80) {
		t.Errorf("Snap = %+v", r.Snap)
	}
}

func TestFindCases(t *testing.T) {
	x := scale.NewLinear(0, 100, 0, 100)
	reversed := scale.NewLinear(0, 100, 100, 0)

	tests := []struct {
		name      string
		data      []pt
		x         scale.Scale
		pointer   float64
		wantIndex int
	}{
		{"tie goes to earlier index", []pt{{20, 0}, {30, 0}}, x, 25, 0},
		{"before first", []pt{{20, 0}, {30, 0}}, x, -50, 0},
		{"after last", []pt{{20, 0}, {30, 0}}, x, 500, 1},
		{"exact hit", []pt{{20, 0}, {30, 0}, {40, 0}}, x, 30, 1},
		{"descending pixels", []pt{{20, 0}, {30, 0}, {40, 0}}, reversed, 68, 1},
		{"skips undefined", []pt{{20, 0}, {30, math.NaN()}, {40, 0}}, x, 35, 2},
		{"unsorted input", []pt{{40, 0}, {10, 0}, {25, 0}}, x, 22, 2},
		{"single datum", []pt{{50, 0}}, x, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := Find(query(tt.data, tt.x), geom.Point{X: tt.pointer})
			if !ok {
				t.Fatal("Find() ok = false")
			}
			if r.Index != tt.wantIndex {
				t.Errorf("Find() index = %d, want %d", r.Index, tt.wantIndex)
			}
		})
	}
}

func TestFindNothing(t *testing.T) {
	x := scale.NewLinear(0, 100, 0, 100)
	if _, ok := Find(query(nil, x), geom.Point{}); ok {
		t.Error("Find() on empty data should report false")
	}
	q := query([]pt{{1, math.NaN()}}, x)
	if _, ok := Find(q, geom.Point{}); ok {
		t.Error("Find() with no defined datum should report false")
	}
	q.Accessors.Value = nil
	if _, ok := Find(q, geom.Point{}); ok {
		t.Error("Find() without accessors should report false")
	}
}

func TestFindSnapsToSlotCenter(t *testing.T) {
	type bar struct {
		cat string
		val float64
	}
	q := Query[bar]{
		Data: []bar{{"A", 1}, {"B", 2}, {"C", 3}, {"D", 4}},
		Accessors: geom.Accessors[bar]{
			Category: func(b bar) any { return b.cat },
			Value:    func(b bar) float64 { return b.val },
		},
		Scales: geom.Scales{
			X: scale.NewBand([]any{"A", "B", "C", "D"}, 0, 400),
			Y: scale.NewLinear(0, 10, 100, 0),
		},
	}

	r, ok := Find(q, geom.Point{X: 190, Y: 0})
	if !ok {
		t.Fatal("Find() ok = false")
	}
	if r.Datum.cat != "B" || r.Snap.X != 150 || r.Snap.Y != 80 {
		t.Errorf("Find() = %+v, want B snapped at (150, 80)", r)
	}
}

func TestFindAlongY(t *testing.T) {
	q := query([]pt{{1, 1}, {2, 5}, {3, 9}}, scale.NewLinear(0, 10, 0, 100))
	q.Axis = AxisY
	// y scale maps 5 to 50
	r, ok := Find(q, geom.Point{X: 0, Y: 48})
	if !ok || r.Index != 1 {
		t.Errorf("Find(AxisY) = %+v, %v, want index 1", r, ok)
	}
	if !approx(r.Distance, 2) || !approx(r.Orthogonal, 20) {
		t.Errorf("distances = %v/%v, want 2/20", r.Distance, r.Orthogonal)
	}
}

type row struct {
	cat string
	val float64
}

func scenarioStack(t *testing.T) *stack.Result[row] {
	t.Helper()
	cat := func(r row) any { return r.cat }
	val := func(r row) float64 { return r.val }
	res, err := stack.Build([]stack.Series[row]{
		{Key: "one", Data: []row{{"A", 10}, {"B", 20}, {"C", 30}}, Category: cat, Value: val},
		{Key: "two", Data: []row{{"A", 5}, {"B", 15}, {"C", -5}}, Category: cat, Value: val},
	}, stack.Config{})
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestFindStacked(t *testing.T) {
	q := StackQuery[row]{
		Stack: scenarioStack(t),
		Scales: geom.Scales{
			X: scale.NewBand([]any{"A", "B", "C"}, 0, 300),
			Y: scale.NewLinear(-10, 60, 700, 0),
		},
	}

	tests := []struct {
		name           string
		pointer        geom.Point
		wantSeries     string
		wantValue      float64
		wantDistance   float64
		wantOrthogonal float64
	}{
		{"inside positive segment", geom.Point{X: 250, Y: 400}, "one", 30, 0, 0},
		{"inside negative segment", geom.Point{X: 250, Y: 620}, "two", -5, 0, 0},
		{"jitter within segment", geom.Point{X: 230, Y: 450}, "one", 30, 20, 0},
		{"above the stack", geom.Point{X: 250, Y: 100}, "one", 30, 0, 200},
		{"other category", geom.Point{X: 40, Y: 460}, "two", 5, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := FindStacked(q, tt.pointer)
			if !ok {
				t.Fatal("FindStacked() ok = false")
			}
			if r.Segment.Series != tt.wantSeries || r.Datum.val != tt.wantValue {
				t.Errorf("FindStacked() = %s/%v, want %s/%v", r.Segment.Series, r.Datum.val, tt.wantSeries, tt.wantValue)
			}
			if !approx(r.Distance, tt.wantDistance) || !approx(r.Orthogonal, tt.wantOrthogonal) {
				t.Errorf("distances = %v/%v, want %v/%v", r.Distance, r.Orthogonal, tt.wantDistance, tt.wantOrthogonal)
			}
		})
	}

	if _, ok := FindStacked(StackQuery[row]{}, geom.Point{}); ok {
		t.Error("FindStacked() without a stack should report false")
	}
}

func TestFindAcross(t *testing.T) {
	reg := registry.New[pt]()
	_ = reg.Register(registry.Entry[pt]{Key: "low", Data: []pt{{10, 1}, {20, 1}}, Category: ptAcc.Category, Value: ptAcc.Value})
	_ = reg.Register(registry.Entry[pt]{Key: "high", Data: []pt{{10, 9}, {20, 9}}, Category: ptAcc.Category, Value: ptAcc.Value})

	sc := geom.Scales{X: scale.NewLinear(0, 100, 0, 100), Y: scale.NewLinear(0, 10, 100, 0)}
	r, ok := FindAcross(reg, sc, geom.Vertical, AxisX, geom.Point{X: 19, Y: 15})
	if !ok {
		t.Fatal("FindAcross() ok = false")
	}
	if r.Series != "high" || r.Index != 1 {
		t.Errorf("FindAcross() = %s[%d], want high[1]", r.Series, r.Index)
	}
}

func TestFindAcrossGrouped(t *testing.T) {
	type bar struct {
		cat string
		v   float64
	}
	acc := geom.Accessors[bar]{
		Category: func(b bar) any { return b.cat },
		Value:    func(b bar) float64 { return b.v },
	}
	reg := registry.New[bar]()
	_ = reg.Register(registry.Entry[bar]{Key: "a", Data: []bar{{"A", 5}, {"B", 5}}, Category: acc.Category, Value: acc.Value})
	_ = reg.Register(registry.Entry[bar]{Key: "b", Data: []bar{{"A", 8}, {"B", 8}}, Category: acc.Category, Value: acc.Value})

	x := scale.NewBand([]any{"A", "B"}, 0, 400)
	sc := geom.Scales{X: x, Y: scale.NewLinear(0, 10, 100, 0), Group: geom.NewGroupScale(reg.Keys(), x)}

	tests := []struct {
		name    string
		pointer float64
		series  string
		cat     string
		snapX   float64
	}{
		{"first bar of A", 40, "a", "A", 50},
		{"second bar of A", 150, "b", "A", 150},
		{"first bar of B", 260, "a", "B", 250},
		{"second bar of B", 390, "b", "B", 350},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := FindAcross(reg, sc, geom.Vertical, AxisX, geom.Point{X: tt.pointer, Y: 50})
			if !ok {
				t.Fatal("FindAcross() ok = false")
			}
			if r.Series != tt.series || r.Datum.cat != tt.cat || !approx(r.Snap.X, tt.snapX) {
				t.Errorf("FindAcross() = %s %s snap %v, want %s %s snap %v",
					r.Series, r.Datum.cat, r.Snap.X, tt.series, tt.cat, tt.snapX)
			}
		})
	}
}
