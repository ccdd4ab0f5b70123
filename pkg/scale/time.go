package scale

import (
	"math"
	"time"

	mscale "github.com/aclements/go-moremath/scale"
)

// Time is a continuous scale over instants. Instants are normalized as Unix
// nanoseconds through a go-moremath Linear; ticks land on calendar
// boundaries in the location of the domain start.
type Time struct {
	lin    mscale.Linear
	t0, t1 time.Time
	loc    *time.Location
	r0, r1 float64
	round  bool
}

// NewTime creates a time scale mapping [t0, t1] onto [r0, r1].
func NewTime(t0, t1 time.Time, r0, r1 float64, round bool) *Time {
	return &Time{
		lin:   mscale.Linear{Min: float64(t0.UnixNano()), Max: float64(t1.UnixNano())},
		t0:    t0,
		t1:    t1,
		loc:   t0.Location(),
		r0:    r0,
		r1:    r1,
		round: round,
	}
}

func (s *Time) Kind() Kind         { return KindTime }
func (s *Time) Bandwidth() float64 { return 0 }
func (s *Time) Round() bool        { return s.round }
func (s *Time) Range() [2]float64  { return [2]float64{s.r0, s.r1} }

func (s *Time) Domain() []any {
	return []any{s.t0, s.t1}
}

// Copy returns an independent clone.
func (s *Time) Copy() Scale {
	c := *s
	return &c
}

func (s *Time) instant(ns float64) time.Time {
	return time.Unix(0, int64(ns)).In(s.loc)
}

// Map maps a time.Time (or *time.Time). Other values are undefined.
func (s *Time) Map(v any) (float64, bool) {
	var t time.Time
	switch x := v.(type) {
	case time.Time:
		t = x
	case *time.Time:
		if x == nil {
			return math.NaN(), false
		}
		t = *x
	default:
		return math.NaN(), false
	}
	f := 0.5
	if s.lin.Min != s.lin.Max {
		f = s.lin.Map(float64(t.UnixNano()))
	}
	px := s.r0 + f*(s.r1-s.r0)
	if s.round {
		px = math.Round(px)
	}
	return px, true
}

// Invert maps a pixel position back to an instant.
func (s *Time) Invert(px float64) time.Time {
	if s.r1 == s.r0 {
		return s.instant(s.lin.Min)
	}
	f := (px - s.r0) / (s.r1 - s.r0)
	return s.instant(s.lin.Min + f*(s.lin.Max-s.lin.Min))
}

// =============================================================================
// Calendar ticks
// =============================================================================

type interval struct {
	unit   time.Duration // fixed-length step; 0 for months and years
	months int
	layout string
}

var tickIntervals = []interval{
	{unit: time.Second, layout: ":05"},
	{unit: 5 * time.Second, layout: ":05"},
	{unit: 15 * time.Second, layout: ":05"},
	{unit: 30 * time.Second, layout: ":05"},
	{unit: time.Minute, layout: "15:04"},
	{unit: 5 * time.Minute, layout: "15:04"},
	{unit: 15 * time.Minute, layout: "15:04"},
	{unit: 30 * time.Minute, layout: "15:04"},
	{unit: time.Hour, layout: "15:04"},
	{unit: 3 * time.Hour, layout: "15:04"},
	{unit: 6 * time.Hour, layout: "15:04"},
	{unit: 12 * time.Hour, layout: "15:04"},
	{unit: 24 * time.Hour, layout: "Jan 02"},
	{unit: 48 * time.Hour, layout: "Jan 02"},
	{unit: 7 * 24 * time.Hour, layout: "Jan 02"},
	{months: 1, layout: "Jan"},
	{months: 3, layout: "Jan"},
}

const approxMonth = 30 * 24 * time.Hour

func (iv interval) approx() time.Duration {
	if iv.months > 0 {
		return time.Duration(iv.months) * approxMonth
	}
	return iv.unit
}

// pickInterval returns the smallest calendar interval yielding at most count
// ticks over span, or ok == false when years are needed.
func pickInterval(span time.Duration, count int) (interval, bool) {
	for _, iv := range tickIntervals {
		if span/iv.approx() < time.Duration(count) {
			return iv, true
		}
	}
	return interval{}, false
}

// Ticks returns at most count instants on calendar boundaries.
func (s *Time) Ticks(count int) []any {
	ts := s.tickTimes(count)
	out := make([]any, len(ts))
	for i, t := range ts {
		out[i] = t
	}
	return out
}

func (s *Time) tickTimes(count int) []time.Time {
	if count <= 0 {
		count = DefaultTickCount
	}
	start, end := s.t0.In(s.loc), s.t1.In(s.loc)
	if end.Before(start) {
		start, end = end, start
	}
	if start.Equal(end) {
		return []time.Time{start}
	}
	iv, ok := pickInterval(end.Sub(start), count)
	if !ok {
		return s.yearTicks(start, end, count)
	}
	var out []time.Time
	for t := floorTo(start, iv); !t.After(end); t = next(t, iv) {
		if !t.Before(start) {
			out = append(out, t)
		}
	}
	return out
}

// yearTicks picks round year numbers with moremath's tick search.
func (s *Time) yearTicks(start, end time.Time, count int) []time.Time {
	ys := mscale.Linear{Min: float64(start.Year()), Max: float64(end.Year() + 1)}
	major, _ := ys.Ticks(mscale.TickOptions{Max: count})
	var out []time.Time
	for _, y := range major {
		if y != math.Trunc(y) {
			continue
		}
		t := time.Date(int(y), time.January, 1, 0, 0, 0, 0, s.loc)
		if !t.Before(start) && !t.After(end) {
			out = append(out, t)
		}
	}
	return out
}

func floorTo(t time.Time, iv interval) time.Time {
	loc := t.Location()
	switch {
	case iv.months > 0:
		m := (int(t.Month())-1)/iv.months*iv.months + 1
		return time.Date(t.Year(), time.Month(m), 1, 0, 0, 0, 0, loc)
	case iv.unit == 7*24*time.Hour:
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		return d.AddDate(0, 0, -int(d.Weekday()))
	case iv.unit >= 24*time.Hour:
		days := int(iv.unit / (24 * time.Hour))
		day := (t.Day()-1)/days*days + 1
		return time.Date(t.Year(), t.Month(), day, 0, 0, 0, 0, loc)
	case iv.unit >= time.Hour:
		hours := int(iv.unit / time.Hour)
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour()/hours*hours, 0, 0, 0, loc)
	default:
		return t.Truncate(iv.unit)
	}
}

func next(t time.Time, iv interval) time.Time {
	switch {
	case iv.months > 0:
		return t.AddDate(0, iv.months, 0)
	case iv.unit >= 24*time.Hour:
		n := t.AddDate(0, 0, int(iv.unit/(24*time.Hour)))
		if iv.unit == 48*time.Hour && n.Month() != t.Month() {
			// restart odd days at the first of each month
			return time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, n.Location())
		}
		return n
	default:
		return t.Add(iv.unit)
	}
}

// TickFormat returns a formatter for time ticks. The specifier is a Go time
// layout; when empty, a layout matching the tick interval is chosen.
func (s *Time) TickFormat(count int, specifier string) func(any) string {
	layout := specifier
	if layout == "" {
		layout = s.defaultLayout(count)
	}
	return func(v any) string {
		t, ok := v.(time.Time)
		if !ok {
			return Label(v)
		}
		return t.In(s.loc).Format(layout)
	}
}

func (s *Time) defaultLayout(count int) string {
	if count <= 0 {
		count = DefaultTickCount
	}
	span := s.t1.Sub(s.t0).Abs()
	if iv, ok := pickInterval(span, count); ok {
		return iv.layout
	}
	return "2006"
}
