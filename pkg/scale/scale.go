package scale

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/matzehuels/chartmotion/pkg/errors"
)

// =============================================================================
// Kinds
// =============================================================================

// Kind discriminates the supported coordinate mappings. Every Scale reports
// its kind so call sites never probe for optional methods.
type Kind int

const (
	// KindContinuous maps a numeric interval linearly onto the range.
	KindContinuous Kind = iota + 1
	// KindBand maps an ordered set of categories onto equal-width slots.
	KindBand
	// KindPoint maps categories onto evenly spaced points (zero bandwidth).
	KindPoint
	// KindTime maps a time interval linearly onto the range.
	KindTime
)

var kindNames = map[Kind]string{
	KindContinuous: "continuous",
	KindBand:       "band",
	KindPoint:      "point",
	KindTime:       "time",
}

// String returns the configuration name of the kind.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// Banded reports whether scales of this kind place categories in slots.
func (k Kind) Banded() bool {
	return k == KindBand || k == KindPoint
}

// ParseKind converts a configuration name ("linear" is accepted as an alias
// for "continuous", "ordinal" for "band") into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "continuous", "linear":
		return KindContinuous, nil
	case "band", "ordinal", "ordinal-band":
		return KindBand, nil
	case "point":
		return KindPoint, nil
	case "time":
		return KindTime, nil
	}
	return 0, errors.New(errors.ErrCodeUnsupportedScale, "unsupported scale kind: %q (must be one of: continuous, band, point, time)", s)
}

// =============================================================================
// Scale capability
// =============================================================================

// Scale is the minimal coordinate-mapping contract the engine consumes.
//
// Map reports ok == false when the value is undefined for the scale (an
// unknown category, or a value of the wrong type). Continuous and time scales
// extrapolate outside their domain, so a defined result may still fall
// outside Range; it may also be NaN or infinite for NaN or infinite input.
// Use MapValue to get only finite positions.
type Scale interface {
	Kind() Kind
	Map(v any) (float64, bool)
	// Copy returns an independent clone; later changes to the receiver do
	// not affect the copy.
	Copy() Scale
	// Bandwidth is the slot width for band scales and 0 otherwise.
	Bandwidth() float64
	Round() bool
	Domain() []any
	Range() [2]float64
	Ticks(count int) []any
	TickFormat(count int, specifier string) func(any) string
}

// Validate fails fast on scales the engine cannot work with.
func Validate(s Scale) error {
	if isNil(s) {
		return errors.New(errors.ErrCodeUnsupportedScale, "scale is nil")
	}
	if !s.Kind().Valid() {
		return errors.New(errors.ErrCodeUnsupportedScale, "unsupported scale kind %s", s.Kind())
	}
	return nil
}

func isNil(s Scale) bool {
	if s == nil {
		return true
	}
	v := reflect.ValueOf(s)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// =============================================================================
// Adapter
// =============================================================================

// MapValue maps v through s and reports ok only for finite positions.
// A nil scale maps nothing.
func MapValue(s Scale, v any) (float64, bool) {
	if isNil(s) {
		return math.NaN(), false
	}
	px, ok := s.Map(v)
	if !ok || !Finite(px) {
		return math.NaN(), false
	}
	return px, true
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsBanded reports whether s places categories in slots.
func IsBanded(s Scale) bool {
	return !isNil(s) && s.Kind().Banded()
}

// Bandwidth returns the slot width of s, clamped to be non-negative.
// Nil and unbanded scales have zero bandwidth.
func Bandwidth(s Scale) float64 {
	if isNil(s) {
		return 0
	}
	bw := s.Bandwidth()
	if !Finite(bw) || bw < 0 {
		return 0
	}
	return bw
}

// CenterOffset is the distance from a slot's start to its center.
func CenterOffset(s Scale) float64 {
	if !IsBanded(s) {
		return 0
	}
	off := Bandwidth(s) / 2
	if s.Round() {
		off = math.Round(off)
	}
	return off
}

// Baseline returns the pixel position that anchors bar lengths: the position
// of zero for continuous scales (clamped into the range when zero lies
// outside the domain), and the position of the domain start for time and
// ordinal scales.
func Baseline(s Scale) float64 {
	if isNil(s) {
		return math.NaN()
	}
	r := s.Range()
	lo, hi := math.Min(r[0], r[1]), math.Max(r[0], r[1])

	switch s.Kind() {
	case KindContinuous:
		zero, ok := s.Map(0.0)
		if !ok || math.IsNaN(zero) {
			return r[0]
		}
		return math.Max(lo, math.Min(hi, zero))
	case KindTime:
		d := s.Domain()
		if len(d) == 0 {
			return r[0]
		}
		start := d[0]
		if len(d) > 1 {
			t0, ok0 := d[0].(time.Time)
			t1, ok1 := d[len(d)-1].(time.Time)
			if ok0 && ok1 && t1.Before(t0) {
				start = t1
			}
		}
		if px, ok := MapValue(s, start); ok {
			return px
		}
		return r[0]
	case KindBand, KindPoint:
		return r[0]
	default:
		panic(fmt.Sprintf("scale: unsupported kind %s", s.Kind()))
	}
}

// Extent returns the range bounds in ascending order.
func Extent(s Scale) (lo, hi float64) {
	r := s.Range()
	return math.Min(r[0], r[1]), math.Max(r[0], r[1])
}
