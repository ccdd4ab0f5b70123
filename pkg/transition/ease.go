package transition

import (
	"math"
	"strings"

	"github.com/matzehuels/chartmotion/pkg/errors"
)

// Ease maps linear progress in [0, 1] to eased progress. Ease(0) must be 0
// and Ease(1) must be 1.
type Ease func(t float64) float64

func Linear(t float64) float64 { return t }

func QuadIn(t float64) float64  { return t * t }
func QuadOut(t float64) float64 { return t * (2 - t) }
func QuadInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t / 2
	}
	t--
	return (t*(2-t) + 1) / 2
}

func CubicIn(t float64) float64 { return t * t * t }

func CubicOut(t float64) float64 {
	t--
	return t*t*t + 1
}

// CubicInOut is the default easing.
func CubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

func SinInOut(t float64) float64 { return (1 - math.Cos(math.Pi*t)) / 2 }

func ExpInOut(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	case t < 0.5:
		return math.Pow(2, 20*t-10) / 2
	}
	return (2 - math.Pow(2, 10-20*t)) / 2
}

// BackOut overshoots the target slightly before settling.
func BackOut(t float64) float64 {
	const s = 1.70158
	t--
	return t*t*((s+1)*t+s) + 1
}

var eases = map[string]Ease{
	"linear":       Linear,
	"quad-in":      QuadIn,
	"quad-out":     QuadOut,
	"quad-in-out":  QuadInOut,
	"cubic-in":     CubicIn,
	"cubic-out":    CubicOut,
	"cubic-in-out": CubicInOut,
	"sin-in-out":   SinInOut,
	"exp-in-out":   ExpInOut,
	"back-out":     BackOut,
}

// ParseEase returns the easing registered under name. The empty string
// means CubicInOut.
func ParseEase(name string) (Ease, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return CubicInOut, nil
	}
	if e, ok := eases[n]; ok {
		return e, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown ease: %q", name)
}
