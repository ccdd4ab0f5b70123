package scale

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/matzehuels/chartmotion/pkg/errors"
)

// NumberFormat is a parsed tick format specifier of the form
// [,][.precision][type], where type is one of:
//
//	f  fixed point          d  rounded integer
//	%  percent (x100)       e  exponent notation
//	g  general              s  SI prefix (k, M, G, m, µ …)
//
// A leading "," groups thousands. An empty type means fixed point with the
// precision derived from the tick step.
type NumberFormat struct {
	Group     bool
	Precision int // -1 when unspecified
	Type      byte
}

// ParseSpecifier parses a numeric tick format specifier.
func ParseSpecifier(spec string) (NumberFormat, error) {
	f := NumberFormat{Precision: -1}
	rest := spec
	if strings.HasPrefix(rest, ",") {
		f.Group = true
		rest = rest[1:]
	}
	if strings.HasPrefix(rest, ".") {
		i := 1
		for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
			i++
		}
		if i == 1 {
			return f, errors.New(errors.ErrCodeInvalidFormat, "format %q: missing precision after '.'", spec)
		}
		p, err := strconv.Atoi(rest[1:i])
		if err != nil || p > 20 {
			return f, errors.New(errors.ErrCodeInvalidFormat, "format %q: invalid precision", spec)
		}
		f.Precision = p
		rest = rest[i:]
	}
	switch rest {
	case "", "f", "d", "%", "e", "g", "s":
		if rest != "" {
			f.Type = rest[0]
		}
	default:
		return f, errors.New(errors.ErrCodeInvalidFormat, "format %q: unknown type %q", spec, rest)
	}
	return f, nil
}

// Format renders v. defaultPrecision applies when the specifier gave none.
func (f NumberFormat) Format(v float64, defaultPrecision int) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	p := f.Precision
	if p < 0 {
		p = defaultPrecision
	}
	switch f.Type {
	case 'd':
		return f.fixed(math.Round(v), 0)
	case '%':
		return f.fixed(v*100, p) + "%"
	case 'e':
		if f.Precision < 0 {
			p = -1
		}
		return strconv.FormatFloat(v, 'e', p, 64)
	case 'g':
		if f.Precision < 0 {
			p = -1
		}
		return strconv.FormatFloat(v, 'g', p, 64)
	case 's':
		return f.si(v)
	default:
		return f.fixed(v, p)
	}
}

// printer groups thousands the way an en-US reader expects.
var printer = message.NewPrinter(language.English)

func (f NumberFormat) fixed(v float64, p int) string {
	if v == 0 {
		v = 0 // normalize -0
	}
	if f.Group {
		return printer.Sprintf("%."+strconv.Itoa(p)+"f", v)
	}
	return strconv.FormatFloat(v, 'f', p, 64)
}

var siPrefixes = []string{"y", "z", "a", "f", "p", "n", "µ", "m", "", "k", "M", "G", "T", "P", "E", "Z", "Y"}

func (f NumberFormat) si(v float64) string {
	if v == 0 {
		return "0"
	}
	k := int(math.Floor(math.Log10(math.Abs(v)) / 3))
	k = max(-8, min(8, k))
	scaled := v / math.Pow(1000, float64(k))
	p := f.Precision
	s := strconv.FormatFloat(scaled, 'f', p, 64)
	if p < 0 {
		s = strconv.FormatFloat(scaled, 'g', 6, 64)
	}
	return s + siPrefixes[k+8]
}

// precisionFor returns the number of decimals needed to tell ticks spaced
// step apart.
func precisionFor(step float64) int {
	step = math.Abs(step)
	if step == 0 || !Finite(step) {
		return 0
	}
	return max(0, -int(math.Floor(math.Log10(step)+1e-9)))
}

// numberTickFormat builds a formatter for numeric ticks. Invalid specifiers
// fall back to the default format; ParseSpecifier reports them up front.
func numberTickFormat(ticks []float64, specifier string) func(any) string {
	f, err := ParseSpecifier(specifier)
	if err != nil {
		f = NumberFormat{Precision: -1}
	}
	step := 1.0
	if len(ticks) > 1 {
		step = ticks[1] - ticks[0]
	}
	prec := precisionFor(step)
	if f.Type == '%' {
		prec = precisionFor(step * 100)
	}
	return func(v any) string {
		x, ok := ToFloat(v)
		if !ok {
			return Label(v)
		}
		return f.Format(x, prec)
	}
}
