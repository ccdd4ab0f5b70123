package chart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/chartmotion/pkg/errors"
	"github.com/matzehuels/chartmotion/pkg/geom"
	"github.com/matzehuels/chartmotion/pkg/render"
	"github.com/matzehuels/chartmotion/pkg/scale"
	"github.com/matzehuels/chartmotion/pkg/stack"
	"github.com/matzehuels/chartmotion/pkg/transition"
)

// Document defaults.
const (
	DefaultWidth  = 640
	DefaultHeight = 400
	DefaultFPS    = 30
	MaxFPS        = 120
	// MaxDuration bounds a single transition.
	MaxDuration = time.Minute
	// DefaultTickSize is the length of tick marks in pixels.
	DefaultTickSize = 6
)

// Mark is the kind of element a chart draws for its data.
type Mark string

const (
	MarkBar        Mark = "bar"
	MarkGroupedBar Mark = "grouped-bar"
	MarkStackedBar Mark = "stacked-bar"
	MarkGlyph      Mark = "glyph"
	MarkLine       Mark = "line"
)

// Bars reports whether m draws rectangles anchored at a baseline.
func (m Mark) Bars() bool {
	return m == MarkBar || m == MarkGroupedBar || m == MarkStackedBar
}

func (m Mark) valid() bool {
	switch m {
	case MarkBar, MarkGroupedBar, MarkStackedBar, MarkGlyph, MarkLine:
		return true
	}
	return false
}

// =============================================================================
// Document
// =============================================================================

// Chart is a declarative chart document.
type Chart struct {
	Title       string         `toml:"title" json:"title,omitempty"`
	Width       float64        `toml:"width" json:"width,omitempty"`
	Height      float64        `toml:"height" json:"height,omitempty"`
	Margin      *render.Margin `toml:"margin" json:"margin,omitempty"`
	Mark        Mark           `toml:"mark" json:"mark,omitempty"`
	Orientation string         `toml:"orientation" json:"orientation,omitempty"`
	Curve       string         `toml:"curve" json:"curve,omitempty"`
	GlyphSize   float64        `toml:"glyph_size" json:"glyph_size,omitempty"`

	X Axis `toml:"x" json:"x"`
	Y Axis `toml:"y" json:"y"`

	Stack     stack.Config `toml:"stack" json:"stack"`
	Animation Animation    `toml:"animation" json:"animation"`

	// Series is the first dataset. Frames holds the datasets that follow
	// it when the chart is animated.
	Series []Series `toml:"series" json:"series"`
	Frames []Frame  `toml:"frames" json:"frames,omitempty"`

	orientation geom.Orientation
	curve       geom.Curve
	ease        transition.Ease
	categoryKnd scale.Kind
	colors      map[string]string
	validated   bool
}

// Axis configures the scale and axis of one dimension.
type Axis struct {
	// Scale is continuous, band, point or time. Empty picks one from the
	// mark and the data.
	Scale  string `toml:"scale" json:"scale,omitempty"`
	Domain []any  `toml:"domain" json:"domain,omitempty"`

	Padding      *float64 `toml:"padding" json:"padding,omitempty"`
	PaddingInner *float64 `toml:"padding_inner" json:"padding_inner,omitempty"`
	PaddingOuter *float64 `toml:"padding_outer" json:"padding_outer,omitempty"`
	Align        *float64 `toml:"align" json:"align,omitempty"`
	Nice         *bool    `toml:"nice" json:"nice,omitempty"`
	Zero         *bool    `toml:"zero" json:"zero,omitempty"`
	Round        bool     `toml:"round" json:"round,omitempty"`
	Clamp        bool     `toml:"clamp" json:"clamp,omitempty"`

	Ticks      int      `toml:"ticks" json:"ticks,omitempty"`
	TickValues []any    `toml:"tick_values" json:"tick_values,omitempty"`
	TickSize   *float64 `toml:"tick_size" json:"tick_size,omitempty"`
	Format     string   `toml:"format" json:"format,omitempty"`
	// Offset shifts ticks and the axis line, typically 0.5 for crisp
	// one-pixel strokes.
	Offset    float64 `toml:"offset" json:"offset,omitempty"`
	Placement string  `toml:"placement" json:"placement,omitempty"`
	Hide      bool    `toml:"hide" json:"hide,omitempty"`
}

// Animation configures transitions between frames.
type Animation struct {
	Duration Duration `toml:"duration" json:"duration,omitempty"`
	Ease     string   `toml:"ease" json:"ease,omitempty"`
	FPS      int      `toml:"fps" json:"fps,omitempty"`
}

// Duration is a time.Duration written as "300ms" in documents.
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) { return []byte(time.Duration(d).String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("duration %q: %w", b, err)
	}
	*d = Duration(v)
	return nil
}

// Series is one named data series.
type Series struct {
	Key    string  `toml:"key" json:"key"`
	Color  string  `toml:"color" json:"color,omitempty"`
	Points []Point `toml:"points" json:"points"`
}

// Point is one observation. A missing value leaves a gap.
type Point struct {
	Category any      `toml:"category" json:"category"`
	Value    *float64 `toml:"value" json:"value"`
	// Key identifies the point across frames; defaults to its category.
	Key string `toml:"key" json:"key,omitempty"`
	// Size overrides the glyph size.
	Size float64 `toml:"size" json:"size,omitempty"`
}

// Frame is a dataset shown after the first.
type Frame struct {
	Label  string   `toml:"label" json:"label,omitempty"`
	Series []Series `toml:"series" json:"series"`
}

// =============================================================================
// Decoding
// =============================================================================

// Format names a document encoding.
const (
	FormatTOML = "toml"
	FormatJSON = "json"
)

// Read decodes a chart from r and validates it. An empty format sniffs the
// content: documents starting with '{' are JSON, anything else TOML.
func Read(r io.Reader, format string) (*Chart, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read chart: %w", err)
	}
	return Parse(data, format)
}

// Parse decodes a chart document and validates it.
func Parse(data []byte, format string) (*Chart, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = sniff(data)
	}

	var c Chart
	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(data), &c); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidChart, err, "decode toml")
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidChart, err, "decode json")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported chart format: %q (must be toml or json)", format)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads a chart file. The format follows the extension; other
// extensions are sniffed.
func Load(path string) (*Chart, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	c, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// FormatFromPath maps a file extension to a document format, or "" when
// the extension is not recognized.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	}
	return ""
}

func sniff(data []byte) string {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return FormatJSON
	}
	return FormatTOML
}

// =============================================================================
// Validation
// =============================================================================

// Validate applies defaults and checks the document. Category values are
// normalized: numbers become float64, and strings on a time axis are parsed
// as RFC 3339 timestamps or dates. Validate is idempotent.
func (c *Chart) Validate() error {
	if c.validated {
		return nil
	}
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	if err := errors.ValidateDimensions(c.Width, c.Height); err != nil {
		return err
	}
	if c.Margin == nil {
		m := render.DefaultMargin
		c.Margin = &m
	}
	for _, v := range []float64{c.Margin.Top, c.Margin.Right, c.Margin.Bottom, c.Margin.Left} {
		if v < 0 || math.IsNaN(v) {
			return errors.New(errors.ErrCodeInvalidDimensions, "margins must be non-negative")
		}
	}
	if c.innerWidth() <= 0 || c.innerHeight() <= 0 {
		return errors.New(errors.ErrCodeInvalidDimensions, "margins leave no room for the plot (%gx%g)", c.Width, c.Height)
	}

	if c.Mark == "" {
		c.Mark = MarkBar
	}
	if !c.Mark.valid() {
		return errors.New(errors.ErrCodeInvalidMark, "unknown mark: %q (must be one of: bar, grouped-bar, stacked-bar, glyph, line)", c.Mark)
	}
	var err error
	if c.orientation, err = geom.ParseOrientation(c.Orientation); err != nil {
		return err
	}
	if c.curve, err = geom.ParseCurve(c.Curve); err != nil {
		return err
	}
	if c.ease, err = transition.ParseEase(c.Animation.Ease); err != nil {
		return err
	}
	if c.GlyphSize < 0 {
		return errors.New(errors.ErrCodeInvalidChart, "glyph size must be non-negative")
	}
	if c.Animation.Duration < 0 || time.Duration(c.Animation.Duration) > MaxDuration {
		return errors.New(errors.ErrCodeInvalidChart, "animation duration must be between 0 and %s", MaxDuration)
	}
	if c.Animation.Duration == 0 {
		c.Animation.Duration = Duration(transition.DefaultDuration)
	}
	if c.Animation.FPS == 0 {
		c.Animation.FPS = DefaultFPS
	}
	if c.Animation.FPS < 0 || c.Animation.FPS > MaxFPS {
		return errors.New(errors.ErrCodeInvalidChart, "fps must be between 1 and %d", MaxFPS)
	}

	if err := c.validateAxes(); err != nil {
		return err
	}
	if err := validateSeries(c.Series, c.categoryKnd); err != nil {
		return errors.At(err, "series")
	}
	for i := range c.Frames {
		if err := validateSeries(c.Frames[i].Series, c.categoryKnd); err != nil {
			return errors.At(err, fmt.Sprintf("frames[%d].series", i))
		}
	}
	c.assignColors()
	c.validated = true
	return nil
}

func (c *Chart) validateAxes() error {
	cat, val := c.categoryAxis(), c.valueAxis()
	for _, name := range []string{"x", "y"} {
		a := &c.X
		if name == "y" {
			a = &c.Y
		}
		if a.Scale != "" {
			if _, err := scale.ParseKind(a.Scale); err != nil {
				return err
			}
		}
		if a.Placement != "" {
			p, err := geom.ParsePlacement(a.Placement)
			if err != nil {
				return err
			}
			if p.Horizontal() != (name == "x") {
				return errors.New(errors.ErrCodeInvalidChart, "%s axis cannot be placed %s", name, p)
			}
		}
		if a.Ticks < 0 {
			return errors.New(errors.ErrCodeInvalidChart, "tick count must be non-negative")
		}
		if a.TickSize != nil && *a.TickSize < 0 {
			return errors.New(errors.ErrCodeInvalidChart, "tick size must be non-negative")
		}
	}

	if cat.Scale != "" {
		c.categoryKnd, _ = scale.ParseKind(cat.Scale)
	}
	if c.Mark == MarkGroupedBar || c.Mark == MarkStackedBar {
		if c.categoryKnd != 0 && c.categoryKnd != scale.KindBand {
			return errors.New(errors.ErrCodeInvalidScale, "%s marks need a band category scale, got %s", c.Mark, c.categoryKnd)
		}
	}
	if val.Scale != "" {
		if k, _ := scale.ParseKind(val.Scale); k != scale.KindContinuous {
			return errors.New(errors.ErrCodeInvalidScale, "value axis must be continuous, got %s", k)
		}
	}

	var err error
	if cat.Domain, err = normalizeAll(cat.Domain, c.categoryKnd); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidScale, err, "category domain")
	}
	if cat.TickValues, err = normalizeAll(cat.TickValues, c.categoryKnd); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidScale, err, "category ticks")
	}
	if val.Domain, err = normalizeAll(val.Domain, scale.KindContinuous); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidScale, err, "value domain")
	}
	if len(val.Domain) != 0 && len(val.Domain) != 2 {
		return errors.New(errors.ErrCodeInvalidScale, "value domain needs two bounds, got %d", len(val.Domain))
	}
	if val.TickValues, err = normalizeAll(val.TickValues, scale.KindContinuous); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidScale, err, "value ticks")
	}
	return nil
}

// validateSeries checks one series list. Errors are located relative to
// the list, e.g. [2].points[0].
func validateSeries(series []Series, kind scale.Kind) error {
	seen := make(map[string]bool, len(series))
	for i := range series {
		s := &series[i]
		at := fmt.Sprintf("[%d]", i)
		if err := errors.ValidateChartName(s.Key); err != nil {
			return errors.At(err, at+".key")
		}
		if seen[s.Key] {
			return errors.At(errors.New(errors.ErrCodeInvalidChart, "duplicate series key %q", s.Key), at+".key")
		}
		seen[s.Key] = true
		if err := errors.ValidateColor(s.Color); err != nil {
			return errors.At(err, at+".color")
		}
		for j := range s.Points {
			p := &s.Points[j]
			pt := fmt.Sprintf("%s.points[%d]", at, j)
			v, err := normalize(p.Category, kind)
			if err != nil {
				return errors.At(errors.Wrap(errors.ErrCodeInvalidChart, err, "series %q", s.Key), pt+".category")
			}
			p.Category = v
			if p.Size < 0 {
				return errors.At(errors.New(errors.ErrCodeInvalidChart, "series %q: negative size", s.Key), pt+".size")
			}
		}
	}
	return nil
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04", "2006-01-02", "2006-01", "2006"}

// normalize converts a decoded category into the representation scales
// expect for kind (0 when the kind is inferred later).
func normalize(v any, kind scale.Kind) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, fmt.Errorf("missing category")
	case time.Time:
		return x, nil
	case string:
		if kind != scale.KindTime {
			return x, nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, x); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("invalid time %q", x)
	case bool:
		return nil, fmt.Errorf("unsupported category %v", x)
	}
	if f, ok := scale.ToFloat(v); ok {
		if kind == scale.KindTime {
			return nil, fmt.Errorf("time axis needs timestamps, got %v", v)
		}
		return f, nil
	}
	return nil, fmt.Errorf("unsupported category %v (%T)", v, v)
}

func normalizeAll(vs []any, kind scale.Kind) ([]any, error) {
	for i, v := range vs {
		n, err := normalize(v, kind)
		if err != nil {
			return nil, err
		}
		vs[i] = n
	}
	return vs, nil
}

// =============================================================================
// Accessors
// =============================================================================

// assignColors gives every series key a colour that stays the same across
// frames: its own, or the palette entry of its first appearance.
func (c *Chart) assignColors() {
	c.colors = make(map[string]string)
	next := 0
	visit := func(series []Series) {
		for _, s := range series {
			if _, ok := c.colors[s.Key]; ok {
				continue
			}
			if s.Color != "" {
				c.colors[s.Key] = s.Color
			} else {
				c.colors[s.Key] = render.Color(next)
			}
			next++
		}
	}
	visit(c.Series)
	for _, f := range c.Frames {
		visit(f.Series)
	}
}

// Color returns the colour of series key.
func (c *Chart) Color(key string) string {
	if col, ok := c.colors[key]; ok {
		return col
	}
	return render.Color(0)
}

// FrameCount is the number of datasets: the base series plus every frame.
func (c *Chart) FrameCount() int { return 1 + len(c.Frames) }

// SeriesAt returns the dataset of frame i.
func (c *Chart) SeriesAt(i int) ([]Series, error) {
	if i < 0 || i >= c.FrameCount() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "frame %d out of range (chart has %d)", i, c.FrameCount())
	}
	if i == 0 {
		return c.Series, nil
	}
	return c.Frames[i-1].Series, nil
}

// OrientationValue is the parsed orientation.
func (c *Chart) OrientationValue() geom.Orientation { return c.orientation }

// Ease is the parsed animation easing.
func (c *Chart) Ease() transition.Ease { return c.ease }

// Duration is the transition length.
func (c *Chart) Duration() time.Duration { return time.Duration(c.Animation.Duration) }

func (c *Chart) innerWidth() float64  { return c.Width - c.Margin.Left - c.Margin.Right }
func (c *Chart) innerHeight() float64 { return c.Height - c.Margin.Top - c.Margin.Bottom }

func (c *Chart) categoryAxis() *Axis {
	if c.orientation == geom.Horizontal {
		return &c.Y
	}
	return &c.X
}

func (c *Chart) valueAxis() *Axis {
	if c.orientation == geom.Horizontal {
		return &c.X
	}
	return &c.Y
}
