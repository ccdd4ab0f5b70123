// Package pipeline provides the load → scene → render pipeline shared by the
// CLI and the HTTP API.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: decode and validate a chart document (TOML or JSON)
//  2. Scene: resolve scales and position marks and axes for one frame
//  3. Render: serialize the scene (SVG, JSON) or the whole animation
//     (frames)
//
// Each stage output is cached under a content hash of its input, so
// rendering the same document twice does no work.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Chart:   doc,
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartmotion/pkg/cache"
	"github.com/matzehuels/chartmotion/pkg/chart"
	"github.com/matzehuels/chartmotion/pkg/errors"
	"github.com/matzehuels/chartmotion/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the canvas width used when neither the options nor
	// the document set one.
	DefaultWidth = float64(chart.DefaultWidth)

	// DefaultHeight is the canvas height used when neither the options nor
	// the document set one.
	DefaultHeight = float64(chart.DefaultHeight)

	// DefaultFPS is the sampling rate of rendered animations.
	DefaultFPS = chart.DefaultFPS

	// MaxChartSize bounds accepted chart documents.
	MaxChartSize = 4 << 20
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
	// FormatFrames is the sampled animation of every frame as JSON.
	FormatFrames = "frames"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:    true,
	FormatJSON:   true,
	FormatFrames: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline. It supports JSON
// serialization for API requests.
type Options struct {
	// Load options
	Chart       []byte `json:"chart"`
	ChartFormat string `json:"chart_format,omitempty"`

	// Scene options. Width and Height override the document.
	Frame  int     `json:"frame,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Background string   `json:"background,omitempty"`
	ShowTitle  bool     `json:"show_title,omitempty"`
	Font       string   `json:"font,omitempty"`
	FPS        int      `json:"fps,omitempty"`
	Refresh    bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Chart *chart.Chart

	// ChartHash is the content hash of the chart document.
	ChartHash string

	// Scene is the static scene of the requested frame.
	Scene     render.Scene
	SceneHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Series     int
	Marks      int
	LoadTime   time.Duration
	SceneTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SceneHit  bool
	RenderHit bool // all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, json, frames)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(strings.ToLower(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Chart) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "chart is required")
	}
	if len(o.Chart) > MaxChartSize {
		return errors.New(errors.ErrCodeInvalidInput, "chart too large (max %d bytes)", MaxChartSize)
	}
	if o.Frame < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "frame must be non-negative")
	}
	if o.Width != 0 || o.Height != 0 {
		w, h := o.Width, o.Height
		if w == 0 {
			w = DefaultWidth
		}
		if h == 0 {
			h = DefaultHeight
		}
		if err := errors.ValidateDimensions(w, h); err != nil {
			return err
		}
	}
	if err := errors.ValidateColor(o.Background); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.FPS < 0 || o.FPS > chart.MaxFPS {
		return errors.New(errors.ErrCodeInvalidInput, "fps must be between 1 and %d", chart.MaxFPS)
	}
	o.validated = true
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
}

// Animated reports whether the frames format is requested.
func (o *Options) Animated() bool {
	for _, f := range o.Formats {
		if f == FormatFrames {
			return true
		}
	}
	return false
}

// SceneKeyOpts returns cache key options for scene computation.
func (o *Options) SceneKeyOpts() cache.SceneKeyOpts {
	return cache.SceneKeyOpts{Frame: o.Frame, Width: o.Width, Height: o.Height}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format, Background: o.Background, Title: o.ShowTitle, Font: o.Font}
	if format == FormatFrames {
		opts.FPS = o.FPS
	}
	return opts
}
