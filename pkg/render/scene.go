// Package render holds the renderer-neutral description of a chart frame.
//
// # Overview
//
// A [Scene] is everything a renderer needs to draw one frame: the canvas
// size and margins, the positioned marks with their colours and opacities,
// and the axes. Geometry inside a scene is in plot coordinates, relative to
// the top-left corner of the area inside the margins.
//
// Scenes are produced by the chart package, either statically or sampled
// from a running animation, and serialized by the [sink] subpackage.
//
// [sink]: github.com/matzehuels/chartmotion/pkg/render/sink
package render

import (
	"github.com/matzehuels/chartmotion/pkg/geom"
)

// Margin is the space around the plot area, in pixels.
type Margin struct {
	Top    float64 `json:"top" toml:"top"`
	Right  float64 `json:"right" toml:"right"`
	Bottom float64 `json:"bottom" toml:"bottom"`
	Left   float64 `json:"left" toml:"left"`
}

// DefaultMargin leaves room for a bottom and a left axis.
var DefaultMargin = Margin{Top: 20, Right: 20, Bottom: 30, Left: 40}

// Scene is one drawable frame.
type Scene struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin Margin  `json:"margin"`
	Title  string  `json:"title,omitempty"`
	// Curve connects the points of line marks.
	Curve geom.Curve `json:"-"`
	// Frame is the dataset index the scene shows or animates toward.
	Frame int    `json:"frame"`
	Marks []Mark `json:"marks"`
	Axes  []Axis `json:"axes,omitempty"`
}

// InnerWidth is the plot width inside the margins.
func (s Scene) InnerWidth() float64 { return max(0, s.Width-s.Margin.Left-s.Margin.Right) }

// InnerHeight is the plot height inside the margins.
func (s Scene) InnerHeight() float64 { return max(0, s.Height-s.Margin.Top-s.Margin.Bottom) }

// Visible returns the marks with a positive opacity.
func (s Scene) Visible() []Mark {
	out := make([]Mark, 0, len(s.Marks))
	for _, m := range s.Marks {
		if m.Opacity > 0 {
			out = append(out, m)
		}
	}
	return out
}

// Mark is one positioned chart element.
type Mark struct {
	Key     string     `json:"key"`
	Series  string     `json:"series,omitempty"`
	Shape   geom.Shape `json:"shape"`
	Color   string     `json:"color,omitempty"`
	Opacity float64    `json:"opacity"`
}

// Axis is an axis line with its ticks. Tick geometry is relative to Origin.
type Axis struct {
	Placement geom.Placement `json:"placement"`
	Origin    geom.Point     `json:"origin"`
	// Path is the axis domain line.
	Path  string     `json:"path"`
	Ticks []AxisTick `json:"ticks"`
}

// AxisTick is one tick mark and its label.
type AxisTick struct {
	Key     string    `json:"key"`
	Label   string    `json:"label"`
	Tick    geom.Tick `json:"tick"`
	Opacity float64   `json:"opacity"`
}

// Palette is the default series colour cycle.
var Palette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

// Color returns the palette colour for series index i.
func Color(i int) string {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}
