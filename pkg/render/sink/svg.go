package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/chartmotion/pkg/geom"
	"github.com/matzehuels/chartmotion/pkg/render"
)

const (
	fontFamily  = "system-ui, -apple-system, sans-serif"
	axisColor   = "#333"
	labelGap    = 3.0
	strokeWidth = 2.0
)

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background string
	title      bool
	font       string
}

// WithBackground fills the canvas with color.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithTitle draws the scene title above the plot.
func WithTitle() SVGOption { return func(r *svgRenderer) { r.title = true } }

// WithFont overrides the font family of labels.
func WithFont(family string) SVGOption { return func(r *svgRenderer) { r.font = family } }

// RenderSVG draws s as an SVG document.
func RenderSVG(s render.Scene, opts ...SVGOption) []byte {
	r := svgRenderer{font: fontFamily}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%s" height="%s" font-family="%s">`+"\n",
		num(s.Width), num(s.Height), num(s.Width), num(s.Height), escape(r.font))
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", escape(r.background))
	}
	if r.title && s.Title != "" {
		fmt.Fprintf(&buf, `  <text class="title" x="%s" y="%s" text-anchor="middle" font-size="14" font-weight="bold">%s</text>`+"\n",
			num(s.Width/2), num(math.Max(12, s.Margin.Top*0.7)), escape(s.Title))
	}

	fmt.Fprintf(&buf, `  <g class="plot" transform="translate(%s,%s)">`+"\n", num(s.Margin.Left), num(s.Margin.Top))
	for _, m := range s.Marks {
		renderMark(&buf, m, s.Curve)
	}
	for _, a := range s.Axes {
		renderAxis(&buf, a)
	}
	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}

func renderMark(buf *bytes.Buffer, m render.Mark, c geom.Curve) {
	if m.Opacity <= 0 {
		return
	}
	attrs := fmt.Sprintf(` data-key="%s"%s`, escape(m.Key), opacityAttr(m.Opacity))
	switch m.Shape.Kind {
	case geom.ShapeRect:
		b := m.Shape.Rect
		fmt.Fprintf(buf, `    <rect class="mark" x="%s" y="%s" width="%s" height="%s" fill="%s"%s/>`+"\n",
			num(b.X), num(b.Y), num(b.Width), num(b.Height), escape(m.Color), attrs)
	case geom.ShapeGlyph:
		g := m.Shape.Glyph
		fmt.Fprintf(buf, `    <circle class="mark" cx="%s" cy="%s" r="%s" fill="%s"%s/>`+"\n",
			num(g.X), num(g.Y), num(g.Size/2), escape(m.Color), attrs)
	case geom.ShapeLine:
		d := m.Shape.Line.Path(c)
		if d == "" {
			return
		}
		fmt.Fprintf(buf, `    <path class="mark" d="%s" fill="none" stroke="%s" stroke-width="%s"%s/>`+"\n",
			d, escape(m.Color), num(strokeWidth), attrs)
	}
}

func renderAxis(buf *bytes.Buffer, a render.Axis) {
	fmt.Fprintf(buf, `    <g class="axis axis-%s" transform="translate(%s,%s)" font-size="10">`+"\n",
		a.Placement, num(a.Origin.X), num(a.Origin.Y))
	if a.Path != "" {
		fmt.Fprintf(buf, `      <path class="domain" d="%s" fill="none" stroke="%s"/>`+"\n", a.Path, axisColor)
	}
	for _, t := range a.Ticks {
		if t.Opacity <= 0 {
			continue
		}
		x, y, anchor, dy := labelAnchor(a.Placement, t.Tick)
		fmt.Fprintf(buf, `      <g class="tick"%s>`+"\n", opacityAttr(t.Opacity))
		fmt.Fprintf(buf, `        <line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s"/>`+"\n",
			num(t.Tick.From.X), num(t.Tick.From.Y), num(t.Tick.To.X), num(t.Tick.To.Y), axisColor)
		fmt.Fprintf(buf, `        <text x="%s" y="%s" dy="%s" text-anchor="%s" fill="%s">%s</text>`+"\n",
			num(x), num(y), dy, anchor, axisColor, escape(t.Label))
		buf.WriteString("      </g>\n")
	}
	buf.WriteString("    </g>\n")
}

// labelAnchor places a tick label just beyond the tick's tip.
func labelAnchor(p geom.Placement, t geom.Tick) (x, y float64, anchor, dy string) {
	k := p.Direction()
	switch p {
	case geom.Bottom:
		return t.To.X, t.To.Y + k*labelGap, "middle", "0.71em"
	case geom.Top:
		return t.To.X, t.To.Y + k*labelGap, "middle", "0em"
	case geom.Left:
		return t.To.X + k*labelGap, t.To.Y, "end", "0.32em"
	default:
		return t.To.X + k*labelGap, t.To.Y, "start", "0.32em"
	}
}

func opacityAttr(o float64) string {
	if o >= 1 {
		return ""
	}
	return ` opacity="` + strconv.FormatFloat(math.Round(o*1000)/1000, 'f', -1, 64) + `"`
}

// num formats a coordinate with at most three decimals.
func num(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
