package cli

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/chartmotion/pkg/chart"
	"github.com/matzehuels/chartmotion/pkg/geom"
	"github.com/matzehuels/chartmotion/pkg/render"
)

// Preview styles
var (
	previewTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	previewLabelStyle = lipgloss.NewStyle().Foreground(colorWhite)
	previewDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	previewTick     = time.Second / 30
	previewLabelW   = 14
	previewMinBarW  = 10
	previewDefaultW = 80
	barRune         = "█"
)

// =============================================================================
// PreviewModel - Terminal playback of chart transitions
// =============================================================================

// tickMsg carries the wall clock to the model.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(previewTick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// PreviewModel is the bubbletea model that plays a chart's frames. Each mark
// is drawn as a horizontal bar sized by its extent along the value axis.
type PreviewModel struct {
	Chart    *chart.Chart
	Animator *chart.Animator
	Now      time.Time
	Autoplay bool
	Width    int
	Err      error
}

// NewPreviewModel starts the first frame at start.
func NewPreviewModel(c *chart.Chart, start time.Time) (PreviewModel, error) {
	a, err := chart.NewAnimator(c, nil)
	if err != nil {
		return PreviewModel{}, err
	}
	if err := a.Show(0, start); err != nil {
		return PreviewModel{}, err
	}
	return PreviewModel{Chart: c, Animator: a, Now: start, Autoplay: true, Width: previewDefaultW}, nil
}

func (m PreviewModel) Init() tea.Cmd {
	return tick()
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", "n":
			m.Autoplay = false
			m.show(m.Animator.Frame() + 1)
		case "left", "h", "p":
			m.Autoplay = false
			m.show(m.Animator.Frame() - 1)
		case " ":
			m.Autoplay = !m.Autoplay
		case "r":
			m.Animator.Reset()
			m.show(0)
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width
	case tickMsg:
		m.Now = time.Time(msg)
		if m.Autoplay && m.Animator.Settled(m.Now) {
			next := m.Animator.Frame() + 1
			if next >= m.Chart.FrameCount() {
				next = 0
			}
			if next != m.Animator.Frame() {
				m.show(next)
			}
		}
		return m, tick()
	}
	return m, nil
}

// show moves to frame, clamped to the chart's frames.
func (m *PreviewModel) show(frame int) {
	frame = max(0, min(frame, m.Chart.FrameCount()-1))
	if frame == m.Animator.Frame() {
		return
	}
	m.Err = m.Animator.Show(frame, m.Now)
}

func (m PreviewModel) View() string {
	var b strings.Builder

	title := m.Chart.Title
	if title == "" {
		title = appName
	}
	b.WriteString(previewTitleStyle.Render(title))
	b.WriteString("  ")
	b.WriteString(previewDimStyle.Render(fmt.Sprintf("frame %d/%d", m.Animator.Frame()+1, m.Chart.FrameCount())))
	if !m.Animator.Settled(m.Now) {
		b.WriteString(previewDimStyle.Render(" · moving"))
	}
	b.WriteString("\n\n")

	if m.Err != nil {
		b.WriteString(styleFailed.Render(markFailed) + " " + m.Err.Error() + "\n\n")
	}

	b.WriteString(renderBars(m.Animator.Sample(m.Now), m.Chart.OrientationValue(), m.Width))
	b.WriteString("\n")

	play := "space pause"
	if !m.Autoplay {
		play = "space play"
	}
	b.WriteString(previewDimStyle.Render("←/→ frame · " + play + " · r restart · q quit"))
	return b.String()
}

// renderBars draws one line per mark. width is the terminal width.
func renderBars(s render.Scene, o geom.Orientation, width int) string {
	barW := max(previewMinBarW, width-previewLabelW-8)
	plotW, plotH := s.InnerWidth(), s.InnerHeight()

	var b strings.Builder
	for _, mk := range s.Visible() {
		frac, ok := markExtent(mk.Shape, o, plotW, plotH)
		label := previewLabelStyle.Width(previewLabelW).MaxWidth(previewLabelW).Render(mk.Key)
		if !ok {
			b.WriteString(label + " " + previewDimStyle.Render(mk.Shape.Kind.String()) + "\n")
			continue
		}
		n := int(math.Round(frac * float64(barW)))
		style := lipgloss.NewStyle()
		if mk.Color != "" {
			style = style.Foreground(lipgloss.Color(mk.Color))
		}
		if mk.Opacity < 0.5 {
			style = style.Faint(true)
		}
		line := label + " " + style.Render(strings.Repeat(barRune, n))
		if mk.Opacity < 1 {
			line += previewDimStyle.Render(fmt.Sprintf(" %3.0f%%", mk.Opacity*100))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// markExtent is the share of the plot a shape covers along the value axis,
// clamped to [0, 1]. Lines have no single extent.
func markExtent(sh geom.Shape, o geom.Orientation, plotW, plotH float64) (float64, bool) {
	var v, total float64
	switch sh.Kind {
	case geom.ShapeRect:
		v, total = sh.Rect.Height, plotH
		if o == geom.Horizontal {
			v, total = sh.Rect.Width, plotW
		}
	case geom.ShapeGlyph:
		v, total = plotH-sh.Glyph.Y, plotH
		if o == geom.Horizontal {
			v, total = sh.Glyph.X, plotW
		}
	default:
		return 0, false
	}
	if total <= 0 {
		return 0, false
	}
	return max(0, min(1, v/total)), true
}
