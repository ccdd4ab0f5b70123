package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleHighlight marks chart names and series keys.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	// StyleDim is for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)
	// StyleValue is for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	styleOK      = lipgloss.NewStyle().Foreground(colorGreen)
	styleFailed  = lipgloss.NewStyle().Foreground(colorRed)
	styleWarn    = lipgloss.NewStyle().Foreground(colorYellow)
	styleNote    = lipgloss.NewStyle().Foreground(colorGray)
	styleSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

const (
	markOK     = "✓"
	markFailed = "✗"
	markWarn   = "!"
	markNote   = "›"
	markArrow  = "→"
)

// =============================================================================
// Printer
// =============================================================================

// printer writes styled status lines for humans. Machine-readable output
// (tables, JSON) goes to the same writer unstyled.
type printer struct {
	w io.Writer
}

// printer returns a printer bound to the command output.
func (c *CLI) printer() printer {
	return printer{w: c.Out}
}

func (p printer) line(prefix, format string, args ...any) {
	fmt.Fprintln(p.w, prefix+" "+fmt.Sprintf(format, args...))
}

func (p printer) success(format string, args ...any) {
	p.line(styleOK.Render(markOK), format, args...)
}

func (p printer) failure(format string, args ...any) {
	p.line(styleFailed.Render(markFailed), format, args...)
}

func (p printer) warning(format string, args ...any) {
	fmt.Fprintln(p.w, styleWarn.Render(markWarn)+" "+styleWarn.Render(fmt.Sprintf(format, args...)))
}

func (p printer) info(format string, args ...any) {
	p.line(styleNote.Render(markNote), format, args...)
}

// detail prints an indented secondary line.
func (p printer) detail(format string, args ...any) {
	fmt.Fprintln(p.w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// file prints a written output path.
func (p printer) file(path string) {
	fmt.Fprintln(p.w, "  "+StyleDim.Render(markArrow)+" "+StyleValue.Render(path))
}

func (p printer) keyValue(key, value string) {
	fmt.Fprintln(p.w, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// stats prints scene counts and whether the result came from the cache.
func (p printer) stats(series, marks int, cached bool) {
	var parts []string
	if series > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d series", series)))
	}
	if marks > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d marks", marks)))
	}
	if cached {
		parts = append(parts, styleOK.Render("cached"))
	} else {
		parts = append(parts, styleNote.Render("fresh"))
	}
	fmt.Fprintln(p.w, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// nextStep suggests a follow-up command.
func (p printer) nextStep(description, cmd string) {
	fmt.Fprintln(p.w, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}
