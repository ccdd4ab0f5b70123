// Package cli implements the chartmotion command-line interface.
//
// The commands position charts, animate their frames, and serve them over
// HTTP. The CLI is built on cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - render: write a frame of a chart as SVG or JSON scene files
//   - animate: sample the transitions between frames into a frames JSON file
//   - stack: print the stacked segments of a frame as a table
//   - nearest: report the datum closest to a canvas point
//   - preview: play the chart's transitions in the terminal
//   - serve: run the HTTP API
//   - cache: manage the artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
//
// # Configuration
//
// Cache backend and command defaults are read from
// $XDG_CONFIG_HOME/chartmotion/config.toml, or the file named by --config.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Rendered 3 marks (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
