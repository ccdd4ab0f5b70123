package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/chartmotion/pkg/chart"
	"github.com/matzehuels/chartmotion/pkg/errors"
	"github.com/matzehuels/chartmotion/pkg/observability"
)

// Load decodes the chart document of opts and applies the size overrides.
func Load(ctx context.Context, opts Options) (*chart.Chart, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, opts.ChartFormat)
	start := time.Now()

	c, err := chart.Parse(opts.Chart, opts.ChartFormat)
	if err == nil {
		err = applyOverrides(c, opts)
	}

	series := 0
	if c != nil {
		series = len(c.Series)
	}
	hooks.OnLoadComplete(ctx, opts.ChartFormat, series, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// applyOverrides replaces the document's canvas size with the one in opts.
// The chart has been validated, so its margin is set.
func applyOverrides(c *chart.Chart, opts Options) error {
	if opts.Width > 0 {
		c.Width = opts.Width
	}
	if opts.Height > 0 {
		c.Height = opts.Height
	}
	m := c.Margin
	if c.Width-m.Left-m.Right <= 0 || c.Height-m.Top-m.Bottom <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "canvas %gx%g leaves no room inside the margins", c.Width, c.Height)
	}
	return nil
}
