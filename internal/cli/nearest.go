package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartmotion/pkg/chart"
	"github.com/matzehuels/chartmotion/pkg/geom"
)

type nearestOpts struct {
	x, y  float64
	frame int
	plot  bool // coordinates are already in plot space
	json  bool
}

// nearestCommand creates the nearest command, which reports the datum
// closest to a pointer position.
func (c *CLI) nearestCommand() *cobra.Command {
	var opts nearestOpts

	cmd := &cobra.Command{
		Use:   "nearest [chart]",
		Short: "Find the datum nearest to a canvas point",
		Long: `Nearest lays out a frame and reports the datum closest to (--x, --y).
Coordinates are canvas pixels, margins included, unless --plot is set.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeChartFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runNearest(args[0], opts)
		},
	}

	cmd.Flags().Float64Var(&opts.x, "x", 0, "pointer x")
	cmd.Flags().Float64Var(&opts.y, "y", 0, "pointer y")
	cmd.Flags().IntVar(&opts.frame, "frame", 0, "frame to search")
	cmd.Flags().BoolVar(&opts.plot, "plot", false, "treat x and y as plot coordinates")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the hit as JSON")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")

	return cmd
}

func (c *CLI) runNearest(input string, opts nearestOpts) error {
	doc, docFormat, err := readChartFile(input)
	if err != nil {
		return err
	}
	ch, err := chart.Parse(doc, docFormat)
	if err != nil {
		return err
	}
	pointer := geom.Point{X: opts.x, Y: opts.y}
	if !opts.plot {
		pointer = ch.PlotPoint(pointer)
	}
	hit, found, err := ch.Nearest(opts.frame, pointer)
	if err != nil {
		return err
	}

	if opts.json {
		out := struct {
			Found bool       `json:"found"`
			Hit   *chart.Hit `json:"hit,omitempty"`
		}{Found: found}
		if found {
			out.Hit = &hit
		}
		enc := json.NewEncoder(c.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	out := c.printer()
	if !found {
		out.warning("No datum near (%g, %g)", opts.x, opts.y)
		return nil
	}
	out.success("Nearest datum in series %s", StyleHighlight.Render(hit.Series))
	out.keyValue("Category", fmt.Sprint(hit.Datum.Category))
	out.keyValue("Value", formatNumber(hit.Datum.Value))
	out.keyValue("Key", hit.Datum.Key)
	out.keyValue("Distance", formatNumber(hit.Distance)+"px")
	out.keyValue("Snap", fmt.Sprintf("(%s, %s)", formatNumber(hit.Snap.X), formatNumber(hit.Snap.Y)))
	return nil
}
