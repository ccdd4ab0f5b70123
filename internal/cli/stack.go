package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/chartmotion/pkg/chart"
	"github.com/matzehuels/chartmotion/pkg/scale"
	"github.com/matzehuels/chartmotion/pkg/stack"
)

type stackOpts struct {
	frame  int
	order  string
	offset string
}

// stackCommand creates the stack command, which prints the stacked layout
// of a frame.
func (c *CLI) stackCommand() *cobra.Command {
	var opts stackOpts

	cmd := &cobra.Command{
		Use:   "stack [chart]",
		Short: "Print the stacked segments of a chart frame",
		Long: `Stack computes the stacked layout of a frame and prints each series' segment
per category as [low, high]. --order and --offset override the chart's stack
settings.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeChartFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStack(args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.frame, "frame", 0, "frame to stack")
	cmd.Flags().StringVar(&opts.order, "order", "", "stack order: as-is, ascending, descending, inside-out, reverse")
	cmd.Flags().StringVar(&opts.offset, "offset", "", "stack offset: auto, none, expand, diverging, silhouette, wiggle")

	return cmd
}

func (c *CLI) runStack(input string, opts stackOpts) error {
	doc, docFormat, err := readChartFile(input)
	if err != nil {
		return err
	}
	ch, err := chart.Parse(doc, docFormat)
	if err != nil {
		return err
	}
	if opts.order != "" {
		if ch.Stack.Order, err = stack.ParseOrder(opts.order); err != nil {
			return err
		}
	}
	if opts.offset != "" {
		if ch.Stack.Offset, err = stack.ParseOffset(opts.offset); err != nil {
			return err
		}
	}

	res, err := ch.StackFrame(opts.frame)
	if err != nil {
		return err
	}
	c.Logger.Debugf("Stacked %d series over %d categories", len(res.Layers), len(res.Categories))

	fmt.Fprintln(c.Out, stackTable(res))
	fmt.Fprintln(c.Out, StyleDim.Render(fmt.Sprintf("  order %s · offset %s", res.Order, res.Offset)))
	return nil
}

// stackTable renders one row per layer, baseline first, and one column per
// category.
func stackTable[D any](res *stack.Result[D]) string {
	headers := make([]string, 0, len(res.Categories)+1)
	headers = append(headers, "Series")
	for _, cat := range res.Categories {
		headers = append(headers, fmt.Sprint(cat))
	}

	rows := make([][]string, len(res.Layers))
	for i, l := range res.Layers {
		row := make([]string, 0, len(l.Segments)+1)
		row = append(row, l.Key)
		for _, seg := range l.Segments {
			row = append(row, formatSegment(seg.Low, seg.High))
		}
		rows[i] = row
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return StyleHighlight
			}
			return StyleValue
		}).
		Render()
}

func formatSegment(low, high float64) string {
	if !scale.Finite(low) || !scale.Finite(high) {
		return "—"
	}
	return "[" + formatNumber(low) + ", " + formatNumber(high) + "]"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
