package cli

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/chartmotion/pkg/chart"
)

// previewCommand creates the preview command, which plays a chart's
// transitions in the terminal.
func (c *CLI) previewCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "preview [chart]",
		Short:             "Play a chart's transitions in the terminal",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeChartFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, docFormat, err := readChartFile(args[0])
			if err != nil {
				return err
			}
			ch, err := chart.Parse(doc, docFormat)
			if err != nil {
				return err
			}
			model, err := NewPreviewModel(ch, time.Now())
			if err != nil {
				return err
			}
			c.Logger.Debugf("Previewing %d frames", ch.FrameCount())
			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}
