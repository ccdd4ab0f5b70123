package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartmotion/pkg/errors"
	"github.com/matzehuels/chartmotion/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string   // output file (single format) or base path
	formats    []string // svg, json
	frame      int      // dataset to lay out, 0 is the chart's own series
	width      float64  // canvas width override
	height     float64  // canvas height override
	background string   // SVG background color
	title      bool     // draw the chart title
	font       string   // label font family
	noCache    bool     // bypass the artifact cache
	refresh    bool     // recompute and overwrite cached entries
}

// renderCommand creates the render command for writing chart scenes.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [chart]",
		Short: "Render a chart frame to SVG or JSON",
		Long: `Render lays out one frame of a chart document (TOML or JSON) and writes
the resulting scene in each requested format.

Output files are named after the input unless --output is given:
  chart.toml → chart.svg, chart.json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeChartFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadedConfig()
			if err != nil {
				return err
			}
			opts.formats = pipeline.ParseFormats(formatsStr)
			if len(opts.formats) == 0 {
				opts.formats = cfg.Render.Formats
			}
			if opts.background == "" {
				opts.background = cfg.Render.Background
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json (comma-separated)")
	cmd.Flags().IntVar(&opts.frame, "frame", 0, "frame to render (0 is the chart's own series)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "canvas width (default from chart)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "canvas height (default from chart)")
	cmd.Flags().StringVar(&opts.background, "background", "", "SVG background color")
	cmd.Flags().BoolVar(&opts.title, "title", false, "draw the chart title")
	cmd.Flags().StringVar(&opts.font, "font", "", "label font family")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute cached results")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	for _, f := range opts.formats {
		if f == pipeline.FormatFrames {
			return errors.New(errors.ErrCodeInvalidFormat, "use the animate command for frames output")
		}
	}

	doc, docFormat, err := readChartFile(input)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	c.Logger.Infof("Rendering %s (frame %d)", input, opts.frame)
	res, err := runner.Execute(ctx, pipeline.Options{
		Chart:       doc,
		ChartFormat: docFormat,
		Frame:       opts.frame,
		Width:       opts.width,
		Height:      opts.height,
		Formats:     opts.formats,
		Background:  opts.background,
		ShowTitle:   opts.title,
		Font:        opts.font,
		Refresh:     opts.refresh,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d marks from %d series", res.Stats.Marks, res.Stats.Series))

	paths, err := writeArtifacts(res.Artifacts, opts.formats, opts.output, input)
	if err != nil {
		return err
	}
	out := c.printer()
	out.success("Rendered %s", StyleHighlight.Render(filepath.Base(input)))
	out.stats(res.Stats.Series, res.Stats.Marks, res.CacheInfo.SceneHit)
	for _, path := range paths {
		out.file(path)
	}
	if n := res.Chart.FrameCount(); n > 1 {
		out.nextStep(fmt.Sprintf("Animate all %d frames", n), appName+" animate "+input)
	}
	return nil
}

// writeArtifacts writes each format's artifact and returns the paths in
// format order. A single format goes to output itself when one is given.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) ([]string, error) {
	base := basePath(output, input)
	var paths []string
	for _, format := range formats {
		path := artifactPath(base, format)
		if len(formats) == 1 && output != "" {
			path = output
		}
		if err := writeFile(path, artifacts[format]); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// artifactPath names the file a format is written to.
func artifactPath(base, format string) string {
	if format == pipeline.FormatFrames {
		return base + ".frames.json"
	}
	return base + "." + format
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .json), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	output = strings.TrimSuffix(output, ".frames.json")
	ext := filepath.Ext(output)
	if pipeline.ValidateFormat(strings.TrimPrefix(ext, ".")) == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeFile writes data to path, or to stdout when path is "-".
func writeFile(path string, data []byte) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
