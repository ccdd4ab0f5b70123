package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/chartmotion/pkg/chart"
	"github.com/matzehuels/chartmotion/pkg/errors"
	"github.com/matzehuels/chartmotion/pkg/pipeline"
	"github.com/matzehuels/chartmotion/pkg/render/sink"
)

type animateOpts struct {
	output  string
	fps     int
	stills  string // directory for one SVG per sampled frame
	noCache bool
	refresh bool
}

// animateCommand creates the animate command, which samples every
// transition of a chart into a frames JSON file.
func (c *CLI) animateCommand() *cobra.Command {
	var opts animateOpts

	cmd := &cobra.Command{
		Use:   "animate [chart]",
		Short: "Sample a chart's transitions into animation frames",
		Long: `Animate plays the chart's frames in order, each transition running for the
chart's animation duration, and samples the result at a fixed frame rate.

The frames are written as JSON (chart.frames.json by default). With --stills,
each sampled frame is also written as an SVG file into the given directory.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeChartFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadedConfig()
			if err != nil {
				return err
			}
			if opts.fps == 0 {
				opts.fps = cfg.Render.FPS
			}
			return c.runAnimate(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "frames JSON output file")
	cmd.Flags().IntVar(&opts.fps, "fps", 0, fmt.Sprintf("frames per second (default from chart, max %d)", chart.MaxFPS))
	cmd.Flags().StringVar(&opts.stills, "stills", "", "also write each frame as SVG into this directory")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute cached results")

	return cmd
}

func (c *CLI) runAnimate(ctx context.Context, input string, opts animateOpts) error {
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
	c.Logger.Infof("Animating %s", input)
	res, err := runner.Execute(ctx, pipeline.Options{
		Chart:       doc,
		ChartFormat: docFormat,
		Formats:     []string{pipeline.FormatFrames},
		FPS:         opts.fps,
		Refresh:     opts.refresh,
	})
	if err != nil {
		return err
	}

	data := res.Artifacts[pipeline.FormatFrames]
	var summary struct {
		FPS   int `json:"fps"`
		Count int `json:"count"`
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "decode frames")
	}
	prog.done(fmt.Sprintf("Sampled %d frames at %d fps", summary.Count, summary.FPS))

	path := opts.output
	if path == "" {
		path = artifactPath(basePath("", input), pipeline.FormatFrames)
	}
	if err := writeFile(path, data); err != nil {
		return err
	}

	out := c.printer()
	out.success("Animated %s", StyleHighlight.Render(filepath.Base(input)))
	out.stats(res.Stats.Series, res.Stats.Marks, res.CacheInfo.RenderHit)
	out.file(path)

	if opts.stills == "" {
		return nil
	}
	frames, err := runner.Animate(ctx, res.Chart, summary.FPS)
	if err != nil {
		return err
	}
	sp := newSpinnerWithContext(ctx, fmt.Sprintf("Writing %d stills...", len(frames)))
	sp.Start()
	if err := writeStills(ctx, opts.stills, frames); err != nil {
		sp.StopWithError("Writing stills failed")
		return err
	}
	sp.Stop()
	out.file(fmt.Sprintf("%s (%d files)", opts.stills, len(frames)))
	return nil
}

// writeStills renders each frame to dir/frame_NNNN.svg.
func writeStills(ctx context.Context, dir string, frames []sink.Frame) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(dir, fmt.Sprintf("frame_%04d.svg", i))
			return os.WriteFile(path, sink.RenderSVG(f.Scene), 0o644)
		})
	}
	return g.Wait()
}
