package pipeline

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/chartmotion/pkg/errors"
	"github.com/matzehuels/chartmotion/pkg/observability"
	"github.com/matzehuels/chartmotion/pkg/render"
	"github.com/matzehuels/chartmotion/pkg/render/sink"
)

// RenderScene serializes s into every static format of opts. The frames
// format needs the whole chart and is produced by [Runner.Animate].
func RenderScene(ctx context.Context, s render.Scene, opts Options) (map[string][]byte, error) {
	formats := staticFormats(opts.Formats)
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, formats)
	start := time.Now()

	var (
		mu        sync.Mutex
		artifacts = make(map[string][]byte, len(formats))
	)
	g, _ := errgroup.WithContext(ctx)
	for _, format := range formats {
		g.Go(func() error {
			data, err := renderFormat(s, format, opts)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	hooks.OnRenderComplete(ctx, formats, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return artifacts, nil
}

func renderFormat(s render.Scene, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return sink.RenderSVG(s, svgOptions(opts)...), nil
	case FormatJSON:
		return sink.RenderJSON(s)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported scene format: %s", format)
	}
}

func svgOptions(opts Options) []sink.SVGOption {
	var out []sink.SVGOption
	if opts.Background != "" {
		out = append(out, sink.WithBackground(opts.Background))
	}
	if opts.ShowTitle {
		out = append(out, sink.WithTitle())
	}
	if opts.Font != "" {
		out = append(out, sink.WithFont(opts.Font))
	}
	return out
}

// RenderFrames encodes an animation as the frames artifact.
func RenderFrames(ctx context.Context, frames []sink.Frame, fps int) ([]byte, error) {
	formats := []string{FormatFrames}
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, formats)
	start := time.Now()

	data, err := sink.RenderFramesJSON(frames, fps)
	if err != nil {
		err = errors.Wrap(errors.ErrCodeInternal, err, "render frames")
	}
	hooks.OnRenderComplete(ctx, formats, time.Since(start), err)
	return data, err
}

func staticFormats(formats []string) []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		if f != FormatFrames {
			out = append(out, f)
		}
	}
	return out
}
