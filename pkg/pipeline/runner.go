package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartmotion/pkg/cache"
	"github.com/matzehuels/chartmotion/pkg/chart"
	"github.com/matzehuels/chartmotion/pkg/render"
	"github.com/matzehuels/chartmotion/pkg/render/sink"
)

// animationEpoch is the wall clock offline animations are played against.
// Any fixed instant works; the frames only record offsets from it.
var animationEpoch = time.Unix(0, 0).UTC()

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → scene → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)
	logger := opts.Logger

	result := &Result{
		ChartHash: cache.Hash(opts.Chart),
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	c, err := Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Chart = c
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Series = len(c.Series)

	logger.Info("loaded chart",
		"mark", c.Mark,
		"series", len(c.Series),
		"frames", c.FrameCount(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Scene
	sceneStart := time.Now()
	scene, sceneHash, sceneHit, err := r.SceneWithCacheInfo(ctx, c, result.ChartHash, opts)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	result.Scene = scene
	result.SceneHash = sceneHash
	result.Stats.SceneTime = time.Since(sceneStart)
	result.Stats.Marks = len(scene.Marks)
	result.CacheInfo.SceneHit = sceneHit

	logger.Info("built scene",
		"frame", opts.Frame,
		"marks", len(scene.Marks),
		"duration", result.Stats.SceneTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, c, result.ChartHash, scene, sceneHash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// SceneWithCacheInfo builds the scene of opts.Frame with caching. It
// returns the scene, its content hash and whether it came from cache.
func (r *Runner) SceneWithCacheInfo(ctx context.Context, c *chart.Chart, chartHash string, opts Options) (render.Scene, string, bool, error) {
	cacheKey := r.Keyer.SceneKey(chartHash, opts.SceneKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if s, err := decodeScene(data); err == nil {
				return s, cache.Hash(data), true, nil
			}
			// undecodable entries are rebuilt
		}
	}

	s, err := BuildScene(ctx, c, opts.Frame)
	if err != nil {
		return render.Scene{}, "", false, err
	}
	data, err := encodeScene(s)
	if err != nil {
		return render.Scene{}, "", false, err
	}
	_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLScene)
	return s, cache.Hash(data), false, nil
}

// Scene is a convenience wrapper that calls SceneWithCacheInfo and discards
// the hash and cache hit info.
func (r *Runner) Scene(ctx context.Context, c *chart.Chart, chartHash string, opts Options) (render.Scene, error) {
	s, _, _, err := r.SceneWithCacheInfo(ctx, c, chartHash, opts)
	return s, err
}

// RenderWithCacheInfo generates artifacts with caching and reports whether
// every one of them came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, c *chart.Chart, chartHash string, s render.Scene, sceneHash string, opts Options) (map[string][]byte, bool, error) {
	keys := make(map[string]string, len(opts.Formats))
	for _, format := range opts.Formats {
		keys[format] = r.artifactKey(chartHash, sceneHash, format, opts)
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for format, key := range keys {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				artifacts[format] = data
			}
		}
		if len(artifacts) == len(keys) {
			return artifacts, true, nil
		}
	}

	var missing []string
	for _, format := range opts.Formats {
		if _, ok := artifacts[format]; !ok {
			missing = append(missing, format)
		}
	}
	sub := opts
	sub.Formats = missing

	rendered, err := RenderScene(ctx, s, sub)
	if err != nil {
		return nil, false, err
	}
	if sub.Animated() {
		frames, err := r.Animate(ctx, c, opts.FPS)
		if err != nil {
			return nil, false, err
		}
		fps := opts.FPS
		if fps == 0 {
			fps = c.Animation.FPS
		}
		data, err := RenderFrames(ctx, frames, fps)
		if err != nil {
			return nil, false, err
		}
		rendered[FormatFrames] = data
	}

	for format, data := range rendered {
		_ = r.Cache.Set(ctx, keys[format], data, cache.TTLArtifact)
		artifacts[format] = data
	}
	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Render(ctx context.Context, c *chart.Chart, chartHash string, s render.Scene, sceneHash string, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, c, chartHash, s, sceneHash, opts)
	return artifacts, err
}

// Animate plays every frame of c in order and samples the animation at fps.
// A zero fps uses the chart's own rate.
func (r *Runner) Animate(ctx context.Context, c *chart.Chart, fps int) ([]sink.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a, err := chart.NewAnimator(c, r.Logger)
	if err != nil {
		return nil, err
	}
	frames, err := a.Timeline(animationEpoch, fps)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("sampled animation", "frames", c.FrameCount(), "stills", len(frames))
	return frames, nil
}

// artifactKey keys static formats by the scene they serialize and the frames
// format by the chart and canvas size, since it covers every frame.
func (r *Runner) artifactKey(chartHash, sceneHash, format string, opts Options) string {
	if format == FormatFrames {
		animation := r.Keyer.SceneKey(chartHash, cache.SceneKeyOpts{Frame: -1, Width: opts.Width, Height: opts.Height})
		return r.Keyer.ArtifactKey(animation, opts.ArtifactKeyOpts(format))
	}
	return r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
