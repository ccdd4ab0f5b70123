package chart

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartmotion/pkg/errors"
	"github.com/matzehuels/chartmotion/pkg/geom"
	"github.com/matzehuels/chartmotion/pkg/observability"
	"github.com/matzehuels/chartmotion/pkg/render"
	"github.com/matzehuels/chartmotion/pkg/render/sink"
	"github.com/matzehuels/chartmotion/pkg/scale"
	"github.com/matzehuels/chartmotion/pkg/transition"
)

// Animator moves a chart between its frames. Marks and the ticks of each
// visible axis run on their own transition engines.
//
// Animator is not safe for concurrent use.
type Animator struct {
	chart  *Chart
	logger *log.Logger

	marks *transition.Engine[element, geom.Shape]
	meta  map[string]element
	axes  []*axisTrack

	layout *Layout
}

type axisTrack struct {
	name   string
	engine *transition.Engine[geom.TickDatum, geom.Tick]
	labels map[string]string
	plan   axisPlan
}

// NewAnimator creates an animator for c. A nil logger discards output.
func NewAnimator(c *Chart, logger *log.Logger) (*Animator, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	marks, err := transition.New(transition.Config[element, geom.Shape]{
		Key:         elementKey,
		Geometry:    placeElement,
		Interpolate: geom.LerpShape,
		Duration:    c.Duration(),
		Ease:        c.ease,
		Logger:      logger.With("track", "marks"),
	})
	if err != nil {
		return nil, err
	}

	a := &Animator{chart: c, logger: logger, marks: marks, meta: make(map[string]element)}
	for _, name := range []string{"x", "y"} {
		spec, gen := c.tickGenerator(name)
		if spec.Hide {
			continue
		}
		engine, err := transition.New(transition.Config[geom.TickDatum, geom.Tick]{
			Key:         geom.TickKey,
			Geometry:    gen.Geometry,
			Interpolate: geom.LerpTick,
			Duration:    c.Duration(),
			Ease:        c.ease,
			Banded:      func(sc geom.Scales) bool { return scale.IsBanded(axisScale(name, sc)) },
			Logger:      logger.With("track", name+"-axis"),
		})
		if err != nil {
			return nil, err
		}
		a.axes = append(a.axes, &axisTrack{name: name, engine: engine, labels: make(map[string]string)})
	}
	return a, nil
}

// Show starts the transition to frame at now. Elements still moving are
// redirected from where they are.
func (a *Animator) Show(frame int, now time.Time) error {
	l, err := a.chart.Build(frame)
	if err != nil {
		return err
	}
	els := l.elements()
	for _, el := range els {
		a.meta[el.key] = el
	}
	d := a.marks.Update(els, l.Scales, now)

	plans := l.axes()
	for _, t := range a.axes {
		for _, p := range plans {
			if p.name != t.name {
				continue
			}
			for _, td := range p.ticks {
				t.labels[geom.TickKey(td)] = td.Label
			}
			t.engine.Update(p.ticks, l.Scales, now)
			t.plan = p
		}
	}

	a.layout = l
	a.logger.Debug("show frame", "frame", frame, "marks", len(els))
	observability.Motion().OnTransition(context.Background(), frame, d.Entered, d.Updated, d.Exited)
	return nil
}

// Sample returns the scene at now: every live mark and tick at its current
// position and opacity, exiting ones included.
func (a *Animator) Sample(now time.Time) render.Scene {
	if a.layout == nil {
		c := a.chart
		return render.Scene{Width: c.Width, Height: c.Height, Margin: *c.Margin, Title: c.Title, Curve: c.curve, Frame: -1}
	}
	s := a.layout.frame()

	frames := a.marks.Frames(now)
	live := make(map[string]bool, len(frames))
	for _, f := range frames {
		el := a.meta[f.Key]
		live[f.Key] = true
		s.Marks = append(s.Marks, render.Mark{
			Key:     f.Key,
			Series:  el.series,
			Shape:   f.Geometry,
			Color:   el.color,
			Opacity: f.Opacity,
		})
	}
	for k := range a.meta {
		if !live[k] {
			delete(a.meta, k)
		}
	}

	for _, t := range a.axes {
		ax := t.plan.axis()
		ticks := t.engine.Frames(now)
		keep := make(map[string]bool, len(ticks))
		for _, f := range ticks {
			keep[f.Key] = true
			ax.Ticks = append(ax.Ticks, render.AxisTick{
				Key:     f.Key,
				Label:   t.labels[f.Key],
				Tick:    f.Geometry,
				Opacity: f.Opacity,
			})
		}
		for k := range t.labels {
			if !keep[k] {
				delete(t.labels, k)
			}
		}
		s.Axes = append(s.Axes, ax)
	}
	return s
}

// Settled reports whether every transition has finished by now.
func (a *Animator) Settled(now time.Time) bool {
	if !a.marks.Settled(now) {
		return false
	}
	for _, t := range a.axes {
		if !t.engine.Settled(now) {
			return false
		}
	}
	return true
}

// Frame is the frame last shown, or -1.
func (a *Animator) Frame() int {
	if a.layout == nil {
		return -1
	}
	return a.layout.Frame
}

// Layout is the layout of the frame last shown, or nil.
func (a *Animator) Layout() *Layout { return a.layout }

// Nearest locates the datum nearest to pointer in the frame last shown.
func (a *Animator) Nearest(pointer geom.Point) (Hit, bool) {
	if a.layout == nil {
		return Hit{}, false
	}
	return a.layout.Nearest(pointer)
}

// Reset forgets all elements so the next Show enters from scratch.
func (a *Animator) Reset() {
	a.marks.Reset()
	for _, t := range a.axes {
		t.engine.Reset()
		clear(t.labels)
	}
	clear(a.meta)
	a.layout = nil
}

// Timeline plays every frame of the chart in order, sampling fps times per
// second from start until each transition settles before showing the next
// frame. fps <= 0 uses the chart's animation rate.
func (a *Animator) Timeline(start time.Time, fps int) ([]sink.Frame, error) {
	if fps <= 0 {
		fps = a.chart.Animation.FPS
	}
	if fps > MaxFPS {
		return nil, errors.New(errors.ErrCodeInvalidInput, "fps must be between 1 and %d", MaxFPS)
	}
	step := time.Second / time.Duration(fps)

	var out []sink.Frame
	now := start
	for i := 0; i < a.chart.FrameCount(); i++ {
		if err := a.Show(i, now); err != nil {
			return nil, err
		}
		shown := now
		for {
			out = append(out, sink.Frame{At: now.Sub(start), Scene: a.Sample(now)})
			if a.Settled(now) {
				observability.Motion().OnSettled(context.Background(), i, now.Sub(shown))
				break
			}
			now = now.Add(step)
		}
		now = now.Add(step)
	}
	a.logger.Debug("timeline", "frames", a.chart.FrameCount(), "stills", len(out), "fps", fps)
	return out, nil
}
