package transition

import (
	"cmp"
	"fmt"
	"io"
	"math"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartmotion/pkg/errors"
	"github.com/matzehuels/chartmotion/pkg/geom"
)

// DefaultDuration is the animation length when Config.Duration is zero.
const DefaultDuration = 300 * time.Millisecond

// =============================================================================
// Phases and frames
// =============================================================================

// Phase is where a keyed element is in its lifecycle.
type Phase int

const (
	// Entering elements fade in, from where they would have been under the
	// previous scales when that is meaningful.
	Entering Phase = iota + 1
	// Present elements move to their latest geometry.
	Present
	// Exiting elements fade out toward where they would be under the
	// current scales.
	Exiting
	// Removed elements are gone; the engine deletes them on reaching it.
	Removed
)

func (p Phase) String() string {
	switch p {
	case Entering:
		return "entering"
	case Present:
		return "present"
	case Exiting:
		return "exiting"
	case Removed:
		return "removed"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Frame is one element's sampled state.
type Frame[G any] struct {
	Key      string  `json:"key"`
	Phase    Phase   `json:"phase"`
	Geometry G       `json:"geometry"`
	Opacity  float64 `json:"opacity"`
}

// State is an element's current transition, for inspection.
type State[G any] struct {
	Key         string
	Phase       Phase
	From        G
	To          G
	FromOpacity float64
	ToOpacity   float64
	Start       time.Time
	Duration    time.Duration
}

// =============================================================================
// Configuration
// =============================================================================

// Config describes how data turns into animated geometry.
type Config[D, G any] struct {
	// Key identifies a datum across updates. Required.
	Key func(D) string
	// Geometry positions a datum under a set of scales. Required.
	Geometry geom.Generator[D, G]
	// Interpolate blends two geometries. Required.
	Interpolate func(a, b G, t float64) G
	// Duration of every transition. Defaults to DefaultDuration.
	Duration time.Duration
	// Ease shapes progress. Defaults to CubicInOut.
	Ease Ease
	// Banded reports whether positions under sc are discrete slots, in
	// which case entering and exiting elements fade in place. Defaults to
	// geom.Scales.Banded.
	Banded func(sc geom.Scales) bool
	// Logger receives debug output. Defaults to discarding.
	Logger *log.Logger
}

func (c *Config[D, G]) validate() error {
	if c.Key == nil {
		return errors.New(errors.ErrCodeMissingAccessor, "transition: key accessor is required")
	}
	if c.Geometry == nil {
		return errors.New(errors.ErrCodeMissingAccessor, "transition: geometry generator is required")
	}
	if c.Interpolate == nil {
		return errors.New(errors.ErrCodeMissingAccessor, "transition: interpolator is required")
	}
	if c.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "transition: negative duration %s", c.Duration)
	}
	if c.Duration == 0 {
		c.Duration = DefaultDuration
	}
	if c.Ease == nil {
		c.Ease = CubicInOut
	}
	if c.Banded == nil {
		c.Banded = geom.Scales.Banded
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard)
	}
	return nil
}

// =============================================================================
// Engine
// =============================================================================

type entry[D, G any] struct {
	key   string
	datum D
	phase Phase
	order int

	from, to               G
	fromOpacity, toOpacity float64
	start                  time.Time
	duration               time.Duration

	// last sampled state
	current        G
	currentOpacity float64
}

// Diff counts what one Update started. Elements already exiting that stay
// absent are not counted again.
type Diff struct {
	Entered    int
	Updated    int
	Exited     int
	Duplicates int
}

// Engine runs keyed enter/update/exit transitions.
//
// Engine is not safe for concurrent use: Update, Advance and Frames must be
// serialized by the caller, typically once per rendered frame.
type Engine[D, G any] struct {
	cfg     Config[D, G]
	entries map[string]*entry[D, G]
	prev    geom.Scales
	hasPrev bool
}

// New creates an engine. Missing required callbacks are configuration
// errors.
func New[D, G any](cfg Config[D, G]) (*Engine[D, G], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Engine[D, G]{cfg: cfg, entries: make(map[string]*entry[D, G])}, nil
}

// Update supplies a new dataset and scales at time now.
//
// Every element is first sampled at now, so each new transition starts where
// the element currently is. Then:
//
//   - new keys enter from their geometry under the previous scales, or from
//     their own target when the scales are banded or the previous scales
//     cannot place them, fading in from zero opacity
//   - known keys move to their geometry under sc; keys caught mid-exit are
//     recovered from their sampled position
//   - missing keys exit toward their geometry under sc, or hold their
//     position when sc cannot place them or is banded, fading to zero
//
// Elements already exiting are re-targeted with the previous scales and keep
// their original end time, so under rapid updates an exit can head for a
// stale position.
//
// Data whose geometry is undefined under sc counts as absent. When several
// data share a key the first one wins.
//
// The returned Diff counts the elements that started each phase.
func (e *Engine[D, G]) Update(data []D, sc geom.Scales, now time.Time) Diff {
	e.sweep(now)

	cur := sc.Copy()
	banded := e.cfg.Banded(cur)
	seen := make(map[string]bool, len(data))
	var d Diff

	for i, datum := range data {
		key := e.cfg.Key(datum)
		if seen[key] {
			d.Duplicates++
			continue
		}
		target, ok := e.cfg.Geometry(datum, cur)
		if !ok {
			continue
		}
		seen[key] = true

		en, exists := e.entries[key]
		switch {
		case !exists:
			from := target
			if e.hasPrev && !banded {
				if g, ok := e.cfg.Geometry(datum, e.prev); ok {
					from = g
				}
			}
			en = &entry[D, G]{key: key, phase: Entering, from: from, fromOpacity: 0}
			e.entries[key] = en
			d.Entered++
		case en.phase == Exiting:
			en.phase = Entering
			en.from, en.fromOpacity = en.current, en.currentOpacity
			d.Entered++
		default:
			en.phase = Present
			en.from, en.fromOpacity = en.current, en.currentOpacity
			d.Updated++
		}
		en.datum = datum
		en.order = i
		en.to, en.toOpacity = target, 1
		en.start, en.duration = now, e.cfg.Duration
	}

	for key, en := range e.entries {
		if seen[key] {
			continue
		}
		if en.phase == Exiting {
			end := en.start.Add(en.duration)
			to := en.current
			if e.hasPrev && !banded {
				if g, ok := e.cfg.Geometry(en.datum, e.prev); ok {
					to = g
				}
			}
			en.from, en.fromOpacity = en.current, en.currentOpacity
			en.to = to
			en.start, en.duration = now, end.Sub(now)
			continue
		}
		to := en.current
		if !banded {
			if g, ok := e.cfg.Geometry(en.datum, cur); ok {
				to = g
			}
		}
		en.phase = Exiting
		en.from, en.fromOpacity = en.current, en.currentOpacity
		en.to, en.toOpacity = to, 0
		en.start, en.duration = now, e.cfg.Duration
		d.Exited++
	}

	e.prev, e.hasPrev = cur, true
	e.cfg.Logger.Debug("transition update",
		"entering", d.Entered, "updating", d.Updated, "exiting", d.Exited,
		"duplicates", d.Duplicates, "live", len(e.entries))
	return d
}

// Advance samples every element at now and returns the frames keyed by
// element key. Exits that have finished are removed and entrances that have
// finished become present.
func (e *Engine[D, G]) Advance(now time.Time) map[string]Frame[G] {
	e.sweep(now)
	out := make(map[string]Frame[G], len(e.entries))
	for key, en := range e.entries {
		out[key] = en.frame()
	}
	return out
}

// Frames is Advance with frames in data order: current data first, exiting
// elements interleaved at their last data position.
func (e *Engine[D, G]) Frames(now time.Time) []Frame[G] {
	e.sweep(now)
	live := make([]*entry[D, G], 0, len(e.entries))
	for _, en := range e.entries {
		live = append(live, en)
	}
	slices.SortFunc(live, func(a, b *entry[D, G]) int {
		if c := cmp.Compare(a.order, b.order); c != 0 {
			return c
		}
		if a.phase != b.phase {
			// exiting elements draw beneath current ones
			if a.phase == Exiting {
				return -1
			}
			if b.phase == Exiting {
				return 1
			}
		}
		return cmp.Compare(a.key, b.key)
	})
	out := make([]Frame[G], len(live))
	for i, en := range live {
		out[i] = en.frame()
	}
	return out
}

// State returns the transition of key.
func (e *Engine[D, G]) State(key string) (State[G], bool) {
	en, ok := e.entries[key]
	if !ok {
		return State[G]{}, false
	}
	return State[G]{
		Key:         en.key,
		Phase:       en.phase,
		From:        en.from,
		To:          en.to,
		FromOpacity: en.fromOpacity,
		ToOpacity:   en.toOpacity,
		Start:       en.start,
		Duration:    en.duration,
	}, true
}

// Len is the number of live elements, exiting ones included.
func (e *Engine[D, G]) Len() int { return len(e.entries) }

// Settled reports whether every transition has finished by now.
func (e *Engine[D, G]) Settled(now time.Time) bool {
	for _, en := range e.entries {
		if now.Before(en.start.Add(en.duration)) {
			return false
		}
	}
	return true
}

// Reset forgets every element and the previous scales.
func (e *Engine[D, G]) Reset() {
	clear(e.entries)
	e.prev, e.hasPrev = geom.Scales{}, false
}

// sweep samples every entry at now, deletes finished exits and promotes
// finished entrances.
func (e *Engine[D, G]) sweep(now time.Time) {
	for key, en := range e.entries {
		done := e.sample(en, now)
		if !done {
			continue
		}
		switch en.phase {
		case Exiting:
			en.phase = Removed
			delete(e.entries, key)
		case Entering:
			en.phase = Present
		}
	}
}

func (e *Engine[D, G]) sample(en *entry[D, G], now time.Time) (done bool) {
	t := 1.0
	if en.duration > 0 {
		t = float64(now.Sub(en.start)) / float64(en.duration)
	}
	t = math.Max(0, math.Min(1, t))
	k := e.cfg.Ease(t)
	switch t {
	case 0:
		en.current = e.cfg.Interpolate(en.from, en.to, 0)
		k = 0
	case 1:
		en.current = en.to
		k = 1
	default:
		en.current = e.cfg.Interpolate(en.from, en.to, k)
	}
	en.currentOpacity = math.Max(0, math.Min(1, geom.Lerp(en.fromOpacity, en.toOpacity, k)))
	return t >= 1
}

func (en *entry[D, G]) frame() Frame[G] {
	return Frame[G]{Key: en.key, Phase: en.phase, Geometry: en.current, Opacity: en.currentOpacity}
}
