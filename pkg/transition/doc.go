// Package transition animates keyed geometry between dataset and scale
// updates.
//
// # Overview
//
// An [Engine] tracks one entry per element key. Each call to
// [Engine.Update] diffs the new data against the live entries:
//
//	new key         entering   fades in from where the previous scales put it
//	known key       present    moves from its sampled position to its new one
//	missing key     exiting    fades out toward where the new scales put it
//
// [Engine.Advance] is a pure step function of the clock: it samples every
// entry at a timestamp and returns frames keyed by element key. Exits that
// have run their duration are deleted; nothing depends on wall-clock time.
//
// # Continuity
//
// Updates always start from the sampled position, so interrupting a running
// transition never makes an element jump. A key that reappears while it is
// exiting is recovered from its current position and opacity.
//
// When either position scale is banded, entering and exiting elements only
// fade: a position under a different slot layout is not a meaningful path.
//
// # Usage
//
//	eng, err := transition.New(transition.Config[Row, geom.Rect]{
//	    Key:         func(r Row) string { return r.Name },
//	    Geometry:    bar.Rect,
//	    Interpolate: geom.LerpRect,
//	})
//	eng.Update(rows, scales, time.Now())
//	for _, f := range eng.Frames(time.Now()) {
//	    draw(f.Geometry, f.Opacity)
//	}
package transition
