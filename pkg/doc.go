// Package pkg provides the core libraries for Chartmotion chart positioning
// and animation.
//
// # Overview
//
// Chartmotion turns declarative chart documents into pixel geometry, and
// animates keyed marks between datasets so that what stays, what enters and
// what leaves can be told apart. The pkg directory is organized into three
// areas:
//
//  1. Positioning - scales, mark geometry, stacking and pointer lookup
//  2. Motion - the keyed transition engine and chart animator
//  3. Infrastructure - caching, sessions, the pipeline and errors
//
// # Architecture
//
// The typical data flow through Chartmotion:
//
//	Chart document (TOML / JSON)
//	         ↓
//	    [chart] package (validate, register series, resolve scales)
//	         ↓
//	    [stack] + [geom] packages (segments, bars, glyphs, lines)
//	         ↓
//	    [transition] package (enter / update / exit over time)
//	         ↓
//	    [sink] package (SVG, scene JSON, frames JSON)
//
// # Quick Start
//
// Lay out a chart and write it as SVG:
//
//	import (
//	    "github.com/matzehuels/chartmotion/pkg/chart"
//	    "github.com/matzehuels/chartmotion/pkg/render/sink"
//	)
//
//	c, _ := chart.Load("sales.toml")
//	scene, _ := c.Scene(0)
//	svg := sink.RenderSVG(scene)
//
// Sample the transitions between every frame:
//
//	a, _ := chart.NewAnimator(c, nil)
//	frames, _ := a.Timeline(time.Now(), 30)
//	data, _ := sink.RenderFramesJSON(frames, 30)
//
// # Main Packages
//
// ## Positioning
//
// [scale] - The coordinate-mapping contract (linear, log, time, band,
// point, ordinal) that every mark generator consumes. Banded scales report
// a bandwidth; continuous scales can invert.
//
// [geom] - Mark generators that combine data, accessors and scales into
// rectangles, glyphs and polylines, plus axis ticks and curve sampling.
//
// [stack] - Cumulative layers over categories with configurable order and
// offset (expand, diverging, silhouette, wiggle).
//
// [nearest] - Pointer lookup by band, by bisection or by distance.
//
// [registry] - The series a chart is built from, with stable colour and
// index assignment.
//
// ## Motion
//
// [transition] - A keyed engine that diffs consecutive datasets and
// interpolates geometry, retargeting elements still in flight.
//
// [chart] - Chart documents, their layout and the [chart.Animator] that
// drives marks and axes through the transition engine.
//
// ## Infrastructure
//
// [pipeline] - The load → scene → render pipeline used by the CLI and the
// HTTP server, with scene and artifact caching.
//
// [sink] - Writers for scenes: SVG, scene JSON and sampled frames JSON.
//
// [cache] - Byte caches with expiry: file, Redis, MongoDB and null.
//
// [session] - Live animations for interactive clients, in memory or on disk.
//
// [errors] - Structured errors with codes and user messages.
//
// [observability] - Hooks for metrics and tracing around pipeline stages,
// cache access and HTTP requests.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...               # All tests
//	go test ./pkg/transition/...    # Specific package
//
// [scale]: https://pkg.go.dev/github.com/matzehuels/chartmotion/pkg/scale
// [geom]: https://pkg.go.dev/github.com/matzehuels/chartmotion/pkg/geom
// [stack]: https://pkg.go.dev/github.com/matzehuels/chartmotion/pkg/stack
// [nearest]: https://pkg.go.dev/github.com/matzehuels/chartmotion/pkg/nearest
// [registry]: https://pkg.go.dev/github.com/matzehuels/chartmotion/pkg/registry
// [transition]: https://pkg.go.dev/github.com/matzehuels/chartmotion/pkg/transition
// [chart]: https://pkg.go.dev/github.com/matzehuels/chartmotion/pkg/chart
// [chart.Animator]: https://pkg.go.dev/github.com/matzehuels/chartmotion/pkg/chart#Animator
// [sink]: https://pkg.go.dev/github.com/matzehuels/chartmotion/pkg/render/sink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/chartmotion/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/chartmotion/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/chartmotion/pkg/session
// [errors]: https://pkg.go.dev/github.com/matzehuels/chartmotion/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/chartmotion/pkg/observability
package pkg
