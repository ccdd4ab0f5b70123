// Package chart turns declarative chart documents into scenes and
// animations.
//
// # Documents
//
// A [Chart] is decoded from TOML or JSON by [Parse], [Read] or [Load]:
//
//	title = "Revenue"
//	mark = "stacked-bar"
//
//	[y]
//	ticks = 5
//	format = ",.0f"
//
//	[[series]]
//	key = "north"
//	points = [
//	  { category = "Q1", value = 120 },
//	  { category = "Q2", value = 180 },
//	]
//
//	[[frames]]
//	label = "next year"
//	[[frames.series]]
//	key = "north"
//	points = [{ category = "Q1", value = 140 }]
//
// The top-level series are frame 0; each entry of frames is a further
// dataset the chart can animate to.
//
// # Scales
//
// [Chart.Build] resolves a [Layout] for one frame. Unless an axis names its
// scale and domain, they are inferred from the data:
//
//   - bars use band slots for categories; other marks use a continuous
//     scale for numbers, a time scale for timestamps and points otherwise
//   - band and point domains are the categories in first-seen order, or
//     the stack's category order for stacked bars
//   - value domains span the data bounds, the stack extent for stacked
//     bars, and include zero for bar marks; they are made nice by default
//
// # Animation
//
// An [Animator] keeps one transition engine for the marks and one per
// visible axis. [Animator.Show] retargets them at a frame, [Animator.Sample]
// returns the scene at an instant, and [Animator.Timeline] plays every
// frame at a fixed rate for offline rendering.
//
// Pointer positions passed to [Layout.Nearest] are in plot coordinates;
// [Chart.PlotPoint] converts from canvas coordinates.
package chart
