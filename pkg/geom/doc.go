// Package geom turns data plus scales into pixel geometry for chart marks.
//
// # Generators
//
// Each generator is a small struct holding accessors and layout options,
// with a method that positions one datum:
//
//   - [Bar]: single-series bars anchored at the value scale's baseline
//   - [GroupBar]: side-by-side bars placed within a slot by a group scale
//   - [StackBar]: stacked segments from [stack.Build]
//   - [Scatter]: point glyphs with constant or per-datum size
//   - [Line]: one [Polyline] per series, broken at undefined points
//   - [TickGenerator]: axis ticks from [Ticks]
//
// Generators are pure. When any scale lookup they depend on is undefined or
// not finite they return ok == false, and the caller must omit the datum;
// a zero-size rectangle is a valid result, a NaN-sized one never is.
//
// Method values satisfy [Generator], so they plug into [Compute] for static
// output and into the transition engine for animated output:
//
//	bars := geom.Bar[Row]{Accessors: acc}
//	rects := geom.Compute(rows, scales, bars.Rect)
//
// # Orientation
//
// [Vertical] charts carry categories on X and values on Y; [Horizontal]
// swaps them. [Scales.Category] and [Scales.Value] resolve the axes.
//
// # Paths
//
// [Polyline.Path] and [AxisDomainPath] emit SVG path data with coordinates
// rounded to three decimals.
//
// [stack.Build]: github.com/matzehuels/chartmotion/pkg/stack.Build
package geom
