// Package scale provides the coordinate-mapping contract consumed by the
// positioning and transition engine, together with concrete scales.
//
// # Overview
//
// Every scale satisfies [Scale] and reports an explicit [Kind], so callers
// never probe for optional capabilities:
//
//   - [Linear]: continuous numeric mapping (backed by go-moremath)
//   - [Time]: continuous mapping over instants with calendar ticks
//   - [Band]: ordered categories in equal-width slots
//   - [Point]: categories as evenly spaced points (zero bandwidth)
//
// # Adapter
//
// The engine reads scales only through the package-level helpers:
//
//	px, ok := scale.MapValue(s, v)   // ok only for finite positions
//	bw := scale.Bandwidth(s)         // 0 for unbanded scales
//	off := scale.CenterOffset(s)     // half bandwidth, rounded if s.Round()
//	base := scale.Baseline(s)        // pixel of zero, anchors bar lengths
//
// [Scale.Copy] captures a scale as it was, so a later update can still ask
// where a value used to be.
//
// # Tick Formats
//
// Numeric tick formats accept a compact specifier, [,][.precision][type]:
//
//	s.TickFormat(5, ",.0f")  // 12,000
//	s.TickFormat(5, ".0%")   // 45%
//	s.TickFormat(5, "s")     // 1.5k
//
// Time scales take a Go time layout instead; band scales label categories
// verbatim.
//
// # Errors
//
// Unsupported kinds are caller bugs. [Validate] and [ParseKind] return
// errors coded UNSUPPORTED_SCALE; [Baseline] panics on an unknown kind.
package scale
