// Package stack combines data series keyed by category into cumulative
// [low, high] bands for stacked bar and area charts.
//
// # Usage
//
//	res, err := stack.Build([]stack.Series[Row]{
//	    {Key: "one", Data: one, Category: byMonth, Value: byTotal},
//	    {Key: "two", Data: two, Category: byMonth, Value: byTotal},
//	}, stack.Config{Order: stack.OrderAscending})
//
// Each [Layer] of the [Result] holds one [Segment] per category, in category
// order. Segments keep the series' original datum so hit-testing can report
// what the user is hovering.
//
// # Offsets
//
// When [Config.Offset] is left at [OffsetAuto], Build picks
// [OffsetDiverging] if any value is negative and [OffsetNone] otherwise.
// [Result.Offset] reports the choice.
package stack
