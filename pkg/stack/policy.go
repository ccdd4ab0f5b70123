package stack

import (
	"fmt"
	"strings"

	"github.com/matzehuels/chartmotion/pkg/errors"
)

// Order selects the layering order of series within a stack.
type Order int

const (
	// OrderAsIs keeps the order the series were supplied in.
	OrderAsIs Order = iota
	// OrderAscending puts the series with the smallest total at the bottom.
	OrderAscending
	// OrderDescending puts the series with the largest total at the bottom.
	OrderDescending
	// OrderInsideOut puts series with early peaks in the middle and later
	// peaks on the outside. Suited to streamgraphs with OffsetWiggle.
	OrderInsideOut
	// OrderReverse reverses the supplied order.
	OrderReverse
)

var orderNames = map[Order]string{
	OrderAsIs:       "as-is",
	OrderAscending:  "ascending",
	OrderDescending: "descending",
	OrderInsideOut:  "inside-out",
	OrderReverse:    "reverse",
}

func (o Order) String() string {
	if n, ok := orderNames[o]; ok {
		return n
	}
	return fmt.Sprintf("Order(%d)", int(o))
}

// ParseOrder converts a configuration name into an Order. The empty string
// and "none" mean OrderAsIs.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "as-is", "none":
		return OrderAsIs, nil
	case "ascending":
		return OrderAscending, nil
	case "descending":
		return OrderDescending, nil
	case "inside-out", "insideout":
		return OrderInsideOut, nil
	case "reverse":
		return OrderReverse, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown stack order: %q (must be one of: as-is, ascending, descending, inside-out, reverse)", s)
}

// Offset selects how cumulative boundaries are computed.
type Offset int

const (
	// OffsetAuto picks OffsetDiverging when any value is negative and
	// OffsetNone otherwise. The zero value.
	OffsetAuto Offset = iota
	// OffsetNone stacks every series on the previous one from zero.
	OffsetNone
	// OffsetExpand normalizes each category to [0, 1] before stacking.
	OffsetExpand
	// OffsetDiverging stacks positive values up and negative values down
	// from zero.
	OffsetDiverging
	// OffsetSilhouette centers each stack around zero.
	OffsetSilhouette
	// OffsetWiggle shifts the baseline to minimize the weighted change in
	// slope between categories.
	OffsetWiggle
)

var offsetNames = map[Offset]string{
	OffsetAuto:       "auto",
	OffsetNone:       "none",
	OffsetExpand:     "expand",
	OffsetDiverging:  "diverging",
	OffsetSilhouette: "silhouette",
	OffsetWiggle:     "wiggle",
}

func (o Offset) String() string {
	if n, ok := offsetNames[o]; ok {
		return n
	}
	return fmt.Sprintf("Offset(%d)", int(o))
}

// ParseOffset converts a configuration name into an Offset. The empty string
// means OffsetAuto.
func ParseOffset(s string) (Offset, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return OffsetAuto, nil
	case "none":
		return OffsetNone, nil
	case "expand":
		return OffsetExpand, nil
	case "diverging":
		return OffsetDiverging, nil
	case "silhouette":
		return OffsetSilhouette, nil
	case "wiggle":
		return OffsetWiggle, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown stack offset: %q (must be one of: none, expand, diverging, silhouette, wiggle)", s)
}

// MarshalText implements encoding.TextMarshaler so configs round-trip
// through TOML and JSON by name.
func (o Order) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Order) UnmarshalText(b []byte) error {
	v, err := ParseOrder(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (o Offset) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Offset) UnmarshalText(b []byte) error {
	v, err := ParseOffset(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}
