package scale

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// Key normalizes a domain value into a comparable map key so that the same
// category is recognized regardless of its numeric type: int 3 and float64
// 3.0 are the same category, times compare by instant.
func Key(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return x
	case time.Time:
		return x.UnixNano()
	case fmt.Stringer:
		if t := reflect.TypeOf(v); !t.Comparable() {
			return x.String()
		}
	}
	if f, ok := ToFloat(v); ok {
		return f
	}
	if reflect.TypeOf(v).Comparable() {
		return v
	}
	return fmt.Sprint(v)
}

// ToFloat converts numeric values to float64.
func ToFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

// KeyString formats a domain value as an identity string. Unlike [Label] it
// never rounds: distinct numbers and instants always give distinct strings.
func KeyString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	}
	if f, ok := ToFloat(v); ok {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}

// Label formats a domain value for display when no formatter applies.
func Label(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	}
	if f, ok := ToFloat(v); ok {
		return fmt.Sprintf("%.6g", f)
	}
	return fmt.Sprint(v)
}
