package internal

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Equal reports whether two published values are the same.
// Values of different dynamic types are never equal; comparable values use ==,
// []byte uses bytes.Equal and everything else reflect.DeepEqual.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}

	if x, ok := a.([]byte); ok {
		return bytes.Equal(x, b.([]byte))
	}

	// the dynamic value decides, a comparable struct type can still hold a slice
	if reflect.ValueOf(a).Comparable() {
		return a == b
	}

	return reflect.DeepEqual(a, b)
}

// ToString coerces a published value to the string predicates match against.
func ToString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// ToFloat parses a published value as a number.
// Non-numeric values and NaN report false.
func ToFloat(value any) (float64, bool) {
	var f float64

	switch v := value.(type) {
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint8:
		f = float64(v)
	case uint16:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case float32:
		f = float64(v)
	case float64:
		f = v
	case nil:
		return 0, false
	default:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(ToString(v)), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	}

	if math.IsNaN(f) {
		return 0, false
	}

	return f, true
}
