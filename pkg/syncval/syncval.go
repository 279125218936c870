// Package syncval holds the sanitization primitives applied to every untyped
// inbound field before it reaches shared room state.
package syncval

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrNotNumeric = errors.New("value is not numeric")

// Guard reports whether a raw value is already acceptable as-is.
type Guard func(v any) bool

// Fixer attempts to repair a raw value that failed its guard.
type Fixer func(v any) (any, error)

// ExtractField resolves a dot-separated path across nested maps. It returns
// def if any segment is absent or the container at that segment is not a map.
func ExtractField(data map[string]any, path string, def any) any {
	var cur any = data
	for _, segment := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return def
		}

		cur, ok = m[segment]
		if !ok {
			return def
		}
	}

	return cur
}

// Coerce returns v unchanged when guard holds, otherwise the fixed value,
// falling back to def when the fixer fails.
func Coerce(v any, guard Guard, fix Fixer, def any) any {
	if guard(v) {
		return v
	}

	fixed, err := fix(v)
	if err != nil {
		return def
	}

	return fixed
}

// Clamp restricts x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Min(math.Max(x, lo), hi)
}

// IsFloat64 holds for values that arrive as JSON numbers.
func IsFloat64(v any) bool {
	_, ok := v.(float64)
	return ok
}

// IsInt holds for integral values, including JSON numbers without a
// fractional part.
func IsInt(v any) bool {
	switch n := v.(type) {
	case int, int32, int64:
		return true
	case float64:
		return n == math.Trunc(n)
	default:
		return false
	}
}

// FloatInRange builds a guard that holds for in-range JSON numbers. The upper
// bound is exclusive when strictHi is set.
func FloatInRange(lo, hi float64, strictHi bool) Guard {
	return func(v any) bool {
		f, ok := v.(float64)
		if !ok {
			return false
		}
		if strictHi {
			return f >= lo && f < hi
		}
		return f >= lo && f <= hi
	}
}

// AbsFloat fixes a raw value to its absolute numeric value.
func AbsFloat(v any) (any, error) {
	f, err := ToFloat64(v)
	if err != nil {
		return nil, err
	}

	return math.Abs(f), nil
}

// NonNegInt fixes a raw value to max(0, int(v)).
func NonNegInt(v any) (any, error) {
	i, err := ToInt(v)
	if err != nil {
		return nil, err
	}

	return max(0, i), nil
}

// IntCast fixes a raw value to its integer cast.
func IntCast(v any) (any, error) {
	return ToInt(v)
}

// ClampFloat builds a fixer that clamps a numeric value into [lo, hi].
func ClampFloat(lo, hi float64) Fixer {
	return func(v any) (any, error) {
		f, err := ToFloat64(v)
		if err != nil {
			return nil, err
		}

		return Clamp(f, lo, hi), nil
	}
}

// ToFloat64 converts numeric values and numeric strings to float64.
func ToFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrNotNumeric, n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrNotNumeric, v)
	}
}

// ToInt converts numeric values and numeric strings to int, truncating any
// fractional part.
func ToInt(v any) (int, error) {
	f, err := ToFloat64(v)
	if err != nil {
		return 0, err
	}

	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("%w: overflow", ErrNotNumeric)
	}

	return int(f), nil
}
