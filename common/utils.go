package common

import "cmp"

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// Clamp limits v to the closed range [lo, hi].
//
// Parameters:
//   - v: the value to clamp
//   - lo: the lower bound
//   - hi: the upper bound
//
// Returns:
//   - T: v limited to [lo, hi]
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

// WithAxis returns a copy of v with the component selected by axis replaced by value.
//
// Parameters:
//   - v: the source vector
//   - axis: the component to replace
//   - value: the new component value
//
// Returns:
//   - [3]float32: the updated copy
func WithAxis(v [3]float32, axis Axis, value float32) [3]float32 {
	switch axis {
	case AxisX:
		v[0] = value
	case AxisY:
		v[1] = value
	case AxisZ:
		v[2] = value
	}
	return v
}
