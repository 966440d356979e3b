package util

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Ratio calculates the ration that target has in comparison to rangeMin and rangeMax
// Make sure that:
// rangeMin <= target <= rangeMax
// rangeMax - rangeMin != 0
func Ratio(target float64, rangeMin float64, rangeMax float64) float64 {
	return (target - rangeMin) / (rangeMax - rangeMin)
}

// Coerce returns a value that is at least min and at most max
func Coerce[T constraints.Ordered](value T, min T, max T) T {
	if min > max {
		min, max = max, min
	}
	if value > max {
		return max
	}
	if value < min {
		return min
	}
	return value
}

// RoundToInt rounds half away from zero
func RoundToInt(value float64) int {
	return int(math.Round(value))
}

// FloorDiv divides a by b, rounding towards negative infinity
func FloorDiv(a int, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// MilliToDegree converts a millidegree reading to whole degrees, flooring
// negative values so -500 maps to -1
func MilliToDegree(milli int) int {
	return FloorDiv(milli, 1000)
}

// RawPwmToPercent converts a raw [0..255] pwm register value to a duty
// cycle in percent
func RawPwmToPercent(raw int) int {
	return RoundToInt(float64(Coerce(raw, 0, 255)) * 100 / 255)
}
