package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	// GIVEN
	a := 0.0
	b := 100.0
	c := 50.0

	expected := 0.5

	// WHEN
	result := Ratio(c, a, b)

	// THEN
	assert.Equal(t, expected, result)
}

func TestCoerce(t *testing.T) {
	assert.Equal(t, 30, Coerce(10, 30, 100))
	assert.Equal(t, 100, Coerce(120, 30, 100))
	assert.Equal(t, 65, Coerce(65, 30, 100))
	// swapped bounds
	assert.Equal(t, 30, Coerce(10, 100, 30))
	assert.Equal(t, 0.5, Coerce(0.5, 0.0, 1.0))
}

func TestRoundToInt(t *testing.T) {
	assert.Equal(t, 65, RoundToInt(64.5))
	assert.Equal(t, 64, RoundToInt(64.49))
	assert.Equal(t, -3, RoundToInt(-2.5))
	assert.Equal(t, 3, RoundToInt(2.5))
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, 40, FloorDiv(40000, 1000))
	assert.Equal(t, 40, FloorDiv(40999, 1000))
	assert.Equal(t, -1, FloorDiv(-500, 1000))
	assert.Equal(t, -127, FloorDiv(-127000, 1000))
	assert.Equal(t, -128, FloorDiv(-127001, 1000))
	assert.Equal(t, 0, FloorDiv(0, 1000))
}

func TestMilliToDegree(t *testing.T) {
	assert.Equal(t, 35, MilliToDegree(35999))
	assert.Equal(t, 36, MilliToDegree(36000))
}

func TestRawPwmToPercent(t *testing.T) {
	assert.Equal(t, 0, RawPwmToPercent(0))
	assert.Equal(t, 100, RawPwmToPercent(255))
	assert.Equal(t, 30, RawPwmToPercent(77))
	assert.Equal(t, 50, RawPwmToPercent(128))
	assert.Equal(t, 100, RawPwmToPercent(300))
}
