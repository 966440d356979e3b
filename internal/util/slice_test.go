package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContains_Valid(t *testing.T) {
	// GIVEN
	list := []string{
		"asic",
		"cpu_pack",
		"module",
	}

	// WHEN
	result := Contains(list, "cpu_pack")

	// THEN
	assert.True(t, result)
}

func TestContains_Invalid(t *testing.T) {
	// GIVEN
	list := []string{
		"asic",
		"cpu_pack",
		"module",
	}

	// WHEN
	result := Contains(list, "sodimm")

	// THEN
	assert.False(t, result)
}

func TestSortedKeys(t *testing.T) {
	// GIVEN
	input := map[int]string{
		3: "c",
		1: "a",
		2: "b",
	}

	// WHEN
	result := SortedKeys(input)

	// THEN
	assert.Equal(t, []int{1, 2, 3}, result)
}

func TestMin(t *testing.T) {
	assert.Equal(t, -1.0, Min([]float64{4, -1, 7}))
	assert.Equal(t, 27000, Min([]int{40000, 27000}))
	assert.Equal(t, 0, Min([]int(nil)))
}

func TestRange(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, Range(1, 3))
	assert.Nil(t, Range(1, 0))
}
