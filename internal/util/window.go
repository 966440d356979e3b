package util

import (
	"math"

	"github.com/asecurityteam/rolling"
)

func CreateRollingWindow(size int) *rolling.PointPolicy {
	return rolling.NewPointPolicy(rolling.NewWindow(size))
}

// WindowMax returns the highest value held by the given window,
// 0 for an empty window
func WindowMax(window *rolling.PointPolicy) float64 {
	result := window.Reduce(rolling.Max)
	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0
	}
	return result
}
