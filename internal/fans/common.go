package fans

import (
	"fmt"
	"math"

	"github.com/markusressel/tcoracle/internal/parameters"
	"github.com/markusressel/tcoracle/internal/sensors"
	"github.com/markusressel/tcoracle/internal/util"
)

const (
	DefaultRpmMax    = 25000
	DefaultTolerance = 0.3
)

// Defaults are the system wide values used when a fan_trend does not specify them
type Defaults struct {
	RpmMax    int
	Tolerance float64
}

// Expectation is the projected speed of a single fan
type Expectation struct {
	Fan       int     `json:"fan"`
	Tacho     int     `json:"tacho"`
	Rpm       int     `json:"rpm"`
	Tolerance float64 `json:"tolerance"`
}

// ExpectedRpm projects the speed of a tachometer for the given pwm (in percent)
func ExpectedRpm(trend parameters.FanTrend, pwm int, defaults Defaults) (rpm int, tolerance float64) {
	rpmMax := trend.RpmMax
	if rpmMax == 0 {
		rpmMax = defaults.RpmMax
	}

	tolerance = defaults.Tolerance
	if trend.RpmTolerance != nil {
		tolerance = *trend.RpmTolerance
	}
	tolerance = NormalizeTolerance(tolerance)

	rpm = util.RoundToInt(float64(rpmMax) + trend.Slope*float64(pwm-100))
	return rpm, tolerance
}

// NormalizeTolerance returns a tolerance as a fraction of the expected rpm.
// Values above 1 are given in percent, e.g. 30 for +-30%.
func NormalizeTolerance(tolerance float64) float64 {
	if tolerance > 1 {
		return tolerance / 100
	}
	return tolerance
}

// TachoIndex returns the fan_trend tachometer used by a fan, given its 1-based number
// and the number of fans per drawer. The last fan of every drawer uses tacho 0.
func TachoIndex(fan int, capacity int) int {
	if capacity <= 1 {
		return 0
	}
	if fan%capacity != 0 {
		return 1
	}
	return 0
}

// DrawerOf returns the 1-based drawer a fan is mounted in
func DrawerOf(fan int, capacity int) int {
	if capacity <= 0 {
		capacity = 1
	}
	return (fan-1)/capacity + 1
}

// WithinTolerance checks the relative deviation of observed from expected
func WithinTolerance(observed int, expected int, tolerance float64) bool {
	if expected == 0 {
		return observed == 0
	}
	deviation := math.Abs(float64(observed-expected)) / float64(expected)
	return deviation <= tolerance
}

// ExpectedRpms projects the speed of every fan of the system
func ExpectedRpms(params *parameters.Parameters, direction parameters.FanDirection, topology *sensors.Topology, pwm int, defaults Defaults) ([]Expectation, error) {
	var result []Expectation
	for _, fan := range util.Range(1, topology.Fans()) {
		tacho := TachoIndex(fan, topology.FanDrawerCapacity())
		trend, err := params.FanTrend(direction, tacho)
		if err != nil {
			return nil, fmt.Errorf("fan %d: %w", fan, err)
		}
		rpm, tolerance := ExpectedRpm(trend, pwm, defaults)
		result = append(result, Expectation{
			Fan:       fan,
			Tacho:     tacho,
			Rpm:       rpm,
			Tolerance: tolerance,
		})
	}
	return result, nil
}
