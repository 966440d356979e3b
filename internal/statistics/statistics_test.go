package statistics

import (
	"testing"

	"github.com/markusressel/tcoracle/internal/dmin"
	"github.com/markusressel/tcoracle/internal/fans"
	"github.com/markusressel/tcoracle/internal/sensors"
	"github.com/markusressel/tcoracle/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource []session.Result

func (s staticSource) Results() []session.Result {
	return s
}

func createSource() staticSource {
	return staticSource{
		{
			ID:       "001-asic",
			Stimulus: session.Stimulus{Kind: session.KindTemperature, Class: sensors.ClassAsic},
			Expected: session.ExpectedState{Pwm: 65, Fans: []fans.Expectation{
				{Fan: 1, Tacho: 1, Rpm: 18700, Tolerance: 0.3},
				{Fan: 2, Tacho: 0, Rpm: 16000, Tolerance: 0.3},
			}},
			Observed: session.ObservedState{Pwm: 70, Rpms: map[int]int{1: 18000, 2: 16500}},
			Attempts: 4,
			Passed:   true,
		},
		{
			ID:       "002-fan_tacho",
			Stimulus: session.Stimulus{Kind: session.KindFault, Fault: dmin.FanTacho},
			Expected: session.ExpectedState{Pwm: 30},
			Observed: session.ObservedState{Pwm: 20},
			Attempts: 13,
		},
		{
			ID:       "003-psu_presence",
			Stimulus: session.Stimulus{Kind: session.KindFault, Fault: dmin.PsuPresence},
			Skipped:  true,
		},
	}
}

func gather(t *testing.T, source ResultSource) map[string][]float64 {
	registry := prometheus.NewPedanticRegistry()
	require.NoError(t, RegisterAll(registry, source))
	families, err := registry.Gather()
	require.NoError(t, err)

	result := map[string][]float64{}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			value := metric.GetGauge().GetValue()
			if metric.GetCounter() != nil {
				value = metric.GetCounter().GetValue()
			}
			result[family.GetName()] = append(result[family.GetName()], value)
		}
	}
	return result
}

func TestVerificationCollector(t *testing.T) {
	// GIVEN
	source := createSource()

	// WHEN
	metrics := gather(t, source)

	// THEN
	assert.ElementsMatch(t, []float64{65, 30}, metrics["tcoracle_verification_expected_pwm"])
	assert.ElementsMatch(t, []float64{70, 20}, metrics["tcoracle_verification_observed_pwm"])
	assert.ElementsMatch(t, []float64{1, 0}, metrics["tcoracle_verification_passed"])
	assert.ElementsMatch(t, []float64{4, 13}, metrics["tcoracle_verification_attempts"])
	assert.ElementsMatch(t, []float64{1, 1, 1}, metrics["tcoracle_verification_results_total"])
}

func TestFanCollector(t *testing.T) {
	// GIVEN
	source := createSource()

	// WHEN
	metrics := gather(t, source)

	// THEN
	assert.ElementsMatch(t, []float64{18700, 16000}, metrics["tcoracle_fan_expected_rpm"])
	assert.ElementsMatch(t, []float64{18000, 16500}, metrics["tcoracle_fan_observed_rpm"])
}

func TestVerificationCollector_Count(t *testing.T) {
	// GIVEN
	collector := NewVerificationCollector(createSource())
	ch := make(chan prometheus.Metric, 100)

	// WHEN
	collector.Collect(ch)
	close(ch)
	count := len(ch)

	// THEN
	// 4 gauges for each of the 2 executed scenarios and 3 outcome counters
	assert.Equal(t, 11, count)
}
