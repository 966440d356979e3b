package curves

import (
	"fmt"

	"github.com/markusressel/tcoracle/internal/parameters"
	"github.com/markusressel/tcoracle/internal/sensors"
	"github.com/markusressel/tcoracle/internal/ui"
	"github.com/markusressel/tcoracle/internal/util"
)

// ExpectedPwm calculates the pwm in percent the thermal control is expected
// to apply for a sensor at the given temperature (in millidegree)
func ExpectedPwm(param parameters.DevParameter, temperature int) int {
	valMin := float64(param.ValMin)
	valMax := float64(param.ValMax)

	if valMax == valMin {
		// disabled sensor
		return param.PwmMin
	}

	ratio := util.Ratio(float64(temperature), valMin, valMax)
	pwm := float64(param.PwmMin) + ratio*float64(param.PwmMax-param.PwmMin)
	pwm = util.Coerce(pwm, float64(param.PwmMin), float64(param.PwmMax))

	return util.RoundToInt(pwm)
}

// ExpectedPwmForClass resolves the control curve of a sensor instance and evaluates it.
// Ambient sensors share one curve which is controlled by the lowest of the
// port and fan ambient readings.
func ExpectedPwmForClass(params *parameters.Parameters, class sensors.SensorClass, index int, temperatures ...int) (int, error) {
	if len(temperatures) <= 0 {
		return 0, fmt.Errorf("no temperature given for sensor %s", class.InstanceName(index))
	}

	param, err := params.DevParameter(class.Selector, class.InstanceName(index))
	if err != nil {
		return 0, err
	}

	temperature := temperatures[0]
	if class.Ambient() {
		temperature = AmbientTemperature(temperatures...)
	} else if len(temperatures) > 1 {
		return 0, fmt.Errorf("sensor %s has a single input, got %d temperatures", class.InstanceName(index), len(temperatures))
	}

	pwm := ExpectedPwm(param, temperature)
	ui.Debug("Sensor '%s' at %d: expected pwm %d%% (curve %d..%d -> %d%%..%d%%)",
		class.InstanceName(index), temperature, pwm, param.ValMin, param.ValMax, param.PwmMin, param.PwmMax)
	return pwm, nil
}

// AmbientTemperature returns the lowest of the given ambient readings
func AmbientTemperature(temperatures ...int) int {
	return util.Min(temperatures)
}
