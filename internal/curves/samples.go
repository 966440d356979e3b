package curves

import (
	"github.com/markusressel/tcoracle/internal/parameters"
)

type Sample struct {
	Temperature int `json:"temperature"`
	Pwm         int `json:"pwm"`
}

// CurveSamples evaluates a curve at count evenly spaced temperatures, spanning
// a quarter of the curve width below val_min and above val_max
func CurveSamples(param parameters.DevParameter, count int) []Sample {
	if count < 2 {
		count = 2
	}

	width := int(param.ValMax - param.ValMin)
	margin := width / 4
	if margin <= 0 {
		margin = 10000
	}
	from := int(param.ValMin) - margin
	to := int(param.ValMax) + margin

	result := make([]Sample, 0, count)
	for i := 0; i < count; i++ {
		temperature := from + (to-from)*i/(count-1)
		result = append(result, Sample{
			Temperature: temperature,
			Pwm:         ExpectedPwm(param, temperature),
		})
	}
	return result
}
