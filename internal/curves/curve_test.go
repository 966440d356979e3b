package curves

import (
	"testing"

	"github.com/markusressel/tcoracle/internal/parameters"
	"github.com/markusressel/tcoracle/internal/sensors"
	"github.com/markusressel/tcoracle/internal/testingutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createParameter(valMin int, valMax int, pwmMin int, pwmMax int) parameters.DevParameter {
	return parameters.DevParameter{
		ValMin:   parameters.Millidegree(valMin),
		ValMax:   parameters.Millidegree(valMax),
		PwmMin:   pwmMin,
		PwmMax:   pwmMax,
		PollTime: 3,
	}
}

func TestExpectedPwm_CpuPack(t *testing.T) {
	// GIVEN
	param := createParameter(30000, 90000, 30, 100)

	// WHEN
	result := ExpectedPwm(param, 60000)

	// THEN
	assert.Equal(t, 65, result)
}

func TestExpectedPwm_Degenerate(t *testing.T) {
	// GIVEN
	param := createParameter(50000, 50000, 30, 100)

	// THEN
	for _, temperature := range []int{-127000, 0, 49999, 50000, 50001, 120000} {
		assert.Equal(t, 30, ExpectedPwm(param, temperature), "temperature %d", temperature)
	}
}

func TestExpectedPwm_Clamping(t *testing.T) {
	// GIVEN
	param := createParameter(30000, 90000, 30, 100)

	// THEN
	assert.Equal(t, 30, ExpectedPwm(param, -10000))
	assert.Equal(t, 30, ExpectedPwm(param, 29999))
	assert.Equal(t, 30, ExpectedPwm(param, 30000))
	assert.Equal(t, 100, ExpectedPwm(param, 90000))
	assert.Equal(t, 100, ExpectedPwm(param, 90001))
	assert.Equal(t, 100, ExpectedPwm(param, 150000))
}

func TestExpectedPwm_Monotonic(t *testing.T) {
	// GIVEN
	param := createParameter(45000, 85000, 30, 70)

	// WHEN
	last := ExpectedPwm(param, 45000)
	for temperature := 45000; temperature <= 85000; temperature += 250 {
		current := ExpectedPwm(param, temperature)

		// THEN
		assert.GreaterOrEqual(t, current, last, "temperature %d", temperature)
		last = current
	}
	assert.Equal(t, 70, last)
}

func TestExpectedPwm_RoundsHalfAwayFromZero(t *testing.T) {
	// GIVEN
	// 30 + 0.5 * 1 = 30.5
	param := createParameter(0, 2000, 30, 31)

	// WHEN
	result := ExpectedPwm(param, 1000)

	// THEN
	assert.Equal(t, 31, result)
}

func TestExpectedPwmForClass_Ambient(t *testing.T) {
	// GIVEN
	params, err := parameters.Load([]byte(testingutils.TcConfig))
	require.NoError(t, err)
	ambient, _ := sensors.CatalogClass(sensors.ClassAmbient)

	// WHEN
	// sensor_amb: 30000..50000 -> 30..60, the lower reading wins
	result, err := ExpectedPwmForClass(params, ambient, 1, 50000, 40000)

	// THEN
	require.NoError(t, err)
	assert.Equal(t, 45, result)
}

func TestExpectedPwmForClass_SingleAmbient(t *testing.T) {
	// GIVEN
	params, err := parameters.Load([]byte(testingutils.TcConfig))
	require.NoError(t, err)
	fanAmb, _ := sensors.CatalogClass(sensors.ClassFanAmb)
	portAmb, _ := sensors.CatalogClass(sensors.ClassPortAmb)

	// WHEN
	fanOnly, err := ExpectedPwmForClass(params, fanAmb, 1, 40000)
	require.NoError(t, err)
	withPort, err := ExpectedPwmForClass(params, fanAmb, 1, 27000, 40000)
	require.NoError(t, err)
	port, err := ExpectedPwmForClass(params, portAmb, 1, 40000, 42000)
	require.NoError(t, err)

	// THEN
	assert.Equal(t, 45, fanOnly)
	assert.Equal(t, 30, withPort)
	assert.Equal(t, 45, port)
}

func TestExpectedPwmForClass_RegexSelector(t *testing.T) {
	// GIVEN
	params, err := parameters.Load([]byte(testingutils.TcConfig))
	require.NoError(t, err)
	module, _ := sensors.CatalogClass(sensors.ClassModule)

	// WHEN
	// module\d+: "60000!".."80000!" -> 30..100
	result, err := ExpectedPwmForClass(params, module, 3, 70000)

	// THEN
	require.NoError(t, err)
	assert.Equal(t, 65, result)
}

func TestExpectedPwmForClass_MultipleTemperatures(t *testing.T) {
	// GIVEN
	params, err := parameters.Load([]byte(testingutils.TcConfig))
	require.NoError(t, err)
	asic, _ := sensors.CatalogClass(sensors.ClassAsic)

	// WHEN
	_, err = ExpectedPwmForClass(params, asic, 1, 70000, 80000)

	// THEN
	assert.Error(t, err)
}

func TestCurveSamples(t *testing.T) {
	// GIVEN
	param := createParameter(30000, 90000, 30, 100)

	// WHEN
	samples := CurveSamples(param, 5)

	// THEN
	assert.Equal(t, []Sample{
		{Temperature: 15000, Pwm: 30},
		{Temperature: 37500, Pwm: 39},
		{Temperature: 60000, Pwm: 65},
		{Temperature: 82500, Pwm: 91},
		{Temperature: 105000, Pwm: 100},
	}, samples)
}
