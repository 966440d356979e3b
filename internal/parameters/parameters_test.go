package parameters

import (
	"errors"
	"testing"

	"github.com/markusressel/tcoracle/internal/testingutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) *Parameters {
	p, err := Load([]byte(testingutils.TcConfig))
	require.NoError(t, err)
	return p
}

func TestGetTempDigit(t *testing.T) {
	tests := []struct {
		input    interface{}
		expected int
	}{
		{75000, 75000},
		{75000.0, 75000},
		{"75000", 75000},
		{"75000!", 75000},
		{" 60000i ", 60000},
		{"-5000", -5000},
		{"-5000x", -5000},
		{Millidegree(30000), 30000},
	}
	for _, test := range tests {
		result, err := GetTempDigit(test.input)
		assert.NoError(t, err, "input %v", test.input)
		assert.Equal(t, test.expected, result, "input %v", test.input)
	}
}

func TestGetTempDigit_Invalid(t *testing.T) {
	for _, input := range []interface{}{"", "abc", "75!!", 1.5, true} {
		_, err := GetTempDigit(input)
		assert.Error(t, err, "input %v", input)
	}
}

func TestLoad_DevParameters(t *testing.T) {
	// GIVEN
	p := loadFixture(t)

	// WHEN
	cpuPack, err := p.DevParameter("cpu_pack", "cpu_pack")

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, DevParameter{
		ValMin:   30000,
		ValMax:   90000,
		PwmMin:   30,
		PwmMax:   100,
		PollTime: 3,
	}, cpuPack)
	assert.Equal(t, "sn4700", p.Name())
}

func TestLoad_DevParameters_SentinelStripped(t *testing.T) {
	// GIVEN
	p := loadFixture(t)

	// WHEN
	module, err := p.DevParameter(`module\d+`, "module3")

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, Millidegree(60000), module.ValMin)
	assert.Equal(t, Millidegree(80000), module.ValMax)
}

func TestLoad_DevParameters_RegexFallback(t *testing.T) {
	// GIVEN
	p := loadFixture(t)

	// WHEN
	psu, err := p.DevParameter("psu_temp", "psu2_temp")

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 30, psu.PollTime)
}

func TestLoad_DevParameters_Missing(t *testing.T) {
	// GIVEN
	p := loadFixture(t)

	// WHEN
	_, err := p.DevParameter("comex_amb", "comex_amb")

	// THEN
	var configErr *ConfigurationError
	require.True(t, errors.As(err, &configErr))
	assert.Equal(t, "comex_amb", configErr.Class)
}

func TestLoad_FanTrend(t *testing.T) {
	// GIVEN
	p := loadFixture(t)

	// WHEN
	trend, err := p.FanTrend(C2P, 0)
	require.NoError(t, err)
	sentinel, err := p.FanTrend(C2P, 1)
	require.NoError(t, err)

	// THEN
	assert.Equal(t, 23000, trend.RpmMax)
	assert.Equal(t, 200.0, trend.Slope)
	require.NotNil(t, trend.RpmTolerance)
	assert.Equal(t, 0.3, *trend.RpmTolerance)
	assert.Equal(t, 0, sentinel.RpmMax)
	assert.Nil(t, sentinel.RpmTolerance)
}

func TestLoad_FanTrend_MissingTacho(t *testing.T) {
	// GIVEN
	p := loadFixture(t)

	// WHEN
	_, err := p.FanTrend(P2C, 2)

	// THEN
	var configErr *ConfigurationError
	require.True(t, errors.As(err, &configErr))
	assert.Equal(t, "P2C", configErr.Direction)
}

func TestLoad_Dmin(t *testing.T) {
	// GIVEN
	p := loadFixture(t)

	// WHEN
	tacho, err := p.Dmin(P2C, "fan_err", "tacho")
	require.NoError(t, err)
	readError, err := p.Dmin(C2P, "sensor_read_error", SubtypeNone)
	require.NoError(t, err)

	// THEN
	assert.Equal(t, RangeTable{
		{TempRange: TempRange{Low: -127, High: 35}, Pwm: 20},
		{TempRange: TempRange{Low: 36, High: 120}, Pwm: 30},
	}, tacho)
	assert.Equal(t, RangeTable{
		{TempRange: TempRange{Low: -127, High: 120}, Pwm: 70},
	}, readError)
}

func TestLoad_DminTables(t *testing.T) {
	p := loadFixture(t)

	tables := p.DminTables(C2P)

	assert.Contains(t, tables, [2]string{"fan_err", "present"})
	assert.Contains(t, tables, [2]string{"sensor_read_error", SubtypeNone})
	assert.Contains(t, tables, [2]string{"untrusted", SubtypeNone})
	assert.Len(t, tables, 8)
}

func TestLoad_MissingTopLevelKey(t *testing.T) {
	// GIVEN
	raw := `{"dev_parameters": {}, "fan_trend": {}}`

	// WHEN
	_, err := Load([]byte(raw))

	// THEN
	assert.EqualError(t, err, "configuration error: missing top level key 'dmin'")
}

func TestLoad_NegativeSlope(t *testing.T) {
	// GIVEN
	raw := `{
		"dev_parameters": {},
		"dmin": {},
		"fan_trend": {"P2C": {"0": {"rpm_max": 20000, "slope": -150}}}
	}`

	// WHEN
	p, err := Load([]byte(raw))

	// THEN
	require.NoError(t, err)
	trend, err := p.FanTrend(P2C, 0)
	require.NoError(t, err)
	assert.Equal(t, -150.0, trend.Slope)
}

func TestLoad_InvalidPwmRange(t *testing.T) {
	raw := `{
		"dev_parameters": {"asic": {"pwm_min": 80, "pwm_max": 30, "val_min": 1, "val_max": 2}},
		"dmin": {},
		"fan_trend": {}
	}`

	_, err := Load([]byte(raw))

	assert.EqualError(t, err, "configuration error (class=asic): pwm_min 80 > pwm_max 30")
}

func TestLoad_InvalidRange(t *testing.T) {
	raw := `{
		"dev_parameters": {},
		"dmin": {"C2P": {"sensor_read_error": {"40:20": 70}}},
		"fan_trend": {}
	}`

	_, err := Load([]byte(raw))

	var configErr *ConfigurationError
	require.True(t, errors.As(err, &configErr))
	assert.Equal(t, "sensor_read_error", configErr.Class)
}

func TestLoad_LegacyDirectionKeys(t *testing.T) {
	// GIVEN
	raw := `{
		"dev_parameters": {},
		"dmin": {"0": {"sensor_read_error": {"-127:120": 80}}},
		"fan_trend": {"1": {"0": {"rpm_max": 20000, "slope": 150}}}
	}`

	// WHEN
	p, err := Load([]byte(raw))
	require.NoError(t, err)

	// THEN
	_, err = p.FanTrend(C2P, 0)
	assert.NoError(t, err)
	_, err = p.Dmin(P2C, "sensor_read_error", SubtypeNone)
	assert.NoError(t, err)
}

func TestLoad_InvalidJson(t *testing.T) {
	_, err := Load([]byte("{"))

	var configErr *ConfigurationError
	assert.True(t, errors.As(err, &configErr))
}
