package sensors

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/markusressel/tcoracle/internal/device"
	"github.com/markusressel/tcoracle/internal/parameters"
	"github.com/markusressel/tcoracle/internal/testingutils"
	"github.com/markusressel/tcoracle/internal/util"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createConfig() DiscoveryConfig {
	return DiscoveryConfig{
		ThermalRoot: testingutils.ThermalRoot,
		SkuPath:     testingutils.SkuPath,
	}
}

func discover(t *testing.T, fs afero.Fs, cfg DiscoveryConfig) *Topology {
	injector := device.NewFsInjector(fs, util.Retry{Attempts: 1})
	topology, err := Discover(context.Background(), injector, cfg)
	require.NoError(t, err)
	return topology
}

func writeFile(t *testing.T, fs afero.Fs, name string, content string) {
	require.NoError(t, afero.WriteFile(fs, filepath.Join(testingutils.ThermalRoot, name), []byte(content), 0644))
}

func TestDiscover_Fixture(t *testing.T) {
	// GIVEN
	fs := testingutils.CreateDeviceFs()

	// WHEN
	topology := discover(t, fs, createConfig())

	// THEN
	assert.Equal(t, "HI130", topology.Sku())
	assert.Equal(t, 6, topology.FanDrawers())
	assert.Equal(t, 2, topology.FanDrawerCapacity())
	assert.Equal(t, 12, topology.Fans())
	assert.Equal(t, 2, topology.Psus())

	module, ok := topology.Class(ClassModule)
	require.True(t, ok)
	assert.Equal(t, []int{1, 3}, module.InstanceIndices())

	voltmon, _ := topology.Class(ClassVoltmon)
	assert.Equal(t, []int{1, 2}, voltmon.InstanceIndices())

	var names []Class
	for _, c := range topology.Classes() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []Class{
		ClassAsic, ClassCpuPack, ClassCpuCore, ClassPsu, ClassVoltmon, ClassModule,
		ClassSodimm, ClassPch, ClassFan, ClassFanAmb, ClassPortAmb, ClassAmbient,
	}, names)
	assert.NotContains(t, names, ClassGearbox)

	for _, c := range topology.TemperatureClasses() {
		assert.NotEqual(t, ClassFan, c.Name)
	}
}

func TestDiscover_VoltmonSkuOverride(t *testing.T) {
	// GIVEN
	fs := testingutils.CreateDeviceFs()
	require.NoError(t, afero.WriteFile(fs, testingutils.SkuPath, []byte("HI157\n"), 0644))

	// WHEN
	topology := discover(t, fs, createConfig())

	// THEN
	voltmon, _ := topology.Class(ClassVoltmon)
	assert.Equal(t, 3, voltmon.Count)
	assert.Equal(t, []int{1, 3, 5}, voltmon.InstanceIndices())

	paths, err := topology.Resolve(ClassVoltmon, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(testingutils.ThermalRoot, "thermal", "voltmon5_temp1_input")}, paths)

	_, err = topology.Resolve(ClassVoltmon, 2)
	assert.Error(t, err)
}

func TestDiscover_ConfiguredVoltmonSkuOverride(t *testing.T) {
	// GIVEN
	fs := testingutils.CreateDeviceFs()
	cfg := createConfig()
	cfg.VoltmonSkuOverrides = map[string][]int{"HI130": {2, 4}}

	// WHEN
	topology := discover(t, fs, cfg)

	// THEN
	voltmon, _ := topology.Class(ClassVoltmon)
	assert.Equal(t, []int{2, 4}, voltmon.InstanceIndices())
}

func TestDiscover_MissingCounterUsesDefault(t *testing.T) {
	// GIVEN
	fs := testingutils.CreateDeviceFs()
	require.NoError(t, fs.Remove(filepath.Join(testingutils.ThermalRoot, "config", "cpu_core_counter")))
	require.NoError(t, fs.Remove(filepath.Join(testingutils.ThermalRoot, "config", "hotplug_psus")))
	cfg := createConfig()
	cfg.Defaults = map[Class]int{ClassPsu: 4}

	// WHEN
	topology := discover(t, fs, cfg)

	// THEN
	cpuCore, _ := topology.Class(ClassCpuCore)
	assert.Equal(t, 2, cpuCore.Count)
	assert.Equal(t, 4, topology.Psus())
}

func TestDiscover_InvalidCounterUsesDefault(t *testing.T) {
	// GIVEN
	fs := testingutils.CreateDeviceFs()
	writeFile(t, fs, "config/fan_drwr_capacity", "two")

	// WHEN
	topology := discover(t, fs, createConfig())

	// THEN
	assert.Equal(t, DefaultFanDrawerCapacity, topology.FanDrawerCapacity())
}

func TestDiscover_ModulesWithoutCritAreDropped(t *testing.T) {
	// GIVEN
	fs := testingutils.CreateDeviceFs()
	writeFile(t, fs, "thermal/module1_temp_crit", "0")
	writeFile(t, fs, "thermal/module3_temp_crit", "0")

	// WHEN
	topology := discover(t, fs, createConfig())

	// THEN
	module, ok := topology.Class(ClassModule)
	require.True(t, ok)
	assert.Equal(t, 0, module.Count)
	for _, c := range topology.Classes() {
		assert.NotEqual(t, ClassModule, c.Name)
	}
	_, err := topology.Resolve(ClassModule, 1)
	assert.Error(t, err)
}

func TestDiscover_NoTemperatureSensors(t *testing.T) {
	// GIVEN
	fs := afero.NewMemMapFs()
	cfg := createConfig()
	cfg.Defaults = map[Class]int{}
	for _, c := range Catalog {
		cfg.Defaults[c.Name] = 0
	}

	// WHEN
	injector := device.NewFsInjector(fs, util.Retry{Attempts: 1})
	topology, err := Discover(context.Background(), injector, cfg)

	// THEN
	assert.Nil(t, topology)
	var configurationError *parameters.ConfigurationError
	assert.True(t, errors.As(err, &configurationError))
}

func TestDiscover_Cancelled(t *testing.T) {
	// GIVEN
	fs := testingutils.CreateDeviceFs()
	injector := device.NewFsInjector(fs, util.Retry{Attempts: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// WHEN
	_, err := Discover(ctx, injector, createConfig())

	// THEN
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTopology_ResolveAmbient(t *testing.T) {
	// GIVEN
	topology := discover(t, testingutils.CreateDeviceFs(), createConfig())

	// WHEN
	paths, err := topology.Resolve(ClassAmbient, 1)

	// THEN
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(testingutils.ThermalRoot, "thermal", "port_amb"),
		filepath.Join(testingutils.ThermalRoot, "thermal", "fan_amb"),
	}, paths)
}

func TestTopology_ResolveIndexed(t *testing.T) {
	// GIVEN
	topology := discover(t, testingutils.CreateDeviceFs(), createConfig())

	// WHEN
	paths, err := topology.Resolve(ClassModule, 3)

	// THEN
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(testingutils.ThermalRoot, "thermal", "module3_temp_input")}, paths)

	_, err = topology.Resolve(ClassModule, 2)
	assert.Error(t, err)
	_, err = topology.Resolve(ClassGearbox, 1)
	assert.Error(t, err)
}

func TestTopology_PickIndex(t *testing.T) {
	// GIVEN
	topology := discover(t, testingutils.CreateDeviceFs(), createConfig())
	rnd := rand.New(rand.NewSource(42))

	// WHEN
	seen := map[int]bool{}
	for i := 0; i < 50; i++ {
		index, err := topology.PickIndex(ClassModule, rnd)
		require.NoError(t, err)
		seen[index] = true
	}

	// THEN
	assert.Equal(t, map[int]bool{1: true, 3: true}, seen)

	_, err := topology.PickIndex(ClassGearbox, rnd)
	assert.Error(t, err)
}

func TestTopology_FaultPaths(t *testing.T) {
	// GIVEN
	topology := discover(t, testingutils.CreateDeviceFs(), createConfig())
	thermal := filepath.Join(testingutils.ThermalRoot, "thermal")

	// THEN
	assert.Equal(t, filepath.Join(thermal, "pwm1"), topology.PwmPath())
	assert.Equal(t, filepath.Join(thermal, "fan3_speed_get"), topology.FanSpeedPath(3))
	assert.Equal(t, filepath.Join(thermal, "fan2_status"), topology.FanStatusPath(2))
	assert.Equal(t, filepath.Join(thermal, "fan2_dir"), topology.FanDirPath(2))
	assert.Equal(t, filepath.Join(thermal, "fan2_fault"), topology.FanFaultPath(2))
	assert.Equal(t, filepath.Join(thermal, "psu1_status"), topology.PsuStatusPath(1))
	assert.Equal(t, filepath.Join(thermal, "psu1_fan_dir"), topology.PsuDirPath(1))
	assert.Equal(t, filepath.Join(testingutils.ThermalRoot, "config", "tc_config.json"), topology.TcConfigPath())
}

func TestSensorClass_InstanceName(t *testing.T) {
	module, _ := CatalogClass(ClassModule)
	asic, _ := CatalogClass(ClassAsic)

	assert.Equal(t, "module3", module.InstanceName(3))
	assert.Equal(t, "module3_temp_input", module.FileName(3))
	assert.Equal(t, "asic", asic.InstanceName(1))
	assert.Equal(t, "asic", asic.FileName(7))
	assert.False(t, asic.Indexed())
}

func TestSensorClass_Ambient(t *testing.T) {
	for _, c := range Catalog {
		switch c.Name {
		case ClassAmbient, ClassFanAmb, ClassPortAmb:
			assert.True(t, c.Ambient(), c.Name)
			assert.Equal(t, "sensor_amb", c.Selector)
		default:
			assert.False(t, c.Ambient(), c.Name)
		}
	}
}
