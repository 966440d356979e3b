package sensors

const (
	ThermalDir = "thermal"
	ConfigDir  = "config"

	PwmFile            = "pwm1"
	FanSpeedTemplate   = "fan%d_speed_get"
	FanStatusTemplate  = "fan%d_status"
	FanDirTemplate     = "fan%d_dir"
	FanFaultTemplate   = "fan%d_fault"
	PsuStatusTemplate  = "psu%d_status"
	PsuDirTemplate     = "psu%d_fan_dir"
	ModuleCritTemplate = "module%d_temp_crit"

	FanDrawerCounterFile  = "hotplug_fans"
	FanDrawerCapacityFile = "fan_drwr_capacity"
	TcConfigFile          = "tc_config.json"

	DefaultFanDrawers        = 6
	DefaultFanDrawerCapacity = 1
)

// DefaultVoltmonSkuOverrides lists the voltmon instances of systems that
// do not number them contiguously
var DefaultVoltmonSkuOverrides = map[string][]int{
	"HI144": {1, 2, 3, 5, 6, 7},
	"HI147": {1, 2, 3, 5, 6, 7},
	"HI157": {1, 3, 5},
}
