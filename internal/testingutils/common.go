package testingutils

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	ThermalRoot  = "/var/run/hw-management"
	TcConfigPath = "/var/run/hw-management/config/tc_config.json"
	SkuPath      = "/sys/devices/virtual/dmi/id/product_sku"
)

// TcConfig is a thermal control configuration in the format shipped with
// the hw-management package of a 2 psu, 6 drawer, dual fan system
const TcConfig = `{
  "name": "sn4700",
  "dmin": {
    "C2P": {
      "trusted": {"-127:120": 20},
      "untrusted": {"-127:25": 20, "26:30": 30, "31:35": 40, "36:120": 50},
      "fan_err": {
        "tacho": {"-127:35": 30, "36:120": 40},
        "present": {"-127:35": 40, "36:120": 50},
        "direction": {"-127:35": 50, "36:120": 60}
      },
      "psu_err": {
        "present": {"-127:35": 30, "36:120": 40},
        "direction": {"-127:35": 40, "36:120": 50}
      },
      "sensor_read_error": {"-127:120": 70}
    },
    "P2C": {
      "trusted": {"-127:120": 20},
      "untrusted": {"-127:25": 30, "26:120": 50},
      "fan_err": {
        "tacho": {"-127:35": 20, "36:120": 30},
        "present": {"-127:35": 30, "36:120": 40},
        "direction": {"-127:35": 40, "36:120": 60}
      },
      "psu_err": {
        "present": {"-127:35": 30, "36:120": 50},
        "direction": {"-127:35": 40, "36:120": 60}
      },
      "sensor_read_error": {"-127:120": 80}
    }
  },
  "fan_trend": {
    "C2P": {
      "0": {"rpm_min": 7000, "rpm_max": 23000, "slope": 200, "pwm_min": 20, "pwm_max_reduction": 10, "rpm_tolerance": 0.3},
      "1": {"rpm_min": 6000, "rpm_max": 0, "slope": 180, "pwm_min": 20, "pwm_max_reduction": 10}
    },
    "P2C": {
      "0": {"rpm_min": 6500, "rpm_max": 21000, "slope": 180, "pwm_min": 20, "pwm_max_reduction": 10, "rpm_tolerance": 0.3},
      "1": {"rpm_min": 5500, "rpm_max": 19000, "slope": 170, "pwm_min": 20, "pwm_max_reduction": 10, "rpm_tolerance": 0.3}
    }
  },
  "dev_parameters": {
    "asic": {"pwm_min": 30, "pwm_max": 100, "val_min": 75000, "val_max": 85000, "poll_time": 3},
    "cpu_pack": {"pwm_min": 30, "pwm_max": 100, "val_min": 30000, "val_max": 90000, "poll_time": 3},
    "cpu_core\\d+": {"pwm_min": 30, "pwm_max": 100, "val_min": "70000!", "val_max": "90000!", "poll_time": 3},
    "psu\\d+_temp": {"pwm_min": 30, "pwm_max": 100, "val_min": 45000, "val_max": 85000, "poll_time": 30},
    "voltmon\\d+_temp": {"pwm_min": 30, "pwm_max": 100, "val_min": "85000", "val_max": "125000", "poll_time": 60},
    "module\\d+": {"pwm_min": 30, "pwm_max": 100, "val_min": "60000!", "val_max": "80000!", "poll_time": 20},
    "sodimm\\d+_temp": {"pwm_min": 30, "pwm_max": 70, "val_min": 45000, "val_max": 85000, "poll_time": 60},
    "gearbox\\d+": {"pwm_min": 30, "pwm_max": 100, "val_min": 75000, "val_max": 105000, "poll_time": 6},
    "pch": {"pwm_min": 30, "pwm_max": 100, "val_min": 50000, "val_max": 50000, "poll_time": 60},
    "sensor_amb": {"pwm_min": 30, "pwm_max": 60, "val_min": 30000, "val_max": 50000, "poll_time": 30},
    "fan\\d+": {"pwm_min": 30, "pwm_max": 100, "val_min": 4500, "val_max": 23000, "poll_time": 30}
  }
}`

// CreateDeviceFs creates an in memory hw-management tree: config counters,
// thermal inputs at val_min, a pwm of 30% and all fan drawers in C2P direction
func CreateDeviceFs() afero.Fs {
	fs := afero.NewMemMapFs()

	files := map[string]string{
		"config/tc_config.json":     TcConfig,
		"config/hotplug_fans":       "6",
		"config/max_tachos":         "12",
		"config/fan_drwr_capacity":  "2",
		"config/hotplug_psus":       "2",
		"config/module_counter":     "4",
		"config/gearbox_counter":    "0",
		"config/cpu_core_counter":   "2",
		"config/cpu_pack_counter":   "1",
		"config/voltmon_counter":    "2",
		"config/pch_counter":        "1",
		"config/sodimm_counter":     "2",
		"thermal/asic":              "75000",
		"thermal/cpu_pack":          "30000",
		"thermal/pch_temp":          "40000",
		"thermal/fan_amb":           "28000",
		"thermal/port_amb":          "27000",
		"thermal/pwm1":              "77",
		"thermal/module1_temp_crit": "75000",
		"thermal/module2_temp_crit": "0",
		"thermal/module3_temp_crit": "80000",
		"thermal/module4_temp_crit": "0",
	}
	for i := 1; i <= 2; i++ {
		files[fmt.Sprintf("thermal/cpu_core%d", i)] = "40000"
		files[fmt.Sprintf("thermal/psu%d_temp", i)] = "40000"
		files[fmt.Sprintf("thermal/psu%d_status", i)] = "1"
		files[fmt.Sprintf("thermal/psu%d_fan_dir", i)] = "1"
		files[fmt.Sprintf("thermal/voltmon%d_temp1_input", i)] = "60000"
		files[fmt.Sprintf("thermal/sodimm%d_temp_input", i)] = "40000"
	}
	for i := 1; i <= 4; i++ {
		files[fmt.Sprintf("thermal/module%d_temp_input", i)] = "45000"
	}
	for i := 1; i <= 6; i++ {
		files[fmt.Sprintf("thermal/fan%d_status", i)] = "1"
		files[fmt.Sprintf("thermal/fan%d_dir", i)] = "1"
		files[fmt.Sprintf("thermal/fan%d_fault", i)] = "0"
	}
	for i := 1; i <= 12; i++ {
		files[fmt.Sprintf("thermal/fan%d_speed_get", i)] = "7000"
	}

	for name, content := range files {
		path := filepath.Join(ThermalRoot, name)
		if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
			panic(err)
		}
	}
	if err := afero.WriteFile(fs, SkuPath, []byte("HI130\n"), 0644); err != nil {
		panic(err)
	}

	return fs
}
