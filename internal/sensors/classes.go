package sensors

import (
	"fmt"
	"strings"

	"github.com/markusressel/tcoracle/internal/util"
)

type Class string

const (
	ClassAsic    Class = "asic"
	ClassCpuPack Class = "cpu_pack"
	ClassCpuCore Class = "cpu_core"
	ClassPsu     Class = "psu"
	ClassVoltmon Class = "voltmon"
	ClassModule  Class = "module"
	ClassSodimm  Class = "sodimm"
	ClassGearbox Class = "gearbox"
	ClassPch     Class = "pch"
	ClassFan     Class = "fan"
	ClassFanAmb  Class = "fan_amb"
	ClassPortAmb Class = "port_amb"
	ClassAmbient Class = "ambient"
)

// SensorClass describes one kind of sensor of a system
type SensorClass struct {
	Name Class `json:"name"`
	// Template is the file name below the thermal directory,
	// "%d" is replaced with the 1-based instance index
	Template string `json:"template"`
	// Selector is the dev_parameters key of this class
	Selector string `json:"selector"`
	// InstanceTemplate is the sensor name dev_parameters keys are matched against
	InstanceTemplate string `json:"instanceTemplate"`
	// CounterFile is the config file holding the number of instances, empty for fixed classes
	CounterFile  string `json:"counterFile,omitempty"`
	DefaultCount int    `json:"defaultCount"`
	// Temperature is false for classes that are not a temperature input
	Temperature bool `json:"temperature"`

	Count int `json:"count"`
	// Indices overrides the contiguous 1..Count numbering
	Indices []int `json:"indices,omitempty"`
}

// Catalog is the static part of the sensor topology, in test sequence order
var Catalog = []SensorClass{
	{Name: ClassAsic, Template: "asic", Selector: "asic", InstanceTemplate: "asic", DefaultCount: 1, Temperature: true},
	{Name: ClassCpuPack, Template: "cpu_pack", Selector: "cpu_pack", InstanceTemplate: "cpu_pack", CounterFile: "cpu_pack_counter", DefaultCount: 1, Temperature: true},
	{Name: ClassCpuCore, Template: "cpu_core%d", Selector: `cpu_core\d+`, InstanceTemplate: "cpu_core%d", CounterFile: "cpu_core_counter", DefaultCount: 2, Temperature: true},
	{Name: ClassPsu, Template: "psu%d_temp", Selector: `psu\d+_temp`, InstanceTemplate: "psu%d_temp", CounterFile: "hotplug_psus", DefaultCount: 2, Temperature: true},
	{Name: ClassVoltmon, Template: "voltmon%d_temp1_input", Selector: `voltmon\d+_temp`, InstanceTemplate: "voltmon%d_temp", CounterFile: "voltmon_counter", DefaultCount: 2, Temperature: true},
	{Name: ClassModule, Template: "module%d_temp_input", Selector: `module\d+`, InstanceTemplate: "module%d", CounterFile: "module_counter", DefaultCount: 0, Temperature: true},
	{Name: ClassSodimm, Template: "sodimm%d_temp_input", Selector: `sodimm\d+_temp`, InstanceTemplate: "sodimm%d_temp", CounterFile: "sodimm_counter", DefaultCount: 0, Temperature: true},
	{Name: ClassGearbox, Template: "gearbox%d_temp_input", Selector: `gearbox\d+`, InstanceTemplate: "gearbox%d", CounterFile: "gearbox_counter", DefaultCount: 0, Temperature: true},
	{Name: ClassPch, Template: "pch_temp", Selector: "pch", InstanceTemplate: "pch", CounterFile: "pch_counter", DefaultCount: 0, Temperature: true},
	{Name: ClassFan, Template: "fan%d_speed_get", Selector: `fan\d+`, InstanceTemplate: "fan%d", CounterFile: "max_tachos", DefaultCount: 12, Temperature: false},
	{Name: ClassFanAmb, Template: "fan_amb", Selector: "sensor_amb", InstanceTemplate: "fan_amb", DefaultCount: 1, Temperature: true},
	{Name: ClassPortAmb, Template: "port_amb", Selector: "sensor_amb", InstanceTemplate: "port_amb", DefaultCount: 1, Temperature: true},
	// composite of port_amb and fan_amb, the lower one is used for control
	{Name: ClassAmbient, Selector: "sensor_amb", InstanceTemplate: "sensor_amb", DefaultCount: 1, Temperature: true},
}

// CatalogClass returns the static description of a class
func CatalogClass(name Class) (SensorClass, bool) {
	for _, c := range Catalog {
		if c.Name == name {
			return c, true
		}
	}
	return SensorClass{}, false
}

// Ambient is true for the port, fan and composite ambient classes. All of them
// share the sensor_amb curve, evaluated on the lower of both ambient readings.
func (c SensorClass) Ambient() bool {
	switch c.Name {
	case ClassAmbient, ClassFanAmb, ClassPortAmb:
		return true
	}
	return false
}

func (c SensorClass) Indexed() bool {
	return strings.Contains(c.Template, "%d")
}

// InstanceIndices returns the 1-based indices of all instances of this class
func (c SensorClass) InstanceIndices() []int {
	if c.Count <= 0 {
		return nil
	}
	if len(c.Indices) > 0 {
		return c.Indices
	}
	if !c.Indexed() {
		return []int{1}
	}
	return util.Range(1, c.Count)
}

func (c SensorClass) HasIndex(index int) bool {
	for _, i := range c.InstanceIndices() {
		if i == index {
			return true
		}
	}
	return false
}

func (c SensorClass) FileName(index int) string {
	if !c.Indexed() {
		return c.Template
	}
	return fmt.Sprintf(c.Template, index)
}

// InstanceName is the name dev_parameters keys are matched against, e.g. "module3"
func (c SensorClass) InstanceName(index int) string {
	if !strings.Contains(c.InstanceTemplate, "%d") {
		return c.InstanceTemplate
	}
	return fmt.Sprintf(c.InstanceTemplate, index)
}
