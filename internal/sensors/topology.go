package sensors

import (
	"context"
	"fmt"
	"math/rand"
	"path"
	"strings"

	"github.com/markusressel/tcoracle/internal/device"
	"github.com/markusressel/tcoracle/internal/parameters"
	"github.com/markusressel/tcoracle/internal/ui"
	"github.com/markusressel/tcoracle/internal/util"
)

type DiscoveryConfig struct {
	// ThermalRoot is the hw-management root, containing "thermal" and "config"
	ThermalRoot string
	// SkuPath is the file holding the product sku of the host
	SkuPath string
	// Defaults overrides the per-class count used when a counter file can not be read
	Defaults map[Class]int
	// VoltmonSkuOverrides is merged over DefaultVoltmonSkuOverrides
	VoltmonSkuOverrides map[string][]int
}

// Topology is the discovered sensor layout of a single system
type Topology struct {
	root    string
	sku     string
	classes map[Class]SensorClass

	fanDrawers        int
	fanDrawerCapacity int
}

// Discover reads the sensor counts of the system once and returns the resulting layout
func Discover(ctx context.Context, reader device.Reader, cfg DiscoveryConfig) (*Topology, error) {
	t := &Topology{
		root:    cfg.ThermalRoot,
		classes: map[Class]SensorClass{},
	}

	t.sku = readSku(reader, cfg.SkuPath)

	t.fanDrawers = t.readCount(reader, FanDrawerCounterFile, DefaultFanDrawers)
	t.fanDrawerCapacity = t.readCount(reader, FanDrawerCapacityFile, DefaultFanDrawerCapacity)
	if t.fanDrawerCapacity <= 0 {
		ui.Warning("Invalid fan drawer capacity %d, using %d", t.fanDrawerCapacity, DefaultFanDrawerCapacity)
		t.fanDrawerCapacity = DefaultFanDrawerCapacity
	}

	for _, class := range Catalog {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if override, ok := cfg.Defaults[class.Name]; ok {
			class.DefaultCount = override
		}
		if class.CounterFile == "" {
			class.Count = class.DefaultCount
		} else {
			class.Count = t.readCount(reader, class.CounterFile, class.DefaultCount)
		}

		switch class.Name {
		case ClassModule:
			class.Indices = t.filterModules(reader, class.Count)
			class.Count = len(class.Indices)
		case ClassVoltmon:
			if indices, ok := voltmonIndices(cfg.VoltmonSkuOverrides, t.sku); ok && class.Count > 0 {
				class.Indices = indices
				class.Count = len(indices)
			}
		}

		if class.Count <= 0 {
			ui.Debug("Sensor class %s has no instances", class.Name)
			class.Count = 0
			class.Indices = nil
		}
		t.classes[class.Name] = class
	}

	if len(t.TemperatureClasses()) <= 0 {
		return nil, &parameters.ConfigurationError{
			Value:  t.root,
			Reason: "no temperature sensor found on this system",
		}
	}

	return t, nil
}

func readSku(reader device.Reader, skuPath string) string {
	if skuPath == "" {
		return ""
	}
	value, err := reader.Read(skuPath)
	if err != nil {
		ui.Warning("Unable to read product sku from %s: %v", skuPath, err)
		return ""
	}
	return strings.TrimSpace(value)
}

func voltmonIndices(overrides map[string][]int, sku string) ([]int, bool) {
	if sku == "" {
		return nil, false
	}
	if indices, ok := overrides[sku]; ok {
		return indices, true
	}
	indices, ok := DefaultVoltmonSkuOverrides[sku]
	return indices, ok
}

func (t *Topology) readCount(reader device.Reader, file string, defaultValue int) int {
	p := t.ConfigPath(file)
	value, err := reader.Read(p)
	if err != nil {
		ui.Warning("Unable to read %s, using default %d: %v", p, defaultValue, err)
		return defaultValue
	}
	count, err := util.ParseInt(value)
	if err != nil || count < 0 {
		ui.Warning("Invalid count '%s' in %s, using default %d", value, p, defaultValue)
		return defaultValue
	}
	return count
}

// filterModules keeps only the modules reporting a nonzero critical temperature,
// other cages are empty or hold a module without a temperature sensor
func (t *Topology) filterModules(reader device.Reader, count int) []int {
	var result []int
	for _, index := range util.Range(1, count) {
		value, err := reader.Read(t.ThermalPath(fmt.Sprintf(ModuleCritTemplate, index)))
		if err != nil {
			continue
		}
		crit, err := util.ParseInt(value)
		if err != nil || crit == 0 {
			continue
		}
		result = append(result, index)
	}
	if count > 0 && len(result) <= 0 {
		ui.Warning("None of %d modules reports a critical temperature, dropping class %s", count, ClassModule)
	}
	return result
}

func (t *Topology) Sku() string {
	return t.sku
}

func (t *Topology) FanDrawers() int {
	return t.fanDrawers
}

func (t *Topology) FanDrawerCapacity() int {
	return t.fanDrawerCapacity
}

// Fans is the number of tachometers of the system
func (t *Topology) Fans() int {
	return t.classes[ClassFan].Count
}

func (t *Topology) Psus() int {
	return t.classes[ClassPsu].Count
}

func (t *Topology) Class(name Class) (SensorClass, bool) {
	c, ok := t.classes[name]
	return c, ok
}

// Classes returns all classes with at least one instance, in catalog order
func (t *Topology) Classes() []SensorClass {
	var result []SensorClass
	for _, c := range Catalog {
		if class := t.classes[c.Name]; class.Count > 0 {
			result = append(result, class)
		}
	}
	return result
}

func (t *Topology) TemperatureClasses() []SensorClass {
	var result []SensorClass
	for _, c := range t.Classes() {
		if c.Temperature {
			result = append(result, c)
		}
	}
	return result
}

func (t *Topology) ThermalPath(name string) string {
	return path.Join(t.root, ThermalDir, name)
}

func (t *Topology) ConfigPath(name string) string {
	return path.Join(t.root, ConfigDir, name)
}

func (t *Topology) TcConfigPath() string {
	return t.ConfigPath(TcConfigFile)
}

// Resolve returns the file(s) holding the temperature of a sensor instance.
// The ambient class resolves to port ambient followed by fan ambient.
func (t *Topology) Resolve(name Class, index int) ([]string, error) {
	class, ok := t.classes[name]
	if !ok || class.Count <= 0 {
		return nil, &parameters.ConfigurationError{Class: string(name), Reason: "sensor class not present on this system"}
	}
	if name == ClassAmbient {
		portAmb, _ := CatalogClass(ClassPortAmb)
		fanAmb, _ := CatalogClass(ClassFanAmb)
		return []string{
			t.ThermalPath(portAmb.FileName(1)),
			t.ThermalPath(fanAmb.FileName(1)),
		}, nil
	}
	if !class.HasIndex(index) {
		return nil, &parameters.ConfigurationError{
			Class:  string(name),
			Value:  fmt.Sprintf("index=%d", index),
			Reason: fmt.Sprintf("no such instance, valid are %v", class.InstanceIndices()),
		}
	}
	return []string{t.ThermalPath(class.FileName(index))}, nil
}

// PickIndex returns a random valid instance index of the given class
func (t *Topology) PickIndex(name Class, rnd *rand.Rand) (int, error) {
	class, ok := t.classes[name]
	if !ok || class.Count <= 0 {
		return 0, &parameters.ConfigurationError{Class: string(name), Reason: "sensor class not present on this system"}
	}
	indices := class.InstanceIndices()
	return indices[rnd.Intn(len(indices))], nil
}

func (t *Topology) PwmPath() string {
	return t.ThermalPath(PwmFile)
}

func (t *Topology) FanSpeedPath(fan int) string {
	return t.ThermalPath(fmt.Sprintf(FanSpeedTemplate, fan))
}

func (t *Topology) FanStatusPath(drawer int) string {
	return t.ThermalPath(fmt.Sprintf(FanStatusTemplate, drawer))
}

func (t *Topology) FanDirPath(drawer int) string {
	return t.ThermalPath(fmt.Sprintf(FanDirTemplate, drawer))
}

func (t *Topology) FanFaultPath(fan int) string {
	return t.ThermalPath(fmt.Sprintf(FanFaultTemplate, fan))
}

func (t *Topology) PsuStatusPath(psu int) string {
	return t.ThermalPath(fmt.Sprintf(PsuStatusTemplate, psu))
}

func (t *Topology) PsuDirPath(psu int) string {
	return t.ThermalPath(fmt.Sprintf(PsuDirTemplate, psu))
}
