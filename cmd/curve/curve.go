package curve

import (
	"context"
	"fmt"

	"github.com/markusressel/tcoracle/internal"
	"github.com/markusressel/tcoracle/internal/configuration"
	"github.com/markusressel/tcoracle/internal/parameters"
	"github.com/markusressel/tcoracle/internal/sensors"
	"github.com/markusressel/tcoracle/internal/session"
	"github.com/spf13/cobra"
)

var (
	sensorClass string
	sensorIndex int
)

var Command = &cobra.Command{
	Use:              "curve",
	Short:            "Control curve related commands",
	TraverseChildren: true,
}

func init() {
	Command.PersistentFlags().StringVarP(
		&sensorClass,
		"id", "i",
		"",
		"Sensor class, e.g. asic or module",
	)
	Command.PersistentFlags().IntVarP(
		&sensorIndex,
		"index", "n",
		1,
		"1-based instance of an indexed sensor class",
	)
}

func loadTarget() (*session.Target, error) {
	configuration.DetectAndReadConfigFile()
	return internal.InspectDevice(context.Background())
}

func getCurve(target *session.Target, name string, index int) (sensors.SensorClass, parameters.DevParameter, error) {
	class, ok := target.Topology.Class(sensors.Class(name))
	if !ok {
		var available []string
		for _, c := range target.Topology.TemperatureClasses() {
			available = append(available, string(c.Name))
		}
		return sensors.SensorClass{}, parameters.DevParameter{}, fmt.Errorf("no sensor class found: %s, options: %s", name, available)
	}
	if class.Indexed() && !class.HasIndex(index) {
		return sensors.SensorClass{}, parameters.DevParameter{}, fmt.Errorf("sensor class %s has no instance %d, options: %v", name, index, class.InstanceIndices())
	}
	param, err := target.Parameters.DevParameter(class.Selector, class.InstanceName(index))
	return class, param, err
}
