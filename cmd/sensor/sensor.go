package sensor

import (
	"context"
	"fmt"

	"github.com/markusressel/tcoracle/internal"
	"github.com/markusressel/tcoracle/internal/configuration"
	"github.com/markusressel/tcoracle/internal/curves"
	"github.com/markusressel/tcoracle/internal/sensors"
	"github.com/markusressel/tcoracle/internal/util"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	sensorId    string
	sensorIndex int
	expected    bool
)

var Command = &cobra.Command{
	Use:              "sensor",
	Short:            "Get the current reading of a sensor",
	Long:             `Prints the temperature of a sensor in millidegree, or the pwm the thermal control should apply for it`,
	TraverseChildren: true,
	Args:             cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.DisableOutput()

		configuration.DetectAndReadConfigFile()
		target, err := internal.InspectDevice(context.Background())
		if err != nil {
			return err
		}

		name := sensors.Class(sensorId)
		paths, err := target.Topology.Resolve(name, sensorIndex)
		if err != nil {
			return err
		}

		reader := internal.NewInjector()
		var temperatures []int
		for _, p := range paths {
			value, err := reader.Read(p)
			if err != nil {
				return err
			}
			temperature, err := util.ParseInt(value)
			if err != nil {
				return fmt.Errorf("invalid reading of %s: %w", p, err)
			}
			temperatures = append(temperatures, temperature)
		}

		if !expected {
			fmt.Printf("%d", curves.AmbientTemperature(temperatures...))
			return nil
		}

		class, _ := target.Topology.Class(name)
		pwm, err := curves.ExpectedPwmForClass(target.Parameters, class, sensorIndex, temperatures...)
		if err != nil {
			return err
		}
		fmt.Printf("%d", pwm)
		return nil
	},
}

func init() {
	Command.PersistentFlags().StringVarP(
		&sensorId,
		"id", "i",
		"",
		"Sensor class, e.g. asic or module",
	)
	_ = Command.MarkPersistentFlagRequired("id")
	Command.PersistentFlags().IntVarP(
		&sensorIndex,
		"index", "n",
		1,
		"1-based instance of an indexed sensor class",
	)
	Command.Flags().BoolVarP(&expected, "expected", "e", false, "Print the expected pwm instead of the temperature")
}
