package curve

import (
	"strconv"

	"github.com/guptarohit/asciigraph"
	"github.com/markusressel/tcoracle/cmd/global"
	"github.com/markusressel/tcoracle/internal/curves"
	"github.com/markusressel/tcoracle/internal/sensors"
	"github.com/markusressel/tcoracle/internal/ui"
	"github.com/spf13/cobra"
)

const graphSamples = 100

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the control curve of every sensor to console",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := loadTarget()
		if err != nil {
			return err
		}

		classes := target.Topology.TemperatureClasses()
		if sensorClass != "" {
			class, _, err := getCurve(target, sensorClass, sensorIndex)
			if err != nil {
				return err
			}
			classes = []sensors.SensorClass{class}
		}

		for idx, class := range classes {
			indices := class.InstanceIndices()
			if len(indices) <= 0 {
				continue
			}
			index := sensorIndex
			if !class.HasIndex(index) {
				index = indices[0]
			}
			_, param, err := getCurve(target, string(class.Name), index)
			if err != nil {
				ui.Warning("%v", err)
				continue
			}

			if idx > 0 {
				ui.Printfln("")
				ui.Printfln("")
			}

			ui.Printfln(class.InstanceName(index))
			err = global.PrintTable([]string{"", ""}, [][]string{
				{"Min Temperature", strconv.Itoa(int(param.ValMin))},
				{"Max Temperature", strconv.Itoa(int(param.ValMax))},
				{"Min PWM", strconv.Itoa(param.PwmMin)},
				{"Max PWM", strconv.Itoa(param.PwmMax)},
				{"Poll Time", strconv.Itoa(param.PollTime)},
			})
			if err != nil {
				return err
			}

			samples := curves.CurveSamples(param, graphSamples)
			values := make([]float64, 0, len(samples))
			for _, sample := range samples {
				values = append(values, float64(sample.Pwm))
			}

			caption := "PWM / Temperature (" + strconv.Itoa(samples[0].Temperature) + ".." + strconv.Itoa(samples[len(samples)-1].Temperature) + ")"
			graph := asciigraph.Plot(values, asciigraph.Height(15), asciigraph.Width(100), asciigraph.Caption(caption))
			ui.Printfln(graph)
		}

		return nil
	},
}

func init() {
	Command.AddCommand(listCmd)
}
