package cmd

import (
	"context"
	"strconv"
	"strings"

	"github.com/markusressel/tcoracle/cmd/global"
	"github.com/markusressel/tcoracle/internal"
	"github.com/markusressel/tcoracle/internal/configuration"
	"github.com/markusressel/tcoracle/internal/ui"
	"github.com/spf13/cobra"
)

var topologyCmd = &cobra.Command{
	Use:     "topology",
	Aliases: []string{"detect"},
	Short:   "Detect sensors and fans",
	Long:    `Discovers the sensor classes, fan drawers and psus of the device and prints them as a list`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configuration.DetectAndReadConfigFile()

		target, err := internal.InspectDevice(context.Background())
		if err != nil {
			return err
		}
		topology := target.Topology

		ui.Printfln("> %s (sku %s, %s)", target.Parameters.Name(), topology.Sku(), target.Direction)

		var sensorRows [][]string
		for _, class := range topology.Classes() {
			instances := "-"
			if class.Indexed() {
				var names []string
				for _, index := range class.InstanceIndices() {
					names = append(names, class.InstanceName(index))
				}
				instances = strings.Join(names, ", ")
			} else if class.Count > 0 {
				instances = class.InstanceName(0)
			}
			sensorRows = append(sensorRows, []string{
				string(class.Name), strconv.Itoa(class.Count), strconv.FormatBool(class.Temperature), instances,
			})
		}
		if err := global.PrintTable([]string{"Class", "Count", "Temperature", "Instances"}, sensorRows); err != nil {
			return err
		}

		return global.PrintTable([]string{"Fan drawers", "Capacity", "Tachometers", "PSUs"}, [][]string{{
			strconv.Itoa(topology.FanDrawers()),
			strconv.Itoa(topology.FanDrawerCapacity()),
			strconv.Itoa(topology.Fans()),
			strconv.Itoa(topology.Psus()),
		}})
	},
}

func init() {
	rootCmd.AddCommand(topologyCmd)
}
