package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/markusressel/tcoracle/cmd/global"
	"github.com/markusressel/tcoracle/internal"
	"github.com/markusressel/tcoracle/internal/configuration"
	"github.com/markusressel/tcoracle/internal/dmin"
	"github.com/markusressel/tcoracle/internal/parameters"
	"github.com/markusressel/tcoracle/internal/ui"
	"github.com/spf13/cobra"
)

var (
	dminDirection   string
	dminTemperature int
)

var dminCmd = &cobra.Command{
	Use:   "dmin",
	Short: "Print the minimum pwm of every fault",
	Long: `Prints the expected minimum pwm of every fault at the given ambient
temperature together with the dmin tables of the fan direction`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configuration.DetectAndReadConfigFile()

		target, err := internal.InspectDevice(context.Background())
		if err != nil {
			return err
		}
		direction := target.Direction
		if dminDirection != "" {
			direction, err = parameters.ParseDirection(dminDirection)
			if err != nil {
				return err
			}
		}
		params := target.Parameters

		ui.Printfln("> %s at %d°C", direction, dminTemperature/1000)

		var faultRows [][]string
		for _, fault := range dmin.Faults {
			pwmText := "N/A"
			pwm, err := dmin.ExpectedPwmUnderFault(params, direction, fault, dminTemperature)
			if err != nil {
				ui.Warning("%v", err)
			} else {
				pwmText = fmt.Sprintf("%d%%", pwm)
			}
			faultRows = append(faultRows, []string{fault.String(), pwmText})
		}
		if err := global.PrintTable([]string{"Fault", "Min PWM"}, faultRows); err != nil {
			return err
		}

		var tableRows [][]string
		for _, pair := range params.DminTables(direction) {
			table, err := params.Dmin(direction, pair[0], pair[1])
			if err != nil {
				return err
			}
			for idx, entry := range table {
				name := ""
				if idx == 0 {
					name = pair[0]
					if pair[1] != parameters.SubtypeNone {
						name += "/" + pair[1]
					}
				}
				tableRows = append(tableRows, []string{name, entry.String(), strconv.Itoa(entry.Pwm)})
			}
		}
		if err := global.PrintTable([]string{"Table", "Range (°C)", "PWM"}, tableRows); err != nil {
			return err
		}

		for _, coverageErr := range dmin.CheckAllCoverage(params, direction, dmin.CoverageLow, dmin.CoverageHigh) {
			ui.Warning("%v", coverageErr)
		}
		return nil
	},
}

func init() {
	dminCmd.Flags().StringVarP(&dminDirection, "direction", "d", "", "Fan direction (C2P or P2C), detected if empty")
	dminCmd.Flags().IntVarP(&dminTemperature, "temperature", "t", 25000, "Ambient temperature in millidegree")
	rootCmd.AddCommand(dminCmd)
}
