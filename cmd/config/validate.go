package config

import (
	"context"
	"os"

	"github.com/markusressel/tcoracle/internal"
	"github.com/markusressel/tcoracle/internal/configuration"
	"github.com/markusressel/tcoracle/internal/dmin"
	"github.com/markusressel/tcoracle/internal/parameters"
	"github.com/markusressel/tcoracle/internal/ui"
	"github.com/spf13/cobra"
)

var skipDevice bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validates the current configuration and the thermal control configuration of the device",
	Long:  ``,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// note: config file path parameter comes from the root command (-c)
		configPath, err := configuration.ReadConfigFile()
		if err != nil {
			ui.Error("Unable to read config: %v", err)
			os.Exit(1)
		}
		if configPath != "" {
			ui.Info("Using configuration file at: %s", configPath)
		}

		if err := configuration.Validate(configPath); err != nil {
			ui.Error("Validation failed: %v", err)
			os.Exit(1)
		}
		if skipDevice {
			ui.Success("Config looks good! :)")
			return nil
		}

		target, err := internal.InspectDevice(context.Background())
		if err != nil {
			ui.Error("Device validation failed: %v", err)
			os.Exit(1)
		}

		failed := false
		for _, direction := range parameters.Directions {
			for _, coverageErr := range dmin.CheckAllCoverage(target.Parameters, direction, dmin.CoverageLow, dmin.CoverageHigh) {
				ui.Error("%v", coverageErr)
				failed = true
			}
		}
		if failed {
			os.Exit(1)
		}

		ui.Success("Config and thermal control configuration '%s' look good! :)", target.Parameters.Name())
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVarP(&skipDevice, "skip-device", "", false, "Only validate the tcoracle configuration")
	Command.AddCommand(validateCmd)
}
