package curve

import (
	"errors"
	"fmt"

	"github.com/markusressel/tcoracle/internal/curves"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var pwmCmd = &cobra.Command{
	Use:   "pwm <temperature>...",
	Short: "Print the pwm expected for a sensor at the given temperature(s) in millidegree",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.DisableOutput()

		if sensorClass == "" {
			return errors.New("a sensor class is required (--id)")
		}

		temperatures, err := parseTemperatures(args)
		if err != nil {
			return err
		}

		target, err := loadTarget()
		if err != nil {
			return err
		}
		class, _, err := getCurve(target, sensorClass, sensorIndex)
		if err != nil {
			return err
		}

		pwm, err := curves.ExpectedPwmForClass(target.Parameters, class, sensorIndex, temperatures...)
		if err != nil {
			return err
		}
		fmt.Printf("%d", pwm)
		return nil
	},
}

func init() {
	Command.AddCommand(pwmCmd)
}
