package fan

import (
	"fmt"
	"strconv"

	"github.com/markusressel/tcoracle/cmd/global"
	"github.com/markusressel/tcoracle/internal/configuration"
	"github.com/markusressel/tcoracle/internal/fans"
	"github.com/spf13/cobra"
)

var rpmCmd = &cobra.Command{
	Use:   "rpm <pwm>",
	Short: "Print the speed expected for the given pwm in percent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pwm, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		if pwm < 0 || pwm > 100 {
			return fmt.Errorf("pwm out of range [0..100]: %d", pwm)
		}

		target, err := loadTarget()
		if err != nil {
			return err
		}
		selected, err := selectFans(target)
		if err != nil {
			return err
		}

		defaults := fans.Defaults{
			RpmMax:    configuration.CurrentConfig.Rpm.DefaultMax,
			Tolerance: configuration.CurrentConfig.Rpm.DefaultTolerance,
		}
		expectations, err := fans.ExpectedRpms(target.Parameters, target.Direction, target.Topology, pwm, defaults)
		if err != nil {
			return err
		}

		var rows [][]string
		for _, fan := range selected {
			e := expectations[fan-1]
			low := int(float64(e.Rpm) * (1 - e.Tolerance))
			high := int(float64(e.Rpm) * (1 + e.Tolerance))
			rows = append(rows, []string{
				strconv.Itoa(e.Fan),
				strconv.Itoa(fans.DrawerOf(e.Fan, target.Topology.FanDrawerCapacity())),
				strconv.Itoa(e.Tacho),
				strconv.Itoa(e.Rpm),
				fmt.Sprintf("%d..%d", low, high),
			})
		}
		return global.PrintTable([]string{"Fan", "Drawer", "Tacho", "RPM", "Accepted"}, rows)
	},
}

func init() {
	Command.AddCommand(rpmCmd)
}
