package fan

import (
	"fmt"
	"strconv"

	"github.com/markusressel/tcoracle/cmd/global"
	"github.com/markusressel/tcoracle/internal"
	"github.com/markusressel/tcoracle/internal/util"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var speedCmd = &cobra.Command{
	Use:   "speed",
	Short: "Get the current RPM reading of a fan, or of all fans",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if fanId != 0 {
			pterm.DisableOutput()
		}

		target, err := loadTarget()
		if err != nil {
			return err
		}
		selected, err := selectFans(target)
		if err != nil {
			return err
		}

		reader := internal.NewInjector()
		if fanId != 0 {
			value, err := reader.Read(target.Topology.FanSpeedPath(fanId))
			if err != nil {
				return err
			}
			rpm, err := util.ParseInt(value)
			if err != nil {
				return err
			}
			fmt.Printf("%d", rpm)
			return nil
		}

		var rows [][]string
		for _, fan := range selected {
			rpmText := "N/A"
			value, err := reader.Read(target.Topology.FanSpeedPath(fan))
			if err == nil {
				if rpm, err := util.ParseInt(value); err == nil {
					rpmText = strconv.Itoa(rpm)
				}
			}
			rows = append(rows, []string{strconv.Itoa(fan), rpmText})
		}
		return global.PrintTable([]string{"Fan", "RPM"}, rows)
	},
}

func init() {
	Command.AddCommand(speedCmd)
}
