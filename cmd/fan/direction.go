package fan

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var directionCmd = &cobra.Command{
	Use:   "direction",
	Short: "Print the airflow direction detected from the fan drawers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.DisableOutput()

		target, err := loadTarget()
		if err != nil {
			return err
		}
		fmt.Printf("%s", target.Direction)
		return nil
	},
}

func init() {
	Command.AddCommand(directionCmd)
}
