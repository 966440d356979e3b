package report

import (
	"github.com/markusressel/tcoracle/internal/ui"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openPersistence()
		if err != nil {
			return err
		}
		if err := p.DeleteReport(args[0]); err != nil {
			return err
		}
		ui.Success("Deleted report %s", args[0])
		return nil
	},
}

func init() {
	Command.AddCommand(deleteCmd)
}
