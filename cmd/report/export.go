package report

import (
	"github.com/markusressel/tcoracle/internal/ui"
	"github.com/markusressel/tcoracle/internal/util"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <id> <file>",
	Short: "Write a stored report as json",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openPersistence()
		if err != nil {
			return err
		}
		report, err := p.LoadReport(args[0])
		if err != nil {
			return err
		}

		path, err := util.ExpandPath(args[1])
		if err != nil {
			return err
		}
		if err := util.WriteJSONAtomic(path, report); err != nil {
			return err
		}
		ui.Success("Exported report %s to %s", report.ID, path)
		return nil
	},
}

func init() {
	Command.AddCommand(exportCmd)
}
