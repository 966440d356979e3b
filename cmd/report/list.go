package report

import (
	"strconv"
	"time"

	"github.com/markusressel/tcoracle/cmd/global"
	"github.com/markusressel/tcoracle/internal/ui"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored reports, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openPersistence()
		if err != nil {
			return err
		}
		reports, err := p.ListReports()
		if err != nil {
			return err
		}
		if len(reports) <= 0 {
			ui.Info("No reports stored yet")
			return nil
		}

		var rows [][]string
		for _, r := range reports {
			rows = append(rows, []string{
				r.ID,
				r.Name,
				r.Sku,
				r.Direction.String(),
				r.Started.Format(time.RFC3339),
				strconv.Itoa(r.Passed),
				strconv.Itoa(r.Failed),
				strconv.Itoa(r.Skipped),
			})
		}
		return global.PrintTable([]string{"ID", "Name", "SKU", "Direction", "Started", "Passed", "Failed", "Skipped"}, rows)
	},
}

func init() {
	Command.AddCommand(listCmd)
}
