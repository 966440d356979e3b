package report

import (
	"strconv"

	"github.com/markusressel/tcoracle/cmd/global"
	"github.com/markusressel/tcoracle/internal/session"
	"github.com/markusressel/tcoracle/internal/ui"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the results of a stored report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openPersistence()
		if err != nil {
			return err
		}
		report, err := p.LoadReport(args[0])
		if err != nil {
			return err
		}

		ui.Printfln("> %s (sku %s, %s, seed %d)", report.Name, report.Sku, report.Direction, report.Seed)

		var rows [][]string
		for _, result := range report.Results {
			rows = append(rows, []string{
				result.ID,
				result.Stimulus.String(),
				strconv.Itoa(result.Expected.Pwm),
				strconv.Itoa(result.Observed.Pwm),
				strconv.Itoa(result.Attempts),
				outcome(result),
			})
		}
		if err := global.PrintTable([]string{"ID", "Stimulus", "Expected", "Observed", "Attempts", "Result"}, rows); err != nil {
			return err
		}

		for _, result := range report.Results {
			if result.Error != "" {
				ui.Warning("%s: %s", result.ID, result.Error)
			}
		}
		return nil
	},
}

func outcome(result session.Result) string {
	switch {
	case result.Skipped:
		return "skipped"
	case result.Passed:
		return "passed"
	}
	return "failed"
}

func init() {
	Command.AddCommand(showCmd)
}
