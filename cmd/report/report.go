package report

import (
	"github.com/markusressel/tcoracle/internal/configuration"
	"github.com/markusressel/tcoracle/internal/persistence"
	"github.com/spf13/cobra"
)

var Command = &cobra.Command{
	Use:              "report",
	Short:            "Stored verification report related commands",
	TraverseChildren: true,
}

func openPersistence() (persistence.Persistence, error) {
	configuration.DetectAndReadConfigFile()
	p := persistence.NewPersistence(configuration.CurrentConfig.DbPath)
	if err := p.Init(); err != nil {
		return nil, err
	}
	return p, nil
}
