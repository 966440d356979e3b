package fan

import (
	"context"
	"fmt"

	"github.com/markusressel/tcoracle/internal"
	"github.com/markusressel/tcoracle/internal/configuration"
	"github.com/markusressel/tcoracle/internal/session"
	"github.com/spf13/cobra"
)

var fanId int

var Command = &cobra.Command{
	Use:              "fan",
	Short:            "Fan related commands",
	Long:             ``,
	TraverseChildren: true,
}

func init() {
	Command.PersistentFlags().IntVarP(
		&fanId,
		"id", "i",
		0,
		"1-based fan (tachometer) number, 0 for all fans",
	)
}

func loadTarget() (*session.Target, error) {
	configuration.DetectAndReadConfigFile()
	return internal.InspectDevice(context.Background())
}

// selectFans returns the fans addressed by the id flag
func selectFans(target *session.Target) ([]int, error) {
	count := target.Topology.Fans()
	if fanId == 0 {
		result := make([]int, 0, count)
		for fan := 1; fan <= count; fan++ {
			result = append(result, fan)
		}
		return result, nil
	}
	if fanId < 0 || fanId > count {
		return nil, fmt.Errorf("no fan with id found: %d, options: 1..%d", fanId, count)
	}
	return []int{fanId}, nil
}
