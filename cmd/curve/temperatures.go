package curve

import (
	"github.com/markusressel/tcoracle/internal/util"
)

func parseTemperatures(args []string) ([]int, error) {
	result := make([]int, 0, len(args))
	for _, arg := range args {
		value, err := util.ParseInt(arg)
		if err != nil {
			return nil, err
		}
		result = append(result, value)
	}
	return result, nil
}
