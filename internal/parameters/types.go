package parameters

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Millidegree is a temperature in 1/1000 °C
type Millidegree int

// DevParameter is the control curve of a sensor
type DevParameter struct {
	ValMin   Millidegree `mapstructure:"val_min" json:"valMin"`
	ValMax   Millidegree `mapstructure:"val_max" json:"valMax"`
	PwmMin   int         `mapstructure:"pwm_min" json:"pwmMin"`
	PwmMax   int         `mapstructure:"pwm_max" json:"pwmMax"`
	PollTime int         `mapstructure:"poll_time" json:"pollTime"`
}

// FanTrend is the linear pwm -> rpm model of one tachometer
type FanTrend struct {
	RpmMin          int      `mapstructure:"rpm_min" json:"rpmMin"`
	RpmMax          int      `mapstructure:"rpm_max" json:"rpmMax"`
	Slope           float64  `mapstructure:"slope" json:"slope"`
	PwmMin          int      `mapstructure:"pwm_min" json:"pwmMin"`
	PwmMaxReduction int      `mapstructure:"pwm_max_reduction" json:"pwmMaxReduction"`
	RpmTolerance    *float64 `mapstructure:"rpm_tolerance" json:"rpmTolerance,omitempty"`
}

// TempRange is an inclusive range of whole degrees celsius
type TempRange struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

func (r TempRange) Contains(degree int) bool {
	return r.Low <= degree && degree <= r.High
}

func (r TempRange) String() string {
	return fmt.Sprintf("%d:%d", r.Low, r.High)
}

// ParseTempRange parses the "<low>:<high>" notation of a dmin table
func ParseTempRange(value string) (TempRange, error) {
	// split at the separating colon, "low" itself may be negative
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return TempRange{}, fmt.Errorf("invalid temperature range '%s', expected '<low>:<high>'", value)
	}
	low, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return TempRange{}, fmt.Errorf("invalid temperature range '%s': %w", value, err)
	}
	high, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return TempRange{}, fmt.Errorf("invalid temperature range '%s': %w", value, err)
	}
	if low > high {
		return TempRange{}, fmt.Errorf("invalid temperature range '%s': low > high", value)
	}
	return TempRange{Low: low, High: high}, nil
}

type RangeEntry struct {
	TempRange
	Pwm int `json:"pwm"`
}

// RangeTable is a dmin table, sorted by the lower bound of its ranges
type RangeTable []RangeEntry

func newRangeTable(values map[TempRange]int) RangeTable {
	table := make(RangeTable, 0, len(values))
	for r, pwm := range values {
		table = append(table, RangeEntry{TempRange: r, Pwm: pwm})
	}
	sort.Slice(table, func(i, j int) bool {
		if table[i].Low == table[j].Low {
			return table[i].High < table[j].High
		}
		return table[i].Low < table[j].Low
	})
	return table
}

// SubtypeNone is the subtype of single level dmin categories like "sensor_read_error"
const SubtypeNone = ""
