package dmin

import (
	"fmt"
	"strings"

	"github.com/markusressel/tcoracle/internal/parameters"
	"github.com/markusressel/tcoracle/internal/ui"
	"github.com/markusressel/tcoracle/internal/util"
)

const (
	// CoverageLow and CoverageHigh bound the temperatures (in degree) every dmin table has to cover
	CoverageLow  = -127
	CoverageHigh = 120
)

// Lookup returns the pwm of the first range containing the given temperature (in degree).
// Tables are ordered by lower bound, not by document order which a json object
// does not keep. Both only differ for overlapping ranges, which CheckCoverage reports.
func Lookup(table parameters.RangeTable, degree int) (int, bool) {
	for _, entry := range table {
		if entry.Contains(degree) {
			return entry.Pwm, true
		}
	}
	return 0, false
}

// ExpectedPwmUnderFault returns the minimum pwm the thermal control has to apply
// while the given fault is present, for an ambient temperature in millidegree
func ExpectedPwmUnderFault(params *parameters.Parameters, direction parameters.FanDirection, fault FaultKind, temperature int) (int, error) {
	category, subtype := fault.Table()
	table, err := params.Dmin(direction, category, subtype)
	if err != nil {
		return 0, err
	}

	degree := util.MilliToDegree(temperature)
	pwm, ok := Lookup(table, degree)
	if !ok {
		return 0, &parameters.ConfigurationError{
			Class:     tableName(category, subtype),
			Direction: direction.String(),
			Value:     fmt.Sprintf("temperature=%d", temperature),
			Reason:    fmt.Sprintf("no dmin range contains %d°C", degree),
		}
	}

	ui.Debug("Fault %s (%s) at %d°C: expected pwm >= %d%%", fault, direction, degree, pwm)
	return pwm, nil
}

// AmbientTemperature is the temperature all fault decisions are keyed on
func AmbientTemperature(port int, fan int) int {
	return util.Min([]int{port, fan})
}

func tableName(category string, subtype string) string {
	if subtype == parameters.SubtypeNone {
		return category
	}
	return category + "/" + subtype
}

// CoverageError lists the temperatures a dmin table maps to no or multiple ranges
type CoverageError struct {
	Table    string
	Gaps     []parameters.TempRange
	Overlaps []parameters.TempRange
}

func (e *CoverageError) Error() string {
	var parts []string
	if len(e.Gaps) > 0 {
		parts = append(parts, "gaps "+joinRanges(e.Gaps))
	}
	if len(e.Overlaps) > 0 {
		parts = append(parts, "overlaps "+joinRanges(e.Overlaps))
	}
	return fmt.Sprintf("dmin table %s: %s", e.Table, strings.Join(parts, ", "))
}

func joinRanges(ranges []parameters.TempRange) string {
	var result []string
	for _, r := range ranges {
		result = append(result, r.String())
	}
	return strings.Join(result, " ")
}

// CheckCoverage verifies every degree in [low, high] is contained in exactly one range of the table
func CheckCoverage(table parameters.RangeTable, low int, high int) error {
	var gaps, overlaps []int
	for _, degree := range util.Range(low, high) {
		matches := 0
		for _, entry := range table {
			if entry.Contains(degree) {
				matches++
			}
		}
		switch {
		case matches == 0:
			gaps = append(gaps, degree)
		case matches > 1:
			overlaps = append(overlaps, degree)
		}
	}
	if len(gaps) == 0 && len(overlaps) == 0 {
		return nil
	}
	return &CoverageError{
		Gaps:     compress(gaps),
		Overlaps: compress(overlaps),
	}
}

// CheckAllCoverage checks every dmin table of a direction
func CheckAllCoverage(params *parameters.Parameters, direction parameters.FanDirection, low int, high int) []error {
	var result []error
	for _, pair := range params.DminTables(direction) {
		table, err := params.Dmin(direction, pair[0], pair[1])
		if err != nil {
			result = append(result, err)
			continue
		}
		if err := CheckCoverage(table, low, high); err != nil {
			coverageError := err.(*CoverageError)
			coverageError.Table = direction.String() + "/" + tableName(pair[0], pair[1])
			result = append(result, coverageError)
		}
	}
	return result
}

// compress turns sorted degrees into contiguous ranges
func compress(degrees []int) []parameters.TempRange {
	var result []parameters.TempRange
	for _, d := range degrees {
		if n := len(result); n > 0 && result[n-1].High+1 == d {
			result[n-1].High = d
			continue
		}
		result = append(result, parameters.TempRange{Low: d, High: d})
	}
	return result
}
