package verifier

import (
	"fmt"
	"strings"

	"github.com/markusressel/tcoracle/internal/fans"
)

type Check string

const (
	CheckPwm Check = "pwm"
	CheckRpm Check = "rpm"
)

// FanDeviation is a fan whose speed is outside of its tolerance
type FanDeviation struct {
	fans.Expectation
	Observed int `json:"observed"`
}

// ConvergenceFailure is returned when the device did not reach the expected
// state within the attempt budget of a check
type ConvergenceFailure struct {
	Class     string         `json:"class"`
	Direction string         `json:"direction"`
	Check     Check          `json:"check"`
	Stimulus  string         `json:"stimulus"`
	Expected  int            `json:"expected"`
	Observed  int            `json:"observed"`
	Tolerance float64        `json:"tolerance"`
	Attempts  int            `json:"attempts"`
	WindowMax float64        `json:"windowMax"`
	Fans      []FanDeviation `json:"fans,omitempty"`
}

func (e *ConvergenceFailure) Error() string {
	switch e.Check {
	case CheckRpm:
		var deviations []string
		for _, f := range e.Fans {
			deviations = append(deviations, fmt.Sprintf("fan%d: expected %d ±%.0f%%, observed %d", f.Fan, f.Rpm, f.Tolerance*100, f.Observed))
		}
		return fmt.Sprintf("rpm check failed for %s (direction=%s, %s) after %d attempts: %s (max deviation %.0f%% over last observations)",
			e.Class, e.Direction, e.Stimulus, e.Attempts, strings.Join(deviations, "; "), e.WindowMax)
	default:
		return fmt.Sprintf("pwm check failed for %s (direction=%s, %s) after %d attempts: expected >= %d%%, observed %d%% (max %.0f%% over last observations)",
			e.Class, e.Direction, e.Stimulus, e.Attempts, e.Expected, e.Observed, e.WindowMax)
	}
}
