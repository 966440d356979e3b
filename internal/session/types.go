package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/markusressel/tcoracle/internal/dmin"
	"github.com/markusressel/tcoracle/internal/fans"
	"github.com/markusressel/tcoracle/internal/parameters"
	"github.com/markusressel/tcoracle/internal/sensors"
)

type Kind string

const (
	KindTemperature Kind = "temperature"
	KindFault       Kind = "fault"
)

// Stimulus is a single change applied to the device
type Stimulus struct {
	Kind  Kind          `json:"kind"`
	Class sensors.Class `json:"class,omitempty"`
	Index int           `json:"index,omitempty"`
	// Temperatures holds one reading (in millidegree) per resolved sensor path,
	// for faults the port and fan ambient readings
	Temperatures []int                 `json:"temperatures"`
	Fault        dmin.FaultKind        `json:"fault"`
	Variant      dmin.ReadErrorVariant `json:"variant"`
	// Target is the file the fault was injected into
	Target    string    `json:"target,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (s Stimulus) Name() string {
	if s.Kind == KindFault {
		return s.Fault.String()
	}
	if s.Index > 0 {
		c, ok := sensors.CatalogClass(s.Class)
		if ok && c.Indexed() {
			return c.InstanceName(s.Index)
		}
	}
	return string(s.Class)
}

func (s Stimulus) String() string {
	var temperatures []string
	for _, t := range s.Temperatures {
		temperatures = append(temperatures, fmt.Sprintf("%d", t))
	}
	result := fmt.Sprintf("%s=%s", s.Name(), strings.Join(temperatures, "/"))
	if s.Kind == KindFault && s.Fault == dmin.SensorReadError {
		result += fmt.Sprintf(" %s(%s)", s.Variant, s.Target)
	}
	return result
}

// ExpectedState is the state the thermal control should bring the device into
type ExpectedState struct {
	// Pwm is the lowest acceptable pwm in percent
	Pwm  int                `json:"pwm"`
	Fans []fans.Expectation `json:"fans,omitempty"`
}

type ObservedState struct {
	Pwm  int         `json:"pwm"`
	Rpms map[int]int `json:"rpms,omitempty"`
	// State is the verifier state after the last check, SETTLED or WAITING
	State string `json:"state"`
}

type Result struct {
	ID        string                  `json:"id"`
	Direction parameters.FanDirection `json:"direction"`
	Stimulus  Stimulus                `json:"stimulus"`
	Expected  ExpectedState           `json:"expected"`
	Observed  ObservedState           `json:"observed"`
	Attempts  int                     `json:"attempts"`
	Passed    bool                    `json:"passed"`
	Skipped   bool                    `json:"skipped,omitempty"`
	Error     string                  `json:"error,omitempty"`
	Started   time.Time               `json:"started"`
	Finished  time.Time               `json:"finished"`
}

// Report is the outcome of a verification session
type Report struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	Sku       string                  `json:"sku"`
	Direction parameters.FanDirection `json:"direction"`
	Seed      int64                   `json:"seed"`
	Started   time.Time               `json:"started"`
	Finished  time.Time               `json:"finished"`
	Results   []Result                `json:"results"`
	Passed    int                     `json:"passed"`
	Failed    int                     `json:"failed"`
	Skipped   int                     `json:"skipped"`
}

// Success is true when no result of the report failed
func (r *Report) Success() bool {
	return r.Failed == 0
}
