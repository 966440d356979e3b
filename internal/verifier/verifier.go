package verifier

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/markusressel/tcoracle/internal/device"
	"github.com/markusressel/tcoracle/internal/fans"
	"github.com/markusressel/tcoracle/internal/parameters"
	"github.com/markusressel/tcoracle/internal/sensors"
	"github.com/markusressel/tcoracle/internal/ui"
	"github.com/markusressel/tcoracle/internal/util"
)

type State int

const (
	Waiting State = iota
	Settled
)

func (s State) String() string {
	if s == Settled {
		return "SETTLED"
	}
	return "WAITING"
}

// Subject identifies what a check is verifying, it is carried into failures
type Subject struct {
	Class     sensors.Class
	Direction parameters.FanDirection
	Stimulus  string
}

// Observation is the device state at the end of a successful check
type Observation struct {
	Pwm      int         `json:"pwm"`
	Rpms     map[int]int `json:"rpms,omitempty"`
	Attempts int         `json:"attempts"`
}

// Verifier polls the device until it reaches an expected state
type Verifier struct {
	reader   device.Reader
	topology *sensors.Topology
	config   Config

	mu    sync.Mutex
	state State
}

func New(reader device.Reader, topology *sensors.Topology, config Config) *Verifier {
	if config.WindowSize <= 0 {
		config.WindowSize = DefaultWindowSize
	}
	return &Verifier{
		reader:   reader,
		topology: topology,
		config:   config,
		state:    Waiting,
	}
}

func (v *Verifier) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *Verifier) setState(state State) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = state
}

// ReadPwm returns the current pwm of the system in percent
func (v *Verifier) ReadPwm() (int, error) {
	value, err := v.reader.Read(v.topology.PwmPath())
	if err != nil {
		return 0, err
	}
	raw, err := util.ParseInt(value)
	if err != nil {
		return 0, fmt.Errorf("invalid pwm '%s': %w", value, err)
	}
	return util.RawPwmToPercent(raw), nil
}

// ReadRpms returns the current speed of every fan, by 1-based fan number
func (v *Verifier) ReadRpms() (map[int]int, error) {
	result := map[int]int{}
	for _, fan := range util.Range(1, v.topology.Fans()) {
		value, err := v.reader.Read(v.topology.FanSpeedPath(fan))
		if err != nil {
			return nil, err
		}
		rpm, err := util.ParseInt(value)
		if err != nil {
			return nil, fmt.Errorf("invalid rpm '%s' of fan %d: %w", value, fan, err)
		}
		result[fan] = rpm
	}
	return result, nil
}

// WaitForPwm polls the pwm until it reaches at least expected, the attempt budget
// follows the settle policy of the subject class
func (v *Verifier) WaitForPwm(ctx context.Context, subject Subject, pollTime int, expected int) (Observation, error) {
	v.setState(Waiting)

	budget := v.config.PolicyFor(subject.Class).Budget(pollTime)
	window := util.CreateRollingWindow(v.config.WindowSize)
	observed := 0

	retry := util.Retry{Attempts: budget, Delay: v.config.PwmPollDelay, Sleep: v.config.Sleep}
	attempts, err := retry.Until(ctx, func(attempt int) (bool, error) {
		pwm, err := v.ReadPwm()
		if err != nil {
			ui.Debug("Unable to read pwm (attempt %d/%d): %v", attempt, budget, err)
			return false, nil
		}
		observed = pwm
		window.Append(float64(pwm))
		ui.Debug("%s: pwm %d%%, expecting >= %d%% (attempt %d/%d)", subject.Class, pwm, expected, attempt, budget)
		return pwm >= expected, nil
	})
	if err != nil {
		if !errors.Is(err, util.ErrRetriesExhausted) {
			return Observation{Pwm: observed, Attempts: attempts}, err
		}
		return Observation{Pwm: observed, Attempts: attempts}, &ConvergenceFailure{
			Class:     string(subject.Class),
			Direction: subject.Direction.String(),
			Check:     CheckPwm,
			Stimulus:  subject.Stimulus,
			Expected:  expected,
			Observed:  observed,
			Attempts:  attempts,
			WindowMax: util.WindowMax(window),
		}
	}

	v.setState(Settled)
	return Observation{Pwm: observed, Attempts: attempts}, nil
}

// VerifyRpm checks every fan independently against its expectation
func (v *Verifier) VerifyRpm(ctx context.Context, subject Subject, expectations []fans.Expectation) (Observation, error) {
	v.setState(Waiting)

	window := util.CreateRollingWindow(v.config.WindowSize)
	var observed map[int]int

	retry := util.Retry{Attempts: v.config.RpmAttempts, Delay: v.config.FanRelaxDelay, Sleep: v.config.Sleep}
	attempts, err := retry.Until(ctx, func(attempt int) (bool, error) {
		rpms, err := v.ReadRpms()
		if err != nil {
			ui.Debug("Unable to read fan speeds (attempt %d/%d): %v", attempt, v.config.RpmAttempts, err)
			return false, nil
		}
		observed = rpms
		outliers, maxDeviation := checkRpms(expectations, rpms)
		window.Append(maxDeviation * 100)
		ui.Debug("%s: %d of %d fans outside tolerance (attempt %d/%d)", subject.Class, len(outliers), len(expectations), attempt, v.config.RpmAttempts)
		return len(outliers) == 0, nil
	})
	if err != nil {
		if !errors.Is(err, util.ErrRetriesExhausted) {
			return Observation{Rpms: observed, Attempts: attempts}, err
		}
		var deviations []FanDeviation
		if observed != nil {
			deviations, _ = checkRpms(expectations, observed)
		}
		failure := &ConvergenceFailure{
			Class:     string(subject.Class),
			Direction: subject.Direction.String(),
			Check:     CheckRpm,
			Stimulus:  subject.Stimulus,
			Attempts:  attempts,
			WindowMax: util.WindowMax(window),
			Fans:      deviations,
		}
		if len(deviations) > 0 {
			failure.Expected = deviations[0].Rpm
			failure.Observed = deviations[0].Observed
			failure.Tolerance = deviations[0].Tolerance
		}
		return Observation{Rpms: observed, Attempts: attempts}, failure
	}

	v.setState(Settled)
	return Observation{Rpms: observed, Attempts: attempts}, nil
}

// checkRpms returns the fans outside their tolerance and the highest relative deviation
func checkRpms(expectations []fans.Expectation, rpms map[int]int) ([]FanDeviation, float64) {
	var result []FanDeviation
	maxDeviation := 0.0
	for _, e := range expectations {
		observed, ok := rpms[e.Fan]
		if e.Rpm != 0 {
			deviation := math.Abs(float64(observed-e.Rpm)) / float64(e.Rpm)
			maxDeviation = math.Max(maxDeviation, deviation)
		}
		if !ok || !fans.WithinTolerance(observed, e.Rpm, e.Tolerance) {
			result = append(result, FanDeviation{Expectation: e, Observed: observed})
		}
	}
	return result, maxDeviation
}
