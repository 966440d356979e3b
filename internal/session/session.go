package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/markusressel/tcoracle/internal/curves"
	"github.com/markusressel/tcoracle/internal/device"
	"github.com/markusressel/tcoracle/internal/dmin"
	"github.com/markusressel/tcoracle/internal/fans"
	"github.com/markusressel/tcoracle/internal/parameters"
	"github.com/markusressel/tcoracle/internal/sensors"
	"github.com/markusressel/tcoracle/internal/ui"
	"github.com/markusressel/tcoracle/internal/util"
	"github.com/markusressel/tcoracle/internal/verifier"
	cmap "github.com/orcaman/concurrent-map/v2"
)

const (
	// AmbientSpread is added to the fan ambient reading of a stimulus so the
	// port ambient is always the lower one
	AmbientSpread = 2000
	// FallbackPollTime is used for faults when no sensor_amb curve exists
	FallbackPollTime = 30
)

var DefaultFaultTemperatures = []int{25000, 40000}

type Config struct {
	// TcConfigPath overrides <thermalRoot>/config/tc_config.json
	TcConfigPath string
	Discovery    sensors.DiscoveryConfig
	Fans         fans.Defaults
	Verifier     verifier.Config
	// Seed of the random instance and fault variant choices, 0 picks one
	Seed int64
	// Classes limits the sensor classes tested by Run, empty means all
	Classes []sensors.Class
	// Faults limits the faults tested by Run, empty means all
	Faults []dmin.FaultKind
	// FaultTemperatures are the ambient temperatures every fault is tested at
	FaultTemperatures []int
	// CheckRpm enables the fan speed check after the pwm settled
	CheckRpm bool
}

// Session verifies the thermal control of a single device
type Session struct {
	injector  device.Injector
	config    Config
	params    *parameters.Parameters
	topology  *sensors.Topology
	direction parameters.FanDirection
	verifier  *verifier.Verifier
	rnd       *rand.Rand
	seed      int64

	results  cmap.ConcurrentMap[string, Result]
	mu       sync.Mutex
	sequence int
}

// New discovers the device and loads its thermal control configuration
func New(ctx context.Context, injector device.Injector, config Config) (*Session, error) {
	target, err := Inspect(ctx, injector, config)
	if err != nil {
		return nil, err
	}
	params, topology, direction := target.Parameters, target.Topology, target.Direction

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if config.Fans.RpmMax <= 0 {
		config.Fans.RpmMax = fans.DefaultRpmMax
	}
	if len(config.FaultTemperatures) <= 0 {
		config.FaultTemperatures = DefaultFaultTemperatures
	}

	ui.Info("Verifying '%s' (sku %s, %s, seed %d)", params.Name(), topology.Sku(), direction, seed)

	return &Session{
		injector:  injector,
		config:    config,
		params:    params,
		topology:  topology,
		direction: direction,
		verifier:  verifier.New(injector, topology, config.Verifier),
		rnd:       rand.New(rand.NewSource(seed)),
		seed:      seed,
		results:   cmap.New[Result](),
	}, nil
}

func (s *Session) Parameters() *parameters.Parameters {
	return s.params
}

func (s *Session) Topology() *sensors.Topology {
	return s.topology
}

func (s *Session) Direction() parameters.FanDirection {
	return s.direction
}

func (s *Session) Seed() int64 {
	return s.seed
}

// Expect predicts the device state for a stimulus
func (s *Session) Expect(stimulus Stimulus) (ExpectedState, error) {
	var pwm int
	var err error

	switch stimulus.Kind {
	case KindTemperature:
		class, ok := s.topology.Class(stimulus.Class)
		if !ok {
			return ExpectedState{}, &parameters.ConfigurationError{Class: string(stimulus.Class), Reason: "unknown sensor class"}
		}
		pwm, err = curves.ExpectedPwmForClass(s.params, class, stimulus.Index, stimulus.Temperatures...)
	case KindFault:
		if len(stimulus.Temperatures) != 2 {
			return ExpectedState{}, fmt.Errorf("fault stimulus needs port and fan ambient temperature, got %v", stimulus.Temperatures)
		}
		ambient := dmin.AmbientTemperature(stimulus.Temperatures[0], stimulus.Temperatures[1])
		pwm, err = dmin.ExpectedPwmUnderFault(s.params, s.direction, stimulus.Fault, ambient)
	default:
		return ExpectedState{}, fmt.Errorf("unknown stimulus kind: %s", stimulus.Kind)
	}
	if err != nil {
		return ExpectedState{}, err
	}

	expectations, err := fans.ExpectedRpms(s.params, s.direction, s.topology, pwm, s.config.Fans)
	if err != nil {
		return ExpectedState{}, err
	}
	return ExpectedState{Pwm: pwm, Fans: expectations}, nil
}

// StimulusTemperature returns the temperature a sensor class is tested at, the middle of its curve
func (s *Session) StimulusTemperature(class sensors.SensorClass, index int) (int, error) {
	param, err := s.params.DevParameter(class.Selector, class.InstanceName(index))
	if err != nil {
		return 0, err
	}
	if param.ValMax == param.ValMin {
		return int(param.ValMax), nil
	}
	return int(param.ValMin+param.ValMax) / 2, nil
}

// RunSensorScenario sets a sensor of the given class to temperature and verifies the reaction
// of the thermal control. A temperature of 0 selects StimulusTemperature.
func (s *Session) RunSensorScenario(ctx context.Context, name sensors.Class, temperature int) (Result, error) {
	class, ok := s.topology.Class(name)
	if !ok || class.Count <= 0 || !class.Temperature {
		return Result{}, &parameters.ConfigurationError{Class: string(name), Reason: "no temperature sensor of this class on the system"}
	}
	index, err := s.topology.PickIndex(name, s.rnd)
	if err != nil {
		return Result{}, err
	}
	// every ambient stimulus drives both ambient files, the sibling of a
	// single ambient sensor is held above it so the stimulated one controls
	resolveAs := name
	if class.Ambient() {
		resolveAs = sensors.ClassAmbient
	}
	paths, err := s.topology.Resolve(resolveAs, index)
	if err != nil {
		return Result{}, err
	}
	if temperature == 0 {
		temperature, err = s.StimulusTemperature(class, index)
		if err != nil {
			return Result{}, err
		}
	}

	// ambient temperatures are in port, fan order
	temperatures := []int{temperature}
	switch name {
	case sensors.ClassAmbient, sensors.ClassPortAmb:
		temperatures = []int{temperature, temperature + AmbientSpread}
	case sensors.ClassFanAmb:
		temperatures = []int{temperature + AmbientSpread, temperature}
	}
	stimulus := Stimulus{
		Kind:         KindTemperature,
		Class:        name,
		Index:        index,
		Temperatures: temperatures,
	}

	param, err := s.params.DevParameter(class.Selector, class.InstanceName(index))
	if err != nil {
		return Result{}, err
	}

	return s.run(ctx, stimulus, param.PollTime, func(injector device.Injector) error {
		for i, p := range paths {
			if err := injector.Write(p, strconv.Itoa(temperatures[i])); err != nil {
				return err
			}
		}
		return nil
	})
}

// RunFaultScenario injects a fault at the given ambient temperature and verifies
// the thermal control applies at least the dmin pwm
func (s *Session) RunFaultScenario(ctx context.Context, fault dmin.FaultKind, temperature int) (Result, error) {
	stimulus := Stimulus{
		Kind:         KindFault,
		Fault:        fault,
		Temperatures: []int{temperature, temperature + AmbientSpread},
	}

	inject, err := s.prepareFault(&stimulus)
	if err != nil {
		var skip *skipError
		if errors.As(err, &skip) {
			return s.skip(stimulus, skip.reason), nil
		}
		return Result{}, err
	}

	pollTime := FallbackPollTime
	if param, err := s.params.DevParameter("sensor_amb", "sensor_amb"); err == nil {
		pollTime = param.PollTime
	}

	ambientPaths, err := s.topology.Resolve(sensors.ClassAmbient, 1)
	if err != nil {
		return Result{}, err
	}

	return s.run(ctx, stimulus, pollTime, func(injector device.Injector) error {
		for i, p := range ambientPaths {
			if err := injector.Write(p, strconv.Itoa(stimulus.Temperatures[i])); err != nil {
				return err
			}
		}
		return inject(injector)
	})
}

// run applies a stimulus inside a restore scope and verifies the outcome
func (s *Session) run(ctx context.Context, stimulus Stimulus, pollTime int, apply func(injector device.Injector) error) (Result, error) {
	expected, err := s.Expect(stimulus)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		ID:        s.nextId(stimulus),
		Direction: s.direction,
		Expected:  expected,
		Started:   time.Now(),
	}
	subject := verifier.Subject{Class: stimulus.Class, Direction: s.direction}
	if stimulus.Kind == KindFault {
		subject.Class = sensors.Class(stimulus.Fault.String())
	}

	ui.Step("%s: %s, expecting pwm >= %d%%", result.ID, stimulus, expected.Pwm)

	var failure *verifier.ConvergenceFailure
	err = device.Scoped(s.injector, func(injector device.Injector) error {
		stimulus.Timestamp = time.Now()
		if err := apply(injector); err != nil {
			return err
		}
		subject.Stimulus = stimulus.String()

		observation, err := s.verifier.WaitForPwm(ctx, subject, pollTime, expected.Pwm)
		result.Observed.Pwm = observation.Pwm
		result.Attempts = observation.Attempts
		if err != nil {
			return err
		}

		if !s.config.CheckRpm {
			return nil
		}
		// fans follow the pwm actually applied, which may exceed the expectation
		rpmExpectations, err := fans.ExpectedRpms(s.params, s.direction, s.topology, observation.Pwm, s.config.Fans)
		if err != nil {
			return err
		}
		result.Expected.Fans = rpmExpectations
		observation, err = s.verifier.VerifyRpm(ctx, subject, rpmExpectations)
		result.Observed.Rpms = observation.Rpms
		result.Attempts += observation.Attempts
		return err
	})
	result.Stimulus = stimulus
	result.Observed.State = s.verifier.State().String()
	result.Finished = time.Now()

	var restoreError *device.RestoreError
	switch {
	case err == nil:
		result.Passed = true
		ui.Success("%s passed (pwm %d%%)", result.ID, result.Observed.Pwm)
	case errors.As(err, &restoreError):
		// the device state is unknown, no further scenario can run
		result.Error = err.Error()
		s.store(result)
		return result, err
	case errors.As(err, &failure):
		result.Error = failure.Error()
		ui.Error("%s failed: %v", result.ID, failure)
	default:
		result.Error = err.Error()
		s.store(result)
		return result, err
	}

	s.store(result)
	return result, nil
}

func (s *Session) skip(stimulus Stimulus, reason string) Result {
	result := Result{
		ID:        s.nextId(stimulus),
		Direction: s.direction,
		Stimulus:  stimulus,
		Skipped:   true,
		Error:     reason,
		Started:   time.Now(),
		Finished:  time.Now(),
	}
	ui.Warning("%s skipped: %s", result.ID, reason)
	s.store(result)
	return result
}

func (s *Session) nextId(stimulus Stimulus) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequence++
	return fmt.Sprintf("%03d-%s", s.sequence, stimulus.Name())
}

func (s *Session) store(result Result) {
	s.results.Set(result.ID, result)
}

// Results returns all results recorded so far, ordered by id
func (s *Session) Results() []Result {
	items := s.results.Items()
	result := make([]Result, 0, len(items))
	for _, id := range util.SortedKeys(items) {
		result = append(result, items[id])
	}
	return result
}

func (s *Session) Result(id string) (Result, bool) {
	return s.results.Get(id)
}

// Run tests every temperature sensor class followed by every fault
func (s *Session) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		ID:        time.Now().UTC().Format("20060102-150405"),
		Name:      s.params.Name(),
		Sku:       s.topology.Sku(),
		Direction: s.direction,
		Seed:      s.seed,
		Started:   time.Now(),
	}

	for _, class := range s.topology.TemperatureClasses() {
		if len(s.config.Classes) > 0 && !util.Contains(s.config.Classes, class.Name) {
			continue
		}
		if _, err := s.RunSensorScenario(ctx, class.Name, 0); err != nil {
			return s.finish(report), err
		}
	}

	faults := dmin.Faults
	if len(s.config.Faults) > 0 {
		faults = s.config.Faults
	}
	for _, fault := range faults {
		for _, temperature := range s.config.FaultTemperatures {
			if _, err := s.RunFaultScenario(ctx, fault, temperature); err != nil {
				return s.finish(report), err
			}
		}
	}

	return s.finish(report), nil
}

func (s *Session) finish(report *Report) *Report {
	report.Finished = time.Now()
	report.Results = s.Results()
	report.Passed, report.Failed, report.Skipped = 0, 0, 0
	for _, r := range report.Results {
		switch {
		case r.Skipped:
			report.Skipped++
		case r.Passed:
			report.Passed++
		default:
			report.Failed++
		}
	}
	return report
}
