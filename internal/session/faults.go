package session

import (
	"fmt"

	"github.com/markusressel/tcoracle/internal/device"
	"github.com/markusressel/tcoracle/internal/dmin"
	"github.com/markusressel/tcoracle/internal/sensors"
)

const (
	absentValue   = "0"
	tachoFault    = "1"
	invalidSensor = "invalid"
)

type skipError struct {
	reason string
}

func (e *skipError) Error() string {
	return e.reason
}

// prepareFault chooses the instance a fault is injected into and returns the injection
func (s *Session) prepareFault(stimulus *Stimulus) (func(injector device.Injector) error, error) {
	write := func(path string, value string) func(injector device.Injector) error {
		stimulus.Target = path
		return func(injector device.Injector) error {
			return injector.Write(path, value)
		}
	}

	opposite := s.direction.Opposite().LegacyValue()

	switch stimulus.Fault {
	case dmin.FanPresence, dmin.FanDirection:
		if s.topology.FanDrawers() <= 0 {
			return nil, &skipError{reason: "system has no fan drawers"}
		}
		stimulus.Index = s.rnd.Intn(s.topology.FanDrawers()) + 1
		if stimulus.Fault == dmin.FanPresence {
			return write(s.topology.FanStatusPath(stimulus.Index), absentValue), nil
		}
		return write(s.topology.FanDirPath(stimulus.Index), opposite), nil

	case dmin.FanTacho:
		if s.topology.Fans() <= 0 {
			return nil, &skipError{reason: "system has no fan tachometers"}
		}
		stimulus.Index = s.rnd.Intn(s.topology.Fans()) + 1
		return write(s.topology.FanFaultPath(stimulus.Index), tachoFault), nil

	case dmin.PsuPresence, dmin.PsuDirection:
		if s.topology.Psus() <= 0 {
			return nil, &skipError{reason: "system has no hot-pluggable psus"}
		}
		stimulus.Index = s.rnd.Intn(s.topology.Psus()) + 1
		if stimulus.Fault == dmin.PsuPresence {
			return write(s.topology.PsuStatusPath(stimulus.Index), absentValue), nil
		}
		return write(s.topology.PsuDirPath(stimulus.Index), opposite), nil

	case dmin.SensorReadError:
		return s.prepareReadError(stimulus)
	}

	return nil, fmt.Errorf("unknown fault: %s", stimulus.Fault)
}

// prepareReadError picks a random temperature sensor, other than the ambient ones
// the fault decision is keyed on, and a random way to break it
func (s *Session) prepareReadError(stimulus *Stimulus) (func(injector device.Injector) error, error) {
	var candidates []sensors.SensorClass
	for _, c := range s.topology.TemperatureClasses() {
		if c.Ambient() {
			continue
		}
		candidates = append(candidates, c)
	}
	if len(candidates) <= 0 {
		return nil, &skipError{reason: "system has no sensor to break"}
	}

	class := candidates[s.rnd.Intn(len(candidates))]
	index, err := s.topology.PickIndex(class.Name, s.rnd)
	if err != nil {
		return nil, err
	}
	paths, err := s.topology.Resolve(class.Name, index)
	if err != nil {
		return nil, err
	}
	path := paths[0]

	stimulus.Class = class.Name
	stimulus.Index = index
	stimulus.Target = path
	stimulus.Variant = dmin.ReadErrorVariants[s.rnd.Intn(len(dmin.ReadErrorVariants))]

	switch stimulus.Variant {
	case dmin.MissingFile:
		return func(injector device.Injector) error {
			return injector.Remove(path)
		}, nil
	default:
		return func(injector device.Injector) error {
			return injector.Write(path, invalidSensor)
		}, nil
	}
}
