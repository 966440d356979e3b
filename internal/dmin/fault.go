package dmin

import (
	"fmt"

	"github.com/markusressel/tcoracle/internal/parameters"
)

const (
	CategoryTrusted         = "trusted"
	CategoryUntrusted       = "untrusted"
	CategoryFanErr          = "fan_err"
	CategoryPsuErr          = "psu_err"
	CategorySensorReadError = "sensor_read_error"

	SubtypePresent   = "present"
	SubtypeDirection = "direction"
	SubtypeTacho     = "tacho"
)

// FaultKind is a failure of the system the thermal control reacts to with a minimum pwm
type FaultKind int

const (
	FanPresence FaultKind = iota
	FanDirection
	FanTacho
	PsuPresence
	PsuDirection
	SensorReadError
)

// Faults lists every fault kind, in test sequence order
var Faults = []FaultKind{FanPresence, FanDirection, FanTacho, PsuPresence, PsuDirection, SensorReadError}

func (k FaultKind) String() string {
	switch k {
	case FanPresence:
		return "fan_presence"
	case FanDirection:
		return "fan_direction"
	case FanTacho:
		return "fan_tacho"
	case PsuPresence:
		return "psu_presence"
	case PsuDirection:
		return "psu_direction"
	case SensorReadError:
		return "sensor_read_error"
	}
	return fmt.Sprintf("FaultKind(%d)", int(k))
}

// ParseFaultKind is the inverse of FaultKind.String
func ParseFaultKind(value string) (FaultKind, error) {
	for _, k := range Faults {
		if k.String() == value {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown fault: '%s'", value)
}

func (k FaultKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *FaultKind) UnmarshalText(text []byte) error {
	parsed, err := ParseFaultKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Table returns the dmin category and subtype holding the minimum pwm of this fault
func (k FaultKind) Table() (category string, subtype string) {
	switch k {
	case FanPresence:
		return CategoryFanErr, SubtypePresent
	case FanDirection:
		return CategoryFanErr, SubtypeDirection
	case FanTacho:
		return CategoryFanErr, SubtypeTacho
	case PsuPresence:
		return CategoryPsuErr, SubtypePresent
	case PsuDirection:
		return CategoryPsuErr, SubtypeDirection
	}
	return CategorySensorReadError, parameters.SubtypeNone
}

// ReadErrorVariant is the way a sensor read error is provoked
type ReadErrorVariant int

const (
	MissingFile ReadErrorVariant = iota
	InvalidValue
)

var ReadErrorVariants = []ReadErrorVariant{MissingFile, InvalidValue}

func (v ReadErrorVariant) String() string {
	switch v {
	case MissingFile:
		return "missing_file"
	case InvalidValue:
		return "invalid_value"
	}
	return fmt.Sprintf("ReadErrorVariant(%d)", int(v))
}

func (v ReadErrorVariant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *ReadErrorVariant) UnmarshalText(text []byte) error {
	for _, candidate := range ReadErrorVariants {
		if candidate.String() == string(text) {
			*v = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown sensor read error variant: '%s'", string(text))
}
