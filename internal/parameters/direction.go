package parameters

import (
	"fmt"
	"strings"
)

// FanDirection is the airflow direction of the fan drawers of a system
type FanDirection int

const (
	// C2P is connector (port) side to power side airflow
	C2P FanDirection = iota
	// P2C is power side to connector (port) side airflow
	P2C
)

var Directions = []FanDirection{C2P, P2C}

func (d FanDirection) String() string {
	switch d {
	case C2P:
		return "C2P"
	case P2C:
		return "P2C"
	}
	return fmt.Sprintf("FanDirection(%d)", int(d))
}

// LegacyValue is the value a fan drawer "dir" file reports for this direction
func (d FanDirection) LegacyValue() string {
	if d == P2C {
		return "0"
	}
	return "1"
}

func (d FanDirection) Opposite() FanDirection {
	if d == P2C {
		return C2P
	}
	return P2C
}

// ParseDirection accepts both the tc_config keys ("C2P", "P2C") and the
// legacy drawer file values ("1", "0")
func ParseDirection(value string) (FanDirection, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "C2P", "1":
		return C2P, nil
	case "P2C", "0":
		return P2C, nil
	}
	return C2P, fmt.Errorf("unknown fan direction: '%s'", value)
}

func (d FanDirection) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *FanDirection) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
