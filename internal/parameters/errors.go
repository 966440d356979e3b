package parameters

import (
	"fmt"
	"strings"
)

// ConfigurationError is a fatal mismatch between the thermal control
// configuration and the system or stimulus it is applied to.
// It is never retried.
type ConfigurationError struct {
	Class     string
	Direction string
	Value     string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	var details []string
	if e.Class != "" {
		details = append(details, "class="+e.Class)
	}
	if e.Direction != "" {
		details = append(details, "direction="+e.Direction)
	}
	if e.Value != "" {
		details = append(details, "value="+e.Value)
	}
	if len(details) == 0 {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error (%s): %s", strings.Join(details, ", "), e.Reason)
}
