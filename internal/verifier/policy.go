package verifier

import (
	"context"
	"time"

	"github.com/markusressel/tcoracle/internal/sensors"
)

const (
	DefaultGrowMargin    = 10
	DefaultPwmPollDelay  = 1 * time.Second
	DefaultRpmAttempts   = 3
	DefaultFanRelaxDelay = 10 * time.Second
	DefaultWindowSize    = 10
)

// SettlePolicy defines how many pwm polls a sensor class gets to reach the expected value
type SettlePolicy struct {
	// Attempts is a fixed budget, it takes precedence when > 0
	Attempts int `json:"attempts,omitempty" mapstructure:"attempts"`
	// PollTimeFactor scales the poll_time of the sensor
	PollTimeFactor int `json:"pollTimeFactor,omitempty" mapstructure:"pollTimeFactor"`
	// GrowMargin is added to the scaled poll_time
	GrowMargin int `json:"growMargin,omitempty" mapstructure:"growMargin"`
}

// Budget returns the number of attempts for a sensor with the given poll_time
func (p SettlePolicy) Budget(pollTime int) int {
	if p.Attempts > 0 {
		return p.Attempts
	}
	factor := p.PollTimeFactor
	if factor <= 0 {
		factor = 1
	}
	budget := pollTime*factor + p.GrowMargin
	if budget < 1 {
		return 1
	}
	return budget
}

// DefaultSettlePolicies are the classes the firmware settles materially slower for
func DefaultSettlePolicies() map[sensors.Class]SettlePolicy {
	return map[sensors.Class]SettlePolicy{
		sensors.ClassCpuPack: {PollTimeFactor: 15},
		sensors.ClassSodimm:  {Attempts: 150},
	}
}

type Config struct {
	// Policies override Default per sensor class
	Policies      map[sensors.Class]SettlePolicy
	Default       SettlePolicy
	PwmPollDelay  time.Duration
	RpmAttempts   int
	FanRelaxDelay time.Duration
	// WindowSize is the number of observations kept for failure messages
	WindowSize int
	// Sleep waits between two polls, defaults to util.SleepContext
	Sleep func(ctx context.Context, d time.Duration) error
}

func DefaultConfig() Config {
	return Config{
		Policies:      DefaultSettlePolicies(),
		Default:       SettlePolicy{PollTimeFactor: 1, GrowMargin: DefaultGrowMargin},
		PwmPollDelay:  DefaultPwmPollDelay,
		RpmAttempts:   DefaultRpmAttempts,
		FanRelaxDelay: DefaultFanRelaxDelay,
		WindowSize:    DefaultWindowSize,
	}
}

// PolicyFor returns the settle policy of a sensor class
func (c Config) PolicyFor(class sensors.Class) SettlePolicy {
	if policy, ok := c.Policies[class]; ok {
		return policy
	}
	return c.Default
}
