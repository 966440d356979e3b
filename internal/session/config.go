package session

import (
	"strings"

	"github.com/markusressel/tcoracle/internal/configuration"
	"github.com/markusressel/tcoracle/internal/dmin"
	"github.com/markusressel/tcoracle/internal/fans"
	"github.com/markusressel/tcoracle/internal/sensors"
	"github.com/markusressel/tcoracle/internal/verifier"
)

// ConfigFrom maps the application configuration onto a session configuration
func ConfigFrom(c configuration.Configuration) (Config, error) {
	result := Config{
		TcConfigPath: c.TcConfigPath,
		Discovery: sensors.DiscoveryConfig{
			ThermalRoot:         c.ThermalRoot,
			SkuPath:             c.SkuPath,
			Defaults:            map[sensors.Class]int{},
			VoltmonSkuOverrides: map[string][]int{},
		},
		Fans: fans.Defaults{
			RpmMax:    c.Rpm.DefaultMax,
			Tolerance: c.Rpm.DefaultTolerance,
		},
		Seed:              c.Seed,
		FaultTemperatures: c.FaultTemperatures,
		CheckRpm:          c.CheckRpm,
	}

	for class, count := range c.Discovery.Defaults {
		result.Discovery.Defaults[sensors.Class(class)] = count
	}
	// config keys are case-insensitive, skus are upper case
	for sku, indices := range c.Discovery.VoltmonSkuOverrides {
		result.Discovery.VoltmonSkuOverrides[strings.ToUpper(sku)] = indices
	}

	for _, class := range c.Classes {
		result.Classes = append(result.Classes, sensors.Class(class))
	}
	for _, name := range c.Faults {
		fault, err := dmin.ParseFaultKind(name)
		if err != nil {
			return Config{}, err
		}
		result.Faults = append(result.Faults, fault)
	}

	v := verifier.DefaultConfig()
	v.Default.GrowMargin = c.Verification.GrowMargin
	v.PwmPollDelay = c.Verification.PwmPollDelay
	v.RpmAttempts = c.Verification.RpmAttempts
	v.FanRelaxDelay = c.Verification.FanRelaxDelay
	if c.Verification.WindowSize > 0 {
		v.WindowSize = c.Verification.WindowSize
	}
	if len(c.Verification.SettlePolicies) > 0 {
		v.Policies = map[sensors.Class]verifier.SettlePolicy{}
		for class, policy := range c.Verification.SettlePolicies {
			v.Policies[sensors.Class(class)] = verifier.SettlePolicy{
				Attempts:       policy.Attempts,
				PollTimeFactor: policy.PollTimeFactor,
				GrowMargin:     policy.GrowMargin,
			}
		}
	}
	result.Verifier = v

	return result, nil
}
