package configuration

import (
	"fmt"
	"strings"

	"github.com/markusressel/tcoracle/internal/dmin"
	"github.com/markusressel/tcoracle/internal/sensors"
)

func Validate(configPath string) error {
	return validateConfig(&CurrentConfig, configPath)
}

func validateConfig(config *Configuration, path string) error {
	if strings.TrimSpace(config.ThermalRoot) == "" {
		return fmt.Errorf("thermalRoot must not be empty")
	}
	if config.Rpm.DefaultMax <= 0 {
		return fmt.Errorf("rpm.defaultMax must be positive: %d", config.Rpm.DefaultMax)
	}
	if config.Rpm.DefaultTolerance < 0 {
		return fmt.Errorf("rpm.defaultTolerance must not be negative: %v", config.Rpm.DefaultTolerance)
	}

	if err := validateVerification(config.Verification); err != nil {
		return err
	}
	if config.Injector.RestoreAttempts < 1 {
		return fmt.Errorf("injector.restoreAttempts must be at least 1: %d", config.Injector.RestoreAttempts)
	}

	for _, class := range config.Classes {
		if _, ok := sensors.CatalogClass(sensors.Class(class)); !ok {
			return fmt.Errorf("unknown sensor class: %s", class)
		}
	}
	for _, fault := range config.Faults {
		if _, err := dmin.ParseFaultKind(fault); err != nil {
			return err
		}
	}
	for class, count := range config.Discovery.Defaults {
		if _, ok := sensors.CatalogClass(sensors.Class(class)); !ok {
			return fmt.Errorf("discovery.defaults: unknown sensor class: %s", class)
		}
		if count < 0 {
			return fmt.Errorf("discovery.defaults: negative count for %s: %d", class, count)
		}
	}
	for sku, indices := range config.Discovery.VoltmonSkuOverrides {
		for _, index := range indices {
			if index < 1 {
				return fmt.Errorf("discovery.voltmonSkuOverrides: invalid index %d for sku %s", index, sku)
			}
		}
	}

	if config.Statistics.Enabled {
		if err := validatePort("statistics.port", config.Statistics.Port); err != nil {
			return err
		}
	}
	if config.Api.Enabled {
		if err := validatePort("api.port", config.Api.Port); err != nil {
			return err
		}
	}

	return nil
}

func validateVerification(config VerificationConfig) error {
	if config.GrowMargin < 0 {
		return fmt.Errorf("verification.growMargin must not be negative: %d", config.GrowMargin)
	}
	if config.RpmAttempts < 1 {
		return fmt.Errorf("verification.rpmAttempts must be at least 1: %d", config.RpmAttempts)
	}
	if config.PwmPollDelay < 0 || config.FanRelaxDelay < 0 {
		return fmt.Errorf("verification delays must not be negative")
	}
	for class, policy := range config.SettlePolicies {
		if _, ok := sensors.CatalogClass(sensors.Class(class)); !ok {
			return fmt.Errorf("verification.settlePolicies: unknown sensor class: %s", class)
		}
		if policy.Attempts < 0 || policy.PollTimeFactor < 0 || policy.GrowMargin < 0 {
			return fmt.Errorf("verification.settlePolicies: negative value for %s", class)
		}
	}
	return nil
}

func validatePort(key string, port int) error {
	if port <= 0 || port >= 65535 {
		return fmt.Errorf("%s out of range: %d", key, port)
	}
	return nil
}
