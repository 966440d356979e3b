package configuration

import (
	"fmt"
	"os"
	"time"

	"github.com/markusressel/tcoracle/internal/ui"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

type Configuration struct {
	// DeviceRoot prefixes every device path, "/" on the device itself
	DeviceRoot string `json:"deviceRoot"`
	// ThermalRoot is the hw-management directory below DeviceRoot
	ThermalRoot string `json:"thermalRoot"`
	// TcConfigPath overrides <thermalRoot>/config/tc_config.json
	TcConfigPath string `json:"tcConfigPath"`
	SkuPath      string `json:"skuPath"`
	DbPath       string `json:"dbPath"`

	// Seed of all random choices of a session, 0 picks one
	Seed int64 `json:"seed"`
	// Classes limits the tested sensor classes, empty means all
	Classes []string `json:"classes"`
	// Faults limits the tested faults, empty means all
	Faults            []string `json:"faults"`
	FaultTemperatures []int    `json:"faultTemperatures"`
	CheckRpm          bool     `json:"checkRpm"`

	Rpm          RpmConfig          `json:"rpm"`
	Verification VerificationConfig `json:"verification"`
	Injector     InjectorConfig     `json:"injector"`
	Discovery    DiscoveryConfig    `json:"discovery"`
	Statistics   StatisticsConfig   `json:"statistics"`
	Api          ApiConfig          `json:"api"`
}

type RpmConfig struct {
	DefaultMax       int     `json:"defaultMax"`
	DefaultTolerance float64 `json:"defaultTolerance"`
}

type VerificationConfig struct {
	GrowMargin    int           `json:"growMargin"`
	PwmPollDelay  time.Duration `json:"pwmPollDelay"`
	RpmAttempts   int           `json:"rpmAttempts"`
	FanRelaxDelay time.Duration `json:"fanRelaxDelay"`
	WindowSize    int           `json:"windowSize"`
	// SettlePolicies by sensor class, replacing the built-in ones when set
	SettlePolicies map[string]SettlePolicyConfig `json:"settlePolicies"`
}

type SettlePolicyConfig struct {
	Attempts       int `json:"attempts"`
	PollTimeFactor int `json:"pollTimeFactor"`
	GrowMargin     int `json:"growMargin"`
}

type InjectorConfig struct {
	RestoreAttempts int           `json:"restoreAttempts"`
	RestoreDelay    time.Duration `json:"restoreDelay"`
}

type DiscoveryConfig struct {
	// Defaults are the per-class counts used when a counter file can not be read
	Defaults map[string]int `json:"defaults"`
	// VoltmonSkuOverrides maps a product sku to its voltmon instances
	VoltmonSkuOverrides map[string][]int `json:"voltmonSkuOverrides"`
}

var CurrentConfig Configuration

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	viper.SetConfigName("tcoracle")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			ui.Error("Couldn't detect home directory: %v", err)
			os.Exit(1)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.AddConfigPath("/etc/tcoracle/")
	}

	viper.SetEnvPrefix("tcoracle")
	viper.AutomaticEnv() // read in environment variables that match

	setDefaultValues()
}

func setDefaultValues() {
	viper.SetDefault("deviceRoot", "/")
	viper.SetDefault("thermalRoot", "/var/run/hw-management")
	viper.SetDefault("tcConfigPath", "")
	viper.SetDefault("skuPath", "/sys/devices/virtual/dmi/id/product_sku")
	viper.SetDefault("dbPath", "/etc/tcoracle/tcoracle.db")

	viper.SetDefault("seed", 0)
	viper.SetDefault("classes", []string{})
	viper.SetDefault("faults", []string{})
	viper.SetDefault("faultTemperatures", []int{25000, 40000})
	viper.SetDefault("checkRpm", true)

	viper.SetDefault("rpm.defaultMax", 25000)
	viper.SetDefault("rpm.defaultTolerance", 0.3)

	viper.SetDefault("verification.growMargin", 10)
	viper.SetDefault("verification.pwmPollDelay", 1*time.Second)
	viper.SetDefault("verification.rpmAttempts", 3)
	viper.SetDefault("verification.fanRelaxDelay", 10*time.Second)
	viper.SetDefault("verification.windowSize", 10)

	viper.SetDefault("injector.restoreAttempts", 3)
	viper.SetDefault("injector.restoreDelay", 1*time.Second)

	viper.SetDefault("statistics.enabled", false)
	viper.SetDefault("statistics.port", 9000)

	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.host", "localhost")
	viper.SetDefault("api.port", 9001)
}

// DetectAndReadConfigFile reads the config file if one exists, tcoracle also runs on defaults alone
func DetectAndReadConfigFile() {
	configPath, err := ReadConfigFile()
	if err != nil {
		ui.Fatal("Error reading config file, %s", err)
	}
	if err := Validate(configPath); err != nil {
		ui.FatalWithoutStacktrace("Config validation failed: %v", err)
	}
}

// ReadConfigFile reads and decodes the config file without validating it.
// It returns the path of the file used, empty if none was found.
func ReadConfigFile() (string, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return "", err
		}
		ui.Debug("No config file found, using defaults")
	} else {
		// this is only populated _after_ ReadInConfig()
		ui.Debug("Using configuration file at: %s", viper.ConfigFileUsed())
	}

	return viper.ConfigFileUsed(), LoadConfig()
}

// LoadConfig decodes the current viper state and replaces CurrentConfig with it
func LoadConfig() error {
	var config Configuration
	if err := viper.Unmarshal(&config); err != nil {
		return fmt.Errorf("unable to decode into struct, %w", err)
	}
	CurrentConfig = config
	return nil
}
