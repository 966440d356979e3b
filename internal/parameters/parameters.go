package parameters

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/markusressel/tcoracle/internal/ui"
	"github.com/markusressel/tcoracle/internal/util"
)

const (
	KeyDevParameters = "dev_parameters"
	KeyFanTrend      = "fan_trend"
	KeyDmin          = "dmin"
)

type selector struct {
	key  string
	expr *regexp.Regexp
}

// Parameters is the parsed thermal control configuration of a device.
// It is created once per session and never modified afterwards.
type Parameters struct {
	name          string
	devParameters map[string]DevParameter
	selectors     []selector
	fanTrends     map[FanDirection]map[int]FanTrend
	dmin          map[FanDirection]map[string]map[string]RangeTable
}

type rawConfig struct {
	Name          string                                  `mapstructure:"name"`
	DevParameters map[string]DevParameter                 `mapstructure:"dev_parameters"`
	FanTrend      map[FanDirection]map[int]FanTrend       `mapstructure:"fan_trend"`
	Dmin          map[FanDirection]map[string]interface{} `mapstructure:"dmin"`
}

// Load parses and validates a tc_config.json document
func Load(raw []byte) (*Parameters, error) {
	var tree map[string]interface{}
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("invalid json: %v", err)}
	}
	for _, key := range []string{KeyDevParameters, KeyFanTrend, KeyDmin} {
		if _, ok := tree[key]; !ok {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("missing top level key '%s'", key)}
		}
	}

	var config rawConfig
	if err := decode(tree, &config); err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}

	p := &Parameters{
		name:          config.Name,
		devParameters: config.DevParameters,
		fanTrends:     config.FanTrend,
		dmin:          map[FanDirection]map[string]map[string]RangeTable{},
	}

	for direction, categories := range config.Dmin {
		p.dmin[direction] = map[string]map[string]RangeTable{}
		for category, value := range categories {
			tables, err := decodeDminCategory(value)
			if err != nil {
				return nil, &ConfigurationError{
					Class:     category,
					Direction: direction.String(),
					Reason:    fmt.Sprintf("invalid dmin table: %v", err),
				}
			}
			p.dmin[direction][category] = tables
		}
	}

	for _, key := range util.SortedKeys(p.devParameters) {
		expr, err := regexp.Compile("^(?:" + key + ")$")
		if err != nil {
			return nil, &ConfigurationError{Class: key, Reason: fmt.Sprintf("invalid sensor selector: %v", err)}
		}
		p.selectors = append(p.selectors, selector{key: key, expr: expr})
	}

	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parameters) validate() error {
	for _, key := range util.SortedKeys(p.devParameters) {
		param := p.devParameters[key]
		if param.PwmMin < 0 || param.PwmMax > 100 {
			return &ConfigurationError{Class: key, Reason: fmt.Sprintf("pwm range [%d, %d] exceeds [0, 100]", param.PwmMin, param.PwmMax)}
		}
		if param.PwmMin > param.PwmMax {
			return &ConfigurationError{Class: key, Reason: fmt.Sprintf("pwm_min %d > pwm_max %d", param.PwmMin, param.PwmMax)}
		}
		if param.PollTime < 0 {
			return &ConfigurationError{Class: key, Reason: fmt.Sprintf("negative poll_time %d", param.PollTime)}
		}
	}

	for direction, trends := range p.fanTrends {
		for tacho, trend := range trends {
			// rpm = rpm_max + slope * (pwm - 100) only stays below rpm_max for a
			// non-negative slope, a negative one is kept but projects nonsense
			if trend.Slope < 0 {
				ui.Warning("fan_trend %s/%d: negative slope %v projects rpm above rpm_max for pwm < 100",
					direction, tacho, trend.Slope)
			}
			if trend.RpmMax < 0 {
				return &ConfigurationError{
					Class:     "fan_trend/" + strconv.Itoa(tacho),
					Direction: direction.String(),
					Value:     fmt.Sprintf("rpm_max=%d", trend.RpmMax),
					Reason:    "negative rpm_max",
				}
			}
			if trend.RpmTolerance != nil && *trend.RpmTolerance < 0 {
				return &ConfigurationError{
					Class:     "fan_trend/" + strconv.Itoa(tacho),
					Direction: direction.String(),
					Value:     fmt.Sprintf("rpm_tolerance=%v", *trend.RpmTolerance),
					Reason:    "negative rpm tolerance",
				}
			}
		}
	}

	return nil
}

func (p *Parameters) Name() string {
	return p.name
}

// DevParameter returns the control curve for a sensor. The selector is tried
// as an exact dev_parameters key first, afterwards every key is matched as a
// regular expression against the sensor instance name, e.g. "module3".
func (p *Parameters) DevParameter(selectorKey string, instance string) (DevParameter, error) {
	if param, ok := p.devParameters[selectorKey]; ok {
		return param, nil
	}
	for _, s := range p.selectors {
		if s.expr.MatchString(instance) {
			return p.devParameters[s.key], nil
		}
	}
	return DevParameter{}, &ConfigurationError{
		Class:  instance,
		Value:  selectorKey,
		Reason: "no dev_parameters entry for sensor",
	}
}

// DevParameterKeys returns all dev_parameters keys, sorted
func (p *Parameters) DevParameterKeys() []string {
	return util.SortedKeys(p.devParameters)
}

// FanTrend returns the rpm model of the given tachometer for a fan direction
func (p *Parameters) FanTrend(direction FanDirection, tacho int) (FanTrend, error) {
	trends, ok := p.fanTrends[direction]
	if !ok {
		return FanTrend{}, &ConfigurationError{
			Class:     "fan_trend",
			Direction: direction.String(),
			Reason:    "no fan_trend for fan direction",
		}
	}
	trend, ok := trends[tacho]
	if !ok {
		return FanTrend{}, &ConfigurationError{
			Class:     "fan_trend/" + strconv.Itoa(tacho),
			Direction: direction.String(),
			Reason:    "no fan_trend for tachometer",
		}
	}
	return trend, nil
}

// Dmin returns the fault table of a category and subtype, use SubtypeNone for
// single level categories
func (p *Parameters) Dmin(direction FanDirection, category string, subtype string) (RangeTable, error) {
	categories, ok := p.dmin[direction]
	if !ok {
		return nil, &ConfigurationError{
			Class:     category,
			Direction: direction.String(),
			Reason:    "no dmin table for fan direction",
		}
	}
	subtypes, ok := categories[category]
	if !ok {
		return nil, &ConfigurationError{
			Class:     category,
			Direction: direction.String(),
			Reason:    "no dmin category",
		}
	}
	table, ok := subtypes[subtype]
	if !ok {
		return nil, &ConfigurationError{
			Class:     category + "/" + subtype,
			Direction: direction.String(),
			Reason:    "no dmin subtype",
		}
	}
	return table, nil
}

// DminTables lists every (category, subtype) pair of a direction, sorted
func (p *Parameters) DminTables(direction FanDirection) [][2]string {
	var result [][2]string
	categories := p.dmin[direction]
	for _, category := range util.SortedKeys(categories) {
		subtypes := util.SortedKeys(categories[category])
		sort.Strings(subtypes)
		for _, subtype := range subtypes {
			result = append(result, [2]string{category, subtype})
		}
	}
	return result
}
