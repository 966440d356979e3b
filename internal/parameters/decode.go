package parameters

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// GetTempDigit normalizes a val_min/val_max value. Firmware marks disabled
// sensors by suffixing the value with a single non-digit character,
// which is stripped before parsing.
func GetTempDigit(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case Millidegree:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("temperature value is not an integer: %v", v)
		}
		return int(v), nil
	case json.Number:
		return GetTempDigit(v.String())
	case string:
		text := strings.TrimSpace(v)
		if len(text) <= 0 {
			return 0, fmt.Errorf("temperature value is empty")
		}
		last := text[len(text)-1]
		if last < '0' || last > '9' {
			text = text[:len(text)-1]
		}
		result, err := strconv.Atoi(text)
		if err != nil {
			return 0, fmt.Errorf("cannot parse temperature value %q: %w", v, err)
		}
		return result, nil
	}
	return 0, fmt.Errorf("unsupported temperature value type %T", value)
}

func millidegreeHookFunc() mapstructure.DecodeHookFuncType {
	millidegreeType := reflect.TypeOf(Millidegree(0))
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != millidegreeType {
			return data, nil
		}
		value, err := GetTempDigit(data)
		if err != nil {
			return nil, err
		}
		return Millidegree(value), nil
	}
}

// directionHookFunc translates the legacy string keys of fan_trend and dmin
// into a FanDirection
func directionHookFunc() mapstructure.DecodeHookFuncType {
	directionType := reflect.TypeOf(C2P)
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != directionType {
			return data, nil
		}
		value, ok := data.(string)
		if !ok {
			return data, nil
		}
		return ParseDirection(value)
	}
}

func tempRangeHookFunc() mapstructure.DecodeHookFuncType {
	rangeType := reflect.TypeOf(TempRange{})
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != rangeType {
			return data, nil
		}
		value, ok := data.(string)
		if !ok {
			return data, nil
		}
		return ParseTempRange(value)
	}
}

func decode(input interface{}, result interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			millidegreeHookFunc(),
			directionHookFunc(),
			tempRangeHookFunc(),
		),
		WeaklyTypedInput: true,
		Result:           result,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// isRangeTable reports whether a dmin category maps ranges directly to pwm
// values instead of nesting subtypes
func isRangeTable(category map[string]interface{}) bool {
	if len(category) == 0 {
		return false
	}
	for key, value := range category {
		if !strings.Contains(key, ":") {
			return false
		}
		if _, nested := value.(map[string]interface{}); nested {
			return false
		}
	}
	return true
}

func decodeDminCategory(raw interface{}) (map[string]RangeTable, error) {
	category, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expected an object, got %T", raw)
	}

	result := map[string]RangeTable{}
	if isRangeTable(category) {
		var ranges map[TempRange]int
		if err := decode(category, &ranges); err != nil {
			return nil, err
		}
		result[SubtypeNone] = newRangeTable(ranges)
		return result, nil
	}

	for subtype, value := range category {
		var ranges map[TempRange]int
		if err := decode(value, &ranges); err != nil {
			return nil, fmt.Errorf("subtype %s: %w", subtype, err)
		}
		result[subtype] = newRangeTable(ranges)
	}
	return result, nil
}
