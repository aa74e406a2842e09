package config

import (
	"time"
)

// values wraps a decoded map for lenient typed extraction.
// Every accessor returns defaultVal if the key is missing
// or the value cannot be converted to the requested type.
type values map[string]any

// String returns the string value for key, or defaultVal if missing or not a string.
func (v values) String(key, defaultVal string) string {
	if s, ok := v[key].(string); ok {
		return s
	}
	return defaultVal
}

// Bool returns the boolean value for key, or defaultVal if missing or not a bool.
func (v values) Bool(key string, defaultVal bool) bool {
	if b, ok := v[key].(bool); ok {
		return b
	}
	return defaultVal
}

// Int returns the integer value for key, or defaultVal if missing or not convertible.
//
// Accepts:
//   - int: used directly (YAML)
//   - int64: converted to int
//   - float64: converted only if there is no fractional part (JSON)
func (v values) Int(key string, defaultVal int) int {
	switch val := v[key].(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		if val == float64(int(val)) {
			return int(val)
		}
	}
	return defaultVal
}

// Duration returns the duration value for key, or defaultVal if missing or invalid.
//
// Accepts:
//   - string: parsed with time.ParseDuration
//   - int, float64: interpreted as milliseconds
func (v values) Duration(key string, defaultVal time.Duration) time.Duration {
	switch val := v[key].(type) {
	case string:
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	case int:
		return time.Duration(val) * time.Millisecond
	case float64:
		return time.Duration(val * float64(time.Millisecond))
	}
	return defaultVal
}

// StringSlice returns the string slice for key, or defaultVal if missing or
// if any element is not a string.
func (v values) StringSlice(key string, defaultVal []string) []string {
	switch val := v[key].(type) {
	case []string:
		return val
	case []any:
		result := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return defaultVal
			}
			result = append(result, s)
		}
		return result
	}
	return defaultVal
}

// Sub returns the nested map at key, or an empty values if missing or not a map.
func (v values) Sub(key string) values {
	if m, ok := v[key].(map[string]any); ok {
		return values(m)
	}
	return values{}
}
