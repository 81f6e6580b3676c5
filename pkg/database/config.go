package database

import (
	"errors"
	"fmt"
	"maps"
	"strconv"
	"time"
)

// Config is a driver configuration as loaded from a config file.
// The "driver" key selects the registered driver; the remaining keys are
// driver specific. The "timeout" key (a duration string such as "5s") bounds
// every driver call.
type Config map[string]any

// Driver returns the configured driver name.
func (c Config) Driver() string {
	return c.String("driver")
}

// Has reports whether key is set.
func (c Config) Has(key string) bool {
	_, ok := c[key]
	return ok
}

// String returns key as a string, or "" when unset.
func (c Config) String(key string) string {
	v, ok := c[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Int returns key as an int, or def when unset.
func (c Config) Int(key string, def int) (int, error) {
	v, ok := c[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, errors.Join(ErrInvalidConfig, fmt.Errorf("%s: %w", key, err))
		}
		return i, nil
	}
	return 0, errors.Join(ErrInvalidConfig, fmt.Errorf("%s: unsupported value %T", key, v))
}

// Duration returns key parsed with time.ParseDuration, or def when unset.
// Plain numbers are read as seconds.
func (c Config) Duration(key string, def time.Duration) (time.Duration, error) {
	v, ok := c[key]
	if !ok || v == nil {
		return def, nil
	}
	switch d := v.(type) {
	case time.Duration:
		return d, nil
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return 0, errors.Join(ErrInvalidConfig, fmt.Errorf("%s: %w", key, err))
		}
		return parsed, nil
	}
	secs, err := c.Int(key, 0)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs) * time.Second, nil
}

// Clone returns a shallow copy.
func (c Config) Clone() Config {
	if c == nil {
		return nil
	}
	return maps.Clone(c)
}
