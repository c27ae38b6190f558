package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

var (
	ErrEmptyPath       = errors.New("config: file path is required")
	ErrEmptyConfigType = errors.New("config: config type is required")
	ErrReadFailed      = errors.New("config: failed to read configuration")
	ErrWatchFailed     = errors.New("config: failed to watch configuration file")
)

// Source is a read-only configuration lookup.
// Get returns nil when nothing is stored under the dotted path.
type Source interface {
	Get(path string) any
}

// Lookup walks a dotted path through nested maps.
// Both map[string]any and map[any]any levels are supported.
func Lookup(root any, path string) any {
	if path == "" {
		return root
	}

	current := root
	for key := range strings.SplitSeq(path, ".") {
		switch m := current.(type) {
		case map[string]any:
			v, ok := m[key]
			if !ok {
				return nil
			}
			current = v
		case map[any]any:
			v, ok := lookupAny(m, key)
			if !ok {
				return nil
			}
			current = v
		default:
			return nil
		}
	}
	return current
}

// lookupAny finds key in a map whose keys were not all strings, as yaml.v3
// produces for mappings with keys like 404 or yes.
func lookupAny(m map[any]any, key string) (any, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if fmt.Sprint(k) == key {
			return v, true
		}
	}
	return nil, false
}

// String returns the value under path as a string, or def when it is
// missing or empty.
func String(src Source, path, def string) string {
	v := src.Get(path)
	if v == nil {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil || s == "" {
		return def
	}
	return s
}

// Bool returns the value under path as a bool, or def when it is missing or
// not convertible. Strings such as "true" and "1" are accepted.
func Bool(src Source, path string, def bool) bool {
	v := src.Get(path)
	if v == nil {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}

// Int returns the value under path as an int, or def.
func Int(src Source, path string, def int) int {
	v := src.Get(path)
	if v == nil {
		return def
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return i
}

// Duration returns the value under path as a duration, or def.
// Strings use time.ParseDuration syntax; bare numbers are nanoseconds.
func Duration(src Source, path string, def time.Duration) time.Duration {
	v := src.Get(path)
	if v == nil {
		return def
	}
	d, err := cast.ToDurationE(v)
	if err != nil {
		return def
	}
	return d
}
