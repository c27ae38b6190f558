package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Map is an in-memory Source over nested maps.
type Map struct {
	data map[string]any
}

// NewMap wraps data. A nil map yields an empty source.
func NewMap(data map[string]any) *Map {
	if data == nil {
		data = map[string]any{}
	}
	return &Map{data: data}
}

// LoadYAML parses a YAML document into a Map.
func LoadYAML(data []byte) (*Map, error) {
	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	return NewMap(out), nil
}

// LoadFile reads a YAML file into a Map.
func LoadFile(path string) (*Map, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	return LoadYAML(data)
}

// Get implements Source.
func (m *Map) Get(path string) any {
	return Lookup(m.data, path)
}
