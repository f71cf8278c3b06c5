package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Set writes key=value into the YAML config file at path, creating it if
// needed. Only known keys are accepted.
func Set(path, key, value string) error {
	if _, ok := Defaults[key]; !ok {
		return fmt.Errorf("unknown config key: %s\n\nValid keys: %s",
			key, strings.Join(slices.Sorted(maps.Keys(Defaults)), ", "))
	}

	existing, err := readYAML(path)
	if err != nil {
		return err
	}
	existing[key] = parseValue(value)
	return writeYAML(path, existing)
}

// Unset removes key from the config file at path. A missing file is fine.
func Unset(path, key string) error {
	existing, err := readYAML(path)
	if err != nil {
		return err
	}
	if _, ok := existing[key]; !ok {
		return nil
	}
	delete(existing, key)
	return writeYAML(path, existing)
}

func readYAML(path string) (map[string]any, error) {
	existing := make(map[string]any)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return existing, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &existing); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if existing == nil {
		existing = make(map[string]any)
	}
	return existing, nil
}

func writeYAML(path string, values map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(values)
	if err != nil {
		return err
	}
	// config may hold API keys and the JWT secret
	return os.WriteFile(path, data, 0o600)
}

// parseValue converts string values to appropriate types for YAML.
func parseValue(value string) any {
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	return value
}
