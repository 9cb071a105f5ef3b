//go:build !tinygo

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadYAML parses a YAML configuration and returns a MachineConfig
func LoadYAML(yamlData []byte) (*MachineConfig, error) {
	var config MachineConfig

	err := yaml.Unmarshal(yamlData, &config)
	if err != nil {
		return nil, err
	}

	return finish(&config)
}

// LoadFile reads a configuration file, choosing the format by extension
func LoadFile(path string) (*MachineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg *MachineConfig
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		cfg, err = LoadYAML(data)
	case ".json":
		cfg, err = LoadConfig(data)
	default:
		return nil, fmt.Errorf("%s: unknown config format", path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
