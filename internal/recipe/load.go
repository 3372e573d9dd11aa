package recipe

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loads a recipe file from disk.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipe: %w", err)
	}
	return Decode(data)
}

// Pin settings for one package in the pin-run-as-build table.
type PinSettings struct {
	MinPin string `yaml:"min_pin,omitempty"`
	MaxPin string `yaml:"max_pin,omitempty"`
}

// The variant configuration of a build session.
//
// Matrix keys map normalized names to the values the session builds the
// cross product of. PinRunAsBuild maps normalized package names to pin
// expressions applied when the package's resolved build-time version is
// exported to run.
type VariantConfig struct {
	Matrix        map[string][]string
	PinRunAsBuild map[string]PinSettings
}

// The YAML shape of a variant configuration file.
//
// Every top-level key except pin_run_as_build is a matrix key whose value
// is either a scalar or a list of values.
type variantFile struct {
	PinRunAsBuild map[string]PinSettings `yaml:"pin_run_as_build,omitempty"`
	Matrix        map[string]matrixEntry `yaml:",inline"`
}

type matrixEntry []string

func (e *matrixEntry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var many []string
		if err := value.Decode(&many); err != nil {
			return err
		}
		*e = matrixEntry(many)
		return nil
	}

	var single string
	if err := value.Decode(&single); err != nil {
		return err
	}
	*e = matrixEntry{single}
	return nil
}

// Loads a variant configuration file from disk.
//
// A missing path yields an empty configuration.
func LoadVariantConfig(path string) (*VariantConfig, error) {
	if path == "" {
		return &VariantConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read variant config: %w", err)
	}

	var file variantFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse variant config: %w", err)
	}

	cfg := &VariantConfig{
		Matrix:        make(map[string][]string, len(file.Matrix)),
		PinRunAsBuild: file.PinRunAsBuild,
	}
	for key, values := range file.Matrix {
		cfg.Matrix[key] = []string(values)
	}
	return cfg, nil
}
