package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Version int      `yaml:"version"`
	Package Package  `yaml:"package"`
	Output  Output   `yaml:"output"`
	Schemas []Schema `yaml:"schemas"`
}

// Package holds the import path under which the generated namespace packages
// live. Cross-namespace type references are qualified against it.
type Package struct {
	Path string `yaml:"path"`
}

// Output holds the directory, relative to the working directory, that
// generated files are written to.
type Output struct {
	Path string `yaml:"path"`
}

type Schema struct {
	Path string `yaml:"path"`
}

func Read(configPath string) (*Config, error) {
	fileData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf(`failed to read config file "%s": %w`, configPath, err)
	}

	var config Config
	if err := yaml.Unmarshal(fileData, &config); err != nil {
		return nil, fmt.Errorf(`failed to unmarshal config file "%s": %w`, configPath, err)
	}

	if config.Package.Path == "" {
		return nil, fmt.Errorf(`config file "%s" is missing package.path`, configPath)
	}
	if config.Output.Path == "" {
		return nil, fmt.Errorf(`config file "%s" is missing output.path`, configPath)
	}

	return &config, nil
}
