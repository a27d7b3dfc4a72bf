// Package config loads benchmark settings from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ogulcanaydogan/circle-overlap-bench/internal/gate"
)

const (
	GeneratorMock   = "mock"
	GeneratorFile   = "file"
	GeneratorOpenAI = "openai"
)

type Generator struct {
	Kind      string `yaml:"kind"`
	Path      string `yaml:"path"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	System    string `yaml:"system"`
}

type Config struct {
	Circles   int          `yaml:"circles"`
	Overlaps  []string     `yaml:"overlaps"`
	Palette   []string     `yaml:"palette"`
	Generator Generator    `yaml:"generator"`
	Gate      *gate.Policy `yaml:"gate"`
}

func Default() Config {
	return Config{
		Circles:   3,
		Overlaps:  []string{"Red,Blue"},
		Generator: Generator{Kind: GeneratorMock, APIKeyEnv: "OPENAI_API_KEY"},
	}
}

// Load reads path over Default, so keys missing from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Generator.Kind {
	case GeneratorMock, GeneratorOpenAI:
	case GeneratorFile:
		if c.Generator.Path == "" {
			return fmt.Errorf("generator.path is required for the file generator")
		}
	default:
		return fmt.Errorf("unsupported generator %q", c.Generator.Kind)
	}
	if c.Gate != nil {
		if err := c.Gate.Validate(); err != nil {
			return fmt.Errorf("gate: %w", err)
		}
	}
	return nil
}
