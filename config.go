package main

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed problem.yaml
var defaultProblem []byte

// Config is the problem file: the board table plus run settings.
type Config struct {
	Boards     []RawBoard `yaml:"boards"`
	Shots      int        `yaml:"shots"`
	Seed       int64      `yaml:"seed"`
	Iterations int        `yaml:"iterations"`
	// Expected is the known answer, if any; grading compares against it
	// in addition to the classical check.
	Expected *int `yaml:"expected,omitempty"`
}

// DefaultConfig returns the embedded Asteroids problem.
func DefaultConfig() (*Config, error) {
	return parseConfig(defaultProblem)
}

// LoadConfig reads a problem file; an empty path selects the embedded default.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the problem file: %w", err)
	}
	cfg, err := parseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func parseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse the problem file: %w", err)
	}
	if cfg.Shots == 0 {
		cfg.Shots = 1024
	}
	if cfg.Iterations == 0 {
		cfg.Iterations = 1
	}
	if cfg.Shots < 0 {
		return nil, fmt.Errorf("shots must be positive, got %d", cfg.Shots)
	}
	if cfg.Iterations < 0 {
		return nil, fmt.Errorf("iterations must be positive, got %d", cfg.Iterations)
	}
	if _, err := ParseBoards(cfg.Boards); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// PreparedBoards parses and de-duplicates the board table.
func (c *Config) PreparedBoards() ([]Board, error) {
	boards, err := ParseBoards(c.Boards)
	if err != nil {
		return nil, err
	}
	return Preprocess(boards), nil
}

// Marshal renders the config back to YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
