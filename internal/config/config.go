package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

const (
	defaultPrompt  = ":"
	defaultMaxJobs = 20
)

type Config struct {
	Prompt      string `yaml:"prompt"`
	HistoryFile string `yaml:"history_file"`
	HomeDir     string `yaml:"home_dir"`
	MaxJobs     int    `yaml:"max_jobs"`
}

// Load reads a YAML config from file and fills in defaults for any field
// left unset. An empty file argument yields pure defaults.
func Load(file string) (*Config, error) {
	cfg := &Config{}

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if cfg.Prompt == "" {
		cfg.Prompt = defaultPrompt
	}

	if cfg.MaxJobs <= 0 {
		cfg.MaxJobs = defaultMaxJobs
	}

	if cfg.HomeDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		cfg.HomeDir = home
	}

	if cfg.HistoryFile == "" {
		cfg.HistoryFile = filepath.Join(cfg.HomeDir, ".smallsh_history")
	}

	return cfg, nil
}
