// Package config loads interpreter settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lumen-lang/lumen/lang"
)

// EnvVar names the environment variable that overrides the config path.
const EnvVar = "LUMEN_CONFIG"

// Config holds REPL and evaluator settings.
type Config struct {
	Path               string
	Prompt             string
	ContinuationPrompt string
	HistoryFile        string
	HistoryLimit       int
	Color              bool
	MaxDepth           int
	Echo               bool
}

// fileConfig mirrors the YAML layout. Pointers distinguish absent keys from
// explicit zero values.
type fileConfig struct {
	Prompt             *string `yaml:"prompt"`
	ContinuationPrompt *string `yaml:"continuation_prompt"`
	HistoryFile        *string `yaml:"history_file"`
	HistoryLimit       *int    `yaml:"history_limit"`
	Color              *bool   `yaml:"color"`
	MaxDepth           *int    `yaml:"max_depth"`
	Echo               *bool   `yaml:"echo"`
}

// Default returns the built-in settings.
func Default() *Config {
	history := ""
	if home, err := os.UserHomeDir(); err == nil {
		history = filepath.Join(home, ".lumen_history")
	}
	return &Config{
		Prompt:             "lumen> ",
		ContinuationPrompt: "...> ",
		HistoryFile:        history,
		HistoryLimit:       1000,
		Color:              true,
		MaxDepth:           lang.DefaultMaxDepth,
		Echo:               true,
	}
}

// DefaultPath returns $LUMEN_CONFIG when set, otherwise ~/.lumenrc.yml.
func DefaultPath() string {
	if path := os.Getenv(EnvVar); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".lumenrc.yml")
}

// Load reads settings from path on top of Default. A missing or empty file
// yields the defaults; unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw fileConfig
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			cfg.Path = path
			return cfg, nil
		}
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	raw.applyTo(cfg)
	cfg.Path = path
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (raw *fileConfig) applyTo(cfg *Config) {
	if raw.Prompt != nil {
		cfg.Prompt = *raw.Prompt
	}
	if raw.ContinuationPrompt != nil {
		cfg.ContinuationPrompt = *raw.ContinuationPrompt
	}
	if raw.HistoryFile != nil {
		cfg.HistoryFile = expandHome(*raw.HistoryFile)
	}
	if raw.HistoryLimit != nil {
		cfg.HistoryLimit = *raw.HistoryLimit
	}
	if raw.Color != nil {
		cfg.Color = *raw.Color
	}
	if raw.MaxDepth != nil {
		cfg.MaxDepth = *raw.MaxDepth
	}
	if raw.Echo != nil {
		cfg.Echo = *raw.Echo
	}
}

func (cfg *Config) validate() error {
	var issues []string
	if cfg.HistoryLimit < 0 {
		issues = append(issues, fmt.Sprintf("history_limit must be >= 0, got %d", cfg.HistoryLimit))
	}
	if cfg.MaxDepth < 1 {
		issues = append(issues, fmt.Sprintf("max_depth must be >= 1, got %d", cfg.MaxDepth))
	}
	if len(issues) > 0 {
		return fmt.Errorf("config: %s: %s", cfg.Path, strings.Join(issues, "; "))
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
