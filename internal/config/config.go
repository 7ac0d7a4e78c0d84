// Package config loads analyzer settings from an optional YAML file, with
// environment-variable overrides layered on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config holds every analyzer-wide setting that isn't specific to a single
// invocation's CLI flags.
type Config struct {
	ReportDir   string `yaml:"report_dir"`
	OutputFormat string `yaml:"output_format"`
	Color       bool   `yaml:"color"`
	LogDir      string `yaml:"log_dir"`
	Verbose     bool   `yaml:"verbose"`
}

func defaults() Config {
	return Config{
		ReportDir:    "reports",
		OutputFormat: "text",
		Color:        true,
		LogDir:       "logs",
		Verbose:      false,
	}
}

var (
	loadOnce sync.Once
	loaded   *Config
	loadErr  error
)

// Load reads the first candidate settings file found (see findConfigFile),
// falling back to built-in defaults when none exists, then applies
// environment-variable overrides. The result is cached: subsequent calls
// return the same *Config without re-reading disk.
func Load() (*Config, error) {
	loadOnce.Do(func() {
		cfg := defaults()

		if path := findConfigFile(); path != "" {
			data, err := os.ReadFile(path)
			if err != nil {
				loadErr = fmt.Errorf("read config file: %w", err)
				return
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				loadErr = fmt.Errorf("parse config file: %w", err)
				return
			}
		}

		applyEnvOverrides(&cfg)
		loaded = &cfg
	})

	return loaded, loadErr
}

func findConfigFile() string {
	candidates := []string{
		"config/settings.yaml",
		"settings.yaml",
		".reentrancy-analyzer.yaml",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func applyEnvOverrides(cfg *Config) {
	cfg.ReportDir = getEnv("REENTRANCY_REPORT_DIR", cfg.ReportDir)
	cfg.OutputFormat = getEnv("REENTRANCY_OUTPUT_FORMAT", cfg.OutputFormat)
	cfg.LogDir = getEnv("REENTRANCY_LOG_DIR", cfg.LogDir)
	cfg.Color = getEnvAsBool("REENTRANCY_COLOR", cfg.Color)
	cfg.Verbose = getEnvAsBool("REENTRANCY_VERBOSE", cfg.Verbose)
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

// Dir returns the directory of the config file that was loaded, or "" if
// none was found and defaults are in effect.
func Dir() string {
	path := findConfigFile()
	if path == "" {
		return ""
	}
	return filepath.Dir(path)
}
