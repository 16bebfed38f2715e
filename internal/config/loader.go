package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Load reads and merges configuration from global and project paths.
// Order of precedence (highest to lowest): project config, global config,
// defaults. Missing files are not errors; malformed JSON returns an error.
func Load(globalPath, projectPath string) (*Config, error) {
	cfg := DefaultConfig()

	if globalPath != "" {
		if err := mergeConfigFile(cfg, globalPath); err != nil {
			return nil, fmt.Errorf("loading global config: %w", err)
		}
	}

	if projectPath != "" {
		if err := mergeConfigFile(cfg, projectPath); err != nil {
			return nil, fmt.Errorf("loading project config: %w", err)
		}
	}

	return cfg, nil
}

// LoadDefault loads configuration from conventional paths.
// Global: ~/.overseer/config.json
// Project: .overseer/config.json (relative to cwd)
func LoadDefault() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting home directory: %w", err)
	}

	globalPath := filepath.Join(homeDir, ".overseer", "config.json")
	projectPath := filepath.Join(".overseer", "config.json")

	return Load(globalPath, projectPath)
}

// mergeConfigFile reads a JSON config file and merges it into the base
// config. Scalar sections override only when set; map sections merge by key.
// Missing files are silently skipped.
func mergeConfigFile(base *Config, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if loaded.Scheduler.IntervalSeconds > 0 {
		base.Scheduler.IntervalSeconds = loaded.Scheduler.IntervalSeconds
	}
	if loaded.Scheduler.ConcurrencyLimit > 0 {
		base.Scheduler.ConcurrencyLimit = loaded.Scheduler.ConcurrencyLimit
	}

	if loaded.Policy.SearchDepth > 0 {
		base.Policy.SearchDepth = loaded.Policy.SearchDepth
	}
	if loaded.Policy.Weights != (WeightsConfig{}) {
		base.Policy.Weights = loaded.Policy.Weights
	}
	if loaded.Policy.LearningRate > 0 {
		base.Policy.LearningRate = loaded.Policy.LearningRate
	}

	if loaded.Judge.Type != "" {
		base.Judge.Type = loaded.Judge.Type
	}
	if loaded.Judge.Model != "" {
		base.Judge.Model = loaded.Judge.Model
	}
	if loaded.Judge.MaxTokens > 0 {
		base.Judge.MaxTokens = loaded.Judge.MaxTokens
	}

	if loaded.History.Path != "" {
		base.History.Path = loaded.History.Path
	}

	if len(loaded.Worker.Command) > 0 {
		base.Worker.Command = loaded.Worker.Command
	}
	if loaded.Worker.TimeoutSeconds > 0 {
		base.Worker.TimeoutSeconds = loaded.Worker.TimeoutSeconds
	}
	if loaded.Worker.WorkspaceRoot != "" {
		base.Worker.WorkspaceRoot = loaded.Worker.WorkspaceRoot
	}

	for key, agent := range loaded.Agents {
		base.Agents[key] = agent
	}

	for key, template := range loaded.Templates {
		base.Templates[key] = template
	}

	return nil
}
