// Package config loads the agent's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the agent looks for its configuration.
const DefaultPath = ".agent/config.yaml"

// Config carries the agent settings. Zero values select built-in defaults
// downstream (model, max tokens, progress interval).
type Config struct {
	// Model is the model identifier sent to the backend.
	Model string `yaml:"model"`
	// BaseURL overrides the backend endpoint (proxies, test servers).
	BaseURL string `yaml:"base_url"`
	// MaxTokens caps response generation.
	MaxTokens int `yaml:"max_tokens"`
	// MaxToolRounds bounds chained tool rounds per submission; 0 means
	// unbounded.
	MaxToolRounds int `yaml:"max_tool_rounds"`
	// ProgressIntervalMs is the waiting-indicator tick interval.
	ProgressIntervalMs int `yaml:"progress_interval_ms"`
	// TokenBudget, when positive, enables history windowing on send.
	TokenBudget int `yaml:"token_budget"`
	// MCPConfig overrides the mcp.json search path.
	MCPConfig string `yaml:"mcp_config"`
	// Transcript is the conversation persistence path.
	Transcript string `yaml:"transcript"`
	// LogFile receives structured logs.
	LogFile string `yaml:"log_file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MaxTokens:          1024,
		ProgressIntervalMs: 200,
		Transcript:         ".agent/conversation.json",
	}
}

// Load reads the configuration at path, layering it over Default.
// A missing file yields the defaults; a malformed file is an error.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
