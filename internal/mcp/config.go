// Package mcp connects the agent to Model Context Protocol servers: it
// parses the VS Code style mcp.json configuration and exposes a connected
// stdio server as a tool provider for the engine.
package mcp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Config is the root of an mcp.json file.
type Config struct {
	// Inputs holds prompt definitions; parsed for compatibility, unused.
	Inputs []InputPrompt `json:"inputs,omitempty"`
	// Servers maps server name to its launch configuration.
	Servers map[string]ServerConfig `json:"servers"`
}

// InputPrompt is an input prompt definition from mcp.json.
type InputPrompt struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	Description string `json:"description"`
	Password    bool   `json:"password,omitempty"`
}

// ServerConfig describes how to launch one MCP server.
type ServerConfig struct {
	// Type is the transport kind; only "stdio" is supported.
	Type    string            `json:"type"`
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	EnvFile string            `json:"envFile,omitempty"`
	Cwd     string            `json:"cwd,omitempty"`
}

// Load reads and parses an mcp.json file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// DefaultPath returns the first existing configuration path, searching
// .vscode/mcp.json (the VS Code convention) then mcp.json in the current
// directory. ok is false when neither exists.
func DefaultPath() (path string, ok bool) {
	for _, p := range []string{filepath.Join(".vscode", "mcp.json"), "mcp.json"} {
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// LoadDefault loads the configuration from the default search path.
// Returns (nil, false, nil) when no configuration file exists.
func LoadDefault() (*Config, bool, error) {
	path, ok := DefaultPath()
	if !ok {
		return nil, false, nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}

// ServerNames returns the configured server names in sorted order.
func (c *Config) ServerNames() []string {
	names := make([]string, 0, len(c.Servers))
	for name := range c.Servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Server looks up one server configuration by name.
func (c *Config) Server(name string) (ServerConfig, bool) {
	sc, ok := c.Servers[name]
	return sc, ok
}

// resolveVars expands ${workspaceFolder} in s.
func resolveVars(s, workspace string) string {
	if workspace == "" {
		return s
	}
	return strings.ReplaceAll(s, "${workspaceFolder}", workspace)
}

// ResolveCommand returns the launch command with variables expanded.
func (s ServerConfig) ResolveCommand(workspace string) string {
	return resolveVars(s.Command, workspace)
}

// ResolveArgs returns the argument list with variables expanded.
func (s ServerConfig) ResolveArgs(workspace string) []string {
	out := make([]string, len(s.Args))
	for i, a := range s.Args {
		out[i] = resolveVars(a, workspace)
	}
	return out
}

// ResolveEnv merges the optional envFile with the inline env map (inline
// wins) and returns KEY=VALUE pairs with variables expanded. envFile lines
// are KEY=VALUE; blank lines and #-comments are skipped.
func (s ServerConfig) ResolveEnv(workspace string) ([]string, error) {
	merged := map[string]string{}
	if s.EnvFile != "" {
		data, err := os.ReadFile(resolveVars(s.EnvFile, workspace))
		if err != nil {
			return nil, fmt.Errorf("envFile: %w", err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			k, v, ok := strings.Cut(line, "=")
			if !ok {
				continue
			}
			merged[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	for k, v := range s.Env {
		merged[k] = resolveVars(v, workspace)
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+merged[k])
	}
	return out, nil
}
