package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/petasbytes/converse-agent/internal/config"
)

func TestLoad_MissingFile_YieldsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := config.Default()
	if cfg != want {
		t.Fatalf("got %+v want %+v", cfg, want)
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "model: test-model\nmax_tool_rounds: 5\ntoken_budget: 4000\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "test-model" || cfg.MaxToolRounds != 5 || cfg.TokenBudget != 4000 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	// Untouched keys keep their defaults.
	if cfg.MaxTokens != config.Default().MaxTokens || cfg.Transcript != config.Default().Transcript {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoad_MalformedYAML_Errors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("model: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
