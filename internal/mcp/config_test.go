package mcp_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/petasbytes/converse-agent/internal/mcp"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_SimpleConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mcp.json")
	writeFile(t, path, `{
	  "servers": {
	    "test-server": {
	      "type": "stdio",
	      "command": "./bin/server"
	    }
	  }
	}`)

	cfg, err := mcp.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sc, ok := cfg.Server("test-server")
	if !ok {
		t.Fatal("test-server not found")
	}
	if sc.Type != "stdio" || sc.Command != "./bin/server" || len(sc.Args) != 0 {
		t.Fatalf("unexpected server config: %+v", sc)
	}
}

func TestLoad_ArgsAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mcp.json")
	writeFile(t, path, `{
	  "servers": {
	    "test-server": {
	      "type": "stdio",
	      "command": "uvx",
	      "args": ["mcp-server-git", "--verbose"],
	      "env": {"GIT_DIR": ".git"}
	    }
	  }
	}`)

	cfg, err := mcp.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sc, _ := cfg.Server("test-server")
	if !reflect.DeepEqual(sc.Args, []string{"mcp-server-git", "--verbose"}) {
		t.Fatalf("args: %v", sc.Args)
	}
	if sc.Env["GIT_DIR"] != ".git" {
		t.Fatalf("env: %v", sc.Env)
	}
}

func TestLoad_ParseError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mcp.json")
	writeFile(t, path, `{not json`)
	if _, err := mcp.Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestServerNames_Sorted(t *testing.T) {
	cfg := &mcp.Config{Servers: map[string]mcp.ServerConfig{
		"zeta": {}, "alpha": {}, "mid": {},
	}}
	if got := cfg.ServerNames(); !reflect.DeepEqual(got, []string{"alpha", "mid", "zeta"}) {
		t.Fatalf("names: %v", got)
	}
}

func TestResolve_WorkspaceFolder(t *testing.T) {
	sc := mcp.ServerConfig{
		Type:    "stdio",
		Command: "${workspaceFolder}/bin/app",
		Args:    []string{"--config", "${workspaceFolder}/config.toml"},
	}
	if got := sc.ResolveCommand("/home/user/project"); got != "/home/user/project/bin/app" {
		t.Fatalf("command: %s", got)
	}
	args := sc.ResolveArgs("/home/user/project")
	if args[1] != "/home/user/project/config.toml" {
		t.Fatalf("args: %v", args)
	}
	// No workspace: left untouched
	if got := sc.ResolveCommand(""); got != "${workspaceFolder}/bin/app" {
		t.Fatalf("unresolved command: %s", got)
	}
}

func TestResolveEnv_MergesEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	writeFile(t, envPath, "# comment\nA=1\nB=from_file\n\nnot-a-pair\n")

	sc := mcp.ServerConfig{
		EnvFile: envPath,
		Env:     map[string]string{"B": "inline", "C": "3"},
	}
	got, err := sc.ResolveEnv("")
	if err != nil {
		t.Fatalf("ResolveEnv: %v", err)
	}
	want := []string{"A=1", "B=inline", "C=3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("env: got=%v want=%v", got, want)
	}
}

func TestDefaultPath_PrefersVSCodeDir(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if _, ok := mcp.DefaultPath(); ok {
		t.Fatal("expected no default path in empty dir")
	}

	writeFile(t, "mcp.json", `{"servers":{}}`)
	path, ok := mcp.DefaultPath()
	if !ok || path != "mcp.json" {
		t.Fatalf("got %q ok=%v", path, ok)
	}

	writeFile(t, filepath.Join(".vscode", "mcp.json"), `{"servers":{}}`)
	path, ok = mcp.DefaultPath()
	if !ok || path != filepath.Join(".vscode", "mcp.json") {
		t.Fatalf("got %q ok=%v", path, ok)
	}
}
