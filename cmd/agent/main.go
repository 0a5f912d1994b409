package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/chzyer/readline"

	"github.com/petasbytes/converse-agent/internal/backend"
	"github.com/petasbytes/converse-agent/internal/config"
	"github.com/petasbytes/converse-agent/internal/engine"
	"github.com/petasbytes/converse-agent/internal/logger"
	"github.com/petasbytes/converse-agent/internal/mcp"
	"github.com/petasbytes/converse-agent/memory"
	"github.com/petasbytes/converse-agent/tools"
)

const readlineHistoryPath = ".agent/readline_history"

func main() {
	logger.Configure()

	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if closer, path, err := logger.SetupFile(cfg.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "warning: log file unavailable: %v\n", err)
	} else {
		defer closer.Close()
		logger.Named("main").WithField("path", path).Info("logging started")
	}

	args := os.Args[1:]
	if len(args) > 0 && args[0] == "mcp" {
		os.Exit(inspectMCP(cfg, args[1:]))
	}

	// The SDK reads the key itself; check up front for a clearer message.
	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		fmt.Println("Missing ANTHROPIC_API_KEY; export it before running.")
		os.Exit(1)
	}

	os.Exit(runREPL(cfg))
}

// inspectMCP implements the "agent mcp [server]" subcommand: with no
// argument it lists configured servers, with one it connects and prints
// the server's tool catalog.
func inspectMCP(cfg config.Config, args []string) int {
	mcpCfg, err := loadMCPConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mcp: %v\n", err)
		return 1
	}
	if mcpCfg == nil {
		fmt.Println("No mcp.json found (.vscode/mcp.json or mcp.json).")
		return 1
	}

	if len(args) == 0 {
		for _, name := range mcpCfg.ServerNames() {
			fmt.Println(name)
		}
		return 0
	}

	name := args[0]
	sc, ok := mcpCfg.Server(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "mcp: unknown server %q\n", name)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mcp.Connect(ctx, name, sc, workspaceFolder())
	if err != nil {
		fmt.Fprintf(os.Stderr, "mcp: %v\n", err)
		return 1
	}
	defer client.Close()

	descs, err := client.List(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mcp: %v\n", err)
		return 1
	}
	for _, d := range descs {
		if d.Description != "" {
			fmt.Printf("%s\t%s\n", d.Name, firstLine(d.Description))
		} else {
			fmt.Println(d.Name)
		}
	}
	return 0
}

func runREPL(cfg config.Config) int {
	log := logger.Named("main")

	entries, err := memory.Load(cfg.Transcript)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load transcript: %v\n", err)
	}
	history := memory.Seed(entries)

	// Env switch takes precedence over the config file, like the other
	// AGT_* flags.
	if v := os.Getenv("AGT_TOKEN_BUDGET"); v != "" {
		if budget, err := strconv.Atoi(v); err == nil {
			cfg.TokenBudget = budget
		} else {
			fmt.Fprintf(os.Stderr, "warning: invalid AGT_TOKEN_BUDGET %q ignored\n", v)
		}
	}

	var reqOpts []option.RequestOption
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	be := backend.New(backend.Options{
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		TokenBudget: cfg.TokenBudget,
	}, reqOpts...)
	orch := engine.New(be, tools.NewLocalInvoker(), history, os.Stdout, engine.Config{
		MaxToolRounds:    cfg.MaxToolRounds,
		ProgressInterval: time.Duration(cfg.ProgressIntervalMs) * time.Millisecond,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ensureParentDir(readlineHistoryPath); err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot create %s: %v\n", filepath.Dir(readlineHistoryPath), err)
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "\033[94mYou\033[0m: ",
		HistoryFile: readlineHistoryPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		return 1
	}
	defer rl.Close()

	// The active MCP connection, if any. Closed on switch and on exit.
	var mcpClient *mcp.Client
	defer func() {
		if err := mcpClient.Close(); err != nil {
			log.WithField("error", err.Error()).Warn("mcp close failed")
		}
	}()

	fmt.Println("Chat with the agent (exit or Ctrl-D to quit, `mcp <server>` to switch tools)")

	for {
		if ctx.Err() != nil {
			fmt.Println("\nExiting...")
			return 0
		}

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			fmt.Println("Exiting...")
			return 0
		}
		if errors.Is(err, io.EOF) {
			return 0
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: input error: %v\n", err)
			return 1
		}

		input := strings.TrimSpace(line)
		switch {
		case input == "":
			continue
		case input == "exit" || input == "quit":
			return 0
		case input == "mcp" || strings.HasPrefix(input, "mcp "):
			mcpClient = switchMCP(ctx, cfg, orch, mcpClient, strings.TrimSpace(strings.TrimPrefix(input, "mcp")))
			continue
		}

		if err := orch.Submit(ctx, input); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			log.WithField("error", err.Error()).Warn("turn failed")
			if ctx.Err() != nil {
				fmt.Println("\nExiting...")
				return 0
			}
		}

		if err := memory.Save(cfg.Transcript, memory.FromHistory(orch.History().Snapshot())); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to save transcript: %v\n", err)
		}
	}
}

// switchMCP handles the in-session `mcp` command. An empty argument lists
// the configured servers; "off" reverts to the built-in tools; a server
// name connects to it and swaps the orchestrator's tool provider.
func switchMCP(ctx context.Context, cfg config.Config, orch *engine.Orchestrator, current *mcp.Client, name string) *mcp.Client {
	if name == "off" {
		if err := current.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: mcp close: %v\n", err)
		}
		orch.SetInvoker(tools.NewLocalInvoker())
		fmt.Println("Using built-in tools.")
		return nil
	}

	mcpCfg, err := loadMCPConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mcp: %v\n", err)
		return current
	}
	if mcpCfg == nil {
		fmt.Println("No mcp.json found (.vscode/mcp.json or mcp.json).")
		return current
	}

	if name == "" {
		for _, n := range mcpCfg.ServerNames() {
			fmt.Println(n)
		}
		return current
	}

	sc, ok := mcpCfg.Server(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "mcp: unknown server %q\n", name)
		return current
	}

	client, err := mcp.Connect(ctx, name, sc, workspaceFolder())
	if err != nil {
		fmt.Fprintf(os.Stderr, "mcp: %v\n", err)
		return current
	}
	if err := current.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: mcp close: %v\n", err)
	}
	orch.SetInvoker(client)
	fmt.Printf("Using MCP server %s.\n", name)
	return client
}

func loadMCPConfig(cfg config.Config) (*mcp.Config, error) {
	if cfg.MCPConfig != "" {
		return mcp.Load(cfg.MCPConfig)
	}
	mcpCfg, found, err := mcp.LoadDefault()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return mcpCfg, nil
}

func workspaceFolder() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return cwd
}

// ensureParentDir creates the directory a state file lives in. State files
// must not depend on some other component having made the directory first.
func ensureParentDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
