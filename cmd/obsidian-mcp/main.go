// ABOUTME: Entry point for the obsidian-mcp gateway server.
// ABOUTME: Serves the vault tool API that the stdio bridge connects to.

package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/admjs/obsidian-mcp/internal/builtins"
	"github.com/admjs/obsidian-mcp/internal/config"
	"github.com/admjs/obsidian-mcp/internal/index"
	"github.com/admjs/obsidian-mcp/internal/prompts"
	"github.com/admjs/obsidian-mcp/internal/search"
	"github.com/admjs/obsidian-mcp/internal/server"
	"github.com/admjs/obsidian-mcp/internal/tools"
	"github.com/admjs/obsidian-mcp/internal/vault"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
       _         _     _ _
  ___ | |__  ___(_) __| (_) __ _ _ __        _ __ ___   ___ _ __
 / _ \| '_ \/ __| |/ _' | |/ _' | '_ \ _____| '_ ' _ \ / __| '_ \
| (_) | |_) \__ \ | (_| | | (_| | | | |_____| | | | | | (__| |_) |
 \___/|_.__/|___/_|\__,_|_|\__,_|_| |_|     |_| |_| |_|\___| .__/
                                                           |_|
`

// getConfigPath returns the path to the gateway config file.
// Priority: OBSIDIAN_MCP_CONFIG env var > XDG_CONFIG_HOME/obsidian-mcp/gateway.yaml
// > ~/.config/obsidian-mcp/gateway.yaml
func getConfigPath() string {
	if envPath := os.Getenv("OBSIDIAN_MCP_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "gateway.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "obsidian-mcp", "gateway.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: obsidian-mcp <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve     Start the gateway server")
		fmt.Println("  init      Create a starter config file")
		fmt.Println("  keygen    Generate a new API key")
		fmt.Println("  health    Check gateway health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "keygen":
		err = runKeygen()
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:  %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Vault:   %s\n", cfg.Vault.Path)
	green.Print("    ▶ ")
	fmt.Printf("Listen:  %s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()

	logger.Info("starting obsidian-mcp",
		"config", configPath,
		"vault", cfg.Vault.Path,
		"addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
	)

	v, err := vault.Open(cfg.Vault.Path, logger.With("component", "vault"))
	if err != nil {
		return fmt.Errorf("opening vault: %w", err)
	}

	ix, err := index.Open(cfg.Index.Path, logger.With("component", "index"))
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}
	defer ix.Close()

	if err := ix.Rebuild(ctx, v); err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	promptReg := prompts.NewRegistry(logger.With("component", "prompts"))
	promptReg.SetTemplateDir(cfg.Templates.Dir)
	promptReg.SetSystemPrompt(systemPrompt(v))

	engine := search.New(v, logger.With("component", "search"))

	registry := tools.NewRegistry(logger.With("component", "registry"))
	builtins.RegisterAll(registry, v, engine, ix, promptReg)

	srv, err := server.New(server.Config{
		Host:     cfg.Server.Host,
		Port:     cfg.Server.Port,
		APIKey:   cfg.Auth.APIKey,
		Version:  version,
		Registry: registry,
		Prompts:  promptReg,
		Logger:   logger.With("component", "server"),
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	if err := srv.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	logger.Info("gateway ready", "tools", registry.Len())

	<-ctx.Done()
	logger.Info("shutting down")
	return srv.Stop()
}

// systemPrompt builds the init prompt getter for the vault.
func systemPrompt(v *vault.Vault) func() string {
	return func() string {
		return fmt.Sprintf(
			"You are connected to an Obsidian-style markdown vault at %s. "+
				"Use list_notes and search_vault to discover content, read_note to "+
				"fetch it, and create_note/append_to_note to write. Paths are "+
				"vault-relative and forward-slash separated.",
			v.Root(),
		)
	}
}

func runInit() error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config already exists at %s", configPath)
	}

	key, err := generateKey()
	if err != nil {
		return err
	}

	cfg := config.Config{}
	cfg.Vault.Path = "${HOME}/vault"
	cfg.Auth.APIKey = key
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = config.DefaultPort
	cfg.Logging.Level = "info"

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("Created %s\n", configPath)
	fmt.Println("Edit vault.path, then run: obsidian-mcp serve")
	return nil
}

func runKeygen() error {
	key, err := generateKey()
	if err != nil {
		return err
	}
	fmt.Println(key)
	return nil
}

// generateKey returns a 32-byte URL-safe random key.
func generateKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func runHealth(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s:%d/api/mcp/health", cfg.Server.Host, cfg.Server.Port)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+cfg.Auth.APIKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway unhealthy: %d %s", resp.StatusCode, body)
	}

	var health struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal(body, &health); err != nil {
		return fmt.Errorf("decoding health response: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ %s", health.Status)
	fmt.Printf(" (version %s)\n", health.Version)
	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
