// ABOUTME: Entry point for the stdio bridge subprocess.
// ABOUTME: Desktop MCP clients launch this and speak JSON-RPC over stdin/stdout.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/admjs/obsidian-mcp/internal/bridge"
)

// Version is set by goreleaser at build time.
var version = "dev"

func main() {
	// Stdout is reserved for protocol frames; everything else goes to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(),
	}))
	slog.SetDefault(logger)

	cfg, err := bridge.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := bridge.NewClient(cfg.BaseURL(), cfg.APIKey, logger.With("component", "client"))
	b := bridge.New(client, os.Stdin, os.Stdout, version, logger.With("component", "bridge"))

	logger.Info("connecting to gateway",
		"gateway", cfg.BaseURL(),
		"vault", cfg.VaultPath,
	)

	if err := b.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: gateway unreachable: %v\n", err)
		os.Exit(1)
	}

	// A termination signal has to unblock the pending stdin read, or the
	// process would linger until the client writes another line.
	go func() {
		<-ctx.Done()
		os.Stdin.Close()
	}()

	if err := b.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func logLevel() slog.Level {
	switch os.Getenv("OBSIDIAN_LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
