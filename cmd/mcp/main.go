// fundme MCP server.
// Exposes read-only fundme tools over MCP stdio transport.
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gateway-fm/fundme/internal/config"
	mcptools "github.com/gateway-fm/fundme/internal/mcp"
	"github.com/gateway-fm/fundme/internal/storage"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("FUNDME_CONFIG"), config.Overrides{})
	if err != nil {
		return err
	}
	registry, err := cfg.Registry()
	if err != nil {
		return err
	}
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	s := server.NewMCPServer(
		"fundme",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	mcptools.RegisterTools(s, mcptools.NewSource(registry, cfg.Network, store))

	return server.ServeStdio(s)
}
