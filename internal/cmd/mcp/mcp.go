// Package mcp parses MCP command flags and serves registry tools over stdio.
package mcp

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/lapelpin/lapelpin/internal/api/mcpserver"
	entrypoint "github.com/lapelpin/lapelpin/internal/platform/cmd"
	"github.com/lapelpin/lapelpin/internal/registry/service"
	"github.com/lapelpin/lapelpin/internal/registry/storage/sqlite"
)

// Config holds MCP command configuration.
type Config struct {
	DBPath       string `env:"LAPELPIN_REGISTRY_DB_PATH" envDefault:"data/registry.db"`
	AdminSubject string `env:"LAPELPIN_REGISTRY_ADMIN"   envDefault:"organizer"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "registry SQLite database path")
	fs.StringVar(&cfg.AdminSubject, "admin", cfg.AdminSubject, "administrator subject for capability checks")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP protocol adapter on stdio.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(context.Context) error {
		dbPath := strings.TrimSpace(cfg.DBPath)
		if dbPath == "" {
			return fmt.Errorf("registry db path is required")
		}
		store, err := sqlite.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open registry store: %w", err)
		}
		defer func() { _ = store.Close() }()

		svc := service.NewService(store, strings.TrimSpace(cfg.AdminSubject), nil)
		mcpServer, err := mcpserver.New(svc)
		if err != nil {
			return fmt.Errorf("init MCP server: %w", err)
		}
		if err := mcpServer.Serve(ctx); err != nil {
			return fmt.Errorf("serve MCP: %w", err)
		}
		return nil
	})
}
