// Package registry parses registry command flags and composes the HTTP
// process entrypoint.
package registry

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/lapelpin/lapelpin/internal/platform/cmd"
	server "github.com/lapelpin/lapelpin/internal/registry/app"
)

// Config holds registry command configuration.
type Config struct {
	HTTPAddr     string `env:"LAPELPIN_HTTP_ADDR"        envDefault:":8080"`
	DBPath       string `env:"LAPELPIN_REGISTRY_DB_PATH" envDefault:"data/registry.db"`
	AdminSubject string `env:"LAPELPIN_REGISTRY_ADMIN"   envDefault:"organizer"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "registry HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "registry SQLite database path")
	fs.StringVar(&cfg.AdminSubject, "admin", cfg.AdminSubject, "administrator subject for capability checks")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run builds the registry app and serves it until the context ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceRegistry, func(context.Context) error {
		if err := server.Run(ctx, server.Config{
			HTTPAddr:     cfg.HTTPAddr,
			DBPath:       cfg.DBPath,
			AdminSubject: cfg.AdminSubject,
		}); err != nil {
			return fmt.Errorf("serve registry: %w", err)
		}
		return nil
	})
}
