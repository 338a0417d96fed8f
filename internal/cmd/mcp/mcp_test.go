package mcp

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "data/registry.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.AdminSubject != "organizer" {
		t.Fatalf("expected default admin subject, got %q", cfg.AdminSubject)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("LAPELPIN_REGISTRY_DB_PATH", "env/registry.db")

	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	args := []string{"-db-path", "flag/registry.db", "-admin", "organizer-2"}
	cfg, err := ParseConfig(fs, args)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "flag/registry.db" {
		t.Fatalf("expected flag db path, got %q", cfg.DBPath)
	}
	if cfg.AdminSubject != "organizer-2" {
		t.Fatalf("expected flag admin subject, got %q", cfg.AdminSubject)
	}
}
