package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/discograph/pkg/pipeline"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), configFile)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigMissingDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("DISCOGRAPH_REDIS_ADDR", "")
	t.Setenv("DISCOGRAPH_MONGO_URI", "")

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Unresolved != pipeline.DefaultUnresolved || cfg.Workers != pipeline.DefaultWorkers {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.CacheTTL.Duration != pipeline.DefaultCacheTTL {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
}

func TestLoadConfigMissingExplicit(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("loadConfig(missing explicit path) succeeded")
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("DISCOGRAPH_REDIS_ADDR", "")
	t.Setenv("DISCOGRAPH_MONGO_URI", "")
	path := writeConfig(t, `
sloppy = true
unresolved = "drop"
workers = 8
cache_ttl = "36h"

[redis]
addr = "localhost:6379"

[mongo]
uri = "mongodb://db:27017"
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if !cfg.Sloppy || cfg.Unresolved != "drop" || cfg.Workers != 8 {
		t.Errorf("analysis settings = %+v", cfg)
	}
	if cfg.CacheTTL.Duration != 36*time.Hour {
		t.Errorf("CacheTTL = %v, want 36h", cfg.CacheTTL)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Mongo.URI != "mongodb://db:27017" {
		t.Errorf("connections = %+v %+v", cfg.Redis, cfg.Mongo)
	}
	// Unset keys keep their defaults.
	if cfg.Mongo.Database != "discograph" || cfg.Server.Addr != ":8080" {
		t.Errorf("defaults lost: %+v %+v", cfg.Mongo, cfg.Server)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeConfig(t, "[redis]\naddr = \"file:6379\"\n")
	t.Setenv("DISCOGRAPH_REDIS_ADDR", "env:6379")
	t.Setenv("DISCOGRAPH_MONGO_URI", "mongodb://env")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Redis.Addr != "env:6379" || cfg.Mongo.URI != "mongodb://env" {
		t.Errorf("env not applied: %+v %+v", cfg.Redis, cfg.Mongo)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "workers = ["},
		{"bad duration", `cache_ttl = "soon"`},
		{"wrong type", `workers = "many"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadConfig(writeConfig(t, tt.content)); err == nil {
				t.Error("loadConfig succeeded")
			}
		})
	}
}

func TestLoadConfigRejectsBadMongoURI(t *testing.T) {
	t.Setenv("DISCOGRAPH_REDIS_ADDR", "")
	t.Setenv("DISCOGRAPH_MONGO_URI", "")
	path := writeConfig(t, "[mongo]\nuri = \"http://db:27017\"\n")
	if _, err := loadConfig(path); err == nil {
		t.Error("loadConfig accepted an http:// mongo uri")
	}
}
