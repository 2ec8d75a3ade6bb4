package cli

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/discograph/pkg/errors"
	"github.com/matzehuels/discograph/pkg/pipeline"
	"github.com/matzehuels/discograph/pkg/storage"
)

// Config is the user configuration read from config.toml. Command-line
// flags override it, and DISCOGRAPH_REDIS_ADDR and DISCOGRAPH_MONGO_URI
// override the matching connection settings.
//
//	sloppy = true
//	unresolved = "drop"
//	workers = 8
//	cache_ttl = "24h"
//
//	[redis]
//	addr = "localhost:6379"
//
//	[mongo]
//	uri = "mongodb://localhost:27017"
//	database = "discograph"
//
//	[server]
//	addr = ":8080"
type Config struct {
	Sloppy     bool     `toml:"sloppy"`
	Unresolved string   `toml:"unresolved"`
	Workers    int      `toml:"workers"`
	CacheTTL   duration `toml:"cache_ttl"`

	Redis struct {
		Addr string `toml:"addr"`
	} `toml:"redis"`

	Mongo struct {
		URI      string `toml:"uri"`
		Database string `toml:"database"`
	} `toml:"mongo"`

	Server struct {
		Addr    string `toml:"addr"`
		DataDir string `toml:"data_dir"`
	} `toml:"server"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	var cfg Config
	cfg.Unresolved = pipeline.DefaultUnresolved
	cfg.Workers = pipeline.DefaultWorkers
	cfg.CacheTTL = duration{pipeline.DefaultCacheTTL}
	cfg.Mongo.Database = storage.DefaultDatabase
	cfg.Server.Addr = ":8080"
	return cfg
}

// loadConfig reads the config file at path, or at the default location when
// path is empty. A missing default file is not an error.
func loadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, configFile)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	case stderrors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if v := os.Getenv("DISCOGRAPH_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("DISCOGRAPH_MONGO_URI"); v != "" {
		cfg.Mongo.URI = v
	}
	if cfg.Mongo.URI != "" {
		if err := errors.ValidateURI(cfg.Mongo.URI, "mongodb", "mongodb+srv"); err != nil {
			return cfg, fmt.Errorf("mongo.uri: %w", err)
		}
	}
	return cfg, nil
}

// duration is a time.Duration written as a string ("36h") in TOML.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
