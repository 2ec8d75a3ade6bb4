// Package cli implements the discograph command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/discograph/pkg/buildinfo"
	"github.com/matzehuels/discograph/pkg/cache"
	"github.com/matzehuels/discograph/pkg/pipeline"
	"github.com/matzehuels/discograph/pkg/render"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "discograph"

	// configFile is the file name of the user configuration.
	configFile = "config.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config     Config
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Discograph analyzes discourse annotation graphs",
		Long: `Discograph reads discourse-annotated documents (EDUs, relations and
complex discourse units) into a typed hypergraph, resolves CDU heads,
eliminates CDUs in favour of their heads and puts units in reading order.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/discograph/config.toml)")

	root.AddCommand(c.headsCommand())
	root.AddCommand(c.orderCommand())
	root.AddCommand(c.stripCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cache, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

// newCache picks Redis when an address is configured and the local file
// cache otherwise. A missing home directory disables caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if addr := c.Config.Redis.Addr; addr != "" {
		rc, err := cache.NewRedisCache(ctx, addr)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		c.Logger.Debug("using redis cache", "addr", addr)
		return rc, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/discograph/).
func cacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// configDir returns the config directory (~/.config/discograph/).
func configDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// dataDir returns the data directory (~/.local/share/discograph/).
func dataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions returns pipeline options seeded from the configuration.
func (c *CLI) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		Sloppy:     c.Config.Sloppy,
		Unresolved: c.Config.Unresolved,
		Workers:    c.Config.Workers,
		CacheTTL:   c.Config.CacheTTL.Duration,
		Logger:     c.Logger,
	}
}

// addAnalyzeFlags registers the flags shared by every analyzing command.
// The configuration is only loaded in the root pre-run, so flag defaults are
// zero values and [CLI.options] merges whatever was set.
func addAnalyzeFlags(cmd *cobra.Command, f *analyzeFlags) {
	cmd.Flags().BoolVar(&f.sloppy, "sloppy", false, "pick the leftmost head of multiheaded CDUs")
	cmd.Flags().StringVar(&f.unresolved, "unresolved", "", "policy for CDUs without a head: keep (default), drop")
	cmd.Flags().IntVarP(&f.workers, "workers", "j", 0, "documents processed in parallel")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute cached results")
}

type analyzeFlags struct {
	sloppy     bool
	unresolved string
	workers    int
	noCache    bool
	refresh    bool
}

// options merges explicitly set flags over the configured defaults.
func (c *CLI) options(cmd *cobra.Command, f *analyzeFlags) pipeline.Options {
	opts := c.pipelineOptions()
	if cmd.Flags().Changed("sloppy") {
		opts.Sloppy = f.sloppy
	}
	if f.unresolved != "" {
		opts.Unresolved = f.unresolved
	}
	if f.workers > 0 {
		opts.Workers = f.workers
	}
	opts.Refresh = f.refresh
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{string(render.FormatSVG)}
	}
	return strings.Split(s, ",")
}
