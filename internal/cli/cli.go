// Package cli implements the cladding command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cladding/pkg/buildinfo"
	"github.com/matzehuels/cladding/pkg/cache"
	"github.com/matzehuels/cladding/pkg/config"
	"github.com/matzehuels/cladding/pkg/core/units"
	"github.com/matzehuels/cladding/pkg/errors"
	"github.com/matzehuels/cladding/pkg/observability"
	"github.com/matzehuels/cladding/pkg/pipeline"
	"github.com/matzehuels/cladding/pkg/render"
	"github.com/matzehuels/cladding/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "cladding"

	// defaultSession is the preview session used by the CLI.
	defaultSession = "cli"
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

	// logOut is where Logger writes.
	logOut io.Writer

	// configPath is the --config flag. Empty means the default location,
	// which may be absent.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), logOut: w}
}

// SetLogLevel updates the logger's level. At debug level the layout,
// cache and server hooks log through the CLI logger.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		observability.NewLogHooks(c.Logger).Install()
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Cladding lays out facade elements over wall regions",
		Long: `Cladding computes running-bond and stack-bond layouts of cladding
elements over planar wall regions, offsetting each region by its cavity and
trimming or consolidating the pieces at its edges.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: user config dir)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.cornersCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the config file. The default location is optional, an
// explicit --config is not. Unknown keys are logged as warnings.
func (c *CLI) loadConfig() (config.Config, error) {
	path, optional := c.configPath, false
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return config.Default(units.Default), nil
		}
		path, optional = p, true
	}
	cfg, warnings, err := config.Load(path, optional)
	if err != nil {
		return config.Config{}, err
	}
	for _, w := range warnings {
		c.Logger.Warn("config", "file", path, "warning", w)
	}
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	cc, err := newCache(ctx, cfg.Cache, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache.Observed(cc), nil, c.Logger), nil
}

func newCache(ctx context.Context, cfg config.Cache, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cfg.Redis)
	default:
		dir := cfg.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	}
}

// newStore opens the configured layout store.
func newStore(ctx context.Context, cfg config.Store) (store.Store, error) {
	switch cfg.Backend {
	case config.StoreMongo:
		return store.NewMongoStore(ctx, cfg.Mongo)
	default:
		return store.NewMemoryStore(), nil
	}
}

// newCommitStore opens the store for the --commit flag. Committing from the
// CLI only makes sense against a persistent backend.
func newCommitStore(ctx context.Context, cfg config.Store) (store.Store, error) {
	if cfg.Backend != config.StoreMongo {
		return nil, errors.New(errors.ErrCodeConfiguration,
			"--commit needs store.backend = %q in the config file", config.StoreMongo)
	}
	return newStore(ctx, cfg)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/cladding/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// previewDir returns the directory of CLI preview sessions.
func previewDir() (string, error) {
	dir, err := cacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "previews"), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{render.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(parts[i]))
	}
	return parts
}

// basePath returns output without extension, or input without its
// extension when output is empty.
func basePath(output, input string) string {
	if output != "" {
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return strings.TrimSuffix(base, ".layout")
}
