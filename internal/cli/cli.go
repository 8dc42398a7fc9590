// Package cli implements the depmatrix command-line interface.
//
// This package provides commands for computing dependency structure
// matrices from graph files, exploring them interactively, serving them
// over HTTP, exporting DOT/SVG renderings, and managing sessions and
// the matrix cache. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - matrix: Compute and print a matrix for a graph and action path
//   - explore: Interactive terminal matrix explorer
//   - serve: HTTP API for sessions and matrix resolution
//   - export: Generate DOT or SVG renderings
//   - session: Manage saved exploration sessions
//   - cache: Manage the matrix cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers
// are passed through context.Context to allow structured progress
// tracking.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/depmatrix/depmatrix/pkg/buildinfo"
	"github.com/depmatrix/depmatrix/pkg/cache"
	"github.com/depmatrix/depmatrix/pkg/graph"
	"github.com/depmatrix/depmatrix/pkg/session"
	"github.com/depmatrix/depmatrix/pkg/view"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "depmatrix"

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
	Config Config
}

// New creates a new CLI instance with a default logger and the on-disk
// configuration, falling back to defaults when no config file exists.
func New(w io.Writer, level log.Level) *CLI {
	cfg, err := LoadConfig("")
	logger := newLogger(w, level)
	if err != nil {
		logger.Warn("falling back to default configuration", "err", err)
		cfg = DefaultConfig()
	}
	return &CLI{Logger: logger, Config: cfg}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "depmatrix",
		Short:        "Depmatrix explores dependency graphs as structure matrices",
		Long:         `Depmatrix is a CLI tool for exploring hierarchical dependency graphs as dependency structure matrices, resolving replayable expand/focus paths into ordered, weighted views.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.matrixCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.sessionCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Model Factory
// =============================================================================

// newModel loads the graph file and assembles a view model backed by
// the configured cache.
func (c *CLI) newModel(cmd *cobra.Command, graphPath string, noCache bool) (*view.Model, error) {
	g, err := graph.ReadGraphFile(graphPath)
	if err != nil {
		return nil, err
	}
	mc, err := c.newCache(cmd, noCache)
	if err != nil {
		return nil, err
	}
	// Namespacing keys keeps shared backends like Redis tidy.
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), appName)
	m := view.NewModel(graph.NewStore(g), mc, keyer, c.Logger)
	m.Resolver().Threshold = c.Config.Threshold
	return m, nil
}

// newCache builds the matrix cache from configuration. Cache setup
// failures degrade to a null cache so commands still run.
func (c *CLI) newCache(cmd *cobra.Command, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case CacheBackendRedis:
		rc, err := cache.NewRedisCache(cmd.Context(), c.Config.Cache.RedisAddr, c.Config.Cache.RedisPassword, c.Config.Cache.RedisDB)
		if err != nil {
			c.Logger.Warn("redis cache unavailable, running uncached", "err", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	default:
		dir := c.Config.Cache.Dir
		if dir == "" {
			var err error
			dir, err = cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
		}
		return cache.NewFileCache(dir)
	}
}

// newSessionStore builds the session store from configuration.
func (c *CLI) newSessionStore(cmd *cobra.Command) (session.Store, error) {
	switch c.Config.Sessions.Backend {
	case SessionBackendMongo:
		return session.NewMongoStore(cmd.Context(), c.Config.Sessions.MongoURI, c.Config.Sessions.MongoDatabase)
	default:
		return session.NewFileStore(c.Config.Sessions.Dir)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/depmatrix/).
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
