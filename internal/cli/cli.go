// Package cli implements the orthoroute command-line interface.
//
// Commands route connections (connect, connect-points), repair them after a
// shape moved (repair), render diagram snapshots (render), serve the HTTP
// API (serve) and explore repairs interactively (play). The CLI is built
// with cobra; all commands log through charmbracelet/log and honour
// --verbose and --config.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orthoroute/pkg/buildinfo"
	"github.com/matzehuels/orthoroute/pkg/cache"
	"github.com/matzehuels/orthoroute/pkg/config"
	"github.com/matzehuels/orthoroute/pkg/manhattan"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "orthoroute"

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

	configPath string
	config     config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Orthoroute draws and repairs orthogonal connections between shapes",
		Long:         `Orthoroute computes Manhattan (right-angled) routes between rectangles and keeps them tidy while shapes are dragged around, changing as few bends as possible.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/orthoroute/config.toml)")

	root.AddCommand(c.connectCommand())
	root.AddCommand(c.connectPointsCommand())
	root.AddCommand(c.repairCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.playCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and attaches the logger to the command
// context.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.config = cfg
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	c.Logger.Debug("config loaded", "path", c.configPath, "cache", cfg.Cache.Backend, "storage", cfg.Storage.Backend)
	return nil
}

// =============================================================================
// Layouter Factory
// =============================================================================

// newLayouter creates a caching router for CLI use.
func (c *CLI) newLayouter(ctx context.Context, noCache bool) (*manhattan.CachedLayouter, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	l := manhattan.NewCached(c.config.Layouter(), ch, nil, c.Logger)
	l.TTL = c.config.Cache.TTL.Duration
	return l, nil
}

// newCache opens the configured cache. A cache that cannot be opened is
// reported and replaced by a null cache; routing never needs it.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	ch, err := c.config.OpenCache(ctx, dir)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without", "err", err)
		return cache.NewNullCache(), nil
	}
	return ch, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/orthoroute/).
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

// dataDir returns the directory for stored diagrams (~/.local/share/orthoroute/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName, "diagrams"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName, "diagrams"), nil
}
