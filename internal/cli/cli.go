// Package cli implements the string2shape command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/PeterZhouSZ/string2shape/pkg/cache"
	"github.com/PeterZhouSZ/string2shape/pkg/config"
	"github.com/PeterZhouSZ/string2shape/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "string2shape"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// version is reported by --version; overridden at build time via SetVersion.
var version = "dev"

// SetVersion sets the version string displayed by --version. Typically
// called by the main package with a value injected via ldflags.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is bound to the persistent --config flag.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "string2shape",
		Short:        "string2shape encodes rigid multi-part objects as collision strings",
		Long:         `string2shape builds collision graphs over multi-part OBJ files, encodes them as SMILES-like strings, generates grammar-constrained shape variations, and repairs drifted geometry back onto its learned contacts.`,
		Version:      version,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "TOML configuration file")

	// Register all subcommands
	root.AddCommand(c.collideCommand())
	root.AddCommand(c.variationsCommand())
	root.AddCommand(c.repairCommand())
	root.AddCommand(c.materializeCommand())
	root.AddCommand(c.gridCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.datasetCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The cache backend comes
// from the configuration, with --no-cache forcing the null backend.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	store, err := newCache(ctx, cfg.Cache, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cfg, store, nil, c.Logger), nil
}

func newCache(ctx context.Context, cfg config.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case "file":
		dir := cfg.Dir
		if !filepath.IsAbs(dir) {
			base, err := cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = filepath.Join(base, dir)
		}
		return cache.NewFileCache(dir)
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisOpts{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	default:
		return cache.NewNullCache(), nil
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/string2shape/).
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
