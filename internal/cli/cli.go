// Package cli implements the godepscan command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/godepscan/pkg/buildinfo"
	"github.com/matzehuels/godepscan/pkg/cache"
	"github.com/matzehuels/godepscan/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "godepscan"

	// Output formats for records.
	formatTable = "table"
	formatJSON  = "json"
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
	Config Config

	configPath string
	runID      string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: Config{}.WithDefaults(),
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
		Short: "godepscan lists the dependencies pinned by dep, godep and vndr",
		Long: `godepscan reads the lock and manifest files of the legacy Go dependency
managers (dep's Gopkg.lock, godep's Godeps.json and vndr's vendor.conf) and
prints a normalized list of dependency records.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/godepscan/config.toml)")

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.parseCommand())
	root.AddCommand(c.managersCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the config file and attaches a run-scoped logger to the
// command context.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	cfg, unknown, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg

	c.runID = uuid.NewString()
	logger := c.Logger.With("run", c.runID[:8])
	for _, key := range unknown {
		logger.Warn("unknown config key", "key", key)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, logger))
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if ns := c.Config.Cache.Namespace; ns != "" {
		keyer = cache.NewScopedKeyer(nil, ns+":")
	}
	return pipeline.NewRunner(store, keyer, loggerFromContext(ctx)), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendRedis:
		rc, err := cache.NewRedisCache(ctx, c.Config.Cache.RedisURL, "")
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return rc, nil
	default:
		dir, err := c.cacheDir()
		if err != nil {
			loggerFromContext(ctx).Debug("file cache disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// pipelineOptions maps config values onto runner options.
func (c *CLI) pipelineOptions(ctx context.Context) pipeline.Options {
	return pipeline.Options{
		FlushTrailingStanza: c.Config.FlushTrailingStanza,
		Ensure:              c.Config.Ensure,
		EnsureTimeout:       c.Config.EnsureTimeout.Duration,
		CacheTTL:            c.Config.Cache.TTL.Duration,
		Logger:              loggerFromContext(ctx),
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/godepscan/).
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
