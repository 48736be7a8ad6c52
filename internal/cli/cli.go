// Package cli implements the boardtex command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/matzehuels/boardtex/internal/config"
	"github.com/matzehuels/boardtex/pkg/buildinfo"
	"github.com/matzehuels/boardtex/pkg/cache"
	"github.com/matzehuels/boardtex/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "boardtex"

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
	Config *config.Config

	v          *viper.Viper
	configPath string
	logOut     io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		v:      config.New(),
		logOut: w,
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
		Short: "Compose image sheets and cut bled texture tiles",
		Long: `boardtex builds card sheets and board textures for tabletop engines.

Sheets are trees of image cells (images, text, solid fills, rows, columns,
grids) rendered to a single image. Splits cut a large image into power-of-two
friendly tiles with bleed gutters and a JSON placement index.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.loadConfig,
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/boardtex/config.toml)")
	pf.String("log-file", "", "also write logs to this file, rotated by size")
	pf.String("cache-backend", "", "cache backend: file, redis, memory, none")
	pf.Int("concurrency", 0, "parallel render workers (default: number of CPUs)")
	c.bind("log.file", pf.Lookup("log-file"))
	c.bind("cache.backend", pf.Lookup("cache-backend"))
	c.bind("render.concurrency", pf.Lookup("concurrency"))

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.splitCommand())
	root.AddCommand(c.planCommand())
	root.AddCommand(c.gutterCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig resolves settings once flags are parsed and attaches the log
// file, if one is configured.
func (c *CLI) loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.v, c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if cfg.Log.File != "" {
		c.Logger.SetOutput(logWriter(c.logOut, cfg.Log))
	}
	if cfg.File != "" {
		c.Logger.Debug("loaded config", "file", cfg.File)
	}
	return nil
}

// bind ties a flag to a config key; a set flag beats file and environment.
func (c *CLI) bind(key string, f *pflag.Flag) {
	_ = c.v.BindPFlag(key, f)
}

// config returns the loaded configuration, or defaults when a command runs
// without the root pre-run (as in tests calling commands directly).
func (c *CLI) config() *config.Config {
	if c.Config == nil {
		c.Config = config.Default()
	}
	return c.Config
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. An unavailable cache
// backend is logged and replaced by a NullCache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg := c.config()
	loader, err := cfg.Render.Loader()
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(c.newCache(ctx, noCache), nil, loader, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	cfg := c.config()
	store, err := cfg.Cache.Open(ctx)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without it", "backend", cfg.Cache.Backend, "err", err)
		return cache.NewNullCache()
	}
	return store
}

// pipelineOptions returns run options filled from the configuration.
func (c *CLI) pipelineOptions() pipeline.Options {
	cfg := c.config()
	return pipeline.Options{
		Concurrency: cfg.Render.Concurrency,
		TTL:         cfg.Cache.TTL,
		Logger:      c.Logger,
	}
}
