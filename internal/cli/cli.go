package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/chartmotion/pkg/buildinfo"
	"github.com/matzehuels/chartmotion/pkg/cache"
	"github.com/matzehuels/chartmotion/pkg/chart"
	"github.com/matzehuels/chartmotion/pkg/errors"
	"github.com/matzehuels/chartmotion/pkg/pipeline"
)

// backendError reports an unreachable cache backend as a network error.
func backendError(backend string, err error) error {
	if cache.IsNetwork(err) {
		return errors.Wrap(errors.ErrCodeNetwork, err, "%s cache unreachable (set backend = \"file\" or pass --no-cache)", backend)
	}
	return errors.Wrap(errors.ErrCodeInternal, err, "open %s cache", backend)
}

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "chartmotion"
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

	// Out receives command output. Defaults to stdout.
	Out io.Writer

	configPath string
	config     *Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
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
		Short:        "Chartmotion positions and animates charts",
		Long:         `Chartmotion turns declarative chart documents into SVG and JSON scenes, animates keyed transitions between datasets, and serves them over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/chartmotion/config.toml)")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.animateCommand())
	root.AddCommand(c.nearestCommand())
	root.AddCommand(c.stackCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config and Runner Factory
// =============================================================================

// loadedConfig reads the config file once per invocation.
func (c *CLI) loadedConfig() (*Config, error) {
	if c.config != nil {
		return c.config, nil
	}
	path := c.configPath
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "config.toml")
	}
	cfg, err := LoadConfig(path, c.configPath != "")
	if err != nil {
		return nil, err
	}
	c.config = cfg
	return cfg, nil
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.loadedConfig()
	if err != nil {
		return nil, err
	}
	store, err := newCache(ctx, cfg.Cache, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache.Instrument(store), nil, c.Logger), nil
}

// newCache opens the configured cache backend.
func newCache(ctx context.Context, cfg CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		c, err := cache.NewRedisCache(ctx, cfg.Redis)
		if err != nil {
			return nil, backendError("redis", err)
		}
		return c, nil
	case BackendMongo:
		c, err := cache.NewMongoCache(ctx, cfg.Mongo)
		if err != nil {
			return nil, backendError("mongo", err)
		}
		return c, nil
	}
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

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/chartmotion/).
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

// configDir returns the config directory using XDG standard (~/.config/chartmotion/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// =============================================================================
// Input Helpers
// =============================================================================

// readChartFile reads a chart document and its format from path.
func readChartFile(path string) ([]byte, string, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return data, chart.FormatFromPath(path), nil
}
