// Package cli implements the depdrift command-line interface.
//
// This package provides commands for listing the installed dependency
// forest, checking it against a manifest for drift, syncing the
// manifest (including git push and pull-request creation), and managing
// the API response cache. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/depdrift/depdrift/pkg/buildinfo"
	"github.com/depdrift/depdrift/pkg/cache"
	"github.com/depdrift/depdrift/pkg/config"
	"github.com/depdrift/depdrift/pkg/deptree"
	"github.com/depdrift/depdrift/pkg/errors"
)

// appName is the application name used for directories and display.
const appName = "depdrift"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	RunID  string

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger. Every run gets
// a short correlation ID attached to all log lines.
func New(w io.Writer, level log.Level) *CLI {
	runID := uuid.NewString()[:8]
	return &CLI{
		Logger: newLogger(w, level).With("run", runID),
		RunID:  runID,
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
		Short:        "depdrift detects drift between installed packages and a manifest",
		Long: `depdrift inspects the packages installed in the active Python
environment, compares the dependency tree against a manifest file, and
reports packages that are missing or superfluous. It can patch the
manifest in place, push the change to a git branch, and open a pull
request recording it.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./depdrift.toml)")

	root.AddCommand(c.listCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.syncCommand())
	root.AddCommand(c.cacheCommand())

	return root
}

// Config loads the configuration once and memoizes it.
func (c *CLI) Config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// newCache builds the response cache backend selected by configuration.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cfg.Cache.RedisAddr)
	default:
		dir := cfg.Cache.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return nil, err
			}
		}
		return cache.NewFileCache(dir)
	}
}

// parsePair splits a "key=value" flag argument into a marker.
func parsePair(s string) (deptree.Marker, error) {
	key, val, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return deptree.Marker{}, errors.New(errors.ErrCodeInvalidInput,
			"invalid key=value pair: %q", s)
	}
	return deptree.Marker{Key: strings.TrimSpace(key), Val: strings.TrimSpace(val)}, nil
}
