// Package config loads depdrift's TOML configuration. Settings are
// looked up in depdrift.toml in the working directory, then in
// ~/.config/depdrift/config.toml; a missing file yields defaults.
// The GITHUB_TOKEN environment variable always overrides the file.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/depdrift/depdrift/pkg/errors"
)

// FileName is the per-project configuration file.
const FileName = "depdrift.toml"

// Cache backend identifiers.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the full configuration tree.
type Config struct {
	Lister ListerConfig `toml:"lister"`
	Check  CheckConfig  `toml:"check"`
	GitHub GitHubConfig `toml:"github"`
	Cache  CacheConfig  `toml:"cache"`
}

// ListerConfig overrides the external package-lister invocation.
type ListerConfig struct {
	Command []string `toml:"command"`
}

// CheckConfig carries defaults for the check and sync commands.
type CheckConfig struct {
	Manifest   string   `toml:"manifest"`
	IgnoreFile string   `toml:"ignore_file"`
	Ignore     []string `toml:"ignore"`
}

// GitHubConfig configures the push/pull-request collaborators.
type GitHubConfig struct {
	Token      string `toml:"token"`
	Repo       string `toml:"repo"`        // owner/name
	RemoteURL  string `toml:"remote_url"`  // overrides origin when set
	BaseBranch string `toml:"base_branch"` // PR base
	Branch     string `toml:"branch"`      // work branch pushed to
}

// CacheConfig selects the response-cache backend.
type CacheConfig struct {
	Backend   string `toml:"backend"` // file | redis | none
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
	TTLHours  int    `toml:"ttl_hours"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Check: CheckConfig{Manifest: "requirements.txt"},
		GitHub: GitHubConfig{
			BaseBranch: "main",
			Branch:     "depdrift/requirements",
		},
		Cache: CacheConfig{
			Backend:  BackendFile,
			TTLHours: 24,
		},
	}
}

// Load reads the configuration at path, or searches the standard
// locations when path is empty. A missing file is not an error; an
// unreadable or invalid one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfig()
		if path == "" {
			return cfg, nil
		}
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeConfig, err, "config file %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "invalid config file %s", path)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfig() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, ".config", "depdrift", "config.toml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone, "":
	default:
		return errors.New(errors.ErrCodeConfig,
			"unknown cache backend %q (available: %s, %s, %s)",
			c.Cache.Backend, BackendFile, BackendRedis, BackendNone)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeConfig, "cache backend %q requires redis_addr", BackendRedis)
	}
	return nil
}

// Token returns the GitHub token, with the GITHUB_TOKEN environment
// variable taking precedence over the configuration file.
func (c *Config) Token() string {
	if tok := os.Getenv("GITHUB_TOKEN"); tok != "" {
		return tok
	}
	return c.GitHub.Token
}

// CacheTTL returns the configured cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}
