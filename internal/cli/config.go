package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/godepscan/pkg/cache"
	"github.com/matzehuels/godepscan/pkg/deps/golang"
)

// Cache backends accepted in the config file.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendNone  = "none"
)

const (
	configFileName    = "config.toml"
	defaultServerAddr = "127.0.0.1:8080"
)

// Config is the on-disk configuration, read from
// $XDG_CONFIG_HOME/godepscan/config.toml. Command-line flags override it.
type Config struct {
	Manager             string   `toml:"manager"`
	FlushTrailingStanza bool     `toml:"flush_trailing_stanza"`
	Ensure              bool     `toml:"ensure"`
	EnsureTimeout       duration `toml:"ensure_timeout"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir,omitempty"`
	RedisURL  string   `toml:"redis_url,omitempty"`
	TTL       duration `toml:"ttl"`
	Namespace string   `toml:"namespace,omitempty"`
}

// ServerConfig configures `godepscan serve`.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	AllowedRoots []string `toml:"allowed_roots,omitempty"`
}

// duration decodes TOML strings such as "90s" or "5m".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// WithDefaults returns a copy of Config with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.EnsureTimeout.Duration <= 0 {
		c.EnsureTimeout.Duration = golang.DefaultEnsureTimeout
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = backendFile
	}
	if c.Cache.TTL.Duration <= 0 {
		c.Cache.TTL.Duration = cache.DefaultTTL
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaultServerAddr
	}
	return c
}

// Validate checks values that cannot be fixed by defaults.
func (c Config) Validate() error {
	if c.Manager != "" {
		if _, err := golang.ParseManager(c.Manager); err != nil {
			return fmt.Errorf("config: manager: %w", err)
		}
	}
	switch c.Cache.Backend {
	case backendFile, backendNone:
	case backendRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("config: cache.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("config: unknown cache backend %q (want %s, %s or %s)",
			c.Cache.Backend, backendFile, backendRedis, backendNone)
	}
	for _, root := range c.Server.AllowedRoots {
		if !filepath.IsAbs(root) {
			return fmt.Errorf("config: server.allowed_roots: %q is not absolute", root)
		}
	}
	return nil
}

// loadConfig reads the config at path. An empty path means the default
// location, where a missing file is not an error. Unknown keys are
// returned so the caller can warn about them.
func loadConfig(path string) (Config, []string, error) {
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return Config{}.WithDefaults(), nil, nil
		}
		path = filepath.Join(dir, configFileName)
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Config{}.WithDefaults(), nil, nil
		}
		return Config{}, nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var unknown []string
	for _, key := range md.Undecoded() {
		unknown = append(unknown, key.String())
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, unknown, err
	}
	return cfg, unknown, nil
}

// writeConfig encodes cfg as TOML.
func writeConfig(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// configDir returns the config directory using XDG standard (~/.config/godepscan/).
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

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeConfig(cmd.OutOrStdout(), c.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if path == "" {
				dir, err := configDir()
				if err != nil {
					return fmt.Errorf("get config dir: %w", err)
				}
				path = filepath.Join(dir, configFileName)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	return cmd
}
