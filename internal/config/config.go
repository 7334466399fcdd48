package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DirName is the per-user directory holding config, logs and the recent list
const DirName = ".gitly"

// Config is the resolved gitly configuration
type Config struct {
	// Path overrides the GUI executable the launcher starts.
	Path   string       `mapstructure:"path"`
	Serve  ServeConfig  `mapstructure:"serve"`
	Log    LogConfig    `mapstructure:"log"`
	Recent RecentConfig `mapstructure:"recent"`

	// File is the config file that was read, empty when only defaults and
	// environment were used.
	File string `mapstructure:"-"`
}

// ServeConfig configures the WebSocket bridge
type ServeConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig configures the rotated log file
type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`    // megabytes
	MaxBackups int    `mapstructure:"max_backups"` // files
	MaxAge     int    `mapstructure:"max_age"`     // days
}

// RecentConfig configures the recently opened repositories list
type RecentConfig struct {
	File  string `mapstructure:"file"`
	Limit int    `mapstructure:"limit"`
}

// LoadOptions selects where configuration is read from
type LoadOptions struct {
	// ConfigFile is an explicit config file; it must exist when set.
	ConfigFile string
	// HomeDir replaces the user's home directory when resolving defaults.
	HomeDir string
}

// Load resolves the configuration from defaults, the config file and the environment
func Load(opts LoadOptions) (*Config, error) {
	home := opts.HomeDir
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
	}
	dir := filepath.Join(home, DirName)

	v := newViper()
	SetDefaults(v, dir)

	switch {
	case opts.ConfigFile != "":
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", opts.ConfigFile, err)
		}
	default:
		v.SetConfigFile(filepath.Join(dir, "config.yaml"))
		if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if v.ConfigFileUsed() != "" {
		if _, err := os.Stat(v.ConfigFileUsed()); err == nil {
			cfg.File = v.ConfigFileUsed()
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("GITLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers every key with its default value. Keys must be
// registered for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper, dir string) {
	v.SetDefault("path", "")
	v.SetDefault("serve.addr", "127.0.0.1:7420")
	v.SetDefault("serve.allowed_origins", []string{})
	v.SetDefault("log.file", filepath.Join(dir, "logs", "gitly.log"))
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("recent.file", filepath.Join(dir, "recent.yaml"))
	v.SetDefault("recent.limit", 20)
}

// Validate rejects values no component can work with
func (c *Config) Validate() error {
	switch {
	case c.Serve.Addr == "":
		return errors.New("serve.addr must not be empty")
	case c.Recent.Limit < 1:
		return fmt.Errorf("recent.limit must be at least 1, got %d", c.Recent.Limit)
	case c.Log.MaxSize < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAge < 0:
		return errors.New("log rotation settings must not be negative")
	}
	return nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}
