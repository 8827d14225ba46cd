package config

import (
	"fmt"
	"path/filepath"
	"strings"

	internal "github.com/ZanzyTHEbar/memvfs/memvfs"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Log   LogConfig   `mapstructure:"log"`
	Names NamesConfig `mapstructure:"names"`
	Query QueryConfig `mapstructure:"query"`
	Shell ShellConfig `mapstructure:"shell"`
}

// LogConfig stores logger settings.
type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

// NamesConfig stores the node name grammar.
type NamesConfig struct {
	Pattern string `mapstructure:"pattern"`
}

// QueryConfig stores traversal tuning.
type QueryConfig struct {
	GlobCacheSize int `mapstructure:"globCacheSize"`
	GrepWorkers   int `mapstructure:"grepWorkers"`
}

// ShellConfig stores interactive shell settings.
type ShellConfig struct {
	Prompt string `mapstructure:"prompt"`
	Debug  bool   `mapstructure:"debug"`
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
// An explicit configPath must exist; otherwise a missing config file just means
// defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("..")
		v.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		v.AddConfigPath(internal.DefaultConfigPath)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetDefault("log.level", internal.DefaultLogLevel)
	v.SetDefault("log.console", true)
	v.SetDefault("names.pattern", internal.DefaultNamePattern)
	v.SetDefault("query.globCacheSize", internal.DefaultGlobCacheSize)
	v.SetDefault("query.grepWorkers", internal.DefaultGrepWorkers)
	v.SetDefault("shell.prompt", internal.DefaultPrompt)
	v.SetDefault("shell.debug", false)

	v.SetEnvPrefix(internal.DefaultEnvPrefix)
	v.AutomaticEnv()                                   // e.g. log.level becomes MEMVFS_LOG_LEVEL
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // nested keys use underscores

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	AppConfig = cfg
	return &cfg, nil
}

// Validate rejects values the tree and query engine cannot work with.
func (c *Config) Validate() error {
	if c.Names.Pattern == "" {
		return fmt.Errorf("names.pattern cannot be empty")
	}
	if c.Query.GlobCacheSize < 1 {
		return fmt.Errorf("query.globCacheSize must be positive, got %d", c.Query.GlobCacheSize)
	}
	if c.Query.GrepWorkers < 1 {
		return fmt.Errorf("query.grepWorkers must be positive, got %d", c.Query.GrepWorkers)
	}
	return nil
}
