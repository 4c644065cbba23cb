// Package config loads client settings from flags, TODO_* environment variables and
// <config dir>/config.yaml, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"todo-cli/internal/api"
	"todo-cli/internal/store"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const envPrefix = "TODO"

type Config struct {
	BaseURL  string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
	LogFile  string        `yaml:"log_file" mapstructure:"log_file"`
	LogLevel string        `yaml:"log_level" mapstructure:"log_level"`
	Format   string        `yaml:"format" mapstructure:"format"`
	Theme    string        `yaml:"theme" mapstructure:"theme"`
}

func Default() *Config {
	return &Config{
		BaseURL:  api.DefaultBaseURL,
		LogLevel: "info",
		Format:   "json",
		Theme:    "auto",
	}
}

// flagKeys maps persistent flag names to config keys.
var flagKeys = map[string]string{
	"base-url":  "base_url",
	"timeout":   "timeout",
	"log-file":  "log_file",
	"log-level": "log_level",
	"format":    "format",
	"theme":     "theme",
}

type LoadOptions struct {
	// Dir holds config.yaml. Empty means store.ConfigDir().
	Dir string

	// Flags, when set, override every other source for flags the user changed.
	Flags *pflag.FlagSet
}

// Load merges all sources and validates the result. A missing config file is not an error.
func Load(opts LoadOptions) (*Config, string, error) {
	path, err := store.ConfigPath(opts.Dir)
	if err != nil {
		return nil, "", err
	}

	v := viper.New()
	def := Default()
	v.SetDefault("base_url", def.BaseURL)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("format", def.Format)
	v.SetDefault("theme", def.Theme)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, path, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			f := opts.Flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, path, err
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, path, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func (c *Config) normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.LogFile = strings.TrimSpace(c.LogFile)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.Theme = strings.ToLower(strings.TrimSpace(c.Theme))
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base_url %q (expected http(s)://host/...)", c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("invalid timeout %s (must not be negative)", c.Timeout)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (expected debug|info|warn|error)", c.LogLevel)
	}
	switch c.Format {
	case "json", "edn":
	default:
		return fmt.Errorf("invalid format %q (expected json|edn)", c.Format)
	}
	switch c.Theme {
	case "auto", "light", "dark":
	default:
		return fmt.Errorf("invalid theme %q (expected auto|light|dark)", c.Theme)
	}
	return nil
}

func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
