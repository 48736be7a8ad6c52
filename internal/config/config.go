// Package config loads boardtex settings.
//
// Settings are layered, later sources winning:
//
//  1. built-in defaults
//  2. a TOML config file ($XDG_CONFIG_HOME/boardtex/config.toml or --config)
//  3. BOARDTEX_* environment variables (BOARDTEX_CACHE_BACKEND, ...)
//  4. command-line flags bound with [viper.Viper.BindPFlag]
//
// Keys are dotted: cache.backend, cache.dir, render.concurrency, ...
package config

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/matzehuels/boardtex/pkg/cache"
	"github.com/matzehuels/boardtex/pkg/codec"
	"github.com/matzehuels/boardtex/pkg/errors"
)

const (
	appName   = "boardtex"
	envPrefix = "BOARDTEX"
)

// Cache backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// Config is the resolved configuration.
type Config struct {
	Cache  CacheConfig  `mapstructure:"cache"`
	Render RenderConfig `mapstructure:"render"`
	Log    LogConfig    `mapstructure:"log"`
	Serve  ServeConfig  `mapstructure:"serve"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// CacheConfig selects the artifact cache.
type CacheConfig struct {
	Backend       string        `mapstructure:"backend"`
	Dir           string        `mapstructure:"dir"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	RedisPrefix   string        `mapstructure:"redis_prefix"`
	MemoryBytes   int64         `mapstructure:"memory_bytes"`
	TTL           time.Duration `mapstructure:"ttl"`
}

// RenderConfig bounds rendering resources.
type RenderConfig struct {
	Concurrency int   `mapstructure:"concurrency"`
	MaxDecodes  int   `mapstructure:"max_decodes"`
	DecodeBytes int64 `mapstructure:"decode_bytes"`
}

// LogConfig configures the optional log file.
type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// ServeConfig configures the HTTP server.
type ServeConfig struct {
	Addr           string        `mapstructure:"addr"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
}

// New returns a viper instance with defaults and environment binding in
// place. Flags may be bound to it before calling [Load].
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("cache.backend", BackendFile)
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.redis_prefix", appName+":")
	v.SetDefault("cache.memory_bytes", int64(512<<20))
	v.SetDefault("cache.ttl", 30*24*time.Hour)

	v.SetDefault("render.concurrency", 0)
	v.SetDefault("render.max_decodes", 0)
	v.SetDefault("render.decode_bytes", int64(codec.DefaultCacheBytes))

	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	v.SetDefault("serve.addr", ":8080")
	v.SetDefault("serve.max_upload_bytes", int64(256<<20))
	v.SetDefault("serve.read_timeout", 30*time.Second)
	v.SetDefault("serve.write_timeout", 5*time.Minute)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file and returns the merged configuration. An
// explicit path must exist; the default location is optional.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := stderrors.As(err, &notFound) || os.IsNotExist(err)
		switch {
		case missing && path == "":
		case missing:
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file not found: %s", path)
		default:
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode config")
	}
	cfg.File = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration built from defaults and the
// environment only.
func Default() *Config {
	var cfg Config
	_ = New().Unmarshal(&cfg)
	return &cfg
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendMemory, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"cache.backend must be file, redis, memory or none, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}
	if c.Render.Concurrency < 0 || c.Render.MaxDecodes < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "render limits must not be negative")
	}
	if c.Serve.MaxUploadBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "serve.max_upload_bytes must be positive")
	}
	return nil
}

// Dir returns the config directory ($XDG_CONFIG_HOME/boardtex).
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// CacheDir returns cache.dir, falling back to $XDG_CACHE_HOME/boardtex.
func (c *CacheConfig) CacheDir() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	if home := os.Getenv("XDG_CACHE_HOME"); home != "" {
		return filepath.Join(home, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Open creates the configured cache backend.
func (c *CacheConfig) Open(ctx context.Context) (cache.Cache, error) {
	switch c.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendMemory:
		m, err := cache.NewMemoryCache(c.MemoryBytes)
		if err != nil {
			return nil, err
		}
		return m, nil
	case BackendRedis:
		r, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
			Prefix:   c.RedisPrefix,
		})
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		dir, err := c.CacheDir()
		if err != nil {
			return nil, err
		}
		f, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}

// Loader creates the shared image loader.
func (r *RenderConfig) Loader() (*codec.Loader, error) {
	return codec.NewLoader(codec.LoaderOptions{
		MaxDecodes: r.MaxDecodes,
		CacheBytes: r.DecodeBytes,
	})
}
