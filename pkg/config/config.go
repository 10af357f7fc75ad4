// Package config loads orthoroute's TOML configuration.
//
// A missing file is not an error; every field has a default:
//
//	[layout]
//	align_tolerance = 10.0
//	collapse_tolerance = 1.0
//
//	[outline]
//	offset = 5.0
//
//	[server]
//	addr = ":8080"
//
//	[cache]
//	backend = "file"   # file | redis | none
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[storage]
//	backend = "memory" # memory | file | mongo
//	mongo_uri = "mongodb://localhost:27017"
//	mongo_database = "orthoroute"
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/orthoroute/pkg/cache"
	errs "github.com/matzehuels/orthoroute/pkg/errors"
	"github.com/matzehuels/orthoroute/pkg/manhattan"
	"github.com/matzehuels/orthoroute/pkg/outline"
)

const appName = "orthoroute"

// Backend names.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"

	StorageMemory = "memory"
	StorageFile   = "file"
	StorageMongo  = "mongo"
)

// Config is the full configuration file.
type Config struct {
	Layout  manhattan.Options `toml:"layout"`
	Outline OutlineConfig     `toml:"outline"`
	Server  ServerConfig      `toml:"server"`
	Cache   CacheConfig       `toml:"cache"`
	Storage StorageConfig     `toml:"storage"`
}

type OutlineConfig struct {
	Offset float64 `toml:"offset"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
	// ShutdownTimeout bounds graceful shutdown of the HTTP server.
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	TTL           Duration `toml:"ttl"`
}

type StorageConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// Duration is a time.Duration written as a Go duration string ("24h").
type Duration struct{ time.Duration }

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: manhattan.Options{
			AlignTolerance:    manhattan.DefaultAlignTolerance,
			CollapseTolerance: manhattan.DefaultCollapseTolerance,
		},
		Outline: OutlineConfig{Offset: outline.DefaultOffset},
		Server:  ServerConfig{Addr: ":8080", ShutdownTimeout: Duration{10 * time.Second}},
		Cache: CacheConfig{
			Backend:   CacheFile,
			RedisAddr: "localhost:6379",
			TTL:       Duration{cache.DefaultTTL},
		},
		Storage: StorageConfig{
			Backend:       StorageMemory,
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: appName,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/orthoroute/config.toml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the file at path over the defaults. An empty path means
// DefaultPath. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	return Parse(data)
}

// Parse decodes TOML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errs.New(errs.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges and backend names.
func (c Config) Validate() error {
	switch {
	case c.Layout.AlignTolerance < 0:
		return errs.New(errs.ErrCodeInvalidConfig, "layout.align_tolerance must not be negative")
	case c.Layout.CollapseTolerance < 0:
		return errs.New(errs.ErrCodeInvalidConfig, "layout.collapse_tolerance must not be negative")
	case c.Outline.Offset < 0:
		return errs.New(errs.ErrCodeInvalidConfig, "outline.offset must not be negative")
	case c.Cache.TTL.Duration < 0:
		return errs.New(errs.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}

	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}

	switch c.Storage.Backend {
	case StorageMemory, StorageFile:
	case StorageMongo:
		if c.Storage.MongoURI == "" || c.Storage.MongoDatabase == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "storage.mongo_uri and storage.mongo_database are required for the mongo backend")
		}
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}

// Layouter builds the router the configuration describes.
func (c Config) Layouter() *manhattan.Layouter {
	return manhattan.New(c.Layout)
}

// Outlines builds the outline provider.
func (c Config) Outlines() *outline.Provider {
	return outline.New(c.Outline.Offset)
}

// Write encodes c as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
