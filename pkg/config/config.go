// Package config loads the cladding configuration file.
//
// The file is TOML. Every section is optional; missing keys keep their
// defaults and unknown keys are reported as warnings and ignored.
//
//	[layout]
//	unit = "cm"
//	elementLengths = [80.0, 100.0, 120.0]
//	patternStyle = "stack_bond"
//
//	[cache]
//	backend = "redis"
//	[cache.redis]
//	url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8080"
//	rate_limit = 5.0
//
//	[store]
//	backend = "mongo"
//	[store.mongo]
//	uri = "mongodb://localhost:27017"
//
//	[log]
//	file = "/var/log/cladding/serve.log"
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cladding/pkg/cache"
	"github.com/matzehuels/cladding/pkg/core/layout"
	"github.com/matzehuels/cladding/pkg/core/units"
	"github.com/matzehuels/cladding/pkg/errors"
	"github.com/matzehuels/cladding/pkg/server"
	"github.com/matzehuels/cladding/pkg/store"
)

// Backend names.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"

	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// FileName is the name of the configuration file inside the user config
// directory.
const FileName = "config.toml"

// Config is the whole configuration file.
type Config struct {
	Layout layout.Config `toml:"layout"`
	Cache  Cache         `toml:"cache"`
	Server server.Config `toml:"server"`
	Store  Store         `toml:"store"`
	Log    Log           `toml:"log"`
}

// Cache selects the layout cache backend.
type Cache struct {
	Backend string            `toml:"backend"`
	Dir     string            `toml:"dir"`
	Redis   cache.RedisConfig `toml:"redis"`
}

// Store selects where committed layouts are saved.
type Store struct {
	Backend string            `toml:"backend"`
	Mongo   store.MongoConfig `toml:"mongo"`
}

// Log configures the rotating log file of the server.
type Log struct {
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// Default returns the built-in configuration for u.
func Default(u units.Unit) Config {
	return Config{
		Layout: layout.DefaultConfig(u),
		Cache:  Cache{Backend: CacheFile},
		Server: server.Config{
			Addr:           server.DefaultAddr,
			RateLimit:      server.DefaultRateLimit,
			Burst:          server.DefaultBurst,
			RequestTimeout: server.DefaultRequestTimeout,
			MaxBodyBytes:   server.DefaultMaxBodyBytes,
		},
		Store: Store{Backend: StoreMemory},
		Log:   Log{MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 28},
	}
}

// DefaultPath returns the configuration file in the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cladding", FileName), nil
}

// Load reads the file at path over the defaults of the unit it names. It
// returns the unknown keys as warnings. A missing file is FILE_NOT_FOUND
// unless optional is set, in which case the defaults are returned.
func Load(path string, optional bool) (Config, []string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if optional {
			return Default(units.Default), nil, nil
		}
		return Config{}, nil, errors.New(errors.ErrCodeFileNotFound, "config file %s not found", path)
	}
	if err != nil {
		return Config{}, nil, err
	}
	cfg, warnings, err := Decode(string(data))
	if err != nil {
		return Config{}, nil, errors.Wrap(errors.ErrCodeConfiguration, err, "config %s", path)
	}
	return cfg, warnings, nil
}

// Decode parses a TOML document over the defaults of its layout unit.
func Decode(doc string) (Config, []string, error) {
	var head struct {
		Layout struct {
			Unit string `toml:"unit"`
		} `toml:"layout"`
	}
	if _, err := toml.Decode(doc, &head); err != nil {
		return Config{}, nil, err
	}
	unit := units.Default
	if head.Layout.Unit != "" {
		u, err := units.Parse(head.Layout.Unit)
		if err != nil {
			return Config{}, nil, err
		}
		unit = u
	}

	cfg := Default(unit)
	md, err := toml.Decode(doc, &cfg)
	if err != nil {
		return Config{}, nil, err
	}
	cfg.Layout.Unit = string(unit)
	if err := cfg.validate(); err != nil {
		return Config{}, nil, err
	}

	var warnings []string
	for _, key := range md.Undecoded() {
		warnings = append(warnings, "unknown key "+strings.Join(key, "."))
	}
	return cfg, warnings, nil
}

func (c Config) validate() error {
	if err := errors.ValidateOneOf("cache.backend", c.Cache.Backend, CacheFile, CacheRedis, CacheNone); err != nil {
		return err
	}
	return errors.ValidateOneOf("store.backend", c.Store.Backend, StoreMemory, StoreMongo)
}

// Write encodes c as TOML.
func Write(w io.Writer, c Config) error {
	return toml.NewEncoder(w).Encode(c)
}
