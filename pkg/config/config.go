// Package config loads equalpath settings from a TOML file.
//
// Settings are looked up in this order, first match wins:
//
//  1. the path given with --config
//  2. ./equalpath.toml
//  3. $XDG_CONFIG_HOME/equalpath/config.toml (~/.config/equalpath/config.toml)
//
// A missing file is not an error; [Default] values apply. Command-line
// flags override whatever the file sets.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/equalpath/pkg/errors"
	"github.com/matzehuels/equalpath/pkg/pipeline"
	"github.com/matzehuels/equalpath/pkg/search"
)

const (
	appName   = "equalpath"
	localFile = "equalpath.toml"
)

// Config is the decoded configuration file.
type Config struct {
	Search SearchConfig `toml:"search"`
	Output OutputConfig `toml:"output"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
}

// SearchConfig selects how lengths are searched.
type SearchConfig struct {
	Order      string `toml:"order"`
	Exhaustive bool   `toml:"exhaustive"`
	Optimize   bool   `toml:"optimize"`
	Mode       string `toml:"mode"`
}

// OutputConfig controls solution files.
type OutputConfig struct {
	Dir string `toml:"dir"`
	SVG bool   `toml:"svg"`
}

// CacheConfig controls report caching.
type CacheConfig struct {
	Enabled  bool     `toml:"enabled"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string such as "24h".
type Duration struct{ time.Duration }

// UnmarshalText parses a duration with time.ParseDuration.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Search: SearchConfig{Order: search.Ascending.String(), Optimize: true, Mode: string(pipeline.ModeSeparate)},
		Output: OutputConfig{Dir: pipeline.DefaultOutputDir},
		Cache:  CacheConfig{Enabled: true, TTL: Duration{pipeline.DefaultCacheTTL}},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load reads the configuration. If explicit is non-empty that file must
// exist; otherwise the standard locations are tried and defaults are used
// when none exists.
func Load(explicit string) (Config, error) {
	if explicit != "" {
		return LoadFile(explicit)
	}
	for _, path := range searchPaths() {
		cfg, err := LoadFile(path)
		if errs.Is(err, errs.ErrCodeFileNotFound) {
			continue
		}
		return cfg, err
	}
	return Default(), nil
}

// LoadFile decodes the TOML file at path on top of Default. Unknown keys
// are rejected so that typos do not go unnoticed.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, errs.Wrap(errs.ErrCodeInvalidInput, err, "config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errs.New(errs.ErrCodeInvalidInput, "config file %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	return cfg, cfg.Validate()
}

// Validate checks enumerated values and rejects search settings the
// pipeline would refuse on every run.
func (c Config) Validate() error {
	order, err := search.ParseOrder(c.Search.Order)
	if err != nil {
		return err
	}
	mode, err := pipeline.ParseMode(c.Search.Mode)
	if err != nil {
		return err
	}
	if mode == pipeline.ModeGlobal && (c.Search.Exhaustive || order != search.Ascending) {
		return errs.New(errs.ErrCodeInvalidInput,
			"search mode global cannot be combined with exhaustive or descending order")
	}
	if c.Cache.TTL.Duration < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "cache ttl must not be negative")
	}
	return nil
}

// PipelineOptions converts the search and output sections into pipeline
// options. The output directory is only set when exports are requested,
// which is a per-invocation decision of the caller.
func (c Config) PipelineOptions() (pipeline.Options, error) {
	order, err := search.ParseOrder(c.Search.Order)
	if err != nil {
		return pipeline.Options{}, err
	}
	mode, err := pipeline.ParseMode(c.Search.Mode)
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.DefaultOptions()
	opts.Mode = mode
	opts.Order = order
	opts.Exhaustive = c.Search.Exhaustive
	opts.NoOptimize = !c.Search.Optimize
	opts.SVG = c.Output.SVG
	opts.CacheTTL = c.Cache.TTL.Duration
	return opts, nil
}

// CacheDir returns the configured cache directory, defaulting to the XDG
// cache location (~/.cache/equalpath/).
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate cache dir: %w", err)
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// searchPaths lists the implicit config locations in lookup order.
func searchPaths() []string {
	paths := []string{localFile}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		paths = append(paths, filepath.Join(dir, appName, "config.toml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appName, "config.toml"))
	}
	return paths
}
