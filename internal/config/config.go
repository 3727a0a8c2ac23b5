// Package config loads memobox settings from an optional YAML file,
// MEMOBOX_* environment variables and built-in defaults.
package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"memobox/internal/cache"
	"memobox/internal/log"
	"memobox/internal/memo"
)

const envPrefix = "MEMOBOX"

// CacheSpec describes one memoized function's cache.
type CacheSpec struct {
	Name     string        `mapstructure:"name"`
	Kind     string        `mapstructure:"kind"`
	Capacity int           `mapstructure:"capacity"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Config is the full memobox configuration.
type Config struct {
	Log         log.Config  `mapstructure:"log"`
	MetricsAddr string      `mapstructure:"metrics_addr"`
	Caches      []CacheSpec `mapstructure:"caches"`
}

// DefaultCaches mirrors the functions memoized by the demo command.
func DefaultCaches() []CacheSpec {
	return []CacheSpec{
		{Name: "expensive_computation", Kind: memo.KindLRU, Capacity: 2},
		{Name: "concatenate_strings", Kind: memo.KindLRU, Capacity: 2},
		{Name: "expensive_computation_ttl", Kind: memo.KindExpiring, TTL: 2 * time.Second},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("metrics_addr", "")
}

// Load reads path (skipped when empty), applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if len(cfg.Caches) == 0 {
		cfg.Caches = DefaultCaches()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown kinds, duplicate names and out-of-range sizes.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return cache.WrapErrInvalidConfiguration("log.level: %v", err)
	}

	seen := make(map[string]struct{}, len(c.Caches))
	for i, spec := range c.Caches {
		if spec.Name == "" {
			return cache.WrapErrInvalidConfiguration("caches[%d]: empty name", i)
		}
		if _, ok := seen[spec.Name]; ok {
			return cache.WrapErrInvalidConfiguration("caches[%d]: duplicate name %q", i, spec.Name)
		}
		seen[spec.Name] = struct{}{}

		switch spec.Kind {
		case memo.KindLRU:
			if spec.Capacity < 0 {
				return cache.WrapErrInvalidConfiguration("cache %s: capacity=%d must not be negative", spec.Name, spec.Capacity)
			}
		case memo.KindExpiring:
			if spec.TTL < 0 || spec.TTL > cache.DefaultMaxTTL {
				return cache.WrapErrInvalidConfiguration("cache %s: ttl=%s outside [0, %s]", spec.Name, spec.TTL, cache.DefaultMaxTTL)
			}
		default:
			return cache.WrapErrInvalidConfiguration("cache %s: unknown kind %q", spec.Name, spec.Kind)
		}
	}
	return nil
}

// Lookup returns the spec registered under name.
func (c *Config) Lookup(name string) (CacheSpec, bool) {
	for _, spec := range c.Caches {
		if spec.Name == name {
			return spec, true
		}
	}
	return CacheSpec{}, false
}
