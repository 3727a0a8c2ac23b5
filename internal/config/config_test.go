package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memobox/internal/cache"
	"memobox/internal/log"
	"memobox/internal/memo"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memobox.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, DefaultCaches(), cfg.Caches)

	spec, ok := cfg.Lookup("expensive_computation_ttl")
	require.True(t, ok)
	assert.Equal(t, memo.KindExpiring, spec.Kind)
	assert.Equal(t, 2*time.Second, spec.TTL)

	_, ok = cfg.Lookup("missing")
	assert.False(t, ok)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
caches:
  - name: fib
    kind: lru
    capacity: 128
  - name: quotes
    kind: expiring
    ttl: 30s
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []CacheSpec{
		{Name: "fib", Kind: memo.KindLRU, Capacity: 128},
		{Name: "quotes", Kind: memo.KindExpiring, TTL: 30 * time.Second},
	}, cfg.Caches)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MEMOBOX_LOG_LEVEL", "warn")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		caches []CacheSpec
	}{
		{"empty name", []CacheSpec{{Kind: memo.KindLRU, Capacity: 1}}},
		{"duplicate", []CacheSpec{{Name: "a", Kind: memo.KindLRU}, {Name: "a", Kind: memo.KindLRU}}},
		{"negative capacity", []CacheSpec{{Name: "a", Kind: memo.KindLRU, Capacity: -1}}},
		{"ttl too long", []CacheSpec{{Name: "a", Kind: memo.KindExpiring, TTL: time.Hour}}},
		{"unknown kind", []CacheSpec{{Name: "a", Kind: "lfu"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{Caches: tc.caches}
			assert.ErrorIs(t, cfg.Validate(), cache.ErrInvalidConfiguration)
		})
	}

	bad := &Config{Log: log.Config{Level: "shout"}}
	assert.ErrorIs(t, bad.Validate(), cache.ErrInvalidConfiguration)
}
