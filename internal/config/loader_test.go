package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := load("", envOf(nil))
	require.NoError(t, err)

	assert.Equal(t, StoreTypeRedis, cfg.Store.Type)
	assert.Equal(t, DefaultRedisURL, cfg.Store.URL)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 30*time.Second, cfg.Football.TTL.Live)
}

func TestLoad_RedisURLFromEnv(t *testing.T) {
	cfg, err := load("", envOf(map[string]string{
		EnvRedisURL:       "redis://cache.internal:6380/2",
		EnvFootballAPIKey: "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "redis://cache.internal:6380/2", cfg.Store.URL)
	assert.Equal(t, "secret", cfg.Football.APIKey)
}

func TestLoad_FileWithExpansion(t *testing.T) {
	path := writeConfig(t, `
http:
  addr: ":9000"
  maxBodySize: 512KB
log:
  level: debug
  format: json
store:
  type: memory
  timeout: 500ms
  memory:
    numCounters: 1000
    bufferItems: 64
    maxCost: 8MB
football:
  apiKey: ${TEST_API_KEY}
  ttl:
    live: 10s
`)
	cfg, err := load(path, envOf(map[string]string{"TEST_API_KEY": "from-env"}))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	size, err := cfg.HTTP.MaxBodySizeBytes()
	require.NoError(t, err)
	assert.Equal(t, uint64(512_000), size)
	assert.Equal(t, StoreTypeMemory, cfg.Store.Type)
	assert.Equal(t, 500*time.Millisecond, cfg.Store.Timeout)
	assert.Equal(t, "from-env", cfg.Football.APIKey)
	assert.Equal(t, 10*time.Second, cfg.Football.TTL.Live)
	// untouched keys keep their defaults
	assert.Equal(t, 24*time.Hour, cfg.Football.TTL.Teams)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
store:
  url: redis://file-host:6379/0
`)
	cfg, err := load(path, envOf(map[string]string{EnvRedisURL: "redis://env-host:6379/0"}))
	require.NoError(t, err)
	assert.Equal(t, "redis://env-host:6379/0", cfg.Store.URL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "nope.yml"), envOf(nil))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoad_UnknownStoreType(t *testing.T) {
	path := writeConfig(t, "store:\n  type: memcached\n")
	_, err := load(path, envOf(nil))
	assert.ErrorContains(t, err, "store.type")
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty addr", func(c *Config) { c.HTTP.Addr = "" }, "http.addr"},
		{"same metrics addr", func(c *Config) { c.HTTP.MetricsAddr = c.HTTP.Addr }, "http.metricsAddr"},
		{"bad body size", func(c *Config) { c.HTTP.MaxBodySize = "lots" }, "http.maxBodySize"},
		{"bad redis url", func(c *Config) { c.Store.URL = "http://nope" }, "store.url"},
		{"zero store timeout", func(c *Config) { c.Store.Timeout = 0 }, "store.timeout"},
		{"bad memory cost", func(c *Config) {
			c.Store.Type = StoreTypeMemory
			c.Store.Memory.MaxCost = "0B"
		}, "store.memory.maxCost"},
		{"bad football scheme", func(c *Config) { c.Football.BaseURL = "ftp://x" }, "football.baseURL"},
		{"short ttl", func(c *Config) { c.Football.TTL.Match = 0 }, "football.ttl.match"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestValidate_Default(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
}
