package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath     = "GAMEZONE_CONFIG"
	EnvRedisURL       = "REDIS_URL"
	EnvFootballAPIKey = "FOOTBALL_API_KEY"
	EnvFootballAPIURL = "FOOTBALL_API_URL"
	EnvHTTPAddr       = "HTTP_ADDR"

	DefaultRedisURL = "redis://127.0.0.1:6379/0"
)

// Default returns a configuration that runs against a local Redis.
func Default() Config {
	return Config{
		HTTP: HTTP{
			Addr:            ":8080",
			MetricsAddr:     ":9080",
			MaxBodySize:     "1MB",
			GzipThreshold:   500,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: Log{Level: "info", Format: "console"},
		Store: Store{
			Type:    StoreTypeRedis,
			URL:     DefaultRedisURL,
			Timeout: 2 * time.Second,
			Prefix:  "gamezone:",
			Memory: Memory{
				NumCounters: 100_000,
				BufferItems: 64,
				MaxCost:     "64MB",
			},
		},
		Football: Football{
			BaseURL:    "https://v3.football.api-sports.io",
			Timeout:    10 * time.Second,
			DNSRefresh: 5 * time.Minute,
			TTL: TTL{
				Live:     30 * time.Second,
				Fixtures: 5 * time.Minute,
				Match:    time.Minute,
				Teams:    24 * time.Hour,
				Leagues:  24 * time.Hour,
			},
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at path
// and the process environment, in that order, and validates the result.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		expanded := os.Expand(string(data), func(name string) string {
			v, _ := lookup(name)
			return v
		})
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("cannot parse config: %w", err)
		}
	}

	applyEnv(&cfg, lookup)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvRedisURL); ok && v != "" {
		cfg.Store.URL = v
	}
	if v, ok := lookup(EnvFootballAPIKey); ok && v != "" {
		cfg.Football.APIKey = v
	}
	if v, ok := lookup(EnvFootballAPIURL); ok && v != "" {
		cfg.Football.BaseURL = v
	}
	if v, ok := lookup(EnvHTTPAddr); ok && v != "" {
		cfg.HTTP.Addr = v
	}
}
