package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTP     `yaml:"http"`
	Log      Log      `yaml:"log"`
	Store    Store    `yaml:"store"`
	Football Football `yaml:"football"`
}

func (c *Config) Validate() error {
	if err := c.validateHTTP(); err != nil {
		return err
	}
	if err := c.validateLog(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	return c.validateFootball()
}

func (c *Config) validateHTTP() error {
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	if c.HTTP.MetricsAddr != "" && c.HTTP.MetricsAddr == c.HTTP.Addr {
		return fmt.Errorf("http.metricsAddr must differ from http.addr (%s)", c.HTTP.Addr)
	}
	if bytes, err := c.HTTP.MaxBodySizeBytes(); err != nil || bytes == 0 {
		return fmt.Errorf("http.maxBodySize: invalid value '%s'", c.HTTP.MaxBodySize)
	}
	if c.HTTP.GzipThreshold < 0 {
		return fmt.Errorf("http.gzipThreshold must be >= 0")
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return fmt.Errorf("http.shutdownTimeout must be > 0")
	}
	return nil
}

func (c *Config) validateLog() error {
	switch c.Log.Format {
	case "", "console", "json":
		return nil
	default:
		return fmt.Errorf("log.format: unknown format '%s'", c.Log.Format)
	}
}

func (c *Config) validateStore() error {
	s := c.Store
	if s.Timeout <= 0 {
		return fmt.Errorf("store.timeout must be > 0")
	}

	switch s.Type {
	case StoreTypeRedis:
		if s.URL == "" {
			return fmt.Errorf("store.url is required for type '%s'", s.Type)
		}
		if _, err := redis.ParseURL(s.URL); err != nil {
			return fmt.Errorf("store.url: %w", err)
		}
		if s.PoolSize < 0 {
			return fmt.Errorf("store.poolSize must be >= 0")
		}
	case StoreTypeMemory:
		if s.Memory.NumCounters <= 0 {
			return fmt.Errorf("store.memory.numCounters must be > 0")
		}
		if s.Memory.BufferItems <= 0 {
			return fmt.Errorf("store.memory.bufferItems must be > 0")
		}
		if bytes, err := ParseByteSize(s.Memory.MaxCost); err != nil || bytes == 0 {
			return fmt.Errorf("store.memory.maxCost: invalid value '%s'", s.Memory.MaxCost)
		}
	default:
		return fmt.Errorf("store.type: unknown type '%s'", s.Type)
	}
	return nil
}

func (c *Config) validateFootball() error {
	f := c.Football
	u, err := url.Parse(f.BaseURL)
	if err != nil {
		return fmt.Errorf("football.baseURL: invalid url '%s': %v", f.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("football.baseURL: unsupported scheme '%s'", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("football.baseURL: missing host in '%s'", f.BaseURL)
	}
	if f.Timeout <= 0 {
		return fmt.Errorf("football.timeout must be > 0")
	}

	ttls := map[string]time.Duration{
		"live":     f.TTL.Live,
		"fixtures": f.TTL.Fixtures,
		"match":    f.TTL.Match,
		"teams":    f.TTL.Teams,
		"leagues":  f.TTL.Leagues,
	}
	for name, ttl := range ttls {
		if ttl < time.Second {
			return fmt.Errorf("football.ttl.%s must be >= 1s, got %s", name, ttl)
		}
	}
	return nil
}

///////////////////////////////////////////////////////////
/// Sections
///////////////////////////////////////////////////////////

type HTTP struct {
	Addr            string        `yaml:"addr"`
	MetricsAddr     string        `yaml:"metricsAddr"` // empty = metrics server disabled
	MaxBodySize     string        `yaml:"maxBodySize"`
	GzipThreshold   int           `yaml:"gzipThreshold"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

func (h HTTP) MaxBodySizeBytes() (uint64, error) {
	return ParseBytesStr(h.MaxBodySize, "http -> maxBodySize")
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type StoreType string

const (
	StoreTypeRedis   StoreType = "redis"
	StoreTypeMemory  StoreType = "memory"
	StoreTypeUnknown StoreType = "unknown"
)

func (st *StoreType) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch s {
	case string(StoreTypeRedis), string(StoreTypeMemory):
		*st = StoreType(s)
	default:
		*st = StoreTypeUnknown
	}
	return nil
}

type Store struct {
	Type     StoreType     `yaml:"type"`
	URL      string        `yaml:"url"`
	PoolSize int           `yaml:"poolSize"` // 0 = go-redis default
	Timeout  time.Duration `yaml:"timeout"`  // per operation
	Prefix   string        `yaml:"prefix"`
	Memory   Memory        `yaml:"memory"`
}

type Memory struct {
	NumCounters int64  `yaml:"numCounters"`
	BufferItems int64  `yaml:"bufferItems"`
	MaxCost     string `yaml:"maxCost"`
}

func (m Memory) MaxCostBytes() (uint64, error) {
	return ParseBytesStr(m.MaxCost, "store.memory -> maxCost")
}

type Football struct {
	BaseURL    string        `yaml:"baseURL"`
	APIKey     string        `yaml:"apiKey"`
	Timeout    time.Duration `yaml:"timeout"`
	DNSRefresh time.Duration `yaml:"dnsRefresh"`
	TTL        TTL           `yaml:"ttl"`
}

type TTL struct {
	Live     time.Duration `yaml:"live"`
	Fixtures time.Duration `yaml:"fixtures"`
	Match    time.Duration `yaml:"match"`
	Teams    time.Duration `yaml:"teams"`
	Leagues  time.Duration `yaml:"leagues"`
}
