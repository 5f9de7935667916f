// Package config loads engine and per-source settings.
//
// A config file may be TOML or YAML, chosen by extension. Environment
// references ($VAR or ${VAR}) are expanded before decoding, and the
// BRUBRU_* variables override file values:
//
//	max_concurrent = 5
//	user_agent     = "Brubru/1.0 (EU Policy Intelligence; +https://brubru.world)"
//
//	[defaults]
//	cache_ttl_seconds = 3600
//
//	[sources.eurlex]
//	rate_limit_delay_seconds = 1.5
//
//	[sources.iate]
//	disabled = true
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	brerrors "github.com/victorsole/brubru/pkg/errors"
	"github.com/victorsole/brubru/pkg/integrations"
	"github.com/victorsole/brubru/pkg/sources"
)

// Environment variables that override file values.
const (
	EnvUserAgent      = "BRUBRU_USER_AGENT"
	EnvRateLimitDelay = "BRUBRU_RATE_LIMIT_DELAY"
	EnvCacheTTL       = "BRUBRU_CACHE_TTL"
	EnvMaxConcurrent  = "BRUBRU_MAX_CONCURRENT"
)

// DefaultMaxConcurrent is the global cap on in-flight source operations.
const DefaultMaxConcurrent = 5

// Config holds all engine configuration.
type Config struct {
	MaxConcurrent int                     `toml:"max_concurrent" yaml:"max_concurrent"`
	UserAgent     string                  `toml:"user_agent" yaml:"user_agent"`
	Defaults      SourceConfig            `toml:"defaults" yaml:"defaults"`
	Sources       map[string]SourceConfig `toml:"sources" yaml:"sources"`
}

// SourceConfig overrides client settings. Nil fields are unset and fall
// through to the next layer. Durations are in seconds.
type SourceConfig struct {
	BaseURL          string   `toml:"base_url" yaml:"base_url"`
	Name             string   `toml:"name" yaml:"name"`
	RateLimitDelay   *float64 `toml:"rate_limit_delay_seconds" yaml:"rate_limit_delay_seconds"`
	CacheTTL         *float64 `toml:"cache_ttl_seconds" yaml:"cache_ttl_seconds"`
	RequestTimeout   *float64 `toml:"request_timeout_seconds" yaml:"request_timeout_seconds"`
	MaxRetryAttempts *int     `toml:"max_retry_attempts" yaml:"max_retry_attempts"`
	UserAgent        string   `toml:"user_agent" yaml:"user_agent"`
	Disabled         bool     `toml:"disabled" yaml:"disabled"`
}

func ptr[T any](v T) *T { return &v }

// Default returns a Config with the built-in defaults.
func Default() *Config {
	return &Config{
		MaxConcurrent: DefaultMaxConcurrent,
		UserAgent:     integrations.DefaultUserAgent,
		Defaults: SourceConfig{
			RateLimitDelay:   ptr(integrations.DefaultRateLimitDelay.Seconds()),
			CacheTTL:         ptr(integrations.DefaultCacheTTL.Seconds()),
			RequestTimeout:   ptr(integrations.DefaultRequestTimeout.Seconds()),
			MaxRetryAttempts: ptr(integrations.DefaultMaxRetryAttempts),
		},
		Sources: map[string]SourceConfig{},
	}
}

// Load reads a config file and applies environment overrides.
// An empty path yields the defaults with environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := decode(path, os.ExpandEnv(string(data)), cfg); err != nil {
			return nil, brerrors.Wrap(brerrors.ErrCodeInvalidConfig, err, "parse config %s", path)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if cfg.Sources == nil {
		cfg.Sources = map[string]SourceConfig{}
	}
	return cfg, nil
}

func decode(path, data string, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err := toml.Decode(data, cfg)
		return err
	case ".yaml", ".yml":
		return yaml.Unmarshal([]byte(data), cfg)
	default:
		return fmt.Errorf("unsupported config format %q (want .toml, .yaml or .yml)", filepath.Ext(path))
	}
}

// ApplyEnv applies the BRUBRU_* overrides using lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvUserAgent); ok && v != "" {
		c.UserAgent = v
	}
	if v, ok := lookup(EnvRateLimitDelay); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return brerrors.Wrap(brerrors.ErrCodeInvalidConfig, err, "%s", EnvRateLimitDelay)
		}
		c.Defaults.RateLimitDelay = &f
	}
	if v, ok := lookup(EnvCacheTTL); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return brerrors.Wrap(brerrors.ErrCodeInvalidConfig, err, "%s", EnvCacheTTL)
		}
		c.Defaults.CacheTTL = &f
	}
	if v, ok := lookup(EnvMaxConcurrent); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return brerrors.Wrap(brerrors.ErrCodeInvalidConfig, err, "%s", EnvMaxConcurrent)
		}
		c.MaxConcurrent = n
	}
	return nil
}

// Validate rejects non-positive concurrency, negative durations, bad base
// URLs and source sections for unknown sources.
func (c *Config) Validate() error {
	if c.MaxConcurrent < 1 {
		return brerrors.New(brerrors.ErrCodeInvalidConfig, "max_concurrent must be at least 1, got %d", c.MaxConcurrent)
	}
	if err := c.Defaults.validate("defaults"); err != nil {
		return err
	}
	known := make(map[string]bool)
	for _, k := range sources.Keys() {
		known[k] = true
	}
	for key, sc := range c.Sources {
		if !known[key] {
			return brerrors.New(brerrors.ErrCodeInvalidConfig, "unknown source %q in config", key)
		}
		if err := sc.validate("sources." + key); err != nil {
			return err
		}
	}
	return nil
}

func (s SourceConfig) validate(section string) error {
	for name, v := range map[string]*float64{
		"rate_limit_delay_seconds": s.RateLimitDelay,
		"cache_ttl_seconds":        s.CacheTTL,
		"request_timeout_seconds":  s.RequestTimeout,
	} {
		if v != nil && *v < 0 {
			return brerrors.New(brerrors.ErrCodeInvalidConfig, "%s.%s must not be negative", section, name)
		}
	}
	if s.MaxRetryAttempts != nil && *s.MaxRetryAttempts < 1 {
		return brerrors.New(brerrors.ErrCodeInvalidConfig, "%s.max_retry_attempts must be at least 1", section)
	}
	if s.BaseURL != "" {
		if err := brerrors.ValidateURL(s.BaseURL); err != nil {
			return brerrors.Wrap(brerrors.ErrCodeInvalidConfig, err, "%s.base_url", section)
		}
	}
	return nil
}

// Enabled reports whether the source with key should be registered.
func (c *Config) Enabled(key string) bool {
	return !c.Sources[key].Disabled
}

// ClientConfig resolves the client settings for def.
//
// Layers, lowest first: package defaults, the [defaults] section, the
// definition's own settings, then [sources.<key>]. A definition that
// declares its own rate-limit delay keeps it over [defaults].
func (c *Config) ClientConfig(def sources.Definition) integrations.Config {
	ic := def.ClientConfig()
	if c.UserAgent != "" {
		ic.UserAgent = c.UserAgent
	}
	c.Defaults.apply(&ic, def.RateLimitDelay == 0)
	if sc, ok := c.Sources[def.Key]; ok {
		sc.apply(&ic, true)
	}
	return ic
}

func (s SourceConfig) apply(ic *integrations.Config, withDelay bool) {
	if s.BaseURL != "" {
		ic.BaseURL = s.BaseURL
	}
	if s.Name != "" {
		ic.Name = s.Name
	}
	if s.UserAgent != "" {
		ic.UserAgent = s.UserAgent
	}
	if withDelay && s.RateLimitDelay != nil {
		ic.RateLimitDelay = seconds(*s.RateLimitDelay)
	}
	if s.CacheTTL != nil {
		ic.CacheTTL = seconds(*s.CacheTTL)
	}
	if s.RequestTimeout != nil {
		ic.RequestTimeout = seconds(*s.RequestTimeout)
	}
	if s.MaxRetryAttempts != nil {
		ic.MaxRetryAttempts = *s.MaxRetryAttempts
	}
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}
