// file: internal/config/config.go
// version: 2.0.0
// guid: 7b8c9d0e-1f2a-3b4c-5d6e-7f8a9b0c1d2e

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/rero/thumbnails/internal/retry"
)

// Config holds application configuration.
type Config struct {
	Providers []string

	FilesDir  string
	PublicURL string

	CacheType string // "memory" (default), "pebble" or "redis"
	CachePath string
	RedisAddr string
	RedisDB   int
	CacheTTL  time.Duration

	HTTPCacheMaxAge time.Duration
	HTTPTimeout     time.Duration
	MinDimension    int

	Retry retry.Policy

	ListenAddr string

	// Outbound per-provider rate limiting.
	OutboundRPS   float64
	OutboundBurst int

	// Inbound per-client rate limiting.
	ServerRPS   float64
	ServerBurst int
}

var AppConfig Config

// setDefaults registers the default for every key so a bare environment
// yields a working service.
func setDefaults() {
	viper.SetDefault("providers", []string{
		"files", "open library", "bnf", "dnb", "google books", "google api",
	})
	viper.SetDefault("files_dir", "")
	viper.SetDefault("public_url", "")
	viper.SetDefault("cache_type", "memory")
	viper.SetDefault("cache_path", "")
	viper.SetDefault("redis_addr", "")
	viper.SetDefault("redis_db", 0)
	viper.SetDefault("cache_ttl", "3600s")
	viper.SetDefault("http_cache_max_age", "86400s")
	viper.SetDefault("http_timeout", "5s")
	viper.SetDefault("min_dimension", 10)
	viper.SetDefault("retry.enabled", true)
	viper.SetDefault("retry.attempts", 5)
	viper.SetDefault("retry.backoff_multiplier", 2.0)
	viper.SetDefault("retry.backoff_min", "1s")
	viper.SetDefault("retry.backoff_max", "10s")
	viper.SetDefault("disable_retries", false)
	viper.SetDefault("listen_addr", ":8080")
	viper.SetDefault("outbound_rps", 0.0)
	viper.SetDefault("outbound_burst", 1)
	viper.SetDefault("server_rps", 0.0)
	viper.SetDefault("server_burst", 1)
}

// InitConfig initializes the application configuration from viper's
// current state (flags, config file, environment).
func InitConfig() error {
	setDefaults()

	AppConfig = Config{
		Providers:       viper.GetStringSlice("providers"),
		FilesDir:        viper.GetString("files_dir"),
		PublicURL:       viper.GetString("public_url"),
		CacheType:       viper.GetString("cache_type"),
		CachePath:       viper.GetString("cache_path"),
		RedisAddr:       viper.GetString("redis_addr"),
		RedisDB:         viper.GetInt("redis_db"),
		CacheTTL:        viper.GetDuration("cache_ttl"),
		HTTPCacheMaxAge: viper.GetDuration("http_cache_max_age"),
		HTTPTimeout:     viper.GetDuration("http_timeout"),
		MinDimension:    viper.GetInt("min_dimension"),
		Retry: retry.Policy{
			Enabled:           viper.GetBool("retry.enabled"),
			MaxAttempts:       viper.GetInt("retry.attempts"),
			BackoffMultiplier: viper.GetFloat64("retry.backoff_multiplier"),
			BackoffMin:        viper.GetDuration("retry.backoff_min"),
			BackoffMax:        viper.GetDuration("retry.backoff_max"),
			DisableAll:        viper.GetBool("disable_retries"),
		},
		ListenAddr:    viper.GetString("listen_addr"),
		OutboundRPS:   viper.GetFloat64("outbound_rps"),
		OutboundBurst: viper.GetInt("outbound_burst"),
		ServerRPS:     viper.GetFloat64("server_rps"),
		ServerBurst:   viper.GetInt("server_burst"),
	}

	// THUMBS_DISABLE_RETRIES forces single-attempt execution regardless
	// of the configured retry policy. Any non-empty value counts.
	if os.Getenv("THUMBS_DISABLE_RETRIES") != "" {
		AppConfig.Retry.DisableAll = true
	}

	return AppConfig.Validate()
}

// Validate rejects configurations that would fail at request time.
func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("provider chain is empty")
	}
	seen := make(map[string]bool, len(c.Providers))
	for _, name := range c.Providers {
		if seen[name] {
			return fmt.Errorf("duplicate provider in chain: %q", name)
		}
		seen[name] = true
	}
	switch c.CacheType {
	case "memory", "pebble", "redis":
	default:
		return fmt.Errorf("unknown cache_type %q", c.CacheType)
	}
	if c.CacheType == "pebble" && c.CachePath == "" {
		return fmt.Errorf("cache_type pebble requires cache_path")
	}
	if c.CacheType == "redis" && c.RedisAddr == "" {
		return fmt.Errorf("cache_type redis requires redis_addr")
	}
	if c.MinDimension < 1 {
		return fmt.Errorf("min_dimension must be at least 1")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.attempts must be at least 1")
	}
	return nil
}
