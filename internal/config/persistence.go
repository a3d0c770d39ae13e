// file: internal/config/persistence.go
// version: 2.0.0
// guid: 9c8d7e6f-5a4b-3c2d-1e0f-9a8b7c6d5e4f

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML shape of a config file. Durations are written
// as strings ("3600s") so the file round-trips through viper.
type fileConfig struct {
	Providers       []string `yaml:"providers"`
	FilesDir        string   `yaml:"files_dir,omitempty"`
	PublicURL       string   `yaml:"public_url,omitempty"`
	CacheType       string   `yaml:"cache_type"`
	CachePath       string   `yaml:"cache_path,omitempty"`
	RedisAddr       string   `yaml:"redis_addr,omitempty"`
	RedisDB         int      `yaml:"redis_db,omitempty"`
	CacheTTL        string   `yaml:"cache_ttl"`
	HTTPCacheMaxAge string   `yaml:"http_cache_max_age"`
	HTTPTimeout     string   `yaml:"http_timeout"`
	MinDimension    int      `yaml:"min_dimension"`
	Retry           struct {
		Enabled           bool    `yaml:"enabled"`
		Attempts          int     `yaml:"attempts"`
		BackoffMultiplier float64 `yaml:"backoff_multiplier"`
		BackoffMin        string  `yaml:"backoff_min"`
		BackoffMax        string  `yaml:"backoff_max"`
	} `yaml:"retry"`
	ListenAddr    string  `yaml:"listen_addr"`
	OutboundRPS   float64 `yaml:"outbound_rps,omitempty"`
	OutboundBurst int     `yaml:"outbound_burst,omitempty"`
	ServerRPS     float64 `yaml:"server_rps,omitempty"`
	ServerBurst   int     `yaml:"server_burst,omitempty"`
}

func durationString(d time.Duration) string {
	if d%time.Second == 0 {
		return fmt.Sprintf("%ds", int64(d/time.Second))
	}
	return d.String()
}

// SaveConfigToFile writes the effective configuration to path as YAML.
// Used to seed a starter config file that serve and resolve pick up.
func SaveConfigToFile(c Config, path string) error {
	var fc fileConfig
	fc.Providers = c.Providers
	fc.FilesDir = c.FilesDir
	fc.PublicURL = c.PublicURL
	fc.CacheType = c.CacheType
	fc.CachePath = c.CachePath
	fc.RedisAddr = c.RedisAddr
	fc.RedisDB = c.RedisDB
	fc.CacheTTL = durationString(c.CacheTTL)
	fc.HTTPCacheMaxAge = durationString(c.HTTPCacheMaxAge)
	fc.HTTPTimeout = durationString(c.HTTPTimeout)
	fc.MinDimension = c.MinDimension
	fc.Retry.Enabled = c.Retry.Enabled
	fc.Retry.Attempts = c.Retry.MaxAttempts
	fc.Retry.BackoffMultiplier = c.Retry.BackoffMultiplier
	fc.Retry.BackoffMin = durationString(c.Retry.BackoffMin)
	fc.Retry.BackoffMax = durationString(c.Retry.BackoffMax)
	fc.ListenAddr = c.ListenAddr
	fc.OutboundRPS = c.OutboundRPS
	fc.OutboundBurst = c.OutboundBurst
	fc.ServerRPS = c.ServerRPS
	fc.ServerBurst = c.ServerBurst

	data, err := yaml.Marshal(&fc)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
