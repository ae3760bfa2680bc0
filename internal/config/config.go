// Package config loads dashd's configuration from an optional YAML file,
// with environment variables taking precedence so container deployments can
// override individual settings.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr  string `yaml:"listen_addr"`
	LogLevel    string `yaml:"log_level"`
	DatabaseURL string `yaml:"database_url"`

	Upstream struct {
		BaseURL       string `yaml:"base_url"`
		WebSocketPath string `yaml:"websocket_path"`
	} `yaml:"upstream"`

	Refresh struct {
		TopologyInterval string `yaml:"topology_interval"`
		AlertInterval    string `yaml:"alert_interval"`
	} `yaml:"refresh"`
}

// Load reads the file at path when non-empty, then applies environment
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	overlayEnv(&cfg.ListenAddr, "HTTP_ADDR")
	overlayEnv(&cfg.LogLevel, "LOG_LEVEL")
	overlayEnv(&cfg.DatabaseURL, "DATABASE_URL")
	overlayEnv(&cfg.Upstream.BaseURL, "UPSTREAM_URL")
	overlayEnv(&cfg.Upstream.WebSocketPath, "UPSTREAM_WS_PATH")

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8082"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = "http://localhost:8000"
	}
	return cfg, nil
}

// TopologyInterval parses the configured topology refresh cadence,
// defaulting to 60s.
func (c *Config) TopologyInterval() (time.Duration, error) {
	return parseInterval(c.Refresh.TopologyInterval, 60*time.Second)
}

// AlertInterval parses the configured alert refresh cadence, defaulting to
// 30s.
func (c *Config) AlertInterval() (time.Duration, error) {
	return parseInterval(c.Refresh.AlertInterval, 30*time.Second)
}

func parseInterval(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("interval %q must be positive", raw)
	}
	return d, nil
}

func overlayEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
