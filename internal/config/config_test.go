package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8082" {
		t.Fatalf("unexpected listen addr %q", cfg.ListenAddr)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("unexpected log level %q", cfg.LogLevel)
	}
	if cfg.Upstream.BaseURL != "http://localhost:8000" {
		t.Fatalf("unexpected upstream %q", cfg.Upstream.BaseURL)
	}

	topo, err := cfg.TopologyInterval()
	if err != nil || topo != 60*time.Second {
		t.Fatalf("unexpected topology interval %v err=%v", topo, err)
	}
	alert, err := cfg.AlertInterval()
	if err != nil || alert != 30*time.Second {
		t.Fatalf("unexpected alert interval %v err=%v", alert, err)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dashd.yaml")
	doc := `
listen_addr: ":9090"
log_level: debug
upstream:
  base_url: http://backend:8000
  websocket_path: /ws/updates
refresh:
  topology_interval: 2m
  alert_interval: 45s
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("UPSTREAM_URL", "http://other:8000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9090" {
		t.Fatalf("file value lost: %q", cfg.ListenAddr)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("env override lost: %q", cfg.LogLevel)
	}
	if cfg.Upstream.BaseURL != "http://other:8000" {
		t.Fatalf("env override lost: %q", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.WebSocketPath != "/ws/updates" {
		t.Fatalf("file value lost: %q", cfg.Upstream.WebSocketPath)
	}

	topo, err := cfg.TopologyInterval()
	if err != nil || topo != 2*time.Minute {
		t.Fatalf("unexpected topology interval %v err=%v", topo, err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestIntervalValidation(t *testing.T) {
	cfg := &Config{}
	cfg.Refresh.TopologyInterval = "banana"
	if _, err := cfg.TopologyInterval(); err == nil {
		t.Fatalf("expected parse error")
	}
	cfg.Refresh.TopologyInterval = "-5s"
	if _, err := cfg.TopologyInterval(); err == nil {
		t.Fatalf("expected positivity error")
	}
}
