package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigFirstRunWritesDefaults(t *testing.T) {
	root := tempConfigDir(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:5001/api" {
		t.Fatalf("unexpected base url %q", cfg.APIBaseURL)
	}
	if cfg.PageSize != 15 || cfg.PollIntervalSeconds != 30 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	data, err := os.ReadFile(filepath.Join(root, "hashed-risk", "config.yaml"))
	if err != nil {
		t.Fatalf("expected config written: %v", err)
	}
	if !strings.Contains(string(data), "api_base_url") {
		t.Fatalf("unexpected config contents %q", data)
	}
}

func TestLoadConfigRoundTrip(t *testing.T) {
	tempConfigDir(t)

	cfg := DefaultConfig()
	cfg.APIBaseURL = "http://risk.internal:8080/api/"
	cfg.PageSize = 25
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig error: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if loaded.APIBaseURL != "http://risk.internal:8080/api" {
		t.Fatalf("expected trailing slash trimmed, got %q", loaded.APIBaseURL)
	}
	if loaded.PageSize != 25 {
		t.Fatalf("expected page size 25, got %d", loaded.PageSize)
	}
}

func TestLoadConfigFloorsInvalidValues(t *testing.T) {
	root := tempConfigDir(t)
	path := filepath.Join(root, "hashed-risk", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir error: %v", err)
	}
	raw := strings.Join([]string{
		"api_base_url: http://localhost:5001/api",
		"page_size: 0",
		"poll_interval_seconds: -5",
		"request_timeout_seconds: 0",
	}, "\n")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write error: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.PageSize != 15 || cfg.PollIntervalSeconds != 30 || cfg.RequestTimeoutSecs != 30 {
		t.Fatalf("expected floored values, got %+v", cfg)
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	root := tempConfigDir(t)
	path := filepath.Join(root, "hashed-risk", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir error: %v", err)
	}
	if err := os.WriteFile(path, []byte("api_base_url: [broken"), 0o600); err != nil {
		t.Fatalf("write error: %v", err)
	}
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestEnvOverridesBaseURL(t *testing.T) {
	tempConfigDir(t)
	t.Setenv(apiURLEnv, "http://override.test/api/")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.APIBaseURL != "http://override.test/api" {
		t.Fatalf("expected env override, got %q", cfg.APIBaseURL)
	}
}

func TestConfigPathFallbacks(t *testing.T) {
	orig := userConfigDir
	t.Cleanup(func() { userConfigDir = orig })
	userConfigDir = func() (string, error) { return "", os.ErrPermission }

	if configPath() != "config.yaml" {
		t.Fatalf("unexpected config fallback %q", configPath())
	}
	if tokenPath() != "token" {
		t.Fatalf("unexpected token fallback %q", tokenPath())
	}
}
