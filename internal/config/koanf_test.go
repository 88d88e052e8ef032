// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.TMDB.BaseURL != DefaultTMDBBaseURL {
		t.Errorf("TMDB.BaseURL = %q, want %q", cfg.TMDB.BaseURL, DefaultTMDBBaseURL)
	}
	if cfg.TMDB.Timeout != 10*time.Second {
		t.Errorf("TMDB.Timeout = %v, want 10s", cfg.TMDB.Timeout)
	}
	if cfg.Recommend.MaxSeeds != 5 {
		t.Errorf("Recommend.MaxSeeds = %d, want 5", cfg.Recommend.MaxSeeds)
	}
	if cfg.Recommend.Limit != 12 {
		t.Errorf("Recommend.Limit = %d, want 12", cfg.Recommend.Limit)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "*" {
		t.Errorf("Security.CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}
	if cfg.TMDB.APIKey != "" {
		t.Errorf("TMDB.APIKey should be empty by default, got %q", cfg.TMDB.APIKey)
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("TMDB_API_KEY", "secret")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("TMDB_TIMEOUT", "5s")
	t.Setenv("FAVORITES_IN_MEMORY", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.TMDB.APIKey != "secret" {
		t.Errorf("TMDB.APIKey = %q, want secret", cfg.TMDB.APIKey)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.TMDB.Timeout != 5*time.Second {
		t.Errorf("TMDB.Timeout = %v, want 5s", cfg.TMDB.Timeout)
	}
	if !cfg.Store.InMemory {
		t.Error("Store.InMemory should be true")
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("Security.CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadWithKoanf_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 7000
tmdb:
  api_key: from-file
  rate_limit: 0
store:
  path: ` + filepath.Join(dir, "favorites") + `
recommend:
  limit: 20
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "7001")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.TMDB.APIKey != "from-file" {
		t.Errorf("TMDB.APIKey = %q, want from-file", cfg.TMDB.APIKey)
	}
	if cfg.Server.Port != 7001 {
		t.Errorf("env should override file: Server.Port = %d, want 7001", cfg.Server.Port)
	}
	if cfg.Recommend.Limit != 20 {
		t.Errorf("Recommend.Limit = %d, want 20", cfg.Recommend.Limit)
	}
	if cfg.Recommend.MaxSeeds != 5 {
		t.Errorf("Recommend.MaxSeeds = %d, want default 5", cfg.Recommend.MaxSeeds)
	}
	if cfg.TMDB.RateLimit != 0 {
		t.Errorf("TMDB.RateLimit = %v, want 0", cfg.TMDB.RateLimit)
	}
}

func TestLoadWithKoanf_MissingAPIKey(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("TMDB_API_KEY", "")

	_, err := LoadWithKoanf()
	if err == nil {
		t.Fatal("expected error when TMDB_API_KEY is missing")
	}
	if !strings.Contains(err.Error(), "TMDB_API_KEY") {
		t.Errorf("error = %v, want mention of TMDB_API_KEY", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env  string
		want string
	}{
		{"TMDB_API_KEY", "tmdb.api_key"},
		{"FAVORITES_PATH", "store.path"},
		{"DISABLE_RATE_LIMIT", "security.rate_limit_disabled"},
		{"HOME", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}
