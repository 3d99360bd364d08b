// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package config

import (
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate, got: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(*Config) {}, false},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, true},
		{"empty database path", func(c *Config) { c.Database.Path = "" }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"zero rate limit", func(c *Config) { c.RateLimit.RequestsPerMinute = 0 }, true},
		{"rate limit disabled skips check", func(c *Config) {
			c.RateLimit.Disabled = true
			c.RateLimit.RequestsPerMinute = 0
		}, false},
		{"events enabled without url", func(c *Config) {
			c.Events.Enabled = true
			c.Events.URL = ""
		}, true},
		{"events enabled valid", func(c *Config) { c.Events.Enabled = true }, false},
		{"zero cache ttl", func(c *Config) { c.Recommend.CacheTTL = 0 }, true},
		{"hybrid weight above one", func(c *Config) { c.Recommend.HybridUserWeight = 1.5 }, true},
		{"negative half life", func(c *Config) { c.Recommend.HalfLifeDays = -1 }, true},
		{"zero batch chunk", func(c *Config) { c.Recommend.BatchChunkSize = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9001")
	t.Setenv("DUCKDB_PATH", "/tmp/test.duckdb")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RECOMMEND_CACHE_TTL", "30m")
	t.Setenv("INTERNAL_SHARED_SECRET", "topsecret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9001 {
		t.Errorf("port = %d, want 9001", cfg.Server.Port)
	}
	if cfg.Database.Path != "/tmp/test.duckdb" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q", cfg.Logging.Level)
	}
	if cfg.Recommend.CacheTTL != 30*time.Minute {
		t.Errorf("cache TTL = %s, want 30m", cfg.Recommend.CacheTTL)
	}
	if cfg.Security.InternalSharedSecret != "topsecret" {
		t.Errorf("shared secret not loaded from env")
	}
}

func TestEnvTransformIgnoresUnmappedVariables(t *testing.T) {
	if got := envTransformFunc("PATH"); got != "" {
		t.Errorf("PATH should be ignored, got %q", got)
	}
	if got := envTransformFunc("HTTP_PORT"); got != "server.port" {
		t.Errorf("HTTP_PORT -> %q, want server.port", got)
	}
}

func TestServerAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8086}
	if got := s.Addr(); got != "127.0.0.1:8086" {
		t.Errorf("Addr() = %q", got)
	}
}
