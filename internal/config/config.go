// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

// Package config holds all application configuration loaded with Koanf v2
// from three layers: struct defaults, an optional YAML file, and
// environment variables (highest priority).
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("failed to load config:", err)
//	}
//	db, err := database.New(&cfg.Database)
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Logging   LoggingConfig   `koanf:"logging"`
	Security  SecurityConfig  `koanf:"security"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
	Events    EventsConfig    `koanf:"events"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds embedded DuckDB settings.
type DatabaseConfig struct {
	Path         string `koanf:"path"`
	MaxMemory    string `koanf:"max_memory"`
	Threads      int    `koanf:"threads"` // 0 = use runtime.NumCPU()
	MaxOpenConns int    `koanf:"max_open_conns"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // "json" or "console"
	Caller bool   `koanf:"caller"`
}

// SecurityConfig holds the internal API authentication settings.
type SecurityConfig struct {
	// InternalSharedSecret gates every /api/v1 data route via the
	// X-Internal-Key header. Requests fail with 500 while unset.
	InternalSharedSecret string   `koanf:"internal_shared_secret"`
	CORSOrigins          []string `koanf:"cors_origins"`
}

// RateLimitConfig holds request throttling settings.
type RateLimitConfig struct {
	RequestsPerMinute int     `koanf:"requests_per_minute"` // per-IP, all routes
	BatchPerSecond    float64 `koanf:"batch_per_second"`    // global, batch endpoint
	Disabled          bool    `koanf:"disabled"`
}

// EventsConfig holds the embedded NATS JetStream event bus settings.
type EventsConfig struct {
	Enabled             bool   `koanf:"enabled"`
	URL                 string `koanf:"url"`
	EmbeddedServer      bool   `koanf:"embedded_server"`
	StoreDir            string `koanf:"store_dir"`
	MaxMemory           int64  `koanf:"max_memory"`
	MaxStore            int64  `koanf:"max_store"`
	StreamRetentionDays int    `koanf:"stream_retention_days"`
}

// RecommendConfig holds collaborative filtering engine settings.
type RecommendConfig struct {
	CacheEnabled     bool          `koanf:"cache_enabled"`
	CacheTTL         time.Duration `koanf:"cache_ttl"`
	TimeDecayEnabled bool          `koanf:"time_decay_enabled"`
	HalfLifeDays     float64       `koanf:"half_life_days"`
	Normalize        bool          `koanf:"normalize"`
	HandleOutliers   bool          `koanf:"handle_outliers"`
	HandleSparsity   bool          `koanf:"handle_sparsity"`
	TopKUsers        int           `koanf:"top_k_users"`
	HybridUserWeight float64       `koanf:"hybrid_user_weight"`
	DiversityWeight  float64       `koanf:"diversity_weight"`
	UseDiversity     bool          `koanf:"use_diversity"`
	WithExplanations bool          `koanf:"with_explanations"`
	BatchChunkSize   int           `koanf:"batch_chunk_size"`
}

// Validate checks the configuration for invalid values. It returns an
// error naming the offending field and the value received.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive, got %s", c.Server.ShutdownTimeout)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("logging.level must be one of trace/debug/info/warn/error/fatal, got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	if !c.RateLimit.Disabled {
		if c.RateLimit.RequestsPerMinute <= 0 {
			return fmt.Errorf("ratelimit.requests_per_minute must be positive, got %d", c.RateLimit.RequestsPerMinute)
		}
		if c.RateLimit.BatchPerSecond <= 0 {
			return fmt.Errorf("ratelimit.batch_per_second must be positive, got %v", c.RateLimit.BatchPerSecond)
		}
	}

	if c.Events.Enabled {
		if c.Events.URL == "" {
			return fmt.Errorf("events.url must not be empty when events are enabled")
		}
		if c.Events.EmbeddedServer && c.Events.StoreDir == "" {
			return fmt.Errorf("events.store_dir must not be empty for the embedded server")
		}
		if c.Events.StreamRetentionDays <= 0 {
			return fmt.Errorf("events.stream_retention_days must be positive, got %d", c.Events.StreamRetentionDays)
		}
	}

	r := c.Recommend
	if r.CacheTTL <= 0 {
		return fmt.Errorf("recommend.cache_ttl must be positive, got %s", r.CacheTTL)
	}
	if r.HalfLifeDays <= 0 {
		return fmt.Errorf("recommend.half_life_days must be positive, got %v", r.HalfLifeDays)
	}
	if r.TopKUsers <= 0 {
		return fmt.Errorf("recommend.top_k_users must be positive, got %d", r.TopKUsers)
	}
	if r.HybridUserWeight < 0 || r.HybridUserWeight > 1 {
		return fmt.Errorf("recommend.hybrid_user_weight must be in [0,1], got %v", r.HybridUserWeight)
	}
	if r.DiversityWeight < 0 || r.DiversityWeight > 1 {
		return fmt.Errorf("recommend.diversity_weight must be in [0,1], got %v", r.DiversityWeight)
	}
	if r.BatchChunkSize <= 0 {
		return fmt.Errorf("recommend.batch_chunk_size must be positive, got %d", r.BatchChunkSize)
	}

	return nil
}
