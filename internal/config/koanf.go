// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/wayfare/config.yaml",
	"/etc/wayfare/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all defaults applied. Engine
// defaults mirror the recommendation package's DefaultConfig.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8086,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Path:         "/data/wayfare.duckdb",
			MaxMemory:    "1GB",
			Threads:      0, // 0 = use runtime.NumCPU()
			MaxOpenConns: 0, // 0 = derive from CPU count
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Security: SecurityConfig{
			InternalSharedSecret: "",
			CORSOrigins:          []string{"*"},
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 120,
			BatchPerSecond:    2,
			Disabled:          false,
		},
		Events: EventsConfig{
			Enabled:             false, // opt-in
			URL:                 "nats://127.0.0.1:4222",
			EmbeddedServer:      true,
			StoreDir:            "/data/nats/jetstream",
			MaxMemory:           1 << 30, // 1GB
			MaxStore:            4 << 30, // 4GB
			StreamRetentionDays: 7,
		},
		Recommend: RecommendConfig{
			CacheEnabled:     true,
			CacheTTL:         time.Hour,
			TimeDecayEnabled: true,
			HalfLifeDays:     30,
			Normalize:        true,
			HandleOutliers:   true,
			HandleSparsity:   true,
			TopKUsers:        5,
			HybridUserWeight: 0.5,
			DiversityWeight:  0.3,
			UseDiversity:     true,
			WithExplanations: true,
			BatchChunkSize:   100,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in values
//  2. Config file: optional YAML file (if present)
//  3. Environment variables: override any setting
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the path of the first config file found, or an
// empty string.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings maps flat environment variable names to koanf config
// paths. Variables absent from this table are ignored so unrelated
// process environment never leaks into the configuration.
var envMappings = map[string]string{
	// Server
	"http_host":        "server.host",
	"http_port":        "server.port",
	"read_timeout":     "server.read_timeout",
	"write_timeout":    "server.write_timeout",
	"idle_timeout":     "server.idle_timeout",
	"shutdown_timeout": "server.shutdown_timeout",

	// Database
	"duckdb_path":           "database.path",
	"duckdb_max_memory":     "database.max_memory",
	"duckdb_threads":        "database.threads",
	"duckdb_max_open_conns": "database.max_open_conns",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Security
	"internal_shared_secret": "security.internal_shared_secret",
	"cors_origins":           "security.cors_origins",

	// Rate limiting
	"rate_limit_per_minute": "ratelimit.requests_per_minute",
	"rate_limit_batch_rps":  "ratelimit.batch_per_second",
	"rate_limit_disabled":   "ratelimit.disabled",

	// Events
	"events_enabled":             "events.enabled",
	"nats_url":                   "events.url",
	"nats_embedded_server":       "events.embedded_server",
	"nats_store_dir":             "events.store_dir",
	"nats_max_memory":            "events.max_memory",
	"nats_max_store":             "events.max_store",
	"nats_stream_retention_days": "events.stream_retention_days",

	// Recommendation engine
	"recommend_cache_enabled":      "recommend.cache_enabled",
	"recommend_cache_ttl":          "recommend.cache_ttl",
	"recommend_time_decay":         "recommend.time_decay_enabled",
	"recommend_half_life_days":     "recommend.half_life_days",
	"recommend_normalize":          "recommend.normalize",
	"recommend_handle_outliers":    "recommend.handle_outliers",
	"recommend_handle_sparsity":    "recommend.handle_sparsity",
	"recommend_top_k_users":        "recommend.top_k_users",
	"recommend_hybrid_user_weight": "recommend.hybrid_user_weight",
	"recommend_diversity_weight":   "recommend.diversity_weight",
	"recommend_use_diversity":      "recommend.use_diversity",
	"recommend_explanations":       "recommend.with_explanations",
	"recommend_batch_chunk_size":   "recommend.batch_chunk_size",
}

// envTransformFunc maps environment variable names to koanf paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DUCKDB_PATH -> database.path
//   - INTERNAL_SHARED_SECRET -> security.internal_shared_secret
func envTransformFunc(key string) string {
	if path, ok := envMappings[strings.ToLower(key)]; ok {
		return path
	}
	return "" // unmapped variables are dropped
}
