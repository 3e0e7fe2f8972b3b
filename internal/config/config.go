package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the effective reviewd configuration, built by layering:
// defaults <- config file <- environment.
type Config struct {
	Server ServerConfig `yaml:"server"`
	AI     AIConfig     `yaml:"ai"`
	Cache  CacheConfig  `yaml:"cache"`
	Rules  RulesConfig  `yaml:"rules"`
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// AIConfig controls the LLM analysis layer.
type AIConfig struct {
	Enabled bool `yaml:"enabled"`
	// Required makes /review answer 503 while the AI circuit is broken
	// instead of serving rule-only results.
	Required     bool   `yaml:"required"`
	Model        string `yaml:"model"`
	BaseURL      string `yaml:"base_url"`
	TimeoutMS    int    `yaml:"timeout_ms"`
	MaxRetries   int    `yaml:"max_retries"`
	RuleContext  bool   `yaml:"rule_context"`
	MaxDiffBytes int    `yaml:"max_diff_bytes"`
	// BreakerCooldownSeconds is the AI circuit recovery window; 0 keeps a
	// tripped circuit open for the process session.
	BreakerCooldownSeconds int `yaml:"breaker_cooldown_seconds"`
}

// CacheConfig controls the review result cache.
type CacheConfig struct {
	TTLSeconds         int `yaml:"ttl_seconds"`
	DegradedTTLSeconds int `yaml:"degraded_ttl_seconds"`
	MaxEntries         int `yaml:"max_entries"`
}

// RulesConfig controls the deterministic precheck layer.
type RulesConfig struct {
	Version string `yaml:"version"`
}

// Default returns the configuration with all defaults applied.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		AI: AIConfig{
			Enabled:      true,
			Model:        "gpt-4o-mini",
			TimeoutMS:    30000,
			MaxRetries:   3,
			RuleContext:  true,
			MaxDiffBytes: 10000,
		},
		Cache: CacheConfig{
			TTLSeconds:         3600,
			DegradedTTLSeconds: 300,
			MaxEntries:         1024,
		},
		Rules: RulesConfig{
			Version: "v1",
		},
	}
}

// Load builds the effective config. A missing file is not an error: the
// defaults plus environment apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("reading config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	mergeEnv(&cfg)
	return cfg, nil
}

// AITimeout returns the per-request AI analysis budget.
func (c Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutMS) * time.Millisecond
}

// BreakerCooldown returns the AI circuit recovery window.
func (c Config) BreakerCooldown() time.Duration {
	return time.Duration(c.AI.BreakerCooldownSeconds) * time.Second
}

// CacheTTL returns the TTL for healthy cached results.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// DegradedCacheTTL returns the shorter TTL for degraded cached results.
func (c Config) DegradedCacheTTL() time.Duration {
	return time.Duration(c.Cache.DegradedTTLSeconds) * time.Second
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("REVIEWD_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("REVIEWD_AI_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AI.Enabled = b
		}
	}
	if v := os.Getenv("REVIEWD_AI_MODEL"); v != "" {
		cfg.AI.Model = v
	}
	if v := os.Getenv("REVIEWD_AI_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AI.TimeoutMS = n
		}
	}
	if v := os.Getenv("REVIEWD_CACHE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Cache.TTLSeconds = n
		}
	}
	if v := os.Getenv("REVIEWD_CACHE_MAX_ENTRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Cache.MaxEntries = n
		}
	}
}
