// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host            string
	Port            string
	Env             string // "development", "production", "testing"
	ShutdownTimeout time.Duration

	// Per-caller API rate limit in requests per second. Zero disables it.
	APIRateLimit float64
	APIRateBurst int

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache and pub/sub)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	ValkeyDB       int

	// AI scoring provider. Empty AIProvider selects the range scorer.
	AIProvider          string // "openai", "claude", "mistral"
	AIRequestsPerMinute float64
	OpenAIKey           string
	OpenAIModel         string
	OpenAIBaseURL       string
	ClaudeKey           string
	ClaudeModel         string
	ClaudeBaseURL       string
	MistralKey          string
	MistralModel        string
	MistralBaseURL      string

	// Keyword metrics provider. Empty base URL disables enrichment.
	KeywordsBaseURL   string
	KeywordsAPIKey    string
	KeywordsPerSecond float64
	KeywordsCacheTTL  time.Duration

	// S3-compatible source archive. Empty endpoint disables archiving.
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string

	// Workflow and scoring behaviour
	WorkflowLockFinal  bool
	RevisionClearsData bool
	ScoringDelay       time.Duration
	ScoringTimeout     time.Duration
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if a value cannot be
// parsed or critical values are missing in production mode.
func Load() (*Config, error) {
	p := &parser{}
	cfg := &Config{
		Host:            envOrDefault("APP_HOST", "0.0.0.0"),
		Port:            envOrDefault("APP_PORT", "8080"),
		Env:             envOrDefault("APP_ENV", "development"),
		ShutdownTimeout: p.duration("SHUTDOWN_TIMEOUT", 15*time.Second),
		APIRateLimit:    p.float("API_RATE_LIMIT", 20),
		APIRateBurst:    p.int("API_RATE_BURST", 40),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "reviewdesk"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "reviewdesk"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),
		ValkeyDB:       p.int("VALKEY_DB", 0),

		AIProvider:          os.Getenv("AI_PROVIDER"),
		AIRequestsPerMinute: p.float("AI_REQUESTS_PER_MINUTE", 30),
		OpenAIKey:           os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:         envOrDefault("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL:       envOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		ClaudeKey:           os.Getenv("CLAUDE_API_KEY"),
		ClaudeModel:         envOrDefault("CLAUDE_MODEL", "claude-sonnet-4-6"),
		ClaudeBaseURL:       envOrDefault("CLAUDE_BASE_URL", "https://api.anthropic.com"),
		MistralKey:          os.Getenv("MISTRAL_API_KEY"),
		MistralModel:        envOrDefault("MISTRAL_MODEL", "mistral-large-latest"),
		MistralBaseURL:      envOrDefault("MISTRAL_BASE_URL", "https://api.mistral.ai"),

		KeywordsBaseURL:   os.Getenv("KEYWORDS_BASE_URL"),
		KeywordsAPIKey:    os.Getenv("KEYWORDS_API_KEY"),
		KeywordsPerSecond: p.float("KEYWORDS_REQUESTS_PER_SECOND", 5),
		KeywordsCacheTTL:  p.duration("KEYWORDS_CACHE_TTL", 24*time.Hour),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "fsn1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "reviewdesk-sources"),

		WorkflowLockFinal:  p.bool("WORKFLOW_LOCK_FINAL", false),
		RevisionClearsData: p.bool("REVISION_CLEARS_DATA", false),
		ScoringDelay:       p.duration("SCORING_DELAY", 0),
		ScoringTimeout:     p.duration("SCORING_TIMEOUT", 2*time.Minute),
	}
	if p.err != nil {
		return nil, p.err
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.AIProvider != "" && cfg.AIKey(cfg.AIProvider) == "" {
			return nil, fmt.Errorf("API key for AI_PROVIDER %q must be set in production", cfg.AIProvider)
		}
	}

	return cfg, nil
}

// AIKey returns the configured API key for the named provider.
func (c *Config) AIKey(provider string) string {
	switch provider {
	case "openai":
		return c.OpenAIKey
	case "claude":
		return c.ClaudeKey
	case "mistral":
		return c.MistralKey
	}
	return ""
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parser reads typed values and keeps the first parse error.
type parser struct {
	err error
}

func (p *parser) fail(key, v string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
}

func (p *parser) bool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return b
}

func (p *parser) int(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return n
}

func (p *parser) float(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return f
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	if d < 0 {
		p.fail(key, v, fmt.Errorf("must not be negative"))
		return fallback
	}
	return d
}
