// Package config provides configuration management with 3-tier priority:
// Environment variables > .env file > Default values
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Security    SecurityConfig
	Database    DatabaseConfig
	Inference   InferenceConfig
	Cache       CacheConfig
	RateLimit   RateLimitConfig
	LogRotation LogRotationConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host     string
	Port     int
	LogLevel string
}

// SecurityConfig holds management API security configuration.
type SecurityConfig struct {
	SessionExpireHours int
	DefaultAdmin       DefaultAdminConfig
}

// DefaultAdminConfig holds bootstrap admin credentials.
type DefaultAdminConfig struct {
	Username string
	Password string
}

// DatabaseConfig holds SQLite configuration. An empty Path selects an
// in-memory store.
type DatabaseConfig struct {
	Path string
}

// InferenceConfig holds the remote model backend endpoints.
type InferenceConfig struct {
	EmbeddingBaseURL string
	EmbeddingAPIKey  string
	EmbeddingModel   string
	ZeroShotURL      string
	ZeroShotAPIKey   string
	TimeoutSeconds   int
	QueueSize        int
}

// CacheConfig holds the routing decision cache settings. TTLSeconds <= 0
// disables the cache.
type CacheConfig struct {
	TTLSeconds int
	MaxEntries int
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	Enabled       bool
	MaxRequests   int
	WindowSeconds int
}

// LogRotationConfig holds log rotation settings powered by lumberjack.
type LogRotationConfig struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "0.0.0.0",
			Port:     8080,
			LogLevel: "INFO",
		},
		Security: SecurityConfig{
			SessionExpireHours: 24,
			DefaultAdmin: DefaultAdminConfig{
				Username: "admin",
				Password: "admin123",
			},
		},
		Database: DatabaseConfig{
			Path: "data/llm-router.db",
		},
		Inference: InferenceConfig{
			EmbeddingModel: "text-embedding-3-small",
			TimeoutSeconds: 30,
			QueueSize:      64,
		},
		Cache: CacheConfig{
			TTLSeconds: 300,
			MaxEntries: 10000,
		},
		RateLimit: RateLimitConfig{
			Enabled:       true,
			MaxRequests:   100,
			WindowSeconds: 60,
		},
		LogRotation: LogRotationConfig{
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &ConfigError{Field: "server.port", Message: "must be between 1 and 65535"}
	}
	if c.Security.SessionExpireHours < 1 {
		return &ConfigError{Field: "security.session_expire_hours", Message: "must be at least 1"}
	}
	if c.Inference.QueueSize < 1 {
		return &ConfigError{Field: "inference.queue_size", Message: "must be at least 1"}
	}
	if c.Inference.TimeoutSeconds < 1 {
		return &ConfigError{Field: "inference.timeout_seconds", Message: "must be at least 1"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Field + ": " + e.Message
}

// Helper functions for environment variable parsing.

func getEnvStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	lower := strings.ToLower(v)
	return lower == "true" || lower == "1" || lower == "yes" || lower == "on"
}
