package config

import (
	"fmt"

	"github.com/joho/godotenv"
)

// Load loads configuration with 3-tier priority:
// Environment variables > .env file > Default values
func Load() (*Config, error) {
	// .env file is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.Server.Host = getEnvStr("LLM_ROUTER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("LLM_ROUTER_PORT", cfg.Server.Port)
	cfg.Server.LogLevel = getEnvStr("LLM_ROUTER_LOG_LEVEL", cfg.Server.LogLevel)

	cfg.Security.SessionExpireHours = getEnvInt("LLM_ROUTER_SESSION_EXPIRE_HOURS", cfg.Security.SessionExpireHours)
	cfg.Security.DefaultAdmin.Username = getEnvStr("LLM_ROUTER_ADMIN_USERNAME", cfg.Security.DefaultAdmin.Username)
	cfg.Security.DefaultAdmin.Password = getEnvStr("LLM_ROUTER_ADMIN_PASSWORD", cfg.Security.DefaultAdmin.Password)

	cfg.Database.Path = getEnvStr("LLM_ROUTER_DB_PATH", cfg.Database.Path)

	cfg.Inference.EmbeddingBaseURL = getEnvStr("LLM_ROUTER_EMBEDDING_BASE_URL", cfg.Inference.EmbeddingBaseURL)
	cfg.Inference.EmbeddingAPIKey = getEnvStr("LLM_ROUTER_EMBEDDING_API_KEY", cfg.Inference.EmbeddingAPIKey)
	cfg.Inference.EmbeddingModel = getEnvStr("LLM_ROUTER_EMBEDDING_MODEL", cfg.Inference.EmbeddingModel)
	cfg.Inference.ZeroShotURL = getEnvStr("LLM_ROUTER_ZEROSHOT_URL", cfg.Inference.ZeroShotURL)
	cfg.Inference.ZeroShotAPIKey = getEnvStr("LLM_ROUTER_ZEROSHOT_API_KEY", cfg.Inference.ZeroShotAPIKey)
	cfg.Inference.TimeoutSeconds = getEnvInt("LLM_ROUTER_INFERENCE_TIMEOUT_SECONDS", cfg.Inference.TimeoutSeconds)
	cfg.Inference.QueueSize = getEnvInt("LLM_ROUTER_INFERENCE_QUEUE_SIZE", cfg.Inference.QueueSize)

	cfg.Cache.TTLSeconds = getEnvInt("LLM_ROUTER_CACHE_TTL_SECONDS", cfg.Cache.TTLSeconds)
	cfg.Cache.MaxEntries = getEnvInt("LLM_ROUTER_CACHE_MAX_ENTRIES", cfg.Cache.MaxEntries)

	cfg.RateLimit.Enabled = getEnvBool("LLM_ROUTER_RATE_LIMIT_ENABLED", cfg.RateLimit.Enabled)
	cfg.RateLimit.MaxRequests = getEnvInt("LLM_ROUTER_RATE_LIMIT_MAX_REQUESTS", cfg.RateLimit.MaxRequests)
	cfg.RateLimit.WindowSeconds = getEnvInt("LLM_ROUTER_RATE_LIMIT_WINDOW_SECONDS", cfg.RateLimit.WindowSeconds)

	cfg.LogRotation.MaxSizeMB = getEnvInt("LLM_ROUTER_LOG_MAX_SIZE_MB", cfg.LogRotation.MaxSizeMB)
	cfg.LogRotation.MaxBackups = getEnvInt("LLM_ROUTER_LOG_MAX_BACKUPS", cfg.LogRotation.MaxBackups)
	cfg.LogRotation.MaxAgeDays = getEnvInt("LLM_ROUTER_LOG_MAX_AGE_DAYS", cfg.LogRotation.MaxAgeDays)
	cfg.LogRotation.Compress = getEnvBool("LLM_ROUTER_LOG_COMPRESS", cfg.LogRotation.Compress)
}
