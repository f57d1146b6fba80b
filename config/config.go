package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	// 数据库配置
	DatabaseURL string

	// 服务器配置
	Port          string
	AllowedOrigin string

	// 其他配置
	Environment string

	// ML 桥接配置
	PythonPath    string
	ScriptPath    string
	BridgeTimeout time.Duration

	// 限流配置
	RateLimitMax    int
	RateLimitWindow time.Duration

	// 数据源配置（可选，设置 FEED_AMQP_URL 后启用）
	FeedAMQPURL     string
	FeedQueue       string
	FeedRoutingKeys []string

	// 运维通知配置（可选）
	OpsWebhookURL string
}

func Load() *Config {
	return &Config{
		// 数据库配置
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/football_analytics?sslmode=disable"),

		// 服务器配置
		Port:          getEnv("PORT", "3001"),
		AllowedOrigin: getEnv("FRONTEND_URL", "http://localhost:3000"),

		// 其他配置
		Environment: getEnv("ENVIRONMENT", "development"),

		// ML 桥接配置
		PythonPath:    getEnv("PYTHON_PATH", "python"),
		ScriptPath:    getEnv("ML_SCRIPT_PATH", "python/analytics_engine.py"),
		BridgeTimeout: time.Duration(getEnvInt("BRIDGE_TIMEOUT_SECONDS", 120)) * time.Second,

		// 限流配置（默认 15 分钟 100 次）
		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow: time.Duration(getEnvInt("RATE_LIMIT_WINDOW_MINUTES", 15)) * time.Minute,

		// 数据源配置
		FeedAMQPURL:     getEnv("FEED_AMQP_URL", ""),
		FeedQueue:       getEnv("FEED_QUEUE", "match-feed"),
		FeedRoutingKeys: getFeedRoutingKeys(),

		// 运维通知配置
		OpsWebhookURL: getEnv("OPS_WEBHOOK_URL", ""),
	}
}

// IsProduction 是否为生产环境
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var result int
	fmt.Sscanf(value, "%d", &result)
	if result == 0 {
		return defaultValue
	}
	return result
}

func getFeedRoutingKeys() []string {
	keys := getEnv("FEED_ROUTING_KEYS", "match.#")
	return strings.Split(keys, ",")
}
