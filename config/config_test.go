package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("RATE_LIMIT_MAX", "")
	t.Setenv("FEED_AMQP_URL", "")

	cfg := Load()

	if cfg.Port != "3001" {
		t.Errorf("Expected default port '3001', got '%s'", cfg.Port)
	}
	if cfg.Environment != "development" {
		t.Errorf("Expected default environment 'development', got '%s'", cfg.Environment)
	}
	if cfg.RateLimitMax != 100 {
		t.Errorf("Expected default rate limit 100, got %d", cfg.RateLimitMax)
	}
	if cfg.RateLimitWindow != 15*time.Minute {
		t.Errorf("Expected default rate window 15m, got %v", cfg.RateLimitWindow)
	}
	if cfg.BridgeTimeout != 120*time.Second {
		t.Errorf("Expected default bridge timeout 120s, got %v", cfg.BridgeTimeout)
	}
	if cfg.FeedAMQPURL != "" {
		t.Errorf("Expected feed to be disabled by default, got '%s'", cfg.FeedAMQPURL)
	}
	if cfg.IsProduction() {
		t.Error("Expected development config to not be production")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("FEED_ROUTING_KEYS", "match.result,match.stats")

	cfg := Load()

	if cfg.Port != "9000" {
		t.Errorf("Expected port '9000', got '%s'", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Error("Expected production config")
	}
	if cfg.RateLimitMax != 5 {
		t.Errorf("Expected rate limit 5, got %d", cfg.RateLimitMax)
	}
	if len(cfg.FeedRoutingKeys) != 2 || cfg.FeedRoutingKeys[0] != "match.result" {
		t.Errorf("Unexpected routing keys: %v", cfg.FeedRoutingKeys)
	}
}
