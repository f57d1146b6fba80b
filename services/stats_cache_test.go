package services

import (
	"testing"
	"time"
)

func TestStatsCacheSetGet(t *testing.T) {
	cache := NewStatsCache(time.Minute)

	cache.Set("form_10", 42)

	value, ok := cache.Get("form_10")
	if !ok {
		t.Fatal("Expected cache hit")
	}
	if value.(int) != 42 {
		t.Errorf("Expected 42, got %v", value)
	}

	if _, ok := cache.Get("missing"); ok {
		t.Error("Expected cache miss for unknown key")
	}
}

func TestStatsCacheExpiry(t *testing.T) {
	cache := NewStatsCache(10 * time.Millisecond)

	cache.Set("season", "stats")
	time.Sleep(20 * time.Millisecond)

	if _, ok := cache.Get("season"); ok {
		t.Error("Expected expired entry to miss")
	}
}

func TestStatsCacheInvalidate(t *testing.T) {
	cache := NewStatsCache(time.Minute)

	cache.Set("form_10", 1)
	cache.Set("season", 2)

	if cache.Size() != 2 {
		t.Fatalf("Expected 2 entries, got %d", cache.Size())
	}

	cache.Invalidate()

	if cache.Size() != 0 {
		t.Errorf("Expected empty cache after invalidate, got %d entries", cache.Size())
	}
	if _, ok := cache.Get("form_10"); ok {
		t.Error("Expected miss after invalidate")
	}
}
