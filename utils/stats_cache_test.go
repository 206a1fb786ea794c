package utils

import (
	"testing"
)

func TestCacheKey(t *testing.T) {
	key1 := CacheKey("brightness", "0", "256")
	key2 := CacheKey("brightness", "0", "256")
	if key1 != key2 {
		t.Errorf("cache key not stable: %s vs %s", key1, key2)
	}
	if key1 == CacheKey("brightness", "256", "256") {
		t.Error("cache key collision across different parts")
	}
	if len(key1) != 32 {
		t.Errorf("expected 32 hex chars, got %d", len(key1))
	}
}

func TestStatsCacheDisabled(t *testing.T) {
	cache := NewStatsCache("", false)

	// a cache without a memcache URI is a no-op
	cache.Put("key", []byte("value"))
	if _, ok := cache.Get("key"); ok {
		t.Error("disabled cache returned a hit")
	}
}
