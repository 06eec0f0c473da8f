package cache

import (
	"testing"
	"time"
)

func TestTTLCacheExpiresWithInjectedNow(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	c := NewTTLCacheWithNow[string, int](func() time.Time { return now })

	c.Set("a", 7, time.Minute)
	if v, ok := c.Get("a"); !ok || v != 7 {
		t.Fatalf("expected hit with 7, got %v %v", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestTTLCacheZeroTTLNeverExpires(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	c := NewTTLCacheWithNow[string, int](func() time.Time { return now })

	c.Set("a", 1, 0)
	now = now.Add(24 * time.Hour)
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("expected entry without TTL to survive")
	}
}

func TestTTLCacheDelete(t *testing.T) {
	c := NewTTLCache[string, int]()
	c.Set("a", 1, time.Minute)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected miss after delete")
	}
}
