package infra

import (
	"context"
	"testing"
	"time"
)

func TestCacheGetSet(t *testing.T) {
	c := NewCache[[]byte](time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatal("empty cache should miss")
	}
	c.Set("a", []byte("body"))
	got, ok := c.Get("a")
	if !ok || string(got) != "body" {
		t.Fatalf("Get: got %q, %v", got, ok)
	}
}

func TestCacheExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache[string](time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	c.SetWithTTL("long", "v", time.Hour)
	now = now.Add(2 * time.Minute)

	if _, ok := c.Get("k"); ok {
		t.Error("expired key should miss")
	}
	if _, ok := c.Get("long"); !ok {
		t.Error("long TTL key should still hit")
	}
	if _, ok := c.entries["k"]; ok {
		t.Error("expired key should be evicted on Get")
	}
}

func TestCacheSetSweepsExpired(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache[string](time.Minute)
	c.now = func() time.Time { return now }

	for _, k := range []string{"a", "b", "c"} {
		c.Set(k, "v")
	}
	now = now.Add(2 * time.Minute)
	c.Set("d", "v")

	if len(c.entries) != 1 {
		t.Errorf("entries after sweep = %d, want 1", len(c.entries))
	}
	if _, ok := c.Get("d"); !ok {
		t.Error("fresh key should hit")
	}
}

func TestCacheZeroTTLDisables(t *testing.T) {
	c := NewCache[int](0)
	c.Set("k", 1)
	if _, ok := c.Get("k"); ok {
		t.Error("zero TTL cache should never hit")
	}
}

func TestRateLimiterAllowsBurst(t *testing.T) {
	rl := NewRateLimiter(3, time.Hour)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := rl.Wait(ctx); err != nil {
			t.Fatalf("Wait %d: %v", i, err)
		}
	}
}

func TestRateLimiterHonorsContext(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := rl.Wait(ctx); err != nil {
		t.Fatalf("first Wait: %v", err)
	}
	if err := rl.Wait(ctx); err == nil {
		t.Error("second Wait should fail once the context expires")
	}
}

func TestPerSecondRefills(t *testing.T) {
	rl := PerSecond(50) // one token every 20ms
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 3; i++ {
		if err := rl.Wait(ctx); err != nil {
			t.Fatalf("Wait %d: %v", i, err)
		}
	}
}
