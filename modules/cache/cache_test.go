package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Tests require Redis on localhost:6379 and are skipped when it is absent.
const testRedisAddr = "localhost:6379"

func setupTestCache(t *testing.T, prefix string) *Cache {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: testRedisAddr,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	c := New(client, prefix, 5*time.Minute)

	cleanup := func() { _ = c.DeletePattern(ctx, "*") }
	cleanup()
	t.Cleanup(func() {
		cleanup()
		client.Close()
	})

	return c
}

// taskEntry mirrors the shape of a cached task read.
type taskEntry struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q, want %q", cfg.RedisAddr, "localhost:6379")
	}
	if cfg.Prefix != "tasks:" {
		t.Errorf("Prefix = %q, want %q", cfg.Prefix, "tasks:")
	}
	if cfg.TTL != 5*time.Minute {
		t.Errorf("TTL = %v, want %v", cfg.TTL, 5*time.Minute)
	}
}

func TestCache_SetAndGet(t *testing.T) {
	c := setupTestCache(t, "tasktest:setget:")
	ctx := context.Background()

	want := taskEntry{ID: 7, Title: "Write changelog", Status: "TODO", Priority: "HIGH"}
	if err := c.Set(ctx, "id:7", want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got taskEntry
	found, err := c.Get(ctx, "id:7", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatal("Get() returned found = false, want true")
	}
	if got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := setupTestCache(t, "tasktest:miss:")
	ctx := context.Background()

	var got taskEntry
	found, err := c.Get(ctx, "id:404", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Get() returned found = true for a missing key, want false")
	}
}

func TestCache_SetWithTTL(t *testing.T) {
	c := setupTestCache(t, "tasktest:ttl:")
	ctx := context.Background()

	if err := c.SetWithTTL(ctx, "today:2025-04-10", []uint{1, 2}, 100*time.Millisecond); err != nil {
		t.Fatalf("SetWithTTL() error = %v", err)
	}

	var ids []uint
	found, err := c.Get(ctx, "today:2025-04-10", &ids)
	if err != nil || !found {
		t.Fatalf("Get() before expiry: found = %v, err = %v", found, err)
	}

	time.Sleep(200 * time.Millisecond)

	found, err = c.Get(ctx, "today:2025-04-10", &ids)
	if err != nil {
		t.Fatalf("Get() after expiry error = %v", err)
	}
	if found {
		t.Error("Get() after TTL expiry should return found = false")
	}
}

// TestCache_InvalidateAll covers the write-path flow: every mutation clears
// the whole key space under the prefix.
func TestCache_InvalidateAll(t *testing.T) {
	c := setupTestCache(t, "tasktest:inval:")
	ctx := context.Background()

	keys := []string{"all", "id:1", "id:2", "today:2025-04-10"}
	for _, key := range keys {
		if err := c.Set(ctx, key, taskEntry{ID: 1, Title: "x"}); err != nil {
			t.Fatalf("Set(%q) error = %v", key, err)
		}
	}

	if err := c.DeletePattern(ctx, "*"); err != nil {
		t.Fatalf("DeletePattern() error = %v", err)
	}

	for _, key := range keys {
		var got taskEntry
		found, _ := c.Get(ctx, key, &got)
		if found {
			t.Errorf("key %q should have been invalidated", key)
		}
	}
}

func TestCache_DeletePatternScopedToPrefix(t *testing.T) {
	first := setupTestCache(t, "tasktest:scope-a:")
	second := setupTestCache(t, "tasktest:scope-b:")
	ctx := context.Background()

	if err := first.Set(ctx, "all", "mine"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := second.Set(ctx, "all", "theirs"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := first.DeletePattern(ctx, "*"); err != nil {
		t.Fatalf("DeletePattern() error = %v", err)
	}

	var got string
	if found, _ := first.Get(ctx, "all", &got); found {
		t.Error("first prefix should have been cleared")
	}
	if found, _ := second.Get(ctx, "all", &got); !found {
		t.Error("second prefix should have been untouched")
	}
}

func TestCache_Stats(t *testing.T) {
	c := setupTestCache(t, "tasktest:stats:")
	ctx := context.Background()

	c.ResetStats()

	_ = c.Set(ctx, "all", []taskEntry{})

	var got []taskEntry
	_, _ = c.Get(ctx, "all", &got)     // hit
	_, _ = c.Get(ctx, "missing", &got) // miss
	_, _ = c.Get(ctx, "all", &got)     // hit
	_ = c.Delete(ctx, "all")

	stats := c.GetStats()
	if stats.Sets != 1 {
		t.Errorf("Sets = %d, want 1", stats.Sets)
	}
	if stats.Hits != 2 {
		t.Errorf("Hits = %d, want 2", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
	if stats.Deletes != 1 {
		t.Errorf("Deletes = %d, want 1", stats.Deletes)
	}
	if stats.TotalGets != 3 {
		t.Errorf("TotalGets = %d, want 3", stats.TotalGets)
	}

	want := float64(2) / float64(3) * 100
	if stats.HitRate < want-0.01 || stats.HitRate > want+0.01 {
		t.Errorf("HitRate = %f, want ~%f", stats.HitRate, want)
	}

	c.ResetStats()
	if s := c.GetStats(); s.Hits != 0 || s.Misses != 0 || s.Sets != 0 || s.Deletes != 0 {
		t.Errorf("stats after reset = %+v, want zeros", s)
	}
}

func TestCache_Ping(t *testing.T) {
	c := setupTestCache(t, "tasktest:ping:")

	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
