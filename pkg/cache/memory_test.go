package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type cachedBar struct {
	Time  int64   `json:"t"`
	Close float64 `json:"c"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	in := []cachedBar{{Time: 1000, Close: 100.5}, {Time: 1300, Close: 101}}
	if err := c.Set(ctx, "window:SPY:5Min:0:86399", in, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out []cachedBar
	if err := c.Get(ctx, "window:SPY:5Min:0:86399", &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(out) != 2 || out[1].Close != 101 {
		t.Fatalf("unexpected value %v", out)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	var out []cachedBar
	err := c.Get(context.Background(), "missing", &out)
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var out string
	if err := c.Get(ctx, "k", &out); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	var out string
	if err := c.Get(ctx, "k", &out); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expired entry to miss, got %v", err)
	}
}

func TestMemoryCacheNoExpiry(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	var out string
	if err := c.Get(ctx, "k", &out); err != nil {
		t.Fatalf("zero-TTL entry must not expire, got %v", err)
	}
	if out != "v" {
		t.Fatalf("unexpected value %q", out)
	}
}

func TestWindowKey(t *testing.T) {
	got := WindowKey("SPY", "5Min", 100, 200)
	if got != "window:SPY:5Min:100:200" {
		t.Fatalf("unexpected key %s", got)
	}
}
