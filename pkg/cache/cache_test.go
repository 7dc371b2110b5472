package cache

import (
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := New(time.Minute, time.Minute)
	c.Set("history:fee", []string{"1987-08-21"})

	v, ok := c.Get("history:fee")
	if !ok {
		t.Fatal("expected cache hit")
	}
	dates, ok := v.([]string)
	if !ok || len(dates) != 1 {
		t.Fatalf("unexpected cached value: %#v", v)
	}

	if _, ok := c.Get("history:llama"); ok {
		t.Fatal("expected cache miss for unknown key")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := New(10*time.Millisecond, time.Minute)
	c.Set("k", 1)
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry should have expired")
	}
}

func TestNilCacheIsSafe(t *testing.T) {
	var c *Cache
	c.Set("k", 1)
	if _, ok := c.Get("k"); ok {
		t.Fatal("nil cache should always miss")
	}
}
