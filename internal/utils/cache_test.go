package utils

import (
	"testing"
	"time"
)

func TestCacheSetGetDelete(t *testing.T) {
	c := GetCache()
	c.Purge()

	c.Set("k", "v", time.Minute)
	if got := c.Get("k"); got != "v" {
		t.Errorf("expected v, got %v", got)
	}

	c.Delete("k")
	if got := c.Get("k"); got != nil {
		t.Errorf("expected nil after delete, got %v", got)
	}
}

func TestCacheExpiry(t *testing.T) {
	c := GetCache()
	c.Purge()

	c.Set("k", "v", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	if got := c.Get("k"); got != nil {
		t.Errorf("expected expired entry to be gone, got %v", got)
	}
}

func TestCacheDeletePrefix(t *testing.T) {
	c := GetCache()
	c.Purge()

	c.Set("list:1", "a", time.Minute)
	c.Set("list:2", "b", time.Minute)
	c.Set("other", "c", time.Minute)

	c.DeletePrefix("list:")
	if c.Get("list:1") != nil || c.Get("list:2") != nil {
		t.Error("expected prefixed entries to be removed")
	}
	if got := c.Get("other"); got != "c" {
		t.Errorf("unrelated entry lost, got %v", got)
	}
}
