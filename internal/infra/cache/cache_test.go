package cache_test

import (
	"testing"
	"time"

	"github.com/Maiolini/sitecafe/internal/infra/cache"
)

func TestCache_SetGet(t *testing.T) {
	c := cache.New[int](5 * time.Minute)

	c.Set("beneficios:inicial", 3)
	got, ok := c.Get("beneficios:inicial")
	if !ok {
		t.Fatal("expected hit")
	}
	if got != 3 {
		t.Errorf("expected 3, got %d", got)
	}

	if _, ok := c.Get("beneficios:elite"); ok {
		t.Error("expected miss for unset key")
	}
}

func TestCache_SetReplaces(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("k", "antes")
	c.Set("k", "depois")

	got, ok := c.Get("k")
	if !ok || got != "depois" {
		t.Errorf("expected replaced value, got %q (hit=%v)", got, ok)
	}
}

func TestCache_EntriesExpire(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)

	c.Set("k", "v")
	time.Sleep(100 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected entry to be expired")
	}
}

func TestCache_DeleteInvalidates(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("k", "v")
	c.Delete("k")

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected key gone after delete")
	}
}
