package tiered

import (
	"context"
	"sync"
	"testing"
	"time"
)

// mapCache is an in-memory cache.Cache for tests.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (m *mapCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets++
	return nil
}

func (m *mapCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func TestGetBackfillsL1(t *testing.T) {
	l1, l2 := newMapCache(), newMapCache()
	_ = l2.Set(t.Context(), "k", []byte("v"), time.Minute)
	c := New(l1, l2, time.Minute)

	val, ok, err := c.Get(t.Context(), "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok || string(val) != "v" {
		t.Fatalf("Get() = %q, %v, want %q, true", val, ok, "v")
	}

	if _, ok, _ := l1.Get(t.Context(), "k"); !ok {
		t.Error("L1 not backfilled after L2 hit")
	}
}

func TestGetPrefersL1(t *testing.T) {
	l1, l2 := newMapCache(), newMapCache()
	_ = l1.Set(t.Context(), "k", []byte("l1-val"), time.Minute)
	_ = l2.Set(t.Context(), "k", []byte("l2-val"), time.Minute)
	c := New(l1, l2, time.Minute)

	val, ok, _ := c.Get(t.Context(), "k")
	if !ok || string(val) != "l1-val" {
		t.Errorf("Get() = %q, %v, want %q, true", val, ok, "l1-val")
	}
}

func TestSetWritesBothLevels(t *testing.T) {
	l1, l2 := newMapCache(), newMapCache()
	c := New(l1, l2, time.Minute)

	if err := c.Set(t.Context(), "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, ok, _ := l1.Get(t.Context(), "k"); !ok {
		t.Error("value missing from L1")
	}
	if _, ok, _ := l2.Get(t.Context(), "k"); !ok {
		t.Error("value missing from L2")
	}
}

func TestDeleteRemovesBothLevels(t *testing.T) {
	l1, l2 := newMapCache(), newMapCache()
	c := New(l1, l2, time.Minute)
	_ = c.Set(t.Context(), "k", []byte("v"), time.Minute)

	if err := c.Delete(t.Context(), "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := c.Get(t.Context(), "k"); ok {
		t.Error("value still present after delete")
	}
}
