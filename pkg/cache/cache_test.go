package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/terraweave/terraweave/pkg/observability"
)

func newFileCache(t *testing.T) Cache {
	t.Helper()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	return c
}

func TestFileCacheRoundTrip(t *testing.T) {
	c := newFileCache(t)
	ctx := context.Background()

	if _, found, err := c.Get(ctx, "eval:missing"); found || err != nil {
		t.Fatalf("Get(missing) = found %v, err %v", found, err)
	}

	if err := c.Set(ctx, "eval:k", []byte("samples"), DefaultTTL); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	data, found, err := c.Get(ctx, "eval:k")
	if err != nil || !found || string(data) != "samples" {
		t.Fatalf("Get() = %q, %v, %v", data, found, err)
	}

	if err := c.Delete(ctx, "eval:k"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, found, _ := c.Get(ctx, "eval:k"); found {
		t.Error("entry survived Delete")
	}
	// Deleting a missing key is not an error.
	if err := c.Delete(ctx, "eval:k"); err != nil {
		t.Errorf("Delete(missing) error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	c := newFileCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "eval:k", []byte("x"), -time.Second); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	// A negative TTL means no expiry is recorded; the entry stays valid.
	if _, found, _ := c.Get(ctx, "eval:k"); !found {
		t.Error("entry without expiry reported as expired")
	}

	fc := c.(*FileCache)
	expired := []byte(`{"data":"eA==","expires_at":"2000-01-01T00:00:00Z"}`)
	if err := os.WriteFile(fc.path("eval:k"), expired, 0644); err != nil {
		t.Fatal(err)
	}
	if _, found, _ := c.Get(ctx, "eval:k"); found {
		t.Error("expired entry reported as hit")
	}
	// Expired entries are removed on read.
	if _, err := os.Stat(fc.path("eval:k")); !os.IsNotExist(err) {
		t.Error("expired entry file was not removed")
	}
}

func TestFileCacheCorruptEntryIsMiss(t *testing.T) {
	c := newFileCache(t)
	ctx := context.Background()

	fc := c.(*FileCache)
	path := fc.path("graph:k")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, found, err := c.Get(ctx, "graph:k"); found || err != nil {
		t.Errorf("Get(corrupt) = found %v, err %v, want miss", found, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry file was not removed")
	}
}

func TestNullCache(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "eval:k", []byte("x"), DefaultTTL); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if _, found, err := c.Get(ctx, "eval:k"); found || err != nil {
		t.Errorf("null cache Get() = found %v, err %v", found, err)
	}
	if err := c.Delete(ctx, "eval:k"); err != nil {
		t.Errorf("Delete() error: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

func TestEvalKey(t *testing.T) {
	base := EvalKeyOpts{MinX: 0, MaxX: 256, MinZ: 0, MaxZ: 256, Seed: 42}

	key := EvalKey("hash", base)
	if keyType(key) != "eval" {
		t.Errorf("key prefix = %q, want eval", keyType(key))
	}
	if key != EvalKey("hash", base) {
		t.Error("identical inputs produced different keys")
	}

	variants := map[string]EvalKeyOpts{
		"seed":  {MinX: 0, MaxX: 256, MinZ: 0, MaxZ: 256, Seed: 43},
		"range": {MinX: 0, MaxX: 128, MinZ: 0, MaxZ: 256, Seed: 42},
		"root":  {MinX: 0, MaxX: 256, MinZ: 0, MaxZ: 256, Seed: 42, Root: "n1"},
	}
	for name, opts := range variants {
		if EvalKey("hash", opts) == key {
			t.Errorf("changing %s did not change the key", name)
		}
	}
	if EvalKey("other", base) == key {
		t.Error("changing the graph hash did not change the key")
	}
}

func TestGraphKey(t *testing.T) {
	key := GraphKey("hash", "node")
	if keyType(key) != "graph" {
		t.Errorf("key prefix = %q, want graph", keyType(key))
	}
	if key != GraphKey("hash", "node") {
		t.Error("identical inputs produced different keys")
	}
	if GraphKey("hash", "imp") == key {
		t.Error("changing the prefix did not change the key")
	}
}

func TestHash(t *testing.T) {
	h := Hash([]byte("abc"))
	if len(h) != 64 {
		t.Fatalf("Hash() length = %d, want 64", len(h))
	}
	// Well-known SHA-256 of "abc".
	if h != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Errorf("Hash(abc) = %s", h)
	}
}

func TestKeyType(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"eval:abc", "eval"},
		{"graph:abc", "graph"},
		{"noprefix", "unknown"},
	}
	for _, tt := range tests {
		if got := keyType(tt.key); got != tt.want {
			t.Errorf("keyType(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

// countingHooks tallies cache events for assertions.
type countingHooks struct {
	hits, misses, sets int
	lastType           string
}

func (h *countingHooks) OnCacheHit(_ context.Context, keyType string) {
	h.hits++
	h.lastType = keyType
}

func (h *countingHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.misses++
	h.lastType = keyType
}

func (h *countingHooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	h.sets++
	h.lastType = keyType
}

func TestInstrument(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetCacheHooks(hooks)
	t.Cleanup(observability.Reset)

	c := Instrument(newFileCache(t))
	ctx := context.Background()

	if _, found, _ := c.Get(ctx, "eval:k"); found {
		t.Fatal("unexpected hit")
	}
	if err := c.Set(ctx, "eval:k", []byte("x"), DefaultTTL); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if _, found, _ := c.Get(ctx, "eval:k"); !found {
		t.Fatal("expected hit")
	}

	if hooks.misses != 1 || hooks.hits != 1 || hooks.sets != 1 {
		t.Errorf("hooks = %d miss / %d hit / %d set, want 1/1/1",
			hooks.misses, hooks.hits, hooks.sets)
	}
	if hooks.lastType != "eval" {
		t.Errorf("lastType = %q, want eval", hooks.lastType)
	}
}

func TestInstrumentNilInner(t *testing.T) {
	c := Instrument(nil)
	if _, found, err := c.Get(context.Background(), "eval:k"); found || err != nil {
		t.Errorf("Instrument(nil).Get() = found %v, err %v", found, err)
	}
}
