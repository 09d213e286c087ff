package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestFileCacheRoundTrip(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	key := Key("svg", "abc123", "settings")

	if _, ok, err := c.Get(ctx, key); err != nil || ok {
		t.Fatalf("Get() before Set = (ok=%v, err=%v), want miss", ok, err)
	}

	want := []byte("<svg/>")
	if err := c.Set(ctx, key, want, time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get() = (ok=%v, err=%v), want hit", ok, err)
	}
	if string(got) != string(want) {
		t.Errorf("Get() = %q, want %q", got, want)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, ok, err := c.Get(ctx, "k"); err != nil || ok {
		t.Errorf("Get() after expiry = (ok=%v, err=%v), want miss", ok, err)
	}
}

func TestFileCacheZeroTTLNeverExpires(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); !ok {
		t.Error("Get() with zero TTL = miss, want hit")
	}
}

func TestFileCacheDelete(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("Get() after Delete = hit, want miss")
	}
	// Deleting a missing key is not an error.
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() of missing key = %v, want nil", err)
	}
}

func TestNullCache(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, ok, err := c.Get(ctx, "k"); err != nil || ok {
		t.Errorf("NullCache Get() = (ok=%v, err=%v), want permanent miss", ok, err)
	}
}

func TestKey(t *testing.T) {
	a := Key("svg", "hash1", map[string]int{"x": 1})
	b := Key("svg", "hash1", map[string]int{"x": 1})
	if a != b {
		t.Error("identical inputs must produce identical keys")
	}
	if c := Key("svg", "hash2", map[string]int{"x": 1}); c == a {
		t.Error("different inputs must produce different keys")
	}
	if !strings.HasPrefix(a, "svg:") {
		t.Errorf("Key() = %q, want svg: prefix", a)
	}
}

func TestHash(t *testing.T) {
	// SHA-256 of the empty input is a fixed vector.
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Hash(nil); got != want {
		t.Errorf("Hash(nil) = %q, want %q", got, want)
	}
	if len(Hash([]byte("x"))) != 64 {
		t.Error("Hash() should return 64 hex characters")
	}
}
