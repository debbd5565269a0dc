package cache

import (
	"strings"
	"testing"
	"time"
)

func TestKeyStableAndNamespaced(t *testing.T) {
	k1 := Key("https://api.openalex.org/works?search=dermatology")
	k2 := Key("https://api.openalex.org/works?search=dermatology")
	k3 := Key("https://api.openalex.org/works?search=cardiology")

	if k1 != k2 {
		t.Errorf("identical identities must produce identical keys")
	}
	if k1 == k3 {
		t.Errorf("different identities must produce different keys")
	}
	if !strings.HasPrefix(k1, "medlens:v1:") {
		t.Errorf("key missing namespace: %q", k1)
	}
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Errorf("missing key must not be found")
	}

	if err := c.Set("k", []byte("value"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, found := c.Get("k")
	if !found || string(val) != "value" {
		t.Errorf("Get = %q %v, want value true", val, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Errorf("deleted key must not be found")
	}
}

func TestDiskCacheRoundTripAndExpiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	if err := c.Set("k", []byte("persisted"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, found := c.Get("k")
	if !found || string(val) != "persisted" {
		t.Errorf("Get = %q %v, want persisted true", val, found)
	}

	// An already-expired entry is dropped on read
	if err := c.Set("stale", []byte("old"), -time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, found := c.Get("stale"); found {
		t.Errorf("expired entry must not be returned")
	}
}

func TestLayeredCachePromotesDiskHits(t *testing.T) {
	dir := t.TempDir()

	// Seed only the disk layer, then read through a fresh layered cache
	disk := NewDiskCache(dir, time.Hour)
	if err := disk.Set("k", []byte("from-disk"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	layered := NewLayeredCache(time.Minute, dir, time.Hour)
	val, found := layered.Get("k")
	if !found || string(val) != "from-disk" {
		t.Fatalf("layered Get = %q %v, want from-disk true", val, found)
	}

	// The hit must now be served from memory even if the disk entry goes away
	if err := disk.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	val, found = layered.Get("k")
	if !found || string(val) != "from-disk" {
		t.Errorf("disk hit must be promoted to memory")
	}
}

func TestLayeredCacheSetWritesBothLayers(t *testing.T) {
	dir := t.TempDir()
	layered := NewLayeredCache(time.Minute, dir, time.Hour)

	if err := layered.Set("k", []byte("both"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// A second layered cache over the same directory sees the disk copy
	other := NewLayeredCache(time.Minute, dir, time.Hour)
	val, found := other.Get("k")
	if !found || string(val) != "both" {
		t.Errorf("disk layer must hold the value: %q %v", val, found)
	}

	if err := layered.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, found := layered.Get("k"); found {
		t.Errorf("cleared cache must be empty")
	}
}
