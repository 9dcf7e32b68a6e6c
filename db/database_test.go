package db

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	return store
}

func TestCacheRoundTrip(t *testing.T) {
	store := openTestStore(t)

	if _, ok := store.Get("project:sodium", time.Hour); ok {
		t.Fatal("Expected miss for empty cache")
	}

	if err := store.Put("project:sodium", []byte(`{"slug":"sodium"}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	payload, ok := store.Get("project:sodium", time.Hour)
	if !ok {
		t.Fatal("Expected hit after Put")
	}
	if string(payload) != `{"slug":"sodium"}` {
		t.Errorf("Get returned %q", payload)
	}
}

func TestCacheExpiry(t *testing.T) {
	store := openTestStore(t)

	if err := store.Put("versions:sodium", []byte(`[]`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if _, ok := store.Get("versions:sodium", 0); ok {
		t.Error("Expected entry older than maxAge to miss")
	}
}

func TestCacheOverwrite(t *testing.T) {
	store := openTestStore(t)

	if err := store.Put("k", []byte("old")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put("k", []byte("new")); err != nil {
		t.Fatalf("Second Put failed: %v", err)
	}

	payload, ok := store.Get("k", time.Hour)
	if !ok || string(payload) != "new" {
		t.Errorf("Expected refreshed payload, got %q (hit=%v)", payload, ok)
	}

	count, _, err := store.CacheStats()
	if err != nil {
		t.Fatalf("CacheStats failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected a single cache entry after overwrite, got %d", count)
	}
}

func TestClearCache(t *testing.T) {
	store := openTestStore(t)

	_ = store.Put("a", []byte("1"))
	_ = store.Put("b", []byte("2"))

	removed, err := store.ClearCache()
	if err != nil {
		t.Fatalf("ClearCache failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("ClearCache removed %d entries, want 2", removed)
	}

	count, _, err := store.CacheStats()
	if err != nil {
		t.Fatalf("CacheStats failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected empty cache, got %d entries", count)
	}
}

func TestRecordDownload(t *testing.T) {
	store := openTestStore(t)

	if err := store.RecordDownload("sodium", "ver1", "sodium-1.jar", "mods/sodium-1.jar"); err != nil {
		t.Fatalf("RecordDownload failed: %v", err)
	}
	// Same project+version again should update, not duplicate.
	if err := store.RecordDownload("sodium", "ver1", "sodium-1.jar", "other/sodium-1.jar"); err != nil {
		t.Fatalf("Repeat RecordDownload failed: %v", err)
	}

	var count int64
	if err := store.db.Model(&Download{}).Count(&count).Error; err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 download record, got %d", count)
	}
}
