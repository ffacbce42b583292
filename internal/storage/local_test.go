package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir(), "/storage")
	if err != nil {
		t.Fatalf("new local store failed: %v", err)
	}
	return store
}

func TestLocalStorePutGetDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	key := Key("receipts_qr", "PR-11F-20250301-0042.svg")

	if err := store.Put(ctx, key, []byte("<svg/>"), "image/svg+xml"); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	data, err := store.Get(ctx, key)
	if err != nil || string(data) != "<svg/>" {
		t.Fatalf("get failed: %q %v", data, err)
	}
	info, err := os.Stat(filepath.Join(store.Root(), "receipts_qr", "PR-11F-20250301-0042.svg"))
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Fatalf("unexpected file mode %v", info.Mode().Perm())
	}
	exists, err := store.Exists(ctx, key)
	if err != nil || !exists {
		t.Fatalf("expected artifact to exist: %v", err)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("deleting missing artifact should succeed: %v", err)
	}
}

func TestLocalStorePutLeavesNoTempFiles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	key := Key("receipts_images", "WR-11F-20250301-0001.png")
	for i := 0; i < 3; i++ {
		if err := store.Put(ctx, key, []byte(strings.Repeat("x", i+1)), "image/png"); err != nil {
			t.Fatalf("put %d failed: %v", i, err)
		}
	}
	entries, err := os.ReadDir(filepath.Join(store.Root(), "receipts_images"))
	if err != nil {
		t.Fatalf("read dir failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "WR-11F-20250301-0001.png" {
		t.Fatalf("expected only the published file, got %v", entries)
	}
	data, _ := store.Get(ctx, key)
	if string(data) != "xxx" {
		t.Fatalf("expected last write to win, got %q", data)
	}
}

func TestLocalStoreRejectsEscapingKeys(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for _, key := range []string{"", "../etc/passwd", "/abs/file", "receipts_qr/../../x", `a\b`} {
		if err := store.Put(ctx, key, []byte("x"), ""); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("key %q: expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestLocalStoreURL(t *testing.T) {
	store := newTestStore(t)
	if got := store.URL("receipts_qr/a.svg"); got != "/storage/receipts_qr/a.svg" {
		t.Fatalf("unexpected url %s", got)
	}
}
