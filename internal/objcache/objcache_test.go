package objcache

import (
	"path/filepath"
	"testing"

	"github.com/kilnvcs/kiln/internal/object"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	path := filepath.Join(t.TempDir(), "objcache.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func hashOf(t *testing.T, b byte) object.Hash {
	t.Helper()
	var h object.Hash
	for i := range h {
		h[i] = b
	}
	return h
}

func TestRememberAndLookupParent(t *testing.T) {
	c := openTestCache(t)

	commit := hashOf(t, 0xAA)
	parent := hashOf(t, 0xBB)

	if err := c.RememberParent(commit, parent); err != nil {
		t.Fatalf("RememberParent: %v", err)
	}

	got, found, err := c.Parent(commit)
	if err != nil {
		t.Fatalf("Parent: %v", err)
	}
	if !found {
		t.Fatal("expected a memoized parent entry")
	}
	if got != parent {
		t.Fatalf("Parent = %s, want %s", got, parent)
	}
}

func TestParentMissReportsNotFound(t *testing.T) {
	c := openTestCache(t)

	_, found, err := c.Parent(hashOf(t, 0x01))
	if err != nil {
		t.Fatalf("Parent: %v", err)
	}
	if found {
		t.Fatal("expected no entry for an unrecorded commit")
	}
}

func TestRecordAndLookupDigest(t *testing.T) {
	c := openTestCache(t)

	h := hashOf(t, 0xCC)
	compressed := []byte("pretend this is zlib-compressed bytes")

	if err := c.RecordDigest(h, compressed); err != nil {
		t.Fatalf("RecordDigest: %v", err)
	}

	digest, found, err := c.Digest(h)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if !found {
		t.Fatal("expected a memoized digest entry")
	}
	if len(digest) == 0 {
		t.Fatal("expected a non-empty blake3 digest")
	}

	// Recording the same compressed bytes again must reproduce the
	// same digest, since RecordDigest hashes its input deterministically.
	if err := c.RecordDigest(h, compressed); err != nil {
		t.Fatalf("RecordDigest (second): %v", err)
	}
	digest2, _, err := c.Digest(h)
	if err != nil {
		t.Fatalf("Digest (second): %v", err)
	}
	if string(digest) != string(digest2) {
		t.Fatal("expected a stable digest across repeated RecordDigest calls")
	}
}

func TestDigestMissReportsNotFound(t *testing.T) {
	c := openTestCache(t)

	digest, found, err := c.Digest(hashOf(t, 0x02))
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if found {
		t.Fatal("expected no entry for an unrecorded hash")
	}
	if digest != nil {
		t.Fatal("expected a nil digest on a miss")
	}
}

func TestCacheSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "objcache.db")
	commit := hashOf(t, 0xDD)
	parent := hashOf(t, 0xEE)

	c1, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c1.RememberParent(commit, parent); err != nil {
		t.Fatalf("RememberParent: %v", err)
	}
	if err := c1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	c2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer c2.Close()

	got, found, err := c2.Parent(commit)
	if err != nil {
		t.Fatalf("Parent after reopen: %v", err)
	}
	if !found || got != parent {
		t.Fatalf("Parent after reopen = %s, %v, want %s, true", got, found, parent)
	}
}
