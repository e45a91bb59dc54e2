// Package objcache is a non-authoritative accelerator layered on top
// of internal/objstore. It memoizes two things a naive loose-object
// walk recomputes on every call: a commit's parent hash (recorded by
// internal/repo's Commit, Log and IsAncestor, and read back by
// IsAncestor) and a blake3 digest of each object's compressed
// bytes keyed by SHA-1 hex, used to skip a redundant zlib round-trip
// on a Put that's already on disk.
//
// Nothing here is load-bearing: every mapping Cache stores is fully
// recoverable by walking internal/objstore directly, and a missing or
// corrupt cache file never prevents a read or write from succeeding
// through the object store. Bucket layout is grounded on the teacher's
// bbolt wrapper (internal/store/kv.go in javanhut/Ivaldi-vcs), trimmed
// to the two mappings kiln actually needs.
package objcache

import (
	"encoding/hex"
	"fmt"

	"go.etcd.io/bbolt"
	"lukechampine.com/blake3"

	"github.com/kilnvcs/kiln/internal/object"
)

var (
	bucketParent = []byte("commit->parent")
	bucketDigest = []byte("sha1->blake3")
)

// Cache wraps a bbolt database holding the two memoization tables.
type Cache struct {
	db *bbolt.DB
}

// Open opens (creating if absent) the bbolt file at path and ensures
// its buckets exist.
func Open(path string) (*Cache, error) {
	db, err := bbolt.Open(path, 0666, nil)
	if err != nil {
		return nil, fmt.Errorf("open object cache: %w", err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		if _, e := tx.CreateBucketIfNotExists(bucketParent); e != nil {
			return e
		}
		if _, e := tx.CreateBucketIfNotExists(bucketDigest); e != nil {
			return e
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object cache buckets: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying bbolt file.
func (c *Cache) Close() error {
	return c.db.Close()
}

// RememberParent records that commit's parent is parent. A root commit
// (no parent) is never recorded — an absent entry reads as "no parent
// or not yet memoized", and internal/repo.IsAncestor falls back to
// reading the commit object itself on a cache miss, so there is no
// ambiguity to resolve here.
func (c *Cache) RememberParent(commit, parent object.Hash) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketParent).Put(hashKey(commit), hashKey(parent))
	})
}

// Parent returns the memoized parent of commit, and whether an entry
// was found at all.
func (c *Cache) Parent(commit object.Hash) (object.Hash, bool, error) {
	var parent object.Hash
	found := false
	err := c.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketParent).Get(hashKey(commit))
		if v == nil {
			return nil
		}
		h, err := object.ParseHash(string(v))
		if err != nil {
			return nil // corrupt entry: treat as a miss, never as an error
		}
		parent = h
		found = true
		return nil
	})
	return parent, found, err
}

// RecordDigest stores the blake3 digest of an object's compressed
// bytes, keyed by the object's SHA-1 hex. Put in internal/objstore
// checks Digest before re-deflating bytes it already wrote.
func (c *Cache) RecordDigest(sha1 object.Hash, compressed []byte) error {
	sum := blake3.Sum256(compressed)
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDigest).Put(hashKey(sha1), sum[:])
	})
}

// Digest returns the memoized blake3 digest for sha1, if recorded.
func (c *Cache) Digest(sha1 object.Hash) ([]byte, bool, error) {
	var digest []byte
	err := c.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketDigest).Get(hashKey(sha1))
		if v == nil {
			return nil
		}
		digest = append([]byte(nil), v...)
		return nil
	})
	return digest, digest != nil, err
}

func hashKey(h object.Hash) []byte {
	return []byte(hex.EncodeToString(h[:]))
}
