// Package objstore is the loose object store: every Blob, Tree, and
// Commit lives at a two-level fan-out path under objects/, content
// addressed by its SHA-1 hash, zlib-compressed on disk. The fan-out
// and atomic-write shape is grounded on the teacher's FileCAS
// (internal/cas/file_cas.go in javanhut/Ivaldi-vcs); the addressing
// scheme, hash algorithm, and compression format follow the object
// model in internal/object rather than the teacher's BLAKE3/zstd pair.
package objstore

import (
	"errors"
	"fmt"

	"github.com/kilnvcs/kiln/internal/fsys"
	"github.com/kilnvcs/kiln/internal/object"
	"github.com/kilnvcs/kiln/internal/vcserr"
)

// digestCache is the slice of internal/objcache.Cache that Store uses.
// Declared locally so objstore never has to import objcache for
// anything beyond this optional hook.
type digestCache interface {
	RecordDigest(sha1 object.Hash, compressed []byte) error
	Digest(sha1 object.Hash) ([]byte, bool, error)
}

// Store is a content-addressed loose object store rooted at a
// directory (conventionally ".git/objects") on a FileSystem.
type Store struct {
	fs    fsys.FileSystem
	root  string
	cache digestCache
}

// New returns a Store rooted at root on fs. The caller is responsible
// for root's existence; Put creates any fan-out subdirectories it needs.
func New(fs fsys.FileSystem, root string) *Store {
	return &Store{fs: fs, root: root}
}

// WithCache attaches a digest-recording accelerator. A nil cache disables
// the optimization; Store still functions correctly without one.
func (s *Store) WithCache(cache digestCache) *Store {
	s.cache = cache
	return s
}

// path returns the fan-out path for hash: objects/<first 2 hex>/<rest>.
func (s *Store) path(h object.Hash) (dir, full string) {
	hex := h.String()
	dir = s.root + "/" + hex[:2]
	full = dir + "/" + hex[2:]
	return dir, full
}

// Has reports whether an object with the given hash is already stored.
func (s *Store) Has(h object.Hash) (bool, error) {
	_, full := s.path(h)
	if _, err := s.fs.Stat(full); err != nil {
		if errors.Is(err, fsys.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat object %s: %w", h, vcserr.Io)
	}
	return true, nil
}

// Put encodes and compresses obj and writes it under its hash. Writing
// an object that already exists is a no-op: content addressing means
// the bytes on disk can only be identical.
func (s *Store) Put(obj object.Object) (object.Hash, error) {
	enc, err := object.Encode(obj)
	if err != nil {
		return object.Hash{}, err
	}
	h := object.Sum(enc)

	if s.cache != nil {
		if _, found, err := s.cache.Digest(h); err == nil && found {
			// A recorded digest is only ever written after a successful
			// write below, so its presence means the object is already
			// on disk; skip both the stat and the zlib round-trip.
			return h, nil
		}
	}

	exists, err := s.Has(h)
	if err != nil {
		return object.Hash{}, err
	}
	if exists {
		return h, nil
	}

	compressed, err := object.Deflate(enc)
	if err != nil {
		return object.Hash{}, err
	}

	dir, full := s.path(h)
	if err := s.fs.CreateDir(dir); err != nil {
		return object.Hash{}, fmt.Errorf("create object dir %s: %w", dir, vcserr.Io)
	}
	if err := s.fs.Write(full, compressed); err != nil {
		return object.Hash{}, fmt.Errorf("write object %s: %w", h, vcserr.Io)
	}

	if s.cache != nil {
		// Best-effort: a cache write failure never fails the object write
		// that already landed on disk.
		_ = s.cache.RecordDigest(h, compressed)
	}

	return h, nil
}

// Get reads and decodes the object stored under hash.
func (s *Store) Get(h object.Hash) (object.Object, error) {
	data, err := s.ReadRaw(h)
	if err != nil {
		return nil, err
	}
	return object.Decode(data)
}

// ReadRaw returns the decompressed canonical bytes stored under hash,
// without decoding them into a typed Object. Get decodes its result.
func (s *Store) ReadRaw(h object.Hash) ([]byte, error) {
	_, full := s.path(h)
	compressed, err := s.fs.Read(full)
	if err != nil {
		if errors.Is(err, fsys.ErrNotExist) {
			return nil, fmt.Errorf("object %s: %w", h, vcserr.NotFound)
		}
		return nil, fmt.Errorf("read object %s: %w", h, vcserr.Io)
	}
	return object.Inflate(compressed)
}

// GetBlob is a convenience wrapper that also type-asserts the result.
func (s *Store) GetBlob(h object.Hash) (*object.Blob, error) {
	obj, err := s.Get(h)
	if err != nil {
		return nil, err
	}
	b, ok := obj.(*object.Blob)
	if !ok {
		return nil, fmt.Errorf("object %s is not a blob: %w", h, vcserr.UnknownObjectType)
	}
	return b, nil
}

// GetTree is a convenience wrapper that also type-asserts the result.
func (s *Store) GetTree(h object.Hash) (*object.Tree, error) {
	obj, err := s.Get(h)
	if err != nil {
		return nil, err
	}
	t, ok := obj.(*object.Tree)
	if !ok {
		return nil, fmt.Errorf("object %s is not a tree: %w", h, vcserr.UnknownObjectType)
	}
	return t, nil
}

// GetCommit is a convenience wrapper that also type-asserts the result.
func (s *Store) GetCommit(h object.Hash) (*object.Commit, error) {
	obj, err := s.Get(h)
	if err != nil {
		return nil, err
	}
	c, ok := obj.(*object.Commit)
	if !ok {
		return nil, fmt.Errorf("object %s is not a commit: %w", h, vcserr.UnknownObjectType)
	}
	return c, nil
}
