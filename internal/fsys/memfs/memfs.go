// Package memfs implements an in-memory fsys.FileSystem, grounded on
// the teacher's MemoryCAS (internal/cas/cas.go in javanhut/Ivaldi-vcs):
// a mutex-guarded map with defensive copies on the way in and out, so
// callers can't corrupt stored state by mutating a slice they were
// handed. Every other internal/* package's tests construct one of
// these directly; nothing in the core imports this package.
package memfs

import (
	"path"
	"strings"
	"sync"

	"github.com/kilnvcs/kiln/internal/fsys"
)

// FS is a thread-safe, in-memory fsys.FileSystem.
type FS struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]bool
	stat  map[string]fsys.Metadata
}

// New creates an empty in-memory filesystem.
func New() *FS {
	return &FS{
		files: make(map[string][]byte),
		dirs:  map[string]bool{".": true},
		stat:  make(map[string]fsys.Metadata),
	}
}

func clean(p string) string {
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}

func (f *FS) Read(p string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, ok := f.files[clean(p)]
	if !ok {
		return nil, fsys.ErrNotExist
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (f *FS) Write(p string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p = clean(p)
	cp := make([]byte, len(data))
	copy(cp, data)
	f.files[p] = cp

	if _, exists := f.stat[p]; !exists {
		f.stat[p] = fsys.Metadata{Mode: 0100644, Size: uint32(len(data))}
	} else {
		st := f.stat[p]
		st.Size = uint32(len(data))
		f.stat[p] = st
	}
	return nil
}

func (f *FS) Stat(p string) (fsys.Metadata, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	p = clean(p)
	if _, ok := f.files[p]; ok {
		return f.stat[p], nil
	}
	if f.dirs[p] {
		return fsys.Metadata{Mode: 040000}, nil
	}
	return fsys.Metadata{}, fsys.ErrNotExist
}

func (f *FS) CreateDir(p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for p = clean(p); p != "." && p != "/"; p = path.Dir(p) {
		f.dirs[p] = true
	}
	return nil
}

func (f *FS) Rename(from, to string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	from, to = clean(from), clean(to)
	data, ok := f.files[from]
	if !ok {
		return fsys.ErrNotExist
	}
	f.files[to] = data
	f.stat[to] = f.stat[from]
	delete(f.files, from)
	delete(f.stat, from)
	return nil
}

func (f *FS) Remove(p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p = clean(p)
	if _, ok := f.files[p]; !ok {
		return fsys.ErrNotExist
	}
	delete(f.files, p)
	delete(f.stat, p)
	return nil
}

// SetStat overrides the stat metadata reported for an existing path,
// for tests that need deterministic IndexEntry stat fields.
func (f *FS) SetStat(p string, m fsys.Metadata) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stat[clean(p)] = m
}
