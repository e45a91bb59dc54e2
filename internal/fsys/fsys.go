// Package fsys defines the narrow filesystem capability kiln's core is
// built against. spec.md §6 specifies the interface but deliberately
// keeps a concrete backend out of the core: neither a real POSIX
// implementation nor its in-memory test double belongs here. Every
// other internal/* package is written only against FileSystem.
package fsys

import "errors"

// ErrNotExist is returned by Read/Stat/Remove when the path does not exist.
var ErrNotExist = errors.New("path does not exist")

// Metadata mirrors the stat fields an IndexEntry can carry (spec.md §6).
// Backends lacking a given field report zero for it.
type Metadata struct {
	Dev      uint32
	Ino      uint32
	Mode     uint32
	Uid      uint32
	Gid      uint32
	Size     uint32
	MtimeS   uint32
	MtimeNs  uint32
	CtimeS   uint32
	CtimeNs  uint32
}

// FileSystem is the capability surface every kiln component is written
// against. Paths are forward-slash-separated strings relative to a
// repository root; the implementation hides root resolution.
type FileSystem interface {
	// Read returns the full contents of path. Fails with ErrNotExist if absent.
	Read(path string) ([]byte, error)

	// Write overwrites path with data, creating it if absent. Callers
	// guarantee the parent directory exists for object writes (spec.md §4.3).
	Write(path string, data []byte) error

	// Stat returns metadata for path. Fails with ErrNotExist if absent.
	Stat(path string) (Metadata, error)

	// CreateDir creates path and any missing parents. Idempotent on an existing directory.
	CreateDir(path string) error

	// Rename atomically moves from to to within the filesystem.
	Rename(from, to string) error

	// Remove removes the regular file at path. Fails with ErrNotExist if absent.
	Remove(path string) error
}
