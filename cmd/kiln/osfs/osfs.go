// Package osfs implements fsys.FileSystem against the real operating
// system filesystem, rooted at a working directory. It is the one
// concrete backend kiln's CLI uses; internal/* never imports it.
// Grounded on the teacher's workspace.go, which reads and writes
// working-tree files with plain os.ReadFile/os.WriteFile/os.Rename.
package osfs

import (
	"os"
	"path/filepath"
	"syscall"

	"github.com/kilnvcs/kiln/internal/fsys"
)

// FS roots every fsys.FileSystem path at a real directory on disk.
type FS struct {
	root string
}

// New returns an FS rooted at root.
func New(root string) *FS {
	return &FS{root: root}
}

func (f *FS) resolve(path string) string {
	return filepath.Join(f.root, filepath.FromSlash(path))
}

func (f *FS) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(f.resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fsys.ErrNotExist
		}
		return nil, err
	}
	return data, nil
}

func (f *FS) Write(path string, data []byte) error {
	full := f.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return err
	}

	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func (f *FS) Stat(path string) (fsys.Metadata, error) {
	info, err := os.Stat(f.resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			return fsys.Metadata{}, fsys.ErrNotExist
		}
		return fsys.Metadata{}, err
	}

	m := fsys.Metadata{
		Mode: uint32(info.Mode().Perm()) | modeKindBits(info),
		Size: uint32(info.Size()),
	}
	if sys, ok := info.Sys().(*syscall.Stat_t); ok {
		m.Dev = uint32(sys.Dev)
		m.Ino = uint32(sys.Ino)
		m.Uid = sys.Uid
		m.Gid = sys.Gid
		m.MtimeS = uint32(sys.Mtim.Sec)
		m.MtimeNs = uint32(sys.Mtim.Nsec)
		m.CtimeS = uint32(sys.Ctim.Sec)
		m.CtimeNs = uint32(sys.Ctim.Nsec)
	}
	return m, nil
}

func modeKindBits(info os.FileInfo) uint32 {
	if info.IsDir() {
		return 0o40000
	}
	return 0o100000
}

func (f *FS) CreateDir(path string) error {
	return os.MkdirAll(f.resolve(path), 0755)
}

func (f *FS) Rename(from, to string) error {
	dst := f.resolve(to)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	return os.Rename(f.resolve(from), dst)
}

func (f *FS) Remove(path string) error {
	err := os.Remove(f.resolve(path))
	if os.IsNotExist(err) {
		return fsys.ErrNotExist
	}
	return err
}
