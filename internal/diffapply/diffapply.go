// Package diffapply executes a diffengine.Op list against a
// filesystem and object store. Ops run in input order; the first
// failure aborts the remaining list without rolling back ops already
// applied — acceptable because internal/repo.Switch only writes HEAD
// and the new index after Apply succeeds, so a crash or error mid-apply
// leaves a detectable inconsistency the next switch of the same branch
// converges away.
package diffapply

import (
	"fmt"

	"github.com/kilnvcs/kiln/internal/diffengine"
	"github.com/kilnvcs/kiln/internal/fsys"
	"github.com/kilnvcs/kiln/internal/object"
)

// blobGetter is the slice of internal/objstore.Store Apply needs:
// fetching a blob's raw content to write to the working tree.
type blobGetter interface {
	GetBlob(h object.Hash) (*object.Blob, error)
}

// Apply executes ops in order against fs, fetching blob content from store.
func Apply(ops []diffengine.Op, fs fsys.FileSystem, store blobGetter) error {
	for i, op := range ops {
		if err := applyOne(op, fs, store); err != nil {
			return fmt.Errorf("apply op %d (%s): %w", i, op.Kind, err)
		}
	}
	return nil
}

func applyOne(op diffengine.Op, fs fsys.FileSystem, store blobGetter) error {
	switch op.Kind {
	case diffengine.Unchanged:
		return nil

	case diffengine.Add:
		return writeBlobTo(fs, store, op.New.Hash, op.New.Name)

	case diffengine.Modify:
		return writeBlobTo(fs, store, op.New.Hash, op.New.Name)

	case diffengine.Rename:
		return fs.Rename(op.Old.Name, op.New.Name)

	case diffengine.Remove:
		return fs.Remove(op.Old.Name)

	default:
		return fmt.Errorf("unknown op kind %d", op.Kind)
	}
}

func writeBlobTo(fs fsys.FileSystem, store blobGetter, h object.Hash, path string) error {
	blob, err := store.GetBlob(h)
	if err != nil {
		return err
	}
	return fs.Write(path, blob.Content)
}
