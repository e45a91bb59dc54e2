// Package treeindex materializes between the flat staged index and
// the nested tree-object graph. The directory-grouping and bottom-up
// recursive build shape is grounded on the teacher's CommitBuilder
// (internal/commit/commit.go in javanhut/Ivaldi-vcs:
// groupFilesByDirectory/buildTreeRecursive), adapted to emit
// object.Tree/object.TreeEntry values instead of the teacher's
// HAMT directory entries.
//
// BuildTree corrects the one defect spec.md calls out explicitly: a
// flat, single-level tree loses any path containing a "/". Every
// directory component here becomes its own Tree object (mode 40000),
// hashed bottom-up, so a path like "cmd/kiln/main.go" round-trips
// through three Tree objects instead of one entry with a slash in its name.
package treeindex

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kilnvcs/kiln/internal/fsys"
	"github.com/kilnvcs/kiln/internal/index"
	"github.com/kilnvcs/kiln/internal/object"
	"github.com/kilnvcs/kiln/internal/vcserr"
)

// putter is the slice of internal/objstore.Store that BuildTree and
// Flatten need: writing new Tree objects, and reading Tree objects
// back out while walking a tree graph.
type putter interface {
	Put(obj object.Object) (object.Hash, error)
	GetTree(h object.Hash) (*object.Tree, error)
}

// dirNode groups staged entries and subdirectories under one path
// component, mirroring the shape an on-disk directory would have.
type dirNode struct {
	files   []index.Entry
	subdirs map[string]*dirNode
}

func newDirNode() *dirNode {
	return &dirNode{subdirs: make(map[string]*dirNode)}
}

// groupByDirectory splits each entry's Name on "/" and places the
// entry at the directory node its path leads to, storing just the
// final path component as the entry's effective leaf name.
func groupByDirectory(entries []index.Entry) *dirNode {
	root := newDirNode()

	for _, e := range entries {
		parts := strings.Split(e.Name, "/")
		current := root
		for _, part := range parts[:len(parts)-1] {
			next, ok := current.subdirs[part]
			if !ok {
				next = newDirNode()
				current.subdirs[part] = next
			}
			current = next
		}
		leaf := e
		leaf.Name = parts[len(parts)-1]
		current.files = append(current.files, leaf)
	}

	return root
}

// BuildTree builds the nested tree graph for index, writes every Tree
// object to store, and returns the root tree's hash. It writes no
// blobs: the index only ever carries a hash kiln has already Put.
func BuildTree(ix *index.Index, store putter) (object.Hash, error) {
	root := groupByDirectory(ix.Entries)
	return buildTreeRecursive(root, store)
}

func buildTreeRecursive(node *dirNode, store putter) (object.Hash, error) {
	entries := make([]object.TreeEntry, 0, len(node.files)+len(node.subdirs))

	for _, f := range node.files {
		entries = append(entries, object.TreeEntry{
			Mode: object.ModeFile,
			Name: f.Name,
			Hash: f.Hash,
		})
	}

	for name, sub := range node.subdirs {
		subHash, err := buildTreeRecursive(sub, store)
		if err != nil {
			return object.Hash{}, fmt.Errorf("build subtree %q: %w", name, err)
		}
		entries = append(entries, object.TreeEntry{
			Mode: object.ModeTree,
			Name: name,
			Hash: subHash,
		})
	}

	object.SortEntries(entries)

	h, err := store.Put(&object.Tree{Entries: entries})
	if err != nil {
		return object.Hash{}, fmt.Errorf("write tree: %w", err)
	}
	return h, nil
}

// Flatten walks the tree graph rooted at treeHash depth-first,
// emitting one index.Entry per leaf blob with its accumulated,
// slash-joined path, merging every emission into a growing Index via
// Stage. Stat fields come from fs for that path when it exists in the
// working tree; otherwise they're left zero except Mode, which is set
// to object.ModeFile, per spec.md's tolerance
// for a stat-less materialization (the usual case: the working tree
// doesn't have the target branch's files yet).
func Flatten(treeHash object.Hash, store putter, fs fsys.FileSystem) (*index.Index, error) {
	ix := index.Empty()
	if err := flattenInto(treeHash, "", store, fs, &ix); err != nil {
		return nil, err
	}
	return ix, nil
}

func flattenInto(treeHash object.Hash, prefix string, store putter, fs fsys.FileSystem, ix **index.Index) error {
	tree, err := store.GetTree(treeHash)
	if err != nil {
		return err
	}

	entries := append([]object.TreeEntry(nil), tree.Entries...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	for _, e := range entries {
		name := e.Name
		if prefix != "" {
			name = prefix + "/" + e.Name
		}

		switch e.Mode {
		case object.ModeTree:
			if err := flattenInto(e.Hash, name, store, fs, ix); err != nil {
				return err
			}
		case object.ModeFile:
			meta := statOrZero(fs, name)
			(*ix) = (*ix).Stage(index.EntryFromMetadata(name, e.Hash, meta))
		default:
			return fmt.Errorf("tree entry %q mode %o: %w", name, e.Mode, vcserr.InvalidMode)
		}
	}

	return nil
}

func statOrZero(fs fsys.FileSystem, path string) fsys.Metadata {
	m, err := fs.Stat(path)
	if err != nil {
		return fsys.Metadata{Mode: object.ModeFile}
	}
	return m
}
