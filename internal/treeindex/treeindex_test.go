package treeindex

import (
	"testing"

	"github.com/kilnvcs/kiln/internal/fsys/memfs"
	"github.com/kilnvcs/kiln/internal/index"
	"github.com/kilnvcs/kiln/internal/object"
	"github.com/kilnvcs/kiln/internal/objstore"
)

func TestBuildTreeNestsPathComponents(t *testing.T) {
	fs := memfs.New()
	store := objstore.New(fs, ".git/objects")

	blobHash, err := store.Put(object.NewBlob([]byte("package main\n")))
	if err != nil {
		t.Fatalf("Put blob: %v", err)
	}

	readmeHash, err := store.Put(object.NewBlob([]byte("# kiln\n")))
	if err != nil {
		t.Fatalf("Put readme blob: %v", err)
	}

	ix := index.Empty().Stage(index.Entry{Name: "cmd/kiln/main.go", Hash: blobHash})
	ix = ix.Stage(index.Entry{Name: "README.md", Hash: readmeHash})

	rootHash, err := BuildTree(ix, store)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}

	root, err := store.GetTree(rootHash)
	if err != nil {
		t.Fatalf("GetTree(root): %v", err)
	}
	if len(root.Entries) != 2 {
		t.Fatalf("root entries = %d, want 2: %+v", len(root.Entries), root.Entries)
	}

	var cmdEntry *object.TreeEntry
	for i := range root.Entries {
		if root.Entries[i].Name == "cmd" {
			cmdEntry = &root.Entries[i]
		}
	}
	if cmdEntry == nil {
		t.Fatalf("no %q entry at root: %+v", "cmd", root.Entries)
	}
	if cmdEntry.Mode != object.ModeTree {
		t.Fatalf("cmd entry mode = %o, want tree mode", cmdEntry.Mode)
	}

	cmdTree, err := store.GetTree(cmdEntry.Hash)
	if err != nil {
		t.Fatalf("GetTree(cmd): %v", err)
	}
	if len(cmdTree.Entries) != 1 || cmdTree.Entries[0].Name != "kiln" {
		t.Fatalf("cmd tree = %+v, want one %q entry", cmdTree.Entries, "kiln")
	}

	kilnTree, err := store.GetTree(cmdTree.Entries[0].Hash)
	if err != nil {
		t.Fatalf("GetTree(kiln): %v", err)
	}
	if len(kilnTree.Entries) != 1 || kilnTree.Entries[0].Name != "main.go" {
		t.Fatalf("kiln tree = %+v, want one main.go entry", kilnTree.Entries)
	}
	if kilnTree.Entries[0].Mode != object.ModeFile || kilnTree.Entries[0].Hash != blobHash {
		t.Fatalf("main.go entry = %+v, want file mode and blob hash %s", kilnTree.Entries[0], blobHash)
	}
}

func TestBuildTreeEmptyIndex(t *testing.T) {
	fs := memfs.New()
	store := objstore.New(fs, ".git/objects")

	h, err := BuildTree(index.Empty(), store)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	tree, err := store.GetTree(h)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if len(tree.Entries) != 0 {
		t.Fatalf("entries = %d, want 0", len(tree.Entries))
	}
}

func TestFlattenRoundTripsNestedTree(t *testing.T) {
	fs := memfs.New()
	store := objstore.New(fs, ".git/objects")

	blobHash, err := store.Put(object.NewBlob([]byte("hi")))
	if err != nil {
		t.Fatalf("Put blob: %v", err)
	}
	topHash, err := store.Put(object.NewBlob([]byte("top")))
	if err != nil {
		t.Fatalf("Put top blob: %v", err)
	}
	ix := index.Empty().Stage(index.Entry{Name: "a/b/c.txt", Hash: blobHash})
	ix = ix.Stage(index.Entry{Name: "top.txt", Hash: topHash})

	rootHash, err := BuildTree(ix, store)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}

	flat, err := Flatten(rootHash, store, fs)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}

	names := map[string]bool{}
	for _, e := range flat.Entries {
		names[e.Name] = true
	}
	if !names["a/b/c.txt"] || !names["top.txt"] {
		t.Fatalf("flattened names = %v, want a/b/c.txt and top.txt", names)
	}
	for i := 1; i < len(flat.Entries); i++ {
		if flat.Entries[i-1].Name >= flat.Entries[i].Name {
			t.Fatalf("flattened index not sorted: %+v", flat.Entries)
		}
	}
}

func TestFlattenFillsZeroStatWhenWorkingFileAbsent(t *testing.T) {
	fs := memfs.New()
	store := objstore.New(fs, ".git/objects")

	blobHash, err := store.Put(object.NewBlob([]byte("content")))
	if err != nil {
		t.Fatalf("Put blob: %v", err)
	}
	ix := index.Empty().Stage(index.Entry{Name: "missing.txt", Hash: blobHash})
	rootHash, err := BuildTree(ix, store)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}

	flat, err := Flatten(rootHash, store, fs)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	e, ok := flat.Lookup("missing.txt")
	if !ok {
		t.Fatalf("missing.txt not found in flattened index")
	}
	if e.Mode != object.ModeFile {
		t.Fatalf("Mode = %o, want ModeFile for stat-less entry", e.Mode)
	}
	if e.Size != 0 {
		t.Fatalf("Size = %d, want 0 for stat-less entry", e.Size)
	}
}
