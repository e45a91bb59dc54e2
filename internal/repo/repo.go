// Package repo is the orchestrator: it composes the object store,
// index, tree materialization, diff engine/apply, and reference store
// into the four user-facing operations — Add, Commit, Log, Switch —
// grounded on the teacher's Materializer (internal/workspace/workspace.go
// in javanhut/Ivaldi-vcs), which plays the same composing role over its
// own CAS/refs/diff stack. Repository holds no shared mutable
// singleton beyond what it's constructed with; nothing here does its
// own locking, matching the single-writer discipline spec.md assumes.
package repo

import (
	"errors"
	"fmt"

	"github.com/kilnvcs/kiln/internal/diffapply"
	"github.com/kilnvcs/kiln/internal/diffengine"
	"github.com/kilnvcs/kiln/internal/fsys"
	"github.com/kilnvcs/kiln/internal/index"
	"github.com/kilnvcs/kiln/internal/object"
	"github.com/kilnvcs/kiln/internal/objcache"
	"github.com/kilnvcs/kiln/internal/objstore"
	"github.com/kilnvcs/kiln/internal/refstore"
	"github.com/kilnvcs/kiln/internal/treeindex"
	"github.com/kilnvcs/kiln/internal/vcserr"
)

// Repository composes the core components against one FileSystem
// rooted at a working directory, with metadata under gitDir
// (conventionally ".git"). Cache is optional; a nil Cache disables the
// bbolt-backed accelerator without changing any observable behavior.
type Repository struct {
	fs      fsys.FileSystem
	gitDir  string
	Objects *objstore.Store
	Refs    *refstore.Store
	Cache   *objcache.Cache
}

// Open composes a Repository over an already-initialized gitDir.
func Open(fs fsys.FileSystem, gitDir string, cache *objcache.Cache) *Repository {
	objects := objstore.New(fs, gitDir+"/objects")
	if cache != nil {
		objects = objects.WithCache(cache)
	}
	return &Repository{
		fs:      fs,
		gitDir:  gitDir,
		Objects: objects,
		Refs:    refstore.New(fs, gitDir),
		Cache:   cache,
	}
}

// Init creates a fresh repository: the objects directory and a HEAD
// symbolically pointing at defaultBranch, with no commits yet (an
// unborn branch — there is nothing for refs/heads/<defaultBranch> to
// point at until the first Commit).
func Init(fs fsys.FileSystem, gitDir, defaultBranch string, cache *objcache.Cache) (*Repository, error) {
	r := Open(fs, gitDir, cache)
	if err := fs.CreateDir(gitDir + "/objects"); err != nil {
		return nil, fmt.Errorf("create objects dir: %w", vcserr.Io)
	}
	if err := r.Refs.InitHead(defaultBranch); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repository) indexPath() string {
	return r.gitDir + "/index"
}

func (r *Repository) loadIndex() (*index.Index, error) {
	data, err := r.fs.Read(r.indexPath())
	if err != nil {
		if errors.Is(err, fsys.ErrNotExist) {
			return index.Empty(), nil
		}
		return nil, fmt.Errorf("read index: %w", vcserr.Io)
	}
	return index.Parse(data)
}

func (r *Repository) saveIndex(ix *index.Index) error {
	if err := r.fs.Write(r.indexPath(), index.Serialize(ix)); err != nil {
		return fmt.Errorf("write index: %w", vcserr.Io)
	}
	return nil
}

// Add wraps content as a Blob, writes it to the object store, and
// stages path in the current index (or a fresh empty one, if this
// repository has none yet) using path's working-tree stat metadata.
func (r *Repository) Add(path string, content []byte) error {
	h, err := r.Objects.Put(object.NewBlob(content))
	if err != nil {
		return err
	}

	ix, err := r.loadIndex()
	if err != nil {
		return err
	}

	meta, err := r.fs.Stat(path)
	if err != nil {
		meta = fsys.Metadata{Mode: object.ModeFile, Size: uint32(len(content))}
	}

	ix = ix.Stage(index.EntryFromMetadata(path, h, meta))
	return r.saveIndex(ix)
}

// Commit builds the nested tree for the current index, writes a
// Commit object whose parent is the current branch's previous commit
// (or none, for the first commit on an unborn branch), and advances
// the branch ref to the new commit.
func (r *Repository) Commit(message string, author object.Identity) (object.Hash, error) {
	ix, err := r.loadIndex()
	if err != nil {
		return object.Hash{}, err
	}

	treeHash, err := treeindex.BuildTree(ix, r.Objects)
	if err != nil {
		return object.Hash{}, err
	}

	var parent *object.Hash
	if h, err := r.Refs.HeadCommit(); err == nil {
		parent = &h
	} else if !errors.Is(err, vcserr.NotFound) {
		return object.Hash{}, err
	}

	commit := &object.Commit{
		Tree:      treeHash,
		Parent:    parent,
		Author:    author,
		Committer: author,
		Message:   message,
	}
	commitHash, err := r.Objects.Put(commit)
	if err != nil {
		return object.Hash{}, err
	}

	branch, err := r.Refs.CurrentBranch()
	if err != nil {
		return object.Hash{}, err
	}
	if err := r.Refs.SetBranchCommit(branch, commitHash); err != nil {
		return object.Hash{}, err
	}

	if r.Cache != nil && parent != nil {
		_ = r.Cache.RememberParent(commitHash, *parent)
	}

	return commitHash, nil
}

// Log returns the current branch's commits, most recent first, by
// walking the parent chain from HEAD. An unborn branch (no commits
// yet) returns an empty slice.
func (r *Repository) Log() ([]*object.Commit, error) {
	h, err := r.Refs.HeadCommit()
	if errors.Is(err, vcserr.NotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var commits []*object.Commit
	for {
		c, err := r.Objects.GetCommit(h)
		if err != nil {
			return nil, err
		}
		commits = append(commits, c)

		if c.Parent == nil {
			break
		}
		if r.Cache != nil {
			_ = r.Cache.RememberParent(h, *c.Parent)
		}
		h = *c.Parent
	}

	return commits, nil
}

// IsAncestor reports whether maybeAncestor is reachable by walking
// parent links from commit, preferring the cached parent mapping over
// a full commit read when available.
func (r *Repository) IsAncestor(maybeAncestor, commit object.Hash) (bool, error) {
	h := commit
	for {
		if h == maybeAncestor {
			return true, nil
		}

		if r.Cache != nil {
			if parent, ok, err := r.Cache.Parent(h); err == nil && ok {
				h = parent
				continue
			}
		}

		c, err := r.Objects.GetCommit(h)
		if err != nil {
			return false, err
		}
		if c.Parent == nil {
			return false, nil
		}
		if r.Cache != nil {
			_ = r.Cache.RememberParent(h, *c.Parent)
		}
		h = *c.Parent
	}
}

// Switch reconciles the working tree and index to match branch's
// commit: it flattens the target tree into an index, diffs it against
// the current index, and applies the resulting ops. HEAD and the index
// are written only after apply succeeds, so a failure partway through
// leaves HEAD unchanged and the working tree in the partially-applied
// state a re-run of Switch on the same branch will converge from. The
// returned ops (in the order applied) let a caller report per-file
// status; Unchanged entries are included so a caller can tell silence
// from an untouched file.
func (r *Repository) Switch(branch string) ([]diffengine.Op, error) {
	if !r.Refs.BranchExists(branch) {
		return nil, fmt.Errorf("branch %q: %w", branch, vcserr.UnknownRef)
	}

	targetCommitHash, err := r.Refs.BranchCommit(branch)
	if err != nil {
		return nil, err
	}
	targetCommit, err := r.Objects.GetCommit(targetCommitHash)
	if err != nil {
		return nil, err
	}

	next, err := treeindex.Flatten(targetCommit.Tree, r.Objects, r.fs)
	if err != nil {
		return nil, err
	}
	prev, err := r.loadIndex()
	if err != nil {
		return nil, err
	}

	ops := diffengine.Diff(prev, next)
	if err := diffapply.Apply(ops, r.fs, r.Objects); err != nil {
		return nil, err
	}

	if err := r.Refs.SwitchHead(branch); err != nil {
		return nil, err
	}
	if err := r.saveIndex(next); err != nil {
		return nil, err
	}
	return ops, nil
}
