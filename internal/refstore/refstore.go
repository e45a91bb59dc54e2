// Package refstore manages the single-branch reference model: a
// symbolic HEAD file and a set of branch files under refs/heads/,
// each holding the 40-char hex hash a branch currently points at.
// Trimmed from the teacher's RefsManager (internal/refs/refs.go in
// javanhut/Ivaldi-vcs), which also tracks remote and tag timelines in
// a bbolt side table; network transport and tags are out of scope
// here, so refstore keeps only the plain-file branch-ref shape and
// drops the database entirely.
package refstore

import (
	"fmt"
	"strings"

	"github.com/kilnvcs/kiln/internal/fsys"
	"github.com/kilnvcs/kiln/internal/object"
	"github.com/kilnvcs/kiln/internal/vcserr"
)

const headSymbolicPrefix = "ref: "

// Store manages HEAD and refs/heads/* on a FileSystem rooted at the
// repository's metadata directory (conventionally ".git").
type Store struct {
	fs   fsys.FileSystem
	root string
}

// New returns a Store rooted at root on fs.
func New(fs fsys.FileSystem, root string) *Store {
	return &Store{fs: fs, root: root}
}

func (s *Store) headPath() string {
	return s.root + "/HEAD"
}

func (s *Store) branchPath(name string) string {
	return s.root + "/refs/heads/" + name
}

// InitHead points a fresh repository's HEAD at branch, without
// requiring the branch ref to exist yet (an unborn branch, as after
// `init` before the first commit).
func (s *Store) InitHead(branch string) error {
	if err := s.fs.CreateDir(s.root + "/refs/heads"); err != nil {
		return fmt.Errorf("create refs/heads: %w", vcserr.Io)
	}
	return s.writeHead(branch)
}

func (s *Store) writeHead(branch string) error {
	content := headSymbolicPrefix + "refs/heads/" + branch
	if err := s.fs.Write(s.headPath(), []byte(content)); err != nil {
		return fmt.Errorf("write HEAD: %w", vcserr.Io)
	}
	return nil
}

// CurrentBranch resolves HEAD to the branch name it symbolically
// points at. A HEAD not of the form "ref: refs/heads/<name>" is a
// detached HEAD, which this store never produces and does not support
// reading either.
func (s *Store) CurrentBranch() (string, error) {
	data, err := s.fs.Read(s.headPath())
	if err != nil {
		return "", fmt.Errorf("read HEAD: %w", vcserr.NotFound)
	}
	line := strings.TrimSpace(string(data))
	if !strings.HasPrefix(line, headSymbolicPrefix) {
		return "", fmt.Errorf("HEAD %q: %w", line, vcserr.DetachedHeadUnsupported)
	}
	target := strings.TrimPrefix(line, headSymbolicPrefix)
	name := strings.TrimPrefix(target, "refs/heads/")
	if name == target {
		return "", fmt.Errorf("HEAD target %q: %w", target, vcserr.DetachedHeadUnsupported)
	}
	return name, nil
}

// HeadCommit resolves HEAD all the way to the commit hash the current
// branch points at. An unborn branch (no commits yet) reports
// vcserr.NotFound, which callers treat as "nothing to diff against".
func (s *Store) HeadCommit() (object.Hash, error) {
	branch, err := s.CurrentBranch()
	if err != nil {
		return object.Hash{}, err
	}
	return s.BranchCommit(branch)
}

// BranchCommit returns the commit hash branch currently points at.
func (s *Store) BranchCommit(branch string) (object.Hash, error) {
	data, err := s.fs.Read(s.branchPath(branch))
	if err != nil {
		return object.Hash{}, fmt.Errorf("branch %q: %w", branch, vcserr.NotFound)
	}
	h, err := object.ParseHash(strings.TrimSpace(string(data)))
	if err != nil {
		return object.Hash{}, fmt.Errorf("branch %q ref file: %w", branch, vcserr.UnknownRef)
	}
	return h, nil
}

// SetBranchCommit points branch at commit, creating the branch ref if
// it doesn't already exist.
func (s *Store) SetBranchCommit(branch string, commit object.Hash) error {
	if err := s.fs.CreateDir(s.root + "/refs/heads"); err != nil {
		return fmt.Errorf("create refs/heads: %w", vcserr.Io)
	}
	if err := s.fs.Write(s.branchPath(branch), []byte(commit.String())); err != nil {
		return fmt.Errorf("write branch %q: %w", branch, vcserr.Io)
	}
	return nil
}

// BranchExists reports whether a refs/heads/<name> file exists.
func (s *Store) BranchExists(branch string) bool {
	_, err := s.fs.Read(s.branchPath(branch))
	return err == nil
}

// SwitchHead repoints HEAD at a different branch, without touching
// any branch ref. The branch must already exist; internal/repo.Switch
// is responsible for checking that before calling this.
func (s *Store) SwitchHead(branch string) error {
	return s.writeHead(branch)
}
