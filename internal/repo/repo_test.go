package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilnvcs/kiln/internal/fsys/memfs"
	"github.com/kilnvcs/kiln/internal/index"
	"github.com/kilnvcs/kiln/internal/object"
	"github.com/kilnvcs/kiln/internal/treeindex"
)

func testAuthor() object.Identity {
	return object.Identity{Name: "Test", Email: "test@example.com", Timestamp: 1700000000, UTCOffsetMin: 0}
}

func TestInitCreatesUnbornBranch(t *testing.T) {
	fs := memfs.New()
	r, err := Init(fs, ".git", "master", nil)
	require.NoError(t, err)

	branch, err := r.Refs.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "master", branch)

	commits, err := r.Log()
	require.NoError(t, err)
	assert.Empty(t, commits)
}

func TestAddCommitLog(t *testing.T) {
	fs := memfs.New()
	r, err := Init(fs, ".git", "master", nil)
	require.NoError(t, err)

	require.NoError(t, r.Add("a.txt", []byte("hello")))
	hash1, err := r.Commit("first", testAuthor())
	require.NoError(t, err)

	require.NoError(t, r.Add("b.txt", []byte("world")))
	hash2, err := r.Commit("second", testAuthor())
	require.NoError(t, err)

	commits, err := r.Log()
	require.NoError(t, err)
	require.Len(t, commits, 2)

	head, err := r.Refs.HeadCommit()
	require.NoError(t, err)
	assert.Equal(t, hash2, head)

	assert.NotNil(t, commits[0].Parent)
	assert.Equal(t, hash1, *commits[0].Parent)
	assert.Nil(t, commits[1].Parent)
}

// TestAddIsIdempotent covers invariant 9: add(path, bytes) twice in a
// row yields the same index and writes no new object hashes.
func TestAddIsIdempotent(t *testing.T) {
	fs := memfs.New()
	r, err := Init(fs, ".git", "master", nil)
	require.NoError(t, err)

	require.NoError(t, r.Add("a.txt", []byte("same content")))
	ixData1, err := fs.Read(".git/index")
	require.NoError(t, err)

	require.NoError(t, r.Add("a.txt", []byte("same content")))
	ixData2, err := fs.Read(".git/index")
	require.NoError(t, err)

	assert.Equal(t, ixData1, ixData2)
}

// TestSwitchAcrossOneFileDivergence covers scenario S4: branches x and
// y, x has foo="1", y has foo="2" and bar="3"; with HEAD on x,
// switching to y yields foo="2", bar="3", HEAD symbolic to y, and the
// index equal to y's flattened tree.
func TestSwitchAcrossOneFileDivergence(t *testing.T) {
	fs := memfs.New()
	r, err := Init(fs, ".git", "x", nil)
	require.NoError(t, err)

	require.NoError(t, r.Add("foo", []byte("1")))
	_, err = r.Commit("x commit", testAuthor())
	require.NoError(t, err)

	// Build branch y's tree directly, independent of the Repository's
	// own index/working-tree state, so x's checked-out files are
	// untouched until Switch runs.
	fooHash, err := r.Objects.Put(object.NewBlob([]byte("2")))
	require.NoError(t, err)
	barHash, err := r.Objects.Put(object.NewBlob([]byte("3")))
	require.NoError(t, err)

	yIndex := index.Empty().Stage(index.Entry{Name: "foo", Hash: fooHash})
	yIndex = yIndex.Stage(index.Entry{Name: "bar", Hash: barHash})
	yTreeHash, err := treeindex.BuildTree(yIndex, r.Objects)
	require.NoError(t, err)

	yCommit := &object.Commit{Tree: yTreeHash, Author: testAuthor(), Committer: testAuthor(), Message: "y commit"}
	yCommitHash, err := r.Objects.Put(yCommit)
	require.NoError(t, err)
	require.NoError(t, r.Refs.SetBranchCommit("y", yCommitHash))

	_, err = r.Switch("y")
	require.NoError(t, err)

	branch, err := r.Refs.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "y", branch)

	foo, err := fs.Read("foo")
	require.NoError(t, err)
	assert.Equal(t, "2", string(foo))

	bar, err := fs.Read("bar")
	require.NoError(t, err)
	assert.Equal(t, "3", string(bar))
}
