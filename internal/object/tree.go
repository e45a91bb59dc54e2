package object

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/kilnvcs/kiln/internal/vcserr"
)

// Tree entry modes. A tree entry is either a regular file or a subtree;
// kiln does not model symlinks or executable bits separately from the
// rest of the mode space spec.md leaves unaddressed.
const (
	ModeFile = 0o100644
	ModeTree = 0o40000
)

// TreeEntry names one child of a Tree, by mode, name, and the hash of
// the child object (a Blob for ModeFile, a Tree for ModeTree).
type TreeEntry struct {
	Mode int
	Name string
	Hash Hash
}

// Tree is an ordered list of TreeEntry, sorted by Name for canonical
// encoding. Sorting is the caller's responsibility at construction
// time (see internal/treeindex.BuildTree); Encode does not re-sort.
type Tree struct {
	Entries []TreeEntry
}

// SortEntries orders e.Entries by Name, as canonical encoding requires.
func SortEntries(entries []TreeEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
}

// encodeTreePayload produces the canonical "<mode> <name>\x00<20-byte hash>"
// records, concatenated in entry order.
func encodeTreePayload(t *Tree) ([]byte, error) {
	var buf bytes.Buffer
	for _, e := range t.Entries {
		fmt.Fprintf(&buf, "%d %s", e.Mode, e.Name)
		buf.WriteByte(0)
		buf.Write(e.Hash[:])
	}
	return buf.Bytes(), nil
}

// decodeTreePayload reconstructs a Tree entry-by-entry. It never
// splits the payload on NUL as a whole: the 20 raw hash bytes may
// themselves contain NUL, so naive NUL-splitting misparses a payload
// whose entries don't alternate cleanly. A name may hold any byte
// other than NUL, spaces included. Instead
// each record is read structurally: mode up to the next space, name up
// to the next NUL, then exactly 20 raw hash bytes.
func decodeTreePayload(payload []byte) (*Tree, error) {
	var entries []TreeEntry

	for len(payload) > 0 {
		sp := bytes.IndexByte(payload, ' ')
		if sp < 0 {
			return nil, fmt.Errorf("decode tree: missing mode separator: %w", vcserr.CorruptTree)
		}
		mode, err := strconv.Atoi(string(payload[:sp]))
		if err != nil {
			return nil, fmt.Errorf("decode tree: malformed mode %q: %w", payload[:sp], vcserr.CorruptTree)
		}

		rest := payload[sp+1:]
		nul := bytes.IndexByte(rest, 0)
		if nul < 0 {
			return nil, fmt.Errorf("decode tree: missing name terminator: %w", vcserr.CorruptTree)
		}
		name := string(rest[:nul])

		after := rest[nul+1:]
		if len(after) < 20 {
			return nil, fmt.Errorf("decode tree: truncated entry hash for %q: %w", name, vcserr.CorruptTree)
		}
		var h Hash
		copy(h[:], after[:20])

		entries = append(entries, TreeEntry{Mode: mode, Name: name, Hash: h})
		payload = after[20:]
	}

	return &Tree{Entries: entries}, nil
}
