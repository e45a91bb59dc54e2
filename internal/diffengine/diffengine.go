// Package diffengine compares two indices and classifies every entry
// pair into an ordered set of transforms: Add, Remove, Rename, Modify,
// or Unchanged. It is ported from the reconciliation pass that drives
// kiln's branch switch, following the smaller-side-lookup /
// larger-side-iteration shape of the original Rust diff_index (see
// DESIGN.md for the full trace), with one correctness fix: the
// Rename-vs-Add disambiguation checks name membership against the
// *iterated* side, built as its own set up front, rather than against
// the lookup side's own entries (which would make the check vacuous —
// the matched entry's name always exists in the map it came from).
package diffengine

import (
	"sort"

	"github.com/kilnvcs/kiln/internal/index"
	"github.com/kilnvcs/kiln/internal/object"
)

// Kind discriminates an Op's transform type.
type Kind int

const (
	Unchanged Kind = iota
	Add
	Remove
	Rename
	Modify
)

func (k Kind) String() string {
	switch k {
	case Add:
		return "Add"
	case Remove:
		return "Remove"
	case Rename:
		return "Rename"
	case Modify:
		return "Modify"
	default:
		return "Unchanged"
	}
}

// Op is one reconciliation transform, expressed in the direction
// "apply to go from prev to next". Old and New are populated according
// to Kind: Add/Remove use only New/Old respectively; Rename and Modify
// use both; Unchanged carries either (they're identical by name and hash).
type Op struct {
	Kind Kind
	Old  index.Entry
	New  index.Entry
}

// Diff compares prev against next and returns the ops that, applied in
// order, turn a filesystem materializing prev into one materializing next.
func Diff(prev, next *index.Index) []Op {
	var lookupSide, iterSide []index.Entry
	forward := len(prev.Entries) <= len(next.Entries)
	if forward {
		lookupSide, iterSide = prev.Entries, next.Entries
	} else {
		lookupSide, iterSide = next.Entries, prev.Entries
	}

	byName := make(map[string]index.Entry, len(lookupSide))
	byHash := make(map[object.Hash]index.Entry, len(lookupSide))
	for _, e := range lookupSide {
		byName[e.Name] = e
		if existing, ok := byHash[e.Hash]; !ok || e.Name < existing.Name {
			byHash[e.Hash] = e
		}
	}

	iterNames := make(map[string]bool, len(iterSide))
	for _, e := range iterSide {
		iterNames[e.Name] = true
	}

	renamed := make(map[string]bool)
	ops := make([]Op, 0, len(iterSide))
	for _, entry := range iterSide {
		if matched, ok := byName[entry.Name]; ok {
			if matched.Hash == entry.Hash {
				ops = append(ops, Op{Kind: Unchanged, Old: matched, New: entry})
			} else {
				ops = append(ops, modifyOp(forward, matched, entry))
			}
			continue
		}

		if matched, ok := byHash[entry.Hash]; ok {
			if !iterNames[matched.Name] && !renamed[matched.Name] {
				renamed[matched.Name] = true
				ops = append(ops, renameOp(forward, matched, entry))
			} else {
				ops = append(ops, addOrRemove(forward, entry))
			}
			continue
		}

		ops = append(ops, addOrRemove(forward, entry))
	}

	// Lookup-side entries that no iterated entry matched by name or used
	// as a rename source exist only on that side.
	for _, e := range lookupSide {
		if iterNames[e.Name] || renamed[e.Name] {
			continue
		}
		ops = append(ops, addOrRemove(!forward, e))
	}

	return ops
}

// modifyOp expresses Modify(old, new) in prev→next direction. matched
// always comes from the lookup side; entry always comes from the
// iteration side. forward means prev was the lookup side (so matched
// is old, entry is new); otherwise the roles swap.
func modifyOp(forward bool, matched, entry index.Entry) Op {
	if forward {
		return Op{Kind: Modify, Old: matched, New: entry}
	}
	return Op{Kind: Modify, Old: entry, New: matched}
}

func renameOp(forward bool, matched, entry index.Entry) Op {
	if forward {
		return Op{Kind: Rename, Old: matched, New: entry}
	}
	return Op{Kind: Rename, Old: entry, New: matched}
}

// addOrRemove classifies an unmatched iteration-side entry. When
// iterating the larger side in its natural (next) role, an unmatched
// entry is new: Add. When the iteration side is actually prev (the
// larger index, walked because next was smaller), the same unmatched
// shape means the entry only exists in prev: Remove. Diff also calls it
// with !forward for unmatched lookup-side entries, which flips the
// same rule to that side.
func addOrRemove(forward bool, entry index.Entry) Op {
	if forward {
		return Op{Kind: Add, New: entry}
	}
	return Op{Kind: Remove, Old: entry}
}

// SortStable orders ops by name for deterministic output in tests and
// logs. diff_apply does not require this; callers that need a
// reproducible op order for display should call it explicitly.
func SortStable(ops []Op) {
	key := func(o Op) string {
		if o.Kind == Remove || o.Kind == Unchanged {
			return o.Old.Name
		}
		return o.New.Name
	}
	sort.SliceStable(ops, func(i, j int) bool { return key(ops[i]) < key(ops[j]) })
}
