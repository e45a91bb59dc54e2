// Package index implements the staged index: an ordered,
// binary-serialized snapshot of tracked files with stat metadata, in
// the DIRC v2 on-disk layout. The teacher's own staged-entry table
// (internal/wsindex/wsindex.go in javanhut/Ivaldi-vcs) uses a BLAKE3
// Merkle-tree format instead of a flat binary table; index keeps that
// package's stage/unstage insert-or-replace policy but rebuilds the
// on-disk encoding entirely around the DIRC v2 layout this domain
// requires.
package index

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/kilnvcs/kiln/internal/fsys"
	"github.com/kilnvcs/kiln/internal/object"
	"github.com/kilnvcs/kiln/internal/vcserr"
)

const (
	signature = "DIRC"
	version   = 2

	headerSize  = 12
	statFields  = 10
	hashSize    = 20
	flagsSize   = 2
	entryFixed  = statFields*4 + hashSize + flagsSize
	maxNameBits = 0xFFF
)

// Entry is one staged file's metadata and content hash.
type Entry struct {
	CtimeS  uint32
	CtimeNs uint32
	MtimeS  uint32
	MtimeNs uint32
	Dev     uint32
	Ino     uint32
	Mode    uint32
	Uid     uint32
	Gid     uint32
	Size    uint32
	Hash    object.Hash
	Name    string
}

func (e Entry) flags() uint16 {
	n := len(e.Name)
	if n > maxNameBits {
		n = maxNameBits
	}
	return uint16(n)
}

// EntryFromMetadata builds an Entry from a filesystem stat and a
// content hash, for the common case of staging a real working file.
func EntryFromMetadata(name string, h object.Hash, m fsys.Metadata) Entry {
	return Entry{
		CtimeS: m.CtimeS, CtimeNs: m.CtimeNs,
		MtimeS: m.MtimeS, MtimeNs: m.MtimeNs,
		Dev: m.Dev, Ino: m.Ino, Mode: m.Mode,
		Uid: m.Uid, Gid: m.Gid, Size: m.Size,
		Hash: h, Name: name,
	}
}

// Index is the ordered, strictly-by-name-ascending set of staged entries.
type Index struct {
	Entries []Entry
}

// Empty returns a new Index with no entries.
func Empty() *Index {
	return &Index{}
}

// Stage replaces any existing entry whose Name matches name or whose
// Hash matches h, inserts the new entry, and returns a new, sorted
// Index. Matching by hash as well as by name lets a pure rename (same
// content, new name) collapse onto the renamed entry instead of
// leaving the old name staged alongside it.
func (ix *Index) Stage(e Entry) *Index {
	out := make([]Entry, 0, len(ix.Entries)+1)
	for _, existing := range ix.Entries {
		if existing.Name == e.Name || existing.Hash == e.Hash {
			continue
		}
		out = append(out, existing)
	}
	out = append(out, e)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return &Index{Entries: out}
}

// Unstage removes the entry named name, if present, and returns a new Index.
func (ix *Index) Unstage(name string) *Index {
	out := make([]Entry, 0, len(ix.Entries))
	for _, e := range ix.Entries {
		if e.Name == name {
			continue
		}
		out = append(out, e)
	}
	return &Index{Entries: out}
}

// Lookup finds the entry named name, if present.
func (ix *Index) Lookup(name string) (Entry, bool) {
	for _, e := range ix.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// entryLength returns the total byte length of e's serialized form,
// including the NUL terminator and padding, as a multiple of 8.
func entryLength(name string) int {
	raw := entryFixed + len(name) + 1 // +1 for NUL
	pad := (8 - raw%8) % 8
	return raw + pad
}

// Serialize emits the DIRC v2 binary form of ix, in its current
// ordering. It never re-sorts; callers that built an Index by any
// route other than Stage/Unstage are responsible for sortedness.
func Serialize(ix *Index) []byte {
	var buf bytes.Buffer

	buf.WriteString(signature)
	writeU32(&buf, version)
	writeU32(&buf, uint32(len(ix.Entries)))

	for _, e := range ix.Entries {
		writeU32(&buf, e.CtimeS)
		writeU32(&buf, e.CtimeNs)
		writeU32(&buf, e.MtimeS)
		writeU32(&buf, e.MtimeNs)
		writeU32(&buf, e.Dev)
		writeU32(&buf, e.Ino)
		writeU32(&buf, e.Mode)
		writeU32(&buf, e.Uid)
		writeU32(&buf, e.Gid)
		writeU32(&buf, e.Size)
		buf.Write(e.Hash[:])
		writeU16(&buf, e.flags())
		buf.WriteString(e.Name)
		buf.WriteByte(0)

		total := entryLength(e.Name)
		written := entryFixed + len(e.Name) + 1
		for i := 0; i < total-written; i++ {
			buf.WriteByte(0)
		}
	}

	return buf.Bytes()
}

// Parse reads the DIRC v2 binary form of an Index, validating the
// signature, version, and that every entry's pad region is all zero.
func Parse(data []byte) (*Index, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("index: truncated header: %w", vcserr.CorruptIndex)
	}
	if string(data[:4]) != signature {
		return nil, fmt.Errorf("index: bad signature %q: %w", data[:4], vcserr.CorruptIndex)
	}
	ver := binary.BigEndian.Uint32(data[4:8])
	if ver != version {
		return nil, fmt.Errorf("index: unsupported version %d: %w", ver, vcserr.CorruptIndex)
	}
	count := binary.BigEndian.Uint32(data[8:12])

	rest := data[headerSize:]
	entries := make([]Entry, 0, count)

	for i := uint32(0); i < count; i++ {
		e, consumed, err := parseEntry(rest)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
		rest = rest[consumed:]
	}

	return &Index{Entries: entries}, nil
}

func parseEntry(data []byte) (Entry, int, error) {
	if len(data) < entryFixed {
		return Entry{}, 0, fmt.Errorf("index: truncated entry: %w", vcserr.CorruptIndex)
	}

	var e Entry
	off := 0
	readU32 := func() uint32 {
		v := binary.BigEndian.Uint32(data[off : off+4])
		off += 4
		return v
	}
	e.CtimeS = readU32()
	e.CtimeNs = readU32()
	e.MtimeS = readU32()
	e.MtimeNs = readU32()
	e.Dev = readU32()
	e.Ino = readU32()
	e.Mode = readU32()
	e.Uid = readU32()
	e.Gid = readU32()
	e.Size = readU32()

	copy(e.Hash[:], data[off:off+hashSize])
	off += hashSize

	flags := binary.BigEndian.Uint16(data[off : off+2])
	off += 2
	nameLen := int(flags & maxNameBits)

	// flags holds min(len(name), 0xFFF): for any name at or past that
	// cap, the field no longer carries the literal length, so fall back
	// to scanning for the NUL terminator structurally instead of
	// trusting it.
	if nameLen == maxNameBits {
		nul := bytes.IndexByte(data[off:], 0)
		if nul < 0 {
			return Entry{}, 0, fmt.Errorf("index: missing name terminator: %w", vcserr.CorruptIndex)
		}
		nameLen = nul
	}

	if len(data) < off+nameLen+1 {
		return Entry{}, 0, fmt.Errorf("index: truncated name: %w", vcserr.CorruptIndex)
	}
	e.Name = string(data[off : off+nameLen])
	off += nameLen

	if data[off] != 0 {
		return Entry{}, 0, fmt.Errorf("index: missing name terminator: %w", vcserr.CorruptIndex)
	}
	off++

	total := entryLength(e.Name)
	if len(data) < total {
		return Entry{}, 0, fmt.Errorf("index: truncated padding: %w", vcserr.CorruptIndex)
	}
	for _, b := range data[off:total] {
		if b != 0 {
			return Entry{}, 0, fmt.Errorf("index: non-zero pad byte: %w", vcserr.CorruptIndex)
		}
	}

	return e, total, nil
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}
