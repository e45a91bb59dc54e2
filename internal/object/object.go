// Package object implements the three canonical object forms kiln
// hashes and stores: Blob, Tree, and Commit. Canonical encoding, SHA-1
// hashing, and zlib (de)compression live here; internal/objstore only
// knows how to place the resulting bytes on a fan-out path.
//
// The three variants form a closed tagged union (spec.md §9): Object
// is a marker interface implemented by *Blob, *Tree, and *Commit, and
// Decode dispatches on the header token that precedes the first NUL.
package object

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/kilnvcs/kiln/internal/vcserr"
)

// Hash is a 20-byte SHA-1 digest, rendered as 40 lowercase hex chars.
type Hash [20]byte

func (h Hash) String() string { return hex.EncodeToString(h[:]) }

// ParseHash decodes a 40-char hex string into a Hash.
func ParseHash(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(h) {
		return Hash{}, fmt.Errorf("parse hash %q: %w", s, vcserr.CorruptObject)
	}
	copy(h[:], b)
	return h, nil
}

// Object is implemented by *Blob, *Tree, and *Commit.
type Object interface {
	kind() string
}

func (*Blob) kind() string   { return "blob" }
func (*Tree) kind() string   { return "tree" }
func (*Commit) kind() string { return "commit" }

// Sum computes the SHA-1 digest of raw bytes.
func Sum(data []byte) Hash {
	return sha1.Sum(data)
}

// HashOf returns the object-identity hash: SHA1(Encode(obj)).
func HashOf(obj Object) (Hash, error) {
	enc, err := Encode(obj)
	if err != nil {
		return Hash{}, err
	}
	return Sum(enc), nil
}

// wrap produces the canonical "<kind> <len>\x00<payload>" byte string.
func wrap(kind string, payload []byte) []byte {
	header := fmt.Sprintf("%s %d\x00", kind, len(payload))
	out := make([]byte, 0, len(header)+len(payload))
	out = append(out, header...)
	out = append(out, payload...)
	return out
}

// Encode produces the canonical byte form of obj.
func Encode(obj Object) ([]byte, error) {
	switch o := obj.(type) {
	case *Blob:
		return wrap("blob", o.Content), nil
	case *Tree:
		payload, err := encodeTreePayload(o)
		if err != nil {
			return nil, err
		}
		return wrap("tree", payload), nil
	case *Commit:
		return wrap("commit", []byte(o.text())), nil
	default:
		return nil, fmt.Errorf("encode: %w", vcserr.UnknownObjectType)
	}
}

// Decode parses the canonical byte form of an object, dispatching on
// the header token preceding the first NUL.
func Decode(data []byte) (Object, error) {
	nul := bytes.IndexByte(data, 0)
	if nul < 0 {
		return nil, fmt.Errorf("decode: missing header terminator: %w", vcserr.CorruptObject)
	}
	header := data[:nul]
	sp := bytes.IndexByte(header, ' ')
	if sp < 0 {
		return nil, fmt.Errorf("decode: malformed header %q: %w", header, vcserr.CorruptObject)
	}
	kind := string(header[:sp])
	declaredSize, err := strconv.Atoi(string(header[sp+1:]))
	if err != nil {
		return nil, fmt.Errorf("decode: malformed size in header %q: %w", header, vcserr.CorruptObject)
	}
	rest := data[nul+1:]

	switch kind {
	case "blob":
		return decodeBlob(rest), nil
	case "tree":
		payload := rest
		if declaredSize <= len(rest) {
			payload = rest[:declaredSize]
		}
		return decodeTreePayload(payload)
	case "commit":
		return decodeCommitPayload(rest)
	default:
		return nil, fmt.Errorf("decode: header %q: %w", kind, vcserr.UnknownObjectType)
	}
}
