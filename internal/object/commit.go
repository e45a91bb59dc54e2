package object

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/kilnvcs/kiln/internal/vcserr"
)

// Identity names who authored or committed a Commit and when. kiln's
// core never resolves this itself (authoring identity, clock, and
// timezone acquisition are an external collaborator); repo.Commit
// takes Identity values as plain parameters.
type Identity struct {
	Name         string
	Email        string
	Timestamp    int64
	UTCOffsetMin int
}

func (id Identity) String() string {
	return fmt.Sprintf("%s <%s> %d %s", id.Name, id.Email, id.Timestamp, formatOffset(id.UTCOffsetMin))
}

// Commit records a tree snapshot, its single parent (if any), and the
// authoring metadata. kiln supports a single linear history: Parent is
// at most one hash, never a merge list.
type Commit struct {
	Tree      Hash
	Parent    *Hash
	Author    Identity
	Committer Identity
	Message   string
}

// text renders the canonical line-oriented commit body:
//
//	tree <hex>
//	parent <hex>        (omitted for a root commit)
//	author <identity>
//	committer <identity>
//	<blank line>
//	<message>
func (c *Commit) text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "tree %s\n", c.Tree.String())
	if c.Parent != nil {
		fmt.Fprintf(&b, "parent %s\n", c.Parent.String())
	}
	fmt.Fprintf(&b, "author %s\n", c.Author.String())
	fmt.Fprintf(&b, "committer %s\n", c.Committer.String())
	b.WriteString("\n")
	msg := c.Message
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	b.WriteString(msg)
	return b.String()
}

func formatOffset(minutes int) string {
	sign := byte('+')
	if minutes < 0 {
		sign = '-'
		minutes = -minutes
	}
	return fmt.Sprintf("%c%02d%02d", sign, minutes/60, minutes%60)
}

func parseOffset(s string) (int, error) {
	if len(s) != 5 || (s[0] != '+' && s[0] != '-') {
		return 0, fmt.Errorf("malformed UTC offset %q", s)
	}
	hh, err1 := strconv.Atoi(s[1:3])
	mm, err2 := strconv.Atoi(s[3:5])
	if err1 != nil || err2 != nil {
		return 0, fmt.Errorf("malformed UTC offset %q", s)
	}
	total := hh*60 + mm
	if s[0] == '-' {
		total = -total
	}
	return total, nil
}

// lineReader walks payload one \n-terminated line at a time.
type lineReader struct {
	rest []byte
}

// next returns the next line with its trailing newline stripped, and
// whether a newline was found. A false ok on a required line means the
// payload ran out before the commit's fixed-shape header was satisfied.
func (r *lineReader) next() (string, bool) {
	idx := bytes.IndexByte(r.rest, '\n')
	if idx < 0 {
		return "", false
	}
	line := string(r.rest[:idx])
	r.rest = r.rest[idx+1:]
	return line, true
}

func decodeCommitPayload(payload []byte) (*Commit, error) {
	r := &lineReader{rest: payload}

	treeLine, ok := r.next()
	if !ok || !strings.HasPrefix(treeLine, "tree ") {
		return nil, fmt.Errorf("decode commit: missing tree line: %w", vcserr.CorruptCommit)
	}
	tree, err := ParseHash(strings.TrimPrefix(treeLine, "tree "))
	if err != nil {
		return nil, fmt.Errorf("decode commit: bad tree hash: %w", vcserr.CorruptCommit)
	}

	line, ok := r.next()
	if !ok {
		return nil, fmt.Errorf("decode commit: missing author line: %w", vcserr.CorruptCommit)
	}

	var parent *Hash
	if strings.HasPrefix(line, "parent ") {
		p, err := ParseHash(strings.TrimPrefix(line, "parent "))
		if err != nil {
			return nil, fmt.Errorf("decode commit: bad parent hash: %w", vcserr.CorruptCommit)
		}
		parent = &p
		line, ok = r.next()
		if !ok {
			return nil, fmt.Errorf("decode commit: missing author line: %w", vcserr.CorruptCommit)
		}
	}

	author, err := parseIdentityLine(line, "author ")
	if err != nil {
		return nil, err
	}

	committerLine, ok := r.next()
	if !ok {
		return nil, fmt.Errorf("decode commit: missing committer line: %w", vcserr.CorruptCommit)
	}
	committer, err := parseIdentityLine(committerLine, "committer ")
	if err != nil {
		return nil, err
	}

	blank, ok := r.next()
	if !ok || blank != "" {
		return nil, fmt.Errorf("decode commit: missing blank separator: %w", vcserr.CorruptCommit)
	}

	return &Commit{
		Tree:      tree,
		Parent:    parent,
		Author:    author,
		Committer: committer,
		Message:   string(r.rest),
	}, nil
}

func parseIdentityLine(line, prefix string) (Identity, error) {
	if !strings.HasPrefix(line, prefix) {
		return Identity{}, fmt.Errorf("decode commit: expected %q line: %w", strings.TrimSpace(prefix), vcserr.CorruptCommit)
	}
	line = strings.TrimPrefix(line, prefix)

	open := strings.IndexByte(line, '<')
	shut := strings.IndexByte(line, '>')
	if open < 0 || shut < 0 || shut < open {
		return Identity{}, fmt.Errorf("decode commit: malformed identity %q: %w", line, vcserr.CorruptCommit)
	}
	name := strings.TrimSpace(line[:open])
	email := line[open+1 : shut]

	fields := strings.Fields(line[shut+1:])
	if len(fields) != 2 {
		return Identity{}, fmt.Errorf("decode commit: malformed identity tail %q: %w", line, vcserr.CorruptCommit)
	}
	ts, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Identity{}, fmt.Errorf("decode commit: malformed timestamp %q: %w", fields[0], vcserr.CorruptCommit)
	}
	offset, err := parseOffset(fields[1])
	if err != nil {
		return Identity{}, fmt.Errorf("decode commit: %w: %w", err, vcserr.CorruptCommit)
	}

	return Identity{Name: name, Email: email, Timestamp: ts, UTCOffsetMin: offset}, nil
}
