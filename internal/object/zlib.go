package object

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/kilnvcs/kiln/internal/vcserr"
)

// Deflate zlib-compresses the canonical encoding of an object before
// it's written to a loose object file.
func Deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("deflate: %w", vcserr.CorruptObject)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("deflate: %w", vcserr.CorruptObject)
	}
	return buf.Bytes(), nil
}

// Inflate reverses Deflate, recovering the canonical encoding.
func Inflate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", vcserr.CorruptObject)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", vcserr.CorruptObject)
	}
	return out, nil
}
