package object

// Blob is an opaque byte payload: a file's content, nothing else.
type Blob struct {
	Size    int
	Content []byte
}

// NewBlob wraps raw file content as a Blob.
func NewBlob(content []byte) *Blob {
	return &Blob{Size: len(content), Content: content}
}

// decodeBlob treats the payload as opaque bytes; the declared size in
// the header is metadata only and is not enforced against len(payload).
func decodeBlob(payload []byte) *Blob {
	return &Blob{Size: len(payload), Content: payload}
}
