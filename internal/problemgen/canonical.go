package problemgen

import (
	"fmt"
	"io"

	"github.com/Sokol111/ecommerce-problem-json/pkg/problem"
)

// maxDocumentBytes caps the size of a document read by Canonicalize.
const maxDocumentBytes = 1 << 20

// Canonicalize decodes a problem document and returns its canonical encoding.
// Malformed documents fail with problem.ErrMalformedPayload.
func Canonicalize(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if len(data) > maxDocumentBytes {
		return nil, fmt.Errorf("%w: document exceeds %d bytes", problem.ErrMalformedPayload, maxDocumentBytes)
	}
	p, err := problem.Decode(data)
	if err != nil {
		return nil, err
	}
	return problem.Encode(p)
}
