package roundtrip

import (
	"fmt"

	"github.com/klauspost/rtcheck/codec"
	"github.com/klauspost/rtcheck/internal/loader"
)

// Capacity returns the scratch buffer capacity for n input bytes.
// Both the compressed and the result buffer use it.
func Capacity(c codec.Codec, n int) (int, error) {
	b := c.CompressBound(n)
	if b < 0 {
		return 0, fmt.Errorf("%w: %s has no compress bound for %d bytes", loader.ErrAllocation, c.Name(), n)
	}
	return b, nil
}

// Engine runs one compress then decompress cycle.
// A nil Params leaves the codec defaults in place.
type Engine struct {
	Codec  codec.Codec
	Params *codec.Params
}

// Run compresses src into compressed and decompresses that into result.
// Output is written from the start of each buffer, up to its capacity.
// It returns the regenerated size and the compressed size.
// Errors are *CodecError; nothing is retried.
func (e Engine) Run(result, compressed, src []byte) (regenerated, compressedSize int, err error) {
	compressedSize, err = e.compress(compressed, src)
	if err != nil {
		return 0, 0, err
	}
	regenerated, err = e.Codec.Decompress(result, compressed[:compressedSize])
	if err != nil {
		return 0, compressedSize, &CodecError{Stage: StageDecompress, Step: "decompress", Err: err}
	}
	return regenerated, compressedSize, nil
}

// compress runs the compression stage in a session of its own.
// The session is closed on every path.
func (e Engine) compress(dst, src []byte) (n int, err error) {
	s, err := e.Codec.NewSession()
	if err != nil {
		return 0, &CodecError{Stage: StageCompress, Step: "create session", Err: err}
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			n, err = 0, &CodecError{Stage: StageCompress, Step: "close session", Err: cerr}
		}
	}()
	if e.Params != nil {
		if err := e.Params.ApplyTo(s); err != nil {
			return 0, &CodecError{Stage: StageCompress, Step: "apply parameters", Err: err}
		}
	}
	n, err = s.Compress(dst, src)
	if err != nil {
		return 0, &CodecError{Stage: StageCompress, Step: "compress", Err: err}
	}
	return n, nil
}

// Compare returns the index of the first byte where a and b differ within
// their first n bytes, or n if there is none.
// If either slice is shorter than n, the comparison stops at its end and the
// shorter length is returned when everything up to it matched.
func Compare(a, b []byte, n int) int {
	n = max(0, min(n, len(a), len(b)))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
