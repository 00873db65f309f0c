package codec

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Gzip adapts github.com/klauspost/compress/gzip.
// compressionLevel follows compress/flate: -1 default, 0 stored, 1..9.
type Gzip struct{}

var gzipSchema = Schema{
	ParamLevel: {Min: gzip.DefaultCompression, Max: gzip.BestCompression},
}

func (Gzip) Name() string   { return "gzip" }
func (Gzip) Schema() Schema { return gzipSchema }

// CompressBound covers stored blocks, at most 5 bytes per 64KiB,
// plus the gzip header and trailer.
func (Gzip) CompressBound(n int) int {
	return linearBound(n, 10, 64)
}

func (Gzip) NewSession() (Session, error) {
	return &blockSession{schema: gzipSchema, level: gzip.DefaultCompression, encode: gzipEncode}, nil
}

func gzipEncode(dst, src []byte, level int) ([]byte, error) {
	w := fixedWriter{buf: dst[:0]}
	zw, err := gzip.NewWriterLevel(&w, level)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(src); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return w.buf, nil
}

func (Gzip) Decompress(dst, src []byte) (int, error) {
	zr, err := gzip.NewReader(bytes.NewReader(src))
	if err != nil {
		return 0, err
	}
	defer zr.Close()
	w := fixedWriter{buf: dst[:0]}
	if _, err := io.Copy(&w, zr); err != nil {
		return 0, err
	}
	return len(w.buf), nil
}
