package codec

import (
	"github.com/golang/snappy"
)

// Snappy adapts the Snappy block format from github.com/golang/snappy.
// It has no parameters.
type Snappy struct{}

var snappySchema = Schema{}

func (Snappy) Name() string   { return "snappy" }
func (Snappy) Schema() Schema { return snappySchema }

func (Snappy) CompressBound(n int) int {
	return snappy.MaxEncodedLen(n)
}

func (Snappy) NewSession() (Session, error) {
	return &blockSession{schema: snappySchema, encode: snappyEncode}, nil
}

func snappyEncode(dst, src []byte, _ int) ([]byte, error) {
	return snappy.Encode(dst, src), nil
}

func (Snappy) Decompress(dst, src []byte) (int, error) {
	n, err := snappy.DecodedLen(src)
	if err := checkDecodedLen(dst, n, err); err != nil {
		return 0, err
	}
	out, err := snappy.Decode(dst[:cap(dst)], src)
	if err != nil {
		return 0, err
	}
	return into(dst, out)
}
