package codec

import (
	"github.com/klauspost/compress/s2"
)

// S2 adapts the S2 block format from github.com/klauspost/compress/s2.
// compressionLevel selects the encoder: 1 fast, 2 better, 3 best.
type S2 struct{}

var s2Schema = Schema{
	ParamLevel: {Min: 1, Max: 3},
}

func (S2) Name() string   { return "s2" }
func (S2) Schema() Schema { return s2Schema }

func (S2) CompressBound(n int) int {
	return s2.MaxEncodedLen(n)
}

func (S2) NewSession() (Session, error) {
	return &blockSession{schema: s2Schema, level: 1, encode: s2Encode}, nil
}

func s2Encode(dst, src []byte, level int) ([]byte, error) {
	switch level {
	case 2:
		return s2.EncodeBetter(dst, src), nil
	case 3:
		return s2.EncodeBest(dst, src), nil
	default:
		return s2.Encode(dst, src), nil
	}
}

func (S2) Decompress(dst, src []byte) (int, error) {
	n, err := s2.DecodedLen(src)
	if err := checkDecodedLen(dst, n, err); err != nil {
		return 0, err
	}
	out, err := s2.Decode(dst[:cap(dst)], src)
	if err != nil {
		return 0, err
	}
	return into(dst, out)
}
