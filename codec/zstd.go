package codec

import (
	"math"

	"github.com/klauspost/compress/zstd"
)

// Zstd adapts github.com/klauspost/compress/zstd.
//
// compressionLevel uses zstd numbering and is mapped with
// zstd.EncoderLevelFromZstd. A strategy sets the weakest encoder the session
// may use; the level picks a stronger one when it maps above it.
type Zstd struct{}

const zstdBlockSizeMax = 128 << 10

var zstdSchema = Schema{
	ParamLevel:    {Min: -(1 << 17), Max: 22},
	ParamWorkers:  {Min: 0, Max: 200},
	ParamStrategy: {Min: int(StrategyFast), Max: int(StrategyBtUltra2)},
}

func (Zstd) Name() string   { return "zstd" }
func (Zstd) Schema() Schema { return zstdSchema }

// CompressBound mirrors ZSTD_COMPRESSBOUND.
func (Zstd) CompressBound(n int) int {
	if n < 0 || n > math.MaxInt-(n>>8)-(zstdBlockSizeMax>>11) {
		return -1
	}
	b := n + n>>8
	if n < zstdBlockSizeMax {
		b += (zstdBlockSizeMax - n) >> 11
	}
	return b
}

func (Zstd) NewSession() (Session, error) {
	s := &zstdSession{}
	enc, err := zstd.NewWriter(nil, zstdOptions(nil)...)
	if err != nil {
		return nil, err
	}
	s.enc = enc
	return s, nil
}

// Decompress decodes all frames in src.
func (Zstd) Decompress(dst, src []byte) (int, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return 0, err
	}
	defer dec.Close()
	out, err := dec.DecodeAll(src, dst[:0])
	if err != nil {
		return 0, err
	}
	return into(dst, out)
}

type zstdSession struct {
	enc    *zstd.Encoder
	bound  bool
	closed bool
}

func (s *zstdSession) Apply(p *Params) error {
	switch {
	case s.closed:
		return ErrSessionClosed
	case s.bound:
		return ErrApplyFailed
	}
	if err := p.validate(zstdSchema); err != nil {
		return err
	}
	enc, err := zstd.NewWriter(nil, zstdOptions(p.Canonical())...)
	if err != nil {
		return err
	}
	s.enc.Close()
	s.enc = enc
	return nil
}

func (s *zstdSession) Compress(dst, src []byte) (int, error) {
	if s.closed {
		return 0, ErrSessionClosed
	}
	s.bound = true
	return into(dst, s.enc.EncodeAll(src, dst[:0]))
}

func (s *zstdSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.enc.Close()
}

// zstdOptions translates canonical entries to encoder options.
// Later options override earlier ones.
func zstdOptions(entries []Entry) []zstd.EOption {
	opts := []zstd.EOption{
		zstd.WithEncoderCRC(true),
		// Empty input must still produce a decodable frame.
		zstd.WithZeroFrames(true),
		zstd.WithEncoderConcurrency(1),
	}
	for _, e := range entries {
		if e.Param == ParamWorkers {
			// 0 is single threaded in zstd numbering.
			opts = append(opts, zstd.WithEncoderConcurrency(max(e.Value, 1)))
		}
	}
	return append(opts, zstd.WithEncoderLevel(zstdEncoderLevel(entries)))
}

// zstdEncoderLevel returns the stronger of the encoders picked by the
// level and by the strategy.
func zstdEncoderLevel(entries []Entry) zstd.EncoderLevel {
	level := zstd.SpeedDefault
	var strategy Strategy
	for _, e := range entries {
		switch e.Param {
		case ParamLevel:
			if e.Value != 0 {
				level = zstd.EncoderLevelFromZstd(e.Value)
			}
		case ParamStrategy:
			strategy = Strategy(e.Value)
		}
	}
	if strategy != 0 {
		level = max(level, strategyLevel(strategy))
	}
	return level
}

// strategyLevel picks the encoder closest to a zstd tactic.
func strategyLevel(s Strategy) zstd.EncoderLevel {
	switch {
	case s <= StrategyFast:
		return zstd.SpeedFastest
	case s == StrategyDFast:
		return zstd.SpeedDefault
	case s <= StrategyLazy2:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}
