package codec

import (
	"fmt"
	"math"
)

// blockSession is a session for engines with a one-shot block API
// whose only tunable is a level.
type blockSession struct {
	schema Schema
	level  int
	encode func(dst, src []byte, level int) ([]byte, error)
	bound  bool
	closed bool
}

func (s *blockSession) Apply(p *Params) error {
	switch {
	case s.closed:
		return ErrSessionClosed
	case s.bound:
		return ErrApplyFailed
	}
	if err := p.validate(s.schema); err != nil {
		return err
	}
	if v, ok := p.Get(ParamLevel); ok {
		s.level = v
	}
	return nil
}

func (s *blockSession) Compress(dst, src []byte) (int, error) {
	if s.closed {
		return 0, ErrSessionClosed
	}
	s.bound = true
	out, err := s.encode(dst[:cap(dst)], src, s.level)
	if err != nil {
		return 0, err
	}
	return into(dst, out)
}

func (s *blockSession) Close() error {
	s.closed = true
	return nil
}

// fixedWriter is an io.Writer over a buffer that never grows.
type fixedWriter struct {
	buf []byte
}

func (w *fixedWriter) Write(p []byte) (int, error) {
	if len(p) > cap(w.buf)-len(w.buf) {
		return 0, fmt.Errorf("%w: capacity %d", ErrDstTooSmall, cap(w.buf))
	}
	w.buf = append(w.buf, p...)
	return len(p), nil
}

// checkDecodedLen rejects a decoded size that does not fit dst.
func checkDecodedLen(dst []byte, n int, err error) error {
	if err != nil {
		return err
	}
	if n > cap(dst) {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrDstTooSmall, n, cap(dst))
	}
	return nil
}

// linearBound returns n + n>>shift + overhead, or -1 on overflow.
func linearBound(n int, shift uint, overhead int) int {
	if n < 0 || n > math.MaxInt-(n>>shift)-overhead {
		return -1
	}
	return n + n>>shift + overhead
}
