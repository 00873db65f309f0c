// Package codec defines the contract between the round-trip harness and the
// compression engine under test, and adapts a few engines to it.
//
// A Codec is opaque to the harness. It only has to report a worst case output
// size, compress a whole buffer through a configured Session and decompress
// a whole buffer in one call. Adapters never grow the destination buffers
// handed to them; running out of room is reported as ErrDstTooSmall.
package codec

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrDstTooSmall is returned when the output does not fit the destination buffer.
	ErrDstTooSmall = errors.New("destination buffer is too small")

	// ErrInvalidParameter is returned when a parameter is unknown to a codec
	// or its value is outside the accepted range.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrApplyFailed is returned when parameters are applied to a session
	// that has already been given input.
	ErrApplyFailed = errors.New("parameters cannot be applied to a bound session")

	// ErrSessionClosed is returned when a session is used after Close.
	ErrSessionClosed = errors.New("session used after Close")

	// ErrUnknownCodec is returned by Lookup for unregistered names.
	ErrUnknownCodec = errors.New("unknown codec")
)

// Codec is a compression engine as seen by the harness.
type Codec interface {
	// Name returns the registry name of the codec.
	Name() string

	// Schema lists the parameters the codec recognises.
	Schema() Schema

	// CompressBound returns the largest possible compressed size of n input bytes.
	// A negative value means n is too large to be compressed.
	CompressBound(n int) int

	// NewSession returns a fresh compression session with default parameters.
	NewSession() (Session, error)

	// Decompress decodes all of src into dst[:cap(dst)] and returns the number
	// of bytes written.
	Decompress(dst, src []byte) (int, error)
}

// Session is a single use compression context.
type Session interface {
	// Apply installs all parameters in p or none of them.
	// It fails with ErrApplyFailed once Compress has been called.
	Apply(p *Params) error

	// Compress encodes all of src as one final chunk into dst[:cap(dst)]
	// and returns the number of bytes written.
	Compress(dst, src []byte) (int, error)

	// Close releases the session. It is safe to call more than once.
	Close() error
}

var registry = map[string]Codec{}

// Register makes c available through Lookup.
// It panics if the name is already taken.
func Register(c Codec) {
	name := c.Name()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("codec: Register called twice for %q", name))
	}
	registry[name] = c
}

// Lookup returns the codec registered as name.
func Lookup(name string) (Codec, error) {
	c, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrUnknownCodec, name, strings.Join(Names(), ", "))
	}
	return c, nil
}

// Names returns the registered codec names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(Zstd{})
	Register(S2{})
	Register(Snappy{})
	Register(Gzip{})
}

// into copies out to the start of dst's backing array.
// Adapters whose engines may hand back a freshly allocated slice use it to
// guarantee the result ends up in the caller's buffer.
func into(dst, out []byte) (int, error) {
	if len(out) > cap(dst) {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", ErrDstTooSmall, len(out), cap(dst))
	}
	return copy(dst[:cap(dst)], out), nil
}
