package roundtrip

import (
	"bytes"
	rdebug "runtime/debug"
	"testing"

	"github.com/klauspost/rtcheck/codec"
	"github.com/klauspost/rtcheck/internal/fuzz"
)

func FuzzRoundTrip(f *testing.F) {
	fuzz.AddFromZip(f, "testdata/seed-corpus.zip", fuzz.TypeRaw, false)
	f.Add([]byte{})
	f.Add(bytes.Repeat([]byte{0xff}, 100))

	harnesses := make([]*Harness, 0, len(codec.Names()))
	for _, name := range codec.Names() {
		c, err := codec.Lookup(name)
		if err != nil {
			f.Fatal(err)
		}
		h, err := New(c)
		if err != nil {
			f.Fatal(err)
		}
		harnesses = append(harnesses, h)
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		defer func() {
			if r := recover(); r != nil {
				rdebug.PrintStack()
				t.Fatal(r)
			}
		}()
		for _, h := range harnesses {
			if _, err := h.Check(data); err != nil {
				t.Fatalf("%s: %v", h.Codec.Name(), err)
			}
		}
	})
}
