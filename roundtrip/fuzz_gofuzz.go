//go:build gofuzz

package roundtrip

import (
	"fmt"
	"os"

	"github.com/klauspost/rtcheck/codec"
)

var fuzzHarness = func() *Harness {
	h, err := New(codec.Zstd{})
	if err != nil {
		panic(err)
	}
	return h
}()

// Fuzz is the go-fuzz entry point.
// It round-trips data through zstd with the default parameters.
func Fuzz(data []byte) int {
	_, err := fuzzHarness.Check(data)
	if err == nil {
		return 1
	}
	if !Escalates(err) {
		return 0
	}
	fmt.Fprintln(os.Stderr, err)
	DefaultEscalator().Escalate(ExitCode(err))
	return 0
}
