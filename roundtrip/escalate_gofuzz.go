//go:build gofuzz

package roundtrip

import "fmt"

// FuzzMode reports whether this is a fuzz-harness build.
const FuzzMode = true

var buildEscalator Escalator = EscalatorFunc(func(code int) {
	panic(fmt.Sprintf("roundtrip: fault detected, code %d", code))
})
