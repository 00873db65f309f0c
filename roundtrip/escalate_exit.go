//go:build !gofuzz

package roundtrip

import "os"

// FuzzMode reports whether this is a fuzz-harness build.
const FuzzMode = false

var buildEscalator Escalator = EscalatorFunc(os.Exit)
