package roundtrip

// Escalator turns a detected fault into abnormal termination.
// The policy is picked at build time, see DefaultEscalator.
type Escalator interface {
	Escalate(code int)
}

// EscalatorFunc adapts a function to Escalator.
type EscalatorFunc func(code int)

func (f EscalatorFunc) Escalate(code int) { f(code) }

// DefaultEscalator returns the policy of this build.
// Standalone builds exit with the code. Builds with the gofuzz tag panic,
// so the fuzzing driver records a crash for the triggering input.
func DefaultEscalator() Escalator {
	return buildEscalator
}
