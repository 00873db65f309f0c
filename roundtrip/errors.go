package roundtrip

import (
	"errors"
	"fmt"

	"github.com/klauspost/rtcheck/internal/loader"
)

// Exit codes. They are kept stable for tooling that keys off them.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitDirectory = 2
	ExitOpen      = 3
	ExitMemory    = 4
	ExitShortRead = 5
	ExitUsage     = 9
)

// Kind classifies a Failure.
type Kind int

const (
	IOFailure Kind = iota + 1
	AllocationFailure
	CodecFailure
	CorruptionDetected
	UsageFailure
)

func (k Kind) String() string {
	switch k {
	case IOFailure:
		return "io failure"
	case AllocationFailure:
		return "allocation failure"
	case CodecFailure:
		return "codec failure"
	case CorruptionDetected:
		return "corruption detected"
	case UsageFailure:
		return "usage failure"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var (
	// ErrSizeMismatch is returned when the regenerated size differs from the source size.
	ErrSizeMismatch = errors.New("regenerated size mismatch")

	// ErrCorruption is matched by Mismatch.
	ErrCorruption = errors.New("silent decoding corruption")

	// ErrNoInput is returned when no input file was given.
	ErrNoInput = errors.New("no input file")
)

// Failure is a fault that ends a check.
// Msg is the diagnostic shown to the user; Err carries the cause.
type Failure struct {
	Kind Kind
	Code int
	Msg  string
	Err  error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return f.Msg
	}
	return f.Msg + ": " + f.Err.Error()
}

func (f *Failure) Unwrap() error { return f.Err }

// Escalates reports whether the failure must go through the Escalator.
// Codec errors and corruption mean the codec under test is broken for this
// input; everything else ends the process with its fixed code.
func (f *Failure) Escalates() bool {
	return f.Kind == CodecFailure || f.Kind == CorruptionDetected
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var f *Failure
	if errors.As(err, &f) {
		return f.Code
	}
	return ExitFailure
}

// Escalates reports whether err must be escalated.
func Escalates(err error) bool {
	var f *Failure
	return errors.As(err, &f) && f.Escalates()
}

// Usage returns a usage failure. A nil err means no input was given.
func Usage(err error) *Failure {
	if err == nil {
		return &Failure{Kind: UsageFailure, Code: ExitUsage, Msg: "Error : no argument : need input file", Err: ErrNoInput}
	}
	return &Failure{Kind: UsageFailure, Code: ExitUsage, Msg: "Error : invalid command line", Err: err}
}

// ParamFailure reports a parameter the codec refused.
// It escalates like any other codec error.
func ParamFailure(err error) *Failure {
	return &Failure{Kind: CodecFailure, Code: ExitFailure, Msg: "Error=> set parameter", Err: err}
}

// Stage is a phase of the round trip.
type Stage int

const (
	StageCompress Stage = iota + 1
	StageDecompress
)

func (s Stage) String() string {
	if s == StageDecompress {
		return "decompress"
	}
	return "compress"
}

// CodecError is an error reported by the codec during a stage.
type CodecError struct {
	Stage Stage
	Step  string
	Err   error
}

func (e *CodecError) Error() string {
	return e.Stage.String() + ": " + e.Step + ": " + e.Err.Error()
}

func (e *CodecError) Unwrap() error { return e.Err }

// Mismatch describes the first divergence between source and result.
type Mismatch struct {
	Offset    int
	Size      int
	SourceSum uint64
	ResultSum uint64
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("first difference at offset %d of %d (source xxh64 %016x, result xxh64 %016x)",
		m.Offset, m.Size, m.SourceSum, m.ResultSum)
}

func (m *Mismatch) Is(target error) bool { return target == ErrCorruption }

func codecFailure(err error) *Failure {
	return &Failure{Kind: CodecFailure, Code: ExitFailure, Msg: "roundTripTest error", Err: err}
}

func memoryFailure(err error) *Failure {
	return &Failure{Kind: AllocationFailure, Code: ExitMemory, Msg: "not enough memory", Err: err}
}

// loadFailure maps a loader error to its failure.
func loadFailure(path string, err error) *Failure {
	switch {
	case errors.Is(err, loader.ErrNotRegularFile):
		return &Failure{Kind: IOFailure, Code: ExitDirectory, Msg: "Ignoring " + path + " directory", Err: err}
	case errors.Is(err, loader.ErrAllocation):
		return memoryFailure(err)
	case errors.Is(err, loader.ErrShortRead):
		return &Failure{Kind: IOFailure, Code: ExitShortRead, Msg: "Error reading " + path, Err: err}
	default:
		return &Failure{Kind: IOFailure, Code: ExitOpen, Msg: "Impossible to open " + path, Err: err}
	}
}
