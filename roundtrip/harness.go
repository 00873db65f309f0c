// Package roundtrip checks that a codec reproduces its input exactly.
//
// A check compresses a buffer with a configured parameter set, decompresses
// the result and compares it with the source byte by byte. Faults are
// returned as *Failure values carrying the process exit code; faults that
// indicate a broken codec are meant to be handed to an Escalator.
package roundtrip

import (
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress"
	"github.com/sirupsen/logrus"

	"github.com/klauspost/rtcheck/codec"
	"github.com/klauspost/rtcheck/internal/loader"
)

// Defaults are the parameters applied when nothing else is configured.
// They are fixed so fuzzing runs are reproducible.
var Defaults = []codec.Entry{
	{Param: codec.ParamLevel, Value: 1},
	{Param: codec.ParamWorkers, Value: 3},
	{Param: codec.ParamStrategy, Value: int(codec.StrategyLazy)},
}

// DefaultParams returns Defaults restricted to the parameters c recognises.
func DefaultParams(c codec.Codec) (*codec.Params, error) {
	schema := c.Schema()
	p := codec.NewParams(schema)
	for _, e := range Defaults {
		if !schema.Has(e.Param) {
			continue
		}
		if err := p.Set(e.Param, e.Value); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Report describes a successful round trip.
type Report struct {
	Codec           string
	Params          []codec.Entry
	SourceSize      int
	CompressedSize  int
	RegeneratedSize int
	Checksum        uint64

	// Estimate and EntropyBits describe how compressible the source looked.
	Estimate    float64
	EntropyBits int
}

// Fields returns the report as log fields.
func (r Report) Fields() logrus.Fields {
	ratio := 0.0
	if r.SourceSize > 0 {
		ratio = float64(r.CompressedSize) * 100 / float64(r.SourceSize)
	}
	return logrus.Fields{
		"codec":  r.Codec,
		"params": r.Params,
		"in":     humanize.Bytes(uint64(r.SourceSize)),
		"out":    humanize.Bytes(uint64(r.CompressedSize)),
		"ratio":  fmt.Sprintf("%.02f%%", ratio),
		"xxh64":  fmt.Sprintf("%016x", r.Checksum),
		"est":    fmt.Sprintf("%.02f", r.Estimate),
		"order0": humanize.Bytes(uint64(r.EntropyBits+7) / 8),
	}
}

// Harness checks inputs against one codec configuration.
type Harness struct {
	Codec  codec.Codec
	Params *codec.Params

	// MaxInputSize refuses larger files when > 0.
	MaxInputSize int64

	// Log receives debug output. Nil discards it.
	Log logrus.FieldLogger
}

// New returns a harness for c with the default parameters.
func New(c codec.Codec) (*Harness, error) {
	p, err := DefaultParams(c)
	if err != nil {
		return nil, err
	}
	return &Harness{Codec: c, Params: p}, nil
}

// CheckFile loads the file at path and checks it.
func (h *Harness) CheckFile(path string) (Report, error) {
	src, err := loader.Load(path, h.MaxInputSize)
	if err != nil {
		return Report{}, loadFailure(path, err)
	}
	h.logger().WithFields(logrus.Fields{"file": path, "size": humanize.Bytes(uint64(len(src)))}).Debug("Loaded input")
	return h.Check(src)
}

// Check round-trips src and verifies the result.
// Scratch buffers live only for the duration of the call.
func (h *Harness) Check(src []byte) (Report, error) {
	report := Report{Codec: h.Codec.Name(), Params: h.Params.Entries(), SourceSize: len(src)}

	capacity, err := Capacity(h.Codec, len(src))
	if err != nil {
		return report, memoryFailure(err)
	}
	compressed, err := loader.Alloc(int64(capacity))
	if err != nil {
		return report, memoryFailure(err)
	}
	result, err := loader.Alloc(int64(capacity))
	if err != nil {
		return report, memoryFailure(err)
	}

	engine := Engine{Codec: h.Codec, Params: h.Params}
	n, cSize, err := engine.Run(result[:0], compressed[:0], src)
	report.CompressedSize = cSize
	if err != nil {
		return report, codecFailure(err)
	}
	report.RegeneratedSize = n
	if n != len(src) {
		return report, &Failure{
			Kind: CorruptionDetected,
			Code: ExitFailure,
			Msg:  fmt.Sprintf("Incorrect regenerated size : %d != %d", n, len(src)),
			Err:  ErrSizeMismatch,
		}
	}
	report.Checksum = xxhash.Sum64(src)
	report.Estimate = compress.Estimate(src)
	report.EntropyBits = compress.ShannonEntropyBits(src)
	if pos := Compare(src, result[:n], len(src)); pos != len(src) {
		return report, &Failure{
			Kind: CorruptionDetected,
			Code: ExitFailure,
			Msg:  "Silent decoding corruption !!!",
			Err: &Mismatch{
				Offset:    pos,
				Size:      len(src),
				SourceSum: report.Checksum,
				ResultSum: xxhash.Sum64(result[:n]),
			},
		}
	}
	h.logger().WithFields(report.Fields()).Debug("Round trip complete")
	return report, nil
}

var discard = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

func (h *Harness) logger() logrus.FieldLogger {
	if h.Log == nil {
		return discard
	}
	return h.Log
}
