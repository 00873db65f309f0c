// rtcheck compresses a file, decompresses the result and verifies that the
// original is reproduced byte for byte.
//
// Build with the gofuzz tag to turn detected faults into panics that a
// fuzzing driver records as crashes.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/klauspost/rtcheck/codec"
	"github.com/klauspost/rtcheck/roundtrip"
)

var (
	version = "(dev)"
)

var (
	codecFlag = &cli.StringFlag{
		Name:    "codec",
		Usage:   "Codec under test: " + strings.Join(codec.Names(), ", "),
		Value:   "zstd",
		EnvVars: []string{"RTCHECK_CODEC"},
	}
	levelFlag = &cli.IntFlag{
		Name:    "level",
		Usage:   "Compression level",
		Value:   1,
		EnvVars: []string{"RTCHECK_LEVEL"},
	}
	threadsFlag = &cli.IntFlag{
		Name:    "threads",
		Usage:   "Worker threads inside the codec",
		Value:   3,
		EnvVars: []string{"RTCHECK_THREADS"},
	}
	strategyFlag = &cli.StringFlag{
		Name:    "strategy",
		Usage:   "Match finding strategy: fast, dfast, greedy, lazy, lazy2, btlazy2, btopt, btultra, btultra2",
		Value:   codec.StrategyLazy.String(),
		EnvVars: []string{"RTCHECK_STRATEGY"},
	}
	maxSizeFlag = &cli.Int64Flag{
		Name:    "max-size",
		Usage:   "Refuse input files larger than this many bytes (0: no limit)",
		EnvVars: []string{"RTCHECK_MAX_SIZE"},
	}
	verboseFlag = &cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Log round trip details",
		EnvVars: []string{"RTCHECK_VERBOSE"},
	}
)

func main() {
	os.Exit(run(os.Args, os.Stderr, roundtrip.DefaultEscalator()))
}

// run executes the command line and returns the exit code.
// Codec faults are handed to esc before returning.
func run(args []string, stderr io.Writer, esc roundtrip.Escalator) int {
	log := newLogger(stderr)
	err := newApp(log, stderr).Run(args)
	if err == nil {
		return roundtrip.ExitOK
	}
	var f *roundtrip.Failure
	if !errors.As(err, &f) {
		f = roundtrip.Usage(err)
	}
	log.WithError(f.Err).Error(f.Msg)
	if f.Escalates() {
		esc.Escalate(f.Code)
	}
	return f.Code
}

func newApp(log *logrus.Logger, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:            "rtcheck",
		Usage:           "round-trip a file through a codec and compare with the original",
		UsageText:       "rtcheck [options] <inputFile>",
		Version:         version,
		HideHelpCommand: true,
		Writer:          stderr,
		ErrWriter:       stderr,
		Flags: []cli.Flag{
			codecFlag,
			levelFlag,
			threadsFlag,
			strategyFlag,
			maxSizeFlag,
			verboseFlag,
		},
		Before: func(ctx *cli.Context) error {
			if ctx.Bool(verboseFlag.Name) {
				log.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
		Action: func(ctx *cli.Context) error {
			return check(ctx, log)
		},
		OnUsageError: func(_ *cli.Context, err error, _ bool) error {
			return roundtrip.Usage(err)
		},
		// Exit codes are decided by run.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func check(ctx *cli.Context, log *logrus.Logger) error {
	if ctx.NArg() < 1 {
		return roundtrip.Usage(nil)
	}
	// Flags after the input file are not parsed; refuse them rather than
	// check a configuration that was not asked for.
	if ctx.NArg() > 1 {
		return roundtrip.Usage(fmt.Errorf("unexpected arguments after %s: %s",
			ctx.Args().First(), strings.Join(ctx.Args().Tail(), " ")))
	}
	h, err := newHarness(ctx)
	if err != nil {
		return err
	}
	h.Log = log
	if _, err := h.CheckFile(ctx.Args().First()); err != nil {
		return err
	}
	log.Info("no pb detected")
	return nil
}

func newHarness(ctx *cli.Context) (*roundtrip.Harness, error) {
	c, err := codec.Lookup(ctx.String(codecFlag.Name))
	if err != nil {
		return nil, roundtrip.Usage(err)
	}
	p, err := parameters(ctx, c)
	if err != nil {
		return nil, roundtrip.ParamFailure(err)
	}
	return &roundtrip.Harness{
		Codec:        c,
		Params:       p,
		MaxInputSize: ctx.Int64(maxSizeFlag.Name),
	}, nil
}

// parameters builds the parameter set for c.
// Defaults for parameters c does not know are skipped; explicit values are
// always applied so that the codec can refuse them.
func parameters(ctx *cli.Context, c codec.Codec) (*codec.Params, error) {
	schema := c.Schema()
	p := codec.NewParams(schema)
	set := func(flag string, param codec.Param, value func() (int, error)) error {
		if !ctx.IsSet(flag) && !schema.Has(param) {
			return nil
		}
		v, err := value()
		if err != nil {
			return err
		}
		return p.Set(param, v)
	}
	intValue := func(flag string) func() (int, error) {
		return func() (int, error) { return ctx.Int(flag), nil }
	}
	if err := set(levelFlag.Name, codec.ParamLevel, intValue(levelFlag.Name)); err != nil {
		return nil, err
	}
	if err := set(threadsFlag.Name, codec.ParamWorkers, intValue(threadsFlag.Name)); err != nil {
		return nil, err
	}
	strategy := func() (int, error) {
		s, err := codec.ParseStrategy(ctx.String(strategyFlag.Name))
		return int(s), err
	}
	if err := set(strategyFlag.Name, codec.ParamStrategy, strategy); err != nil {
		return nil, err
	}
	return p, nil
}
