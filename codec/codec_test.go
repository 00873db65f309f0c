package codec

import (
	"bytes"
	"math"
	"math/rand"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInputs() map[string][]byte {
	rng := rand.New(rand.NewSource(0x5eed))
	random := func(n int) []byte {
		b := make([]byte, n)
		rng.Read(b)
		return b
	}
	return map[string][]byte{
		"empty":       {},
		"single":      {0},
		"abcdef":      []byte("abcdef"),
		"zeros-64k":   make([]byte, 64<<10),
		"text":        bytes.Repeat([]byte("The quick brown fox jumps over the lazy dog. "), 2000),
		"random-1k":   random(1 << 10),
		"random-128k": random(128 << 10),
		"random-300k": random(300 << 10),
	}
}

func roundTrip(t *testing.T, c Codec, p *Params, src []byte) []byte {
	t.Helper()
	s, err := c.NewSession()
	require.NoError(t, err)
	defer s.Close()
	if p != nil {
		require.NoError(t, p.ApplyTo(s))
	}
	bound := c.CompressBound(len(src))
	require.GreaterOrEqual(t, bound, 0)
	compressed := make([]byte, 0, bound)
	n, err := s.Compress(compressed, src)
	require.NoError(t, err, "compressed output must fit CompressBound")
	require.LessOrEqual(t, n, bound)

	result := make([]byte, 0, bound)
	got, err := c.Decompress(result, compressed[:n])
	require.NoError(t, err)
	require.Equal(t, len(src), got)
	if !bytes.Equal(src, result[:got]) {
		t.Fatalf("%s: decoded output mismatch", c.Name())
	}
	return compressed[:n]
}

func TestRoundTripAllCodecs(t *testing.T) {
	inputs := testInputs()
	for _, name := range Names() {
		c, err := Lookup(name)
		require.NoError(t, err)
		for in, src := range inputs {
			t.Run(name+"/"+in, func(t *testing.T) {
				roundTrip(t, c, nil, src)
			})
		}
	}
}

func TestRoundTripLevels(t *testing.T) {
	src := testInputs()["text"]
	for _, name := range Names() {
		c, err := Lookup(name)
		require.NoError(t, err)
		r, ok := c.Schema()[ParamLevel]
		if !ok {
			continue
		}
		// Negative zstd levels are all the fastest encoder.
		for level := max(r.Min, -1); level <= r.Max; level++ {
			p := NewParams(c.Schema())
			require.NoError(t, p.Set(ParamLevel, level))
			roundTrip(t, c, p, src)
		}
	}
}

func TestZstdStrategies(t *testing.T) {
	src := testInputs()["text"]
	for s := StrategyFast; s <= StrategyBtUltra2; s++ {
		t.Run(s.String(), func(t *testing.T) {
			p := NewParams(zstdSchema)
			require.NoError(t, p.Set(ParamLevel, 1))
			require.NoError(t, p.Set(ParamWorkers, 3))
			require.NoError(t, p.Set(ParamStrategy, int(s)))
			roundTrip(t, Zstd{}, p, src)
		})
	}
}

func TestZstdLevelWithStrategy(t *testing.T) {
	rng := rand.New(rand.NewSource(0x1e7e1))
	words := bytes.Fields([]byte("alpha beta gamma delta epsilon zeta eta theta iota kappa lambda mu"))
	var src []byte
	for len(src) < 256<<10 {
		src = append(src, words[rng.Intn(len(words))]...)
		src = append(src, ' ')
	}
	compress := func(level int) []byte {
		p := NewParams(zstdSchema)
		require.NoError(t, p.Set(ParamLevel, level))
		require.NoError(t, p.Set(ParamWorkers, 3))
		require.NoError(t, p.Set(ParamStrategy, int(StrategyLazy)))
		return roundTrip(t, Zstd{}, p, src)
	}
	fast, best := compress(1), compress(19)
	assert.NotEqual(t, fast, best, "level must change output when a strategy is set")
	// Levels mapping below the strategy's encoder keep the strategy's choice.
	assert.Equal(t, fast, compress(3))
}

func TestZstdEncoderLevel(t *testing.T) {
	lvl := func(v int) Entry { return Entry{Param: ParamLevel, Value: v} }
	strat := func(s Strategy) Entry { return Entry{Param: ParamStrategy, Value: int(s)} }

	for _, test := range []struct {
		entries []Entry
		want    zstd.EncoderLevel
	}{
		{nil, zstd.SpeedDefault},
		{[]Entry{lvl(0)}, zstd.SpeedDefault},
		{[]Entry{lvl(1)}, zstd.SpeedFastest},
		{[]Entry{lvl(19)}, zstd.SpeedBestCompression},
		{[]Entry{lvl(1), strat(StrategyLazy)}, zstd.SpeedBetterCompression},
		{[]Entry{lvl(19), strat(StrategyLazy)}, zstd.SpeedBestCompression},
		{[]Entry{lvl(1), strat(StrategyBtOpt)}, zstd.SpeedBestCompression},
		{[]Entry{lvl(1), strat(StrategyFast)}, zstd.SpeedFastest},
		{[]Entry{lvl(19), strat(StrategyFast)}, zstd.SpeedBestCompression},
	} {
		assert.Equal(t, test.want, zstdEncoderLevel(test.entries), "%v", test.entries)
	}
}

func TestZstdOrderIndependent(t *testing.T) {
	src := testInputs()["text"]
	set := func(order ...Entry) *Params {
		p := NewParams(zstdSchema)
		for _, e := range order {
			require.NoError(t, p.Set(e.Param, e.Value))
		}
		return p
	}
	level := Entry{Param: ParamLevel, Value: 1}
	workers := Entry{Param: ParamWorkers, Value: 3}
	lazy := Entry{Param: ParamStrategy, Value: int(StrategyLazy)}

	want := roundTrip(t, Zstd{}, set(level, workers, lazy), src)
	for _, order := range [][]Entry{
		{level, lazy, workers},
		{workers, level, lazy},
		{workers, lazy, level},
		{lazy, level, workers},
		{lazy, workers, level},
	} {
		got := roundTrip(t, Zstd{}, set(order...), src)
		if !bytes.Equal(want, got) {
			t.Fatalf("output differs for order %v", order)
		}
	}

	// Worker count must not change the output either.
	one := roundTrip(t, Zstd{}, set(level, Entry{Param: ParamWorkers, Value: 1}, lazy), src)
	assert.Equal(t, want, one)
}

func TestCompressDstTooSmall(t *testing.T) {
	src := testInputs()["text"]
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, err := Lookup(name)
			require.NoError(t, err)
			n := len(roundTrip(t, c, nil, src))

			s, err := c.NewSession()
			require.NoError(t, err)
			defer s.Close()
			_, err = s.Compress(make([]byte, 0, n-1), src)
			require.ErrorIs(t, err, ErrDstTooSmall)
		})
	}
}

func TestDecompressDstTooSmall(t *testing.T) {
	src := testInputs()["text"]
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, err := Lookup(name)
			require.NoError(t, err)
			compressed := roundTrip(t, c, nil, src)

			_, err = c.Decompress(make([]byte, 0, len(src)-1), compressed)
			require.ErrorIs(t, err, ErrDstTooSmall)
		})
	}
}

func TestDecompressCorrupt(t *testing.T) {
	src := testInputs()["text"]
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, err := Lookup(name)
			require.NoError(t, err)
			compressed := roundTrip(t, c, nil, src)
			truncated := compressed[:len(compressed)/2]
			_, err = c.Decompress(make([]byte, 0, c.CompressBound(len(src))), truncated)
			require.Error(t, err)
		})
	}
}

func TestCompressBound(t *testing.T) {
	z := Zstd{}
	// Values from ZSTD_COMPRESSBOUND.
	assert.Equal(t, 64, z.CompressBound(0))
	assert.Equal(t, 6+63, z.CompressBound(6))
	assert.Equal(t, 128<<10+512, z.CompressBound(128<<10))
	assert.Equal(t, 1<<20+4096, z.CompressBound(1<<20))
	assert.Equal(t, -1, z.CompressBound(-1))
	assert.Equal(t, -1, z.CompressBound(math.MaxInt))

	for _, name := range Names() {
		c, err := Lookup(name)
		require.NoError(t, err)
		prev := 0
		for _, n := range []int{0, 1, 100, 4 << 10, 128<<10 - 1, 128 << 10, 1 << 20} {
			b := c.CompressBound(n)
			assert.GreaterOrEqual(t, b, n, "%s bound(%d)", name, n)
			assert.GreaterOrEqual(t, b, prev, "%s bound must not shrink", name)
			prev = b
		}
	}
}

func TestLookup(t *testing.T) {
	assert.Equal(t, []string{"gzip", "s2", "snappy", "zstd"}, Names())
	c, err := Lookup("ZSTD")
	require.NoError(t, err)
	assert.Equal(t, "zstd", c.Name())

	_, err = Lookup("brotli")
	require.ErrorIs(t, err, ErrUnknownCodec)

	assert.Panics(t, func() { Register(Zstd{}) })
}
