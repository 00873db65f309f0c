package loader

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content []byte) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "input.bin")
	require.NoError(t, os.WriteFile(name, content, 0o644))
	return name
}

func TestLoad(t *testing.T) {
	b, err := Load(writeFile(t, []byte("abcdef")), 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcdef"), b)

	b, err = Load(writeFile(t, nil), 0)
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestLoadDirectory(t *testing.T) {
	_, err := Load(t.TempDir(), 0)
	require.ErrorIs(t, err, ErrNotRegularFile)
	assert.NotErrorIs(t, err, ErrUnreadable)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist"), 0)
	require.ErrorIs(t, err, ErrUnreadable)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadMaxSize(t *testing.T) {
	name := writeFile(t, make([]byte, 100))
	_, err := Load(name, 99)
	require.ErrorIs(t, err, ErrAllocation)

	b, err := Load(name, 100)
	require.NoError(t, err)
	assert.Len(t, b, 100)
}

func TestAlloc(t *testing.T) {
	b, err := Alloc(0)
	require.NoError(t, err)
	assert.Empty(t, b)

	_, err = Alloc(-1)
	require.ErrorIs(t, err, ErrAllocation)

	if strconv.IntSize == 64 {
		// Beyond the runtime's address space limit.
		_, err = Alloc(1 << 62)
		require.ErrorIs(t, err, ErrAllocation)
	}
}
