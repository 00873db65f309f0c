// Package loader reads a whole input file into memory.
package loader

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

var (
	// ErrNotRegularFile is returned for directories.
	ErrNotRegularFile = errors.New("not a regular file")

	// ErrUnreadable is returned when the file cannot be inspected or opened.
	ErrUnreadable = errors.New("cannot open file")

	// ErrShortRead is returned when fewer bytes than the file size could be read.
	ErrShortRead = errors.New("short read")

	// ErrAllocation is returned when a buffer of the requested size cannot be allocated.
	ErrAllocation = errors.New("not enough memory")
)

// Load returns the contents of the file at path.
//
// The length of the returned buffer is the size reported by the file system
// when the file was inspected. Files that change size between inspection and
// read are not detected beyond ErrShortRead. Only regular files report a size;
// other non-directory files are read as empty.
// If maxSize > 0, larger files fail with ErrAllocation before anything is allocated.
func Load(path string, maxSize int64) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrUnreadable, path, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotRegularFile, path)
	}
	var size int64
	if fi.Mode().IsRegular() {
		size = fi.Size()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrUnreadable, path, err)
	}
	defer f.Close()

	if maxSize > 0 && size > maxSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrAllocation, path, size, maxSize)
	}
	buf, err := Alloc(size)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	n, err := io.ReadFull(f, buf)
	if err != nil {
		return nil, fmt.Errorf("%w %s: got %d of %d bytes: %w", ErrShortRead, path, n, size, err)
	}
	return buf, nil
}

// Alloc returns a zeroed buffer of length n.
// Lengths the runtime refuses to allocate fail with ErrAllocation instead of panicking.
// Running out of memory for a length the runtime accepts is fatal and cannot
// be recovered; callers that need a reliable ErrAllocation bound the size
// first, as Load does with maxSize.
func Alloc(n int64) (b []byte, err error) {
	if n < 0 || n > math.MaxInt {
		return nil, fmt.Errorf("%w: invalid size %d", ErrAllocation, n)
	}
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, fmt.Errorf("%w: %d bytes: %v", ErrAllocation, n, r)
		}
	}()
	return make([]byte, n), nil
}
