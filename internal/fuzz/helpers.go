// Package fuzz provides helpers for seeding fuzz tests.
package fuzz

import (
	"archive/zip"
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"os"
	"strconv"
	"testing"
)

// InputType describes how corpus files are encoded.
type InputType uint8

const (
	// TypeRaw files hold the input bytes as they are.
	TypeRaw InputType = iota
	// TypeGoFuzz files use the "go test fuzz v1" encoding.
	TypeGoFuzz
)

// goFuzzHeader starts every file written by the native fuzzer.
var goFuzzHeader = []byte("go test fuzz v1")

// AddFromZip adds every input in the zip file to f.
// With short set only every tenth file is used.
func AddFromZip(f *testing.F, filename string, t InputType, short bool) {
	vals, err := ReadZip(filename, t, short)
	if err != nil {
		f.Fatal(err)
	}
	for _, v := range vals {
		f.Add(v)
	}
}

// ReadZip returns the inputs stored in a zip file.
// Files carrying the native fuzzer header are decoded as such whatever t says.
func ReadZip(filename string, t InputType, short bool) ([][]byte, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	fi, err := file.Stat()
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(file, fi.Size())
	if err != nil {
		return nil, err
	}
	var out [][]byte
	for i, zf := range zr.File {
		if short && i%10 != 0 {
			continue
		}
		b, err := readZipFile(zf)
		if err != nil {
			return nil, err
		}
		if t == TypeRaw && !bytes.HasPrefix(b, goFuzzHeader) {
			out = append(out, b)
			continue
		}
		vals, err := unmarshalCorpusFile(b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", zf.Name, err)
		}
		out = append(out, vals...)
	}
	return out, nil
}

func readZipFile(zf *zip.File) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// unmarshalCorpusFile decodes corpus bytes into their respective values.
func unmarshalCorpusFile(b []byte) ([][]byte, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty string")
	}
	lines := bytes.Split(b, []byte("\n"))
	if len(lines) < 2 {
		return nil, fmt.Errorf("must include version and at least one value")
	}
	var vals = make([][]byte, 0, len(lines)-1)
	for _, line := range lines[1:] {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		v, err := parseCorpusValue(line)
		if err != nil {
			return nil, fmt.Errorf("malformed line %q: %v", line, err)
		}
		vals = append(vals, v)
	}
	return vals, nil
}

// parseCorpusValue decodes a single []byte("...") line.
func parseCorpusValue(line []byte) ([]byte, error) {
	fs := token.NewFileSet()
	expr, err := parser.ParseExprFrom(fs, "(test)", line, 0)
	if err != nil {
		return nil, err
	}
	call, ok := expr.(*ast.CallExpr)
	if !ok {
		return nil, fmt.Errorf("expected call expression")
	}
	if len(call.Args) != 1 {
		return nil, fmt.Errorf("expected call expression with 1 argument; got %d", len(call.Args))
	}
	arrayType, ok := call.Fun.(*ast.ArrayType)
	if !ok || arrayType.Len != nil {
		return nil, fmt.Errorf("expected []byte")
	}
	if elt, ok := arrayType.Elt.(*ast.Ident); !ok || elt.Name != "byte" {
		return nil, fmt.Errorf("expected []byte")
	}
	lit, ok := call.Args[0].(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return nil, fmt.Errorf("string literal required for type []byte")
	}
	s, err := strconv.Unquote(lit.Value)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}
