// Package compress detects and undoes compression on report input.
//
// Large .nessus exports are commonly archived as .nessus.zst or .nessus.gz.
// NewReader sniffs the first bytes and returns a reader over the plain XML,
// so callers never need to know how a report was stored.
//
// Example usage:
//
//	rc, alg, err := compress.NewReader(f)
//	if err != nil {
//	    return err
//	}
//	defer rc.Close()
package compress

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Algorithm represents a compression algorithm.
type Algorithm string

const (
	// AlgorithmZSTD is the Zstandard compression algorithm.
	AlgorithmZSTD Algorithm = "zstd"

	// AlgorithmGzip is the gzip compression algorithm.
	AlgorithmGzip Algorithm = "gzip"

	// AlgorithmNone indicates no compression.
	AlgorithmNone Algorithm = "none"
)

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	gzipMagic = []byte{0x1f, 0x8b}
)

// Detect reports the algorithm a stream starting with head was written with.
func Detect(head []byte) Algorithm {
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		return AlgorithmZSTD
	case bytes.HasPrefix(head, gzipMagic):
		return AlgorithmGzip
	default:
		return AlgorithmNone
	}
}

// NewReader returns a reader that yields the decompressed content of r.
// Uncompressed input is passed through unchanged.
func NewReader(r io.Reader) (io.ReadCloser, Algorithm, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF {
		return nil, AlgorithmNone, fmt.Errorf("peek error: %w", err)
	}

	alg := Detect(head)
	switch alg {
	case AlgorithmZSTD:
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, alg, fmt.Errorf("zstd reader error: %w", err)
		}
		return dec.IOReadCloser(), alg, nil
	case AlgorithmGzip:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, alg, fmt.Errorf("gzip reader error: %w", err)
		}
		return gz, alg, nil
	default:
		return io.NopCloser(br), alg, nil
	}
}

// Compress compresses data with the given algorithm.
func Compress(alg Algorithm, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	switch alg {
	case AlgorithmZSTD:
		enc, err := zstd.NewWriter(&buf)
		if err != nil {
			return nil, fmt.Errorf("zstd writer error: %w", err)
		}
		if _, err := enc.Write(data); err != nil {
			return nil, fmt.Errorf("zstd write error: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("zstd close error: %w", err)
		}
	case AlgorithmGzip:
		writer := gzip.NewWriter(&buf)
		if _, err := writer.Write(data); err != nil {
			return nil, fmt.Errorf("gzip write error: %w", err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("gzip close error: %w", err)
		}
	case AlgorithmNone:
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", alg)
	}
	return buf.Bytes(), nil
}
