// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

package compression

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Inflate decompresses a zlib stream and verifies that the output is
// exactly uncompressedSize bytes. The formats that use zlib store the
// decoded length in their headers; a mismatch means the container is
// corrupt.
func Inflate(compressed []byte, uncompressedSize int) ([]byte, error) {
	result, err := InflateAll(compressed)
	if err != nil {
		return nil, err
	}
	if len(result) != uncompressedSize {
		return nil, fmt.Errorf("inflate: got %d bytes, expected %d", len(result), uncompressedSize)
	}
	return result, nil
}

// InflateAll decompresses a zlib stream to whatever length it decodes
// to. YCG images store two concatenated streams where the first is
// truncated to a header-declared size, so the caller owns the length
// check.
func InflateAll(compressed []byte) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	defer reader.Close()

	result, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	return result, nil
}

// Deflate compresses data as a zlib stream. Decoders never call this;
// it exists so tests and tooling can synthesize compressed regions.
func Deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := zlib.NewWriter(&buf)
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}
	return buf.Bytes(), nil
}
