// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/Forlos/akaibu/lib/bytesource"
	"github.com/Forlos/akaibu/lib/compression"
)

// buildYCG assembles a version-1 YCG file whose pixels are split
// between the two zlib streams after splitAt bytes.
func buildYCG(t *testing.T, width, height uint32, pixels []byte, splitAt int) []byte {
	t.Helper()
	first, err := compression.Deflate(pixels[:splitAt])
	if err != nil {
		t.Fatalf("Deflate: %v", err)
	}
	second, err := compression.Deflate(pixels[splitAt:])
	if err != nil {
		t.Fatalf("Deflate: %v", err)
	}
	file := make([]byte, ycgDataOffset, ycgDataOffset+len(first)+len(second))
	copy(file, ycgMagic)
	binary.LittleEndian.PutUint32(file[4:], width)
	binary.LittleEndian.PutUint32(file[8:], height)
	binary.LittleEndian.PutUint32(file[16:], 1)
	binary.LittleEndian.PutUint32(file[32:], uint32(splitAt))
	binary.LittleEndian.PutUint32(file[36:], uint32(len(first)))
	file = append(file, first...)
	return append(file, second...)
}

func TestYCGDecode(t *testing.T) {
	pixels := []byte{
		1, 2, 3, 4, 5, 6, 7, 8,
		9, 10, 11, 12, 13, 14, 15, 16,
	}
	file := buildYCG(t, 2, 2, pixels, 12)

	result, err := ycgScheme{}.Decode(bytesource.New(file))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	img, ok := result.Resource.(*Image)
	if !ok {
		t.Fatalf("resource is %T, want *Image", result.Resource)
	}
	if img.Width != 2 || img.Height != 2 || img.Layout != LayoutBGRA {
		t.Errorf("image is %dx%d %v, want 2x2 bgra", img.Width, img.Height, img.Layout)
	}
	if !bytes.Equal(img.Pix, pixels) {
		t.Errorf("pixels = %v, want %v", img.Pix, pixels)
	}
}

func TestYCGUnsupportedVersion(t *testing.T) {
	file := buildYCG(t, 2, 2, make([]byte, 16), 8)
	binary.LittleEndian.PutUint32(file[16:], 3)

	_, err := ycgScheme{}.Decode(bytesource.New(file))
	if !IsUnsupportedVersion(err) {
		t.Errorf("Decode error = %v, want unsupported version", err)
	}
}

func TestYCGPixelCountMismatch(t *testing.T) {
	// Declared 4x2 but only a 2x2 image's worth of pixels.
	file := buildYCG(t, 4, 2, make([]byte, 16), 8)

	_, err := ycgScheme{}.Decode(bytesource.New(file))
	if !IsCorruptData(err) {
		t.Errorf("Decode error = %v, want corrupt data", err)
	}
}

func TestYCGCorruptStream(t *testing.T) {
	file := buildYCG(t, 2, 2, make([]byte, 16), 8)
	file[ycgDataOffset] ^= 0xFF // break the first zlib header

	_, err := ycgScheme{}.Decode(bytesource.New(file))
	if !IsCorruptData(err) {
		t.Errorf("Decode error = %v, want corrupt data", err)
	}
}

func TestYCGDetect(t *testing.T) {
	file := buildYCG(t, 2, 2, make([]byte, 16), 8)
	if !(ycgScheme{}).Detect(bytesource.New(file)) {
		t.Error("valid file not detected")
	}
	if (ycgScheme{}).Detect(bytesource.New(file[:3])) {
		t.Error("3-byte prefix detected")
	}
	broken := append([]byte{}, file...)
	broken[0] = 'X'
	if (ycgScheme{}).Detect(bytesource.New(broken)) {
		t.Error("wrong magic detected")
	}
}
