// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

package format

import "bytes"

// TypeHint is a content sniff of extracted entry bytes, used to pick
// output file extensions and to decide which entries are worth a
// nested decode attempt.
type TypeHint int

const (
	// HintUnknown means no known signature matched.
	HintUnknown TypeHint = iota

	// HintPNG is a PNG image.
	HintPNG

	// HintJPEG is a JPEG image.
	HintJPEG

	// HintBMP is a Windows bitmap.
	HintBMP

	// HintICO is a Windows icon.
	HintICO

	// HintRIFF is a RIFF container (WAV audio, WebP).
	HintRIFF
)

// String returns the hint's conventional file extension, or "bin".
func (h TypeHint) String() string {
	switch h {
	case HintPNG:
		return "png"
	case HintJPEG:
		return "jpg"
	case HintBMP:
		return "bmp"
	case HintICO:
		return "ico"
	case HintRIFF:
		return "riff"
	default:
		return "bin"
	}
}

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

// Sniff identifies data by its leading bytes.
func Sniff(data []byte) TypeHint {
	switch {
	case bytes.HasPrefix(data, pngSignature):
		return HintPNG
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return HintJPEG
	case bytes.HasPrefix(data, []byte("BM")):
		return HintBMP
	case bytes.HasPrefix(data, []byte{0x00, 0x00, 0x01, 0x00}):
		return HintICO
	case bytes.HasPrefix(data, []byte("RIFF")):
		return HintRIFF
	default:
		return HintUnknown
	}
}
