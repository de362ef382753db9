// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

// Package pngenc serializes decoded images as PNG. Encoding is a pure
// function of the pixel buffer: channel reordering and palette
// expansion happen here, compression settings are the encoder's
// defaults, and no metadata beyond the pixels is written.
package pngenc
