// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

// Package compression implements the decompression primitives the
// format decoders share: zlib/inflate streams and the two LZ dialects
// used by G00 images. Decompressors verify declared output lengths;
// a length mismatch is a structural corruption signal, never silently
// accepted.
package compression
