// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

// Package format is the scheme-detection and decode-pipeline engine.
//
// Every supported container or image format is a Scheme: a stateless
// decoder exposing detection (a read-only probe of the leading bytes)
// and decoding (the format pipeline: decrypt, decompress, verify,
// materialize). The Registry holds the closed set of schemes in a
// fixed priority order (formats with longer or rarer magic sequences
// probe first, heuristic magicless formats last) and resolves which
// scheme applies to an unknown byte source.
//
// A successful decode produces a Resource: a normalized pixel buffer
// (Image or SpriteSheet) or an Archive of independently decodable
// entries. Nothing decoded here touches shared mutable state, so
// resolution and entry extraction parallelize freely.
package format
