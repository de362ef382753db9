// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

// Package crypt implements the decryption primitives shared by the
// format decoders: repeating-key and position-mixed XOR keystreams,
// and the 128-bit block cipher (with offset word-rotation mixing) used
// by LIBP-family archives. All transforms operate in place on buffers
// the caller owns; nothing here touches shared state.
package crypt
