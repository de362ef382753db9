// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

package crypt

// XORKeystream XORs data in place with a repeating key. PF8 archives
// derive the key from the SHA-1 of the entry index and apply it to
// every entry payload.
func XORKeystream(data, key []byte) {
	if len(key) == 0 {
		return
	}
	for i := range data {
		data[i] ^= key[i%len(key)]
	}
}

// XORPassword applies the GXP-style position-mixed password stream to
// data[offset : offset+size] in place. Each byte is XORed with the
// password byte at (i+offset) mod len(password), further mixed with
// the low bytes of the stream position and the base offset.
func XORPassword(data []byte, password []byte, offset, size int) {
	if len(password) == 0 {
		return
	}
	for i := 0; i < size; i++ {
		mix := byte(offset) + byte(i)
		mix ^= password[(i+offset)%len(password)]
		data[offset+i] ^= mix
	}
}
