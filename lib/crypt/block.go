// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"
)

// BlockSize is the cipher block size in bytes. LIBP-family archives
// process their headers, index tables, and file data in blocks of this
// size with no padding beyond the format's own length fields.
const BlockSize = 16

// KeySize is the cipher key size in bytes (128-bit key schedule).
const KeySize = 16

// BlockCipher decrypts LIBP-family archive regions. Each 16-byte
// ciphertext block is first word-rotated by an amount derived from the
// block's absolute offset, then run through the 128-bit block cipher.
// A BlockCipher is immutable after construction and safe for
// concurrent use.
type BlockCipher struct {
	block cipher.Block
}

// NewBlockCipher builds the cipher from a 16-byte key.
func NewBlockCipher(key []byte) (*BlockCipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("block cipher key is %d bytes, want %d", len(key), KeySize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("initializing block cipher: %w", err)
	}
	return &BlockCipher{block: block}, nil
}

// DecryptBlockAt decrypts one 16-byte block in place. The offset is
// the block's absolute position in the encrypted region; it selects
// the word-rotation amount applied to the ciphertext before the block
// decryption.
func (c *BlockCipher) DecryptBlockAt(block []byte, offset uint32) error {
	if len(block) != BlockSize {
		return fmt.Errorf("block is %d bytes, want %d", len(block), BlockSize)
	}
	rotateWords(block, offset)
	c.block.Decrypt(block, block)
	return nil
}

// EncryptBlockAt is the inverse of DecryptBlockAt. It exists so tests
// and tooling can synthesize valid encrypted regions.
func (c *BlockCipher) EncryptBlockAt(block []byte, offset uint32) error {
	if len(block) != BlockSize {
		return fmt.Errorf("block is %d bytes, want %d", len(block), BlockSize)
	}
	c.block.Encrypt(block, block)
	unrotateWords(block, offset)
	return nil
}

// DecryptStream decrypts a block-aligned region in place. Each block's
// rotation offset is base plus the block's byte position within buf.
func (c *BlockCipher) DecryptStream(buf []byte, base uint32) error {
	if len(buf)%BlockSize != 0 {
		return fmt.Errorf("region of %d bytes is not %d-byte block aligned", len(buf), BlockSize)
	}
	for i := 0; i < len(buf); i += BlockSize {
		if err := c.DecryptBlockAt(buf[i:i+BlockSize], base+uint32(i)); err != nil {
			return err
		}
	}
	return nil
}

// EncryptStream is the inverse of DecryptStream.
func (c *BlockCipher) EncryptStream(buf []byte, base uint32) error {
	if len(buf)%BlockSize != 0 {
		return fmt.Errorf("region of %d bytes is not %d-byte block aligned", len(buf), BlockSize)
	}
	for i := 0; i < len(buf); i += BlockSize {
		if err := c.EncryptBlockAt(buf[i:i+BlockSize], base+uint32(i)); err != nil {
			return err
		}
	}
	return nil
}

// AlignBlock rounds size up to the next block boundary. Encrypted
// regions are stored block-aligned; the format's own length field
// trims the tail after decryption.
func AlignBlock(size int) int {
	if size%BlockSize == 0 {
		return size
	}
	return size + (BlockSize - size%BlockSize)
}

// rotationAmount derives the per-block rotation from the block offset:
// bits 4..7 of the offset plus a constant 16, so consecutive blocks
// cycle through 16 distinct rotations.
func rotationAmount(offset uint32) int {
	return int((offset>>4)&0xF) + 0x10
}

// rotateWords applies the pre-decryption mixing: the four little-endian
// words of the block are rotated left (even word index) or right (odd
// word index) by the offset-derived amount.
func rotateWords(block []byte, offset uint32) {
	n := rotationAmount(offset)
	for i := 0; i < BlockSize; i += 4 {
		v := binary.LittleEndian.Uint32(block[i:])
		if (i/4)%2 == 0 {
			v = rotl32(v, n)
		} else {
			v = rotr32(v, n)
		}
		binary.LittleEndian.PutUint32(block[i:], v)
	}
}

// unrotateWords reverses rotateWords.
func unrotateWords(block []byte, offset uint32) {
	n := rotationAmount(offset)
	for i := 0; i < BlockSize; i += 4 {
		v := binary.LittleEndian.Uint32(block[i:])
		if (i/4)%2 == 0 {
			v = rotr32(v, n)
		} else {
			v = rotl32(v, n)
		}
		binary.LittleEndian.PutUint32(block[i:], v)
	}
}

func rotl32(v uint32, n int) uint32 {
	n &= 31
	return v<<n | v>>(32-n)
}

func rotr32(v uint32, n int) uint32 {
	n &= 31
	return v>>n | v<<(32-n)
}
