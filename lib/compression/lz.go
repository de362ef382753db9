// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

package compression

import (
	"encoding/binary"
	"fmt"
)

// The two G00 LZ dialects share a control layout: a flag byte governs
// the next eight units (LSB first), a set bit emits literal data and a
// clear bit replays a back-reference encoded in a little-endian uint16
// (low nibble: count, high bits: distance). They differ in the unit
// size: the pixel dialect copies 4-byte BGRA units and fills the alpha
// byte of literals; the byte dialect works on single bytes.

// UnpackG00Pixels decompresses the G00 version-0 pixel dialect into
// exactly destLen bytes. Literal units are 3 stored bytes completed
// with an opaque alpha byte; back-references copy 4-byte units with a
// distance in units of 4 bytes.
func UnpackG00Pixels(src []byte, destLen int) ([]byte, error) {
	dest := make([]byte, 0, destLen)
	pos := 0
	for len(dest) < destLen {
		if pos >= len(src) {
			return nil, fmt.Errorf("lz pixels: control byte past end of input")
		}
		flags := src[pos]
		pos++
		for bit := 0; bit < 8 && len(dest) < destLen; bit++ {
			if flags&1 != 0 {
				if pos+3 > len(src) {
					return nil, fmt.Errorf("lz pixels: literal past end of input")
				}
				dest = append(dest, src[pos], src[pos+1], src[pos+2], 0xFF)
				pos += 3
			} else {
				if pos+2 > len(src) {
					return nil, fmt.Errorf("lz pixels: back-reference past end of input")
				}
				ref := binary.LittleEndian.Uint16(src[pos:])
				pos += 2
				count := int(ref&0x0F) + 1
				distance := int(ref>>4) << 2
				if distance <= 0 || distance > len(dest) {
					return nil, fmt.Errorf("lz pixels: back-reference distance %d outside %d decoded bytes", distance, len(dest))
				}
				from := len(dest) - distance
				for unit := 0; unit < count; unit++ {
					dest = append(dest, dest[from], dest[from+1], dest[from+2], dest[from+3])
					from += 4
				}
			}
			flags >>= 1
		}
	}
	if len(dest) != destLen {
		return nil, fmt.Errorf("lz pixels: got %d bytes, expected %d", len(dest), destLen)
	}
	return dest, nil
}

// UnpackG00Bytes decompresses the byte dialect used by G00 versions 1
// and 2. Back-references copy count = (low nibble)+2 single bytes from
// distance = high-12-bits back, and may legally stop mid-copy when the
// declared output length is reached.
func UnpackG00Bytes(src []byte, destLen int) ([]byte, error) {
	dest := make([]byte, 0, destLen)
	pos := 0
	for len(dest) < destLen {
		if pos >= len(src) {
			return nil, fmt.Errorf("lz bytes: control byte past end of input")
		}
		flags := src[pos]
		pos++
		for bit := 0; bit < 8 && len(dest) < destLen; bit++ {
			if flags&1 != 0 {
				if pos >= len(src) {
					return nil, fmt.Errorf("lz bytes: literal past end of input")
				}
				dest = append(dest, src[pos])
				pos++
			} else {
				if pos+2 > len(src) {
					return nil, fmt.Errorf("lz bytes: back-reference past end of input")
				}
				ref := binary.LittleEndian.Uint16(src[pos:])
				pos += 2
				count := int(ref&0x0F) + 2
				distance := int(ref >> 4)
				if distance <= 0 || distance > len(dest) {
					return nil, fmt.Errorf("lz bytes: back-reference distance %d outside %d decoded bytes", distance, len(dest))
				}
				from := len(dest) - distance
				for i := 0; i < count && len(dest) < destLen; i++ {
					dest = append(dest, dest[from])
					from++
				}
			}
			flags >>= 1
		}
	}
	return dest, nil
}
