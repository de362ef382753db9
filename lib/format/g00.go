// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"encoding/binary"

	"github.com/Forlos/akaibu/lib/bytesource"
	"github.com/Forlos/akaibu/lib/compression"
	"github.com/Forlos/akaibu/lib/integrity"
)

// G00 images carry no magic: the 5-byte header is {version u8,
// width u16, height u16} little-endian, immediately followed by
// {compressed size u32, uncompressed size u32} for versions 0 and 1.
// Detection is structural and the scheme probes last in the registry.
//
// Version 0 is the pixel LZ dialect decoded straight to BGRA.
// Version 1 is the byte LZ dialect over a color-table payload:
// {count u16, count BGRA quads, one index byte per pixel}.
// Version 2 is a sprite sheet: a region table, the byte LZ dialect,
// then per-sprite chunk lists blitted onto per-region canvases.

const (
	g00HeaderSize = 5
	g00MaxDim     = 16384

	g00SpriteHeaderSize = 0x74
	g00ChunkHeaderSize  = 0x5C
)

type g00Scheme struct {
	policy integrity.Policy
}

func (g00Scheme) ID() SchemeID { return SchemeG00 }

func (s g00Scheme) withPolicy(policy integrity.Policy) Scheme {
	s.policy = policy
	return s
}

func (s g00Scheme) Detect(src *bytesource.Source) bool {
	header, err := src.BytesAt(0, g00HeaderSize+8)
	if err != nil {
		return false
	}
	version := header[0]
	width := int(binary.LittleEndian.Uint16(header[1:]))
	height := int(binary.LittleEndian.Uint16(header[3:]))
	switch version {
	case 0, 1:
		if width == 0 || height == 0 || width > g00MaxDim || height > g00MaxDim {
			return false
		}
		// The stored compressed size spans everything after the header.
		compressed := int64(binary.LittleEndian.Uint32(header[5:]))
		if compressed != src.Len()-g00HeaderSize {
			return false
		}
		if version == 0 {
			uncompressed := int64(binary.LittleEndian.Uint32(header[9:]))
			return uncompressed == int64(width)*int64(height)*4
		}
		return true
	case 2:
		regionCount := int64(binary.LittleEndian.Uint32(header[5:]))
		if regionCount == 0 || regionCount > 4096 {
			return false
		}
		// Region table plus the two size words must fit.
		return g00HeaderSize+4+regionCount*24+8 <= src.Len()
	default:
		return false
	}
}

func (s g00Scheme) Decode(src *bytesource.Source) (*Result, error) {
	if err := src.Seek(0); err != nil {
		return nil, wrap(SchemeG00, err)
	}
	version, err := src.ReadU8()
	if err != nil {
		return nil, wrap(SchemeG00, err)
	}
	width, err := src.ReadU16()
	if err != nil {
		return nil, wrap(SchemeG00, err)
	}
	height, err := src.ReadU16()
	if err != nil {
		return nil, wrap(SchemeG00, err)
	}

	switch version {
	case 0:
		return s.decodeV0(src, int(width), int(height))
	case 1:
		return s.decodeV1(src, int(width), int(height))
	case 2:
		return s.decodeV2(src)
	default:
		return nil, unsupportedVersion(SchemeG00, "version %d", version)
	}
}

// unpackTail reads the {compressed, uncompressed} size pair at the
// cursor and decompresses the remaining bytes with the given dialect.
func unpackTail(src *bytesource.Source, unpack func([]byte, int) ([]byte, error)) ([]byte, error) {
	if _, err := src.ReadU32(); err != nil { // compressed size, informational
		return nil, wrap(SchemeG00, err)
	}
	uncompressed, err := src.ReadU32()
	if err != nil {
		return nil, wrap(SchemeG00, err)
	}
	packed, err := src.ReadBytes(src.Remaining())
	if err != nil {
		return nil, wrap(SchemeG00, err)
	}
	data, err := unpack(packed, int(uncompressed))
	if err != nil {
		return nil, corrupt(SchemeG00, "unpacking: %v", err)
	}
	return data, nil
}

func (s g00Scheme) decodeV0(src *bytesource.Source, width, height int) (*Result, error) {
	pixels, err := unpackTail(src, compression.UnpackG00Pixels)
	if err != nil {
		return nil, err
	}
	if len(pixels) != width*height*4 {
		return nil, corrupt(SchemeG00, "%d pixel bytes for %dx%d image", len(pixels), width, height)
	}
	img := &Image{Width: width, Height: height, Stride: width * 4, Layout: LayoutBGRA, Pix: pixels}
	if err := img.Validate(); err != nil {
		return nil, corrupt(SchemeG00, "%v", err)
	}
	return &Result{Scheme: SchemeG00, Resource: img}, nil
}

func (s g00Scheme) decodeV1(src *bytesource.Source, width, height int) (*Result, error) {
	data, err := unpackTail(src, compression.UnpackG00Bytes)
	if err != nil {
		return nil, err
	}
	if len(data) < 2 {
		return nil, corrupt(SchemeG00, "color-table payload of %d bytes", len(data))
	}
	tableLen := int(binary.LittleEndian.Uint16(data)) * 4
	if 2+tableLen > len(data) {
		return nil, corrupt(SchemeG00, "color table of %d bytes exceeds %d-byte payload", tableLen, len(data))
	}
	table := data[2 : 2+tableLen]
	indices := data[2+tableLen:]
	if len(indices) != width*height {
		return nil, corrupt(SchemeG00, "%d indices for %dx%d image", len(indices), width, height)
	}

	pixels := make([]byte, 0, len(indices)*4)
	for _, index := range indices {
		base := int(index) * 4
		if base+4 > len(table) {
			return nil, corrupt(SchemeG00, "color index %d outside %d-entry table", index, tableLen/4)
		}
		pixels = append(pixels, table[base:base+4]...)
	}
	img := &Image{Width: width, Height: height, Stride: width * 4, Layout: LayoutBGRA, Pix: pixels}
	if err := img.Validate(); err != nil {
		return nil, corrupt(SchemeG00, "%v", err)
	}
	return &Result{Scheme: SchemeG00, Resource: img}, nil
}

// g00Region is one sprite's bounding box on the sheet. Records with a
// zero right or bottom edge are placeholders and carry no sprite.
type g00Region struct {
	left   int
	top    int
	right  int
	bottom int
}

func (s g00Scheme) decodeV2(src *bytesource.Source) (*Result, error) {
	regionCount, err := src.ReadU32()
	if err != nil {
		return nil, wrap(SchemeG00, err)
	}
	regions := make([]g00Region, 0, regionCount)
	for i := uint32(0); i < regionCount; i++ {
		record, err := src.ReadBytes(24)
		if err != nil {
			return nil, wrap(SchemeG00, err)
		}
		region := g00Region{
			left:   int(binary.LittleEndian.Uint32(record[0:])),
			top:    int(binary.LittleEndian.Uint32(record[4:])),
			right:  int(binary.LittleEndian.Uint32(record[8:])),
			bottom: int(binary.LittleEndian.Uint32(record[12:])),
		}
		if region.right != 0 && region.bottom != 0 {
			regions = append(regions, region)
		}
	}

	data, err := unpackTail(src, compression.UnpackG00Bytes)
	if err != nil {
		return nil, err
	}

	// Sprite directory inside the unpacked payload: one
	// {offset u32, size u32} pair per region record, starting at 4.
	payload := bytesource.New(data)
	if err := payload.Seek(4); err != nil {
		return nil, corrupt(SchemeG00, "sprite directory: %v", err)
	}
	spriteOffsets := make([]int64, 0, regionCount)
	for i := uint32(0); i < regionCount; i++ {
		offset, err := payload.ReadU32()
		if err != nil {
			return nil, corrupt(SchemeG00, "sprite directory: %v", err)
		}
		size, err := payload.ReadU32()
		if err != nil {
			return nil, corrupt(SchemeG00, "sprite directory: %v", err)
		}
		if size != 0 {
			spriteOffsets = append(spriteOffsets, int64(offset))
		}
	}
	if len(spriteOffsets) != len(regions) {
		return nil, corrupt(SchemeG00, "%d sprites for %d regions", len(spriteOffsets), len(regions))
	}

	sprites := make([]Sprite, 0, len(spriteOffsets))
	for i, offset := range spriteOffsets {
		region := regions[i]
		img, err := decodeG00Sprite(payload, offset, region)
		if err != nil {
			return nil, err
		}
		sprites = append(sprites, Sprite{Image: img, X: region.left, Y: region.top})
	}
	return &Result{Scheme: SchemeG00, Resource: &SpriteSheet{Sprites: sprites}}, nil
}

func decodeG00Sprite(payload *bytesource.Source, offset int64, region g00Region) (*Image, error) {
	width := region.right - region.left + 1
	height := region.bottom - region.top + 1
	if width <= 0 || height <= 0 || width > g00MaxDim || height > g00MaxDim {
		return nil, corrupt(SchemeG00, "sprite region %dx%d", width, height)
	}

	chunkCount, err := payload.U16At(offset + 2)
	if err != nil {
		return nil, corrupt(SchemeG00, "sprite header: %v", err)
	}
	pixels := make([]byte, width*height*4)
	chunkOffset := offset + g00SpriteHeaderSize
	for c := uint16(0); c < chunkCount; c++ {
		header, err := payload.BytesAt(chunkOffset, 10)
		if err != nil {
			return nil, corrupt(SchemeG00, "sprite chunk header: %v", err)
		}
		chunkLeft := int(binary.LittleEndian.Uint16(header[0:]))
		chunkTop := int(binary.LittleEndian.Uint16(header[2:]))
		chunkWidth := int(binary.LittleEndian.Uint16(header[6:]))
		chunkHeight := int(binary.LittleEndian.Uint16(header[8:]))
		if chunkLeft+chunkWidth > width || chunkTop+chunkHeight > height {
			return nil, corrupt(SchemeG00, "chunk %dx%d at (%d,%d) outside %dx%d sprite",
				chunkWidth, chunkHeight, chunkLeft, chunkTop, width, height)
		}
		chunkPixels, err := payload.BytesAt(chunkOffset+g00ChunkHeaderSize, int64(chunkWidth*chunkHeight*4))
		if err != nil {
			return nil, corrupt(SchemeG00, "sprite chunk pixels: %v", err)
		}
		blitChunk(pixels, width, chunkPixels, chunkLeft, chunkTop, chunkWidth, chunkHeight)
		chunkOffset += g00ChunkHeaderSize + int64(chunkWidth*chunkHeight*4)
	}

	img := &Image{Width: width, Height: height, Stride: width * 4, Layout: LayoutBGRA, Pix: pixels}
	if err := img.Validate(); err != nil {
		return nil, corrupt(SchemeG00, "%v", err)
	}
	return img, nil
}

// blitChunk copies a chunk's rows into the sprite canvas at the
// chunk's placement. Both buffers are 4 bytes per pixel.
func blitChunk(dest []byte, destWidth int, src []byte, left, top, width, height int) {
	srcIndex := 0
	destIndex := (top*destWidth + left) * 4
	rowGap := (destWidth - width) * 4
	for row := 0; row < height; row++ {
		copy(dest[destIndex:destIndex+width*4], src[srcIndex:srcIndex+width*4])
		destIndex += width*4 + rowGap
		srcIndex += width * 4
	}
}
