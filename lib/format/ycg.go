// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"bytes"

	"github.com/Forlos/akaibu/lib/bytesource"
	"github.com/Forlos/akaibu/lib/compression"
	"github.com/Forlos/akaibu/lib/integrity"
)

// YCG header layout (little-endian):
//
//	0x00  magic "YCG\x00"
//	0x04  width u32
//	0x08  height u32
//	0x10  version u32
//	0x20  uncompressed size of the first stream u32
//	0x24  compressed size of the first stream u32
//	0x38  pixel data
//
// Version 1 stores the BGRA pixels as two concatenated zlib streams:
// the first inflates to at least the declared size and is truncated to
// it, the second supplies the remainder of the image.

var ycgMagic = []byte{'Y', 'C', 'G', 0}

const ycgDataOffset = 0x38

type ycgScheme struct {
	policy integrity.Policy
}

func (ycgScheme) ID() SchemeID { return SchemeYCG }

func (s ycgScheme) withPolicy(policy integrity.Policy) Scheme {
	s.policy = policy
	return s
}

func (s ycgScheme) Detect(src *bytesource.Source) bool {
	magic, err := src.BytesAt(0, int64(len(ycgMagic)))
	if err != nil {
		return false
	}
	return bytes.Equal(magic, ycgMagic) && src.Len() > ycgDataOffset
}

func (s ycgScheme) Decode(src *bytesource.Source) (*Result, error) {
	width, err := src.U32At(4)
	if err != nil {
		return nil, wrap(SchemeYCG, err)
	}
	height, err := src.U32At(8)
	if err != nil {
		return nil, wrap(SchemeYCG, err)
	}
	version, err := src.U32At(16)
	if err != nil {
		return nil, wrap(SchemeYCG, err)
	}
	if version != 1 {
		return nil, unsupportedVersion(SchemeYCG, "version %d", version)
	}
	firstSize, err := src.U32At(32)
	if err != nil {
		return nil, wrap(SchemeYCG, err)
	}
	firstCompressed, err := src.U32At(36)
	if err != nil {
		return nil, wrap(SchemeYCG, err)
	}

	firstRegion, err := src.BytesAt(ycgDataOffset, int64(firstCompressed))
	if err != nil {
		return nil, wrap(SchemeYCG, err)
	}
	first, err := compression.InflateAll(firstRegion)
	if err != nil {
		return nil, corrupt(SchemeYCG, "first stream: %v", err)
	}
	if len(first) < int(firstSize) {
		return nil, corrupt(SchemeYCG, "first stream inflated to %d bytes, header declares %d", len(first), firstSize)
	}
	first = first[:firstSize]

	secondOffset := int64(ycgDataOffset) + int64(firstCompressed)
	secondRegion, err := src.BytesAt(secondOffset, src.Len()-secondOffset)
	if err != nil {
		return nil, wrap(SchemeYCG, err)
	}
	second, err := compression.InflateAll(secondRegion)
	if err != nil {
		return nil, corrupt(SchemeYCG, "second stream: %v", err)
	}

	pixels := append(first, second...)
	if len(pixels) != int(width)*int(height)*4 {
		return nil, corrupt(SchemeYCG, "%d pixel bytes for %dx%d image", len(pixels), width, height)
	}
	img := &Image{Width: int(width), Height: int(height), Stride: int(width) * 4, Layout: LayoutBGRA, Pix: pixels}
	if err := img.Validate(); err != nil {
		return nil, corrupt(SchemeYCG, "%v", err)
	}
	return &Result{Scheme: SchemeYCG, Resource: img}, nil
}
