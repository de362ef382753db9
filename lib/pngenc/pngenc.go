// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

package pngenc

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/Forlos/akaibu/lib/format"
)

// Encode serializes the image as a PNG. The source layout decides the
// PNG color model: gray stays gray, indexed becomes paletted, the RGB
// and BGRA variants become straight-alpha NRGBA.
func Encode(img *format.Image) ([]byte, error) {
	if err := img.Validate(); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}

	var encodable image.Image
	switch img.Layout {
	case format.LayoutGray:
		gray := image.NewGray(image.Rect(0, 0, img.Width, img.Height))
		copyRows(gray.Pix, gray.Stride, img, 1)
		encodable = gray

	case format.LayoutIndexed:
		palette := make(color.Palette, 0, len(img.Palette)/4)
		for i := 0; i+4 <= len(img.Palette); i += 4 {
			palette = append(palette, color.NRGBA{
				R: img.Palette[i],
				G: img.Palette[i+1],
				B: img.Palette[i+2],
				A: img.Palette[i+3],
			})
		}
		paletted := image.NewPaletted(image.Rect(0, 0, img.Width, img.Height), palette)
		for y := 0; y < img.Height; y++ {
			row := img.Pix[y*img.Stride:]
			for x := 0; x < img.Width; x++ {
				if int(row[x]) >= len(palette) {
					return nil, fmt.Errorf("encoding png: palette index %d outside %d-color palette", row[x], len(palette))
				}
				paletted.Pix[y*paletted.Stride+x] = row[x]
			}
		}
		encodable = paletted

	case format.LayoutRGB:
		nrgba := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
		for y := 0; y < img.Height; y++ {
			src := img.Pix[y*img.Stride:]
			dst := nrgba.Pix[y*nrgba.Stride:]
			for x := 0; x < img.Width; x++ {
				dst[x*4+0] = src[x*3+0]
				dst[x*4+1] = src[x*3+1]
				dst[x*4+2] = src[x*3+2]
				dst[x*4+3] = 0xFF
			}
		}
		encodable = nrgba

	case format.LayoutRGBA:
		nrgba := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
		copyRows(nrgba.Pix, nrgba.Stride, img, 4)
		encodable = nrgba

	case format.LayoutBGRA:
		nrgba := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
		for y := 0; y < img.Height; y++ {
			src := img.Pix[y*img.Stride:]
			dst := nrgba.Pix[y*nrgba.Stride:]
			for x := 0; x < img.Width; x++ {
				dst[x*4+0] = src[x*4+2]
				dst[x*4+1] = src[x*4+1]
				dst[x*4+2] = src[x*4+0]
				dst[x*4+3] = src[x*4+3]
			}
		}
		encodable = nrgba

	default:
		return nil, fmt.Errorf("encoding png: unsupported layout %v", img.Layout)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, encodable); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

// copyRows copies rows between buffers of the same pixel width,
// dropping any source stride padding.
func copyRows(dst []byte, dstStride int, img *format.Image, bpp int) {
	for y := 0; y < img.Height; y++ {
		copy(dst[y*dstStride:y*dstStride+img.Width*bpp], img.Pix[y*img.Stride:])
	}
}
