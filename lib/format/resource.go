// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

package format

import "fmt"

// Resource is the product of a decode: an Image, a SpriteSheet, or an
// Archive. The union is sealed by the unexported method.
type Resource interface {
	resource()
}

func (*Image) resource()       {}
func (*SpriteSheet) resource() {}
func (*Archive) resource()     {}

// Layout describes the channel order of an Image's pixel buffer.
type Layout int

const (
	// LayoutIndexed is one palette index per pixel.
	LayoutIndexed Layout = iota

	// LayoutGray is one luminance byte per pixel.
	LayoutGray

	// LayoutRGB is three bytes per pixel, red first.
	LayoutRGB

	// LayoutRGBA is four bytes per pixel, red first, straight alpha.
	LayoutRGBA

	// LayoutBGRA is four bytes per pixel, blue first, straight alpha.
	// The native order of most decoded formats here.
	LayoutBGRA
)

// BytesPerPixel returns the buffer stride per pixel for the layout.
func (l Layout) BytesPerPixel() int {
	switch l {
	case LayoutIndexed, LayoutGray:
		return 1
	case LayoutRGB:
		return 3
	case LayoutRGBA, LayoutBGRA:
		return 4
	default:
		return 0
	}
}

// String returns the layout's name.
func (l Layout) String() string {
	switch l {
	case LayoutIndexed:
		return "indexed"
	case LayoutGray:
		return "gray"
	case LayoutRGB:
		return "rgb"
	case LayoutRGBA:
		return "rgba"
	case LayoutBGRA:
		return "bgra"
	default:
		return fmt.Sprintf("layout(%d)", int(l))
	}
}

// Image is a decoded pixel buffer. Pix holds Height rows of Stride
// bytes each; Stride is at least Width*Layout.BytesPerPixel().
// Palette is non-nil only for LayoutIndexed, as RGBA quads.
type Image struct {
	Width   int
	Height  int
	Stride  int
	Layout  Layout
	Pix     []byte
	Palette []byte
}

// Validate checks the buffer's internal consistency.
func (img *Image) Validate() error {
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", img.Width, img.Height)
	}
	bpp := img.Layout.BytesPerPixel()
	if bpp == 0 {
		return fmt.Errorf("invalid layout %v", img.Layout)
	}
	if img.Stride < img.Width*bpp {
		return fmt.Errorf("stride %d too small for width %d at %d bytes/pixel", img.Stride, img.Width, bpp)
	}
	if len(img.Pix) < img.Stride*img.Height {
		return fmt.Errorf("pixel buffer %d bytes, need %d", len(img.Pix), img.Stride*img.Height)
	}
	if img.Layout == LayoutIndexed {
		if len(img.Palette) == 0 || len(img.Palette)%4 != 0 {
			return fmt.Errorf("indexed image with %d-byte palette", len(img.Palette))
		}
	} else if img.Palette != nil {
		return fmt.Errorf("%v image carries a palette", img.Layout)
	}
	return nil
}

// Sprite is one sheet member: its decoded image and its placement on
// the sheet's logical canvas.
type Sprite struct {
	Image *Image
	X     int
	Y     int
}

// SpriteSheet is a multi-image resource. Each sprite is a complete
// standalone image; the placement coordinates are metadata for callers
// that want to recompose the sheet.
type SpriteSheet struct {
	Sprites []Sprite
}

// Method is how an archive entry's bytes are stored.
type Method int

const (
	// MethodStore is uncompressed.
	MethodStore Method = iota

	// MethodZlib is a zlib stream with known uncompressed size.
	MethodZlib
)

// Entry is one file inside an Archive. Offsets are absolute within
// the source. Checksum fields are zero when the format stores none.
type Entry struct {
	Name         string
	Offset       int64
	StoredSize   int64
	Size         int64
	Method       Method
	NameChecksum uint32
	DataChecksum uint32
}

// EntryData is one extracted entry: its decoded bytes, any non-fatal
// warnings, and a content sniff of the result.
type EntryData struct {
	Bytes    []byte
	Warnings []string
	TypeHint TypeHint
}

// Archive is a decoded container. Entries are in index order; Open
// extracts one entry independently of the others, so callers may open
// entries concurrently.
type Archive struct {
	Entries []Entry
	open    func(entry Entry) (*EntryData, error)
}

// NewArchive builds an archive over entries with the given opener.
// The opener must be safe for concurrent calls.
func NewArchive(entries []Entry, open func(Entry) (*EntryData, error)) *Archive {
	return &Archive{Entries: entries, open: open}
}

// Open decodes the named entry's bytes. The error is a *DecodeError.
func (a *Archive) Open(entry Entry) (*EntryData, error) {
	return a.open(entry)
}
