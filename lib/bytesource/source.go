// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

package bytesource

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrOutOfBounds is the sentinel wrapped by every failed read. A read
// past the end of a Source is always a data-corruption or programming
// signal, never something a decoder recovers from.
var ErrOutOfBounds = errors.New("read out of bounds")

// Source is a random-access, bounds-checked view over a byte region
// with a cursor. The backing bytes are either held in memory or read
// on demand from an io.ReaderAt; the backing is never mutated through
// a Source, so a Source and all its clones may be shared across
// goroutines as long as each goroutine uses its own cursor (see Clone).
type Source struct {
	data   []byte      // in-memory backing; nil when reader-backed
	reader io.ReaderAt // reader backing; nil when in-memory
	size   int64
	pos    int64
}

// New returns a Source over in-memory bytes. The Source borrows data;
// the caller must not mutate it for the lifetime of the Source.
func New(data []byte) *Source {
	return &Source{data: data, size: int64(len(data))}
}

// NewReaderAt returns a Source over a positioned reader covering
// [0, size). Reads are forwarded to the reader on demand.
func NewReaderAt(reader io.ReaderAt, size int64) *Source {
	return &Source{reader: reader, size: size}
}

// Clone returns an independent Source sharing the same immutable
// backing, with its cursor positioned at the start. Detection probes
// read through clones so the original cursor is never disturbed.
func (s *Source) Clone() *Source {
	return &Source{data: s.data, reader: s.reader, size: s.size}
}

// Len returns the total size of the viewed region in bytes.
func (s *Source) Len() int64 { return s.size }

// Pos returns the current cursor position.
func (s *Source) Pos() int64 { return s.pos }

// Remaining returns the number of bytes between the cursor and the end.
func (s *Source) Remaining() int64 { return s.size - s.pos }

// Seek moves the cursor to the absolute offset.
func (s *Source) Seek(offset int64) error {
	if offset < 0 || offset > s.size {
		return fmt.Errorf("seek to %d in %d-byte source: %w", offset, s.size, ErrOutOfBounds)
	}
	s.pos = offset
	return nil
}

// Skip advances the cursor by n bytes.
func (s *Source) Skip(n int64) error {
	return s.Seek(s.pos + n)
}

// check validates that [offset, offset+n) lies within the source.
func (s *Source) check(offset, n int64) error {
	if n < 0 || offset < 0 || offset+n > s.size || offset+n < offset {
		return fmt.Errorf("read of %d bytes at %d in %d-byte source: %w", n, offset, s.size, ErrOutOfBounds)
	}
	return nil
}

// BytesAt returns a fresh copy of the n bytes at the absolute offset.
// Returning a copy keeps the backing immutable: decoders decrypt and
// transform the returned slice in place without aliasing the source.
func (s *Source) BytesAt(offset, n int64) ([]byte, error) {
	if err := s.check(offset, n); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if s.data != nil {
		copy(buf, s.data[offset:offset+n])
		return buf, nil
	}
	if _, err := s.reader.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("reading %d bytes at %d: %w", n, offset, err)
	}
	return buf, nil
}

// ReadBytes returns a fresh copy of the next n bytes and advances the
// cursor.
func (s *Source) ReadBytes(n int64) ([]byte, error) {
	buf, err := s.BytesAt(s.pos, n)
	if err != nil {
		return nil, err
	}
	s.pos += n
	return buf, nil
}

// ReadU8 reads one byte at the cursor.
func (s *Source) ReadU8() (uint8, error) {
	buf, err := s.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadU16 reads a little-endian uint16 at the cursor.
func (s *Source) ReadU16() (uint16, error) {
	buf, err := s.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

// ReadU32 reads a little-endian uint32 at the cursor.
func (s *Source) ReadU32() (uint32, error) {
	buf, err := s.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// ReadU32BE reads a big-endian uint32 at the cursor.
func (s *Source) ReadU32BE() (uint32, error) {
	buf, err := s.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf), nil
}

// ReadU64 reads a little-endian uint64 at the cursor.
func (s *Source) ReadU64() (uint64, error) {
	buf, err := s.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

// U16At reads a little-endian uint16 at the absolute offset without
// moving the cursor.
func (s *Source) U16At(offset int64) (uint16, error) {
	buf, err := s.BytesAt(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

// U32At reads a little-endian uint32 at the absolute offset without
// moving the cursor.
func (s *Source) U32At(offset int64) (uint32, error) {
	buf, err := s.BytesAt(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// U64At reads a little-endian uint64 at the absolute offset without
// moving the cursor.
func (s *Source) U64At(offset int64) (uint64, error) {
	buf, err := s.BytesAt(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

// ReadCString reads bytes from the cursor up to (and consuming) the
// first NUL, returning the bytes before it. Fails with ErrOutOfBounds
// if the source ends before a NUL is found.
func (s *Source) ReadCString() ([]byte, error) {
	start := s.pos
	for off := start; off < s.size; off++ {
		b, err := s.BytesAt(off, 1)
		if err != nil {
			return nil, err
		}
		if b[0] == 0 {
			buf, err := s.BytesAt(start, off-start)
			if err != nil {
				return nil, err
			}
			s.pos = off + 1
			return buf, nil
		}
	}
	return nil, fmt.Errorf("unterminated string at %d: %w", start, ErrOutOfBounds)
}
