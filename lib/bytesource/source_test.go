// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

package bytesource

import (
	"bytes"
	"errors"
	"testing"
)

func TestCursorReads(t *testing.T) {
	src := New([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A})

	u8, err := src.ReadU8()
	if err != nil {
		t.Fatalf("ReadU8 failed: %v", err)
	}
	if u8 != 0x01 {
		t.Errorf("ReadU8 = %#x, want 0x01", u8)
	}

	u16, err := src.ReadU16()
	if err != nil {
		t.Fatalf("ReadU16 failed: %v", err)
	}
	if u16 != 0x0302 {
		t.Errorf("ReadU16 = %#x, want 0x0302", u16)
	}

	u32, err := src.ReadU32()
	if err != nil {
		t.Fatalf("ReadU32 failed: %v", err)
	}
	if u32 != 0x07060504 {
		t.Errorf("ReadU32 = %#x, want 0x07060504", u32)
	}

	if src.Pos() != 7 {
		t.Errorf("Pos = %d, want 7", src.Pos())
	}
	if src.Remaining() != 3 {
		t.Errorf("Remaining = %d, want 3", src.Remaining())
	}
}

func TestAbsoluteReadsDoNotMoveCursor(t *testing.T) {
	src := New([]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x00, 0x11})

	u32, err := src.U32At(2)
	if err != nil {
		t.Fatalf("U32At failed: %v", err)
	}
	if u32 != 0x00FFEEDD {
		t.Errorf("U32At(2) = %#x, want 0x00FFEEDD", u32)
	}
	if src.Pos() != 0 {
		t.Errorf("cursor moved to %d after absolute read", src.Pos())
	}
}

func TestBigEndianRead(t *testing.T) {
	src := New([]byte{0x12, 0x34, 0x56, 0x78})
	u32, err := src.ReadU32BE()
	if err != nil {
		t.Fatalf("ReadU32BE failed: %v", err)
	}
	if u32 != 0x12345678 {
		t.Errorf("ReadU32BE = %#x, want 0x12345678", u32)
	}
}

func TestOutOfBounds(t *testing.T) {
	src := New([]byte{0x01, 0x02})

	tests := []struct {
		name string
		op   func() error
	}{
		{"read past end", func() error { _, err := src.Clone().BytesAt(0, 3); return err }},
		{"read at negative offset", func() error { _, err := src.Clone().BytesAt(-1, 1); return err }},
		{"seek past end", func() error { return src.Clone().Seek(3) }},
		{"seek negative", func() error { return src.Clone().Seek(-1) }},
		{"u32 in short source", func() error { c := src.Clone(); _, err := c.ReadU32(); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op()
			if !errors.Is(err, ErrOutOfBounds) {
				t.Errorf("got %v, want ErrOutOfBounds", err)
			}
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	src := New([]byte{1, 2, 3, 4})
	if _, err := src.ReadU16(); err != nil {
		t.Fatalf("ReadU16 failed: %v", err)
	}

	clone := src.Clone()
	if clone.Pos() != 0 {
		t.Errorf("clone cursor = %d, want 0", clone.Pos())
	}
	if _, err := clone.ReadU32(); err != nil {
		t.Fatalf("clone ReadU32 failed: %v", err)
	}
	if src.Pos() != 2 {
		t.Errorf("original cursor moved to %d after clone read", src.Pos())
	}
}

func TestReadBytesReturnsCopy(t *testing.T) {
	backing := []byte{1, 2, 3, 4}
	src := New(backing)
	buf, err := src.ReadBytes(4)
	if err != nil {
		t.Fatalf("ReadBytes failed: %v", err)
	}
	buf[0] = 0xFF
	if backing[0] != 1 {
		t.Error("mutating the returned slice changed the backing bytes")
	}
}

func TestReaderBackedSource(t *testing.T) {
	backing := []byte{0x10, 0x20, 0x30, 0x40, 0x50}
	src := NewReaderAt(bytes.NewReader(backing), int64(len(backing)))

	u32, err := src.U32At(1)
	if err != nil {
		t.Fatalf("U32At failed: %v", err)
	}
	if u32 != 0x50403020 {
		t.Errorf("U32At(1) = %#x, want 0x50403020", u32)
	}

	if _, err := src.BytesAt(2, 4); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("read past declared size: got %v, want ErrOutOfBounds", err)
	}
}

func TestReadCString(t *testing.T) {
	src := New([]byte{'a', 'b', 'c', 0, 'd'})
	s, err := src.ReadCString()
	if err != nil {
		t.Fatalf("ReadCString failed: %v", err)
	}
	if string(s) != "abc" {
		t.Errorf("ReadCString = %q, want \"abc\"", s)
	}
	if src.Pos() != 4 {
		t.Errorf("cursor = %d after ReadCString, want 4", src.Pos())
	}

	if _, err := src.ReadCString(); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("unterminated string: got %v, want ErrOutOfBounds", err)
	}
}
