// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/japanese"

	"github.com/Forlos/akaibu/lib/bytesource"
	"github.com/Forlos/akaibu/lib/compression"
	"github.com/Forlos/akaibu/lib/format/tables"
	"github.com/Forlos/akaibu/lib/integrity"
)

// YPF header: {magic "YPF\x00", version u32, entry count u32, entry
// table size u32, 16 bytes padding}, 32 bytes total.
//
// Entry records follow at offset 32: {name CRC32 u32, stored name
// length u8, obfuscated name, reserved u8, flags u8, size u32, stored
// size u32, data offset u64, data Adler-32 u32}. The real name length
// is a per-version permutation table indexed by the bitwise complement
// of the stored byte. Names are stored bit-inverted (version 500 adds
// an XOR with 0x36) and encoded as SHIFT-JIS. Flag 1 marks a
// zlib-compressed entry.
//
// Both stored checksums are verified under the scheme's policy: name
// CRC32 at parse time over the obfuscated name bytes, data Adler-32 on
// Open over the stored bytes. Archives in the wild routinely
// carry stale sums after repacking, so the default policy is warn.

var ypfMagic = []byte{'Y', 'P', 'F', 0}

const ypfHeaderSize = 32

type ypfScheme struct {
	policy integrity.Policy
}

func (ypfScheme) ID() SchemeID { return SchemeYPF }

func (s ypfScheme) withPolicy(policy integrity.Policy) Scheme {
	s.policy = policy
	return s
}

func (s ypfScheme) Detect(src *bytesource.Source) bool {
	magic, err := src.BytesAt(0, int64(len(ypfMagic)))
	if err != nil {
		return false
	}
	return bytes.Equal(magic, ypfMagic) && src.Len() >= ypfHeaderSize
}

func (s ypfScheme) Decode(src *bytesource.Source) (*Result, error) {
	version, err := src.U32At(4)
	if err != nil {
		return nil, wrap(SchemeYPF, err)
	}
	entryCount, err := src.U32At(8)
	if err != nil {
		return nil, wrap(SchemeYPF, err)
	}
	nameTable, ok := tables.YPFNameTable(version)
	if !ok {
		return nil, unsupportedVersion(SchemeYPF, "archive version %d", version)
	}

	if err := src.Seek(ypfHeaderSize); err != nil {
		return nil, wrap(SchemeYPF, err)
	}
	var warnings []string
	entries := make([]Entry, 0, entryCount)
	for i := uint32(0); i < entryCount; i++ {
		entry, warning, err := s.readEntry(src, version, nameTable)
		if err != nil {
			return nil, err
		}
		if warning != "" {
			warnings = append(warnings, warning)
		}
		if entry.Offset+entry.StoredSize > src.Len() {
			return nil, corrupt(SchemeYPF, "entry %q spans past %d-byte source", entry.Name, src.Len())
		}
		entries = append(entries, entry)
	}

	policy := s.policy
	archive := NewArchive(entries, func(entry Entry) (*EntryData, error) {
		stored, err := src.BytesAt(entry.Offset, entry.StoredSize)
		if err != nil {
			return nil, wrap(SchemeYPF, err)
		}
		var entryWarnings []string
		warning, err := integrity.Check(
			fmt.Sprintf("entry %q data adler32", entry.Name),
			entry.DataChecksum, integrity.Adler32(stored), policy)
		if err != nil {
			return nil, integrityError(SchemeYPF, err)
		}
		if warning != nil {
			entryWarnings = append(entryWarnings, warning.Error())
		}

		data := stored
		if entry.Method == MethodZlib {
			data, err = compression.Inflate(stored, int(entry.Size))
			if err != nil {
				return nil, corrupt(SchemeYPF, "entry %q: %v", entry.Name, err)
			}
		}
		return &EntryData{Bytes: data, Warnings: entryWarnings, TypeHint: Sniff(data)}, nil
	})
	return &Result{Scheme: SchemeYPF, Resource: archive, Warnings: warnings}, nil
}

func (s ypfScheme) readEntry(src *bytesource.Source, version uint32, nameTable *[256]byte) (Entry, string, error) {
	nameChecksum, err := src.ReadU32()
	if err != nil {
		return Entry{}, "", wrap(SchemeYPF, err)
	}
	storedLen, err := src.ReadU8()
	if err != nil {
		return Entry{}, "", wrap(SchemeYPF, err)
	}
	nameLen := int64(nameTable[^storedLen])
	nameBytes, err := src.ReadBytes(nameLen)
	if err != nil {
		return Entry{}, "", wrap(SchemeYPF, err)
	}

	name, err := decodeYPFName(nameBytes, version)
	if err != nil {
		return Entry{}, "", corrupt(SchemeYPF, "entry name: %v", err)
	}
	var warning string
	mismatch, err := integrity.Check(
		fmt.Sprintf("entry %q name crc32", name),
		nameChecksum, integrity.CRC32(nameBytes), s.policy)
	if err != nil {
		return Entry{}, "", integrityError(SchemeYPF, err)
	}
	if mismatch != nil {
		warning = mismatch.Error()
	}

	if _, err := src.ReadU8(); err != nil { // reserved
		return Entry{}, "", wrap(SchemeYPF, err)
	}
	flags, err := src.ReadU8()
	if err != nil {
		return Entry{}, "", wrap(SchemeYPF, err)
	}
	size, err := src.ReadU32()
	if err != nil {
		return Entry{}, "", wrap(SchemeYPF, err)
	}
	storedSize, err := src.ReadU32()
	if err != nil {
		return Entry{}, "", wrap(SchemeYPF, err)
	}
	offset, err := src.ReadU64()
	if err != nil {
		return Entry{}, "", wrap(SchemeYPF, err)
	}
	dataChecksum, err := src.ReadU32()
	if err != nil {
		return Entry{}, "", wrap(SchemeYPF, err)
	}

	method := MethodStore
	if flags == 1 {
		method = MethodZlib
	}
	return Entry{
		Name:         name,
		Offset:       int64(offset),
		StoredSize:   int64(storedSize),
		Size:         int64(size),
		Method:       method,
		NameChecksum: nameChecksum,
		DataChecksum: dataChecksum,
	}, warning, nil
}

// decodeYPFName de-obfuscates and decodes a stored entry name: bitwise
// complement, the version-500 XOR, then SHIFT-JIS to UTF-8.
func decodeYPFName(stored []byte, version uint32) (string, error) {
	raw := make([]byte, len(stored))
	for i, b := range stored {
		raw[i] = ^b
	}
	if version == 500 {
		for i := range raw {
			raw[i] ^= 0x36
		}
	}
	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decoding SHIFT-JIS: %w", err)
	}
	return strings.ReplaceAll(string(decoded), `\`, "/"), nil
}
