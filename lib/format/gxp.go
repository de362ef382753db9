// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"bytes"
	"encoding/binary"
	"strings"
	"unicode/utf16"

	"github.com/Forlos/akaibu/lib/bytesource"
	"github.com/Forlos/akaibu/lib/crypt"
	"github.com/Forlos/akaibu/lib/integrity"
)

// GXP header: 48 bytes of little-endian u32s. The fields the decoder
// consumes are the obfuscation flag at 0x14, the entry count at 0x18,
// the entry-table size at 0x1C, and the data-region offset at 0x28.
//
// Entry records are variable-length: eight u32s {record size, file
// size, reserved, name length in UTF-16 units, two reserved, data
// offset, reserved} followed by the UTF-16LE name. When the header's
// obfuscation flag is nonzero, each record is additionally XOR-mixed
// with the fixed engine password (the record-size word with stream
// offset 0, the rest with stream offset 4). Entry payloads are always
// password-mixed from stream offset 0.

var gxpMagic = []byte{'G', 'X', 'P', 0}

// gxpPassword is the engine's fixed 23-byte obfuscation password.
var gxpPassword = []byte{
	0x40, 0x21, 0x28, 0x38, 0xA6, 0x6E, 0x43, 0xA5, 0x40, 0x21, 0x28, 0x38,
	0xA6, 0x43, 0xA5, 0x64, 0x3E, 0x65, 0x24, 0x20, 0x46, 0x6E, 0x74,
}

const (
	gxpHeaderSize      = 48
	gxpEntryFieldsSize = 0x20
	gxpOffObfuscation  = 0x14
	gxpOffEntryCount   = 0x18
	gxpOffEntrySize    = 0x1C
	gxpOffDataOffset   = 0x28
)

type gxpScheme struct {
	policy integrity.Policy
}

func (gxpScheme) ID() SchemeID { return SchemeGXP }

func (s gxpScheme) withPolicy(policy integrity.Policy) Scheme {
	s.policy = policy
	return s
}

func (s gxpScheme) Detect(src *bytesource.Source) bool {
	magic, err := src.BytesAt(0, int64(len(gxpMagic)))
	if err != nil {
		return false
	}
	return bytes.Equal(magic, gxpMagic) && src.Len() >= gxpHeaderSize
}

func (s gxpScheme) Decode(src *bytesource.Source) (*Result, error) {
	obfuscation, err := src.U32At(gxpOffObfuscation)
	if err != nil {
		return nil, wrap(SchemeGXP, err)
	}
	entryCount, err := src.U32At(gxpOffEntryCount)
	if err != nil {
		return nil, wrap(SchemeGXP, err)
	}
	tableSize, err := src.U32At(gxpOffEntrySize)
	if err != nil {
		return nil, wrap(SchemeGXP, err)
	}
	dataOffset, err := src.U32At(gxpOffDataOffset)
	if err != nil {
		return nil, wrap(SchemeGXP, err)
	}

	table, err := src.BytesAt(gxpHeaderSize, int64(tableSize))
	if err != nil {
		return nil, wrap(SchemeGXP, err)
	}
	obfuscated := obfuscation != 0 && entryCount != 0

	entries := make([]Entry, 0, entryCount)
	pos := 0
	for i := uint32(0); i < entryCount; i++ {
		record, consumed, err := gxpReadRecord(table[pos:], obfuscated)
		if err != nil {
			return nil, err
		}
		if int64(dataOffset)+record.offset+record.size > src.Len() {
			return nil, corrupt(SchemeGXP, "entry %q spans past %d-byte source", record.name, src.Len())
		}
		entries = append(entries, Entry{
			Name:       record.name,
			Offset:     int64(dataOffset) + record.offset,
			StoredSize: record.size,
			Size:       record.size,
			Method:     MethodStore,
		})
		pos += consumed
	}

	archive := NewArchive(entries, func(entry Entry) (*EntryData, error) {
		data, err := src.BytesAt(entry.Offset, entry.StoredSize)
		if err != nil {
			return nil, wrap(SchemeGXP, err)
		}
		crypt.XORPassword(data, gxpPassword, 0, len(data))
		return &EntryData{Bytes: data, TypeHint: Sniff(data)}, nil
	})
	return &Result{Scheme: SchemeGXP, Resource: archive}, nil
}

type gxpRecord struct {
	name   string
	offset int64
	size   int64
}

// gxpReadRecord parses one entry record at the start of table,
// returning the record and the bytes consumed.
func gxpReadRecord(table []byte, obfuscated bool) (gxpRecord, int, error) {
	if len(table) < 4 {
		return gxpRecord{}, 0, corrupt(SchemeGXP, "entry table truncated at record size")
	}
	sizeWord := make([]byte, 4)
	copy(sizeWord, table[:4])
	if obfuscated {
		crypt.XORPassword(sizeWord, gxpPassword, 0, 4)
	}
	recordSize := int(binary.LittleEndian.Uint32(sizeWord))
	if recordSize < gxpEntryFieldsSize || recordSize > len(table) {
		return gxpRecord{}, 0, corrupt(SchemeGXP, "entry record of %d bytes in %d-byte table", recordSize, len(table))
	}

	record := make([]byte, recordSize)
	copy(record, table[:recordSize])
	if obfuscated {
		// The size word was mixed at stream offset 0; the remainder of
		// the record continues the stream at offset 4.
		crypt.XORPassword(record, gxpPassword, 4, recordSize-4)
	}

	fileSize := int64(binary.LittleEndian.Uint32(record[4:]))
	nameLen := int(binary.LittleEndian.Uint32(record[12:]))
	fileOffset := int64(binary.LittleEndian.Uint32(record[24:]))

	nameRegion := record[gxpEntryFieldsSize:]
	if !obfuscated {
		if nameLen*2 > len(nameRegion) {
			return gxpRecord{}, 0, corrupt(SchemeGXP, "entry name of %d UTF-16 units in %d-byte record", nameLen, recordSize)
		}
		nameRegion = nameRegion[:nameLen*2]
	}
	name, err := decodeUTF16Name(nameRegion)
	if err != nil {
		return gxpRecord{}, 0, err
	}
	return gxpRecord{name: name, offset: fileOffset, size: fileSize}, recordSize, nil
}

// decodeUTF16Name decodes UTF-16LE bytes, dropping the NUL padding
// code units archives store after the name.
func decodeUTF16Name(region []byte) (string, error) {
	if len(region)%2 != 0 {
		return "", corrupt(SchemeGXP, "UTF-16 name region of %d bytes", len(region))
	}
	units := make([]uint16, 0, len(region)/2)
	for i := 0; i+1 < len(region); i += 2 {
		unit := binary.LittleEndian.Uint16(region[i:])
		if unit != 0 {
			units = append(units, unit)
		}
	}
	return strings.ReplaceAll(string(utf16.Decode(units)), `\`, "/"), nil
}
