// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"bytes"
	"strings"

	"github.com/Forlos/akaibu/lib/bytesource"
	"github.com/Forlos/akaibu/lib/crypt"
	"github.com/Forlos/akaibu/lib/integrity"
)

// PF8 header layout (little-endian):
//
//	0x00  magic "pf8"
//	0x03  index size u32 (counting from offset 7)
//	0x07  entry count u32
//	0x0B  entry table
//
// Each entry is {name length u32, name bytes, reserved u32, offset u32,
// size u32} with backslash-separated paths. Entry payloads are stored
// XORed with a repeating 20-byte keystream: the SHA-1 of the index
// region starting at offset 7.

var pf8Magic = []byte("pf8")

const (
	pf8IndexStart   = 7
	pf8EntriesStart = 11
)

type pf8Scheme struct {
	policy integrity.Policy
}

func (pf8Scheme) ID() SchemeID { return SchemePF8 }

func (s pf8Scheme) withPolicy(policy integrity.Policy) Scheme {
	s.policy = policy
	return s
}

func (s pf8Scheme) Detect(src *bytesource.Source) bool {
	magic, err := src.BytesAt(0, int64(len(pf8Magic)))
	if err != nil {
		return false
	}
	return bytes.Equal(magic, pf8Magic) && src.Len() >= pf8EntriesStart
}

func (s pf8Scheme) Decode(src *bytesource.Source) (*Result, error) {
	indexSize, err := src.U32At(3)
	if err != nil {
		return nil, wrap(SchemePF8, err)
	}
	entryCount, err := src.U32At(7)
	if err != nil {
		return nil, wrap(SchemePF8, err)
	}

	// The keystream is the digest of the index region, entry count
	// included.
	index, err := src.BytesAt(pf8IndexStart, int64(indexSize))
	if err != nil {
		return nil, wrap(SchemePF8, err)
	}
	digest := integrity.SHA1(index)
	keystream := digest[:]

	if err := src.Seek(pf8EntriesStart); err != nil {
		return nil, wrap(SchemePF8, err)
	}
	entries := make([]Entry, 0, entryCount)
	for i := uint32(0); i < entryCount; i++ {
		nameLen, err := src.ReadU32()
		if err != nil {
			return nil, wrap(SchemePF8, err)
		}
		nameBytes, err := src.ReadBytes(int64(nameLen))
		if err != nil {
			return nil, wrap(SchemePF8, err)
		}
		if _, err := src.ReadU32(); err != nil { // reserved
			return nil, wrap(SchemePF8, err)
		}
		offset, err := src.ReadU32()
		if err != nil {
			return nil, wrap(SchemePF8, err)
		}
		size, err := src.ReadU32()
		if err != nil {
			return nil, wrap(SchemePF8, err)
		}
		if int64(offset)+int64(size) > src.Len() {
			return nil, corrupt(SchemePF8, "entry %d spans [%d, %d) past %d-byte source", i, offset, int64(offset)+int64(size), src.Len())
		}
		entries = append(entries, Entry{
			Name:       strings.ReplaceAll(string(nameBytes), `\`, "/"),
			Offset:     int64(offset),
			StoredSize: int64(size),
			Size:       int64(size),
			Method:     MethodStore,
		})
	}

	archive := NewArchive(entries, func(entry Entry) (*EntryData, error) {
		data, err := src.BytesAt(entry.Offset, entry.StoredSize)
		if err != nil {
			return nil, wrap(SchemePF8, err)
		}
		crypt.XORKeystream(data, keystream)
		return &EntryData{Bytes: data, TypeHint: Sniff(data)}, nil
	})
	return &Result{Scheme: SchemePF8, Resource: archive}, nil
}
