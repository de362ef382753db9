// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/Forlos/akaibu/lib/bytesource"
	"github.com/Forlos/akaibu/lib/crypt"
	"github.com/Forlos/akaibu/lib/format/tables"
	"github.com/Forlos/akaibu/lib/integrity"
)

// LIBP archives are encrypted end to end in 16-byte blocks, each block
// tweaked by its absolute offset (see crypt.BlockCipher). There is no
// plaintext magic: detection trial-decrypts the first block with every
// key in the embedded table and accepts the key that reveals "LIBP".
//
// Decrypted header block: {magic "LIBP", entry count u32, offset-table
// word count u32, reserved u32}. The index follows at offset 16:
// entry count 32-byte records, then the offset table of u32s. Each
// record is {22-byte NUL-padded name, type u16 (0 directory, 1 file),
// link u32, size u32}: directories link to the first child record and
// size counts children; files link into the offset table, which holds
// data positions in 1 KiB units relative to the data region. The data
// region starts at the first 1 KiB boundary past the index; file bytes
// are decrypted per block with their absolute offset as tweak.

var libpMagic = []byte("LIBP")

const (
	libpRecordSize   = 32
	libpNameSize     = 22
	libpTypeDir      = 0
	libpTypeFile     = 1
	libpDataAlign    = 10 // data positions are in 1 KiB units
	libpMaxNameWalks = 4096
)

type libpScheme struct {
	policy integrity.Policy
}

func (libpScheme) ID() SchemeID { return SchemeLIBP }

func (s libpScheme) withPolicy(policy integrity.Policy) Scheme {
	s.policy = policy
	return s
}

// findKey trial-decrypts the archive's first block with each known key
// and returns the cipher that reveals the magic.
func libpFindKey(src *bytesource.Source) (*crypt.BlockCipher, bool) {
	for _, key := range tables.LIBPKeys() {
		cipher, err := crypt.NewBlockCipher(key.Key)
		if err != nil {
			continue
		}
		block, err := src.BytesAt(0, crypt.BlockSize)
		if err != nil {
			return nil, false
		}
		if err := cipher.DecryptBlockAt(block, 0); err != nil {
			continue
		}
		if bytes.Equal(block[:4], libpMagic) {
			return cipher, true
		}
	}
	return nil, false
}

func (s libpScheme) Detect(src *bytesource.Source) bool {
	_, ok := libpFindKey(src)
	return ok
}

func (s libpScheme) Decode(src *bytesource.Source) (*Result, error) {
	cipher, ok := libpFindKey(src)
	if !ok {
		return nil, &DecodeError{Kind: KindDecryptionFailure, Scheme: SchemeLIBP, Message: "no known key reveals the archive header"}
	}

	header, err := src.BytesAt(0, crypt.BlockSize)
	if err != nil {
		return nil, wrap(SchemeLIBP, err)
	}
	if err := cipher.DecryptBlockAt(header, 0); err != nil {
		return nil, decryptionFailure(SchemeLIBP, err)
	}
	entryCount := binary.LittleEndian.Uint32(header[4:])
	offsetWords := binary.LittleEndian.Uint32(header[8:])

	indexSize := (int64(entryCount)*8 + int64(offsetWords)) * 4
	recordsSize := int64(entryCount) * libpRecordSize
	if indexSize < recordsSize {
		return nil, corrupt(SchemeLIBP, "index of %d bytes cannot hold %d entry records", indexSize, entryCount)
	}
	index, err := src.BytesAt(crypt.BlockSize, int64(crypt.AlignBlock(int(indexSize))))
	if err != nil {
		return nil, wrap(SchemeLIBP, err)
	}
	if err := cipher.DecryptStream(index, crypt.BlockSize); err != nil {
		return nil, decryptionFailure(SchemeLIBP, err)
	}
	index = index[:indexSize]

	offsetTable := make([]int64, 0, offsetWords)
	for pos := recordsSize; pos+4 <= indexSize; pos += 4 {
		offsetTable = append(offsetTable, int64(binary.LittleEndian.Uint32(index[pos:])))
	}

	// The data region begins at the next 1 KiB boundary past header
	// and index.
	dataBase := (indexSize + crypt.BlockSize + 1023) >> libpDataAlign

	type libpRecord struct {
		name string
		typ  uint16
		link uint32
		size uint32
	}
	records := make([]libpRecord, entryCount)
	for i := range records {
		raw := index[int64(i)*libpRecordSize:]
		record := libpRecord{
			name: strings.TrimRight(string(raw[:libpNameSize]), "\x00"),
			typ:  binary.LittleEndian.Uint16(raw[22:]),
			link: binary.LittleEndian.Uint32(raw[24:]),
			size: binary.LittleEndian.Uint32(raw[28:]),
		}
		if record.typ != libpTypeDir && record.typ != libpTypeFile {
			return nil, corrupt(SchemeLIBP, "entry %d has type %d", i, record.typ)
		}
		records[i] = record
	}

	// Directory records span their children by record index; a file's
	// path is recovered by walking the containing directories upward.
	type libpDir struct {
		id    int
		name  string
		first int
		last  int
	}
	var dirs []libpDir
	for i, record := range records {
		if record.typ == libpTypeDir {
			dirs = append(dirs, libpDir{
				id:    i,
				name:  record.name,
				first: int(record.link),
				last:  int(record.link) + int(record.size),
			})
		}
	}
	pathOf := func(id int) (string, error) {
		var parts []string
		cur := id
		for walk := 0; cur != 0; walk++ {
			if walk > libpMaxNameWalks {
				return "", corrupt(SchemeLIBP, "directory tree cycle at record %d", id)
			}
			found := false
			for d := len(dirs) - 1; d >= 0; d-- {
				if cur >= dirs[d].first && cur < dirs[d].last {
					parts = append([]string{dirs[d].name}, parts...)
					cur = dirs[d].id
					found = true
					break
				}
			}
			if !found {
				return "", corrupt(SchemeLIBP, "record %d outside every directory", id)
			}
		}
		return strings.TrimPrefix(strings.Join(parts, "/"), "/"), nil
	}

	var entries []Entry
	for i, record := range records {
		if record.typ != libpTypeFile {
			continue
		}
		if int(record.link) >= len(offsetTable) {
			return nil, corrupt(SchemeLIBP, "entry %q links to offset %d of %d", record.name, record.link, len(offsetTable))
		}
		dir, err := pathOf(i)
		if err != nil {
			return nil, err
		}
		name := record.name
		if dir != "" {
			name = dir + "/" + name
		}
		offset := (offsetTable[record.link] + dataBase) << libpDataAlign
		size := int64(record.size)
		if offset+int64(crypt.AlignBlock(int(size))) > src.Len() {
			return nil, corrupt(SchemeLIBP, "entry %q spans past %d-byte source", name, src.Len())
		}
		entries = append(entries, Entry{
			Name:       name,
			Offset:     offset,
			StoredSize: size,
			Size:       size,
			Method:     MethodStore,
		})
	}

	archive := NewArchive(entries, func(entry Entry) (*EntryData, error) {
		aligned := int64(crypt.AlignBlock(int(entry.StoredSize)))
		data, err := src.BytesAt(entry.Offset, aligned)
		if err != nil {
			return nil, wrap(SchemeLIBP, err)
		}
		if err := cipher.DecryptStream(data, uint32(entry.Offset)); err != nil {
			return nil, decryptionFailure(SchemeLIBP, err)
		}
		data = data[:entry.StoredSize]
		return &EntryData{Bytes: data, TypeHint: Sniff(data)}, nil
	})
	return &Result{Scheme: SchemeLIBP, Resource: archive}, nil
}
