// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/Forlos/akaibu/lib/bytesource"
	"github.com/Forlos/akaibu/lib/compression"
	"github.com/Forlos/akaibu/lib/integrity"
)

type ypfTestEntry struct {
	name     string
	data     []byte
	compress bool
	// staleAdler stores a wrong data checksum, the way repacked
	// archives in the wild do.
	staleAdler bool
}

// buildYPF assembles a version-464 archive (identity name table).
func buildYPF(t *testing.T, entries []ypfTestEntry) []byte {
	t.Helper()
	const version = 464

	type stored struct {
		record  []byte
		payload []byte
	}
	tableSize := 0
	payloadSize := 0
	prepared := make([]stored, 0, len(entries))
	for _, e := range entries {
		payload := append([]byte{}, e.data...)
		if e.compress {
			deflated, err := compression.Deflate(e.data)
			if err != nil {
				t.Fatalf("Deflate: %v", err)
			}
			payload = deflated
		}
		prepared = append(prepared, stored{payload: payload})
		tableSize += 4 + 1 + len(e.name) + 1 + 1 + 4 + 4 + 8 + 4
		payloadSize += len(payload)
	}

	offset := ypfHeaderSize + tableSize
	var table bytes.Buffer
	for i, e := range entries {
		payload := prepared[i].payload

		storedName := make([]byte, len(e.name))
		for j := range storedName {
			storedName[j] = ^e.name[j]
		}
		binary.Write(&table, binary.LittleEndian, integrity.CRC32(storedName))
		table.WriteByte(^byte(len(e.name))) // identity table index
		table.Write(storedName)
		table.WriteByte(0) // reserved
		if e.compress {
			table.WriteByte(1)
		} else {
			table.WriteByte(0)
		}
		binary.Write(&table, binary.LittleEndian, uint32(len(e.data)))
		binary.Write(&table, binary.LittleEndian, uint32(len(payload)))
		binary.Write(&table, binary.LittleEndian, uint64(offset))
		adler := integrity.Adler32(payload)
		if e.staleAdler {
			adler ^= 0xDEAD
		}
		binary.Write(&table, binary.LittleEndian, adler)
		offset += len(payload)
	}

	var file bytes.Buffer
	file.Write(ypfMagic)
	binary.Write(&file, binary.LittleEndian, uint32(version))
	binary.Write(&file, binary.LittleEndian, uint32(len(entries)))
	binary.Write(&file, binary.LittleEndian, uint32(table.Len()))
	file.Write(make([]byte, 16))
	file.Write(table.Bytes())
	for _, s := range prepared {
		file.Write(s.payload)
	}
	return file.Bytes()
}

func TestYPFDecode(t *testing.T) {
	file := buildYPF(t, []ypfTestEntry{
		{name: `se\boom.ogg`, data: []byte("raw entry")},
		{name: "script.ybn", data: bytes.Repeat([]byte("yuris"), 20), compress: true},
	})

	result, err := (ypfScheme{policy: integrity.PolicyWarn}).Decode(bytesource.New(file))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
	archive := result.Resource.(*Archive)
	if len(archive.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(archive.Entries))
	}
	if archive.Entries[0].Name != "se/boom.ogg" {
		t.Errorf("entry name = %q, want se/boom.ogg", archive.Entries[0].Name)
	}
	if archive.Entries[1].Method != MethodZlib {
		t.Errorf("entry method = %v, want zlib", archive.Entries[1].Method)
	}

	data, err := archive.Open(archive.Entries[0])
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if string(data.Bytes) != "raw entry" {
		t.Errorf("entry bytes = %q, want raw entry", data.Bytes)
	}
	data, err = archive.Open(archive.Entries[1])
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(data.Bytes, bytes.Repeat([]byte("yuris"), 20)) {
		t.Errorf("inflated entry bytes = %q", data.Bytes)
	}
}

func TestYPFStaleChecksum(t *testing.T) {
	file := buildYPF(t, []ypfTestEntry{
		{name: "a.bin", data: []byte("payload"), staleAdler: true},
	})

	t.Run("warn policy surfaces a warning", func(t *testing.T) {
		result, err := (ypfScheme{policy: integrity.PolicyWarn}).Decode(bytesource.New(file))
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		archive := result.Resource.(*Archive)
		data, err := archive.Open(archive.Entries[0])
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if len(data.Warnings) != 1 {
			t.Fatalf("got %d warnings, want 1: %v", len(data.Warnings), data.Warnings)
		}
		if string(data.Bytes) != "payload" {
			t.Errorf("entry bytes = %q, want payload", data.Bytes)
		}
	})

	t.Run("fatal policy aborts the open", func(t *testing.T) {
		result, err := (ypfScheme{policy: integrity.PolicyFatal}).Decode(bytesource.New(file))
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		archive := result.Resource.(*Archive)
		_, err = archive.Open(archive.Entries[0])
		if !IsIntegrityError(err) {
			t.Errorf("Open error = %v, want integrity error", err)
		}
	})
}

func TestYPFUnsupportedVersion(t *testing.T) {
	file := buildYPF(t, []ypfTestEntry{{name: "a", data: []byte{1}}})
	binary.LittleEndian.PutUint32(file[4:], 999)

	_, err := (ypfScheme{}).Decode(bytesource.New(file))
	if !IsUnsupportedVersion(err) {
		t.Errorf("Decode error = %v, want unsupported version", err)
	}
}

func TestYPFDetect(t *testing.T) {
	file := buildYPF(t, []ypfTestEntry{{name: "a", data: []byte{1}}})
	if !(ypfScheme{}).Detect(bytesource.New(file)) {
		t.Error("valid archive not detected")
	}
	if (ypfScheme{}).Detect(bytesource.New([]byte("YPF"))) {
		t.Error("3-byte prefix detected")
	}
}
