// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"encoding/binary"
	"testing"

	"github.com/Forlos/akaibu/lib/bytesource"
	"github.com/Forlos/akaibu/lib/crypt"
	"github.com/Forlos/akaibu/lib/format/tables"
)

// buildLIBP assembles an encrypted archive with a root directory and
// one file, encrypted with the first embedded key.
func buildLIBP(t *testing.T, fileName string, content []byte) []byte {
	t.Helper()
	cipher, err := crypt.NewBlockCipher(tables.LIBPKeys()[0].Key)
	if err != nil {
		t.Fatalf("NewBlockCipher: %v", err)
	}

	const entryCount = 2 // root directory + one file
	const offsetWords = 1
	indexSize := (entryCount*8 + offsetWords) * 4

	header := make([]byte, crypt.BlockSize)
	copy(header, libpMagic)
	binary.LittleEndian.PutUint32(header[4:], entryCount)
	binary.LittleEndian.PutUint32(header[8:], offsetWords)

	index := make([]byte, crypt.AlignBlock(indexSize))
	// Record 0: unnamed root directory spanning record 1.
	binary.LittleEndian.PutUint16(index[22:], libpTypeDir)
	binary.LittleEndian.PutUint32(index[24:], 1) // first child
	binary.LittleEndian.PutUint32(index[28:], 1) // child count
	// Record 1: the file, offset table slot 0.
	copy(index[32:], fileName)
	binary.LittleEndian.PutUint16(index[32+22:], libpTypeFile)
	binary.LittleEndian.PutUint32(index[32+24:], 0)
	binary.LittleEndian.PutUint32(index[32+28:], uint32(len(content)))
	// Offset table: the file sits at data position 0.
	binary.LittleEndian.PutUint32(index[64:], 0)

	dataBase := (int64(indexSize) + crypt.BlockSize + 1023) >> libpDataAlign
	dataOffset := dataBase << libpDataAlign

	file := make([]byte, dataOffset+int64(crypt.AlignBlock(len(content))))
	copy(file[dataOffset:], content)

	if err := cipher.EncryptBlockAt(header, 0); err != nil {
		t.Fatalf("EncryptBlockAt: %v", err)
	}
	copy(file, header)
	if err := cipher.EncryptStream(index, crypt.BlockSize); err != nil {
		t.Fatalf("EncryptStream: %v", err)
	}
	copy(file[crypt.BlockSize:], index)
	if err := cipher.EncryptStream(file[dataOffset:], uint32(dataOffset)); err != nil {
		t.Fatalf("EncryptStream: %v", err)
	}
	return file
}

func TestLIBPDecode(t *testing.T) {
	content := []byte("libp file body")
	file := buildLIBP(t, "a.bin", content)

	result, err := libpScheme{}.Decode(bytesource.New(file))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	archive, ok := result.Resource.(*Archive)
	if !ok {
		t.Fatalf("resource is %T, want *Archive", result.Resource)
	}
	if len(archive.Entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(archive.Entries))
	}
	entry := archive.Entries[0]
	if entry.Name != "a.bin" {
		t.Errorf("entry name = %q, want a.bin", entry.Name)
	}
	if entry.Size != int64(len(content)) {
		t.Errorf("entry size = %d, want %d", entry.Size, len(content))
	}

	data, err := archive.Open(entry)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if string(data.Bytes) != string(content) {
		t.Errorf("entry bytes = %q, want %q", data.Bytes, content)
	}
}

func TestLIBPDetect(t *testing.T) {
	file := buildLIBP(t, "a.bin", []byte("x"))
	if !(libpScheme{}).Detect(bytesource.New(file)) {
		t.Error("valid archive not detected")
	}
	if (libpScheme{}).Detect(bytesource.New(make([]byte, 64))) {
		t.Error("zero buffer detected")
	}
	if (libpScheme{}).Detect(bytesource.New(nil)) {
		t.Error("empty source detected")
	}
}

func TestLIBPWrongKeyData(t *testing.T) {
	// A forced decode of data no key decrypts fails before parsing.
	_, err := libpScheme{}.Decode(bytesource.New(make([]byte, 64)))
	if !IsDecryptionFailure(err) {
		t.Errorf("Decode error = %v, want decryption failure", err)
	}
}
