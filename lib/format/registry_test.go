// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"testing"

	"github.com/Forlos/akaibu/lib/bytesource"
	"github.com/Forlos/akaibu/lib/integrity"
)

func TestDefaultRegistryOrder(t *testing.T) {
	// The probe order is part of the engine's contract: magic-bearing
	// formats first, the magicless heuristic G00 last.
	want := []SchemeID{SchemeGXP, SchemeYPF, SchemeYCG, SchemePF8, SchemeLIBP, SchemeG00}
	registry := DefaultRegistry()
	if len(registry.schemes) != len(want) {
		t.Fatalf("registry holds %d schemes, want %d", len(registry.schemes), len(want))
	}
	for i, id := range want {
		if got := registry.schemes[i].ID(); got != id {
			t.Errorf("scheme %d = %v, want %v", i, got, id)
		}
	}
}

func TestRegistryResolve(t *testing.T) {
	registry := DefaultRegistry()

	tests := []struct {
		name string
		data []byte
		want SchemeID
	}{
		{"ycg", buildYCG(t, 2, 2, make([]byte, 16), 8), SchemeYCG},
		{"pf8", buildPF8([]pf8TestEntry{{name: "a", data: []byte{1}}}), SchemePF8},
		{"gxp", buildGXP([]gxpTestEntry{{name: "a", data: []byte{1}}}, false), SchemeGXP},
		{"ypf", buildYPF(t, []ypfTestEntry{{name: "a", data: []byte{1}}}), SchemeYPF},
		{"libp", buildLIBP(t, "a.bin", []byte("x")), SchemeLIBP},
		{"g00", buildG00(0, 2, 1, 8, []byte{0x03, 1, 2, 3, 4, 5, 6}), SchemeG00},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheme, err := registry.Resolve(bytesource.New(tt.data))
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if scheme.ID() != tt.want {
				t.Errorf("resolved %v, want %v", scheme.ID(), tt.want)
			}
		})
	}
}

func TestRegistryResolveDeterministic(t *testing.T) {
	registry := DefaultRegistry()
	data := buildYCG(t, 2, 2, make([]byte, 16), 8)
	for i := 0; i < 8; i++ {
		scheme, err := registry.Resolve(bytesource.New(data))
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if scheme.ID() != SchemeYCG {
			t.Fatalf("run %d resolved %v", i, scheme.ID())
		}
	}
}

func TestRegistryUnknownFormat(t *testing.T) {
	registry := DefaultRegistry()
	for _, data := range [][]byte{nil, make([]byte, 64), []byte("not an archive at all")} {
		if _, err := registry.Resolve(bytesource.New(data)); !IsUnknownFormat(err) {
			t.Errorf("Resolve(%d bytes) error = %v, want unknown format", len(data), err)
		}
	}
}

func TestRegistryDecodeWithScheme(t *testing.T) {
	registry := DefaultRegistry()
	data := buildYCG(t, 2, 2, make([]byte, 16), 8)

	result, err := registry.Decode(bytesource.New(data), WithScheme(SchemeYCG))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if result.Scheme != SchemeYCG {
		t.Errorf("decoded as %v, want %v", result.Scheme, SchemeYCG)
	}

	// Forcing the wrong scheme must fail inside that scheme, not fall
	// back to detection.
	if _, err := registry.Decode(bytesource.New(data), WithScheme(SchemeYPF)); err == nil {
		t.Error("forced YPF decode of a YCG image succeeded")
	}
}

func TestRegistryDecodeWithChecksumPolicy(t *testing.T) {
	registry := DefaultRegistry()
	data := buildYPF(t, []ypfTestEntry{{name: "a.bin", data: []byte("payload"), staleAdler: true}})

	result, err := registry.Decode(bytesource.New(data), WithChecksumPolicy(integrity.PolicyFatal))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	archive := result.Resource.(*Archive)
	if _, err := archive.Open(archive.Entries[0]); !IsIntegrityError(err) {
		t.Errorf("Open error = %v, want integrity error", err)
	}

	// The embedded default for YPF is warn.
	result, err = registry.Decode(bytesource.New(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	archive = result.Resource.(*Archive)
	entryData, err := archive.Open(archive.Entries[0])
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(entryData.Warnings) != 1 {
		t.Errorf("got %d warnings, want 1: %v", len(entryData.Warnings), entryData.Warnings)
	}
}

func TestSchemeIDString(t *testing.T) {
	tests := []struct {
		id   SchemeID
		want string
	}{
		{SchemeG00, "G00→PNG"},
		{SchemeYCG, "YCG→PNG"},
		{SchemePF8, "PF8→dir"},
		{SchemeGXP, "GXP→dir"},
		{SchemeYPF, "YPF→dir"},
		{SchemeLIBP, "LIBP→dir"},
	}
	for _, tt := range tests {
		if got := tt.id.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.id), got, tt.want)
		}
	}
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want TypeHint
	}{
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n', 0}, HintPNG},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, HintJPEG},
		{"bmp", []byte("BM6"), HintBMP},
		{"ico", []byte{0, 0, 1, 0, 1}, HintICO},
		{"riff", []byte("RIFFxxxxWAVE"), HintRIFF},
		{"unknown", []byte("plain text"), HintUnknown},
		{"empty", nil, HintUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sniff(tt.data); got != tt.want {
				t.Errorf("Sniff = %v, want %v", got, tt.want)
			}
		})
	}
}
