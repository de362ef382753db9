// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"path/filepath"
	"testing"
)

func TestEntryPath(t *testing.T) {
	tests := []struct {
		name    string
		entry   string
		want    string
		wantErr bool
	}{
		{"plain", "a.bin", filepath.Join("out", "a.bin"), false},
		{"nested", "dir/sub/a.bin", filepath.Join("out", "dir", "sub", "a.bin"), false},
		{"parent escape", "../a.bin", "", true},
		{"nested escape", "dir/../../a.bin", "", true},
		{"absolute", "/etc/passwd", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := entryPath("out", tt.entry)
			if (err != nil) != tt.wantErr {
				t.Fatalf("entryPath(%q) error = %v, wantErr %v", tt.entry, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("entryPath(%q) = %q, want %q", tt.entry, got, tt.want)
			}
		})
	}
}

func TestParseSchemeName(t *testing.T) {
	id, err := parseSchemeName("YPF")
	if err != nil {
		t.Fatalf("parseSchemeName: %v", err)
	}
	if id.String() != "YPF→dir" {
		t.Errorf("parsed %v", id)
	}
	if _, err := parseSchemeName("rar"); err == nil {
		t.Error("unknown scheme accepted")
	}
}
