// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"fmt"

	"github.com/Forlos/akaibu/lib/bytesource"
	"github.com/Forlos/akaibu/lib/integrity"
)

// SchemeID identifies a registered format decoder. The zero value
// means "no scheme".
type SchemeID int

const (
	schemeNone SchemeID = iota

	// SchemeGXP decodes GXP archives (fixed-password XOR obfuscation).
	SchemeGXP

	// SchemeYPF decodes YPF archives (permuted name sizes, zlib
	// entries, per-entry checksums).
	SchemeYPF

	// SchemeYCG decodes YCG images (split zlib BGRA payload).
	SchemeYCG

	// SchemePF8 decodes PF8 archives (SHA-1 keystream obfuscation).
	SchemePF8

	// SchemeLIBP decodes LIBP archives (block-encrypted index and
	// data, known-key table).
	SchemeLIBP

	// SchemeG00 decodes G00 images (LZ dialects, sprite regions).
	// Magicless: always probed last.
	SchemeG00
)

// String names the scheme as source→product, matching the keys of the
// embedded checksum policy table.
func (id SchemeID) String() string {
	switch id {
	case SchemeGXP:
		return "GXP→dir"
	case SchemeYPF:
		return "YPF→dir"
	case SchemeYCG:
		return "YCG→PNG"
	case SchemePF8:
		return "PF8→dir"
	case SchemeLIBP:
		return "LIBP→dir"
	case SchemeG00:
		return "G00→PNG"
	default:
		return fmt.Sprintf("scheme(%d)", int(id))
	}
}

// Scheme is one registered format decoder. Implementations are
// stateless values; the sealed withPolicy method keeps the set closed
// to this package so the registry's priority order stays meaningful.
type Scheme interface {
	// ID returns the scheme's identity.
	ID() SchemeID

	// Detect reports whether the source looks like this format. It
	// must read only through the source's random-access methods and
	// must not assume the probe succeeds: short sources return false,
	// never an error.
	Detect(src *bytesource.Source) bool

	// Decode runs the full pipeline and materializes the resource.
	// The returned error is always a *DecodeError.
	Decode(src *bytesource.Source) (*Result, error)

	// withPolicy returns a copy of the scheme with the given checksum
	// policy. Sealed: only this package implements Scheme.
	withPolicy(policy integrity.Policy) Scheme
}

// Result is a successful decode: the materialized resource plus any
// non-fatal warnings accumulated along the way (checksum mismatches
// under a warn policy).
type Result struct {
	Scheme   SchemeID
	Resource Resource
	Warnings []string
}
