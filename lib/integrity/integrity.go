// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

// Package integrity implements the checksum families the archive
// formats carry and the per-scheme verification policy. Some formats
// are known to ship stale checksums, so a mismatch is either fatal or
// a warning depending on the scheme's documented policy, but it is
// never silently dropped.
package integrity

import (
	"crypto/sha1"
	"fmt"
	"hash/adler32"
	"hash/crc32"
)

// CRC32 returns the IEEE CRC-32 of data.
func CRC32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// Adler32 returns the Adler-32 checksum of data.
func Adler32(data []byte) uint32 {
	return adler32.Checksum(data)
}

// SHA1 returns the SHA-1 digest of data. PF8 archives derive their
// entry keystream from the digest of the entry index.
func SHA1(data []byte) [sha1.Size]byte {
	return sha1.Sum(data)
}

// Policy decides how a checksum mismatch is surfaced. There is no
// "ignore" policy: a mismatch always becomes either an error or a
// warning the caller must report.
type Policy int

const (
	// PolicyFatal aborts the decode on mismatch.
	PolicyFatal Policy = iota

	// PolicyWarn surfaces the mismatch as a warning and lets the
	// decode continue. Used for formats that are known to store
	// stale checksums.
	PolicyWarn
)

// String returns the policy's configuration name.
func (p Policy) String() string {
	switch p {
	case PolicyFatal:
		return "fatal"
	case PolicyWarn:
		return "warn"
	default:
		return fmt.Sprintf("unknown(%d)", int(p))
	}
}

// ParsePolicy parses a policy from its configuration name.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "fatal":
		return PolicyFatal, nil
	case "warn":
		return PolicyWarn, nil
	default:
		return 0, fmt.Errorf("unknown checksum policy: %q", name)
	}
}

// Mismatch describes a failed checksum comparison. It is returned as
// the error (fatal policy) or the warning (warn policy) from Check.
type Mismatch struct {
	// Name identifies the checked region, e.g. "entry name crc32"
	// or "entry data adler32".
	Name string

	// Want is the checksum stored in the container.
	Want uint32

	// Got is the checksum computed over the decoded bytes.
	Got uint32
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("%s mismatch: stored %08x, computed %08x", m.Name, m.Want, m.Got)
}

// Check compares a stored checksum against a computed one. On match
// both results are nil. On mismatch, exactly one of (warning, err) is
// a *Mismatch, selected by the policy.
func Check(name string, want, got uint32, policy Policy) (warning, err error) {
	if want == got {
		return nil, nil
	}
	mismatch := &Mismatch{Name: name, Want: want, Got: got}
	if policy == PolicyWarn {
		return mismatch, nil
	}
	return nil, mismatch
}
