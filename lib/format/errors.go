// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"errors"
	"fmt"

	"github.com/Forlos/akaibu/lib/bytesource"
)

// Kind classifies a decode failure. The set is closed: every error the
// engine produces carries exactly one of these.
type Kind int

const (
	// KindUnknownFormat means no registered scheme matched the source.
	KindUnknownFormat Kind = iota

	// KindUnsupportedVersion means the format matched but its version
	// dialect is not one this decoder knows. Unknown versions fail
	// explicitly rather than guessing.
	KindUnsupportedVersion

	// KindCorruptData means a structural invariant was violated:
	// length mismatch, invalid dimensions, implausible entry table.
	KindCorruptData

	// KindIntegrityError means a stored checksum did not match the
	// decoded bytes and the scheme's policy is fatal.
	KindIntegrityError

	// KindDecryptionFailure means key material or block alignment was
	// wrong before any plaintext was seen. A wrong-but-well-formed key
	// surfaces downstream as KindCorruptData instead.
	KindDecryptionFailure

	// KindOutOfBounds means a read past the end of the byte source.
	// Always fatal: it signals truncation or a decoder bug, never a
	// recoverable condition.
	KindOutOfBounds
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindUnknownFormat:
		return "unknown format"
	case KindUnsupportedVersion:
		return "unsupported version"
	case KindCorruptData:
		return "corrupt data"
	case KindIntegrityError:
		return "integrity error"
	case KindDecryptionFailure:
		return "decryption failure"
	case KindOutOfBounds:
		return "out of bounds"
	default:
		return fmt.Sprintf("unknown kind(%d)", int(k))
	}
}

// DecodeError is the engine's error type. Scheme is zero-valued when
// the failure is not attributable to a specific decoder (UnknownFormat
// during resolution).
type DecodeError struct {
	Kind    Kind
	Scheme  SchemeID
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	prefix := e.Kind.String()
	if e.Scheme != 0 {
		prefix = e.Scheme.String() + ": " + prefix
	}
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	case e.Message != "":
		return prefix + ": " + e.Message
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	default:
		return prefix
	}
}

func (e *DecodeError) Unwrap() error { return e.Err }

// errKind reports whether err is a DecodeError of the given kind.
func errKind(err error, kind Kind) bool {
	var decodeError *DecodeError
	return errors.As(err, &decodeError) && decodeError.Kind == kind
}

// IsUnknownFormat reports whether err means no scheme matched.
func IsUnknownFormat(err error) bool { return errKind(err, KindUnknownFormat) }

// IsUnsupportedVersion reports whether err is an unrecognized version
// dialect of a matched format.
func IsUnsupportedVersion(err error) bool { return errKind(err, KindUnsupportedVersion) }

// IsCorruptData reports whether err is a structural corruption.
func IsCorruptData(err error) bool { return errKind(err, KindCorruptData) }

// IsIntegrityError reports whether err is a fatal checksum mismatch.
func IsIntegrityError(err error) bool { return errKind(err, KindIntegrityError) }

// IsDecryptionFailure reports whether err is a key or block-alignment
// problem.
func IsDecryptionFailure(err error) bool { return errKind(err, KindDecryptionFailure) }

// IsOutOfBounds reports whether err is a read past the end of the
// source.
func IsOutOfBounds(err error) bool { return errKind(err, KindOutOfBounds) }

func corrupt(scheme SchemeID, format string, args ...any) error {
	return &DecodeError{Kind: KindCorruptData, Scheme: scheme, Message: fmt.Sprintf(format, args...)}
}

func unsupportedVersion(scheme SchemeID, format string, args ...any) error {
	return &DecodeError{Kind: KindUnsupportedVersion, Scheme: scheme, Message: fmt.Sprintf(format, args...)}
}

func decryptionFailure(scheme SchemeID, err error) error {
	return &DecodeError{Kind: KindDecryptionFailure, Scheme: scheme, Err: err}
}

func integrityError(scheme SchemeID, err error) error {
	return &DecodeError{Kind: KindIntegrityError, Scheme: scheme, Err: err}
}

// wrap classifies an error from a lower layer: out-of-bounds reads
// keep their kind, everything else is structural corruption.
func wrap(scheme SchemeID, err error) error {
	if err == nil {
		return nil
	}
	var decodeError *DecodeError
	if errors.As(err, &decodeError) {
		return err
	}
	kind := KindCorruptData
	if errors.Is(err, bytesource.ErrOutOfBounds) {
		kind = KindOutOfBounds
	}
	return &DecodeError{Kind: kind, Scheme: scheme, Err: err}
}
