// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

// Package bytesource provides a bounds-checked, random-access view over
// a byte region. All format decoders read exclusively through a Source:
// every read either succeeds fully within bounds or fails with an error
// wrapping ErrOutOfBounds. There is no silent truncation.
package bytesource
