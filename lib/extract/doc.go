// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

// Package extract fans archive entries out over a bounded worker pool.
// Entries decode independently, so one corrupt entry never aborts its
// siblings: each result carries its own error, decoded bytes, content
// digest, and any checksum warnings. Cancelling the context stops
// scheduling further entries; results already produced stay valid.
package extract
