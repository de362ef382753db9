// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/Forlos/akaibu/lib/bytesource"
	"github.com/Forlos/akaibu/lib/format"
)

// Extractor drains an archive. The zero value is usable: one worker
// per CPU, no image conversion, the default registry, the default
// logger.
type Extractor struct {
	// Parallelism bounds the worker pool. Zero or negative means
	// runtime.GOMAXPROCS(0).
	Parallelism int

	// ConvertImages re-probes each extracted entry against the
	// registry and, when it resolves to an image format, attaches the
	// decoded pixels to the result.
	ConvertImages bool

	// Registry resolves nested decodes. Nil means the default.
	Registry *format.Registry

	// Logger receives per-entry failure reports. Nil means
	// slog.Default().
	Logger *slog.Logger
}

// EntryResult is the outcome for a single entry. Exactly one of Err
// or Data is meaningful; Warnings may accompany either.
type EntryResult struct {
	// Data is the decoded entry bytes.
	Data []byte

	// Digest is the BLAKE3 digest of Data, for deduplication and
	// manifest use.
	Digest [32]byte

	// TypeHint is a content sniff of Data.
	TypeHint format.TypeHint

	// Resource holds the nested decode when ConvertImages resolved
	// the entry to an image format.
	Resource format.Resource

	// Warnings are non-fatal findings, checksum mismatches mostly.
	Warnings []string

	// Err is the entry's decode failure. Other entries are unaffected.
	Err error
}

// Report collects per-entry outcomes keyed by entry name.
type Report struct {
	Results map[string]EntryResult
}

// Failed returns the names of entries whose extraction failed.
func (r *Report) Failed() []string {
	var names []string
	for name, result := range r.Results {
		if result.Err != nil {
			names = append(names, name)
		}
	}
	return names
}

func (e *Extractor) parallelism() int {
	if e.Parallelism > 0 {
		return e.Parallelism
	}
	return runtime.GOMAXPROCS(0)
}

func (e *Extractor) registry() *format.Registry {
	if e.Registry != nil {
		return e.Registry
	}
	return format.DefaultRegistry()
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// ExtractAll decodes every entry of the archive. The returned report
// holds one result per scheduled entry; when ctx is cancelled early,
// the report covers the entries scheduled so far and the context's
// error is returned alongside it.
func (e *Extractor) ExtractAll(ctx context.Context, archive *format.Archive) (*Report, error) {
	report := &Report{Results: make(map[string]EntryResult, len(archive.Entries))}

	jobs := make(chan format.Entry)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < e.parallelism(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range jobs {
				result := e.extractEntry(entry, archive)
				if result.Err != nil {
					e.logger().Warn("entry extraction failed",
						"entry", entry.Name, "error", result.Err)
				}
				mu.Lock()
				report.Results[entry.Name] = result
				mu.Unlock()
			}
		}()
	}

	var cancelled error
	for _, entry := range archive.Entries {
		select {
		case <-ctx.Done():
			cancelled = ctx.Err()
		case jobs <- entry:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()
	return report, cancelled
}

func (e *Extractor) extractEntry(entry format.Entry, archive *format.Archive) EntryResult {
	data, err := archive.Open(entry)
	if err != nil {
		return EntryResult{Err: err}
	}
	result := EntryResult{
		Data:     data.Bytes,
		Digest:   blake3.Sum256(data.Bytes),
		TypeHint: data.TypeHint,
		Warnings: data.Warnings,
	}
	if e.ConvertImages {
		result.Resource = e.convert(data.Bytes)
	}
	return result
}

// convert attempts a nested image decode. Failure is not an error:
// most entries are not images, and a hint is all the caller loses.
func (e *Extractor) convert(data []byte) format.Resource {
	nested, err := e.registry().Decode(bytesource.New(data))
	if err != nil {
		return nil
	}
	switch nested.Resource.(type) {
	case *format.Image, *format.SpriteSheet:
		return nested.Resource
	default:
		// Nested archives are left to the caller; recursing here
		// could chase attacker-controlled depth.
		return nil
	}
}
