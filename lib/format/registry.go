// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"sync"

	"github.com/Forlos/akaibu/lib/bytesource"
	"github.com/Forlos/akaibu/lib/format/tables"
	"github.com/Forlos/akaibu/lib/integrity"
)

// Registry is an ordered, immutable set of schemes. Resolution probes
// them in registration order and returns the first match, so two
// registries built from the same list always agree.
type Registry struct {
	schemes []Scheme
	byID    map[SchemeID]Scheme
}

// NewRegistry builds a registry probing schemes in the given order.
func NewRegistry(schemes ...Scheme) *Registry {
	byID := make(map[SchemeID]Scheme, len(schemes))
	for _, scheme := range schemes {
		byID[scheme.ID()] = scheme
	}
	return &Registry{schemes: schemes, byID: byID}
}

// DefaultRegistry returns the shared registry of all built-in schemes.
// Magic-bearing formats probe before heuristic ones; G00 has no magic
// at all and goes last. Checksum policies come from the embedded
// policy table.
var DefaultRegistry = sync.OnceValue(func() *Registry {
	order := []Scheme{
		gxpScheme{},
		ypfScheme{},
		ycgScheme{},
		pf8Scheme{},
		libpScheme{},
		g00Scheme{},
	}
	for i, scheme := range order {
		order[i] = scheme.withPolicy(tables.ChecksumPolicy(scheme.ID().String()))
	}
	return NewRegistry(order...)
})

// Scheme returns the registered scheme with the given ID.
func (r *Registry) Scheme(id SchemeID) (Scheme, bool) {
	scheme, ok := r.byID[id]
	return scheme, ok
}

// Resolve probes schemes in priority order and returns the first that
// recognizes the source. Probing leaves the source's cursor wherever
// the last probe put it; decoders seek before reading.
func (r *Registry) Resolve(src *bytesource.Source) (Scheme, error) {
	for _, scheme := range r.schemes {
		if scheme.Detect(src.Clone()) {
			return scheme, nil
		}
	}
	return nil, &DecodeError{Kind: KindUnknownFormat, Message: "no registered scheme matched"}
}

// Option adjusts one Decode call.
type Option func(*decodeConfig)

type decodeConfig struct {
	forced    SchemeID
	policy    integrity.Policy
	setPolicy bool
}

// WithScheme skips detection and decodes with the named scheme.
func WithScheme(id SchemeID) Option {
	return func(cfg *decodeConfig) { cfg.forced = id }
}

// WithChecksumPolicy overrides the scheme's embedded checksum policy
// for this call.
func WithChecksumPolicy(policy integrity.Policy) Option {
	return func(cfg *decodeConfig) {
		cfg.policy = policy
		cfg.setPolicy = true
	}
}

// Decode resolves (or accepts) a scheme and runs its pipeline.
func (r *Registry) Decode(src *bytesource.Source, opts ...Option) (*Result, error) {
	var cfg decodeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var scheme Scheme
	if cfg.forced != schemeNone {
		forced, ok := r.Scheme(cfg.forced)
		if !ok {
			return nil, &DecodeError{Kind: KindUnknownFormat, Scheme: cfg.forced, Message: "scheme not registered"}
		}
		scheme = forced
	} else {
		resolved, err := r.Resolve(src)
		if err != nil {
			return nil, err
		}
		scheme = resolved
	}
	if cfg.setPolicy {
		scheme = scheme.withPolicy(cfg.policy)
	}
	return scheme.Decode(src.Clone())
}
