// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

// Package tables holds the embedded per-format lookup data: YPF
// name-size permutation tables, LIBP game keys, and the per-scheme
// checksum policy. The tables are YAML documents compiled in with
// go:embed, parsed once, and immutable afterward. They are data the
// decoders consume, not logic: supporting a new game build usually
// means adding an entry here, not changing a decoder.
package tables

import (
	_ "embed"
	"encoding/hex"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Forlos/akaibu/lib/integrity"
)

//go:embed ypf_name_tables.yaml
var ypfNameTablesYAML []byte

//go:embed libp_keys.yaml
var libpKeysYAML []byte

//go:embed checksum_policy.yaml
var checksumPolicyYAML []byte

// LIBPKey is a named 128-bit key for a LIBP-family archive build.
type LIBPKey struct {
	Name string
	Key  []byte
}

type ypfTablesDoc struct {
	// Versions maps an archive version to the byte pairs swapped in
	// that version's name-size permutation. The table is the identity
	// permutation with the listed pairs exchanged.
	Versions map[uint32][][2]int `yaml:"versions"`
}

type libpKeysDoc struct {
	Keys []struct {
		Name string `yaml:"name"`
		Key  string `yaml:"key"`
	} `yaml:"keys"`
}

type checksumPolicyDoc struct {
	Policies map[string]string `yaml:"policies"`
}

var loadYPFTables = sync.OnceValue(func() map[uint32]*[256]byte {
	var doc ypfTablesDoc
	if err := yaml.Unmarshal(ypfNameTablesYAML, &doc); err != nil {
		panic("tables: parsing ypf_name_tables.yaml: " + err.Error())
	}
	result := make(map[uint32]*[256]byte, len(doc.Versions))
	for version, swaps := range doc.Versions {
		var table [256]byte
		for i := range table {
			table[i] = byte(i)
		}
		for _, pair := range swaps {
			a, b := pair[0], pair[1]
			if a < 0 || a > 255 || b < 0 || b > 255 {
				panic(fmt.Sprintf("tables: ypf version %d swap (%d, %d) out of byte range", version, a, b))
			}
			table[a], table[b] = table[b], table[a]
		}
		result[version] = &table
	}
	return result
})

var loadLIBPKeys = sync.OnceValue(func() []LIBPKey {
	var doc libpKeysDoc
	if err := yaml.Unmarshal(libpKeysYAML, &doc); err != nil {
		panic("tables: parsing libp_keys.yaml: " + err.Error())
	}
	keys := make([]LIBPKey, 0, len(doc.Keys))
	for _, entry := range doc.Keys {
		key, err := hex.DecodeString(entry.Key)
		if err != nil {
			panic("tables: libp key " + entry.Name + ": " + err.Error())
		}
		if len(key) != 16 {
			panic(fmt.Sprintf("tables: libp key %s is %d bytes, want 16", entry.Name, len(key)))
		}
		keys = append(keys, LIBPKey{Name: entry.Name, Key: key})
	}
	return keys
})

var loadChecksumPolicies = sync.OnceValue(func() map[string]integrity.Policy {
	var doc checksumPolicyDoc
	if err := yaml.Unmarshal(checksumPolicyYAML, &doc); err != nil {
		panic("tables: parsing checksum_policy.yaml: " + err.Error())
	}
	result := make(map[string]integrity.Policy, len(doc.Policies))
	for scheme, name := range doc.Policies {
		policy, err := integrity.ParsePolicy(name)
		if err != nil {
			panic("tables: checksum policy for " + scheme + ": " + err.Error())
		}
		result[scheme] = policy
	}
	return result
})

// YPFNameTable returns the name-size permutation for a YPF archive
// version, or false if the version is not supported.
func YPFNameTable(version uint32) (*[256]byte, bool) {
	table, ok := loadYPFTables()[version]
	return table, ok
}

// LIBPKeys returns the known LIBP game keys in table order.
func LIBPKeys() []LIBPKey {
	return loadLIBPKeys()
}

// ChecksumPolicy returns the configured policy for a scheme name.
// Schemes without an entry verify fatally: downgrading a mismatch to
// a warning is an explicit, documented choice.
func ChecksumPolicy(scheme string) integrity.Policy {
	if policy, ok := loadChecksumPolicies()[scheme]; ok {
		return policy
	}
	return integrity.PolicyFatal
}
