// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

// Package revocation implements the local revocation registry: the
// list of license keys whose grants have been withdrawn after
// issuance (refunds, chargebacks, leaked keys).
//
// The registry is a JSONC file (JSON extended with // comments and
// trailing commas) shipped alongside product releases and hand-audited
// by support staff, which is why comments are allowed in it. Lookup
// semantics are exact string match on the license key — no patterns,
// no prefixes, no ranges. The registry is open-world: a missing file
// or an absent key means "not revoked", so a registry naming keys that
// were never issued is harmless.
//
// Entries are append-only. Un-revoking is not a supported operation;
// restoring a customer means issuing a fresh license with a new key.
package revocation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/tidwall/jsonc"
)

// Entry records one revoked license key.
type Entry struct {
	// LicenseKey is the exact key being revoked.
	LicenseKey string `json:"license_key"`

	// RevokedAt is when the revocation was recorded, Unix seconds.
	RevokedAt int64 `json:"revoked_at"`

	// Reason is a short internal note ("chargeback", "key leaked").
	// Never shown to the license holder.
	Reason string `json:"reason,omitempty"`
}

// Registry is an immutable in-memory view of the registry file,
// loaded fresh for every entitlement evaluation.
type Registry struct {
	revision int
	entries  map[string]Entry
	order    []string
}

// registryFile is the JSON shape of the registry document.
type registryFile struct {
	Revision int     `json:"revision"`
	Revoked  []Entry `json:"revoked"`
}

// maxRegistrySize bounds registry input; even thousands of entries fit
// in well under a megabyte.
const maxRegistrySize = 4 * 1024 * 1024

// Empty returns a registry with no entries, the state of the world
// when no registry file ships.
func Empty() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Parse strips JSONC comments and trailing commas from data, then
// decodes and validates the registry. Duplicate keys and structurally
// invalid entries are errors: a registry that exists but cannot be
// read cleanly is treated as corrupt, never silently as empty.
func Parse(data []byte) (*Registry, error) {
	if len(data) > maxRegistrySize {
		return nil, fmt.Errorf("revocation: registry exceeds size limit")
	}

	stripped := jsonc.ToJSON(data)

	var file registryFile
	decoder := json.NewDecoder(bytes.NewReader(stripped))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("revocation: parsing registry: %w", err)
	}

	registry := Empty()
	registry.revision = file.Revision
	for i, entry := range file.Revoked {
		if entry.LicenseKey == "" {
			return nil, fmt.Errorf("revocation: entry %d has empty license_key", i)
		}
		if entry.RevokedAt <= 0 {
			return nil, fmt.Errorf("revocation: entry %d has missing or negative revoked_at", i)
		}
		if _, exists := registry.entries[entry.LicenseKey]; exists {
			return nil, fmt.Errorf("revocation: entry %d duplicates an earlier license_key", i)
		}
		registry.entries[entry.LicenseKey] = entry
		registry.order = append(registry.order, entry.LicenseKey)
	}
	return registry, nil
}

// Load reads the registry file at path. A missing file yields the
// empty registry: shipping without a registry, or before the first
// revocation, is the normal state. Any other failure (unreadable file,
// corrupt contents) is an error.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Empty(), nil
		}
		return nil, fmt.Errorf("revocation: reading registry: %w", err)
	}
	return Parse(data)
}

// Contains reports whether the exact license key is revoked.
func (r *Registry) Contains(licenseKey string) bool {
	_, revoked := r.entries[licenseKey]
	return revoked
}

// Lookup returns the revocation entry for the exact license key.
func (r *Registry) Lookup(licenseKey string) (Entry, bool) {
	entry, revoked := r.entries[licenseKey]
	return entry, revoked
}

// Len returns the number of revoked keys.
func (r *Registry) Len() int { return len(r.entries) }

// Revision returns the registry document's revision counter.
func (r *Registry) Revision() int { return r.revision }

// Entries returns the revocations in file order.
func (r *Registry) Entries() []Entry {
	entries := make([]Entry, 0, len(r.order))
	for _, key := range r.order {
		entries = append(entries, r.entries[key])
	}
	return entries
}
