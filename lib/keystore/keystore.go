// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

// Package keystore holds the public signing keys a costscope binary
// trusts. The table is compiled into the binary: no file I/O, no
// remote fetch, no mutation after process start. Changing what the
// product trusts means shipping a release, which is the point — the
// trust root travels inside the signed artifact users install.
//
// Key rotation is a release-time workflow. A new issuing key is
// appended to the table before it starts signing; an old key is kept
// while any license issued under it may still be unexpired, then
// removed. Each entry carries the window of issue instants it is
// valid for, so a retired key cannot validate documents issued after
// its retirement even if it lingers in the table.
package keystore

import (
	"crypto/ed25519"
	"errors"
	"fmt"
)

// Lookup and verification failures. Callers map these into their own
// failure vocabulary: the license verifier reports an unknown or
// out-of-window key as an unknown-key failure, while the bundle vault
// treats any of these as an integrity failure.
var (
	// ErrUnknownKey means the key id is not in the table.
	ErrUnknownKey = errors.New("keystore: unknown key id")

	// ErrKeyOutsideWindow means the key exists but the document was
	// issued outside the key's validity window.
	ErrKeyOutsideWindow = errors.New("keystore: document issued outside key validity window")

	// ErrInvalidSignature means the signature does not verify under
	// the named key.
	ErrInvalidSignature = errors.New("keystore: signature verification failed")
)

// Entry is one trusted signing key.
type Entry struct {
	// KeyID is the identifier license documents and bundle headers
	// reference. Convention: the year-month the key entered service,
	// "2026-01".
	KeyID string

	// PublicKey is the Ed25519 public key.
	PublicKey ed25519.PublicKey

	// NotBefore and NotAfter bound the issue instants (Unix seconds)
	// this key is valid for. Zero means unbounded on that side. The
	// bounds apply to the DOCUMENT's issue time, not the wall clock,
	// so verification stays deterministic.
	NotBefore int64
	NotAfter  int64

	// Comment is a human note for the table source ("primary issuing
	// key"). Never used in decisions.
	Comment string
}

// Store is an immutable key lookup table.
type Store struct {
	entries map[string]Entry
	order   []string
}

// New builds a Store from entries. It rejects duplicate ids, missing
// ids, wrong-size keys, and inverted validity windows. Used by tests
// and vendor tooling; production binaries use Embedded.
func New(entries []Entry) (*Store, error) {
	store := &Store{entries: make(map[string]Entry, len(entries))}
	for _, entry := range entries {
		if entry.KeyID == "" {
			return nil, fmt.Errorf("keystore: entry with empty key id")
		}
		if _, exists := store.entries[entry.KeyID]; exists {
			return nil, fmt.Errorf("keystore: duplicate key id %q", entry.KeyID)
		}
		if len(entry.PublicKey) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("keystore: key %q has %d-byte public key, want %d",
				entry.KeyID, len(entry.PublicKey), ed25519.PublicKeySize)
		}
		if entry.NotBefore > 0 && entry.NotAfter > 0 && entry.NotAfter < entry.NotBefore {
			return nil, fmt.Errorf("keystore: key %q has inverted validity window", entry.KeyID)
		}
		store.entries[entry.KeyID] = entry
		store.order = append(store.order, entry.KeyID)
	}
	return store, nil
}

// Lookup returns the entry for a key id.
func (s *Store) Lookup(keyID string) (Entry, bool) {
	entry, ok := s.entries[keyID]
	return entry, ok
}

// KeyIDs returns the table's key ids in declaration order. Diagnostic
// output only.
func (s *Store) KeyIDs() []string {
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids
}

// Verify checks a signature over message against the named key,
// enforcing the key's validity window against the document's issue
// instant. Returns nil only when the key is known, the issue instant
// falls inside the window, and the signature verifies.
func (s *Store) Verify(keyID string, message, signature []byte, issuedAt int64) error {
	entry, ok := s.entries[keyID]
	if !ok {
		return ErrUnknownKey
	}
	if entry.NotBefore > 0 && issuedAt < entry.NotBefore {
		return ErrKeyOutsideWindow
	}
	if entry.NotAfter > 0 && issuedAt > entry.NotAfter {
		return ErrKeyOutsideWindow
	}
	if !ed25519.Verify(entry.PublicKey, message, signature) {
		return ErrInvalidSignature
	}
	return nil
}
