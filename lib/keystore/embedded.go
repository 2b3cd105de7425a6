// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package keystore

import (
	"crypto/ed25519"
	"encoding/hex"
)

// embeddedKeys is the trust table compiled into release binaries.
// Release engineering appends a row here when a new issuing key enters
// service (costscope-issuer keygen prints the row ready to paste) and
// deletes rows once every license issued under them has expired.
//
// Hex keeps the keys diffable in review; the window bounds are Unix
// seconds.
var embeddedKeys = []struct {
	keyID     string
	publicKey string
	notBefore int64
	notAfter  int64
	comment   string
}{
	{
		keyID:     "2026-01",
		publicKey: "6e1f2c70b24d3f8a915c0de4a7f3b861cc44d0a9be5f17230986e4dd51aa7c43",
		notBefore: 1767225600, // 2026-01-01
		notAfter:  0,
		comment:   "primary issuing key",
	},
	{
		keyID:     "2025-06",
		publicKey: "21c95d0a8be4f67d30a1c58f9e2b74d6031e8aa45cb90f72661d3e05c47b98f1",
		notBefore: 1748736000, // 2025-06-01
		notAfter:  1772323200, // 2026-03-01, retired after the 2026-01 rollover
		comment:   "previous issuing key, retained until issued licenses expire",
	},
}

// embedded is built once at init. A table that cannot be built is a
// build defect, not a runtime condition.
var embedded = mustBuildEmbedded()

// Embedded returns the trust table compiled into this binary.
func Embedded() *Store {
	return embedded
}

func mustBuildEmbedded() *Store {
	entries := make([]Entry, 0, len(embeddedKeys))
	for _, row := range embeddedKeys {
		publicKey, err := hex.DecodeString(row.publicKey)
		if err != nil {
			panic("keystore: embedded key " + row.keyID + ": invalid hex: " + err.Error())
		}
		entries = append(entries, Entry{
			KeyID:     row.keyID,
			PublicKey: ed25519.PublicKey(publicKey),
			NotBefore: row.notBefore,
			NotAfter:  row.notAfter,
			Comment:   row.comment,
		})
	}
	store, err := New(entries)
	if err != nil {
		panic("keystore: embedded trust table: " + err.Error())
	}
	return store
}
