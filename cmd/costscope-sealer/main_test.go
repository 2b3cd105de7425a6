// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"testing"
	"time"

	"github.com/costscope/costscope/lib/issuer"
	"github.com/costscope/costscope/lib/keystore"
	"github.com/costscope/costscope/lib/license"
)

var sealInstant = time.Unix(1767225600, 0) // 2026-01-01T00:00:00Z

func testSigningKey(t *testing.T) *issuer.SigningKey {
	t.Helper()
	key, err := issuer.GenerateSigningKey("2026-01")
	if err != nil {
		t.Fatalf("GenerateSigningKey: %v", err)
	}
	t.Cleanup(func() { key.Close() })
	return key
}

func testKeystore(t *testing.T, key *issuer.SigningKey) *keystore.Store {
	t.Helper()
	keys, err := keystore.New([]keystore.Entry{key.KeystoreEntry(0, 0)})
	if err != nil {
		t.Fatalf("keystore.New: %v", err)
	}
	return keys
}

// testLicense issues a one-year Pro license at sealInstant, signed by
// key.
func testLicense(t *testing.T, key *issuer.SigningKey) *license.License {
	t.Helper()
	document, err := issuer.Issue(issuer.Request{
		Email:   "dev@example.com",
		Edition: license.EditionPro,
		Issuer:  "Costscope, Inc.",
		TTL:     365 * 24 * time.Hour,
	}, key, sealInstant)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return document
}
