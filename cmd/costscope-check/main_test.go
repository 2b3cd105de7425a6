// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/costscope/costscope/lib/issuer"
	"github.com/costscope/costscope/lib/keystore"
	"github.com/costscope/costscope/lib/license"
	"github.com/costscope/costscope/lib/vault"
)

var checkInstant = time.Unix(1767225600, 0) // 2026-01-01T00:00:00Z

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

// issueTestLicense signs a one-year Pro license at checkInstant and
// writes it under dir.
func issueTestLicense(t *testing.T, key *issuer.SigningKey, dir string) (string, *license.License) {
	t.Helper()
	document, err := issuer.Issue(issuer.Request{
		Email:   "dev@example.com",
		Edition: license.EditionPro,
		Issuer:  "Costscope, Inc.",
		TTL:     365 * 24 * time.Hour,
	}, key, checkInstant)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	encoded, err := document.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	path := filepath.Join(dir, "license.json")
	if err := os.WriteFile(path, encoded, 0o600); err != nil {
		t.Fatalf("writing license: %v", err)
	}
	return path, document
}

// sealTestBundle seals a small rule pack for document and writes it
// under dir.
func sealTestBundle(t *testing.T, key *issuer.SigningKey, document *license.License, dir string) string {
	t.Helper()
	bundle, err := vault.Seal([]byte("rule pack contents"), document, key, vault.SealOptions{
		BundleName:  "heuristics-test",
		Compression: vault.CompressionNone,
		CreatedAt:   checkInstant.Unix(),
	})
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	path := filepath.Join(dir, "heuristics.csbv")
	if err := os.WriteFile(path, bundle, 0o644); err != nil {
		t.Fatalf("writing bundle: %v", err)
	}
	return path
}

// corruptFile flips a bit in the last byte of the file.
func corruptFile(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	data[len(data)-1] ^= 0x01
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}
