// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package keystore

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
)

// testEntry generates a fresh keypair and a table entry for it with an
// unbounded validity window.
func testEntry(t *testing.T, keyID string) (Entry, ed25519.PrivateKey) {
	t.Helper()
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating keypair: %v", err)
	}
	return Entry{KeyID: keyID, PublicKey: publicKey}, privateKey
}

func TestNewRejectsBadTables(t *testing.T) {
	good, _ := testEntry(t, "2026-01")

	tests := []struct {
		name    string
		entries []Entry
	}{
		{"empty key id", []Entry{{KeyID: "", PublicKey: good.PublicKey}}},
		{"duplicate key id", []Entry{good, {KeyID: good.KeyID, PublicKey: good.PublicKey}}},
		{"short public key", []Entry{{KeyID: "k", PublicKey: good.PublicKey[:16]}}},
		{"nil public key", []Entry{{KeyID: "k"}}},
		{"inverted window", []Entry{{KeyID: "k", PublicKey: good.PublicKey, NotBefore: 200, NotAfter: 100}}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := New(test.entries); err == nil {
				t.Error("New accepted an invalid table")
			}
		})
	}
}

func TestLookup(t *testing.T) {
	entry, _ := testEntry(t, "2026-01")
	store, err := New([]Entry{entry})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	found, ok := store.Lookup("2026-01")
	if !ok {
		t.Fatal("known key not found")
	}
	if found.KeyID != "2026-01" {
		t.Errorf("Lookup returned key id %q", found.KeyID)
	}

	if _, ok := store.Lookup("2031-12"); ok {
		t.Error("unknown key id found")
	}
	// Exact match only: no prefix or case folding.
	if _, ok := store.Lookup("2026-0"); ok {
		t.Error("prefix of a key id matched")
	}
}

func TestVerify(t *testing.T) {
	entry, privateKey := testEntry(t, "2026-01")
	store, err := New([]Entry{entry})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	message := []byte("canonical signing bytes")
	signature := ed25519.Sign(privateKey, message)
	const issuedAt = 1767225600

	if err := store.Verify("2026-01", message, signature, issuedAt); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}

	if err := store.Verify("2031-12", message, signature, issuedAt); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("unknown key id: got %v, want ErrUnknownKey", err)
	}

	// Any single flipped bit in the signature must fail.
	tampered := append([]byte(nil), signature...)
	tampered[17] ^= 0x01
	if err := store.Verify("2026-01", message, tampered, issuedAt); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("tampered signature: got %v, want ErrInvalidSignature", err)
	}

	// Same for the message.
	alteredMessage := append([]byte(nil), message...)
	alteredMessage[0] ^= 0x80
	if err := store.Verify("2026-01", alteredMessage, signature, issuedAt); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("altered message: got %v, want ErrInvalidSignature", err)
	}
}

func TestVerifyValidityWindow(t *testing.T) {
	entry, privateKey := testEntry(t, "2025-06")
	entry.NotBefore = 1748736000 // 2025-06-01
	entry.NotAfter = 1772323200  // 2026-03-01
	store, err := New([]Entry{entry})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	message := []byte("signed region")
	signature := ed25519.Sign(privateKey, message)

	tests := []struct {
		name     string
		issuedAt int64
		want     error
	}{
		{"inside window", 1767225600, nil},
		{"at lower bound", entry.NotBefore, nil},
		{"at upper bound", entry.NotAfter, nil},
		{"before window", entry.NotBefore - 1, ErrKeyOutsideWindow},
		{"after window", entry.NotAfter + 1, ErrKeyOutsideWindow},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := store.Verify("2025-06", message, signature, test.issuedAt)
			if test.want == nil {
				if err != nil {
					t.Errorf("Verify: %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, test.want) {
				t.Errorf("Verify: %v, want %v", err, test.want)
			}
		})
	}
}

func TestVerifyUnboundedWindow(t *testing.T) {
	entry, privateKey := testEntry(t, "2026-01")
	store, err := New([]Entry{entry})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	message := []byte("signed region")
	signature := ed25519.Sign(privateKey, message)

	// Zero bounds mean no restriction on either side.
	for _, issuedAt := range []int64{1, 1767225600, 4102444800} {
		if err := store.Verify("2026-01", message, signature, issuedAt); err != nil {
			t.Errorf("issuedAt=%d: %v", issuedAt, err)
		}
	}
}

func TestEmbedded(t *testing.T) {
	store := Embedded()
	if store == nil {
		t.Fatal("Embedded returned nil")
	}
	if len(store.KeyIDs()) == 0 {
		t.Fatal("embedded trust table is empty")
	}

	// Every embedded entry must be well-formed; New enforced that at
	// init, so reaching here already proves it. Spot-check the primary
	// key is present.
	if _, ok := store.Lookup("2026-01"); !ok {
		t.Error("primary issuing key missing from embedded table")
	}

	// Two calls return the same table, not copies drifting apart.
	if Embedded() != store {
		t.Error("Embedded returns different instances")
	}
}
