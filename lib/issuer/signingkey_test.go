// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package issuer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/costscope/costscope/lib/secret"
)

func testPassphrase(t *testing.T, text string) *secret.Buffer {
	t.Helper()
	passphrase, err := secret.NewFromBytes([]byte(text))
	if err != nil {
		t.Fatalf("secret.NewFromBytes: %v", err)
	}
	t.Cleanup(func() { passphrase.Close() })
	return passphrase
}

func TestSaveLoadSigningKey(t *testing.T) {
	key := testSigningKey(t)
	path := filepath.Join(t.TempDir(), "2026-01.key")
	passphrase := testPassphrase(t, "correct horse battery staple")

	if err := SaveSigningKey(key, path, passphrase); err != nil {
		t.Fatalf("SaveSigningKey: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		t.Errorf("key file mode = %04o, want 0600", mode)
	}

	loaded, err := LoadSigningKey(path, passphrase)
	if err != nil {
		t.Fatalf("LoadSigningKey: %v", err)
	}
	defer loaded.Close()

	if loaded.KeyID != key.KeyID {
		t.Errorf("KeyID = %q, want %q", loaded.KeyID, key.KeyID)
	}
	if !loaded.Public().Equal(key.Public()) {
		t.Error("loaded key's public half differs")
	}
}

func TestLoadSigningKeyWrongPassphrase(t *testing.T) {
	key := testSigningKey(t)
	path := filepath.Join(t.TempDir(), "2026-01.key")

	if err := SaveSigningKey(key, path, testPassphrase(t, "the right one")); err != nil {
		t.Fatalf("SaveSigningKey: %v", err)
	}
	if _, err := LoadSigningKey(path, testPassphrase(t, "the wrong one")); err == nil {
		t.Error("LoadSigningKey accepted the wrong passphrase")
	}
}

func TestLoadSigningKeyMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.key")
	if _, err := LoadSigningKey(path, testPassphrase(t, "anything")); err == nil {
		t.Error("LoadSigningKey succeeded on a missing file")
	}
}

func TestLoadSigningKeyCorruptFile(t *testing.T) {
	directory := t.TempDir()
	passphrase := testPassphrase(t, "anything")

	tests := []struct {
		name     string
		contents string
	}{
		{"not JSON", "sealed key bytes"},
		{"missing key id", `{"created_at": 1, "sealed_seed": "AAAA"}`},
		{"bad base64", `{"key_id": "2026-01", "sealed_seed": "!!!"}`},
		{"not age ciphertext", `{"key_id": "2026-01", "sealed_seed": "AAAAAAAA"}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(directory, strings.ReplaceAll(test.name, " ", "-"))
			if err := os.WriteFile(path, []byte(test.contents), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadSigningKey(path, passphrase); err == nil {
				t.Error("LoadSigningKey accepted a corrupt file")
			}
		})
	}
}

func TestSealedKeyFileCarriesNoPlaintextSeed(t *testing.T) {
	key := testSigningKey(t)
	path := filepath.Join(t.TempDir(), "2026-01.key")
	if err := SaveSigningKey(key, path, testPassphrase(t, "sealing passphrase")); err != nil {
		t.Fatalf("SaveSigningKey: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// The raw seed must not appear anywhere in the file. A 32-byte
	// substring match is a generous detector; age output is ciphertext,
	// so any hit means sealing silently failed.
	seed := key.seed.Bytes()
	for start := 0; start+len(seed) <= len(contents); start++ {
		match := true
		for offset := range seed {
			if contents[start+offset] != seed[offset] {
				match = false
				break
			}
		}
		if match {
			t.Fatal("plaintext seed found in the sealed key file")
		}
	}
}
