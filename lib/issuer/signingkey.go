// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package issuer

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"filippo.io/age"

	"github.com/costscope/costscope/lib/keystore"
	"github.com/costscope/costscope/lib/secret"
)

// SigningKey is an Ed25519 license-signing key held by the vendor. The
// 32-byte seed lives in mmap-backed locked memory for the lifetime of
// the value; the full private key is reconstructed from it per
// operation and zeroed immediately after.
//
// The caller must Close the key when done.
type SigningKey struct {
	// KeyID names the key in license documents and in the compiled
	// trust table. Convention is the rollout period, "2026-01".
	KeyID string

	seed *secret.Buffer
}

// sealedKeyFile is the on-disk form of a signing key. The key id and
// creation time are plain metadata (the id is public in the trust
// table anyway); only the seed is sealed.
type sealedKeyFile struct {
	KeyID      string `json:"key_id"`
	CreatedAt  int64  `json:"created_at"`
	SealedSeed string `json:"sealed_seed"`
}

// GenerateSigningKey creates a new Ed25519 signing key under the given
// key id. The caller must Close the returned key.
func GenerateSigningKey(keyID string) (*SigningKey, error) {
	if keyID == "" {
		return nil, fmt.Errorf("issuer: key id is required")
	}

	_, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("issuer: generating Ed25519 keypair: %w", err)
	}

	// Move the seed into locked memory; NewFromBytes zeros its input,
	// and the full private key is zeroed here. The generation-time heap
	// copies inside crypto/ed25519 are unavoidable.
	seedBytes := private.Seed()
	seed, err := secret.NewFromBytes(seedBytes)
	secret.Zero(private)
	if err != nil {
		return nil, fmt.Errorf("issuer: protecting signing key seed: %w", err)
	}

	return &SigningKey{KeyID: keyID, seed: seed}, nil
}

// Public returns the public half of the signing key.
func (k *SigningKey) Public() ed25519.PublicKey {
	private := ed25519.NewKeyFromSeed(k.seed.Bytes())
	public := private.Public().(ed25519.PublicKey)
	secret.Zero(private)
	return public
}

// Sign signs message with the private key. The reconstructed private
// key is zeroed before returning.
func (k *SigningKey) Sign(message []byte) []byte {
	private := ed25519.NewKeyFromSeed(k.seed.Bytes())
	signature := ed25519.Sign(private, message)
	secret.Zero(private)
	return signature
}

// KeystoreEntry returns the public half formatted as a trust-table
// entry, ready to paste into the compiled key store for the release
// that should start accepting this key's licenses. Zero bounds leave
// the corresponding side of the issuing window open.
func (k *SigningKey) KeystoreEntry(notBefore, notAfter int64) keystore.Entry {
	return keystore.Entry{
		KeyID:     k.KeyID,
		PublicKey: k.Public(),
		NotBefore: notBefore,
		NotAfter:  notAfter,
	}
}

// Close releases the seed memory (zeros, unlocks, unmaps). Idempotent.
func (k *SigningKey) Close() error {
	if k.seed != nil {
		return k.seed.Close()
	}
	return nil
}

// SaveSigningKey writes the key to path with the seed sealed under the
// passphrase (age scrypt recipient). The file is created 0600. The
// passphrase buffer is borrowed, not closed.
func SaveSigningKey(key *SigningKey, path string, passphrase *secret.Buffer) error {
	if passphrase.Len() == 0 {
		return fmt.Errorf("issuer: passphrase is empty")
	}

	// age requires the passphrase as a string at the API boundary; the
	// heap copy is brief and scoped to this call.
	recipient, err := age.NewScryptRecipient(passphrase.String())
	if err != nil {
		return fmt.Errorf("issuer: preparing passphrase recipient: %w", err)
	}

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, recipient)
	if err != nil {
		return fmt.Errorf("issuer: creating age encryptor: %w", err)
	}
	if _, err := writer.Write(key.seed.Bytes()); err != nil {
		return fmt.Errorf("issuer: sealing seed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("issuer: finalizing seal: %w", err)
	}

	file := sealedKeyFile{
		KeyID:      key.KeyID,
		CreatedAt:  time.Now().Unix(),
		SealedSeed: base64.StdEncoding.EncodeToString(ciphertext.Bytes()),
	}
	encoded, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("issuer: encoding key file: %w", err)
	}
	encoded = append(encoded, '\n')

	if err := os.WriteFile(path, encoded, 0600); err != nil {
		return fmt.Errorf("issuer: writing key file: %w", err)
	}
	return nil
}

// LoadSigningKey reads a sealed key file and unseals the seed with the
// passphrase. The passphrase buffer is borrowed, not closed. The
// caller must Close the returned key.
func LoadSigningKey(path string, passphrase *secret.Buffer) (*SigningKey, error) {
	encoded, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("issuer: reading key file: %w", err)
	}

	var file sealedKeyFile
	if err := json.Unmarshal(encoded, &file); err != nil {
		return nil, fmt.Errorf("issuer: parsing key file: %w", err)
	}
	if file.KeyID == "" {
		return nil, fmt.Errorf("issuer: key file has no key id")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(file.SealedSeed)
	if err != nil {
		return nil, fmt.Errorf("issuer: decoding sealed seed: %w", err)
	}

	identity, err := age.NewScryptIdentity(passphrase.String())
	if err != nil {
		return nil, fmt.Errorf("issuer: preparing passphrase identity: %w", err)
	}
	reader, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, fmt.Errorf("issuer: unsealing key (wrong passphrase?): %w", err)
	}
	seedBytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("issuer: reading unsealed seed: %w", err)
	}
	if len(seedBytes) != ed25519.SeedSize {
		secret.Zero(seedBytes)
		return nil, fmt.Errorf("issuer: unsealed seed has %d bytes, want %d", len(seedBytes), ed25519.SeedSize)
	}

	seed, err := secret.NewFromBytes(seedBytes)
	if err != nil {
		secret.Zero(seedBytes)
		return nil, fmt.Errorf("issuer: protecting unsealed seed: %w", err)
	}

	return &SigningKey{KeyID: file.KeyID, seed: seed}, nil
}
