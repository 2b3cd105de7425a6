// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/costscope/costscope/lib/entitlement"
	"github.com/costscope/costscope/lib/keystore"
	"github.com/costscope/costscope/lib/license"
	"github.com/costscope/costscope/lib/secret"
)

// Plaintext is decrypted bundle content in locked memory. The caller
// must Close it when done; Close zeroes and releases the memory and is
// idempotent. Bytes panics after Close.
type Plaintext struct {
	buffer *secret.Buffer
}

// Bytes returns the bundle plaintext. The slice is valid until Close.
func (p *Plaintext) Bytes() []byte { return p.buffer.Bytes() }

// Len returns the plaintext length in bytes.
func (p *Plaintext) Len() int { return p.buffer.Len() }

// Close zeroes and releases the plaintext memory. Idempotent.
func (p *Plaintext) Close() error { return p.buffer.Close() }

// Open authenticates and decrypts a bundle container using the given
// verified license document. The stages run in fixed order and the
// first failure wins:
//
//  1. Structural parse (magic, version, bounded lengths, header
//     sanity) → [entitlement.CodeIntegrityFailure].
//  2. Container signature against the key store →
//     [entitlement.CodeIntegrityFailure]. An unknown bundle key id is
//     an integrity failure too: integrity cannot be established. No
//     ciphertext byte reaches the cipher before this passes.
//  3. Key derivation from the license document.
//  4. AEAD open → [entitlement.CodeDecryptionFailure] (wrong license,
//     swapped header, corrupt ciphertext).
//  5. Decompression with exact-size verification →
//     [entitlement.CodeDecryptionFailure].
//
// The document must be the VERIFIED license — Open trusts its fields
// for key derivation and never re-verifies it. Callers go through
// lib/verify first; the gate does this.
//
// The caller must Close the returned Plaintext.
func Open(bundle []byte, document *license.License, keys *keystore.Store) (*Plaintext, error) {
	if document == nil {
		return nil, entitlement.Wrap(entitlement.CodeDecryptionFailure, "open bundle",
			fmt.Errorf("no license document for key derivation"))
	}

	// Step 1: structural parse, everything bounds-checked.
	parsed, err := parseContainer(bundle)
	if err != nil {
		return nil, entitlement.Wrap(entitlement.CodeIntegrityFailure, "open bundle", err)
	}

	// Step 2: integrity. The signing key's issuing window is checked
	// against the header's creation time; a forged creation time still
	// has to carry a valid signature, so this stays a policy check,
	// not a security hole.
	if err := keys.Verify(parsed.header.KeyID, parsed.signedPart, parsed.signature, parsed.header.CreatedAt); err != nil {
		return nil, entitlement.Wrap(entitlement.CodeIntegrityFailure, "open bundle", err)
	}

	// Step 3: key derivation, no I/O.
	encryptionKey, err := deriveBundleKey(document)
	if err != nil {
		return nil, entitlement.Wrap(entitlement.CodeDecryptionFailure, "open bundle", err)
	}
	defer encryptionKey.Close()

	// Step 4: authenticated decryption.
	aead, err := chacha20poly1305.NewX(encryptionKey.Bytes())
	if err != nil {
		return nil, entitlement.Wrap(entitlement.CodeDecryptionFailure, "open bundle", err)
	}
	compressed, err := aead.Open(nil, parsed.header.Nonce, parsed.ciphertext, parsed.aad)
	if err != nil {
		return nil, entitlement.Wrap(entitlement.CodeDecryptionFailure, "open bundle", err)
	}

	// Step 5: decompress to the exact declared size. The compressed
	// intermediate holds licensed content from here on and is zeroed
	// on every path; for CompressionNone, decompress aliases it.
	tag := CompressionTag(parsed.header.Compression)
	plaintext, err := decompress(compressed, tag, int(parsed.header.UncompressedSize))
	if err != nil {
		secret.Zero(compressed)
		return nil, entitlement.Wrap(entitlement.CodeDecryptionFailure, "open bundle", err)
	}

	// Move into locked memory. NewFromBytes zeros its input; when a
	// separate compressed intermediate exists, zero that too.
	buffer, err := secret.NewFromBytes(plaintext)
	if tag != CompressionNone {
		secret.Zero(compressed)
	}
	if err != nil {
		secret.Zero(plaintext)
		return nil, entitlement.Wrap(entitlement.CodeDecryptionFailure, "open bundle", err)
	}

	return &Plaintext{buffer: buffer}, nil
}

// Use opens the bundle, invokes fn with the plaintext, and guarantees
// the plaintext is scrubbed before Use returns — on normal return, on
// error, and on panic (the panic resumes after the scrub). The scoped
// form is the one the feature gate uses; nothing outlives the call.
func Use(bundle []byte, document *license.License, keys *keystore.Store, fn func([]byte) error) error {
	plaintext, err := Open(bundle, document, keys)
	if err != nil {
		return err
	}
	defer plaintext.Close()
	return fn(plaintext.Bytes())
}
