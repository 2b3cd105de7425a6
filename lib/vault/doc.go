// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

// Package vault seals and opens the Pro heuristics bundle: the rule
// packs and detection models that ship encrypted alongside the
// product. A bundle is useless without a verified license — the
// decryption key is derived from the license document itself, so
// possession of a valid license IS the decryption capability. There is
// no escrow key and no second secret to leak.
//
// # Container format (version 1)
//
//	[0:4)   magic "CSBV"
//	[4]     format version (1)
//	[5:9)   header length N, uint32 little-endian
//	[9:9+N) header, deterministic CBOR: key id, nonce, compression
//	        tag, uncompressed size, bundle name, creation time
//	[..+64) Ed25519 signature over magic, version, header length,
//	        header, and ciphertext
//	[rest]  XChaCha20-Poly1305 ciphertext (includes the 16-byte tag)
//
// The header is additional authenticated data for the AEAD, binding
// the ciphertext to its own metadata; the signature additionally binds
// the whole container to a vendor bundle-signing key in the compiled
// trust table.
//
// # Integrity before decryption
//
// [Open] verifies the container signature before constructing the
// cipher. A bundle whose integrity cannot be established — bad magic,
// truncation, unknown signing key, signature mismatch — is rejected
// without a single AEAD operation, and reports
// [entitlement.CodeIntegrityFailure]. Only authenticated bytes reach
// the decryption stage; failures from there on (wrong license, corrupt
// compressed stream) report [entitlement.CodeDecryptionFailure].
//
// # Plaintext handling
//
// Decrypted bundle content lands in a [secret.Buffer]: mmap-backed
// memory outside the Go heap, locked against swap, excluded from core
// dumps, zeroed on Close. [Use] scopes the plaintext to a callback and
// scrubs on every exit path, including panics.
package vault
