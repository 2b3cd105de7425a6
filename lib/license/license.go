// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

// Package license defines the costscope license document: the JSON
// file a customer receives when they buy Pro, and the canonical byte
// form of that document that signatures cover.
//
// The two representations serve different audiences. The JSON file is
// for humans: a customer (or their procurement auditor) can open it
// and read who it was issued to and when it expires. The signing
// bytes are for machines: a deterministic CBOR encoding of every
// field except the signature itself, byte-stable across processes,
// platforms, and releases, so that whitespace or key-order changes in
// the JSON never affect validity.
package license

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/costscope/costscope/lib/codec"
)

// SchemaVersion is the current license document schema version.
// Readers reject documents with any other version; introducing version
// 2 means teaching this package to read both.
const SchemaVersion = 1

// Edition is the product tier a license grants.
type Edition string

const (
	// EditionPro unlocks the paid feature set.
	EditionPro Edition = "pro"

	// EditionEnterprise unlocks everything in pro plus the
	// enterprise-only features.
	EditionEnterprise Edition = "enterprise"
)

// ParseEdition converts a string into a known Edition.
func ParseEdition(s string) (Edition, error) {
	edition := Edition(s)
	if !edition.Valid() {
		return "", fmt.Errorf("license: unknown edition")
	}
	return edition, nil
}

// Valid reports whether the edition is one of the defined tiers.
func (e Edition) Valid() bool {
	return e == EditionPro || e == EditionEnterprise
}

// String returns the edition's wire form.
func (e Edition) String() string { return string(e) }

// rank orders editions for Covers. Unknown editions rank below
// everything.
func (e Edition) rank() int {
	switch e {
	case EditionPro:
		return 1
	case EditionEnterprise:
		return 2
	}
	return 0
}

// Covers reports whether a license of edition e satisfies a feature
// requiring the given edition. Enterprise covers pro; nothing covers
// an unknown edition.
func (e Edition) Covers(required Edition) bool {
	if !e.Valid() || !required.Valid() {
		return false
	}
	return e.rank() >= required.rank()
}

// License is a parsed license document. Field order here fixes the
// key order of the encoded JSON file.
type License struct {
	// Email is the licensee contact address, the human-auditable
	// subject of the grant.
	Email string `json:"email"`

	// Key is the opaque unique identifier of this grant and the
	// handle the revocation registry matches on. Never reused across
	// licenses.
	Key string `json:"license_key"`

	// Expires is the expiry instant in Unix seconds (UTC). A license
	// is invalid AT this instant, not only after it.
	Expires int64 `json:"expires"`

	// Issuer identifies the issuing authority.
	Issuer string `json:"issuer"`

	// IssuedAt is the issue instant in Unix seconds.
	IssuedAt int64 `json:"issued_at"`

	// Version is the document schema version.
	Version int `json:"version"`

	// Edition is the granted tier.
	Edition Edition `json:"edition"`

	// KeyID names the signing keypair, so verifiers can look up the
	// right public key across rotations.
	KeyID string `json:"key_id"`

	// Signature is the Ed25519 signature over SigningBytes. Base64 in
	// the JSON file.
	Signature []byte `json:"signature"`
}

// Field length bounds. Generous for real data, tight enough that a
// crafted document cannot smuggle megabytes through a field that ends
// up in a support bundle.
const (
	maxEmailLength  = 254
	maxKeyLength    = 128
	maxIssuerLength = 128
	maxKeyIDLength  = 64
)

// Validate checks the structural invariants every license must hold,
// signed or not. The issuer runs it before signing; Parse runs it
// after decoding. The signature field is not covered here — Parse
// checks its presence separately, and an unsigned in-progress document
// inside the issuer is legitimate.
func (l *License) Validate() error {
	if l.Version != SchemaVersion {
		return &MalformedError{Reason: "unsupported schema version"}
	}
	if l.Email == "" || len(l.Email) > maxEmailLength {
		return &MalformedError{Reason: "missing or oversized email"}
	}
	if l.Key == "" || len(l.Key) > maxKeyLength {
		return &MalformedError{Reason: "missing or oversized license_key"}
	}
	if !l.Edition.Valid() {
		return &MalformedError{Reason: "unknown edition"}
	}
	if l.Issuer == "" || len(l.Issuer) > maxIssuerLength {
		return &MalformedError{Reason: "missing or oversized issuer"}
	}
	if l.KeyID == "" || len(l.KeyID) > maxKeyIDLength {
		return &MalformedError{Reason: "missing or oversized key_id"}
	}
	if l.IssuedAt <= 0 {
		return &MalformedError{Reason: "missing or negative issued_at"}
	}
	if l.Expires <= 0 {
		return &MalformedError{Reason: "missing or negative expires"}
	}
	if l.Expires <= l.IssuedAt {
		return &MalformedError{Reason: "expires not after issued_at"}
	}
	return nil
}

// signedRegion is the canonical form signatures cover: every document
// field except the signature, keyed by stable integers. Renumbering
// any key invalidates every signature in the field.
type signedRegion struct {
	Version  int    `cbor:"1,keyasint"`
	Email    string `cbor:"2,keyasint"`
	Key      string `cbor:"3,keyasint"`
	Edition  string `cbor:"4,keyasint"`
	Issuer   string `cbor:"5,keyasint"`
	IssuedAt int64  `cbor:"6,keyasint"`
	Expires  int64  `cbor:"7,keyasint"`
	KeyID    string `cbor:"8,keyasint"`
}

// SigningBytes returns the canonical byte representation of the
// document that the issuer signs and the verifier checks. Byte-stable
// for fixed field values: deterministic CBOR with integer keys.
func (l *License) SigningBytes() ([]byte, error) {
	data, err := codec.Marshal(signedRegion{
		Version:  l.Version,
		Email:    l.Email,
		Key:      l.Key,
		Edition:  string(l.Edition),
		Issuer:   l.Issuer,
		IssuedAt: l.IssuedAt,
		Expires:  l.Expires,
		KeyID:    l.KeyID,
	})
	if err != nil {
		return nil, fmt.Errorf("license: encoding signing bytes: %w", err)
	}
	return data, nil
}

// Encode renders the document as the canonical license file: indented
// JSON with the documented key order and a trailing newline.
func (l *License) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("license: encoding document: %w", err)
	}
	return append(data, '\n'), nil
}

// fingerprintKey is the BLAKE3 domain key for license fingerprints:
// ASCII domain name, zero-padded to 32 bytes. Readable in hex dumps,
// opaque to the hash.
var fingerprintKey = [32]byte{
	'c', 'o', 's', 't', 's', 'c', 'o', 'p', 'e', '.', 'l', 'i', 'c', 'e', 'n', 's',
	'e', '.', 'f', 'i', 'n', 'g', 'e', 'r', 'p', 'r', 'i', 'n', 't', 0, 0, 0,
}

// Fingerprint returns a short stable identifier for the license,
// derived from its key via keyed BLAKE3. This is what appears in logs
// and the audit trail — the raw license key never does.
func (l *License) Fingerprint() string {
	hasher, err := blake3.NewKeyed(fingerprintKey[:])
	if err != nil {
		panic("license: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write([]byte(l.Key))
	digest := hasher.Sum(nil)
	return "lic-" + hex.EncodeToString(digest[:6])
}
