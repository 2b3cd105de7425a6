// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the standard CBOR encoding configuration for
// every signed or encrypted surface in costscope.
//
// Two serialization formats with a clear boundary:
//
//   - JSON for the human-auditable artifacts: the license file a
//     customer receives (and can read with their own eyes), the
//     revocation registry, CLI --json output.
//   - CBOR for the byte-exact surfaces: the canonical license region
//     that signatures cover, and bundle container headers.
//
// Signatures are computed over bytes, so anything signed must encode
// identically everywhere, forever. The encoder therefore uses Core
// Deterministic Encoding (RFC 8949 §4.2): sorted map keys, smallest
// integer encoding, no indefinite-length items. The decoder rejects
// duplicate map keys — an adversarial container header must not be
// able to present one value to a validator and another to a consumer.
//
// # Struct Tag Rules
//
// Types on a signed surface use `cbor:"N,keyasint"` tags with stable
// integer keys. Integer keys make the canonical form independent of
// Go field renames, and renumbering an existing key is a breaking
// change to every signature in the field. New fields take the next
// free integer; removed fields retire their integer permanently.
package codec
