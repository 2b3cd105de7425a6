// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

// Package verify decides whether a license document grants an
// entitlement. It is the single authority on that question: the
// feature gate, the bundle vault, and the costscope-check tool all
// reduce to a call into this package.
//
// # Pipeline
//
// Verification runs a fixed sequence of checks and stops at the first
// failure:
//
//  1. Parse and structural validation (malformed)
//  2. Signing-key lookup, including the key's issuing window (unknown key)
//  3. Ed25519 signature over the signed region (invalid signature)
//  4. Expiry against the evaluation instant (expired)
//  5. Revocation registry lookup (revoked)
//
// The order is part of the contract. A document that fails an early
// check is never inspected by a later one, so a tampered expired
// license reports an invalid signature, not expiry — nothing after the
// signature check may be trusted until the signature holds.
//
// # Determinism
//
// [Verifier.VerifyAt] is a pure function of its inputs: document
// bytes, key table, registry, and the evaluation instant. It reads no
// clocks, no environment, and no files, and it never caches a verdict.
// Two processes holding the same inputs reach the same answer, which
// is what makes entitlement decisions reproducible in bug reports and
// in tests.
//
// # Revocation is open-world
//
// The registry is a list of revoked keys, not a roster of issued ones.
// A key the registry has never seen is simply not revoked; a missing
// registry file means nothing is. Failing verification on an absent
// registry would turn a support-side bookkeeping file into a kill
// switch for every customer.
package verify
