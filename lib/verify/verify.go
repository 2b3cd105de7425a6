// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"errors"
	"time"

	"github.com/costscope/costscope/lib/entitlement"
	"github.com/costscope/costscope/lib/keystore"
	"github.com/costscope/costscope/lib/license"
	"github.com/costscope/costscope/lib/revocation"
)

// State identifies how far a license document progressed through the
// verification pipeline. Each state implies all earlier ones: a
// document in StateSignatureValid parsed cleanly and carries a good
// signature from a known key, but has not yet passed the expiry check.
type State int

const (
	// StateUnparsed means the document failed structural validation
	// and nothing about its contents can be trusted.
	StateUnparsed State = iota

	// StateStructurallyValid means the document parsed, but its
	// signature has not been verified. Field values are still
	// unauthenticated claims.
	StateStructurallyValid

	// StateSignatureValid means a known signing key vouches for the
	// document. Field values are authentic from here on.
	StateSignatureValid

	// StateTemporallyValid means the license had not expired at the
	// evaluation instant.
	StateTemporallyValid

	// StateGranted means every check passed, including the revocation
	// lookup. The license confers its edition's entitlements.
	StateGranted
)

// String returns a short display name for the state.
func (s State) String() string {
	switch s {
	case StateUnparsed:
		return "unparsed"
	case StateStructurallyValid:
		return "structurally valid"
	case StateSignatureValid:
		return "signature valid"
	case StateTemporallyValid:
		return "temporally valid"
	case StateGranted:
		return "granted"
	default:
		return "unknown"
	}
}

// Grant is the successful outcome of verification: an authenticated,
// current, unrevoked license.
type Grant struct {
	// License is the verified document. Every field has been
	// authenticated by the signature check.
	License *license.License

	// Edition is the entitlement tier the license confers.
	Edition license.Edition

	// EvaluatedAt is the instant the temporal and revocation checks
	// used. A Grant speaks only for this instant; callers wanting a
	// fresh answer run verification again.
	EvaluatedAt time.Time
}

// Report describes the outcome of a verification run, successful or
// not. This is the result-returning variant of [Verifier.VerifyAt] —
// use it when the reached state is needed for status display or audit
// recording rather than for control flow.
type Report struct {
	// State is the furthest pipeline state the document reached.
	State State

	// Code classifies the failure. Empty when State is StateGranted.
	Code entitlement.Code

	// Grant is the successful outcome. Nil unless State is
	// StateGranted.
	Grant *Grant
}

// Verifier evaluates license documents against a key table and a
// revocation registry. It holds no other state: no caching, no clock,
// no file handles. Construct one per evaluation or share one across
// goroutines, it makes no difference.
type Verifier struct {
	// Keys is the table of trusted signing keys. Must be non-nil.
	Keys *keystore.Store

	// Registry is the revocation registry. Nil means no revocations,
	// same as an empty registry.
	Registry *revocation.Registry
}

// Verify evaluates a license document at the current wall-clock time.
func (v *Verifier) Verify(data []byte) (*Grant, error) {
	return v.VerifyAt(data, time.Now())
}

// VerifyAt evaluates a license document at an explicit instant. This
// is the deterministic core: same bytes, same key table, same
// registry, same instant always produce the same answer.
//
// On failure the returned error is an [entitlement.Error] carrying the
// taxonomy code of the first check that failed; later checks are not
// run. The error's message is generic and never contains document
// contents.
func (v *Verifier) VerifyAt(data []byte, now time.Time) (*Grant, error) {
	// Step 1: Parse and structural validation.
	document, err := license.Parse(data)
	if err != nil {
		return nil, entitlement.Wrap(entitlement.CodeMalformed, "verify", err)
	}

	signingBytes, err := document.SigningBytes()
	if err != nil {
		return nil, entitlement.Wrap(entitlement.CodeMalformed, "verify", err)
	}

	// Steps 2-3: Key lookup (with issuing-window check) and signature
	// verification. The keystore performs both in order; its sentinel
	// errors distinguish the two taxonomy outcomes.
	if err := v.Keys.Verify(document.KeyID, signingBytes, document.Signature, document.IssuedAt); err != nil {
		switch {
		case errors.Is(err, keystore.ErrUnknownKey), errors.Is(err, keystore.ErrKeyOutsideWindow):
			return nil, entitlement.Wrap(entitlement.CodeUnknownKey, "verify", err)
		default:
			return nil, entitlement.Wrap(entitlement.CodeInvalidSignature, "verify", err)
		}
	}

	// Step 4: Expiry. A license expiring at instant T is invalid AT T.
	// No grace period: any leniency is a presentation concern layered
	// above, never a weaker answer from the verifier.
	if now.Unix() >= document.Expires {
		return nil, entitlement.New(entitlement.CodeExpired, "verify")
	}

	// Step 5: Revocation, exact match on the license key.
	if v.Registry != nil && v.Registry.Contains(document.Key) {
		return nil, entitlement.New(entitlement.CodeRevoked, "verify")
	}

	return &Grant{
		License:     document,
		Edition:     document.Edition,
		EvaluatedAt: now,
	}, nil
}

// Check evaluates a license document at the current wall-clock time
// and reports the reached state.
func (v *Verifier) Check(data []byte) Report {
	return v.CheckAt(data, time.Now())
}

// CheckAt is like Check but accepts an explicit instant. The mapping
// from failure code to state records how far the document got before
// the pipeline stopped.
func (v *Verifier) CheckAt(data []byte, now time.Time) Report {
	grant, err := v.VerifyAt(data, now)
	if err == nil {
		return Report{State: StateGranted, Grant: grant}
	}
	code, _ := entitlement.CodeOf(err)
	return Report{State: stateReached(code), Code: code}
}

// stateReached maps a pipeline failure to the last state the document
// attained before that check stopped it.
func stateReached(code entitlement.Code) State {
	switch code {
	case entitlement.CodeUnknownKey, entitlement.CodeInvalidSignature:
		return StateStructurallyValid
	case entitlement.CodeExpired:
		return StateSignatureValid
	case entitlement.CodeRevoked:
		return StateTemporallyValid
	default:
		return StateUnparsed
	}
}
