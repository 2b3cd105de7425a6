// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

// Package entitlement defines the failure taxonomy shared by the
// license verifier, the bundle vault, and the feature gate. Every
// entitlement failure in the product resolves to exactly one Code, and
// every Code maps to one generic user-facing message and one stable
// process exit code. Support staff triage from the code alone; the
// message never embeds file paths, license contents, or key material.
package entitlement

// Code classifies an entitlement failure. The set is closed: any
// corrupted or adversarial input encountered by the verifier or the
// vault must resolve to one of these values, never to a panic or a
// raw library error.
type Code string

const (
	// CodeMalformed indicates the license document could not be parsed
	// or failed structural validation. Also the free-tier condition:
	// a missing license file reports as malformed at the gate.
	CodeMalformed Code = "malformed"

	// CodeUnknownKey indicates the document names a signing key that
	// is not in the compiled trust table, or was issued outside that
	// key's validity window. Typically an old binary meeting a license
	// signed by a newer key; upgrading resolves it.
	CodeUnknownKey Code = "unknown_key"

	// CodeInvalidSignature indicates the signature check failed. The
	// document was altered after issuance or never validly issued.
	CodeInvalidSignature Code = "invalid_signature"

	// CodeExpired indicates the license's expiry instant has passed.
	CodeExpired Code = "expired"

	// CodeRevoked indicates the license key appears in the revocation
	// registry.
	CodeRevoked Code = "revoked"

	// CodeIntegrityFailure indicates the heuristics bundle failed its
	// integrity check: truncation, bit corruption, an edited header,
	// or a signature by an untrusted key. Decryption is never
	// attempted on such a bundle.
	CodeIntegrityFailure Code = "integrity_failure"

	// CodeDecryptionFailure indicates an intact bundle could not be
	// decrypted or materialized with this license. Usually a bundle
	// sealed for a different license.
	CodeDecryptionFailure Code = "decryption_failure"
)

// Valid reports whether c is one of the defined taxonomy values.
func (c Code) Valid() bool {
	switch c {
	case CodeMalformed, CodeUnknownKey, CodeInvalidSignature,
		CodeExpired, CodeRevoked, CodeIntegrityFailure,
		CodeDecryptionFailure:
		return true
	}
	return false
}

// ExitCode returns the stable process exit code for this failure.
// These values are documented for support scripts and must not be
// renumbered.
func (c Code) ExitCode() int {
	switch c {
	case CodeMalformed:
		return 10
	case CodeUnknownKey:
		return 11
	case CodeInvalidSignature:
		return 12
	case CodeExpired:
		return 13
	case CodeRevoked:
		return 14
	case CodeIntegrityFailure:
		return 15
	case CodeDecryptionFailure:
		return 16
	}
	return 1
}

// Message returns the generic user-facing sentence for this failure.
// Deliberately vague: the same text is shown whether the cause was a
// stray newline or a forged signature, so error output never becomes
// an oracle for license tampering.
func (c Code) Message() string {
	switch c {
	case CodeMalformed:
		return "license file is missing, invalid, or corrupted"
	case CodeUnknownKey:
		return "license was signed by a key this build does not trust; upgrading may resolve this"
	case CodeInvalidSignature:
		return "license signature is invalid"
	case CodeExpired:
		return "license has expired"
	case CodeRevoked:
		return "license has been revoked"
	case CodeIntegrityFailure:
		return "feature bundle failed its integrity check; reinstall may resolve this"
	case CodeDecryptionFailure:
		return "feature bundle could not be unlocked with this license"
	}
	return "entitlement check failed"
}
