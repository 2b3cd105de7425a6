// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package entitlement

import "errors"

// Error is an entitlement failure carrying a taxonomy Code. Its
// Error() string is the code's generic user-facing message — the
// underlying cause stays in Err, reachable through errors.Unwrap for
// internal diagnostics but never printed to end users by the tools.
type Error struct {
	// Code classifies the failure.
	Code Code

	// Op names the operation that failed ("verify license", "open
	// bundle"). Internal context for logs, not shown to users.
	Op string

	// Err is the underlying cause, if any. Never part of the
	// user-facing message.
	Err error
}

// Error returns the generic message for the failure's code.
func (e *Error) Error() string { return e.Code.Message() }

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same Code, so
// errors.Is(err, entitlement.ErrExpired) holds for every expired-license
// failure regardless of origin.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	return ok && other.Code == e.Code
}

// ExitCode returns the stable process exit code for the failure,
// letting command main functions map entitlement errors without
// switching on codes themselves.
func (e *Error) ExitCode() int { return e.Code.ExitCode() }

// New returns an Error with the given code and operation.
func New(code Code, op string) *Error {
	return &Error{Code: code, Op: op}
}

// Wrap returns an Error with the given code and operation, preserving
// err as the underlying cause.
func Wrap(code Code, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

// CodeOf extracts the taxonomy code from an error chain. The second
// return is false when the chain contains no entitlement failure.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

// Comparison sentinels for errors.Is. These carry no Op or cause;
// they match solely by code.
var (
	ErrMalformed         = &Error{Code: CodeMalformed}
	ErrUnknownKey        = &Error{Code: CodeUnknownKey}
	ErrInvalidSignature  = &Error{Code: CodeInvalidSignature}
	ErrExpired           = &Error{Code: CodeExpired}
	ErrRevoked           = &Error{Code: CodeRevoked}
	ErrIntegrityFailure  = &Error{Code: CodeIntegrityFailure}
	ErrDecryptionFailure = &Error{Code: CodeDecryptionFailure}
)
