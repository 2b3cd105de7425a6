// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package license

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MalformedError reports a document that could not be parsed or failed
// structural validation. Reason is a fixed diagnostic phrase drawn
// from this package's own vocabulary — it names our schema fields and
// byte offsets but NEVER echoes input content. License files arrive
// from untrusted disk locations; whatever garbage or attack payload
// they contain must not propagate into logs or support bundles through
// error text.
type MalformedError struct {
	Reason string
}

func (e *MalformedError) Error() string {
	return "license: malformed document: " + e.Reason
}

// maxDocumentSize bounds Parse input. Real license files are under a
// kilobyte; anything larger is not a license.
const maxDocumentSize = 16 * 1024

// Parse decodes and structurally validates a license document. The
// returned license has a well-formed shape and a 64-byte signature
// field, but Parse says nothing about whether that signature is valid:
// that is the verifier's job.
//
// Every failure is a *MalformedError.
func Parse(data []byte) (*License, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &MalformedError{Reason: "empty document"}
	}
	if len(data) > maxDocumentSize {
		return nil, &MalformedError{Reason: "document exceeds size limit"}
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	var doc License
	if err := decoder.Decode(&doc); err != nil {
		return nil, malformedFromDecode(err)
	}

	// The file must be exactly one JSON document.
	var trailing json.RawMessage
	if err := decoder.Decode(&trailing); err != io.EOF {
		return nil, &MalformedError{Reason: "trailing data after document"}
	}

	if len(doc.Signature) != ed25519.SignatureSize {
		return nil, &MalformedError{Reason: fmt.Sprintf("signature is not %d bytes", ed25519.SignatureSize)}
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// malformedFromDecode converts an encoding/json error into a
// MalformedError with a controlled reason. Offsets and our own field
// names pass through; input content (including unknown field names,
// which are attacker-chosen) does not.
func malformedFromDecode(err error) *MalformedError {
	var syntaxError *json.SyntaxError
	if errors.As(err, &syntaxError) {
		return &MalformedError{Reason: fmt.Sprintf("invalid JSON at byte %d", syntaxError.Offset)}
	}

	var typeError *json.UnmarshalTypeError
	if errors.As(err, &typeError) {
		if typeError.Field != "" {
			return &MalformedError{Reason: fmt.Sprintf("wrong type for field %q", typeError.Field)}
		}
		return &MalformedError{Reason: "document is not a JSON object"}
	}

	var base64Error base64.CorruptInputError
	if errors.As(err, &base64Error) {
		return &MalformedError{Reason: "invalid signature encoding"}
	}

	// DisallowUnknownFields reports `json: unknown field "<name>"`.
	// The name is input content; drop it.
	if strings.Contains(err.Error(), "unknown field") {
		return &MalformedError{Reason: "unrecognized field in document"}
	}

	return &MalformedError{Reason: "unreadable document"}
}
