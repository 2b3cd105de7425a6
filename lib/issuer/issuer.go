// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

// Package issuer creates signed license documents. Issuance is
// vendor-side only: no consumer code path constructs, loads, or holds
// a signing key, so private key material never reaches a customer
// machine. (The vault sealing path shares the SigningKey type, which
// is why product binaries link this package without ever possessing a
// key.) Keys live sealed on the vendor machine where costscope-issuer
// and costscope-sealer run offline.
package issuer

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/costscope/costscope/lib/license"
)

// Request carries the issuance parameters for one license.
type Request struct {
	// Email identifies the customer the license is issued to.
	Email string `validate:"required,email,max=254"`

	// Edition is the entitlement tier to grant.
	Edition license.Edition `validate:"required,edition"`

	// Issuer names the issuing entity, recorded in the document.
	Issuer string `validate:"required,max=128"`

	// TTL is how long the license stays valid from issuance.
	TTL time.Duration `validate:"gt=0"`
}

// validate checks Request structs. The "edition" validator keeps the
// tag in sync with the editions lib/license actually knows.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("edition", func(fl validator.FieldLevel) bool {
		return license.Edition(fl.Field().String()).Valid()
	}); err != nil {
		panic(fmt.Sprintf("issuer: registering edition validator: %v", err))
	}
	return v
}

// Issue validates the request and produces a signed license document.
// The license key is freshly generated; the signature covers every
// field of the signed region under key.KeyID.
//
// An issued license always verifies against a key store containing
// key's entry, evaluated at any instant inside its validity span.
func Issue(request Request, key *SigningKey, now time.Time) (*license.License, error) {
	if err := validate.Struct(request); err != nil {
		return nil, fmt.Errorf("issuer: invalid request: %w", err)
	}

	document := &license.License{
		Email:    request.Email,
		Key:      newLicenseKey(),
		Expires:  now.Add(request.TTL).Unix(),
		Issuer:   request.Issuer,
		IssuedAt: now.Unix(),
		Version:  license.SchemaVersion,
		Edition:  request.Edition,
		KeyID:    key.KeyID,
	}
	if err := document.Validate(); err != nil {
		return nil, fmt.Errorf("issuer: assembled document invalid: %w", err)
	}

	signingBytes, err := document.SigningBytes()
	if err != nil {
		return nil, fmt.Errorf("issuer: computing signing bytes: %w", err)
	}
	document.Signature = key.Sign(signingBytes)

	return document, nil
}

// newLicenseKey generates a fresh license key in the grouped display
// form, "CS-1A2B-3C4D-5E6F-7081". The key is a serial number, not a
// secret: 64 random bits is collision room, not an entropy floor.
func newLicenseKey() string {
	id := uuid.New()
	encoded := strings.ToUpper(hex.EncodeToString(id[:8]))
	return fmt.Sprintf("CS-%s-%s-%s-%s",
		encoded[0:4], encoded[4:8], encoded[8:12], encoded[12:16])
}
