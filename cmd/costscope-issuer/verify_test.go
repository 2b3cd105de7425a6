// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/costscope/costscope/lib/cli"
	"github.com/costscope/costscope/lib/issuer"
	"github.com/costscope/costscope/lib/revocation"
)

func TestVerifyGranted(t *testing.T) {
	key := testSigningKey(t)
	path, _ := issueTestLicense(t, key, t.TempDir())

	var output bytes.Buffer
	err := runVerify(path, "", testKeystore(t, key), issueInstant.Add(30*24*time.Hour), &output)
	if err != nil {
		t.Fatalf("runVerify: %v", err)
	}

	printed := output.String()
	for _, want := range []string{"granted", "pro", "dev@example.com"} {
		if !strings.Contains(printed, want) {
			t.Errorf("output missing %q\n\nFull output:\n%s", want, printed)
		}
	}
}

func TestVerifyExpiredExitCode(t *testing.T) {
	key := testSigningKey(t)
	path, _ := issueTestLicense(t, key, t.TempDir())

	var output bytes.Buffer
	err := runVerify(path, "", testKeystore(t, key), issueInstant.Add(400*24*time.Hour), &output)

	var exit *cli.ExitError
	if !errors.As(err, &exit) {
		t.Fatalf("err = %v, want ExitError", err)
	}
	if exit.Code != 13 {
		t.Errorf("exit code = %d, want 13", exit.Code)
	}
	if !strings.Contains(output.String(), "expired") {
		t.Errorf("output %q missing the taxonomy code", output.String())
	}
}

func TestVerifyRevokedExitCode(t *testing.T) {
	key := testSigningKey(t)
	dir := t.TempDir()
	path, document := issueTestLicense(t, key, dir)

	registryPath := filepath.Join(dir, "revocations.jsonc")
	err := revocation.Append(registryPath, revocation.Entry{
		LicenseKey: document.Key,
		RevokedAt:  issueInstant.Add(24 * time.Hour).Unix(),
		Reason:     "chargeback",
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	var output bytes.Buffer
	err = runVerify(path, registryPath, testKeystore(t, key), issueInstant.Add(48*time.Hour), &output)

	var exit *cli.ExitError
	if !errors.As(err, &exit) {
		t.Fatalf("err = %v, want ExitError", err)
	}
	if exit.Code != 14 {
		t.Errorf("exit code = %d, want 14", exit.Code)
	}
}

func TestVerifyUnknownKeyExitCode(t *testing.T) {
	key := testSigningKey(t)
	path, _ := issueTestLicense(t, key, t.TempDir())

	// A trust table that does not carry the issuing key.
	other, err := issuer.GenerateSigningKey("2031-01")
	if err != nil {
		t.Fatalf("GenerateSigningKey: %v", err)
	}
	defer other.Close()

	var output bytes.Buffer
	err = runVerify(path, "", testKeystore(t, other), issueInstant.Add(time.Hour), &output)

	var exit *cli.ExitError
	if !errors.As(err, &exit) {
		t.Fatalf("err = %v, want ExitError", err)
	}
	if exit.Code != 11 {
		t.Errorf("exit code = %d, want 11", exit.Code)
	}
}
