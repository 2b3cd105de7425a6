// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/costscope/costscope/lib/cli"
)

func TestCheckRevokedKey(t *testing.T) {
	registryPath := filepath.Join(t.TempDir(), "revocations.jsonc")
	var scratch bytes.Buffer
	if err := runAdd(registryPath, "CS-0000-0000-0000-0001", "chargeback", revokeInstant, &scratch); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	err := runCheck(registryPath, "CS-0000-0000-0000-0001", &stdout, &stderr)
	if err != nil {
		t.Fatalf("runCheck: %v", err)
	}
	printed := stdout.String()
	if !strings.Contains(printed, "revoked at") || !strings.Contains(printed, "chargeback") {
		t.Errorf("output = %q, want revocation details", printed)
	}
}

func TestCheckUnrevokedKeyExitsOne(t *testing.T) {
	registryPath := filepath.Join(t.TempDir(), "revocations.jsonc")
	var scratch bytes.Buffer
	if err := runAdd(registryPath, "CS-0000-0000-0000-0001", "", revokeInstant, &scratch); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	err := runCheck(registryPath, "CS-9999-9999-9999-9999", &stdout, &stderr)

	var exit *cli.ExitError
	if !errors.As(err, &exit) {
		t.Fatalf("err = %v, want ExitError", err)
	}
	if exit.Code != 1 {
		t.Errorf("exit code = %d, want 1", exit.Code)
	}
	if !strings.Contains(stdout.String(), "not revoked") {
		t.Errorf("output = %q, want 'not revoked'", stdout.String())
	}
}

func TestCheckCorruptRegistryExitsTwo(t *testing.T) {
	registryPath := filepath.Join(t.TempDir(), "revocations.jsonc")
	if err := os.WriteFile(registryPath, []byte("{ not a registry"), 0o600); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	err := runCheck(registryPath, "CS-0000-0000-0000-0001", &stdout, &stderr)

	var exit *cli.ExitError
	if !errors.As(err, &exit) {
		t.Fatalf("err = %v, want ExitError", err)
	}
	if exit.Code != 2 {
		t.Errorf("exit code = %d, want 2", exit.Code)
	}
	if !strings.Contains(stderr.String(), "error:") {
		t.Errorf("stderr = %q, want an error line", stderr.String())
	}
}
