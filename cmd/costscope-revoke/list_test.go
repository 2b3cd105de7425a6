// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestListMissingRegistry(t *testing.T) {
	registryPath := filepath.Join(t.TempDir(), "revocations.jsonc")

	var output bytes.Buffer
	if err := runList(registryPath, &output); err != nil {
		t.Fatalf("runList: %v", err)
	}
	if !strings.Contains(output.String(), "revision 0, 0 entries") {
		t.Errorf("output = %q, want empty registry summary", output.String())
	}
}

func TestListShowsEntries(t *testing.T) {
	registryPath := filepath.Join(t.TempDir(), "revocations.jsonc")

	var scratch bytes.Buffer
	if err := runAdd(registryPath, "CS-0000-0000-0000-0001", "chargeback", revokeInstant, &scratch); err != nil {
		t.Fatal(err)
	}
	if err := runAdd(registryPath, "CS-0000-0000-0000-0002", "key leaked", revokeInstant, &scratch); err != nil {
		t.Fatal(err)
	}

	var output bytes.Buffer
	if err := runList(registryPath, &output); err != nil {
		t.Fatalf("runList: %v", err)
	}

	printed := output.String()
	for _, want := range []string{
		"revision 2, 2 entries",
		"LICENSE KEY",
		"CS-0000-0000-0000-0001",
		"chargeback",
		"CS-0000-0000-0000-0002",
		"key leaked",
	} {
		if !strings.Contains(printed, want) {
			t.Errorf("output missing %q\n\nFull output:\n%s", want, printed)
		}
	}
}
