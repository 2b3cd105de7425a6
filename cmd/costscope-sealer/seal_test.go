// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/costscope/costscope/lib/vault"
)

func TestSealProducesOpenableBundle(t *testing.T) {
	key := testSigningKey(t)
	document := testLicense(t, key)
	rulePack := []byte(`{"heuristics": "ec2 oversizing rules, repeated enough to compress"}` + strings.Repeat(" padding", 64))
	outPath := filepath.Join(t.TempDir(), "heuristics.csbv")

	var output bytes.Buffer
	if err := runSeal(rulePack, document, key, "heuristics-2026.08", "zstd", outPath, &output); err != nil {
		t.Fatalf("runSeal: %v", err)
	}

	bundle, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("bundle not written: %v", err)
	}

	keys := testKeystore(t, key)
	err = vault.Use(bundle, document, keys, func(plaintext []byte) error {
		if !bytes.Equal(plaintext, rulePack) {
			t.Errorf("plaintext does not round-trip")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("sealed bundle does not open: %v", err)
	}

	// The confirmation names the bundle and the fingerprint, never the
	// license key.
	printed := output.String()
	if !strings.Contains(printed, "heuristics-2026.08") {
		t.Errorf("output %q missing the bundle name", printed)
	}
	if !strings.Contains(printed, document.Fingerprint()) {
		t.Errorf("output %q missing the license fingerprint", printed)
	}
	if strings.Contains(printed, document.Key) {
		t.Errorf("output %q leaks the license key", printed)
	}
}

func TestSealToStdout(t *testing.T) {
	key := testSigningKey(t)
	document := testLicense(t, key)

	var output bytes.Buffer
	if err := runSeal([]byte("rule pack"), document, key, "rules", "none", "-", &output); err != nil {
		t.Fatalf("runSeal: %v", err)
	}

	// Stdout carries the container itself, nothing else.
	if _, err := vault.Inspect(output.Bytes()); err != nil {
		t.Fatalf("stdout is not a bundle container: %v", err)
	}
}

func TestSealRejectsUnknownCompression(t *testing.T) {
	key := testSigningKey(t)
	document := testLicense(t, key)

	err := runSeal([]byte("rule pack"), document, key, "rules", "brotli", "-", &bytes.Buffer{})
	if err == nil {
		t.Fatal("unknown compression: want error")
	}
}

func TestBundleNameDefaults(t *testing.T) {
	if got := bundleNameFor("packs/heuristics-2026.08.json"); got != "heuristics-2026.08" {
		t.Errorf("bundleNameFor = %q", got)
	}
	if got := defaultOutPath("packs/heuristics-2026.08.json"); got != "packs/heuristics-2026.08.csbv" {
		t.Errorf("defaultOutPath = %q", got)
	}
}
