// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/costscope/costscope/lib/audit"
	"github.com/costscope/costscope/lib/clock"
	"github.com/costscope/costscope/lib/gate"
)

func TestProbeAllowed(t *testing.T) {
	key := testSigningKey(t)
	dir := t.TempDir()
	licensePath, document := issueTestLicense(t, key, dir)
	bundlePath := sealTestBundle(t, key, document, dir)

	authorizer, err := gate.New(gate.Config{
		LicensePath: licensePath,
		BundlePath:  bundlePath,
		Keys:        testKeystore(t, key),
		Clock:       clock.Fake(checkInstant.Add(24 * time.Hour)),
	})
	if err != nil {
		t.Fatalf("gate.New: %v", err)
	}

	var output bytes.Buffer
	if err := runProbe(context.Background(), authorizer, gate.FeatureAutofix, &output); err != nil {
		t.Fatalf("runProbe: %v", err)
	}
	if !strings.Contains(output.String(), "autofix: allowed (pro)") {
		t.Errorf("output = %q", output.String())
	}
}

func TestProbeDeniedWithTaxonomyExit(t *testing.T) {
	authorizer, err := gate.New(gate.Config{
		LicensePath: filepath.Join(t.TempDir(), "license.json"),
		Keys:        testKeystore(t, testSigningKey(t)),
		Clock:       clock.Fake(checkInstant),
	})
	if err != nil {
		t.Fatalf("gate.New: %v", err)
	}

	var output bytes.Buffer
	err = runProbe(context.Background(), authorizer, gate.FeaturePatch, &output)
	if code := exitCodeOf(t, err); code != 10 {
		t.Errorf("exit code = %d, want 10", code)
	}
	if !strings.Contains(output.String(), "denied (malformed)") {
		t.Errorf("output = %q", output.String())
	}
}

func TestProbeRecordsToTrail(t *testing.T) {
	key := testSigningKey(t)
	dir := t.TempDir()
	licensePath, document := issueTestLicense(t, key, dir)

	trail, err := audit.Open(filepath.Join(dir, "audit.db"), slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("audit.Open: %v", err)
	}
	defer trail.Close()

	authorizer, err := gate.New(gate.Config{
		LicensePath: licensePath,
		Keys:        testKeystore(t, key),
		Clock:       clock.Fake(checkInstant.Add(24 * time.Hour)),
		Audit:       trail,
	})
	if err != nil {
		t.Fatalf("gate.New: %v", err)
	}

	ctx := context.Background()
	if err := runProbe(ctx, authorizer, gate.FeatureMapUnlimited, &bytes.Buffer{}); err != nil {
		t.Fatalf("runProbe: %v", err)
	}

	// The decision is visible through audit list.
	var output bytes.Buffer
	if err := runAuditList(ctx, trail, 10, &output); err != nil {
		t.Fatalf("runAuditList: %v", err)
	}
	printed := output.String()
	if !strings.Contains(printed, "map-unlimited") || !strings.Contains(printed, "allow") {
		t.Errorf("audit list missing the decision:\n%s", printed)
	}
	if !strings.Contains(printed, document.Fingerprint()) {
		t.Errorf("audit list missing the fingerprint:\n%s", printed)
	}
	if strings.Contains(printed, document.Key) {
		t.Errorf("audit list leaks the license key:\n%s", printed)
	}
}
