// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package gate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/costscope/costscope/lib/clock"
	"github.com/costscope/costscope/lib/entitlement"
	"github.com/costscope/costscope/lib/keystore"
	"github.com/costscope/costscope/lib/license"
	"github.com/costscope/costscope/lib/revocation"
	"github.com/costscope/costscope/lib/vault"
	"github.com/costscope/costscope/lib/verify"
)

// Decision is the outcome of one authorization. Decisions are
// point-in-time answers: nothing about them is cached, and the next
// call re-derives everything from disk.
type Decision struct {
	// Allowed reports whether the feature may run.
	Allowed bool

	// Feature is the capability that was asked about.
	Feature Feature

	// Edition is the verified edition of the presented license. Empty
	// when no license verified.
	Edition license.Edition

	// Code classifies a denial within the failure taxonomy. Empty on
	// Allow, and empty on the one denial outside the taxonomy: a
	// verified license whose edition does not cover the feature.
	Code entitlement.Code

	// Fingerprint identifies the presented license file for audit
	// display. It is derived from the raw document before
	// verification, so it names the file, not a verified grant. Empty
	// when no parseable license was presented. Never the license key.
	Fingerprint string

	// CheckedAt is the evaluation instant.
	CheckedAt time.Time
}

// Recorder receives every gate decision, allow and deny. Implemented
// by lib/audit. Recording is best-effort: it must never block or fail
// an authorization.
type Recorder interface {
	Record(ctx context.Context, decision Decision)
}

// Authorizer is the interface Pro feature code calls through. Feature
// code never consults configuration flags or environment for tier
// decisions — it asks an Authorizer, and the answer comes from full
// verification.
type Authorizer interface {
	// Authorize decides whether feature may run right now.
	Authorize(ctx context.Context, feature Feature) (Decision, error)

	// WithBundle decides like Authorize and, on Allow, runs fn over
	// the decrypted heuristics bundle plaintext. The plaintext is
	// zeroed when fn returns; fn must not retain it.
	WithBundle(ctx context.Context, feature Feature, fn func([]byte) error) (Decision, error)
}

// Config assembles a Gate.
type Config struct {
	// LicensePath is where the license document lives. The file being
	// absent is the normal free-tier condition, not an error.
	LicensePath string

	// BundlePath is where the sealed heuristics bundle lives. Needed
	// only for bundle-backed features.
	BundlePath string

	// RegistryPath is where the revocation registry lives. Empty means
	// no registry is distributed with this install.
	RegistryPath string

	// Keys is the trust table. Nil means the embedded table.
	Keys *keystore.Store

	// Clock supplies the evaluation instant. Nil means wall clock.
	Clock clock.Clock

	// Logger receives debug-level decision logging. Nil discards.
	Logger *slog.Logger

	// Audit receives every decision when non-nil.
	Audit Recorder
}

// Gate answers authorization questions from disk. It holds
// configuration only: no verification state, no cached answers.
type Gate struct {
	licensePath  string
	bundlePath   string
	registryPath string
	keys         *keystore.Store
	clock        clock.Clock
	logger       *slog.Logger
	audit        Recorder
}

var _ Authorizer = (*Gate)(nil)

// New builds a Gate. LicensePath is required; everything else
// defaults.
func New(config Config) (*Gate, error) {
	if config.LicensePath == "" {
		return nil, fmt.Errorf("gate: license path is required")
	}
	gate := &Gate{
		licensePath:  config.LicensePath,
		bundlePath:   config.BundlePath,
		registryPath: config.RegistryPath,
		keys:         config.Keys,
		clock:        config.Clock,
		logger:       config.Logger,
		audit:        config.Audit,
	}
	if gate.keys == nil {
		gate.keys = keystore.Embedded()
	}
	if gate.clock == nil {
		gate.clock = clock.Real()
	}
	if gate.logger == nil {
		gate.logger = slog.New(slog.DiscardHandler)
	}
	return gate, nil
}

// Authorize decides whether feature may run right now. The answer
// derives entirely from disk: license file, revocation registry, and —
// for bundle-backed features — the sealed bundle itself, opened and
// immediately scrubbed so an Allow covers bundle integrity.
//
// A Decision with Allowed false is a normal answer, not an error. The
// error return is for operational failures only: an unknown feature,
// or a registry file that exists but cannot be parsed.
func (g *Gate) Authorize(ctx context.Context, feature Feature) (Decision, error) {
	decision, _, err := g.evaluate(feature, true)
	if err != nil {
		return Decision{}, err
	}
	g.record(ctx, decision)
	return decision, nil
}

// WithBundle is Authorize plus scoped access to the bundle plaintext.
// On Allow, fn runs over the decrypted bundle via vault.Use: the
// plaintext is zeroed when fn returns, even on panic. The separate
// integrity check is skipped — materialization proves the same thing,
// so the bundle goes through one scrub cycle, not two.
//
// A bundle failure during materialization converts the decision to a
// denial, same as Authorize would have reported. fn's own error
// propagates unchanged alongside the allowed decision.
func (g *Gate) WithBundle(ctx context.Context, feature Feature, fn func([]byte) error) (Decision, error) {
	decision, grant, err := g.evaluate(feature, false)
	if err != nil {
		return Decision{}, err
	}
	if !decision.Allowed {
		g.record(ctx, decision)
		return decision, nil
	}

	bundle, err := g.readBundle()
	if err != nil {
		decision = denyFor(decision, err)
		g.record(ctx, decision)
		return decision, nil
	}
	if err := vault.Use(bundle, grant.License, g.keys, fn); err != nil {
		if _, ok := entitlement.CodeOf(err); ok {
			decision = denyFor(decision, err)
			g.record(ctx, decision)
			return decision, nil
		}
		// The entitlement answer stands; the feature itself failed.
		g.record(ctx, decision)
		return decision, err
	}
	g.record(ctx, decision)
	return decision, nil
}

// evaluate runs the verification pipeline for one feature. prove
// controls whether bundle-backed features get the open-and-scrub
// integrity check; WithBundle skips it because materialization is
// about to establish the same thing.
func (g *Gate) evaluate(feature Feature, prove bool) (Decision, *verify.Grant, error) {
	required, ok := requirements[feature]
	if !ok {
		return Decision{}, nil, fmt.Errorf("gate: unknown feature %q", string(feature))
	}

	decision := Decision{
		Feature:   feature,
		CheckedAt: g.clock.Now(),
	}

	// Step 1: the license document, fresh from disk. Absence is the
	// free tier, not an error — deny quietly and move on.
	data, err := os.ReadFile(g.licensePath)
	if err != nil {
		if !os.IsNotExist(err) {
			g.logger.Warn("license file unreadable", "error", err)
		}
		decision.Code = entitlement.CodeMalformed
		return decision, nil, nil
	}

	// The fingerprint identifies the presented file in logs and the
	// audit trail. Computed before verification; it proves nothing.
	if document, err := license.Parse(data); err == nil {
		decision.Fingerprint = document.Fingerprint()
	}

	// Step 2: the revocation registry, fresh from disk. A registry
	// that exists but cannot be parsed is an operational failure: the
	// gate refuses to answer rather than answer without it.
	registry, err := g.loadRegistry()
	if err != nil {
		return Decision{}, nil, err
	}

	// Step 3: full verification at the evaluation instant.
	verifier := verify.Verifier{Keys: g.keys, Registry: registry}
	grant, err := verifier.VerifyAt(data, decision.CheckedAt)
	if err != nil {
		code, _ := entitlement.CodeOf(err)
		decision.Code = code
		return decision, nil, nil
	}
	decision.Edition = grant.Edition

	// Step 4: edition coverage.
	if !grant.Edition.Covers(required.minimum) {
		return decision, nil, nil
	}

	// Step 5: bundle integrity, for features that live in the bundle.
	if required.needsBundle && prove {
		if err := g.proveBundle(grant); err != nil {
			return denyFor(decision, err), nil, nil
		}
	}

	decision.Allowed = true
	return decision, grant, nil
}

// loadRegistry reads the revocation registry fresh. No registry path
// configured means no revocations.
func (g *Gate) loadRegistry() (*revocation.Registry, error) {
	if g.registryPath == "" {
		return revocation.Empty(), nil
	}
	registry, err := revocation.Load(g.registryPath)
	if err != nil {
		return nil, fmt.Errorf("gate: %w", err)
	}
	return registry, nil
}

// readBundle reads the sealed bundle file. Any failure to produce the
// bytes is an integrity failure: the bundle's presence and
// readability are part of what an Allow vouches for.
func (g *Gate) readBundle() ([]byte, error) {
	if g.bundlePath == "" {
		return nil, entitlement.New(entitlement.CodeIntegrityFailure, "gate")
	}
	data, err := os.ReadFile(g.bundlePath)
	if err != nil {
		return nil, entitlement.Wrap(entitlement.CodeIntegrityFailure, "gate", err)
	}
	return data, nil
}

// proveBundle opens the bundle and scrubs the plaintext immediately.
// It establishes integrity, authenticity, and that this license can
// decrypt it.
func (g *Gate) proveBundle(grant *verify.Grant) error {
	bundle, err := g.readBundle()
	if err != nil {
		return err
	}
	plaintext, err := vault.Open(bundle, grant.License, g.keys)
	if err != nil {
		return err
	}
	plaintext.Close()
	return nil
}

// denyFor classifies err's taxonomy code into the decision and clears
// Allowed.
func denyFor(decision Decision, err error) Decision {
	decision.Allowed = false
	code, _ := entitlement.CodeOf(err)
	decision.Code = code
	return decision
}

// record logs the decision and hands it to the audit trail. Recording
// never affects the answer.
func (g *Gate) record(ctx context.Context, decision Decision) {
	g.logger.Debug("authorization decision",
		"feature", decision.Feature,
		"allowed", decision.Allowed,
		"edition", decision.Edition,
		"code", decision.Code,
		"fingerprint", decision.Fingerprint,
	)
	if g.audit != nil {
		g.audit.Record(ctx, decision)
	}
}
