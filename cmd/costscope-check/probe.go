// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/costscope/costscope/lib/audit"
	"github.com/costscope/costscope/lib/cli"
	"github.com/costscope/costscope/lib/config"
	"github.com/costscope/costscope/lib/gate"
	"github.com/costscope/costscope/lib/keystore"
)

func probeCommand() *cli.Command {
	var paths overrides
	var featureName string

	return &cli.Command{
		Name:    "probe",
		Summary: "Ask the feature gate about one feature",
		Description: `Run the full gate decision for a feature: license verification,
revocation, edition coverage, and — for bundle-backed features —
proving the bundle by opening it.

This is the product's own authorization path, so a denial here is
exactly the denial the feature command gives. Allowed exits 0; denials
inside the taxonomy exit with the taxonomy exit code (10-16); an
edition that simply does not include the feature exits 1. The decision
is recorded to the audit trail when one is configured.`,
		Usage: "costscope-check probe --feature <name> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("probe", pflag.ContinueOnError)
			paths.register(flagSet)
			flagSet.StringVar(&featureName, "feature", "", "feature to probe (autofix, patch, drift, anomaly, map-unlimited, explain-advanced)")
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Why is autofix denied?",
				Command:     "costscope-check probe --feature autofix; echo exit=$?",
			},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 0 {
				return fmt.Errorf("probe takes no arguments")
			}
			if featureName == "" {
				return fmt.Errorf("--feature is required")
			}
			feature, err := gate.ParseFeature(featureName)
			if err != nil {
				return err
			}
			cfg, err := paths.resolve()
			if err != nil {
				return err
			}

			authorizer, cleanup, err := buildGate(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			return runProbe(ctx, authorizer, feature, os.Stdout)
		},
	}
}

// buildGate assembles the product's gate from the resolved
// configuration, wiring the audit trail when enabled. The returned
// cleanup closes the trail.
func buildGate(cfg *config.Config, logger *slog.Logger) (gate.Authorizer, func(), error) {
	gateConfig := gate.Config{
		LicensePath:  cfg.Paths.License,
		BundlePath:   cfg.Paths.Bundle,
		RegistryPath: cfg.Paths.Revocations,
		Keys:         keystore.Embedded(),
		Logger:       logger,
	}

	cleanup := func() {}
	if cfg.Audit.Enabled && cfg.Audit.Path != "" {
		trail, err := audit.Open(cfg.Audit.Path, logger)
		if err != nil {
			// A broken trail never blocks diagnostics; the gate just
			// runs unrecorded.
			logger.Debug("audit trail unavailable", "error", err)
		} else {
			gateConfig.Audit = trail
			cleanup = func() { trail.Close() }
		}
	}

	authorizer, err := gate.New(gateConfig)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return authorizer, cleanup, nil
}

func runProbe(ctx context.Context, authorizer gate.Authorizer, feature gate.Feature, stdout io.Writer) error {
	decision, err := authorizer.Authorize(ctx, feature)
	if err != nil {
		return err
	}

	if decision.Allowed {
		fmt.Fprintf(stdout, "%s: allowed (%s)\n", decision.Feature, decision.Edition)
		return nil
	}

	if decision.Code != "" {
		fmt.Fprintf(stdout, "%s: denied (%s)\n", decision.Feature, decision.Code)
		fmt.Fprintf(stdout, "%s\n", decision.Code.Message())
		return &cli.ExitError{Code: decision.Code.ExitCode()}
	}

	// Verified license, feature outside its edition.
	fmt.Fprintf(stdout, "%s: denied (edition %s does not include it)\n", decision.Feature, decision.Edition)
	return &cli.ExitError{Code: 1}
}
