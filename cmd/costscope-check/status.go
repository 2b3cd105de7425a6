// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/costscope/costscope/lib/cli"
	"github.com/costscope/costscope/lib/clock"
	"github.com/costscope/costscope/lib/entitlement"
	"github.com/costscope/costscope/lib/gate"
	"github.com/costscope/costscope/lib/keystore"
	"github.com/costscope/costscope/lib/license"
	"github.com/costscope/costscope/lib/revocation"
	"github.com/costscope/costscope/lib/vault"
	"github.com/costscope/costscope/lib/verify"
)

func statusCommand() *cli.Command {
	var paths overrides
	var asJSON bool

	return &cli.Command{
		Name:    "status",
		Summary: "Report the full entitlement picture",
		Description: `Report everything support needs in one place: how far the license
progressed through verification, the granted edition and expiry, the
bundle's standing, and the per-feature gate answers.

Status is informational and always exits 0 when it could produce a
report; use "verify" or "probe" for taxonomy exit codes.`,
		Usage: "costscope-check status [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("status", pflag.ContinueOnError)
			paths.register(flagSet)
			flagSet.BoolVar(&asJSON, "json", false, "machine-readable output")
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Human-readable report",
				Command:     "costscope-check status",
			},
			{
				Description: "Feed the report to a support ticket",
				Command:     "costscope-check status --json",
			},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 0 {
				return fmt.Errorf("status takes no arguments")
			}
			cfg, err := paths.resolve()
			if err != nil {
				return err
			}
			return runStatus(ctx, cfg.Paths.License, cfg.Paths.Bundle, cfg.Paths.Revocations,
				keystore.Embedded(), time.Now(), asJSON, os.Stdout)
		},
	}
}

// statusOutput is the --json shape.
type statusOutput struct {
	Tier        string          `json:"tier"`
	State       string          `json:"state"`
	Code        string          `json:"code,omitempty"`
	Edition     string          `json:"edition,omitempty"`
	Email       string          `json:"email,omitempty"`
	Expires     string          `json:"expires,omitempty"`
	Fingerprint string          `json:"fingerprint,omitempty"`
	Bundle      bundleStatus    `json:"bundle"`
	Features    []featureStatus `json:"features"`
}

type bundleStatus struct {
	Installed bool   `json:"installed"`
	Name      string `json:"name,omitempty"`
	OK        bool   `json:"ok"`
	Code      string `json:"code,omitempty"`
}

type featureStatus struct {
	Feature string `json:"feature"`
	Allowed bool   `json:"allowed"`
	Code    string `json:"code,omitempty"`
}

func runStatus(ctx context.Context, licensePath, bundlePath, registryPath string, keys *keystore.Store, now time.Time, asJSON bool, stdout io.Writer) error {
	registry := revocation.Empty()
	if registryPath != "" {
		loaded, err := revocation.Load(registryPath)
		if err != nil {
			return err
		}
		registry = loaded
	}

	output := statusOutput{Tier: "free", State: verify.StateUnparsed.String()}

	data, readErr := os.ReadFile(licensePath)
	var report verify.Report
	if readErr == nil {
		verifier := verify.Verifier{Keys: keys, Registry: registry}
		report = verifier.CheckAt(data, now)
		output.State = report.State.String()
		output.Code = string(report.Code)
		if document, err := license.Parse(data); err == nil {
			output.Fingerprint = document.Fingerprint()
		}
	} else {
		// Absent license is the free tier; the report below says so
		// without echoing the path.
		output.Code = string(entitlement.CodeMalformed)
	}

	if report.Grant != nil {
		grant := report.Grant
		output.Tier = grant.Edition.String()
		output.Edition = grant.Edition.String()
		output.Email = grant.License.Email
		output.Expires = formatInstant(grant.License.Expires)
	}

	output.Bundle = bundleStanding(bundlePath, report.Grant, keys)
	features, err := featureStandings(ctx, licensePath, bundlePath, registryPath, keys, now)
	if err != nil {
		return err
	}
	output.Features = features

	if asJSON {
		encoded, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s\n", encoded)
		return nil
	}

	printStatus(output, report.Grant, now, stdout)
	return nil
}

// bundleStanding reports the sealed bundle's state. With a verified
// license the bundle is proven by opening it (and immediately
// scrubbing); without one, only its presence and structure are
// reported.
func bundleStanding(bundlePath string, grant *verify.Grant, keys *keystore.Store) bundleStatus {
	standing := bundleStatus{}
	if bundlePath == "" {
		return standing
	}
	data, err := os.ReadFile(bundlePath)
	if err != nil {
		return standing
	}
	standing.Installed = true

	if info, err := vault.Inspect(data); err == nil {
		standing.Name = info.BundleName
	}
	if grant == nil {
		return standing
	}

	plaintext, err := vault.Open(data, grant.License, keys)
	if err != nil {
		standing.Code = taxonomyCode(err)
		return standing
	}
	plaintext.Close()
	standing.OK = true
	return standing
}

// featureStandings asks the gate about every feature, the way the
// product would.
func featureStandings(ctx context.Context, licensePath, bundlePath, registryPath string, keys *keystore.Store, now time.Time) ([]featureStatus, error) {
	authorizer, err := gate.New(gate.Config{
		LicensePath:  licensePath,
		BundlePath:   bundlePath,
		RegistryPath: registryPath,
		Keys:         keys,
		Clock:        clock.Fake(now),
	})
	if err != nil {
		return nil, err
	}

	var standings []featureStatus
	for _, feature := range gate.Features() {
		decision, err := authorizer.Authorize(ctx, feature)
		if err != nil {
			return nil, err
		}
		standings = append(standings, featureStatus{
			Feature: feature.String(),
			Allowed: decision.Allowed,
			Code:    string(decision.Code),
		})
	}
	return standings, nil
}

func printStatus(output statusOutput, grant *verify.Grant, now time.Time, stdout io.Writer) {
	fmt.Fprintf(stdout, "Tier:        %s\n", output.Tier)
	fmt.Fprintf(stdout, "State:       %s\n", output.State)
	if output.Code != "" {
		fmt.Fprintf(stdout, "Code:        %s\n", output.Code)
	}
	if grant != nil {
		remaining := time.Unix(grant.License.Expires, 0).Sub(now)
		fmt.Fprintf(stdout, "Email:       %s\n", grant.License.Email)
		fmt.Fprintf(stdout, "Expires:     %s (%d days)\n", output.Expires, int(remaining.Hours()/24))
	}
	if output.Fingerprint != "" {
		fmt.Fprintf(stdout, "Fingerprint: %s\n", output.Fingerprint)
	}

	switch {
	case !output.Bundle.Installed:
		fmt.Fprintf(stdout, "Bundle:      not installed\n")
	case output.Bundle.OK:
		fmt.Fprintf(stdout, "Bundle:      %s (ok)\n", output.Bundle.Name)
	case output.Bundle.Code != "":
		fmt.Fprintf(stdout, "Bundle:      %s (%s)\n", output.Bundle.Name, output.Bundle.Code)
	default:
		fmt.Fprintf(stdout, "Bundle:      %s (not proven, no verified license)\n", output.Bundle.Name)
	}

	fmt.Fprintf(stdout, "\nFeatures:\n")
	writer := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	for _, standing := range output.Features {
		answer := "allowed"
		if !standing.Allowed {
			answer = "denied"
			if standing.Code != "" {
				answer = "denied (" + standing.Code + ")"
			}
		}
		fmt.Fprintf(writer, "  %s\t%s\n", standing.Feature, answer)
	}
	writer.Flush()
}
