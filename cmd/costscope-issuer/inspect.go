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
	"time"

	"github.com/spf13/pflag"

	"github.com/costscope/costscope/lib/cli"
	"github.com/costscope/costscope/lib/license"
)

func inspectCommand() *cli.Command {
	var asJSON bool

	return &cli.Command{
		Name:    "inspect",
		Summary: "Decode a license file without verifying it",
		Description: `Decode a license document and display its fields.

Inspect checks structure only. Every displayed value is an
unauthenticated claim until "verify" has vouched for the signature.`,
		Usage: "costscope-issuer inspect <license-file>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
			flagSet.BoolVar(&asJSON, "json", false, "machine-readable output")
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Show the fields of an issued license",
				Command:     "costscope-issuer inspect license.json",
			},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("inspect takes exactly one license file argument")
			}
			return runInspect(args[0], asJSON, os.Stdout)
		},
	}
}

// inspectOutput is the --json shape. Mirrors the document plus the
// derived fingerprint; the signature stays out (it is bytes, and
// nothing downstream of inspect should trust it anyway).
type inspectOutput struct {
	Email       string `json:"email"`
	Key         string `json:"license_key"`
	Edition     string `json:"edition"`
	Issuer      string `json:"issuer"`
	IssuedAt    string `json:"issued_at"`
	Expires     string `json:"expires"`
	KeyID       string `json:"key_id"`
	Version     int    `json:"version"`
	Fingerprint string `json:"fingerprint"`
}

func runInspect(path string, asJSON bool, stdout io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading license: %w", err)
	}
	document, err := license.Parse(data)
	if err != nil {
		return err
	}

	if asJSON {
		output := inspectOutput{
			Email:       document.Email,
			Key:         document.Key,
			Edition:     document.Edition.String(),
			Issuer:      document.Issuer,
			IssuedAt:    formatInstant(document.IssuedAt),
			Expires:     formatInstant(document.Expires),
			KeyID:       document.KeyID,
			Version:     document.Version,
			Fingerprint: document.Fingerprint(),
		}
		encoded, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s\n", encoded)
		return nil
	}

	fmt.Fprintf(stdout, "Unverified document (structure checked, signature not):\n\n")
	fmt.Fprintf(stdout, "Email:       %s\n", document.Email)
	fmt.Fprintf(stdout, "License key: %s\n", document.Key)
	fmt.Fprintf(stdout, "Edition:     %s\n", document.Edition)
	fmt.Fprintf(stdout, "Issuer:      %s\n", document.Issuer)
	fmt.Fprintf(stdout, "Issued:      %s\n", formatInstant(document.IssuedAt))
	fmt.Fprintf(stdout, "Expires:     %s\n", formatInstant(document.Expires))
	fmt.Fprintf(stdout, "Key ID:      %s\n", document.KeyID)
	fmt.Fprintf(stdout, "Fingerprint: %s\n", document.Fingerprint())
	return nil
}

// formatInstant renders a Unix-seconds instant for display.
func formatInstant(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}
