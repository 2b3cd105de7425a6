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

	"github.com/costscope/costscope/lib/cli"
	"github.com/costscope/costscope/lib/revocation"
)

func checkCommand() *cli.Command {
	var registryPath string

	return &cli.Command{
		Name:    "check",
		Summary: "Check whether a license key is revoked",
		Description: `Look up a license key in the registry.

Exit codes, for scripting:
  0  the key is revoked
  1  the key is not revoked
  2  the registry could not be read`,
		Usage: "costscope-revoke check --registry <file> <license-key>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("check", pflag.ContinueOnError)
			flagSet.StringVar(&registryPath, "registry", "", "revocation registry file")
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Gate a support script on revocation state",
				Command:     "costscope-revoke check --registry revocations.jsonc CS-1A2B-3C4D-5E6F-7081 && echo revoked",
			},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("check takes exactly one license key argument")
			}
			return runCheck(registryPath, args[0], os.Stdout, os.Stderr)
		},
	}
}

func runCheck(registryPath, licenseKey string, stdout, stderr io.Writer) error {
	if registryPath == "" {
		return fmt.Errorf("--registry is required")
	}

	registry, err := revocation.Load(registryPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return &cli.ExitError{Code: 2}
	}

	entry, revoked := registry.Lookup(licenseKey)
	if !revoked {
		fmt.Fprintf(stdout, "not revoked\n")
		return &cli.ExitError{Code: 1}
	}

	if entry.Reason != "" {
		fmt.Fprintf(stdout, "revoked at %s (%s)\n", formatInstant(entry.RevokedAt), entry.Reason)
	} else {
		fmt.Fprintf(stdout, "revoked at %s\n", formatInstant(entry.RevokedAt))
	}
	return nil
}
