// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/costscope/costscope/lib/cli"
	"github.com/costscope/costscope/lib/entitlement"
	"github.com/costscope/costscope/lib/keystore"
	"github.com/costscope/costscope/lib/revocation"
	"github.com/costscope/costscope/lib/verify"
)

func verifyCommand() *cli.Command {
	var paths overrides

	return &cli.Command{
		Name:    "verify",
		Summary: "Run the license verifier alone",
		Description: `Verify the installed license against the trust table compiled into
this build: structure, signature, expiry, revocation.

Exit code 0 means granted; failures exit with the taxonomy exit code
(10-16), so scripts can branch on the exact denial.`,
		Usage: "costscope-check verify [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("verify", pflag.ContinueOnError)
			paths.register(flagSet)
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Branch a support script on the denial kind",
				Command:     "costscope-check verify; [ $? -eq 13 ] && echo expired",
			},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 0 {
				return fmt.Errorf("verify takes no arguments")
			}
			cfg, err := paths.resolve()
			if err != nil {
				return err
			}
			return runVerify(cfg.Paths.License, cfg.Paths.Revocations,
				keystore.Embedded(), time.Now(), os.Stdout)
		},
	}
}

func runVerify(licensePath, registryPath string, keys *keystore.Store, now time.Time, stdout io.Writer) error {
	registry := revocation.Empty()
	if registryPath != "" {
		loaded, err := revocation.Load(registryPath)
		if err != nil {
			return err
		}
		registry = loaded
	}

	// An unreadable license file is the free-tier condition. The
	// report stays generic: no path, no read-error detail.
	data, err := os.ReadFile(licensePath)
	if err != nil {
		return printDenial(verify.StateUnparsed, entitlement.CodeMalformed, stdout)
	}

	verifier := verify.Verifier{Keys: keys, Registry: registry}
	report := verifier.CheckAt(data, now)

	if report.Grant != nil {
		grant := report.Grant
		fmt.Fprintf(stdout, "State:   %s\n", report.State)
		fmt.Fprintf(stdout, "Edition: %s\n", grant.Edition)
		fmt.Fprintf(stdout, "Expires: %s\n", formatInstant(grant.License.Expires))
		return nil
	}
	return printDenial(report.State, report.Code, stdout)
}

func printDenial(state verify.State, code entitlement.Code, stdout io.Writer) error {
	fmt.Fprintf(stdout, "State: %s\n", state)
	fmt.Fprintf(stdout, "Code:  %s\n", code)
	fmt.Fprintf(stdout, "%s\n", code.Message())
	return &cli.ExitError{Code: code.ExitCode()}
}
