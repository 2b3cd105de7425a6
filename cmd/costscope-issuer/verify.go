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
	"github.com/costscope/costscope/lib/issuer"
	"github.com/costscope/costscope/lib/keystore"
	"github.com/costscope/costscope/lib/revocation"
	"github.com/costscope/costscope/lib/verify"
)

func verifyCommand() *cli.Command {
	var keyPath string
	var passphrasePath string
	var registryPath string
	var atInstant string

	return &cli.Command{
		Name:    "verify",
		Summary: "Verify a license file",
		Description: `Run the full verification pipeline against a license file: structure,
signature, expiry, revocation.

By default the license is checked against the trust table compiled
into this binary, which is the answer a release build gives. --key
checks against a sealed signing key file instead, for verifying a
license before its key has entered the compiled table.

Exit code 0 means granted; failures exit with the printed taxonomy
code's exit code (10-16).`,
		Usage: "costscope-issuer verify <license-file> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("verify", pflag.ContinueOnError)
			flagSet.StringVar(&keyPath, "key", "", "sealed signing key file to trust instead of the compiled table")
			flagSet.StringVar(&passphrasePath, "passphrase-file", "", `passphrase file for --key ("-" for stdin, empty to prompt)`)
			flagSet.StringVar(&registryPath, "revocations", "", "revocation registry to consult")
			flagSet.StringVar(&atInstant, "at", "", "evaluate at this RFC 3339 instant instead of now")
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Check a license against the compiled trust table",
				Command:     "costscope-issuer verify license.json",
			},
			{
				Description: "Pre-shipment check against a freshly generated key",
				Command:     "costscope-issuer verify license.json --key 2026-01.csk",
			},
			{
				Description: "Confirm a license will still verify next year",
				Command:     "costscope-issuer verify license.json --at 2027-01-01T00:00:00Z",
			},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("verify takes exactly one license file argument")
			}

			now := time.Now()
			if atInstant != "" {
				parsed, err := time.Parse(time.RFC3339, atInstant)
				if err != nil {
					return fmt.Errorf("parsing --at: %w", err)
				}
				now = parsed
			}

			keys := keystore.Embedded()
			if keyPath != "" {
				passphrase, err := cli.ReadPassphrase(passphrasePath)
				if err != nil {
					return err
				}
				defer passphrase.Close()

				key, err := issuer.LoadSigningKey(keyPath, passphrase)
				if err != nil {
					return err
				}
				defer key.Close()

				keys, err = keystore.New([]keystore.Entry{key.KeystoreEntry(0, 0)})
				if err != nil {
					return err
				}
			}

			return runVerify(args[0], registryPath, keys, now, os.Stdout)
		},
	}
}

func runVerify(licensePath, registryPath string, keys *keystore.Store, now time.Time, stdout io.Writer) error {
	data, err := os.ReadFile(licensePath)
	if err != nil {
		return fmt.Errorf("reading license: %w", err)
	}

	registry := revocation.Empty()
	if registryPath != "" {
		registry, err = revocation.Load(registryPath)
		if err != nil {
			return err
		}
	}

	verifier := verify.Verifier{Keys: keys, Registry: registry}
	report := verifier.CheckAt(data, now)

	if report.Grant != nil {
		grant := report.Grant
		fmt.Fprintf(stdout, "State:   %s\n", report.State)
		fmt.Fprintf(stdout, "Edition: %s\n", grant.Edition)
		fmt.Fprintf(stdout, "Email:   %s\n", grant.License.Email)
		fmt.Fprintf(stdout, "Expires: %s\n", formatInstant(grant.License.Expires))
		return nil
	}

	fmt.Fprintf(stdout, "State: %s\n", report.State)
	fmt.Fprintf(stdout, "Code:  %s\n", report.Code)
	fmt.Fprintf(stdout, "%s\n", report.Code.Message())
	return &cli.ExitError{Code: report.Code.ExitCode()}
}
