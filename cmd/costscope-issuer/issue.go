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
	"github.com/costscope/costscope/lib/license"
)

func issueCommand() *cli.Command {
	var keyPath string
	var passphrasePath string
	var email string
	var editionName string
	var issuerName string
	var ttl time.Duration
	var outPath string

	return &cli.Command{
		Name:    "issue",
		Summary: "Issue a signed license",
		Description: `Issue a signed license document to a customer.

The license key is generated fresh (it is a serial number, not a
secret), the expiry is now + --ttl, and the signature covers every
field. The resulting file is what the customer installs; keep a copy
in the sales records.`,
		Usage: "costscope-issuer issue --key <file> --email <address> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("issue", pflag.ContinueOnError)
			flagSet.StringVar(&keyPath, "key", "", "sealed signing key file")
			flagSet.StringVar(&passphrasePath, "passphrase-file", "", `passphrase file ("-" for stdin, empty to prompt)`)
			flagSet.StringVar(&email, "email", "", "licensee contact address")
			flagSet.StringVar(&editionName, "edition", "pro", "entitlement tier to grant")
			flagSet.StringVar(&issuerName, "issuer", "Costscope, Inc.", "issuing entity recorded in the document")
			flagSet.DurationVar(&ttl, "ttl", 365*24*time.Hour, "validity span from issuance")
			flagSet.StringVar(&outPath, "out", "license.json", `license output path ("-" for stdout)`)
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Issue a one-year Pro license",
				Command:     "costscope-issuer issue --key 2026-01.csk --email dev@example.com",
			},
			{
				Description: "Issue a 30-day trial to stdout",
				Command:     "costscope-issuer issue --key 2026-01.csk --email trial@example.com --ttl 720h --out -",
			},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if keyPath == "" {
				return fmt.Errorf("--key is required")
			}
			if email == "" {
				return fmt.Errorf("--email is required")
			}

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

			return runIssue(key, email, editionName, issuerName, ttl, outPath, time.Now(), os.Stdout)
		},
	}
}

func runIssue(key *issuer.SigningKey, email, editionName, issuerName string, ttl time.Duration, outPath string, now time.Time, stdout io.Writer) error {
	edition, err := license.ParseEdition(editionName)
	if err != nil {
		return err
	}

	document, err := issuer.Issue(issuer.Request{
		Email:   email,
		Edition: edition,
		Issuer:  issuerName,
		TTL:     ttl,
	}, key, now)
	if err != nil {
		return err
	}

	encoded, err := document.Encode()
	if err != nil {
		return err
	}

	if outPath == "-" {
		_, err := stdout.Write(encoded)
		return err
	}

	if err := os.WriteFile(outPath, encoded, 0o600); err != nil {
		return fmt.Errorf("writing license: %w", err)
	}
	fmt.Fprintf(stdout, "license %s (%s) issued to %s, expires %s\n",
		document.Key, document.Edition, document.Email,
		time.Unix(document.Expires, 0).UTC().Format(time.RFC3339))
	return nil
}
