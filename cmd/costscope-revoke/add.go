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
	"github.com/costscope/costscope/lib/revocation"
)

func addCommand() *cli.Command {
	var registryPath string
	var reason string

	return &cli.Command{
		Name:    "add",
		Summary: "Revoke a license key",
		Description: `Add a license key to the revocation registry.

The key must match the issued license exactly; the registry does no
pattern matching. A missing registry file is created; a duplicate key
is refused. The reason is an internal note and is never shown to the
license holder.`,
		Usage: "costscope-revoke add --registry <file> <license-key>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("add", pflag.ContinueOnError)
			flagSet.StringVar(&registryPath, "registry", "", "revocation registry file")
			flagSet.StringVar(&reason, "reason", "", `internal note ("chargeback", "key leaked")`)
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Revoke a license after a chargeback",
				Command:     "costscope-revoke add --registry revocations.jsonc --reason chargeback CS-1A2B-3C4D-5E6F-7081",
			},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("add takes exactly one license key argument")
			}
			return runAdd(registryPath, args[0], reason, time.Now(), os.Stdout)
		},
	}
}

func runAdd(registryPath, licenseKey, reason string, now time.Time, stdout io.Writer) error {
	if registryPath == "" {
		return fmt.Errorf("--registry is required")
	}

	err := revocation.Append(registryPath, revocation.Entry{
		LicenseKey: licenseKey,
		RevokedAt:  now.Unix(),
		Reason:     reason,
	})
	if err != nil {
		return err
	}

	registry, err := revocation.Load(registryPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "revoked %s; registry now at revision %d\n",
		licenseKey, registry.Revision())
	return nil
}
