// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/costscope/costscope/lib/cli"
	"github.com/costscope/costscope/lib/revocation"
)

func listCommand() *cli.Command {
	var registryPath string

	return &cli.Command{
		Name:    "list",
		Summary: "Show the registry contents",
		Usage:   "costscope-revoke list --registry <file>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flagSet.StringVar(&registryPath, "registry", "", "revocation registry file")
			return flagSet
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("list takes no positional arguments, got %q", args[0])
			}
			return runList(registryPath, os.Stdout)
		},
	}
}

func runList(registryPath string, stdout io.Writer) error {
	if registryPath == "" {
		return fmt.Errorf("--registry is required")
	}

	registry, err := revocation.Load(registryPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "revision %d, %d entries\n", registry.Revision(), registry.Len())
	if registry.Len() == 0 {
		return nil
	}

	fmt.Fprintln(stdout)
	writer := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "LICENSE KEY\tREVOKED\tREASON")
	for _, entry := range registry.Entries() {
		fmt.Fprintf(writer, "%s\t%s\t%s\n",
			entry.LicenseKey, formatInstant(entry.RevokedAt), entry.Reason)
	}
	return writer.Flush()
}

// formatInstant renders a Unix-seconds instant for display.
func formatInstant(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}
