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

	"github.com/costscope/costscope/lib/audit"
	"github.com/costscope/costscope/lib/cli"
)

func auditCommand() *cli.Command {
	return &cli.Command{
		Name:    "audit",
		Summary: "Inspect the local decision trail",
		Subcommands: []*cli.Command{
			auditListCommand(),
		},
	}
}

func auditListCommand() *cli.Command {
	var paths overrides
	var limit int

	return &cli.Command{
		Name:    "list",
		Summary: "Show recent gate decisions",
		Description: `List the most recent authorization decisions, newest first.

The trail is local and best-effort: it shows what the gate decided and
why, identified by license fingerprint. Rows never contain license
keys.`,
		Usage: "costscope-check audit list [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
			paths.register(flagSet)
			flagSet.IntVar(&limit, "limit", 20, "maximum decisions to show")
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "The last 50 decisions",
				Command:     "costscope-check audit list --limit 50",
			},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 0 {
				return fmt.Errorf("list takes no arguments")
			}
			cfg, err := paths.resolve()
			if err != nil {
				return err
			}
			if !cfg.Audit.Enabled || cfg.Audit.Path == "" {
				fmt.Fprintf(os.Stdout, "audit trail is disabled\n")
				return nil
			}

			trail, err := audit.Open(cfg.Audit.Path, logger)
			if err != nil {
				return err
			}
			defer trail.Close()

			return runAuditList(ctx, trail, limit, os.Stdout)
		},
	}
}

func runAuditList(ctx context.Context, trail *audit.Trail, limit int, stdout io.Writer) error {
	entries, err := trail.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(stdout, "no recorded decisions\n")
		return nil
	}

	writer := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(writer, "WHEN\tFEATURE\tDECISION\tEDITION\tCODE\tLICENSE\n")
	for _, entry := range entries {
		decision := "allow"
		if !entry.Allowed {
			decision = "deny"
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%s\n",
			entry.When.UTC().Format(time.RFC3339),
			entry.Feature,
			decision,
			entry.Edition,
			entry.Code,
			entry.Fingerprint,
		)
	}
	return writer.Flush()
}
