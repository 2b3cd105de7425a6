// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/costscope/costscope/lib/cli"
	"github.com/costscope/costscope/lib/version"
)

func main() {
	if err := run(); err != nil {
		var exit *cli.ExitError
		if errors.As(err, &exit) {
			os.Exit(exit.Code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

func run() error {
	for _, argument := range os.Args[1:] {
		if argument == "--version" {
			fmt.Printf("costscope-check %s\n", version.Info())
			return nil
		}
	}

	args, level, err := cli.SplitLogLevel(os.Args[1:])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := cli.NewLogger(level)
	return rootCommand().Execute(ctx, args, logger)
}

func rootCommand() *cli.Command {
	return &cli.Command{
		Name:    "costscope-check",
		Summary: "Diagnose costscope entitlement",
		Description: `Support diagnostics for costscope licensing.

"status" reports the whole entitlement picture, "verify" runs the
license verifier alone, "probe" asks the feature gate the same
question the product asks, and "audit list" shows recent decisions.

verify and probe exit with the failure's taxonomy exit code (10-16),
so support scripts can branch on the exact denial without parsing
output.`,
		Subcommands: []*cli.Command{
			statusCommand(),
			verifyCommand(),
			probeCommand(),
			auditCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("costscope-check %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Full entitlement report",
				Command:     "costscope-check status",
			},
			{
				Description: "Why is autofix denied?",
				Command:     "costscope-check probe --feature autofix; echo exit=$?",
			},
			{
				Description: "Verify a specific license file",
				Command:     "costscope-check verify --license /tmp/license.json",
			},
		},
	}
}
