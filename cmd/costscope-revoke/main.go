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
			fmt.Printf("costscope-revoke %s\n", version.Info())
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
		Name:    "costscope-revoke",
		Summary: "Maintain the license revocation registry",
		Description: `Vendor-side revocation registry maintenance.

The registry is append-only. Revoking a key is permanent; the remedy
for a mistaken revocation is issuing the customer a new license with
a new key. After editing, publish the registry file to the location
customer installs fetch it from.`,
		Subcommands: []*cli.Command{
			addCommand(),
			listCommand(),
			checkCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("costscope-revoke %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Revoke a license after a chargeback",
				Command:     "costscope-revoke add --registry revocations.jsonc --reason chargeback CS-1A2B-3C4D-5E6F-7081",
			},
			{
				Description: "Show the registry contents",
				Command:     "costscope-revoke list --registry revocations.jsonc",
			},
		},
	}
}
