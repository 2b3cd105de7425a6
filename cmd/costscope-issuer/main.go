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
		// Commands that print their own output return an ExitError
		// with the desired exit code. Don't print a redundant
		// "error:" line for those.
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
	// Handle --version before anything else.
	for _, argument := range os.Args[1:] {
		if argument == "--version" {
			fmt.Printf("costscope-issuer %s\n", version.Info())
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
		Name:    "costscope-issuer",
		Summary: "Issue and verify Costscope licenses",
		Description: `Vendor-side license administration for Costscope.

Signing keys are generated sealed: the Ed25519 seed is encrypted under
an operator passphrase before it touches disk, and every subcommand
that needs the key prompts for that passphrase (or reads it from
--passphrase-file for scripted runs). Licenses are signed JSON
documents; "inspect" decodes one without verification, "verify" runs
the same verification pipeline the product runs.`,
		Subcommands: []*cli.Command{
			keygenCommand(),
			issueCommand(),
			inspectCommand(),
			verifyCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("costscope-issuer %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Generate this year's signing key",
				Command:     "costscope-issuer keygen --key-id 2026-01",
			},
			{
				Description: "Issue a one-year Pro license",
				Command:     "costscope-issuer issue --key 2026-01.csk --email dev@example.com --out license.json",
			},
			{
				Description: "Check a license file before shipping it",
				Command:     "costscope-issuer verify license.json",
			},
		},
	}
}
