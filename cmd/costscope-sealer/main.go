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
			fmt.Printf("costscope-sealer %s\n", version.Info())
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
		Name:    "costscope-sealer",
		Summary: "Seal heuristic bundles for issued licenses",
		Description: `Vendor-side bundle sealing for the Costscope release pipeline.

"seal" encrypts a rule pack for one issued license; "info" displays a
bundle's header without decrypting anything.`,
		Subcommands: []*cli.Command{
			sealCommand(),
			infoCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("costscope-sealer %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Seal a rule pack for a customer's license",
				Command:     "costscope-sealer seal --license license.json --key 2026-01.csk heuristics-2026.08.json",
			},
			{
				Description: "Show a bundle's header",
				Command:     "costscope-sealer info heuristics-2026.08.csbv",
			},
		},
	}
}
