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
	"github.com/costscope/costscope/lib/codec"
	"github.com/costscope/costscope/lib/vault"
)

func infoCommand() *cli.Command {
	var diagnostic bool

	return &cli.Command{
		Name:    "info",
		Summary: "Show a bundle's header without decrypting it",
		Description: `Display the header of a sealed bundle container.

Info checks container structure only. Every displayed value is an
unauthenticated claim — the signature is not verified, and nothing is
decrypted. --diag additionally renders the raw header in CBOR
diagnostic notation for byte-level debugging of release artifacts.`,
		Usage: "costscope-sealer info <bundle-file>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("info", pflag.ContinueOnError)
			flagSet.BoolVar(&diagnostic, "diag", false, "also print the header in CBOR diagnostic notation")
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Show a bundle's header",
				Command:     "costscope-sealer info heuristics-2026.08.csbv",
			},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("info takes exactly one bundle file argument")
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading bundle: %w", err)
			}
			return runInfo(data, diagnostic, os.Stdout)
		},
	}
}

func runInfo(data []byte, diagnostic bool, stdout io.Writer) error {
	info, err := vault.Inspect(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Unverified header (structure checked, signature not):\n\n")
	fmt.Fprintf(stdout, "Bundle:       %s\n", info.BundleName)
	fmt.Fprintf(stdout, "Key ID:       %s\n", info.KeyID)
	fmt.Fprintf(stdout, "Compression:  %s\n", info.Compression)
	fmt.Fprintf(stdout, "Plaintext:    %d bytes (declared)\n", info.UncompressedSize)
	fmt.Fprintf(stdout, "Ciphertext:   %d bytes\n", info.CiphertextSize)
	fmt.Fprintf(stdout, "Created:      %s\n", time.Unix(info.CreatedAt, 0).UTC().Format(time.RFC3339))

	if diagnostic {
		notation, err := codec.Diagnose(info.HeaderBytes)
		if err != nil {
			return fmt.Errorf("rendering header diagnostic: %w", err)
		}
		fmt.Fprintf(stdout, "\nHeader CBOR:  %s\n", notation)
	}
	return nil
}
