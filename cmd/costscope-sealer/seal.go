// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/costscope/costscope/lib/cli"
	"github.com/costscope/costscope/lib/issuer"
	"github.com/costscope/costscope/lib/license"
	"github.com/costscope/costscope/lib/vault"
)

func sealCommand() *cli.Command {
	var licensePath string
	var keyPath string
	var passphrasePath string
	var bundleName string
	var compressionName string
	var outPath string

	return &cli.Command{
		Name:    "seal",
		Summary: "Seal a rule pack for one issued license",
		Description: `Encrypt a heuristics rule pack into a bundle container.

Bundles are sealed per license: the encryption key is derived from the
issued document, so only the customer holding that exact license can
open the result. The container is signed with the bundle signing key
so the product can establish integrity before touching the ciphertext.

The license file is the document as issued; sealing against an edited
or re-serialized copy produces a bundle the customer cannot open.`,
		Usage: "costscope-sealer seal --license <file> --key <file> <rule-pack> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("seal", pflag.ContinueOnError)
			flagSet.StringVar(&licensePath, "license", "", "issued license document to seal for")
			flagSet.StringVar(&keyPath, "key", "", "sealed signing key file")
			flagSet.StringVar(&passphrasePath, "passphrase-file", "", `passphrase file ("-" for stdin, empty to prompt)`)
			flagSet.StringVar(&bundleName, "name", "", "bundle label recorded in the header (default: rule-pack file name)")
			flagSet.StringVar(&compressionName, "compression", "zstd", "payload compression: zstd, lz4, or none")
			flagSet.StringVar(&outPath, "out", "", `bundle output path (default: rule-pack name + ".csbv", "-" for stdout)`)
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Seal a rule pack for a customer's license",
				Command:     "costscope-sealer seal --license license.json --key 2026-01.csk heuristics-2026.08.json",
			},
			{
				Description: "Seal without compression (pre-compressed model blobs)",
				Command:     "costscope-sealer seal --license license.json --key 2026-01.csk --compression none models.bin",
			},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("seal takes exactly one rule-pack file argument")
			}
			if licensePath == "" {
				return fmt.Errorf("--license is required")
			}
			if keyPath == "" {
				return fmt.Errorf("--key is required")
			}

			licenseData, err := os.ReadFile(licensePath)
			if err != nil {
				return fmt.Errorf("reading license: %w", err)
			}
			document, err := license.Parse(licenseData)
			if err != nil {
				return err
			}

			plaintext, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading rule pack: %w", err)
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

			name := bundleName
			if name == "" {
				name = bundleNameFor(args[0])
			}
			out := outPath
			if out == "" {
				out = defaultOutPath(args[0])
			}
			return runSeal(plaintext, document, key, name, compressionName, out, os.Stdout)
		},
	}
}

func runSeal(plaintext []byte, document *license.License, key *issuer.SigningKey, bundleName, compressionName, outPath string, stdout io.Writer) error {
	compression, err := vault.ParseCompressionTag(compressionName)
	if err != nil {
		return err
	}

	bundle, err := vault.Seal(plaintext, document, key, vault.SealOptions{
		BundleName:  bundleName,
		Compression: compression,
	})
	if err != nil {
		return err
	}

	if outPath == "-" {
		_, err := stdout.Write(bundle)
		return err
	}

	if err := os.WriteFile(outPath, bundle, 0o644); err != nil {
		return fmt.Errorf("writing bundle: %w", err)
	}
	fmt.Fprintf(stdout, "bundle %s sealed for %s (%d bytes in, %d bytes out)\n",
		bundleName, document.Fingerprint(), len(plaintext), len(bundle))
	return nil
}

// bundleNameFor derives the header label from the rule-pack file name:
// the base name without its extension.
func bundleNameFor(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// defaultOutPath places the bundle next to the rule pack with the
// container extension.
func defaultOutPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".csbv"
}
