// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/costscope/costscope/lib/cli"
	"github.com/costscope/costscope/lib/issuer"
	"github.com/costscope/costscope/lib/keystore"
	"github.com/costscope/costscope/lib/secret"
)

func keygenCommand() *cli.Command {
	var keyID string
	var outPath string
	var passphrasePath string
	var comment string

	return &cli.Command{
		Name:    "keygen",
		Summary: "Generate a sealed license signing key",
		Description: `Generate a new Ed25519 signing key, seal it under a passphrase, and
print the trust table row that admits it to release binaries.

The sealed key file is the only artifact this command writes; the
printed row is pasted into the compiled trust table by release
engineering. Key ids follow the rollout period convention ("2026-01"),
and the printed not_before bound covers that period.`,
		Usage: "costscope-issuer keygen [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("keygen", pflag.ContinueOnError)
			flagSet.StringVar(&keyID, "key-id", time.Now().UTC().Format("2006-01"), "key identifier (rollout year-month)")
			flagSet.StringVar(&outPath, "out", "", "sealed key output path (default <key-id>.csk)")
			flagSet.StringVar(&passphrasePath, "passphrase-file", "", `passphrase file ("-" for stdin, empty to prompt)`)
			flagSet.StringVar(&comment, "comment", "primary issuing key", "comment for the printed trust table row")
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Generate the 2026-01 key, prompting for a new passphrase",
				Command:     "costscope-issuer keygen --key-id 2026-01",
			},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("keygen takes no positional arguments, got %q", args[0])
			}
			passphrase, err := cli.NewPassphrase(passphrasePath)
			if err != nil {
				return err
			}
			defer passphrase.Close()
			return runKeygen(keyID, outPath, comment, passphrase, time.Now(), os.Stdout)
		},
	}
}

func runKeygen(keyID, outPath, comment string, passphrase *secret.Buffer, now time.Time, stdout io.Writer) error {
	if outPath == "" {
		outPath = keyID + ".csk"
	}
	if _, err := os.Stat(outPath); err == nil {
		return fmt.Errorf("refusing to overwrite existing key file %s", outPath)
	}

	key, err := issuer.GenerateSigningKey(keyID)
	if err != nil {
		return err
	}
	defer key.Close()

	if err := issuer.SaveSigningKey(key, outPath, passphrase); err != nil {
		return err
	}

	entry := key.KeystoreEntry(trustTableNotBefore(keyID, now).Unix(), 0)
	fmt.Fprintf(stdout, "sealed signing key written to %s\n", outPath)
	fmt.Fprintf(stdout, "\ntrust table row (paste into the embedded key table):\n\n")
	printTrustTableRow(stdout, entry, comment)
	return nil
}

// trustTableNotBefore picks the not_before instant for the printed
// trust table row. A year-month key id bounds the whole rollout
// period; an unconventional id falls back to the start of the current
// day.
func trustTableNotBefore(keyID string, now time.Time) time.Time {
	if period, err := time.Parse("2006-01", keyID); err == nil {
		return period
	}
	return now.UTC().Truncate(24 * time.Hour)
}

// printTrustTableRow renders entry in the embedded key table's literal
// form, ready to paste.
func printTrustTableRow(w io.Writer, entry keystore.Entry, comment string) {
	fmt.Fprintf(w, "\t{\n")
	fmt.Fprintf(w, "\t\tkeyID:     %q,\n", entry.KeyID)
	fmt.Fprintf(w, "\t\tpublicKey: %q,\n", hex.EncodeToString(entry.PublicKey))
	fmt.Fprintf(w, "\t\tnotBefore: %d, // %s\n", entry.NotBefore, time.Unix(entry.NotBefore, 0).UTC().Format("2006-01-02"))
	fmt.Fprintf(w, "\t\tnotAfter:  0,\n")
	fmt.Fprintf(w, "\t\tcomment:   %q,\n", comment)
	fmt.Fprintf(w, "\t},\n")
}
