// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework shared by the
// costscope tools (costscope-issuer, costscope-sealer, costscope-revoke,
// costscope-check).
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. Each tool assembles its tree in its own main.go and
// dispatches via [Command.Execute], which handles flag parsing,
// subcommand routing, and structured help output with examples. The
// context and logger handed to Execute flow unchanged to the Run
// function that wins dispatch.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3). This is implemented in
// suggest.go.
//
// [ExitError] lets a command exit non-zero without an extra error line:
// the tool's main checks for it and exits with the carried code.
// [ReadPassphrase] and [NewPassphrase] implement the shared passphrase
// conventions (interactive prompt with echo disabled, "-" for stdin,
// file path otherwise) on top of lib/secret.
package cli
