// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/costscope/costscope/lib/secret"
)

// ReadPassphrase reads the passphrase protecting an existing sealed
// signing key. If path names a file, the passphrase is read from it.
// If path is "-" or empty, behavior depends on stdin: a pipe is read
// directly (one line, for scripted runs), a terminal gets an
// interactive prompt with echo disabled.
//
// No confirmation round: an existing key's unseal either succeeds or
// fails, which catches typos on its own.
func ReadPassphrase(path string) (*secret.Buffer, error) {
	if path != "" && path != "-" {
		return secret.ReadFromPath(path)
	}

	stdinFd := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFd) {
		return secret.ReadFromPath("-")
	}

	fmt.Fprint(os.Stderr, "Passphrase: ")
	passphrase, err := term.ReadPassword(stdinFd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("passphrase is empty")
	}

	// NewFromBytes zeros the raw bytes after copying them in.
	return secret.NewFromBytes(passphrase)
}

// NewPassphrase reads a passphrase for a signing key being created.
// Same source selection as [ReadPassphrase], but the interactive path
// prompts twice and requires both reads to match — a typo in a brand
// new passphrase would otherwise seal the key beyond recovery.
func NewPassphrase(path string) (*secret.Buffer, error) {
	if path != "" && path != "-" {
		return secret.ReadFromPath(path)
	}

	stdinFd := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFd) {
		return secret.ReadFromPath("-")
	}

	fmt.Fprint(os.Stderr, "Passphrase: ")
	first, err := term.ReadPassword(stdinFd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}

	fmt.Fprint(os.Stderr, "Confirm passphrase: ")
	second, err := term.ReadPassword(stdinFd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		secret.Zero(first)
		return nil, fmt.Errorf("reading passphrase confirmation: %w", err)
	}

	match := len(first) == len(second)
	if match {
		for index := range first {
			if first[index] != second[index] {
				match = false
				break
			}
		}
	}
	secret.Zero(second)
	if !match {
		secret.Zero(first)
		return nil, fmt.Errorf("passphrases do not match")
	}
	if len(first) == 0 {
		return nil, fmt.Errorf("passphrase is empty")
	}

	return secret.NewFromBytes(first)
}
