// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

// Costscope-revoke maintains the license revocation registry on the
// vendor machine. The registry is an append-only JSONC document:
// entries are added, never modified or removed, and the published
// copy is what customer installs consult on every entitlement check.
// Subcommands: add, list, check.
package main
