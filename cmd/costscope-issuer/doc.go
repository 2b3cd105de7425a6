// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

// Costscope-issuer is the vendor-side tool for managing license
// signing keys and issuing customer licenses. It runs offline on the
// vendor machine and never ships to customers: private key material
// exists only here, sealed under an operator passphrase.
// Subcommands: keygen, issue, inspect, verify.
package main
