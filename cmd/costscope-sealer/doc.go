// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

// Costscope-sealer packages proprietary heuristic content into
// encrypted bundles, one per issued license. It runs in the vendor
// release pipeline: the decryption key is derived from the customer's
// license document, so the sealed bundle is useless without a verified
// copy of that exact license. Subcommands: seal, info.
package main
