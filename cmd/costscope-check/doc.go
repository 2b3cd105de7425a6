// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

// costscope-check is the support diagnostic for costscope
// entitlement. It ships alongside the product: when a customer
// reports a Pro feature unexpectedly denied, support walks them
// through "status" for the full picture, "verify" or "probe" for a
// scriptable taxonomy exit code, and "audit list" for the recent
// decision history.
//
// The tool runs the exact same verification pipeline the product
// runs — embedded trust table, license and registry read fresh from
// disk, bundle proven by opening it — so its answer is the product's
// answer, not a parallel approximation.
package main
