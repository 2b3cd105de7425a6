// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

// Package gate is the decision point between the command layer and the
// paid feature set.
//
// Every Pro code path asks the gate before doing Pro work, and the
// gate answers from disk: it reads the license file, loads the
// revocation registry, and runs full verification on every call.
// Nothing is cached, and no ambient flag participates in the answer —
// a spoofed "licensed" option upstream changes nothing, deleting the
// license file downgrades the very next call, and a registry update
// takes effect without a restart.
//
// Features whose behavior lives in the sealed heuristics bundle also
// have the bundle proven (opened and immediately scrubbed) before the
// gate answers Allow, so an Allow covers bundle integrity too.
package gate
