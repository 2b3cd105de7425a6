// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for costscope
// tools.
//
// Settings resolve in four layers, most specific winning: command
// flags, then COSTSCOPE_* environment variables, then the YAML file,
// then built-in defaults. This package owns the lower three layers —
// [Load] applies the file named by COSTSCOPE_CONFIG (or a --config
// flag, via [LoadFile]) over [Default], then applies environment
// overrides. Flags are each tool's business and sit on top.
//
// There is no automatic file discovery: the file layer participates
// only when COSTSCOPE_CONFIG or --config names a file, so a support
// engineer can always reconstruct where a value came from. Variable
// expansion is performed on path fields after loading: ${HOME},
// ${COSTSCOPE_ROOT}, and ${VAR:-default} patterns are expanded.
//
// Key exports:
//
//   - [Config] -- master struct with Paths, Audit, Logging
//   - [Default] -- the out-of-the-box configuration
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other costscope packages.
package config
