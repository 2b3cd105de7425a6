// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/costscope/costscope/lib/config"
	"github.com/costscope/costscope/lib/entitlement"
)

// overrides carries the path flags every subcommand accepts. Flags
// win over COSTSCOPE_* environment variables, which win over the
// configuration file, which wins over the defaults — the same layering
// the product applies.
type overrides struct {
	configPath  string
	license     string
	bundle      string
	revocations string
}

// register adds the shared flags to a subcommand's flag set.
func (o *overrides) register(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&o.configPath, "config", "", "configuration file (default $COSTSCOPE_CONFIG)")
	flagSet.StringVar(&o.license, "license", "", "license document path")
	flagSet.StringVar(&o.bundle, "bundle", "", "sealed heuristics bundle path")
	flagSet.StringVar(&o.revocations, "revocations", "", "revocation registry path")
}

// resolve layers the flags over the loaded configuration.
func (o *overrides) resolve() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if o.license != "" {
		cfg.Paths.License = o.license
	}
	if o.bundle != "" {
		cfg.Paths.Bundle = o.bundle
	}
	if o.revocations != "" {
		cfg.Paths.Revocations = o.revocations
	}
	return cfg, nil
}

// formatInstant renders a Unix-seconds instant for display.
func formatInstant(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}

// taxonomyCode names err's taxonomy code for display, empty for
// errors outside the taxonomy.
func taxonomyCode(err error) string {
	if code, ok := entitlement.CodeOf(err); ok {
		return string(code)
	}
	return ""
}
