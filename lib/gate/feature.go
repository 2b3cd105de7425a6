// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package gate

import (
	"fmt"

	"github.com/costscope/costscope/lib/license"
)

// Feature identifies a gated capability. The string values are stable
// identifiers: they appear in audit records and in costscope-check
// output, and support scripts match on them.
type Feature string

const (
	// FeatureAutofix applies remediation fixes to flagged resources.
	FeatureAutofix Feature = "autofix"

	// FeaturePatch generates remediation patches for review without
	// applying them.
	FeaturePatch Feature = "patch"

	// FeatureDrift detects spend drift against a recorded baseline.
	FeatureDrift Feature = "drift"

	// FeatureAnomaly flags anomalous spend patterns.
	FeatureAnomaly Feature = "anomaly"

	// FeatureMapUnlimited lifts the free tier's resource-map depth
	// cap.
	FeatureMapUnlimited Feature = "map-unlimited"

	// FeatureExplainAdvanced produces full cost-attribution
	// explanations.
	FeatureExplainAdvanced Feature = "explain-advanced"
)

// requirement is what a feature demands before the gate answers Allow.
type requirement struct {
	// minimum is the lowest edition that includes the feature.
	minimum license.Edition

	// needsBundle marks features whose behavior lives in the sealed
	// heuristics bundle. The gate proves the bundle before allowing
	// them.
	needsBundle bool
}

// requirements is the authoritative feature table. Every Feature
// constant has a row; ParseFeature accepts exactly these keys.
var requirements = map[Feature]requirement{
	FeatureAutofix:         {minimum: license.EditionPro, needsBundle: true},
	FeaturePatch:           {minimum: license.EditionPro},
	FeatureDrift:           {minimum: license.EditionPro, needsBundle: true},
	FeatureAnomaly:         {minimum: license.EditionPro, needsBundle: true},
	FeatureMapUnlimited:    {minimum: license.EditionPro},
	FeatureExplainAdvanced: {minimum: license.EditionPro, needsBundle: true},
}

// Features returns every known feature in display order.
func Features() []Feature {
	return []Feature{
		FeatureAutofix,
		FeaturePatch,
		FeatureDrift,
		FeatureAnomaly,
		FeatureMapUnlimited,
		FeatureExplainAdvanced,
	}
}

// ParseFeature parses a feature name as given on a command line.
func ParseFeature(name string) (Feature, error) {
	feature := Feature(name)
	if _, ok := requirements[feature]; !ok {
		return "", fmt.Errorf("unknown feature %q", name)
	}
	return feature, nil
}

// String returns the stable identifier.
func (f Feature) String() string { return string(f) }

// NeedsBundle reports whether the feature's behavior lives in the
// sealed heuristics bundle.
func (f Feature) NeedsBundle() bool {
	return requirements[f].needsBundle
}
