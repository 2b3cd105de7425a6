// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package revocation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// fileHeader is written above the JSON document so the file explains
// itself to whoever opens it next. Parse strips it back out.
const fileHeader = `// costscope revocation registry.
// Append entries with costscope-revoke; never edit or remove existing ones.
`

// Append records a new revocation in the registry file at path,
// creating the file if it does not exist. Existing entries are
// preserved untouched and duplicates are rejected — this is the only
// write path the tooling offers, and it can only grow the registry.
func Append(path string, entry Entry) error {
	if entry.LicenseKey == "" {
		return fmt.Errorf("revocation: refusing to append entry with empty license_key")
	}
	if entry.RevokedAt <= 0 {
		return fmt.Errorf("revocation: refusing to append entry with missing revoked_at")
	}

	registry, err := Load(path)
	if err != nil {
		return err
	}
	if registry.Contains(entry.LicenseKey) {
		return fmt.Errorf("revocation: license key is already revoked")
	}

	file := registryFile{
		Revision: registry.Revision() + 1,
		Revoked:  append(registry.Entries(), entry),
	}

	rendered, err := render(file)
	if err != nil {
		return err
	}

	// Write-then-rename so a crash mid-write cannot leave a truncated
	// registry behind.
	directory := filepath.Dir(path)
	temporary, err := os.CreateTemp(directory, ".revocations-*.jsonc")
	if err != nil {
		return fmt.Errorf("revocation: creating temporary file: %w", err)
	}
	temporaryPath := temporary.Name()
	defer os.Remove(temporaryPath)

	if _, err := temporary.Write(rendered); err != nil {
		temporary.Close()
		return fmt.Errorf("revocation: writing registry: %w", err)
	}
	if err := temporary.Chmod(0644); err != nil {
		temporary.Close()
		return fmt.Errorf("revocation: setting registry permissions: %w", err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("revocation: closing registry: %w", err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		return fmt.Errorf("revocation: replacing registry: %w", err)
	}
	return nil
}

// render produces the canonical file bytes: the explanatory header
// comment followed by indented JSON and a trailing newline.
func render(file registryFile) ([]byte, error) {
	document, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("revocation: encoding registry: %w", err)
	}
	rendered := make([]byte, 0, len(fileHeader)+len(document)+1)
	rendered = append(rendered, fileHeader...)
	rendered = append(rendered, document...)
	rendered = append(rendered, '\n')
	return rendered, nil
}
