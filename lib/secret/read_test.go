// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadFromPath(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"plain value", "hunter2-passphrase", "hunter2-passphrase"},
		{"trailing newline", "hunter2-passphrase\n", "hunter2-passphrase"},
		{"trailing spaces", "hunter2-passphrase  \n", "hunter2-passphrase"},
		{"leading whitespace", "\t hunter2-passphrase", "hunter2-passphrase"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "passphrase")
			if err := os.WriteFile(path, []byte(test.content), 0600); err != nil {
				t.Fatalf("writing test file: %v", err)
			}

			result, err := ReadFromPath(path)
			if err != nil {
				t.Fatalf("ReadFromPath: %v", err)
			}
			defer result.Close()
			if result.String() != test.want {
				t.Errorf("ReadFromPath = %q, want %q", result.String(), test.want)
			}
		})
	}
}

func TestReadFromPath_Missing(t *testing.T) {
	if _, err := ReadFromPath(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("ReadFromPath on a missing file succeeded")
	}
}

func TestReadFromPath_EmptyAfterTrim(t *testing.T) {
	for name, content := range map[string]string{
		"empty":           "",
		"whitespace only": "   \n\t\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "passphrase")
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				t.Fatalf("writing test file: %v", err)
			}
			if _, err := ReadFromPath(path); err == nil {
				t.Error("ReadFromPath succeeded on effectively empty input")
			}
		})
	}
}
