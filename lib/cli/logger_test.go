// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"reflect"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"INFO", slog.LevelInfo},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got, err := ParseLevel(test.input)
			if err != nil {
				t.Fatalf("ParseLevel(%q) error: %v", test.input, err)
			}
			if got != test.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", test.input, got, test.want)
			}
		})
	}
}

func TestParseLevel_Invalid(t *testing.T) {
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel(\"loud\") = nil, want error")
	}
}

func TestSplitLogLevel(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantArgs  []string
		wantLevel slog.Level
	}{
		{
			name:      "absent",
			args:      []string{"status", "--json"},
			wantArgs:  []string{"status", "--json"},
			wantLevel: slog.LevelInfo,
		},
		{
			name:      "separate value",
			args:      []string{"--log-level", "debug", "status"},
			wantArgs:  []string{"status"},
			wantLevel: slog.LevelDebug,
		},
		{
			name:      "equals form",
			args:      []string{"status", "--log-level=warn"},
			wantArgs:  []string{"status"},
			wantLevel: slog.LevelWarn,
		},
		{
			name:      "after subcommand",
			args:      []string{"verify", "--license", "x.json", "--log-level", "error"},
			wantArgs:  []string{"verify", "--license", "x.json"},
			wantLevel: slog.LevelError,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			gotArgs, gotLevel, err := SplitLogLevel(test.args)
			if err != nil {
				t.Fatalf("SplitLogLevel(%v) error: %v", test.args, err)
			}
			if !reflect.DeepEqual(gotArgs, test.wantArgs) {
				t.Errorf("args = %v, want %v", gotArgs, test.wantArgs)
			}
			if gotLevel != test.wantLevel {
				t.Errorf("level = %v, want %v", gotLevel, test.wantLevel)
			}
		})
	}
}

func TestSplitLogLevel_Errors(t *testing.T) {
	if _, _, err := SplitLogLevel([]string{"--log-level"}); err == nil {
		t.Error("trailing --log-level without value: want error")
	}
	if _, _, err := SplitLogLevel([]string{"--log-level", "loud"}); err == nil {
		t.Error("unknown level: want error")
	}
}
