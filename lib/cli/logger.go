// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// NewLogger creates a structured logger for CLI command operations.
// When stderr is a terminal, uses slog.TextHandler for human-readable
// output. When stderr is piped or redirected (CI, scripts, integration
// tests), uses slog.JSONHandler for machine-parseable output.
//
// Callers scope the logger with command-specific context via With():
//
//	logger := cli.NewLogger(slog.LevelInfo).With(
//	    "command", "issue",
//	    "edition", edition,
//	)
func NewLogger(level slog.Level) *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}

// ParseLevel converts a config-file log level string ("debug", "info",
// "warn", "error") into a slog.Level.
func ParseLevel(text string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(text)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", text)
	}
	return level, nil
}

// SplitLogLevel extracts a --log-level flag from args ahead of command
// dispatch, returning the remaining args and the parsed level. The
// logger has to exist before the command tree runs, so this one flag
// is handled before pflag sees the arguments. Accepts both
// "--log-level debug" and "--log-level=debug"; absent means info.
func SplitLogLevel(args []string) ([]string, slog.Level, error) {
	remaining := make([]string, 0, len(args))
	level := slog.LevelInfo

	for index := 0; index < len(args); index++ {
		argument := args[index]
		switch {
		case argument == "--log-level":
			if index+1 >= len(args) {
				return nil, level, fmt.Errorf("--log-level requires a value")
			}
			index++
			parsed, err := ParseLevel(args[index])
			if err != nil {
				return nil, level, err
			}
			level = parsed
		case strings.HasPrefix(argument, "--log-level="):
			parsed, err := ParseLevel(strings.TrimPrefix(argument, "--log-level="))
			if err != nil {
				return nil, level, err
			}
			level = parsed
		default:
			remaining = append(remaining, argument)
		}
	}

	return remaining, level, nil
}
