// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

// Package audit persists gate decisions to a local SQLite trail.
//
// The trail is a support artifact: when a customer reports a feature
// unexpectedly denied, `costscope-check audit list` shows what was
// decided and why. Recording is strictly best-effort — a broken or
// read-only database must never change a gate answer — so Record logs
// failures at debug level and moves on. Rows carry the license
// fingerprint, never the license key.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/costscope/costscope/lib/entitlement"
	"github.com/costscope/costscope/lib/gate"
	"github.com/costscope/costscope/lib/license"
)

// schema is applied on connect. Idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS decisions (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    checked_at  INTEGER NOT NULL,
    feature     TEXT NOT NULL,
    allowed     INTEGER NOT NULL,
    edition     TEXT NOT NULL DEFAULT '',
    code        TEXT NOT NULL DEFAULT '',
    fingerprint TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS decisions_by_time ON decisions(checked_at);
`

// Trail is an append-mostly decision log backed by SQLite. It
// implements gate.Recorder.
type Trail struct {
	pool   *sqlitex.Pool
	logger *slog.Logger
	path   string
}

var _ gate.Recorder = (*Trail)(nil)

// Open opens the trail database at path, creating it if absent. The
// pool holds a single connection: the trail lives inside short CLI
// invocations, not a server.
func Open(path string, logger *slog.Logger) (*Trail, error) {
	if path == "" {
		return nil, fmt.Errorf("audit: path is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		PoolSize:    1,
		PrepareConn: prepareConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("audit: opening %s: %w", path, err)
	}
	return &Trail{pool: pool, logger: logger, path: path}, nil
}

// prepareConnection applies the standard pragmas and bootstraps the
// schema. Runs once per connection, on first use.
func prepareConnection(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("audit: %s: %w", pragma, err)
		}
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("audit: applying schema: %w", err)
	}
	return nil
}

// Record appends one decision. Best-effort: failures are logged at
// debug level and swallowed, because audit unavailability must never
// change an authorization answer.
func (t *Trail) Record(ctx context.Context, decision gate.Decision) {
	if err := t.record(ctx, decision); err != nil {
		t.logger.Debug("audit record failed", "error", err)
	}
}

func (t *Trail) record(ctx context.Context, decision gate.Decision) error {
	conn, err := t.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer t.pool.Put(conn)

	allowed := 0
	if decision.Allowed {
		allowed = 1
	}
	return sqlitex.Execute(conn,
		`INSERT INTO decisions (checked_at, feature, allowed, edition, code, fingerprint)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{
				decision.CheckedAt.Unix(),
				string(decision.Feature),
				allowed,
				string(decision.Edition),
				string(decision.Code),
				decision.Fingerprint,
			},
		})
}

// Entry is one recorded decision, as read back for display.
type Entry struct {
	// When is the evaluation instant, second precision.
	When time.Time

	// Feature is the capability that was asked about.
	Feature gate.Feature

	// Allowed is the answer.
	Allowed bool

	// Edition is the verified edition at decision time, if any.
	Edition license.Edition

	// Code is the taxonomy code for denials inside the taxonomy.
	Code entitlement.Code

	// Fingerprint identifies the presented license file.
	Fingerprint string
}

// Recent returns the latest entries, newest first. A limit of zero or
// less means 20.
func (t *Trail) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	conn, err := t.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("audit: take: %w", err)
	}
	defer t.pool.Put(conn)

	var entries []Entry
	err = sqlitex.Execute(conn,
		`SELECT checked_at, feature, allowed, edition, code, fingerprint
		 FROM decisions ORDER BY id DESC LIMIT ?`,
		&sqlitex.ExecOptions{
			Args: []any{limit},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				entries = append(entries, Entry{
					When:        time.Unix(stmt.ColumnInt64(0), 0),
					Feature:     gate.Feature(stmt.ColumnText(1)),
					Allowed:     stmt.ColumnInt64(2) != 0,
					Edition:     license.Edition(stmt.ColumnText(3)),
					Code:        entitlement.Code(stmt.ColumnText(4)),
					Fingerprint: stmt.ColumnText(5),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("audit: reading trail: %w", err)
	}
	return entries, nil
}

// Close closes the underlying database.
func (t *Trail) Close() error {
	if err := t.pool.Close(); err != nil {
		return fmt.Errorf("audit: closing %s: %w", t.path, err)
	}
	return nil
}
