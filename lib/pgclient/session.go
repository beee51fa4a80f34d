// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

package pgclient

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Session is a direct SQL connection to the target database, used
// where a script round-trip through the command-line client would be
// awkward: index creation after bulk load, patch counting, and the
// environment check queries.
type Session struct {
	db *sql.DB
}

// Open opens a session against the given database. The connection is
// lazy — the first query performs the actual dial.
func Open(host, user, database string) (*Session, error) {
	dsn := fmt.Sprintf("host=%s user=%s dbname=%s sslmode=disable", host, user, database)
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database session: %w", err)
	}
	return &Session{db: db}, nil
}

// Exec executes a statement that returns no rows.
func (s *Session) Exec(ctx context.Context, query string, args ...any) error {
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("executing %q: %w", firstLine(query), err)
	}
	return nil
}

// QueryString returns the first column of the first row as a string.
func (s *Session) QueryString(ctx context.Context, query string) (string, error) {
	var value string
	if err := s.db.QueryRowContext(ctx, query).Scan(&value); err != nil {
		return "", fmt.Errorf("querying %q: %w", firstLine(query), err)
	}
	return value, nil
}

// QueryInt returns the first column of the first row as an int64.
func (s *Session) QueryInt(ctx context.Context, query string) (int64, error) {
	var value int64
	if err := s.db.QueryRowContext(ctx, query).Scan(&value); err != nil {
		return 0, fmt.Errorf("querying %q: %w", firstLine(query), err)
	}
	return value, nil
}

// Close closes the session.
func (s *Session) Close() error {
	return s.db.Close()
}

// firstLine trims a SQL statement for error messages.
func firstLine(query string) string {
	for i, r := range query {
		if r == '\n' {
			return query[:i] + "..."
		}
	}
	return query
}
