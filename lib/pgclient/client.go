// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

// Package pgclient provides the two ways the pipeline talks to
// PostgreSQL: the command-line client for script execution and
// database lifecycle (mirroring how an operator would prepare the
// database by hand), and a direct SQL session for index creation and
// environment checks.
package pgclient

import (
	"context"

	"github.com/terrapoint-foundation/terrapoint/lib/tool"
)

// Client drives the database command-line tools against one target
// database. All commands carry the host and user; authentication is
// the client binaries' own business (.pgpass, peer auth, PGPASSWORD).
type Client struct {
	// Host, User and Database identify the target.
	Host     string
	User     string
	Database string

	// Psql, CreateDB and DropDB are the client binaries.
	Psql     string
	CreateDB string
	DropDB   string

	// Runner bounds and reports each invocation.
	Runner tool.Runner
}

// DropDatabase drops the target database. Callers typically ignore
// the error — the database may simply not exist yet.
func (c *Client) DropDatabase(ctx context.Context) error {
	return c.Runner.Run(ctx, c.DropDB, "-h", c.Host, "-U", c.User, c.Database)
}

// CreateDatabase creates the target database.
func (c *Client) CreateDatabase(ctx context.Context) error {
	return c.Runner.Run(ctx, c.CreateDB, "-h", c.Host, "-U", c.User, c.Database)
}

// ApplyScript executes the SQL script at path against the target
// database. ON_ERROR_STOP makes the client exit non-zero on the first
// failing statement instead of ploughing on.
func (c *Client) ApplyScript(ctx context.Context, path string) error {
	return c.Runner.Run(ctx, c.Psql,
		"-h", c.Host, "-U", c.User, "-d", c.Database,
		"-v", "ON_ERROR_STOP=1", "-q", "-f", path)
}
