// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package sqldict

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/Masterminds/semver/v3"

	"github.com/giancosta86/wikiprism/pkg/dblease"
)

// SchemaVersion is the version tag the run command's word schema records
// in its schema_meta table. Downstream dictionaries that embed their own
// schema should publish their own constraint and compare it the same way.
const SchemaVersion = "1.0.0"

// CreateSchemaFunc runs whatever DDL a concrete dictionary needs before
// the first AddTerm call.
type CreateSchemaFunc func(ctx context.Context, conn *sql.Conn) error

// SqlDictionary is a Dictionary backed by a single live *sql.Conn. Writes
// are staged by a BufferedSerialiser and flushed in transactions; Close
// flushes one final time before releasing the connection.
type SqlDictionary[T any] struct {
	conn         *sql.Conn
	serializer   *BufferedSerialiser
	createSchema CreateSchemaFunc

	closeOnce sync.Once
	closeErr  error
}

// NewSqlDictionary builds a SqlDictionary around conn. register is called
// once with the freshly constructed serialiser so the caller can Register
// its term-to-row mappings before any term flows through Add.
func NewSqlDictionary[T any](conn *sql.Conn, createSchema CreateSchemaFunc, register func(*BufferedSerialiser)) *SqlDictionary[T] {
	serializer := New(dblease.NewFixed(conn))
	register(serializer)
	return &SqlDictionary[T]{
		conn:         conn,
		serializer:   serializer,
		createSchema: createSchema,
	}
}

func (d *SqlDictionary[T]) CreateSchema() error {
	return d.createSchema(context.Background(), d.conn)
}

func (d *SqlDictionary[T]) AddTerm(term T) error {
	return d.serializer.Add(term)
}

// Flush forces the buffered serialiser to write its staged rows now,
// without closing the connection. The pipeline writer doesn't need this
// (Close covers the final flush), but long-running SQL strategies that
// want to expose intermediate state to concurrent readers can call it
// between batches.
func (d *SqlDictionary[T]) Flush() error {
	return d.serializer.Flush(context.Background())
}

// Close flushes any buffered rows and releases the connection, always
// attempting the release even if the flush failed. Close is idempotent:
// the orchestrator calls it explicitly on the clean-finish path, before
// promoting the work database to its target, and again via its deferred
// cleanup on every exit path; only the first call does any work, and
// every call observes the same outcome.
func (d *SqlDictionary[T]) Close() error {
	d.closeOnce.Do(func() {
		flushErr := d.serializer.Flush(context.Background())
		closeErr := d.conn.Close()
		if flushErr != nil {
			d.closeErr = fmt.Errorf("sqldict: final flush: %w", flushErr)
			return
		}
		if closeErr != nil {
			d.closeErr = fmt.Errorf("sqldict: closing connection: %w", closeErr)
		}
	})
	return d.closeErr
}

// CommandResult is the tabular outcome of an ad-hoc SELECT run through
// ExecuteCommand.
type CommandResult struct {
	Headers []string
	Rows    [][]any
}

// ExecuteCommand runs an arbitrary read-only query against the
// dictionary's connection. Unlike AddTerm/CreateSchema, a failure here is
// never fatal to the pipeline: callers (such as the HTTP query endpoint)
// receive the error as an ordinary return value and decide for themselves
// what to do with it.
func (d *SqlDictionary[T]) ExecuteCommand(ctx context.Context, query string) (*CommandResult, error) {
	return ExecuteCommandOn(ctx, d.conn, query)
}

// ExecuteCommandOn runs an arbitrary query against conn directly, for
// callers (such as the query CLI command) that want to inspect a
// dictionary database without constructing a full SqlDictionary around it.
func ExecuteCommandOn(ctx context.Context, conn *sql.Conn, query string) (*CommandResult, error) {
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &CommandResult{Headers: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CheckSchemaVersion reads the "version" row of the schema_meta table
// (populated by a CreateSchema that records one) and confirms it satisfies constraint, e.g.
// ">= 1.0.0, < 2.0.0". It returns a descriptive error rather than silently
// opening a dictionary an older or newer binary can't safely write to.
func CheckSchemaVersion(ctx context.Context, conn *sql.Conn, constraint string) error {
	row := conn.QueryRowContext(ctx, `SELECT value FROM schema_meta WHERE key = 'version'`)

	var raw string
	if err := row.Scan(&raw); err != nil {
		return fmt.Errorf("sqldict: reading schema version: %w", err)
	}

	version, err := semver.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("sqldict: parsing schema version %q: %w", raw, err)
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("sqldict: parsing schema constraint %q: %w", constraint, err)
	}

	if !c.Check(version) {
		return fmt.Errorf("sqldict: schema version %s does not satisfy %s", version, constraint)
	}
	return nil
}
