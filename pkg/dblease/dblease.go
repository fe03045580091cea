// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package dblease adapts the scoped-connection-lease pattern used
// throughout the teacher stack's sqlite3store package to the narrower
// ConnectionLender contract the buffered SQL serialiser needs: lease a
// connection, use it, release it.
package dblease

import (
	"context"
	"database/sql"
	"sync"
)

// ReleaseFunc returns a leased connection to its owner. It is always safe
// to call exactly once after a successful Lease.
type ReleaseFunc func()

// Lender hands out a *sql.Conn for the duration of a single unit of work,
// such as one BufferedSerialiser flush.
type Lender interface {
	Lease(ctx context.Context) (*sql.Conn, ReleaseFunc, error)
}

// Fixed always lends the same pre-acquired connection and never closes it
// on release. This is the lender a SqlDictionary builds around its own
// long-lived connection, so that every flush commits against that same
// connection's transaction scope.
type Fixed struct {
	conn *sql.Conn
}

// NewFixed wraps an already-open connection.
func NewFixed(conn *sql.Conn) *Fixed {
	return &Fixed{conn: conn}
}

func (f *Fixed) Lease(ctx context.Context) (*sql.Conn, ReleaseFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return f.conn, func() {}, nil
}

// Pooled leases a fresh connection from db's pool on every call and closes
// it on release, tracking how many leases are currently outstanding. It
// suits components that talk to a shared database from multiple
// goroutines, unlike the single-writer SqlDictionary which uses Fixed.
type Pooled struct {
	db *sql.DB

	mu          sync.Mutex
	outstanding int
}

// NewPooled builds a Lender backed by db's connection pool.
func NewPooled(db *sql.DB) *Pooled {
	return &Pooled{db: db}
}

func (p *Pooled) Lease(ctx context.Context) (*sql.Conn, ReleaseFunc, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, nil, err
	}

	p.mu.Lock()
	p.outstanding++
	p.mu.Unlock()

	release := func() {
		p.mu.Lock()
		p.outstanding--
		p.mu.Unlock()
		_ = conn.Close()
	}

	return conn, release, nil
}

// Outstanding reports how many leases have not yet been released.
func (p *Pooled) Outstanding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outstanding
}
