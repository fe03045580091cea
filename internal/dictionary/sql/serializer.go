// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package sqldict provides the SQL-backed Dictionary: a buffered
// serialiser that batches writes by the runtime type of each term, plus a
// SqlDictionary that wraps it around a live database connection.
package sqldict

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/giancosta86/wikiprism/pkg/dblease"
)

// RowProducer turns one term into zero or more rows of positional
// statement parameters. Returning more than one row lets a single term
// expand into several inserts (e.g. a term and its aliases).
type RowProducer[T any] func(term T) ([][]any, error)

type registration struct {
	stmt    string
	produce func(term any) ([][]any, error)
}

// BufferedSerialiser batches terms by their registered SQL statement and
// flushes every statement's staged rows inside one transaction per Flush. Dispatch is by
// the term's dynamic type, so a single serialiser can back a dictionary
// whose term type is an interface spanning several concrete shapes.
type BufferedSerialiser struct {
	lender dblease.Lender

	mu         sync.Mutex
	statements map[reflect.Type]*registration
	order      []reflect.Type
	buffer     map[reflect.Type][][]any
}

// New builds an empty serialiser that leases its connections from lender.
func New(lender dblease.Lender) *BufferedSerialiser {
	return &BufferedSerialiser{
		lender:     lender,
		statements: make(map[reflect.Type]*registration),
		buffer:     make(map[reflect.Type][][]any),
	}
}

// Register associates every term of type T with stmt: when Add receives a
// term whose dynamic type is T, produce computes the rows to insert via
// stmt. Register is a package-level generic function, not a method, since
// Go does not allow a method to introduce type parameters beyond its
// receiver's.
func Register[T any](s *BufferedSerialiser, stmt string, produce RowProducer[T]) {
	var zero T
	typ := reflect.TypeOf(zero)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.statements[typ]; !exists {
		s.order = append(s.order, typ)
	}
	s.statements[typ] = &registration{
		stmt: stmt,
		produce: func(term any) ([][]any, error) {
			typed, ok := term.(T)
			if !ok {
				return nil, fmt.Errorf("sqldict: term %v is not assignable to registered type %s", term, typ)
			}
			return produce(typed)
		},
	}
}

// Add stages term for the next Flush, dispatching on its dynamic type. It
// fails if no statement has been registered for that type.
func (s *BufferedSerialiser) Add(term any) error {
	typ := reflect.TypeOf(term)

	s.mu.Lock()
	reg, ok := s.statements[typ]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("sqldict: no statement registered for term type %T", term)
	}
	s.mu.Unlock()

	rows, err := reg.produce(term)
	if err != nil {
		return fmt.Errorf("sqldict: producing rows for term %v: %w", term, err)
	}

	s.mu.Lock()
	s.buffer[typ] = append(s.buffer[typ], rows...)
	s.mu.Unlock()
	return nil
}

// Flush leases a connection, executes every staged statement's rows
// inside a single transaction, commits, and clears the buffer. If the
// lease or the transaction fails, the staged rows for this flush are
// dropped and the error is returned to the caller as an isolated failure
// for that flush; rows staged by a later Add are unaffected.
func (s *BufferedSerialiser) Flush(ctx context.Context) error {
	s.mu.Lock()
	if len(s.buffer) == 0 {
		s.mu.Unlock()
		return nil
	}
	snapshot := s.buffer
	order := s.order
	statements := s.statements
	s.buffer = make(map[reflect.Type][][]any)
	s.mu.Unlock()

	conn, release, err := s.lender.Lease(ctx)
	if err != nil {
		return fmt.Errorf("sqldict: leasing connection for flush: %w", err)
	}
	defer release()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqldict: beginning flush transaction: %w", err)
	}

	for _, typ := range order {
		rows := snapshot[typ]
		if len(rows) == 0 {
			continue
		}
		reg := statements[typ]
		for _, row := range rows {
			if _, err := tx.ExecContext(ctx, reg.stmt, row...); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("sqldict: executing %q: %w", reg.stmt, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqldict: committing flush: %w", err)
	}
	return nil
}

// Pending reports how many rows are currently staged across all
// statements, mainly for tests and diagnostics.
func (s *BufferedSerialiser) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rows := range s.buffer {
		n += len(rows)
	}
	return n
}
