// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package workerpool provides the two extraction-pool flavours consumed by
// the pipeline orchestrator: an in-thread pool for deterministic, serial
// runs (mainly tests) and a goroutine-parallel pool for production use.
//
// Go has no GIL, so unlike the reference implementation's OS-process pool,
// a bounded goroutine pool already gets genuine CPU parallelism without
// paying for process spawn or IPC serialisation.
package workerpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/giancosta86/wikiprism/internal/page"
)

// ExtractFunc pulls zero or more terms out of a single page.
type ExtractFunc[T any] func(page.Page) ([]T, error)

// Result carries the outcome of running ExtractFunc against one page. Err
// is non-nil when extraction failed for that specific page; the pipeline
// isolates such failures rather than aborting the whole batch.
type Result[T any] struct {
	Terms []T
	Err   error
}

// Pool maps ExtractFunc over a batch of pages, preserving input order in
// the returned slice.
type Pool[T any] interface {
	Map(ctx context.Context, fn ExtractFunc[T], pages []page.Page) []Result[T]
	Close()
}

// InThread runs every page through fn sequentially, on the caller's own
// goroutine. It is deterministic and therefore the pool of choice for
// tests and for small batches where parallel dispatch overhead would
// dominate.
type InThread[T any] struct{}

// NewInThread builds a serial Pool.
func NewInThread[T any]() *InThread[T] {
	return &InThread[T]{}
}

func (p *InThread[T]) Map(ctx context.Context, fn ExtractFunc[T], pages []page.Page) []Result[T] {
	results := make([]Result[T], len(pages))
	for i, pg := range pages {
		if err := ctx.Err(); err != nil {
			results[i] = Result[T]{Err: err}
			continue
		}
		terms, err := fn(pg)
		results[i] = Result[T]{Terms: terms, Err: err}
	}
	return results
}

func (p *InThread[T]) Close() {}

// Parallel runs fn over a batch using a bounded set of goroutines,
// collecting results in the original page order.
type Parallel[T any] struct {
	workers int
}

// NewParallel builds a Pool backed by up to workers concurrent goroutines.
// A non-positive workers count defaults to GOMAXPROCS.
func NewParallel[T any](workers int) *Parallel[T] {
	if workers <= 0 {
		workers = max(1, runtime.GOMAXPROCS(0))
	}
	return &Parallel[T]{workers: workers}
}

func (p *Parallel[T]) Map(ctx context.Context, fn ExtractFunc[T], pages []page.Page) []Result[T] {
	results := make([]Result[T], len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, pg := range pages {
		i, pg := i, pg
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result[T]{Err: err}
				return nil
			}
			terms, err := fn(pg)
			results[i] = Result[T]{Terms: terms, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return results
}

func (p *Parallel[T]) Close() {}
