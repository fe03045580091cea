// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package pipeline orchestrates a single extraction run: a SAX producer
// feeding a worker pool feeding a single dictionary writer, wired together
// through a Strategy and tracked by a cancellable Handle.
package pipeline

import "context"

// CancelToken is the single-writer, many-reader cancellation flag shared
// between a pipeline's producer, pool and writer. Reading it is wait-free;
// it is a thin wrapper around a context.Context so that cancellation also
// propagates to any blocking I/O (file reads, SQL calls) that accept one.
type CancelToken struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewCancelToken builds a token that starts out not cancelled.
func NewCancelToken() *CancelToken {
	ctx, cancel := context.WithCancel(context.Background())
	return &CancelToken{ctx: ctx, cancel: cancel}
}

// RequestCancel marks the token cancelled. It is safe to call more than
// once and from any goroutine.
func (c *CancelToken) RequestCancel() {
	c.cancel()
}

// Cancelled reports whether RequestCancel has been called. The check is
// non-blocking.
func (c *CancelToken) Cancelled() bool {
	select {
	case <-c.ctx.Done():
		return true
	default:
		return false
	}
}

// Context returns the context that is cancelled exactly when RequestCancel
// is called, for passing to blocking operations that accept one.
func (c *CancelToken) Context() context.Context {
	return c.ctx
}
