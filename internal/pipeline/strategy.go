// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package pipeline

import (
	"io"

	"github.com/giancosta86/wikiprism/internal/dictionary"
	"github.com/giancosta86/wikiprism/internal/page"
	"github.com/giancosta86/wikiprism/internal/workerpool"
)

// TermExtractor pulls zero or more terms of type T out of a single page.
type TermExtractor[T any] func(page.Page) ([]T, error)

// Strategy is the policy object a caller hands to RunExtractionPipeline.
// It supplies every domain-specific decision the orchestrator needs: how
// to get the wiki source, how to turn a page into terms, where to write
// them, and what to do before and after the run. Lifecycle hooks
// (InitializePipeline, PerformLastSuccessfulSteps, OnMessage, OnEnded) are
// all optional; embed BaseStrategy to get no-op defaults for the ones you
// don't need.
type Strategy[T any] interface {
	// InitializePipeline runs once, before the wiki source is opened.
	// A non-nil error is fatal and becomes a PreProcessingError.
	InitializePipeline() error

	// CreatePool builds the worker pool used to parallelise extraction.
	CreatePool() workerpool.Pool[T]

	// GetWikiFile opens the wiki dump to stream. The orchestrator closes
	// it unconditionally once the run ends.
	GetWikiFile() (io.ReadCloser, error)

	// GetTermExtractor returns the function applied to every page.
	GetTermExtractor() TermExtractor[T]

	// CreateDictionary builds the sink terms are written to. The
	// orchestrator calls CreateSchema on it once, then AddTerm for every
	// surviving term, then Close on every exit path. On a clean finish
	// Close is called twice (explicitly, then by the deferred cleanup), so
	// it must be idempotent.
	CreateDictionary() (dictionary.Dictionary[T], error)

	// PerformLastSuccessfulSteps runs once extraction has ended without
	// cancellation, after the dictionary has been closed. A non-nil error
	// is fatal and becomes a PostProcessingError.
	PerformLastSuccessfulSteps() error

	// OnMessage reports a non-fatal, isolated failure (an extraction
	// error, a dictionary add error, or a truncated wiki stream).
	OnMessage(message string)

	// OnEnded is delivered exactly once, when the run settles: nil on
	// success, CancelledError on cancellation, or the fatal error
	// otherwise.
	OnEnded(err error)
}

// BaseStrategy supplies no-op implementations of every optional Strategy
// hook. Embed it and override only what you need.
type BaseStrategy[T any] struct{}

func (BaseStrategy[T]) InitializePipeline() error          { return nil }
func (BaseStrategy[T]) PerformLastSuccessfulSteps() error  { return nil }
func (BaseStrategy[T]) OnMessage(string)                   {}
func (BaseStrategy[T]) OnEnded(error)                      {}
