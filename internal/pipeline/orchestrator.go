// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package pipeline

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/giancosta86/wikiprism/internal/dictionary"
	"github.com/giancosta86/wikiprism/internal/page"
	"github.com/giancosta86/wikiprism/internal/workerpool"
)

// DefaultBatchSize is the number of pages the writer accumulates before
// handing them to the pool and draining the resulting terms into the
// dictionary. It is deliberately small: the cancellation bound is "one
// page of SAX parsing, one outstanding batch of extraction, and whatever
// of that batch's writes were still pending", so a smaller batch makes
// cancellation more responsive at a modest cost in pool dispatch overhead.
const DefaultBatchSize = 32

// RunExtractionPipeline starts a pipeline run in its own goroutine and
// returns immediately with a Handle the caller uses to cancel it or wait
// for it to finish.
func RunExtractionPipeline[T any](strategy Strategy[T]) *Handle {
	token := NewCancelToken()
	h := newHandle(token)
	go runOrchestrator(h, token, strategy)
	return h
}

func runOrchestrator[T any](h *Handle, token *CancelToken, strategy Strategy[T]) {
	h.setState(StateInitialising)

	var finalErr error
	defer func() {
		strategy.OnEnded(finalErr)
		h.finish(finalErr)
	}()

	if err := strategy.InitializePipeline(); err != nil {
		finalErr = &PreProcessingError{Err: errors.Wrap(err, "initialise pipeline")}
		return
	}

	pool := strategy.CreatePool()
	defer pool.Close()

	wikiFile, err := strategy.GetWikiFile()
	if err != nil {
		finalErr = &PreProcessingError{Err: errors.Wrap(err, "open wiki source")}
		return
	}
	defer wikiFile.Close()

	dict, err := strategy.CreateDictionary()
	if err != nil {
		finalErr = &PreProcessingError{Err: errors.Wrap(err, "create dictionary")}
		return
	}
	defer func() {
		if cerr := dict.Close(); cerr != nil && finalErr == nil {
			finalErr = &PostProcessingError{Err: errors.Wrap(cerr, "close dictionary")}
		}
	}()

	if err := dict.CreateSchema(); err != nil {
		finalErr = &PreProcessingError{Err: errors.Wrap(err, "create dictionary schema")}
		return
	}

	h.setState(StateRunning)

	cancelled := runExtractionLoop(token, wikiFile, pool, strategy.GetTermExtractor(), dict, strategy)

	h.setState(StateDraining)

	if cancelled {
		finalErr = ErrCancelled
		return
	}

	// The dictionary must be fully flushed and closed before any
	// promotion step runs: PerformLastSuccessfulSteps may move or copy
	// the working store to its target location, and a promotion that
	// races the final flush would publish a store missing whatever rows
	// were still buffered in memory. dict.Close is idempotent, so the
	// deferred close above is still safe to run on every exit path.
	if cerr := dict.Close(); cerr != nil {
		finalErr = &PostProcessingError{Err: errors.Wrap(cerr, "close dictionary")}
		return
	}

	if err := strategy.PerformLastSuccessfulSteps(); err != nil {
		finalErr = &PostProcessingError{Err: errors.Wrap(err, "perform last successful steps")}
		return
	}
}

// runExtractionLoop drives the SAX producer on its own goroutine, batches
// the pages it emits, and for every batch maps the extractor over it
// through pool before draining the resulting terms into dict. It returns
// true if the run was cancelled before the wiki stream was exhausted.
func runExtractionLoop[T any](
	token *CancelToken,
	wikiFile io.Reader,
	pool workerpool.Pool[T],
	extractor TermExtractor[T],
	dict dictionary.Dictionary[T],
	strategy Strategy[T],
) bool {
	pageCh := make(chan page.Page, 1)
	extractDone := make(chan error, 1)

	go func() {
		err := page.Extract(wikiFile, func(p page.Page) {
			pageCh <- p
		}, func() bool {
			return !token.Cancelled()
		})
		close(pageCh)
		extractDone <- err
	}()

	ctx := token.Context()
	batch := make([]page.Page, 0, DefaultBatchSize)
	cancelled := false

	flush := func() bool {
		if len(batch) == 0 {
			return false
		}
		results := pool.Map(ctx, func(p page.Page) ([]T, error) {
			return extractor(p)
		}, batch)

		mustStop := false
		for i, res := range results {
			if token.Cancelled() {
				mustStop = true
				break
			}
			if res.Err != nil {
				strategy.OnMessage(fmt.Sprintf("extraction failed for page %q: %v", batch[i].Title(), res.Err))
				continue
			}
			for _, term := range res.Terms {
				if token.Cancelled() {
					mustStop = true
					break
				}
				if err := dict.AddTerm(term); err != nil {
					strategy.OnMessage(fmt.Sprintf("failed to add term: %v", err))
				}
			}
			if mustStop {
				break
			}
		}

		batch = batch[:0]
		return mustStop
	}

readLoop:
	for {
		if token.Cancelled() {
			cancelled = true
			break readLoop
		}

		p, ok := <-pageCh
		if !ok {
			break readLoop
		}

		batch = append(batch, p)
		if len(batch) >= DefaultBatchSize {
			if flush() {
				cancelled = true
				break readLoop
			}
		}
	}

	if !cancelled {
		if flush() {
			cancelled = true
		}
	}

	if cancelled {
		// The producer may still be blocked sending a page into pageCh;
		// drain it so that goroutine can observe the cancellation (via
		// its own shouldContinue check) and exit.
		go func() {
			for range pageCh {
			}
		}()
	}

	err := <-extractDone
	if err != nil {
		switch {
		case errors.Is(err, page.ErrCancelled):
			cancelled = true
		default:
			var malformed *page.MalformedXMLError
			if errors.As(err, &malformed) {
				strategy.OnMessage(fmt.Sprintf("wiki stream truncated: %v", err))
			}
		}
	}

	return cancelled
}
