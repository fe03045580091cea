// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package httpapi

import (
	"io"
	"time"

	"github.com/giancosta86/wikiprism/internal/dictionary"
	"github.com/giancosta86/wikiprism/internal/pipeline"
	"github.com/giancosta86/wikiprism/internal/workerpool"
)

// Monitored wraps inner so its OnMessage/OnEnded hooks also publish to m
// under runID, letting an HTTP client watch the run live over SSE. Like
// metrics.Instrument, this lives outside internal/pipeline: the core
// orchestrator only needs the Strategy hooks, not where they end up.
func Monitored[T any](inner pipeline.Strategy[T], m *Monitor, runID string) pipeline.Strategy[T] {
	return &monitoredStrategy[T]{inner: inner, monitor: m, runID: runID}
}

type monitoredStrategy[T any] struct {
	inner   pipeline.Strategy[T]
	monitor *Monitor
	runID   string
}

func (s *monitoredStrategy[T]) InitializePipeline() error { return s.inner.InitializePipeline() }

func (s *monitoredStrategy[T]) CreatePool() workerpool.Pool[T] { return s.inner.CreatePool() }

func (s *monitoredStrategy[T]) GetWikiFile() (io.ReadCloser, error) { return s.inner.GetWikiFile() }

func (s *monitoredStrategy[T]) GetTermExtractor() pipeline.TermExtractor[T] {
	return s.inner.GetTermExtractor()
}

func (s *monitoredStrategy[T]) CreateDictionary() (dictionary.Dictionary[T], error) {
	return s.inner.CreateDictionary()
}

func (s *monitoredStrategy[T]) PerformLastSuccessfulSteps() error {
	return s.inner.PerformLastSuccessfulSteps()
}

func (s *monitoredStrategy[T]) OnMessage(message string) {
	s.monitor.Publish(s.runID, PipelineEvent{
		Type:      EventMessage,
		Message:   message,
		Timestamp: time.Now(),
	})
	s.inner.OnMessage(message)
}

func (s *monitoredStrategy[T]) OnEnded(err error) {
	event := PipelineEvent{Type: EventEnded, Timestamp: time.Now()}
	if err != nil {
		event.Error = err.Error()
	}
	s.monitor.Publish(s.runID, event)
	s.inner.OnEnded(err)
}
