// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package metrics wraps a pipeline.Strategy with Prometheus
// instrumentation, without touching the orchestrator's core. Telemetry
// beyond the strategy's own OnMessage/OnEnded hooks is deliberately kept
// outside the pipeline package itself; Instrument is how a caller opts
// into it.
package metrics

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/giancosta86/wikiprism/internal/dictionary"
	"github.com/giancosta86/wikiprism/internal/page"
	"github.com/giancosta86/wikiprism/internal/pipeline"
	"github.com/giancosta86/wikiprism/internal/workerpool"
)

// Metrics is the set of Prometheus collectors an instrumented pipeline run
// reports to. Register them with a prometheus.Registerer once at startup
// and share the same Metrics across every run.
type Metrics struct {
	PagesExtracted   prometheus.Counter
	TermsWritten     prometheus.Counter
	ExtractionErrors prometheus.Counter
	DictionaryErrors prometheus.Counter
	PipelineDuration prometheus.Histogram
}

// NewMetrics builds and registers a Metrics against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PagesExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wikiprism_pages_extracted_total",
			Help: "Number of wiki pages that yielded at least one term.",
		}),
		TermsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wikiprism_terms_written_total",
			Help: "Number of terms successfully written to the dictionary.",
		}),
		ExtractionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wikiprism_extraction_errors_total",
			Help: "Number of pages whose term extraction failed and was skipped.",
		}),
		DictionaryErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wikiprism_dictionary_errors_total",
			Help: "Number of terms rejected by the dictionary and skipped.",
		}),
		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wikiprism_pipeline_duration_seconds",
			Help:    "Wall-clock duration of a full extraction pipeline run.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}

	reg.MustRegister(m.PagesExtracted, m.TermsWritten, m.ExtractionErrors, m.DictionaryErrors, m.PipelineDuration)
	return m
}

// instrumentedStrategy decorates a Strategy, recording metrics around its
// hooks without altering its behaviour.
type instrumentedStrategy[T any] struct {
	inner   pipeline.Strategy[T]
	metrics *Metrics
	start   time.Time
}

// Instrument wraps inner so that running it through
// pipeline.RunExtractionPipeline reports to m.
func Instrument[T any](inner pipeline.Strategy[T], m *Metrics) pipeline.Strategy[T] {
	return &instrumentedStrategy[T]{inner: inner, metrics: m}
}

func (s *instrumentedStrategy[T]) InitializePipeline() error {
	s.start = time.Now()
	return s.inner.InitializePipeline()
}

func (s *instrumentedStrategy[T]) CreatePool() workerpool.Pool[T] {
	return s.inner.CreatePool()
}

func (s *instrumentedStrategy[T]) GetWikiFile() (io.ReadCloser, error) {
	return s.inner.GetWikiFile()
}

func (s *instrumentedStrategy[T]) GetTermExtractor() pipeline.TermExtractor[T] {
	inner := s.inner.GetTermExtractor()
	return func(p page.Page) ([]T, error) {
		terms, err := inner(p)
		if err != nil {
			s.metrics.ExtractionErrors.Inc()
			return nil, err
		}
		if len(terms) > 0 {
			s.metrics.PagesExtracted.Inc()
		}
		return terms, nil
	}
}

func (s *instrumentedStrategy[T]) CreateDictionary() (dictionary.Dictionary[T], error) {
	inner, err := s.inner.CreateDictionary()
	if err != nil {
		return nil, err
	}
	return &instrumentedDictionary[T]{inner: inner, metrics: s.metrics}, nil
}

func (s *instrumentedStrategy[T]) PerformLastSuccessfulSteps() error {
	return s.inner.PerformLastSuccessfulSteps()
}

func (s *instrumentedStrategy[T]) OnMessage(msg string) {
	s.inner.OnMessage(msg)
}

func (s *instrumentedStrategy[T]) OnEnded(err error) {
	s.metrics.PipelineDuration.Observe(time.Since(s.start).Seconds())
	s.inner.OnEnded(err)
}

type instrumentedDictionary[T any] struct {
	inner   dictionary.Dictionary[T]
	metrics *Metrics
}

func (d *instrumentedDictionary[T]) CreateSchema() error {
	return d.inner.CreateSchema()
}

func (d *instrumentedDictionary[T]) AddTerm(term T) error {
	if err := d.inner.AddTerm(term); err != nil {
		d.metrics.DictionaryErrors.Inc()
		return err
	}
	d.metrics.TermsWritten.Inc()
	return nil
}

func (d *instrumentedDictionary[T]) Close() error {
	return d.inner.Close()
}
