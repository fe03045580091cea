// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giancosta86/wikiprism/internal/dictionary"
	"github.com/giancosta86/wikiprism/internal/metrics"
	"github.com/giancosta86/wikiprism/internal/page"
	"github.com/giancosta86/wikiprism/internal/pipeline"
	"github.com/giancosta86/wikiprism/internal/workerpool"
)

type term struct{ entry string }

type nopCloser struct{ io.Reader }

func (nopCloser) Close() error { return nil }

type stubStrategy struct {
	pipeline.BaseStrategy[term]
	failEntries map[string]bool
	dict        *dictionary.InMemory[term]
}

func (s *stubStrategy) CreatePool() workerpool.Pool[term] { return workerpool.NewInThread[term]() }

func (s *stubStrategy) GetWikiFile() (io.ReadCloser, error) {
	return nopCloser{strings.NewReader(`<mediawiki><page><title>A</title><text>a1</text></page></mediawiki>`)}, nil
}

func (s *stubStrategy) GetTermExtractor() pipeline.TermExtractor[term] {
	return func(p page.Page) ([]term, error) {
		if s.failEntries[p.Text()] {
			return nil, errors.New("boom")
		}
		return []term{{entry: p.Text()}}, nil
	}
}

func (s *stubStrategy) CreateDictionary() (dictionary.Dictionary[term], error) {
	return s.dict, nil
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestInstrumentRecordsSuccessfulRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	strategy := &stubStrategy{dict: dictionary.NewInMemory[term]()}
	instrumented := metrics.Instrument[term](strategy, m)

	handle := pipeline.RunExtractionPipeline[term](instrumented)
	require.NoError(t, handle.Join())

	assert.Equal(t, float64(1), counterValue(t, m.PagesExtracted))
	assert.Equal(t, float64(1), counterValue(t, m.TermsWritten))
	assert.Equal(t, float64(0), counterValue(t, m.ExtractionErrors))
}

func TestInstrumentRecordsExtractionErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	strategy := &stubStrategy{dict: dictionary.NewInMemory[term](), failEntries: map[string]bool{"a1": true}}
	instrumented := metrics.Instrument[term](strategy, m)

	handle := pipeline.RunExtractionPipeline[term](instrumented)
	require.NoError(t, handle.Join())

	assert.Equal(t, float64(1), counterValue(t, m.ExtractionErrors))
	assert.Equal(t, float64(0), counterValue(t, m.TermsWritten))
}
