// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package pipeline_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/giancosta86/wikiprism/internal/dictionary"
	sqldict "github.com/giancosta86/wikiprism/internal/dictionary/sql"
	"github.com/giancosta86/wikiprism/internal/page"
	"github.com/giancosta86/wikiprism/internal/pipeline"
	"github.com/giancosta86/wikiprism/internal/workerpool"
)

type sqlTestStrategy struct {
	pipeline.BaseSqlStrategy[testTerm]

	source      string
	failOnEntry map[string]bool
	preFail     error

	endedErr error
	ended    chan struct{}
}

func newSqlTestStrategy(t *testing.T, source, targetPath string) *sqlTestStrategy {
	t.Helper()
	workPath := filepath.Join(t.TempDir(), "work.sqlite")
	return &sqlTestStrategy{
		BaseSqlStrategy: pipeline.NewBaseSqlStrategy[testTerm](workPath, targetPath),
		source:          source,
		ended:           make(chan struct{}),
	}
}

func (s *sqlTestStrategy) InitializePipeline() error {
	return s.preFail
}

func (s *sqlTestStrategy) CreatePool() workerpool.Pool[testTerm] {
	return workerpool.NewInThread[testTerm]()
}

func (s *sqlTestStrategy) GetWikiFile() (io.ReadCloser, error) {
	return nopCloser{strings.NewReader(s.source)}, nil
}

func (s *sqlTestStrategy) GetTermExtractor() pipeline.TermExtractor[testTerm] {
	return func(p page.Page) ([]testTerm, error) {
		return []testTerm{{entry: p.Text()}}, nil
	}
}

func (s *sqlTestStrategy) CreateDictionary() (dictionary.Dictionary[testTerm], error) {
	db, err := sql.Open("sqlite", s.WorkDBPath)
	if err != nil {
		return nil, err
	}
	conn, err := db.Conn(context.Background())
	if err != nil {
		return nil, err
	}

	dict := sqldict.NewSqlDictionary[testTerm](conn,
		func(ctx context.Context, conn *sql.Conn) error {
			_, err := conn.ExecContext(ctx, `CREATE TABLE terms (entry TEXT PRIMARY KEY)`)
			return err
		},
		func(ser *sqldict.BufferedSerialiser) {
			sqldict.Register(ser, `INSERT INTO terms (entry) VALUES (?)`, func(term testTerm) ([][]any, error) {
				if s.failOnEntry[term.entry] {
					return nil, errors.New("rejected " + term.entry)
				}
				return [][]any{{term.entry}}, nil
			})
		})
	return dict, nil
}

func (s *sqlTestStrategy) OnMessage(string) {}

func (s *sqlTestStrategy) OnEnded(err error) {
	s.endedErr = err
	close(s.ended)
}

func TestSqlPipelineMerryPathWritesAllTerms(t *testing.T) {
	targetPath := filepath.Join(t.TempDir(), "target.sqlite")
	strategy := newSqlTestStrategy(t, wikiFixture(false), targetPath)

	handle := pipeline.RunExtractionPipeline[testTerm](strategy)
	err := handle.Join()
	require.NoError(t, err)
	<-strategy.ended

	db, err := sql.Open("sqlite", targetPath)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query(`SELECT entry FROM terms ORDER BY entry`)
	require.NoError(t, err)
	defer rows.Close()

	var got []string
	for rows.Next() {
		var entry string
		require.NoError(t, rows.Scan(&entry))
		got = append(got, entry)
	}
	assert.ElementsMatch(t, []string{"A1", "B2", "C3", "D4", "E5", "Z6"}, got)
}

func TestSqlPipelinePreProcessingFailureIsFatal(t *testing.T) {
	targetPath := filepath.Join(t.TempDir(), "target.sqlite")
	strategy := newSqlTestStrategy(t, wikiFixture(false), targetPath)
	strategy.preFail = errors.New("schema explosion")

	handle := pipeline.RunExtractionPipeline[testTerm](strategy)
	err := handle.Join()

	require.Error(t, err)
	var preErr *pipeline.PreProcessingError
	assert.ErrorAs(t, err, &preErr)
	<-strategy.ended
}

func TestSqlPipelinePostProcessingFailureIsFatalOnBadTargetPath(t *testing.T) {
	// An empty-byte path is never a writable filesystem path, which is
	// exactly the condition PerformLastSuccessfulSteps (the rename/copy
	// step) must surface as a fatal PostProcessingError.
	strategy := newSqlTestStrategy(t, wikiFixture(false), "\x00")

	handle := pipeline.RunExtractionPipeline[testTerm](strategy)
	err := handle.Join()

	require.Error(t, err)
	var postErr *pipeline.PostProcessingError
	assert.ErrorAs(t, err, &postErr)
	<-strategy.ended
}
