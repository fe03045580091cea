// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/giancosta86/wikiprism/internal/config"
	"github.com/giancosta86/wikiprism/internal/dictionary"
	sqldict "github.com/giancosta86/wikiprism/internal/dictionary/sql"
	"github.com/giancosta86/wikiprism/internal/extract"
	"github.com/giancosta86/wikiprism/internal/httpapi"
	"github.com/giancosta86/wikiprism/internal/metrics"
	"github.com/giancosta86/wikiprism/internal/pipeline"
	"github.com/giancosta86/wikiprism/internal/wikisource"
	"github.com/giancosta86/wikiprism/internal/workerpool"
	"github.com/giancosta86/wikiprism/pkg/debounce"
)

// messageBurstWindow is how long runStrategy.OnMessage waits after the
// first isolated failure of a burst before logging one summary of every
// failure received in that window. A wiki dump with a systematically
// malformed field (e.g. a bad extractor rule) can emit thousands of
// per-page or per-term isolated failures in a few seconds; logging every
// one of them at WARN would drown out everything else in the log.
const messageBurstWindow = 2 * time.Second

// RunCommand extracts terms from a configured wiki dump into a SQLite
// dictionary.
func RunCommand() *cobra.Command {
	var minWordLength int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Extract terminology from a wiki dump into a dictionary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			m := metrics.NewMetrics(reg)

			var strategy pipeline.Strategy[extract.WordTerm] = newRunStrategy(cfg, minWordLength)
			strategy = metrics.Instrument[extract.WordTerm](strategy, m)

			if cfg.HTTPMonitorEnabled() {
				runID := uuid.NewString()
				monitor := httpapi.NewMonitor()
				strategy = httpapi.Monitored[extract.WordTerm](strategy, monitor, runID)

				router := httpapi.NewRouter(httpapi.Dependencies{Monitor: monitor, APIKey: cfg.GetHTTPMonitorAPIKey()})
				address := cfg.GetHTTPMonitorAddress()
				go func() {
					log.Info().Str("address", address).Str("runId", runID).Msg("HTTP monitor listening")
					if err := http.ListenAndServe(address, router); err != nil {
						log.Error().Err(err).Msg("HTTP monitor stopped")
					}
				}()
			}

			handle := pipeline.RunExtractionPipeline[extract.WordTerm](strategy)
			return handle.Join()
		},
	}

	cmd.Flags().IntVar(&minWordLength, "min-word-length", 3, "Shortest word length kept as a term")

	return cmd
}

// runStrategy wires the pipeline's Strategy hooks to a wiki source opened
// through pkg wikisource, a word extractor, and a SQLite dictionary
// written to a temporary work file before being promoted to its final
// path by BaseSqlStrategy.
type runStrategy struct {
	pipeline.BaseSqlStrategy[extract.WordTerm]

	cfg           *config.Config
	minWordLength int

	msgBurst      *debounce.Debouncer
	msgBurstCount atomic.Int64
	lastMsg       atomic.Value
}

func newRunStrategy(cfg *config.Config, minWordLength int) *runStrategy {
	target := cfg.GetDatabasePath()
	work := target + ".inprogress"
	s := &runStrategy{
		BaseSqlStrategy: pipeline.NewBaseSqlStrategy[extract.WordTerm](work, target),
		cfg:             cfg,
		minWordLength:   minWordLength,
	}
	s.msgBurst = debounce.New(messageBurstWindow)
	return s
}

func (s *runStrategy) InitializePipeline() error {
	_ = os.Remove(s.WorkDBPath)
	return nil
}

func (s *runStrategy) CreatePool() workerpool.Pool[extract.WordTerm] {
	workers := s.cfg.GetWorkerCount()
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return workerpool.NewParallel[extract.WordTerm](workers)
}

func (s *runStrategy) GetWikiFile() (io.ReadCloser, error) {
	return wikisource.Open(context.Background(), s.cfg.GetWikiSourcePath())
}

func (s *runStrategy) GetTermExtractor() pipeline.TermExtractor[extract.WordTerm] {
	return extract.NewWordExtractor(s.minWordLength, nil)
}

func (s *runStrategy) CreateDictionary() (dictionary.Dictionary[extract.WordTerm], error) {
	db, err := sql.Open("sqlite", s.WorkDBPath)
	if err != nil {
		return nil, fmt.Errorf("opening work database: %w", err)
	}

	conn, err := db.Conn(context.Background())
	if err != nil {
		return nil, fmt.Errorf("leasing work database connection: %w", err)
	}

	dict := sqldict.NewSqlDictionary[extract.WordTerm](conn, createWordSchema, registerWordTerms)
	return dict, nil
}

// OnMessage coalesces isolated-failure notices arriving within
// messageBurstWindow of the first one into a single WARN line reporting the
// burst's size and its last message, the same way config.WatchAndReload
// debounces a flurry of fsnotify events into one reload: a bad extractor
// rule or a systematically malformed field in the dump can otherwise
// produce thousands of near-identical log lines per second.
func (s *runStrategy) OnMessage(message string) {
	s.lastMsg.Store(message)
	s.msgBurstCount.Add(1)

	s.msgBurst.Do(func() {
		count := s.msgBurstCount.Swap(0)
		last, _ := s.lastMsg.Load().(string)
		log.Warn().Int64("count", count).Msg(last)
	})
}

func (s *runStrategy) OnEnded(err error) {
	s.msgBurst.Stop()

	if err != nil {
		log.Error().Err(err).Msg("extraction run ended with an error")
		return
	}
	log.Info().Str("database", s.TargetDBPath()).Msg("extraction run completed")
}

func createWordSchema(ctx context.Context, conn *sql.Conn) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS schema_meta (key TEXT PRIMARY KEY, value TEXT NOT NULL)`,
		`INSERT OR REPLACE INTO schema_meta (key, value) VALUES ('version', '` + sqldict.SchemaVersion + `')`,
		`CREATE TABLE IF NOT EXISTS terms (
			word TEXT NOT NULL,
			source_title TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_terms_word ON terms (word)`,
	}
	for _, stmt := range statements {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("running %q: %w", stmt, err)
		}
	}
	return nil
}

func registerWordTerms(s *sqldict.BufferedSerialiser) {
	sqldict.Register[extract.WordTerm](s, `INSERT INTO terms (word, source_title) VALUES (?, ?)`,
		func(term extract.WordTerm) ([][]any, error) {
			return [][]any{{term.Word, term.SourceTitle}}, nil
		})
}
