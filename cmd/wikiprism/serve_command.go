// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	sqldict "github.com/giancosta86/wikiprism/internal/dictionary/sql"
	"github.com/giancosta86/wikiprism/internal/httpapi"
)

// queryConnExecutor adapts a bare *sql.Conn to httpapi.QueryExecutor via
// sqldict.ExecuteCommandOn, for the serve command which has no
// SqlDictionary of its own to write through.
type queryConnExecutor struct {
	conn *sql.Conn
}

func (e queryConnExecutor) ExecuteCommand(ctx context.Context, query string) (*sqldict.CommandResult, error) {
	return sqldict.ExecuteCommandOn(ctx, e.conn, query)
}

// ServeCommand starts the HTTP monitor, exposing /v1/query against an
// existing dictionary database. It never runs a pipeline itself, and its
// monitor receives no pipeline events: "run" publishes progress only to
// the HTTP monitor it starts itself when httpMonitor.enabled is set.
func ServeCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP monitor against an existing dictionary database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if !cfg.HTTPMonitorEnabled() {
				return fmt.Errorf("httpMonitor.enabled is false in %s", configPath)
			}

			if dbPath == "" {
				dbPath = cfg.GetDatabasePath()
			}

			db, err := sql.Open("sqlite", dbPath)
			if err != nil {
				return fmt.Errorf("opening %s: %w", dbPath, err)
			}
			defer db.Close()

			conn, err := db.Conn(cmd.Context())
			if err != nil {
				return fmt.Errorf("leasing connection: %w", err)
			}
			defer conn.Close()

			router := httpapi.NewRouter(httpapi.Dependencies{
				Monitor: httpapi.NewMonitor(),
				Query:   queryConnExecutor{conn: conn},
				APIKey:  cfg.GetHTTPMonitorAPIKey(),
			})

			address := cfg.GetHTTPMonitorAddress()
			log.Info().Str("address", address).Msg("HTTP monitor listening")
			return http.ListenAndServe(address, router)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the dictionary database (defaults to the configured databasePath)")

	return cmd
}
