// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	sqldict "github.com/giancosta86/wikiprism/internal/dictionary/sql"
)

// QueryExecutor runs an ad-hoc SQL query against a dictionary database.
// *sqldict.SqlDictionary[T] satisfies this for any term type T.
type QueryExecutor interface {
	ExecuteCommand(ctx context.Context, query string) (*sqldict.CommandResult, error)
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Headers []string `json:"headers"`
	Rows    [][]any  `json:"rows"`
}

// QueryHandler returns a handler that decodes a {"query": "..."} body, runs
// it through executor, and replies with the resulting rows as JSON. A
// failing query is reported as a 400 with the driver's error message, not a
// panic: the caller is expected to inspect and retry.
func QueryHandler(executor QueryExecutor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		result, err := executor.ExecuteCommand(r.Context(), req.Query)
		if err != nil {
			log.Warn().Err(err).Str("query", req.Query).Msg("ad-hoc query failed")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(queryResponse{Headers: result.Headers, Rows: result.Rows})
	}
}
