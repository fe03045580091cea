// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package httpapi

import (
	"net/http"

	"github.com/CAFxX/httpcompression"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

// Dependencies holds everything the monitor router needs to wire up.
type Dependencies struct {
	Monitor *Monitor
	Query   QueryExecutor // may be nil: /v1/query is only registered when set
	APIKey  string
}

// NewRouter builds the HTTP monitor's router: pipeline progress over SSE and
// an ad-hoc query endpoint, both behind a static API key.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	compressor, err := httpcompression.DefaultAdapter()
	if err != nil {
		log.Error().Err(err).Msg("failed to create HTTP compression adapter")
	} else {
		r.Use(compressor)
	}

	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Authorization", "X-API-Key", "Content-Type"},
	}).Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(RequireAPIKey(deps.APIKey))

		r.Get("/pipelines/{id}/events", func(w http.ResponseWriter, r *http.Request) {
			deps.Monitor.ServeEvents(w, r, chi.URLParam(r, "id"))
		})

		if deps.Query != nil {
			r.Post("/query", QueryHandler(deps.Query))
		}
	})

	return r
}
