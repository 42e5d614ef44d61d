// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"

	"github.com/pdiddy/movie-assistant/internal/catalog"
	"github.com/pdiddy/movie-assistant/internal/llm"
	"github.com/pdiddy/movie-assistant/internal/match"
	"github.com/pdiddy/movie-assistant/internal/metrics"
	"github.com/pdiddy/movie-assistant/internal/session"
	"github.com/pdiddy/movie-assistant/internal/store"
	"github.com/pdiddy/movie-assistant/pkg/types"
)

// app holds the components shared by the bot and the local transports.
type app struct {
	cfg     types.Config
	metrics *metrics.Metrics
	store   *store.Store
	catalog *catalog.Client
	router  *session.Router
}

// newApp opens the store and builds the recommendation pipeline. No remote
// service is contacted.
func newApp(cfg types.Config) (*app, error) {
	m := metrics.New()

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	cat := catalog.New(cfg.Catalog, &http.Client{
		Timeout:   cfg.Catalog.Timeout,
		Transport: m.Transport("tmdb", nil),
	})

	explainer, err := llm.New(cfg.LLM, &http.Client{
		Timeout:   cfg.LLM.Timeout,
		Transport: m.Transport(string(cfg.LLM.Provider), nil),
	})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating language model client: %w", err)
	}

	matcher := match.New(st, cat, cfg.Match).WithObserver(m)
	router := session.NewRouter(st, matcher, explainer, cfg.Match).WithObserver(m)

	return &app{cfg: cfg, metrics: m, store: st, catalog: cat, router: router}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
