// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match turns a parsed query into a ranked, deduplicated list of
// movie candidates. Local store records are scored first; the external
// catalog is consulted only when nothing local clears the score threshold.
package match

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/movie-assistant/internal/logging"
	"github.com/pdiddy/movie-assistant/pkg/types"
)

// DefaultPoolSize bounds how many of the most popular local records the
// Popular ranking reads. Match scores every record that shares a signal.
const DefaultPoolSize = 200

// Store is the subset of the metadata store the matcher reads and caches into.
type Store interface {
	FindByTitle(ctx context.Context, title string) (types.MovieRecord, bool, error)
	Candidates(ctx context.Context, genres []types.Genre, stems []string, limit int) ([]types.MovieRecord, error)
	Popular(ctx context.Context, genres []types.Genre, limit int) ([]types.MovieRecord, error)
	SaveMovies(ctx context.Context, ms []types.MovieRecord) (int, error)
}

// Catalog is the subset of the external catalog the matcher queries.
type Catalog interface {
	SearchTitle(ctx context.Context, title string) (types.MovieRecord, bool, error)
	SearchMovies(ctx context.Context, query string) ([]types.MovieRecord, error)
	Discover(ctx context.Context, genres []types.Genre) ([]types.MovieRecord, error)
	Popular(ctx context.Context) ([]types.MovieRecord, error)
}

// Observer is told when the matcher falls back to the catalog and whether
// the call failed. It may be nil.
type Observer interface {
	CatalogFallback(op string, err error)
}

// Matcher ranks movies for queries.
type Matcher struct {
	store    Store
	catalog  Catalog
	observer Observer
	minScore float64
	poolSize int
}

// New returns a matcher over store. catalog may be nil, in which case only
// local records are considered.
func New(store Store, catalog Catalog, cfg types.MatchConfig) *Matcher {
	minScore := cfg.MinScore
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	return &Matcher{
		store:    store,
		catalog:  catalog,
		minScore: minScore,
		poolSize: DefaultPoolSize,
	}
}

// WithObserver sets the catalog fallback observer and returns m.
func (m *Matcher) WithObserver(o Observer) *Matcher {
	m.observer = o
	return m
}

// Match returns at most limit candidates for q, sorted by descending score
// then descending popularity, with unique movie ids. No overlap yields an
// empty slice, not an error. Only store failures are returned; catalog
// failures are logged and treated as no additional candidates.
func (m *Matcher) Match(ctx context.Context, q types.Query, limit int) ([]types.Candidate, error) {
	if limit <= 0 {
		return nil, nil
	}
	log := logging.Component(ctx, "match")

	sig := signals{
		genres:    copySet(q.Genres),
		stems:     q.Keywords,
		preferred: q.PreferredGenres,
	}
	exclude := make(map[int64]struct{}, len(q.ExcludeIDs)+1)
	for _, id := range q.ExcludeIDs {
		exclude[id] = struct{}{}
	}

	if q.ReferenceTitle != "" {
		ref, ok, err := m.resolveReference(ctx, q.ReferenceTitle)
		if err != nil {
			return nil, err
		}
		if ok {
			exclude[ref.ID] = struct{}{}
			for _, g := range ref.Genres {
				sig.genres.Add(g)
			}
			log.Debug().Int64("movie_id", ref.ID).Str("title", ref.Title).Msg("reference resolved")
		}
	}

	var cs []types.Candidate
	if !sig.empty() {
		pool, err := m.store.Candidates(ctx, sig.genres.Sorted(), sig.stems, 0)
		if err != nil {
			return nil, fmt.Errorf("loading local candidates: %w", err)
		}
		cs = m.scoreAll(sig, pool, exclude)
	}

	if len(cs) == 0 {
		remote := m.fetchFallback(ctx, q, sig)
		if sig.empty() {
			cs = m.rankAll(remote, exclude)
		} else {
			cs = m.scoreAll(sig, remote, exclude)
		}
		log.Debug().Int("fetched", len(remote)).Int("kept", len(cs)).Msg("catalog fallback")
	}

	return finalize(cs, limit), nil
}

// Resolve finds the movie titled title, locally or in the catalog.
func (m *Matcher) Resolve(ctx context.Context, title string) (types.MovieRecord, bool, error) {
	return m.resolveReference(ctx, strings.Trim(strings.TrimSpace(title), `"'«»“”`))
}

// resolveReference finds the movie a query refers to: in the store first,
// then with exactly one catalog title search whose hit is cached.
func (m *Matcher) resolveReference(ctx context.Context, title string) (types.MovieRecord, bool, error) {
	ref, ok, err := m.store.FindByTitle(ctx, title)
	if err != nil {
		return types.MovieRecord{}, false, fmt.Errorf("looking up reference title: %w", err)
	}
	if ok || m.catalog == nil {
		return ref, ok, nil
	}

	ref, ok, err = m.catalog.SearchTitle(ctx, title)
	m.observe("search_title", err)
	if err != nil {
		logging.Component(ctx, "match").Warn().Err(err).Str("title", title).Msg("reference lookup failed")
		return types.MovieRecord{}, false, nil
	}
	if ok {
		m.cache(ctx, []types.MovieRecord{ref})
	}
	return ref, ok, nil
}

// fetchFallback queries the catalog after a local miss: by keywords, by
// genre when only genre hints exist, or by the raw text otherwise.
func (m *Matcher) fetchFallback(ctx context.Context, q types.Query, sig signals) []types.MovieRecord {
	if m.catalog == nil {
		return nil
	}

	var (
		op      string
		results []types.MovieRecord
		err     error
	)
	switch {
	case len(sig.stems) > 0:
		op = "search"
		terms := q.Terms
		if len(terms) == 0 {
			terms = sig.stems
		}
		results, err = m.catalog.SearchMovies(ctx, strings.Join(terms, " "))
	case len(sig.genres) > 0:
		op = "discover"
		results, err = m.catalog.Discover(ctx, sig.genres.Sorted())
	default:
		text := strings.TrimSpace(q.RawText)
		if text == "" {
			text = q.ReferenceTitle
		}
		if text == "" {
			return nil
		}
		op = "search"
		results, err = m.catalog.SearchMovies(ctx, text)
	}
	m.observe(op, err)
	if err != nil {
		logging.Component(ctx, "match").Warn().Err(err).Str("op", op).Msg("catalog fallback failed")
		return nil
	}
	m.cache(ctx, results)
	return results
}

// Popular returns the most popular movies carrying any of genres (all
// movies when genres is empty), scored by popularity relative to the most
// popular result. The catalog is consulted when the store has none.
func (m *Matcher) Popular(ctx context.Context, genres []types.Genre, limit int) ([]types.Candidate, error) {
	if limit <= 0 {
		return nil, nil
	}
	movies, err := m.store.Popular(ctx, genres, m.poolSize)
	if err != nil {
		return nil, fmt.Errorf("loading popular movies: %w", err)
	}

	if len(movies) == 0 && m.catalog != nil {
		op := "popular"
		var remote []types.MovieRecord
		if len(genres) > 0 {
			op = "discover"
			remote, err = m.catalog.Discover(ctx, genres)
		} else {
			remote, err = m.catalog.Popular(ctx)
		}
		m.observe(op, err)
		if err != nil {
			logging.Component(ctx, "match").Warn().Err(err).Str("op", op).Msg("catalog fallback failed")
		} else {
			m.cache(ctx, remote)
			want := types.NewGenreSet(genres...)
			for _, r := range remote {
				if len(want) == 0 || genreOverlap(want, r) > 0 {
					movies = append(movies, r)
				}
			}
		}
	}

	var top float64
	for _, mv := range movies {
		top = max(top, mv.Popularity)
	}
	cs := make([]types.Candidate, 0, len(movies))
	for _, mv := range movies {
		s := 1.0
		if top > 0 {
			s = mv.Popularity / top
		}
		cs = append(cs, types.Candidate{Movie: mv, Score: s})
	}
	return finalize(cs, limit), nil
}

func (m *Matcher) scoreAll(sig signals, movies []types.MovieRecord, exclude map[int64]struct{}) []types.Candidate {
	var out []types.Candidate
	for _, mv := range movies {
		if _, skip := exclude[mv.ID]; skip {
			continue
		}
		if s := score(sig, mv); s >= m.minScore {
			out = append(out, types.Candidate{Movie: mv, Score: s})
		}
	}
	return out
}

func (m *Matcher) rankAll(movies []types.MovieRecord, exclude map[int64]struct{}) []types.Candidate {
	var out []types.Candidate
	for i, mv := range movies {
		if _, skip := exclude[mv.ID]; skip {
			continue
		}
		if s := rankScore(i, len(movies)); s >= m.minScore {
			out = append(out, types.Candidate{Movie: mv, Score: s})
		}
	}
	return out
}

// cache stores catalog records locally; failures are logged.
func (m *Matcher) cache(ctx context.Context, ms []types.MovieRecord) {
	if len(ms) == 0 {
		return
	}
	if _, err := m.store.SaveMovies(ctx, ms); err != nil {
		logging.Component(ctx, "match").Warn().Err(err).Int("count", len(ms)).Msg("caching catalog movies failed")
	}
}

func (m *Matcher) observe(op string, err error) {
	if m.observer != nil {
		m.observer.CatalogFallback(op, err)
	}
}
