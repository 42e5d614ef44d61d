// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog is a client for the TMDB v3 movie catalog. Every call is a
// single rate-limited request; failures surface as *types.RemoteServiceError.
package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/movie-assistant/internal/httputil"
	"github.com/pdiddy/movie-assistant/pkg/types"
)

// tmdbAPIBase is the TMDB v3 API root. Declared as a var so tests can
// substitute an httptest server.
var tmdbAPIBase = "https://api.themoviedb.org/3"

const serviceName = "tmdb"

// Client queries TMDB.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	base      string
	apiKey    string
	language  string
	userAgent string
}

// New returns a client for cfg. A nil httpClient gets a client with
// cfg.Timeout.
func New(cfg types.CatalogConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = tmdbAPIBase
	}
	lang := cfg.Language
	if lang == "" {
		lang = "ru-RU"
	}
	return &Client{
		http:      httpClient,
		limiter:   httputil.NewLimiter(cfg.RequestsPerSecond),
		base:      base,
		apiKey:    cfg.APIKey,
		language:  lang,
		userAgent: cfg.UserAgent,
	}
}

type tmdbGenre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type tmdbMovie struct {
	ID            int64       `json:"id"`
	Title         string      `json:"title"`
	OriginalTitle string      `json:"original_title"`
	Overview      string      `json:"overview"`
	ReleaseDate   string      `json:"release_date"`
	GenreIDs      []int       `json:"genre_ids"`
	Genres        []tmdbGenre `json:"genres"`
	Popularity    float64     `json:"popularity"`
	VoteAverage   float64     `json:"vote_average"`
}

type tmdbPage struct {
	Page         int         `json:"page"`
	Results      []tmdbMovie `json:"results"`
	TotalResults int         `json:"total_results"`
}

// SearchMovies runs a free-text movie search.
func (c *Client) SearchMovies(ctx context.Context, query string) ([]types.MovieRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	var page tmdbPage
	if err := c.get(ctx, "search/movie", url.Values{
		"query":         {query},
		"include_adult": {"false"},
	}, &page); err != nil {
		return nil, err
	}
	return toRecords(page.Results), nil
}

// Discover lists popular movies carrying any of genres.
func (c *Client) Discover(ctx context.Context, genres []types.Genre) ([]types.MovieRecord, error) {
	params := url.Values{
		"sort_by":       {"popularity.desc"},
		"include_adult": {"false"},
	}
	if g := withGenres(genres); g != "" {
		params.Set("with_genres", g)
	}
	var page tmdbPage
	if err := c.get(ctx, "discover/movie", params, &page); err != nil {
		return nil, err
	}
	return toRecords(page.Results), nil
}

// Popular lists the catalog's currently popular movies.
func (c *Client) Popular(ctx context.Context) ([]types.MovieRecord, error) {
	var page tmdbPage
	if err := c.get(ctx, "movie/popular", nil, &page); err != nil {
		return nil, err
	}
	return toRecords(page.Results), nil
}

// Movie fetches one movie by TMDB id.
func (c *Client) Movie(ctx context.Context, id int64) (types.MovieRecord, error) {
	var m tmdbMovie
	if err := c.get(ctx, "movie/"+strconv.FormatInt(id, 10), nil, &m); err != nil {
		return types.MovieRecord{}, err
	}
	if m.ID == 0 {
		return types.MovieRecord{}, &types.RemoteServiceError{
			Service: serviceName, Op: "movie", Err: fmt.Errorf("%w: missing id", httputil.ErrMalformed),
		}
	}
	return toRecord(m), nil
}

var yearSuffix = regexp.MustCompile(`\s*\((\d{4})\)\s*$`)

// SearchTitle resolves a title the user referred to. A trailing "(1999)" is
// sent as the release year. Among the top five hits the closest title wins;
// ok is false when nothing is close enough. It issues exactly one request.
func (c *Client) SearchTitle(ctx context.Context, title string) (types.MovieRecord, bool, error) {
	clean, year := splitYear(title)
	if clean == "" {
		return types.MovieRecord{}, false, nil
	}
	params := url.Values{
		"query":         {clean},
		"include_adult": {"false"},
	}
	if year != 0 {
		params.Set("year", strconv.Itoa(year))
	}
	var page tmdbPage
	if err := c.get(ctx, "search/movie", params, &page); err != nil {
		return types.MovieRecord{}, false, err
	}
	m, ok := bestTitleMatch(page.Results, clean, year)
	if !ok {
		return types.MovieRecord{}, false, nil
	}
	return toRecord(m), true, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, dst any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/"+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return httputil.GetJSON(ctx, c.http, c.limiter, req, serviceName, opName(path), dst)
}

// opName collapses numeric path segments so "movie/603" reports as "movie".
func opName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		if _, err := strconv.ParseInt(path[i+1:], 10, 64); err == nil {
			return path[:i]
		}
	}
	return path
}

func splitYear(title string) (string, int) {
	title = strings.TrimSpace(title)
	year := 0
	if m := yearSuffix.FindStringSubmatch(title); m != nil {
		year, _ = strconv.Atoi(m[1])
		title = yearSuffix.ReplaceAllString(title, "")
	}
	return strings.Trim(title, " \"«»*"), year
}

const minTitleScore = 40

// bestTitleMatch scores the top five results against the wanted title.
// Exact titles score 100, containment 80 (75 for the original title), each
// shared word 20; a matching year adds 50 and a year more than two off
// subtracts 30.
func bestTitleMatch(results []tmdbMovie, title string, year int) (tmdbMovie, bool) {
	want := strings.ToLower(title)
	wantWords := wordSet(want)

	var (
		best      tmdbMovie
		bestScore int
	)
	for i, m := range results {
		if i == 5 {
			break
		}
		t := strings.ToLower(m.Title)
		o := strings.ToLower(m.OriginalTitle)

		score := 0
		switch {
		case want == t || want == o:
			score += 100
		case t != "" && (strings.Contains(t, want) || strings.Contains(want, t)):
			score += 80
		case o != "" && (strings.Contains(o, want) || strings.Contains(want, o)):
			score += 75
		}
		score += 20 * max(common(wantWords, wordSet(t)), common(wantWords, wordSet(o)))

		if y := releaseYear(m.ReleaseDate); year != 0 && y != 0 {
			if y == year {
				score += 50
			} else if abs(y-year) > 2 {
				score -= 30
			}
		}
		if score > bestScore {
			best, bestScore = m, score
		}
	}
	return best, bestScore >= minTitleScore
}

func wordSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		out[w] = struct{}{}
	}
	return out
}

func common(a, b map[string]struct{}) int {
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// releaseYear parses the year of a "YYYY-MM-DD" date, 0 when absent.
func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}

func toRecords(ms []tmdbMovie) []types.MovieRecord {
	out := make([]types.MovieRecord, 0, len(ms))
	for _, m := range ms {
		if m.ID == 0 || m.Title == "" {
			continue
		}
		out = append(out, toRecord(m))
	}
	return out
}

func toRecord(m tmdbMovie) types.MovieRecord {
	ids := append([]int(nil), m.GenreIDs...)
	for _, g := range m.Genres {
		ids = append(ids, g.ID)
	}
	return types.MovieRecord{
		ID:            m.ID,
		Title:         m.Title,
		OriginalTitle: m.OriginalTitle,
		Genres:        genresFromIDs(ids),
		Description:   m.Overview,
		ReleaseYear:   releaseYear(m.ReleaseDate),
		Popularity:    m.Popularity,
		VoteAverage:   m.VoteAverage,
		Source:        types.SourceTMDB,
	}
}
