// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/movie-assistant/pkg/types"
)

const movieColumns = `m.id, m.title, m.original_title, m.description, m.release_year,
	m.popularity, m.vote_average, m.source,
	COALESCE((SELECT group_concat(g.genre, ',') FROM movie_genres g WHERE g.movie_id = m.id), '')`

// SaveMovie inserts m unless a record with the same id already exists.
// Existing records are never modified. It reports whether a row was added.
func (s *Store) SaveMovie(ctx context.Context, m types.MovieRecord) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	added, err := s.insertMovie(ctx, tx, m)
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing movie %d: %w", m.ID, err)
	}
	return added, nil
}

// SaveMovies inserts every record that is not stored yet, in one
// transaction, and returns how many were added.
func (s *Store) SaveMovies(ctx context.Context, ms []types.MovieRecord) (int, error) {
	if len(ms) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	added := 0
	for _, m := range ms {
		ok, err := s.insertMovie(ctx, tx, m)
		if err != nil {
			return 0, err
		}
		if ok {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing movies: %w", err)
	}
	return added, nil
}

func (s *Store) insertMovie(ctx context.Context, tx *sql.Tx, m types.MovieRecord) (bool, error) {
	if m.ID <= 0 {
		return false, fmt.Errorf("movie %q: id must be positive", m.Title)
	}
	source := m.Source
	if source == "" {
		source = types.SourceLocal
	}

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO movies
			(id, title, original_title, title_key, original_title_key, description,
			 release_year, popularity, vote_average, source, search_text, added_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Title, m.OriginalTitle, TitleKey(m.Title), TitleKey(m.OriginalTitle),
		m.Description, m.ReleaseYear, m.Popularity, m.VoteAverage, string(source),
		m.SearchText(), s.timestamp(),
	)
	if err != nil {
		return false, fmt.Errorf("inserting movie %d: %w", m.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("inserting movie %d: %w", m.ID, err)
	}
	if n == 0 {
		return false, nil
	}

	for _, g := range m.Genres {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO movie_genres (movie_id, genre) VALUES (?, ?)`,
			m.ID, string(g),
		); err != nil {
			return false, fmt.Errorf("inserting genre %s for movie %d: %w", g, m.ID, err)
		}
	}
	return true, nil
}

// Movie returns the record with the given id. ok is false when it is not stored.
func (s *Store) Movie(ctx context.Context, id int64) (m types.MovieRecord, ok bool, err error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies m WHERE m.id = ?`, id)
	m, err = scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.MovieRecord{}, false, nil
	}
	if err != nil {
		return types.MovieRecord{}, false, fmt.Errorf("loading movie %d: %w", id, err)
	}
	return m, true, nil
}

// FindByTitle looks a movie up by its localized or original title. An exact
// match on the normalized title wins; otherwise the most popular movie whose
// title contains the query, and failing that the most popular one whose
// title contains the stem of every query word, so "Матрицу" finds "Матрица".
func (s *Store) FindByTitle(ctx context.Context, title string) (types.MovieRecord, bool, error) {
	key := TitleKey(title)
	if key == "" {
		return types.MovieRecord{}, false, nil
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies m
		 WHERE m.title_key = ? OR m.original_title_key = ?
		 ORDER BY m.popularity DESC, m.id ASC LIMIT 1`, key, key)
	m, err := scanMovie(row)
	if err == nil {
		return m, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return types.MovieRecord{}, false, fmt.Errorf("finding title %q: %w", title, err)
	}

	pattern := "%" + escapeLike(key) + "%"
	row = s.db.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies m
		 WHERE m.title_key LIKE ? ESCAPE '\' OR m.original_title_key LIKE ? ESCAPE '\'
		 ORDER BY m.popularity DESC, m.id ASC LIMIT 1`, pattern, pattern)
	m, err = scanMovie(row)
	if err == nil {
		return m, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return types.MovieRecord{}, false, fmt.Errorf("finding title %q: %w", title, err)
	}

	stems := titleStems(key)
	if len(stems) == 0 {
		return types.MovieRecord{}, false, nil
	}
	local := make([]string, len(stems))
	original := make([]string, len(stems))
	patterns := make([]any, len(stems))
	for i, st := range stems {
		local[i] = `m.title_key LIKE ? ESCAPE '\'`
		original[i] = `m.original_title_key LIKE ? ESCAPE '\'`
		patterns[i] = "%" + escapeLike(st) + "%"
	}
	args := append(append([]any{}, patterns...), patterns...)
	row = s.db.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies m
		 WHERE (`+strings.Join(local, " AND ")+`) OR (`+strings.Join(original, " AND ")+`)
		 ORDER BY m.popularity DESC, m.id ASC LIMIT 1`, args...)
	m, err = scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.MovieRecord{}, false, nil
	}
	if err != nil {
		return types.MovieRecord{}, false, fmt.Errorf("finding title %q by stems: %w", title, err)
	}
	return m, true, nil
}

// titleStems stems each word of a title key. A word no longer than the stem
// loses its last rune so "милю" still matches "миля". Words under three
// runes are dropped.
func titleStems(key string) []string {
	var out []string
	for _, w := range strings.Fields(key) {
		w = strings.Trim(w, ".,!?:;-")
		n := utf8.RuneCountInString(w)
		if n < 3 {
			continue
		}
		st := types.Stem(w)
		if n > 3 && utf8.RuneCountInString(st) == n {
			st = string([]rune(st)[:n-1])
		}
		out = append(out, st)
	}
	return out
}

// Candidates returns movies that carry any of genres or whose title or
// description contains any of stems. Movies matching more of the genres and
// stems come first, then the most popular. Stems are matched as lowercase
// substrings. With no genres and no stems it returns nothing.
func (s *Store) Candidates(ctx context.Context, genres []types.Genre, stems []string, limit int) ([]types.MovieRecord, error) {
	var (
		clauses   []string
		args      []any
		strength  []string
		orderArgs []any
	)
	if len(genres) > 0 {
		in := placeholders(len(genres))
		clauses = append(clauses,
			`m.id IN (SELECT movie_id FROM movie_genres WHERE genre IN (`+in+`))`)
		strength = append(strength,
			`(SELECT count(*) FROM movie_genres g WHERE g.movie_id = m.id AND g.genre IN (`+in+`))`)
		for _, g := range genres {
			args = append(args, string(g))
			orderArgs = append(orderArgs, string(g))
		}
	}
	for _, st := range stems {
		st = types.FoldText(strings.TrimSpace(st))
		if st == "" {
			continue
		}
		pattern := "%" + escapeLike(st) + "%"
		clauses = append(clauses, `m.search_text LIKE ? ESCAPE '\'`)
		strength = append(strength, `(m.search_text LIKE ? ESCAPE '\')`)
		args = append(args, pattern)
		orderArgs = append(orderArgs, pattern)
	}
	if len(clauses) == 0 {
		return nil, nil
	}

	query := `SELECT ` + movieColumns + ` FROM movies m WHERE ` +
		strings.Join(clauses, " OR ") +
		` ORDER BY (` + strings.Join(strength, " + ") + `) DESC, m.popularity DESC, m.id ASC`
	args = append(args, orderArgs...)
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryMovies(ctx, query, args...)
}

// Popular returns the most popular movies, restricted to those carrying any
// of genres when genres is non-empty.
func (s *Store) Popular(ctx context.Context, genres []types.Genre, limit int) ([]types.MovieRecord, error) {
	query := `SELECT ` + movieColumns + ` FROM movies m`
	var args []any
	if len(genres) > 0 {
		query += ` WHERE m.id IN (SELECT movie_id FROM movie_genres WHERE genre IN (` +
			placeholders(len(genres)) + `))`
		for _, g := range genres {
			args = append(args, string(g))
		}
	}
	query += ` ORDER BY m.popularity DESC, m.id ASC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryMovies(ctx, query, args...)
}

// Movies returns every stored movie ordered by id.
func (s *Store) Movies(ctx context.Context) ([]types.MovieRecord, error) {
	return s.queryMovies(ctx, `SELECT `+movieColumns+` FROM movies m ORDER BY m.id ASC`)
}

// CountMovies returns the number of stored movies.
func (s *Store) CountMovies(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM movies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting movies: %w", err)
	}
	return n, nil
}

func (s *Store) queryMovies(ctx context.Context, query string, args ...any) ([]types.MovieRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying movies: %w", err)
	}
	defer rows.Close()

	var out []types.MovieRecord
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning movie: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

// scanMovie reads the movieColumns of one row. extra receives any columns
// selected after them.
func scanMovie(sc scanner, extra ...any) (types.MovieRecord, error) {
	var (
		m      types.MovieRecord
		source string
		genres string
	)
	dest := append([]any{&m.ID, &m.Title, &m.OriginalTitle, &m.Description, &m.ReleaseYear,
		&m.Popularity, &m.VoteAverage, &source, &genres}, extra...)
	if err := sc.Scan(dest...); err != nil {
		return types.MovieRecord{}, err
	}
	m.Source = types.MovieSource(source)
	if genres != "" {
		parts := strings.Split(genres, ",")
		sort.Strings(parts)
		for _, g := range parts {
			m.Genres = append(m.Genres, types.Genre(g))
		}
	}
	return m, nil
}
