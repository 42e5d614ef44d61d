// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"

	"github.com/pdiddy/movie-assistant/pkg/types"
)

// SetRating records the user's score for a stored movie, replacing any
// earlier score. Scores outside 0..10 are rejected.
func (s *Store) SetRating(ctx context.Context, userID, movieID int64, score int) error {
	if score < 0 || score > types.MaxRating {
		return fmt.Errorf("rating %d is outside 0..%d", score, types.MaxRating)
	}
	now := s.timestamp()
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (id, created_at) VALUES (?, ?)`, userID, now,
	); err != nil {
		return fmt.Errorf("registering user %d: %w", userID, err)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ratings (user_id, movie_id, score, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, movie_id) DO UPDATE SET score = excluded.score, created_at = excluded.created_at`,
		userID, movieID, score, now,
	)
	if err != nil {
		return fmt.Errorf("saving rating for movie %d: %w", movieID, err)
	}
	return nil
}

// Ratings returns the user's rated movies, highest score first and most
// recent first among equal scores.
func (s *Store) Ratings(ctx context.Context, userID int64) ([]types.Rating, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+movieColumns+`, r.score, r.created_at
		 FROM ratings r JOIN movies m ON m.id = r.movie_id
		 WHERE r.user_id = ?
		 ORDER BY r.score DESC, r.created_at DESC, m.id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("loading ratings: %w", err)
	}
	defer rows.Close()

	var out []types.Rating
	for rows.Next() {
		var (
			r       = types.Rating{UserID: userID}
			created string
		)
		r.Movie, err = scanMovie(rows, &r.Score, &created)
		if err != nil {
			return nil, fmt.Errorf("scanning rating: %w", err)
		}
		r.CreatedAt = parseTimestamp(created)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading ratings: %w", err)
	}
	return out, nil
}

// AddToSaved puts a stored movie on the user's watch list. It reports false
// when the movie was already there.
func (s *Store) AddToSaved(ctx context.Context, userID, movieID int64) (bool, error) {
	now := s.timestamp()
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (id, created_at) VALUES (?, ?)`, userID, now,
	); err != nil {
		return false, fmt.Errorf("registering user %d: %w", userID, err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO saved_movies (user_id, movie_id, created_at) VALUES (?, ?, ?)`,
		userID, movieID, now,
	)
	if err != nil {
		return false, fmt.Errorf("saving movie %d: %w", movieID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("saving movie %d: %w", movieID, err)
	}
	return n > 0, nil
}

// SavedMovies returns the user's watch list, most recently saved first.
func (s *Store) SavedMovies(ctx context.Context, userID int64) ([]types.MovieRecord, error) {
	return s.queryMovies(ctx,
		`SELECT `+movieColumns+`
		 FROM saved_movies sm JOIN movies m ON m.id = sm.movie_id
		 WHERE sm.user_id = ?
		 ORDER BY sm.created_at DESC, sm.rowid DESC`, userID)
}
