// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/pdiddy/movie-assistant/pkg/types"
)

// EnsureUser registers userID if it is new. A non-empty username replaces
// the stored one.
func (s *Store) EnsureUser(ctx context.Context, userID int64, username string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET username = excluded.username
		 WHERE excluded.username != ''`,
		userID, username, s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("registering user %d: %w", userID, err)
	}
	return nil
}

// Preferences returns the user's favorite genres and the last historyLimit
// queries, oldest first. Unknown users yield empty preferences.
func (s *Store) Preferences(ctx context.Context, userID int64, historyLimit int) (types.UserPreferences, error) {
	prefs := types.UserPreferences{UserID: userID, FavoriteGenres: types.NewGenreSet()}

	var username string
	err := s.db.QueryRowContext(ctx, `SELECT username FROM users WHERE id = ?`, userID).Scan(&username)
	if err == nil {
		prefs.Username = username
	}

	rows, err := s.db.QueryContext(ctx, `SELECT genre FROM user_genres WHERE user_id = ?`, userID)
	if err != nil {
		return prefs, fmt.Errorf("loading favorite genres: %w", err)
	}
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			rows.Close()
			return prefs, fmt.Errorf("scanning favorite genre: %w", err)
		}
		prefs.FavoriteGenres.Add(types.Genre(g))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return prefs, fmt.Errorf("loading favorite genres: %w", err)
	}

	history, err := s.History(ctx, userID, historyLimit)
	if err != nil {
		return prefs, err
	}
	prefs.History = history
	return prefs, nil
}

// SetFavoriteGenres replaces the user's favorite genre set. History is untouched.
func (s *Store) SetFavoriteGenres(ctx context.Context, userID int64, genres types.GenreSet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (id, created_at) VALUES (?, ?)`, userID, s.timestamp(),
	); err != nil {
		return fmt.Errorf("registering user %d: %w", userID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM user_genres WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clearing favorite genres: %w", err)
	}
	for _, g := range genres.Sorted() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_genres (user_id, genre) VALUES (?, ?)`, userID, string(g),
		); err != nil {
			return fmt.Errorf("saving favorite genre %s: %w", g, err)
		}
	}
	return tx.Commit()
}

// AppendHistory records q as the user's latest query.
func (s *Store) AppendHistory(ctx context.Context, userID int64, q types.Query) error {
	genres, err := json.Marshal(q.Genres.Sorted())
	if err != nil {
		return fmt.Errorf("encoding genres: %w", err)
	}
	keywords := q.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	kw, err := json.Marshal(keywords)
	if err != nil {
		return fmt.Errorf("encoding keywords: %w", err)
	}

	created := s.timestamp()
	if !q.CreatedAt.IsZero() {
		created = q.CreatedAt.UTC().Format(timeLayout)
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (id, created_at) VALUES (?, ?)`, userID, s.timestamp(),
	); err != nil {
		return fmt.Errorf("registering user %d: %w", userID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO query_history (user_id, raw_text, genres, keywords, reference_title, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, q.RawText, string(genres), string(kw), q.ReferenceTitle, created,
	)
	if err != nil {
		return fmt.Errorf("appending history: %w", err)
	}
	return nil
}

// History returns the user's last limit queries, oldest first. limit <= 0
// returns the whole history.
func (s *Store) History(ctx context.Context, userID int64, limit int) ([]types.Query, error) {
	query := `SELECT raw_text, genres, keywords, reference_title, created_at
		FROM query_history WHERE user_id = ? ORDER BY id DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	defer rows.Close()

	var out []types.Query
	for rows.Next() {
		var (
			q                types.Query
			genres, keywords string
			created          string
		)
		if err := rows.Scan(&q.RawText, &genres, &keywords, &q.ReferenceTitle, &created); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		var gs []types.Genre
		if err := json.Unmarshal([]byte(genres), &gs); err != nil {
			return nil, fmt.Errorf("decoding history genres: %w", err)
		}
		q.Genres = types.NewGenreSet(gs...)
		if err := json.Unmarshal([]byte(keywords), &q.Keywords); err != nil {
			return nil, fmt.Errorf("decoding history keywords: %w", err)
		}
		q.CreatedAt = parseTimestamp(created)
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	// Newest first from SQL; callers expect chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// AddFeedback stores a free-text note from a user.
func (s *Store) AddFeedback(ctx context.Context, fb types.Feedback) error {
	text := strings.TrimSpace(fb.Text)
	if text == "" {
		return fmt.Errorf("feedback text is empty")
	}
	created := s.timestamp()
	if !fb.CreatedAt.IsZero() {
		created = fb.CreatedAt.UTC().Format(timeLayout)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback (user_id, text, created_at) VALUES (?, ?, ?)`,
		fb.UserID, text, created,
	)
	if err != nil {
		return fmt.Errorf("saving feedback: %w", err)
	}
	return nil
}
