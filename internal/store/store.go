// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists movie metadata and per-user state in a single
// SQLite file. The schema is created on open; there are no migrations.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/movie-assistant/pkg/types"
)

// Store is the SQLite-backed metadata store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path and creates the schema if it
// does not exist. The special path ":memory:" opens a private in-memory
// database.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		dsn = path + "?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and matches the
	// single update loop.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS movies (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			original_title TEXT NOT NULL DEFAULT '',
			title_key TEXT NOT NULL,
			original_title_key TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			release_year INTEGER NOT NULL DEFAULT 0,
			popularity REAL NOT NULL DEFAULT 0,
			vote_average REAL NOT NULL DEFAULT 0,
			source TEXT NOT NULL DEFAULT 'local',
			search_text TEXT NOT NULL DEFAULT '',
			added_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_movies_title_key ON movies(title_key)`,
		`CREATE INDEX IF NOT EXISTS idx_movies_original_title_key ON movies(original_title_key)`,
		`CREATE INDEX IF NOT EXISTS idx_movies_popularity ON movies(popularity DESC)`,
		`CREATE TABLE IF NOT EXISTS movie_genres (
			movie_id INTEGER NOT NULL REFERENCES movies(id),
			genre TEXT NOT NULL,
			PRIMARY KEY (movie_id, genre)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_movie_genres_genre ON movie_genres(genre)`,
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			username TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_genres (
			user_id INTEGER NOT NULL REFERENCES users(id),
			genre TEXT NOT NULL,
			PRIMARY KEY (user_id, genre)
		)`,
		`CREATE TABLE IF NOT EXISTS query_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id),
			raw_text TEXT NOT NULL,
			genres TEXT NOT NULL DEFAULT '[]',
			keywords TEXT NOT NULL DEFAULT '[]',
			reference_title TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_query_history_user ON query_history(user_id, id)`,
		`CREATE TABLE IF NOT EXISTS feedback (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			text TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ratings (
			user_id INTEGER NOT NULL REFERENCES users(id),
			movie_id INTEGER NOT NULL REFERENCES movies(id),
			score INTEGER NOT NULL CHECK (score BETWEEN 0 AND 10),
			created_at TEXT NOT NULL,
			PRIMARY KEY (user_id, movie_id)
		)`,
		`CREATE TABLE IF NOT EXISTS saved_movies (
			user_id INTEGER NOT NULL REFERENCES users(id),
			movie_id INTEGER NOT NULL REFERENCES movies(id),
			created_at TEXT NOT NULL,
			PRIMARY KEY (user_id, movie_id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// TitleKey normalizes a title for exact lookups: lowercase, "ё" folded to
// "е", surrounding quotes and punctuation trimmed, whitespace collapsed.
func TitleKey(title string) string {
	t := strings.Trim(types.FoldText(title), " \t\n«»\"'“”„.,!?:;")
	return strings.Join(strings.Fields(t), " ")
}

const timeLayout = time.RFC3339Nano

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

func parseTimestamp(v string) time.Time {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

// placeholders returns "?, ?, ..." with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

// escapeLike escapes the LIKE wildcards in v for use with ESCAPE '\'.
func escapeLike(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(v)
}
