// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/movie-assistant/pkg/types"
)

const seedYAML = `movies:
  - id: 1
    title: Маска
    genres: [comedy, fantasy]
    description: Скромный клерк находит древнюю маску.
    release_year: 1994
    popularity: 40
  - id: 2
    title: Тупой и ещё тупее
    genres: [comedy]
    release_year: 1994
    popularity: 60
  - id: 3
    title: Зеленая миля
    genres: [drama]
    popularity: 90
  - id: 0
    title: без id
`

// execute runs the CLI with args, an isolated secrets directory and no
// inherited credentials, returning what was written to stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--secrets-dir", t.TempDir(), "--log-level", "error"}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func clearEnv(t *testing.T) {
	for _, k := range []string{"TELEGRAM_TOKEN", "OPENROUTER_API_KEY", "LLM_API_KEY", "TMDB_API_KEY", "DATABASE_PATH"} {
		t.Setenv(k, "")
	}
}

func TestRunFailsBeforeNetworkWithoutToken(t *testing.T) {
	clearEnv(t)
	db := filepath.Join(t.TempDir(), "bot.db")
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("TMDB_API_KEY", "tmdb-key")
	t.Setenv("DATABASE_PATH", db)

	_, err := execute(t, "", "run")

	var ce *types.ConfigurationError
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Equal(t, "TELEGRAM_TOKEN", ce.Env)
	assert.NoFileExists(t, db, "the store is not opened when configuration fails")
}

func TestAskFailsWithoutCatalogKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "bot.db"))

	_, err := execute(t, "", "ask", "комедия")

	var ce *types.ConfigurationError
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Equal(t, "TMDB_API_KEY", ce.Env)
}

func TestSeedExportAndAsk(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "movies.db"))

	seedFile := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seedFile, []byte(seedYAML), 0o644))

	out, err := execute(t, "", "seed", seedFile)
	require.NoError(t, err)
	assert.Equal(t, "Seeded 3 movies (0 already stored, 1 invalid)\n", out)

	out, err = execute(t, seedYAML, "seed", "-")
	require.NoError(t, err)
	assert.Equal(t, "Seeded 0 movies (3 already stored, 1 invalid)\n", out)

	out, err = execute(t, "", "export", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "title: Маска")
	assert.Contains(t, out, "title: Зеленая миля")

	var catalogCalls atomic.Int32
	tmdb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		catalogCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"page":1,"results":[]}`))
	}))
	defer tmdb.Close()

	llmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"gen-1","object":"chat.completion","created":1,"model":"m",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Начните с «Тупой и ещё тупее»."}}]}`))
	}))
	defer llmServer.Close()

	t.Setenv("TMDB_API_KEY", "tmdb-key")
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("MOVIE_ASSISTANT_CATALOG_BASE_URL", tmdb.URL)
	t.Setenv("MOVIE_ASSISTANT_LLM_BASE_URL", llmServer.URL)

	out, err = execute(t, "", "ask", "хочу", "комедию")
	require.NoError(t, err)
	assert.Contains(t, out, "Начните с «Тупой и ещё тупее».")
	assert.Zero(t, catalogCalls.Load(), "local comedies satisfy the request")

	out, err = execute(t, "/history\nexit\n/help\n", "chat")
	require.NoError(t, err)
	assert.Contains(t, out, "1. хочу комедию")
	assert.NotContains(t, out, "/set_preferences <жанры>", "input after exit is not read")
}

func TestFetchRejectsBadID(t *testing.T) {
	_, err := execute(t, "", "fetch", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid TMDB id "abc"`)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "movie-assistant dev\n", out)
}
