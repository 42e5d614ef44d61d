// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/movie-assistant/pkg/types"
)

// --- test helpers ---

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "movies.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleMovies() []types.MovieRecord {
	return []types.MovieRecord{
		{ID: 1, Title: "Маска", OriginalTitle: "The Mask", Genres: []types.Genre{types.GenreComedy, types.GenreFantasy}, Description: "Скромный клерк находит древнюю маску.", ReleaseYear: 1994, Popularity: 40},
		{ID: 2, Title: "Один дома", OriginalTitle: "Home Alone", Genres: []types.Genre{types.GenreComedy, types.GenreFamily}, Description: "Мальчик остаётся один и защищает дом от грабителей.", ReleaseYear: 1990, Popularity: 80},
		{ID: 3, Title: "Зелёная миля", OriginalTitle: "The Green Mile", Genres: []types.Genre{types.GenreDrama, types.GenreCrime}, Description: "Надзиратель тюрьмы и необычный заключённый.", ReleaseYear: 1999, Popularity: 90},
		{ID: 4, Title: "Интерстеллар", OriginalTitle: "Interstellar", Genres: []types.Genre{types.GenreScienceFiction, types.GenreDrama}, Description: "Путешествие через червоточину в поисках нового дома.", ReleaseYear: 2014, Popularity: 120},
	}
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	n, err := s.SaveMovies(context.Background(), sampleMovies())
	require.NoError(t, err)
	require.Equal(t, 4, n)
}

func ids(ms []types.MovieRecord) []int64 {
	out := make([]int64, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}

// --- movies ---

func TestOpenCreatesSchemaIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.CountMovies(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSaveMovieNeverOverwrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	added, err := s.SaveMovie(ctx, types.MovieRecord{ID: 7, Title: "Первое", Genres: []types.Genre{types.GenreDrama}, Popularity: 1})
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.SaveMovie(ctx, types.MovieRecord{ID: 7, Title: "Второе", Genres: []types.Genre{types.GenreComedy}, Popularity: 99})
	require.NoError(t, err)
	assert.False(t, added)

	m, ok, err := s.Movie(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Первое", m.Title)
	assert.Equal(t, []types.Genre{types.GenreDrama}, m.Genres)
	assert.Equal(t, types.SourceLocal, m.Source)
}

func TestSaveMovieRejectsNonPositiveID(t *testing.T) {
	s := openTestStore(t)
	_, err := s.SaveMovie(context.Background(), types.MovieRecord{Title: "Без id"})
	assert.Error(t, err)
}

func TestMovieMissing(t *testing.T) {
	s := openTestStore(t)
	_, ok, err := s.Movie(context.Background(), 404)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindByTitle(t *testing.T) {
	s := openTestStore(t)
	seed(t, s)
	ctx := context.Background()

	tests := []struct {
		name  string
		title string
		want  int64
		found bool
	}{
		{"exact localized", "Маска", 1, true},
		{"case and quotes", "«маска»", 1, true},
		{"original title", "the green mile", 3, true},
		{"yo folded", "Зеленая миля", 3, true},
		{"substring", "один", 2, true},
		{"inflected words", "Зелёную милю", 3, true},
		{"inflected single word", "маску", 1, true},
		{"absent", "Титаник", 0, false},
		{"blank", "  ", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok, err := s.FindByTitle(ctx, tt.title)
			require.NoError(t, err)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, m.ID)
			}
		})
	}
}

func TestFindByTitleInflected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.SaveMovies(ctx, []types.MovieRecord{
		{ID: 603, Title: "Матрица", OriginalTitle: "The Matrix", Genres: []types.Genre{types.GenreScienceFiction}, Popularity: 70},
		{ID: 604, Title: "Матрица: Перезагрузка", OriginalTitle: "The Matrix Reloaded", Genres: []types.Genre{types.GenreScienceFiction}, Popularity: 40},
	})
	require.NoError(t, err)

	m, ok, err := s.FindByTitle(ctx, "Матрицу")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(603), m.ID)

	_, ok, err = s.FindByTitle(ctx, "Матрицу Революцию")
	require.NoError(t, err)
	assert.False(t, ok, "every word must match")
}

func TestTitleStems(t *testing.T) {
	assert.Equal(t, []string{"зелен", "мил"}, titleStems("зеленую милю"))
	assert.Equal(t, []string{"the", "matri"}, titleStems("the matrix"))
	assert.Empty(t, titleStems("и в"))
}

func TestCandidates(t *testing.T) {
	s := openTestStore(t)
	seed(t, s)
	ctx := context.Background()

	got, err := s.Candidates(ctx, []types.Genre{types.GenreComedy}, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, ids(got), "comedies, most popular first")

	got, err = s.Candidates(ctx, nil, []string{"черво"}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, ids(got))

	got, err = s.Candidates(ctx, []types.Genre{types.GenreCrime}, []string{"дома"}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3, 2}, ids(got), "genre or keyword match")

	got, err = s.Candidates(ctx, []types.Genre{types.GenreDrama, types.GenreComedy}, nil, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.Candidates(ctx, nil, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCandidatesStrongestMatchFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var ms []types.MovieRecord
	for i := int64(1); i <= 30; i++ {
		ms = append(ms, types.MovieRecord{ID: i, Title: "Комедия", Genres: []types.Genre{types.GenreComedy}, Popularity: float64(100 + i)})
	}
	ms = append(ms,
		types.MovieRecord{ID: 900, Title: "Собачья жизнь", Description: "Про собаку и её хозяина.", Genres: []types.Genre{types.GenreComedy, types.GenreFamily}, Popularity: 1},
		types.MovieRecord{ID: 901, Title: "Про собаку", Genres: []types.Genre{types.GenreDrama}, Popularity: 2},
	)
	_, err := s.SaveMovies(ctx, ms)
	require.NoError(t, err)

	got, err := s.Candidates(ctx, []types.Genre{types.GenreComedy, types.GenreFamily}, []string{"собак"}, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{900, 30, 29}, ids(got), "three matched clauses beat one, popularity breaks ties")

	got, err = s.Candidates(ctx, []types.Genre{types.GenreComedy}, []string{"собак"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{900, 30}, ids(got))
}

func TestCandidatesEscapesWildcards(t *testing.T) {
	s := openTestStore(t)
	seed(t, s)

	got, err := s.Candidates(context.Background(), nil, []string{"%"}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPopular(t *testing.T) {
	s := openTestStore(t)
	seed(t, s)
	ctx := context.Background()

	got, err := s.Popular(ctx, nil, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3}, ids(got))

	got, err = s.Popular(ctx, []types.Genre{types.GenreComedy}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, ids(got))
}

func TestMoviesGenresSorted(t *testing.T) {
	s := openTestStore(t)
	seed(t, s)

	all, err := s.Movies(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []types.Genre{types.GenreCrime, types.GenreDrama}, all[2].Genres)
}

func TestMemoryDatabase(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()
	seed(t, s)

	n, err := s.CountMovies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestTitleKey(t *testing.T) {
	assert.Equal(t, "зеленая миля", TitleKey("  «Зелёная   Миля» "))
	assert.Equal(t, "", TitleKey("\"\""))
}

// --- users ---

func TestPreferencesAndHistory(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.EnsureUser(ctx, 42, "ivan"))
	require.NoError(t, s.EnsureUser(ctx, 42, ""), "empty username keeps the stored one")

	require.NoError(t, s.SetFavoriteGenres(ctx, 42, types.NewGenreSet(types.GenreComedy, types.GenreDrama)))
	require.NoError(t, s.SetFavoriteGenres(ctx, 42, types.NewGenreSet(types.GenreHorror)))

	for i, text := range []string{"комедия", "что-то страшное", "похожее на Интерстеллар"} {
		q := types.Query{
			RawText:   text,
			Genres:    types.NewGenreSet(types.GenreComedy),
			Keywords:  []string{"страш"},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.AppendHistory(ctx, 42, q))
	}

	prefs, err := s.Preferences(ctx, 42, 2)
	require.NoError(t, err)
	assert.Equal(t, "ivan", prefs.Username)
	assert.Equal(t, types.NewGenreSet(types.GenreHorror), prefs.FavoriteGenres, "set replaced, not merged")
	require.Len(t, prefs.History, 2)
	assert.Equal(t, "что-то страшное", prefs.History[0].RawText)
	assert.Equal(t, "похожее на Интерстеллар", prefs.History[1].RawText)
	assert.True(t, prefs.History[1].Genres.Has(types.GenreComedy))
	assert.Equal(t, []string{"страш"}, prefs.History[1].Keywords)
	assert.True(t, base.Add(2*time.Minute).Equal(prefs.History[1].CreatedAt))

	all, err := s.History(ctx, 42, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3, "history is never trimmed by preference changes")
}

func TestPreferencesUnknownUser(t *testing.T) {
	s := openTestStore(t)
	prefs, err := s.Preferences(context.Background(), 9, 10)
	require.NoError(t, err)
	assert.Empty(t, prefs.FavoriteGenres)
	assert.Empty(t, prefs.History)
}

func TestAppendHistoryRegistersUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.AppendHistory(ctx, 5, types.Query{RawText: "боевик"}))

	hist, err := s.History(ctx, 5, 10)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Empty(t, hist[0].Keywords)
	assert.False(t, hist[0].CreatedAt.IsZero())
}

func TestAddFeedback(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddFeedback(ctx, types.Feedback{UserID: 1, Text: "  Отличный бот  "}))
	assert.Error(t, s.AddFeedback(ctx, types.Feedback{UserID: 1, Text: "   "}))

	var text string
	require.NoError(t, s.db.QueryRow(`SELECT text FROM feedback WHERE user_id = 1`).Scan(&text))
	assert.Equal(t, "Отличный бот", text)
}

// --- seed files ---

const seedYAML = `movies:
  - id: 10
    title: Амели
    original_title: Amélie
    genres: [comedy, romance, unknown-genre]
    description: Застенчивая официантка решает изменить жизнь окружающих.
    release_year: 2001
    popularity: 30
  - id: 11
    title: Леон
    genres: [crime, drama, action]
    description: Профессиональный убийца и девочка.
    release_year: 1994
    popularity: 50
  - id: 0
    title: Без идентификатора
  - id: 12
    title: ""
`

func TestImportYAML(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	summary, err := s.ImportYAML(ctx, strings.NewReader(seedYAML))
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Added: 2, Invalid: 2}, summary)
	assert.Equal(t, 4, summary.Total())

	m, ok, err := s.Movie(ctx, 10)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []types.Genre{types.GenreComedy, types.GenreRomance}, m.Genres)
	assert.Equal(t, types.SourceLocal, m.Source)

	summary, err = s.ImportYAML(ctx, strings.NewReader(seedYAML))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Skipped, "re-import skips stored ids")
}

func TestImportYAMLMalformed(t *testing.T) {
	s := openTestStore(t)
	_, err := s.ImportYAML(context.Background(), strings.NewReader("movies: [ {id: "))
	assert.Error(t, err)
}

func TestExportRoundTrip(t *testing.T) {
	src := openTestStore(t)
	seed(t, src)
	ctx := context.Background()

	var buf bytes.Buffer
	n, err := src.ExportYAML(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Contains(t, buf.String(), "title: Интерстеллар")

	dst := openTestStore(t)
	summary, err := dst.ImportYAML(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Added)

	want, err := src.Movies(ctx)
	require.NoError(t, err)
	got, err := dst.Movies(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
