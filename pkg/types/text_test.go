// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"короткий", 20, "короткий"},
		{"длинное описание фильма", 9, "длинное…"},
		{"abc", 1, "…"},
		{"abc", 0, ""},
		{"", 5, ""},
	}
	for _, tt := range tests {
		got := Truncate(tt.in, tt.n)
		assert.Equal(t, tt.want, got)
		assert.LessOrEqual(t, utf8.RuneCountInString(got), max(tt.n, 0))
	}
}

func TestSortCandidates(t *testing.T) {
	cs := []Candidate{
		{Movie: MovieRecord{ID: 3, Popularity: 10}, Score: 0.5},
		{Movie: MovieRecord{ID: 2, Popularity: 50}, Score: 0.5},
		{Movie: MovieRecord{ID: 1, Popularity: 50}, Score: 0.5},
		{Movie: MovieRecord{ID: 4, Popularity: 1}, Score: 0.9},
	}
	SortCandidates(cs)

	var got []int64
	for _, c := range cs {
		got = append(got, c.Movie.ID)
	}
	assert.Equal(t, []int64{4, 1, 2, 3}, got)
}

func TestGenreSet(t *testing.T) {
	s := NewGenreSet(GenreDrama, "", GenreComedy, GenreDrama)
	assert.Len(t, s, 2)
	assert.True(t, s.Has(GenreComedy))
	assert.Equal(t, []Genre{GenreComedy, GenreDrama}, s.Sorted())
	assert.Equal(t, "комедия", GenreComedy.Label())
	assert.Equal(t, "cartoon", Genre("cartoon").Label())
	assert.False(t, Genre("cartoon").Valid())
}

func TestErrorMessages(t *testing.T) {
	ce := &ConfigurationError{Key: "telegram_token", Env: "TELEGRAM_TOKEN", Reason: "is required"}
	assert.Equal(t, "configuration: telegram_token (TELEGRAM_TOKEN) is required", ce.Error())

	rse := &RemoteServiceError{Service: "tmdb", Op: "search/movie", StatusCode: 503}
	assert.Equal(t, "tmdb search/movie: HTTP 503", rse.Error())
	assert.True(t, IsRemoteServiceError(rse))
}

func TestStem(t *testing.T) {
	assert.Equal(t, "матри", Stem("Матрицу"))
	assert.Equal(t, "елка", Stem("Ёлка"))
	assert.Equal(t, "", Stem(""))
}

func TestTruncateUTF16(t *testing.T) {
	assert.Equal(t, "🎬🎬", TruncateUTF16("🎬🎬", 4))
	assert.Equal(t, "🎬…", TruncateUTF16("🎬🎬", 3))
	assert.Equal(t, "…", TruncateUTF16("🎬🎬", 2))
	assert.Equal(t, "ab…", TruncateUTF16("abcdef", 3))
	assert.Equal(t, "", TruncateUTF16("abc", 0))

	long := strings.Repeat("🍿 фильм ", 1000)
	got := TruncateUTF16(long, 4096)
	assert.LessOrEqual(t, UTF16Len(got), 4096)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestUTF16Len(t *testing.T) {
	assert.Equal(t, 0, UTF16Len(""))
	assert.Equal(t, 3, UTF16Len("абв"))
	assert.Equal(t, 2, UTF16Len("🎬"))
}
