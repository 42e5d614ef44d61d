// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/movie-assistant/pkg/types"
)

func TestFormatCandidates(t *testing.T) {
	long := strings.Repeat("сюжет ", 100)
	out := FormatCandidates([]types.Candidate{
		{Movie: types.MovieRecord{ID: 1, Title: "Сталкер", ReleaseYear: 1979, VoteAverage: 8.1,
			Genres: []types.Genre{types.GenreDrama, types.GenreScienceFiction}, Description: long}},
		{Movie: types.MovieRecord{ID: 2, Title: "Без года"}},
	})

	parts := strings.Split(out, "\n\n")
	assert.Len(t, parts, 2)

	lines := strings.Split(parts[0], "\n")
	assert.Equal(t, "1. Сталкер (1979) ⭐ 8.1", lines[0])
	assert.Equal(t, "🎭 драма, фантастика", lines[1])
	assert.LessOrEqual(t, utf8.RuneCountInString(lines[2]), MaxDescriptionRunes)
	assert.True(t, strings.HasSuffix(lines[2], "…"))

	assert.Equal(t, "2. Без года", parts[1])
}

func TestFormatCandidatesEmpty(t *testing.T) {
	assert.Empty(t, FormatCandidates(nil))
}

func TestFormatHistory(t *testing.T) {
	out := formatHistory([]types.Query{
		{RawText: "комедия"},
		{RawText: "похожее на «Матрица»", CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)},
	})
	assert.Contains(t, out, "\n1. комедия\n")
	assert.Contains(t, out, "2. похожее на «Матрица» (01.03 12:00)")
}
