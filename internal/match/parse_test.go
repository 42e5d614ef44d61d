// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/movie-assistant/pkg/types"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		genres    []types.Genre
		keywords  []string
		terms     []string
		reference string
	}{
		{
			name:   "single genre",
			text:   "комедия",
			genres: []types.Genre{types.GenreComedy},
		},
		{
			name:   "longest alias wins",
			text:   "хочу мелодраму про любовь",
			genres: []types.Genre{types.GenreRomance},
		},
		{
			name:     "keywords are stemmed",
			text:     "Фильм про космос и путешествия во времени",
			keywords: []string{"космо", "путеш", "време"},
			terms:    []string{"космос", "путешествия", "времени"},
		},
		{
			name:      "similar marker",
			text:      "что-то похожее на Интерстеллар",
			reference: "Интерстеллар",
		},
		{
			name:      "quoted title wins over marker",
			text:      "посоветуй что-нибудь вроде «Амели», но смешнее",
			genres:    []types.Genre{types.GenreComedy},
			reference: "Амели",
		},
		{
			name:      "english marker",
			text:      "movies like The Matrix",
			reference: "The Matrix",
		},
		{
			name:   "hyphenated genre",
			text:   "sci-fi thriller",
			genres: []types.Genre{types.GenreScienceFiction, types.GenreThriller},
		},
		{
			name:   "like is not a marker on its own",
			text:   "I like comedies",
			genres: []types.Genre{types.GenreComedy},
		},
		{
			name:     "digits and short words skipped",
			text:     "ужасы 2049 в лесу",
			genres:   []types.Genre{types.GenreHorror},
			keywords: []string{"лесу"},
			terms:    []string{"лесу"},
		},
		{
			name:   "marker followed by a genre",
			text:   "что-нибудь вроде комедии",
			genres: []types.Genre{types.GenreComedy},
		},
		{
			name:   "tipa is a filler word",
			text:   "хочу что-то типа ужастика",
			genres: []types.Genre{types.GenreHorror},
		},
		{
			name:      "marker followed by a title with a genre word",
			text:      "что-то похожее на Ужас Амитивилля",
			reference: "Ужас Амитивилля",
		},
		{
			name:     "war is a whole word",
			text:     "something warm and cozy",
			keywords: []string{"warm", "cozy"},
			terms:    []string{"warm", "cozy"},
		},
		{
			name:   "english war genre",
			text:   "war movies",
			genres: []types.Genre{types.GenreWar},
		},
		{
			name:     "multiverse is not animation",
			text:     "фильм про мультивселенную",
			keywords: []string{"мульт"},
			terms:    []string{"мультивселенную"},
		},
		{
			name:   "cartoon aliases",
			text:   "мультики и мультфильмы",
			genres: []types.Genre{types.GenreAnimation},
		},
		{
			name:     "duplicate stems collapse",
			text:     "пираты пиратский",
			keywords: []string{"пират"},
			terms:    []string{"пираты"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := ParseQuery(tt.text, nil)
			assert.Equal(t, tt.text, q.RawText)
			assert.Equal(t, types.NewGenreSet(tt.genres...), q.Genres)
			assert.Equal(t, tt.keywords, q.Keywords)
			assert.Equal(t, tt.terms, q.Terms)
			assert.Equal(t, tt.reference, q.ReferenceTitle)
			assert.False(t, q.CreatedAt.IsZero())
		})
	}
}

func TestParseQueryCopiesPreferred(t *testing.T) {
	pref := types.NewGenreSet(types.GenreDrama)
	q := ParseQuery("комедия", pref)
	q.PreferredGenres.Add(types.GenreWar)
	assert.Len(t, pref, 1, "caller's set is not shared")
	assert.True(t, q.PreferredGenres.Has(types.GenreDrama))
}

func TestParseGenres(t *testing.T) {
	genres, unknown := ParseGenres("Комедия, ужасы, аниме и blah")
	assert.Equal(t, types.NewGenreSet(types.GenreComedy, types.GenreHorror, types.GenreAnimation), genres)
	assert.Equal(t, []string{"blah"}, unknown)

	genres, unknown = ParseGenres("")
	assert.Empty(t, genres)
	assert.Empty(t, unknown)
}

func TestStem(t *testing.T) {
	assert.Equal(t, "путеш", Stem("Путешествие"))
	assert.Equal(t, "елка", Stem("Ёлка"))
	assert.Equal(t, "дом", Stem("дом"))
}
