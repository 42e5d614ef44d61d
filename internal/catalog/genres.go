// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/movie-assistant/pkg/types"
)

// tmdbGenres maps TMDB movie genre ids to canonical slugs.
var tmdbGenres = map[int]types.Genre{
	28:    types.GenreAction,
	12:    types.GenreAdventure,
	16:    types.GenreAnimation,
	35:    types.GenreComedy,
	80:    types.GenreCrime,
	99:    types.GenreDocumentary,
	18:    types.GenreDrama,
	10751: types.GenreFamily,
	14:    types.GenreFantasy,
	36:    types.GenreHistory,
	27:    types.GenreHorror,
	10402: types.GenreMusic,
	9648:  types.GenreMystery,
	10749: types.GenreRomance,
	878:   types.GenreScienceFiction,
	10770: types.GenreTVMovie,
	53:    types.GenreThriller,
	10752: types.GenreWar,
	37:    types.GenreWestern,
}

var genreIDs = func() map[types.Genre]int {
	m := make(map[types.Genre]int, len(tmdbGenres))
	for id, g := range tmdbGenres {
		m[g] = id
	}
	return m
}()

// GenreFromID returns the slug for a TMDB genre id.
func GenreFromID(id int) (types.Genre, bool) {
	g, ok := tmdbGenres[id]
	return g, ok
}

// GenreID returns the TMDB id for a slug.
func GenreID(g types.Genre) (int, bool) {
	id, ok := genreIDs[g]
	return id, ok
}

// genresFromIDs converts ids to sorted unique slugs, skipping unknown ids.
func genresFromIDs(ids []int) []types.Genre {
	set := types.NewGenreSet()
	for _, id := range ids {
		if g, ok := tmdbGenres[id]; ok {
			set.Add(g)
		}
	}
	return set.Sorted()
}

// withGenres encodes genres for the discover endpoint. "|" asks TMDB for
// movies carrying any of the ids.
func withGenres(genres []types.Genre) string {
	var ids []int
	for _, g := range genres {
		if id, ok := genreIDs[g]; ok {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, "|")
}
