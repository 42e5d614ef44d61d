// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "sort"

// Genre is a canonical, language-independent genre slug.
type Genre string

const (
	GenreAction         Genre = "action"
	GenreAdventure      Genre = "adventure"
	GenreAnimation      Genre = "animation"
	GenreComedy         Genre = "comedy"
	GenreCrime          Genre = "crime"
	GenreDocumentary    Genre = "documentary"
	GenreDrama          Genre = "drama"
	GenreFamily         Genre = "family"
	GenreFantasy        Genre = "fantasy"
	GenreHistory        Genre = "history"
	GenreHorror         Genre = "horror"
	GenreMusic          Genre = "music"
	GenreMystery        Genre = "mystery"
	GenreRomance        Genre = "romance"
	GenreScienceFiction Genre = "science-fiction"
	GenreTVMovie        Genre = "tv-movie"
	GenreThriller       Genre = "thriller"
	GenreWar            Genre = "war"
	GenreWestern        Genre = "western"
)

// AllGenres lists every canonical genre.
var AllGenres = []Genre{
	GenreAction, GenreAdventure, GenreAnimation, GenreComedy, GenreCrime,
	GenreDocumentary, GenreDrama, GenreFamily, GenreFantasy, GenreHistory,
	GenreHorror, GenreMusic, GenreMystery, GenreRomance, GenreScienceFiction,
	GenreTVMovie, GenreThriller, GenreWar, GenreWestern,
}

// genreLabels are the Russian display names used in replies.
var genreLabels = map[Genre]string{
	GenreAction:         "боевик",
	GenreAdventure:      "приключения",
	GenreAnimation:      "мультфильм",
	GenreComedy:         "комедия",
	GenreCrime:          "криминал",
	GenreDocumentary:    "документальный",
	GenreDrama:          "драма",
	GenreFamily:         "семейный",
	GenreFantasy:        "фэнтези",
	GenreHistory:        "история",
	GenreHorror:         "ужасы",
	GenreMusic:          "музыка",
	GenreMystery:        "детектив",
	GenreRomance:        "мелодрама",
	GenreScienceFiction: "фантастика",
	GenreTVMovie:        "телефильм",
	GenreThriller:       "триллер",
	GenreWar:            "военный",
	GenreWestern:        "вестерн",
}

// Label returns the display name of the genre, or the slug if it has none.
func (g Genre) Label() string {
	if l, ok := genreLabels[g]; ok {
		return l
	}
	return string(g)
}

// Valid reports whether g is one of AllGenres.
func (g Genre) Valid() bool {
	_, ok := genreLabels[g]
	return ok
}

// GenreSet is an unordered set of genres.
type GenreSet map[Genre]struct{}

// NewGenreSet builds a set from gs, skipping empty values.
func NewGenreSet(gs ...Genre) GenreSet {
	s := make(GenreSet, len(gs))
	for _, g := range gs {
		if g != "" {
			s[g] = struct{}{}
		}
	}
	return s
}

// Has reports whether g is in the set.
func (s GenreSet) Has(g Genre) bool {
	_, ok := s[g]
	return ok
}

// Add inserts gs into the set.
func (s GenreSet) Add(gs ...Genre) {
	for _, g := range gs {
		if g != "" {
			s[g] = struct{}{}
		}
	}
}

// Sorted returns the set members in lexical order.
func (s GenreSet) Sorted() []Genre {
	out := make([]Genre, 0, len(s))
	for g := range s {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
