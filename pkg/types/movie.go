// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the movie assistant:
// movie records, parsed queries, scored candidates, user preferences,
// configuration and the error taxonomy shared across packages.
package types

import (
	"sort"
	"strings"
)

// MovieSource identifies where a MovieRecord was loaded from.
type MovieSource string

const (
	SourceLocal MovieSource = "local"
	SourceTMDB  MovieSource = "tmdb"
)

// MovieRecord holds the metadata of one movie. Records are immutable once
// loaded: the store never overwrites an existing id.
type MovieRecord struct {
	// ID is the catalog identifier (TMDB id for catalog and seeded records).
	ID int64 `json:"id" yaml:"id" validate:"gt=0"`

	// Title is the localized title.
	Title string `json:"title" yaml:"title" validate:"required"`

	// OriginalTitle is the title in the original language, if known.
	OriginalTitle string `json:"original_title,omitempty" yaml:"original_title,omitempty"`

	// Genres holds canonical genre slugs (see Genre).
	Genres []Genre `json:"genres" yaml:"genres"`

	// Description is the plot overview.
	Description string `json:"description" yaml:"description"`

	// ReleaseYear is the year of first release, 0 if unknown.
	ReleaseYear int `json:"release_year" yaml:"release_year" validate:"gte=0"`

	// Popularity is the catalog popularity value used as a tie breaker.
	Popularity float64 `json:"popularity" yaml:"popularity" validate:"gte=0"`

	// VoteAverage is the average user rating on a 0-10 scale.
	VoteAverage float64 `json:"vote_average,omitempty" yaml:"vote_average,omitempty" validate:"gte=0,lte=10"`

	// Source records whether the movie was seeded locally or fetched from the catalog.
	Source MovieSource `json:"source,omitempty" yaml:"source,omitempty"`
}

// HasGenre reports whether the movie is tagged with g.
func (m MovieRecord) HasGenre(g Genre) bool {
	for _, mg := range m.Genres {
		if mg == g {
			return true
		}
	}
	return false
}

// SearchText returns the text keyword matching runs against: title,
// original title and description, lowercased with "ё" folded to "е".
func (m MovieRecord) SearchText() string {
	return FoldText(strings.Join([]string{m.Title, m.OriginalTitle, m.Description}, " "))
}

// Candidate is a movie scored against one query. Candidates are produced by
// the matcher and never persisted.
type Candidate struct {
	Movie MovieRecord `json:"movie"`
	Score float64     `json:"score"`
}

// SortCandidates orders candidates by descending score, then descending
// popularity, then ascending id so equal inputs always rank the same way.
func SortCandidates(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Movie.Popularity != b.Movie.Popularity {
			return a.Movie.Popularity > b.Movie.Popularity
		}
		return a.Movie.ID < b.Movie.ID
	})
}
