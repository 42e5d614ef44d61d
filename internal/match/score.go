// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"strings"

	"github.com/pdiddy/movie-assistant/pkg/types"
)

// Scoring weights. When a query carries only one of the genre and keyword
// signals, that signal alone makes up the base score. The preferred-genre
// bonus is added on top of a non-zero base and never qualifies a movie by
// itself.
const (
	GenreWeight     = 0.6
	KeywordWeight   = 0.4
	PreferredWeight = 0.1

	// DefaultMinScore drops weak candidates.
	DefaultMinScore = 0.25
)

// signals is the scoring view of a query.
type signals struct {
	genres    types.GenreSet
	stems     []string
	preferred types.GenreSet
}

func (s signals) empty() bool {
	return len(s.genres) == 0 && len(s.stems) == 0
}

// score rates m against s in [0, 1+PreferredWeight].
func score(s signals, m types.MovieRecord) float64 {
	var base float64
	hasGenres, hasStems := len(s.genres) > 0, len(s.stems) > 0
	switch {
	case hasGenres && hasStems:
		base = GenreWeight*genreOverlap(s.genres, m) + KeywordWeight*keywordFraction(s.stems, m)
	case hasGenres:
		base = genreOverlap(s.genres, m)
	case hasStems:
		base = keywordFraction(s.stems, m)
	}
	if base == 0 {
		return 0
	}
	if len(s.preferred) > 0 {
		base += PreferredWeight * genreOverlap(s.preferred, m)
	}
	return base
}

// genreOverlap is |want ∩ movie genres| / |want|.
func genreOverlap(want types.GenreSet, m types.MovieRecord) float64 {
	if len(want) == 0 {
		return 0
	}
	n := 0
	for _, g := range m.Genres {
		if want.Has(g) {
			n++
		}
	}
	return float64(n) / float64(len(want))
}

// keywordFraction is the share of stems found in the movie's search text.
func keywordFraction(stems []string, m types.MovieRecord) float64 {
	if len(stems) == 0 {
		return 0
	}
	text := m.SearchText()
	n := 0
	for _, st := range stems {
		if strings.Contains(text, st) {
			n++
		}
	}
	return float64(n) / float64(len(stems))
}

// rankScore scores results the catalog returned for a query with no signal
// of its own: catalog order, from 1 down toward 0.5.
func rankScore(i, n int) float64 {
	if n <= 1 {
		return 1
	}
	return 1 - 0.5*float64(i)/float64(n)
}

// finalize sorts candidates, keeps the first occurrence of each id and
// truncates to limit.
func finalize(cs []types.Candidate, limit int) []types.Candidate {
	types.SortCandidates(cs)
	seen := make(map[int64]struct{}, len(cs))
	out := make([]types.Candidate, 0, min(len(cs), limit))
	for _, c := range cs {
		if len(out) == limit {
			break
		}
		if _, dup := seen[c.Movie.ID]; dup {
			continue
		}
		seen[c.Movie.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}
