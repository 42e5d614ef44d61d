// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"fmt"
	"strings"

	"github.com/pdiddy/movie-assistant/pkg/types"
)

const (
	// MaxReplyUnits is the Telegram message length limit in UTF-16 code units.
	MaxReplyUnits = 4096
	// MaxDescriptionRunes bounds each description in a candidate list.
	MaxDescriptionRunes = 300
)

// FormatCandidates renders a numbered list with year, genres, rating and a
// shortened description for each candidate.
func FormatCandidates(cs []types.Candidate) string {
	var b strings.Builder
	for i, c := range cs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(formatMovie(i+1, c.Movie))
	}
	return b.String()
}

func formatMovie(n int, m types.MovieRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s", n, m.Title)
	if m.ReleaseYear > 0 {
		fmt.Fprintf(&b, " (%d)", m.ReleaseYear)
	}
	if m.VoteAverage > 0 {
		fmt.Fprintf(&b, " ⭐ %.1f", m.VoteAverage)
	}
	if len(m.Genres) > 0 {
		b.WriteString("\n🎭 ")
		b.WriteString(genreList(m.Genres))
	}
	if d := strings.TrimSpace(m.Description); d != "" {
		b.WriteString("\n")
		b.WriteString(types.Truncate(d, MaxDescriptionRunes))
	}
	return b.String()
}

func formatHistory(qs []types.Query) string {
	var b strings.Builder
	b.WriteString("Ваши последние запросы:\n")
	for i, q := range qs {
		fmt.Fprintf(&b, "\n%d. %s", i+1, q.RawText)
		if !q.CreatedAt.IsZero() {
			fmt.Fprintf(&b, " (%s)", q.CreatedAt.Local().Format("02.01 15:04"))
		}
	}
	return b.String()
}

func genreList(gs []types.Genre) string {
	labels := make([]string, len(gs))
	for i, g := range gs {
		labels[i] = g.Label()
	}
	return strings.Join(labels, ", ")
}

func allGenreLabels() string {
	return genreList(types.AllGenres)
}

// formatMovies renders a numbered list of movies.
func formatMovies(ms []types.MovieRecord) string {
	var b strings.Builder
	for i, m := range ms {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(formatMovie(i+1, m))
	}
	return b.String()
}

// formatDetails renders one movie card. own is the user's score, or
// negative when the user has not rated the movie.
func formatDetails(m types.MovieRecord, own int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎬 %s", m.Title)
	if m.ReleaseYear > 0 {
		fmt.Fprintf(&b, " (%d)", m.ReleaseYear)
	}
	if m.OriginalTitle != "" && m.OriginalTitle != m.Title {
		fmt.Fprintf(&b, "\n%s", m.OriginalTitle)
	}
	if len(m.Genres) > 0 {
		fmt.Fprintf(&b, "\n🎭 %s", genreList(m.Genres))
	}
	if m.VoteAverage > 0 {
		fmt.Fprintf(&b, "\n⭐ Рейтинг: %.1f", m.VoteAverage)
	}
	if own >= 0 {
		fmt.Fprintf(&b, "\n👤 Ваша оценка: %d/%d", own, types.MaxRating)
	}
	if d := strings.TrimSpace(m.Description); d != "" {
		b.WriteString("\n\n")
		b.WriteString(d)
	}
	b.WriteString("\n\nОценить: /rate " + m.Title + " <0-10>\nОтложить: /save " + m.Title)
	return b.String()
}
