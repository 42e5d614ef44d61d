// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Query is one parsed user request. It is created per turn and appended to
// the user's history once the turn completes.
type Query struct {
	// RawText is the message exactly as the user sent it.
	RawText string `json:"raw_text" yaml:"raw_text"`

	// Genres are the genre hints found in the text.
	Genres GenreSet `json:"-" yaml:"-"`

	// Keywords are stemmed content words left after removing stop words and genre hints.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// Terms are the same content words unstemmed, used for catalog searches.
	Terms []string `json:"terms,omitempty" yaml:"terms,omitempty"`

	// ReferenceTitle is set when the user asks for something like a given movie.
	ReferenceTitle string `json:"reference_title,omitempty" yaml:"reference_title,omitempty"`

	// PreferredGenres are the user's favorite genres. They only shape ranking
	// and never qualify a movie on their own.
	PreferredGenres GenreSet `json:"-" yaml:"-"`

	// ExcludeIDs are movies never to recommend, such as those the user has rated.
	ExcludeIDs []int64 `json:"-" yaml:"-"`

	// CreatedAt is when the query was received.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// IsEmpty reports whether the query carries nothing to match on.
func (q Query) IsEmpty() bool {
	return len(q.Genres) == 0 && len(q.Keywords) == 0 && q.ReferenceTitle == ""
}

// UserPreferences is the per-user state owned by the session layer.
type UserPreferences struct {
	UserID         int64    `json:"user_id"`
	Username       string   `json:"username,omitempty"`
	FavoriteGenres GenreSet `json:"-"`
	History        []Query  `json:"history"`
}

// Feedback is a free-text note a user left for the maintainers.
type Feedback struct {
	UserID    int64     `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// MaxRating is the top of the 0 to 10 scale users rate movies on.
const MaxRating = 10

// Rating is a user's score for one movie. A user has at most one rating
// per movie; rating again replaces it.
type Rating struct {
	UserID    int64       `json:"user_id"`
	Movie     MovieRecord `json:"movie"`
	Score     int         `json:"score" validate:"gte=0,lte=10"`
	CreatedAt time.Time   `json:"created_at"`
}
