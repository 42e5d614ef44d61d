// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session dispatches chat messages to commands and runs the
// free-text recommendation pipeline: validate, parse, match, explain.
// It is transport independent; the Telegram adapter and the local chat
// command both feed it Messages.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pdiddy/movie-assistant/internal/llm"
	"github.com/pdiddy/movie-assistant/internal/logging"
	"github.com/pdiddy/movie-assistant/internal/match"
	"github.com/pdiddy/movie-assistant/pkg/types"
)

// DefaultLimit is the number of candidates shown per reply.
const DefaultLimit = 5

// HistoryLimit is how many past queries the history command shows.
const HistoryLimit = 10

// Highly rated movies are passed to the language model as examples of the
// user's taste.
const (
	FavoriteRatingMin = 8
	MaxFavoriteMovies = 3
)

// Turn outcomes reported to the TurnObserver.
const (
	OutcomeOK        = "ok"
	OutcomeNoResults = "no_results"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
	OutcomeUnknown   = "unknown"
)

// Message is one incoming chat message. Command is empty for free text.
type Message struct {
	UserID   int64
	Username string
	// Command is the command name with or without the leading slash.
	Command string
	// Args is the text after the command.
	Args string
	// Text is the full message text.
	Text string
}

// Reply is the text sent back to the user.
type Reply struct {
	Text string
}

// Store holds per-user state.
type Store interface {
	EnsureUser(ctx context.Context, userID int64, username string) error
	Preferences(ctx context.Context, userID int64, historyLimit int) (types.UserPreferences, error)
	SetFavoriteGenres(ctx context.Context, userID int64, genres types.GenreSet) error
	AppendHistory(ctx context.Context, userID int64, q types.Query) error
	AddFeedback(ctx context.Context, fb types.Feedback) error
	SetRating(ctx context.Context, userID, movieID int64, score int) error
	Ratings(ctx context.Context, userID int64) ([]types.Rating, error)
	AddToSaved(ctx context.Context, userID, movieID int64) (bool, error)
	SavedMovies(ctx context.Context, userID int64) ([]types.MovieRecord, error)
}

// Matcher ranks movies.
type Matcher interface {
	Match(ctx context.Context, q types.Query, limit int) ([]types.Candidate, error)
	Popular(ctx context.Context, genres []types.Genre, limit int) ([]types.Candidate, error)
	Resolve(ctx context.Context, title string) (types.MovieRecord, bool, error)
}

// TurnObserver records the outcome and latency of each handled message.
type TurnObserver interface {
	ObserveTurn(command, outcome string, d time.Duration)
}

type handlerFunc func(ctx context.Context, msg Message) (string, string)

// Router maps commands to handlers. It holds no per-turn state and
// handles one message at a time per caller.
type Router struct {
	store     Store
	matcher   Matcher
	explainer llm.Client
	observer  TurnObserver
	limit     int
	commands  map[string]handlerFunc
}

// NewRouter returns a router. explainer may be nil, in which case replies
// carry the formatted candidate list only.
func NewRouter(store Store, matcher Matcher, explainer llm.Client, cfg types.MatchConfig) *Router {
	limit := cfg.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	r := &Router{
		store:     store,
		matcher:   matcher,
		explainer: explainer,
		limit:     limit,
	}
	r.commands = map[string]handlerFunc{
		"start":           r.handleStart,
		"help":            r.handleHelp,
		"set-preferences": r.handleSetPreferences,
		"popular":         r.handlePopular,
		"similar":         r.handleSimilar,
		"history":         r.handleHistory,
		"feedback":        r.handleFeedback,
		"rate":            r.handleRate,
		"save":            r.handleSave,
		"saved":           r.handleSaved,
		"details":         r.handleDetails,
	}
	return r
}

// WithObserver sets the turn observer and returns r.
func (r *Router) WithObserver(o TurnObserver) *Router {
	r.observer = o
	return r
}

var commandAliases = map[string]string{
	"set_preferences": "set-preferences",
	"setpreferences":  "set-preferences",
	"setprefs":        "set-preferences",
	"prefs":           "set-preferences",
	"watchlist":       "saved",
	"info":            "details",
}

// NormalizeCommand lowercases name and strips the leading slash, any
// "@botname" suffix and known aliases.
func NormalizeCommand(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "/")
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	if canonical, ok := commandAliases[name]; ok {
		return canonical
	}
	return name
}

// SplitCommand parses "/cmd args" text into a command and its arguments.
// Text that does not start with a slash yields an empty command.
func SplitCommand(text string) (command, args string) {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "/") {
		return "", t
	}
	command, args, _ = strings.Cut(t, " ")
	return command, strings.TrimSpace(args)
}

// Handle processes one message to completion and returns the reply.
func (r *Router) Handle(ctx context.Context, msg Message) Reply {
	if logging.TurnIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewTurnID(ctx)
	}
	log := logging.Component(ctx, "session")
	start := time.Now()

	if msg.Command == "" && strings.HasPrefix(strings.TrimSpace(msg.Text), "/") {
		msg.Command, msg.Args = SplitCommand(msg.Text)
	}
	command := NormalizeCommand(msg.Command)

	if err := r.store.EnsureUser(ctx, msg.UserID, msg.Username); err != nil {
		log.Warn().Err(err).Int64("user_id", msg.UserID).Msg("registering user")
	}

	var text, outcome string
	if command == "" {
		text, outcome = r.handleText(ctx, msg)
	} else if h, ok := r.commands[command]; ok {
		text, outcome = h(ctx, msg)
	} else {
		text, outcome = unknownCommandText, OutcomeUnknown
	}

	elapsed := time.Since(start)
	log.Info().
		Int64("user_id", msg.UserID).
		Str("command", command).
		Str("outcome", outcome).
		Dur("elapsed", elapsed).
		Msg("turn handled")
	if r.observer != nil {
		r.observer.ObserveTurn(command, outcome, elapsed)
	}
	return Reply{Text: types.TruncateUTF16(text, MaxReplyUnits)}
}

// handleText runs the free-text pipeline.
func (r *Router) handleText(ctx context.Context, msg Message) (string, string) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		text = strings.TrimSpace(msg.Args)
	}
	if err := ValidateQuery(text); err != nil {
		var iq *InvalidQueryError
		if errors.As(err, &iq) {
			return capitalize(iq.Reason), OutcomeInvalid
		}
		return errorText, OutcomeError
	}

	prefs := r.preferences(ctx, msg.UserID)
	q := match.ParseQuery(text, prefs.FavoriteGenres)
	return r.recommend(ctx, msg.UserID, q, prefs)
}

// recommend matches q, records it in history and renders the reply. Movies
// the user has rated are never recommended again.
func (r *Router) recommend(ctx context.Context, userID int64, q types.Query, prefs types.UserPreferences) (string, string) {
	log := logging.Component(ctx, "session")

	rated := r.ratings(ctx, userID)
	for _, rt := range rated {
		q.ExcludeIDs = append(q.ExcludeIDs, rt.Movie.ID)
	}

	cs, err := r.matcher.Match(ctx, q, r.limit)
	if err == nil && len(cs) == 0 {
		err = types.ErrNoResults
	}

	if herr := r.store.AppendHistory(ctx, userID, q); herr != nil {
		log.Warn().Err(herr).Int64("user_id", userID).Msg("appending history")
	}

	switch {
	case errors.Is(err, types.ErrNoResults):
		return noResultsText, OutcomeNoResults
	case err != nil:
		log.Error().Err(err).Str("query", q.RawText).Msg("matching failed")
		return errorText, OutcomeError
	}
	return r.explain(ctx, q.RawText, cs, prefs, favoriteMovies(rated)), OutcomeOK
}

// explain asks the language model to describe cs. On failure the plain
// candidate list is returned instead.
func (r *Router) explain(ctx context.Context, query string, cs []types.Candidate, prefs types.UserPreferences, favorites []types.Rating) string {
	list := FormatCandidates(cs)
	if r.explainer == nil {
		return recommendationsHeader + list
	}
	out, err := r.explainer.Explain(ctx, llm.ExplainRequest{
		Query:          query,
		Candidates:     cs,
		FavoriteGenres: prefs.FavoriteGenres.Sorted(),
		FavoriteMovies: favorites,
	})
	if err != nil {
		logging.Component(ctx, "session").Warn().
			Err(err).
			Str("provider", r.explainer.Name()).
			Msg("explanation failed, sending plain list")
		return recommendationsHeader + list
	}
	return recommendationsHeader + strings.TrimSpace(out)
}

// preferences loads the user's favorites. A store failure yields empty
// preferences so the turn can still be answered.
func (r *Router) preferences(ctx context.Context, userID int64) types.UserPreferences {
	prefs, err := r.store.Preferences(ctx, userID, HistoryLimit)
	if err != nil {
		logging.Component(ctx, "session").Warn().Err(err).Int64("user_id", userID).Msg("loading preferences")
		return types.UserPreferences{UserID: userID, FavoriteGenres: types.NewGenreSet()}
	}
	if prefs.FavoriteGenres == nil {
		prefs.FavoriteGenres = types.NewGenreSet()
	}
	return prefs
}

// ratings loads the user's rated movies. A store failure yields none.
func (r *Router) ratings(ctx context.Context, userID int64) []types.Rating {
	rs, err := r.store.Ratings(ctx, userID)
	if err != nil {
		logging.Component(ctx, "session").Warn().Err(err).Int64("user_id", userID).Msg("loading ratings")
		return nil
	}
	return rs
}

// favoriteMovies picks up to MaxFavoriteMovies ratings of at least
// FavoriteRatingMin. rs is ordered best first.
func favoriteMovies(rs []types.Rating) []types.Rating {
	var out []types.Rating
	for _, rt := range rs {
		if len(out) == MaxFavoriteMovies {
			break
		}
		if rt.Score >= FavoriteRatingMin {
			out = append(out, rt)
		}
	}
	return out
}

func capitalize(s string) string {
	for i, r := range s {
		return strings.ToUpper(string(r)) + s[i+len(string(r)):]
	}
	return s
}
