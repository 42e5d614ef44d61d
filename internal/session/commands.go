// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/movie-assistant/internal/logging"
	"github.com/pdiddy/movie-assistant/internal/match"
	"github.com/pdiddy/movie-assistant/pkg/types"
)

const (
	startText = "Привет! Я помогу подобрать тебе фильм 🎬\n\n" +
		"Просто опиши, что хочешь посмотреть. Например: «фантастика про космос», " +
		"«комедия на вечер» или «что-нибудь похожее на \"Интерстеллар\"».\n\n" +
		"Список команд: /help"

	helpText = "Команды:\n" +
		"/start — начать\n" +
		"/help — список команд\n" +
		"/set_preferences <жанры> — любимые жанры, например: /set_preferences комедия, ужасы\n" +
		"/popular — популярные фильмы с учетом ваших жанров\n" +
		"/similar <название> — фильмы, похожие на указанный\n" +
		"/history — ваши последние запросы\n" +
		"/rate <название> <0-10> — оценить фильм, например: /rate Интерстеллар 9\n" +
		"/save <название> — отложить фильм на потом\n" +
		"/saved — отложенные фильмы\n" +
		"/details <название> — подробнее о фильме\n" +
		"/feedback <текст> — оставить отзыв\n\n" +
		"Или просто напишите, какой фильм хотите посмотреть."

	unknownCommandText    = "Неизвестная команда. Список команд: /help"
	noResultsText         = "Извините, не удалось найти подходящие фильмы. Попробуйте переформулировать запрос."
	errorText             = "❌ Произошла ошибка при обработке запроса. Пожалуйста, попробуйте еще раз позже."
	recommendationsHeader = "📢 Рекомендации для вас:\n\n"
	popularHeader         = "🔥 Популярные фильмы:\n\n"
	similarUsageText      = "Укажите название фильма, например: /similar Интерстеллар"
	feedbackUsageText     = "Напишите отзыв после команды, например: /feedback отличные рекомендации"
	feedbackThanksText    = "Спасибо за отзыв!"
	emptyHistoryText      = "История запросов пуста."
	rateUsageText         = "Укажите название и оценку от 0 до 10, например: /rate Интерстеллар 9"
	saveUsageText         = "Укажите название фильма, например: /save Интерстеллар"
	detailsUsageText      = "Укажите название фильма, например: /details Интерстеллар"
	emptySavedText        = "Список отложенных фильмов пуст. Добавьте фильм: /save <название>"
	savedHeader           = "📌 Отложенные фильмы:\n\n"
	movieNotFoundFormat   = "Не удалось найти фильм «%s»."
)

func (r *Router) handleStart(_ context.Context, _ Message) (string, string) {
	return startText, OutcomeOK
}

func (r *Router) handleHelp(_ context.Context, _ Message) (string, string) {
	return helpText, OutcomeOK
}

// handleSetPreferences replaces the favorite genres with those named in the
// arguments. Without arguments it shows the current set.
func (r *Router) handleSetPreferences(ctx context.Context, msg Message) (string, string) {
	args := strings.TrimSpace(msg.Args)
	if args == "" {
		prefs := r.preferences(ctx, msg.UserID)
		current := "не выбраны"
		if len(prefs.FavoriteGenres) > 0 {
			current = genreList(prefs.FavoriteGenres.Sorted())
		}
		return fmt.Sprintf("Ваши любимые жанры: %s.\n\nЧтобы изменить, укажите жанры: /set_preferences комедия, драма\nДоступные жанры: %s",
			current, allGenreLabels()), OutcomeOK
	}

	genres, unknown := match.ParseGenres(args)
	if len(genres) == 0 {
		return fmt.Sprintf("Не удалось распознать ни одного жанра. Доступные жанры: %s", allGenreLabels()), OutcomeInvalid
	}
	if err := r.store.SetFavoriteGenres(ctx, msg.UserID, genres); err != nil {
		logging.Component(ctx, "session").Error().Err(err).Int64("user_id", msg.UserID).Msg("saving preferences")
		return errorText, OutcomeError
	}

	reply := fmt.Sprintf("✅ Любимые жанры сохранены: %s.", genreList(genres.Sorted()))
	if len(unknown) > 0 {
		reply += fmt.Sprintf("\nНе распознано: %s.", strings.Join(unknown, ", "))
	}
	return reply, OutcomeOK
}

func (r *Router) handlePopular(ctx context.Context, msg Message) (string, string) {
	prefs := r.preferences(ctx, msg.UserID)
	cs, err := r.matcher.Popular(ctx, prefs.FavoriteGenres.Sorted(), r.limit)
	if err != nil {
		logging.Component(ctx, "session").Error().Err(err).Msg("popular failed")
		return errorText, OutcomeError
	}
	if len(cs) == 0 {
		return noResultsText, OutcomeNoResults
	}
	return popularHeader + FormatCandidates(cs), OutcomeOK
}

func (r *Router) handleSimilar(ctx context.Context, msg Message) (string, string) {
	title := strings.TrimSpace(msg.Args)
	if title == "" {
		return similarUsageText, OutcomeInvalid
	}
	prefs := r.preferences(ctx, msg.UserID)
	q := types.Query{
		RawText:         title,
		Genres:          types.NewGenreSet(),
		ReferenceTitle:  strings.Trim(title, `"'«»“”`),
		PreferredGenres: prefs.FavoriteGenres,
		CreatedAt:       time.Now(),
	}
	return r.recommend(ctx, msg.UserID, q, prefs)
}

func (r *Router) handleHistory(ctx context.Context, msg Message) (string, string) {
	prefs, err := r.store.Preferences(ctx, msg.UserID, HistoryLimit)
	if err != nil {
		logging.Component(ctx, "session").Error().Err(err).Msg("loading history")
		return errorText, OutcomeError
	}
	if len(prefs.History) == 0 {
		return emptyHistoryText, OutcomeOK
	}
	return formatHistory(prefs.History), OutcomeOK
}

func (r *Router) handleFeedback(ctx context.Context, msg Message) (string, string) {
	text := strings.TrimSpace(msg.Args)
	if text == "" {
		return feedbackUsageText, OutcomeInvalid
	}
	err := r.store.AddFeedback(ctx, types.Feedback{UserID: msg.UserID, Text: text, CreatedAt: time.Now()})
	if err != nil {
		logging.Component(ctx, "session").Error().Err(err).Msg("saving feedback")
		return errorText, OutcomeError
	}
	return feedbackThanksText, OutcomeOK
}

// handleRate stores a 0 to 10 score for a movie. The score is the last
// argument and may be written as "9/10".
func (r *Router) handleRate(ctx context.Context, msg Message) (string, string) {
	title, score, ok := parseRating(msg.Args)
	if !ok {
		return rateUsageText, OutcomeInvalid
	}
	mv, reply, outcome := r.resolve(ctx, title)
	if reply != "" {
		return reply, outcome
	}
	if err := r.store.SetRating(ctx, msg.UserID, mv.ID, score); err != nil {
		logging.Component(ctx, "session").Error().Err(err).Int64("movie_id", mv.ID).Msg("saving rating")
		return errorText, OutcomeError
	}
	return fmt.Sprintf("✅ Оценка сохранена: «%s» %d/%d. Этот фильм больше не будет попадать в рекомендации.",
		mv.Title, score, types.MaxRating), OutcomeOK
}

func (r *Router) handleSave(ctx context.Context, msg Message) (string, string) {
	title := strings.TrimSpace(msg.Args)
	if title == "" {
		return saveUsageText, OutcomeInvalid
	}
	mv, reply, outcome := r.resolve(ctx, title)
	if reply != "" {
		return reply, outcome
	}
	added, err := r.store.AddToSaved(ctx, msg.UserID, mv.ID)
	if err != nil {
		logging.Component(ctx, "session").Error().Err(err).Int64("movie_id", mv.ID).Msg("saving movie")
		return errorText, OutcomeError
	}
	if !added {
		return fmt.Sprintf("«%s» уже в списке отложенных.", mv.Title), OutcomeOK
	}
	return fmt.Sprintf("📌 «%s» добавлен в отложенные. Список: /saved", mv.Title), OutcomeOK
}

func (r *Router) handleSaved(ctx context.Context, msg Message) (string, string) {
	ms, err := r.store.SavedMovies(ctx, msg.UserID)
	if err != nil {
		logging.Component(ctx, "session").Error().Err(err).Msg("loading saved movies")
		return errorText, OutcomeError
	}
	if len(ms) == 0 {
		return emptySavedText, OutcomeOK
	}
	return savedHeader + formatMovies(ms), OutcomeOK
}

// handleDetails shows one movie with its full description and the user's
// own score when there is one.
func (r *Router) handleDetails(ctx context.Context, msg Message) (string, string) {
	title := strings.TrimSpace(msg.Args)
	if title == "" {
		return detailsUsageText, OutcomeInvalid
	}
	mv, reply, outcome := r.resolve(ctx, title)
	if reply != "" {
		return reply, outcome
	}
	own := -1
	for _, rt := range r.ratings(ctx, msg.UserID) {
		if rt.Movie.ID == mv.ID {
			own = rt.Score
			break
		}
	}
	return formatDetails(mv, own), OutcomeOK
}

// resolve looks a title up through the matcher. A non-empty reply means
// the lookup failed and reply should be sent as is.
func (r *Router) resolve(ctx context.Context, title string) (types.MovieRecord, string, string) {
	mv, ok, err := r.matcher.Resolve(ctx, title)
	if err != nil {
		logging.Component(ctx, "session").Error().Err(err).Str("title", title).Msg("resolving title")
		return types.MovieRecord{}, errorText, OutcomeError
	}
	if !ok {
		return types.MovieRecord{}, fmt.Sprintf(movieNotFoundFormat, strings.Trim(title, `"'«»“”`)), OutcomeNoResults
	}
	return mv, "", ""
}

// parseRating splits "<title> <score>" arguments. The score must be a
// whole number from 0 to MaxRating, optionally followed by "/10".
func parseRating(args string) (title string, score int, ok bool) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return "", 0, false
	}
	last := strings.TrimSuffix(fields[len(fields)-1], "/"+strconv.Itoa(types.MaxRating))
	score, err := strconv.Atoi(last)
	if err != nil || score < 0 || score > types.MaxRating {
		return "", 0, false
	}
	title = strings.Trim(strings.Join(fields[:len(fields)-1], " "), `"'«»“”`)
	if title == "" {
		return "", 0, false
	}
	return title, score, true
}
