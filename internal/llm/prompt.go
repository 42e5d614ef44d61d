// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/movie-assistant/pkg/types"
)

// maxDescriptionRunes bounds each candidate description in the prompt.
const maxDescriptionRunes = 300

// systemPrompt sets the assistant's role and output rules.
const systemPrompt = `Ты помощник по выбору фильмов. Тебе дают запрос пользователя и список фильмов, уже подобранных из каталога.

Правила:
1. Рекомендуй ТОЛЬКО фильмы из списка, не добавляй других.
2. Сохраняй порядок списка: первый фильм подходит лучше всего.
3. Для каждого фильма напиши одно-два предложения о том, почему он подходит под запрос.
4. Форматируй название как: "Название" (Год).
5. Не выдумывай факты, которых нет в описании.

Отвечай на русском языке, без вступлений длиннее одной фразы.`

// explainTmpl renders the user message for one request.
var explainTmpl = template.Must(template.New("explain").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`Запрос пользователя: {{.Query}}
{{- if .FavoriteGenres}}
Любимые жанры пользователя (учитывай умеренно): {{.FavoriteGenres}}
{{- end}}
{{- if .FavoriteMovies}}
Фильмы, которые пользователь высоко оценил: {{.FavoriteMovies}}
{{- end}}

Подобранные фильмы:
{{range $i, $c := .Candidates}}
{{inc $i}}. "{{$c.Title}}"{{if $c.Year}} ({{$c.Year}}){{end}}{{if $c.Genres}}. Жанры: {{$c.Genres}}{{end}}
{{- if $c.Description}}
   {{$c.Description}}
{{- end}}
{{end}}`))

type promptCandidate struct {
	Title       string
	Year        int
	Genres      string
	Description string
}

type promptData struct {
	Query          string
	FavoriteGenres string
	FavoriteMovies string
	Candidates     []promptCandidate
}

// renderPrompt returns the user message for req.
func renderPrompt(req ExplainRequest) (string, error) {
	if len(req.Candidates) == 0 {
		return "", fmt.Errorf("no candidates to explain")
	}
	data := promptData{
		Query:          strings.TrimSpace(req.Query),
		FavoriteGenres: genreLabels(req.FavoriteGenres),
		FavoriteMovies: ratedTitles(req.FavoriteMovies),
	}
	for _, c := range req.Candidates {
		title := c.Movie.Title
		if c.Movie.OriginalTitle != "" && c.Movie.OriginalTitle != title {
			title += " / " + c.Movie.OriginalTitle
		}
		data.Candidates = append(data.Candidates, promptCandidate{
			Title:       title,
			Year:        c.Movie.ReleaseYear,
			Genres:      genreLabels(c.Movie.Genres),
			Description: types.Truncate(strings.TrimSpace(c.Movie.Description), maxDescriptionRunes),
		})
	}

	var buf bytes.Buffer
	if err := explainTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func genreLabels(gs []types.Genre) string {
	labels := make([]string, len(gs))
	for i, g := range gs {
		labels[i] = g.Label()
	}
	return strings.Join(labels, ", ")
}

func ratedTitles(rs []types.Rating) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = fmt.Sprintf("%s: %d/%d", r.Movie.Title, r.Score, types.MaxRating)
	}
	return strings.Join(parts, "; ")
}
