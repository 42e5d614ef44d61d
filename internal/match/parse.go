// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/movie-assistant/pkg/types"
)

// StemLength is the number of leading runes kept from each keyword.
const StemLength = types.StemLength

// minKeywordRunes drops very short words from the keyword list.
const minKeywordRunes = 3

type genreAlias struct {
	prefix string
	genre  types.Genre
}

// genreAliases maps word prefixes in Russian and English to genres. It is
// sorted longest first at init so "мелодрам" wins over "драм".
var genreAliases = []genreAlias{
	{"комед", types.GenreComedy}, {"comed", types.GenreComedy}, {"смешн", types.GenreComedy}, {"юмор", types.GenreComedy},
	{"мелодрам", types.GenreRomance}, {"романт", types.GenreRomance}, {"romanc", types.GenreRomance}, {"romant", types.GenreRomance}, {"любов", types.GenreRomance},
	{"драм", types.GenreDrama}, {"drama", types.GenreDrama},
	{"боевик", types.GenreAction}, {"экшн", types.GenreAction}, {"экшен", types.GenreAction}, {"action", types.GenreAction},
	{"приключ", types.GenreAdventure}, {"adventur", types.GenreAdventure},
	{"мультфильм", types.GenreAnimation}, {"мультик", types.GenreAnimation}, {"мультипликац", types.GenreAnimation}, {"анимац", types.GenreAnimation}, {"аниме", types.GenreAnimation}, {"animat", types.GenreAnimation}, {"anime", types.GenreAnimation}, {"cartoon", types.GenreAnimation},
	{"криминал", types.GenreCrime}, {"гангстер", types.GenreCrime}, {"crime", types.GenreCrime}, {"gangster", types.GenreCrime},
	{"документал", types.GenreDocumentary}, {"documentar", types.GenreDocumentary},
	{"семейн", types.GenreFamily}, {"детск", types.GenreFamily}, {"family", types.GenreFamily},
	{"фэнтез", types.GenreFantasy}, {"фентез", types.GenreFantasy}, {"fantasy", types.GenreFantasy},
	{"историч", types.GenreHistory}, {"histor", types.GenreHistory},
	{"ужас", types.GenreHorror}, {"хоррор", types.GenreHorror}, {"страшн", types.GenreHorror}, {"horror", types.GenreHorror},
	{"мюзикл", types.GenreMusic}, {"музык", types.GenreMusic}, {"music", types.GenreMusic},
	{"детектив", types.GenreMystery}, {"мистик", types.GenreMystery}, {"загадоч", types.GenreMystery}, {"mystery", types.GenreMystery},
	{"фантаст", types.GenreScienceFiction}, {"научн", types.GenreScienceFiction}, {"sci-fi", types.GenreScienceFiction}, {"scifi", types.GenreScienceFiction},
	{"телефильм", types.GenreTVMovie},
	{"триллер", types.GenreThriller}, {"напряжен", types.GenreThriller}, {"thriller", types.GenreThriller},
	{"военн", types.GenreWar}, {"войн", types.GenreWar},
	{"вестерн", types.GenreWestern}, {"ковбо", types.GenreWestern}, {"western", types.GenreWestern},
}

// wholeWordAliases only match a token exactly; as prefixes they would
// catch unrelated words such as "warm".
var wholeWordAliases = map[string]types.Genre{
	"war":  types.GenreWar,
	"wars": types.GenreWar,
}

func init() {
	sort.SliceStable(genreAliases, func(i, j int) bool {
		return utf8.RuneCountInString(genreAliases[i].prefix) > utf8.RuneCountInString(genreAliases[j].prefix)
	})
	for _, g := range types.AllGenres {
		if _, whole := wholeWordAliases[string(g)]; whole {
			continue
		}
		genreAliases = append(genreAliases, genreAlias{string(g), g})
	}
}

// stopWords are dropped before keyword extraction. Entries are folded.
var stopWords = toSet(
	// Russian
	"хочу", "хотим", "хотелось", "бы", "посоветуй", "посоветуйте", "порекомендуй", "порекомендуйте",
	"подскажи", "подскажите", "найди", "покажи", "дай", "нужен", "нужно", "нужна", "можно",
	"фильм", "фильмы", "фильма", "фильмов", "фильмом", "кино", "кинофильм", "картину", "картина",
	"что", "чтобы", "нибудь", "то", "какой", "какую", "какое", "какие", "какой-нибудь",
	"про", "для", "мне", "нам", "меня", "нас", "его", "она", "они", "это", "этот", "эту",
	"или", "очень", "как", "так", "был", "была", "было", "были", "есть", "где", "который", "которая",
	"такой", "такое", "такую", "такие", "вечер", "вечером", "сегодня", "посмотреть", "смотреть",
	"хороший", "хорошее", "хорошую", "хорошие", "интересный", "интересное", "интересную", "новый", "новое",
	"пожалуйста", "жанр", "жанра", "жанре", "стиле", "вроде", "типа", "похожий", "похожее", "похожие",
	"без", "под", "над", "или", "еще", "ещё", "все", "всё", "тот", "той", "там", "тут",
	// English
	"the", "and", "with", "about", "want", "some", "something", "recommend", "please", "movie",
	"movies", "film", "films", "show", "good", "any", "for", "that", "this", "like", "similar",
)

func toSet(words ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[types.FoldText(w)] = struct{}{}
	}
	return out
}

var (
	quotedTitle = regexp.MustCompile(`[«"“„]([^«»"“”„]+)[»"”“]`)
	// Marker words are matched at a word start; the rest of the message is
	// the reference title unless it names only genres.
	similarMarker = regexp.MustCompile(`(?i)(?:^|[\s,.!?;:])(похож(?:ее|ий|ие|ая|ую|ого)?\s+на|вроде|(?:something|anything|movies?|films?)\s+like|similar\s+to)\s+(.+)$`)
)

// ParseQuery extracts genre hints, stemmed keywords and an optional
// reference title from a free-text request. preferred becomes the query's
// preferred genres.
func ParseQuery(text string, preferred types.GenreSet) types.Query {
	q := types.Query{
		RawText:         text,
		Genres:          types.NewGenreSet(),
		PreferredGenres: copySet(preferred),
		CreatedAt:       time.Now(),
	}

	rest := text
	if m := quotedTitle.FindStringSubmatchIndex(rest); m != nil {
		q.ReferenceTitle = cleanTitle(rest[m[2]:m[3]])
		rest = rest[:m[0]] + " " + rest[m[1]:]
	} else if m := similarMarker.FindStringSubmatchIndex(rest); m != nil && !onlyGenres(rest[m[4]:m[5]]) {
		q.ReferenceTitle = cleanTitle(rest[m[4]:m[5]])
		rest = rest[:m[0]]
	}

	seen := make(map[string]struct{})
	for _, tok := range tokenize(rest) {
		addToken(&q, tok, seen)
	}
	return q
}

// ParseGenres maps free text such as "комедия, ужасы" to genres. Words that
// match no genre are returned in unknown.
func ParseGenres(text string) (genres types.GenreSet, unknown []string) {
	genres = types.NewGenreSet()
	for _, tok := range tokenize(text) {
		if g, ok := lookupGenre(tok); ok {
			genres.Add(g)
			continue
		}
		if _, stop := stopWords[tok]; stop || utf8.RuneCountInString(tok) < minKeywordRunes {
			continue
		}
		unknown = append(unknown, tok)
	}
	return genres, unknown
}

func addToken(q *types.Query, tok string, seen map[string]struct{}) {
	if g, ok := lookupGenre(tok); ok {
		q.Genres.Add(g)
		return
	}
	if strings.Contains(tok, "-") {
		for _, part := range strings.Split(tok, "-") {
			if part != "" {
				addToken(q, part, seen)
			}
		}
		return
	}
	if utf8.RuneCountInString(tok) < minKeywordRunes {
		return
	}
	if _, stop := stopWords[tok]; stop {
		return
	}
	if isDigits(tok) {
		return
	}
	stem := Stem(tok)
	if _, dup := seen[stem]; dup {
		return
	}
	seen[stem] = struct{}{}
	q.Keywords = append(q.Keywords, stem)
	q.Terms = append(q.Terms, tok)
}

// Stem returns the first StemLength runes of a folded word.
func Stem(word string) string {
	return types.Stem(word)
}

// onlyGenres reports whether text names at least one genre and otherwise
// holds nothing but stop words and short words.
func onlyGenres(text string) bool {
	found := false
	var check func(tok string) bool
	check = func(tok string) bool {
		if _, ok := lookupGenre(tok); ok {
			found = true
			return true
		}
		if strings.Contains(tok, "-") {
			for _, part := range strings.Split(tok, "-") {
				if part != "" && !check(part) {
					return false
				}
			}
			return true
		}
		_, stop := stopWords[tok]
		return stop || utf8.RuneCountInString(tok) < minKeywordRunes
	}
	for _, tok := range tokenize(text) {
		if !check(tok) {
			return false
		}
	}
	return found
}

func lookupGenre(tok string) (types.Genre, bool) {
	if g, ok := wholeWordAliases[tok]; ok {
		return g, true
	}
	for _, a := range genreAliases {
		if strings.HasPrefix(tok, a.prefix) {
			return a.genre, true
		}
	}
	return "", false
}

// tokenize folds text and splits it into words. Hyphens inside a word are kept.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(types.FoldText(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "-")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func cleanTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, " \t\n«»\"“”„'.,!?;:")
	return strings.Join(strings.Fields(s), " ")
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func copySet(s types.GenreSet) types.GenreSet {
	out := types.NewGenreSet()
	for g := range s {
		out.Add(g)
	}
	return out
}
