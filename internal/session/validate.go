// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinQueryRunes is the shortest free-text request accepted.
const MinQueryRunes = 3

// InvalidQueryError explains to the user why a request was rejected.
type InvalidQueryError struct {
	Reason string
}

func (e *InvalidQueryError) Error() string { return "invalid query: " + e.Reason }

// ValidateQuery rejects requests that are too short, consist only of digits
// or contain no letters or digits at all.
func ValidateQuery(text string) error {
	t := strings.TrimSpace(text)
	switch {
	case t == "":
		return &InvalidQueryError{Reason: "ваш запрос пуст. Пожалуйста, введите что-нибудь."}
	case utf8.RuneCountInString(t) < MinQueryRunes:
		return &InvalidQueryError{Reason: fmt.Sprintf("ваш запрос слишком короткий. Он должен содержать минимум %d символа.", MinQueryRunes)}
	case onlyDigits(t):
		return &InvalidQueryError{Reason: "ваш запрос состоит только из цифр. Пожалуйста, опишите, что вы ищете."}
	case !strings.ContainsFunc(t, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }):
		return &InvalidQueryError{Reason: "ваш запрос состоит только из специальных символов. Пожалуйста, введите осмысленный текст."}
	}
	return nil
}

func onlyDigits(s string) bool {
	seen := false
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			seen = true
		case unicode.IsSpace(r):
		default:
			return false
		}
	}
	return seen
}
