// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// StemLength is the number of leading runes kept by Stem.
const StemLength = 5

// Truncate shortens s to at most n runes, ending with "…" when cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return strings.TrimRight(string(r[:n-1]), " \t\n") + "…"
}

// UTF16Len is the length of s in UTF-16 code units, the unit Telegram
// counts message length in.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// TruncateUTF16 shortens s to at most n UTF-16 code units, ending with "…"
// when cut. Characters outside the Basic Multilingual Plane, such as most
// emoji, take two units and are never split.
func TruncateUTF16(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if UTF16Len(s) <= n {
		return s
	}
	budget := n - 1
	used := 0
	for i, r := range s {
		w := utf16.RuneLen(r)
		if used+w > budget {
			return strings.TrimRight(s[:i], " \t\n") + "…"
		}
		used += w
	}
	return s
}

// FoldText lowercases s and folds "ё" to "е" so spellings with and without
// the diaeresis compare equal.
func FoldText(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "ё", "е")
}

// Stem returns the first StemLength runes of a folded word, which is enough
// to match most inflected Russian forms of the same word.
func Stem(word string) string {
	word = FoldText(word)
	if utf8.RuneCountInString(word) <= StemLength {
		return word
	}
	return string([]rune(word)[:StemLength])
}
