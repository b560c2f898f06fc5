// Package textnorm folds free text into the form keyword matching runs against.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases s and strips diacritics, so "Ñ" and "n" compare equal.
func Fold(s string) string {
	return strings.ToLower(removeAccents(s))
}

// Collapse trims s and squeezes runs of whitespace to single spaces.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}
