package publisher

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fallbackSlug names posts whose title has no ASCII-representable
// characters at all.
const fallbackSlug = "insight"

// Slugify derives a filename-safe slug from a title: lower-cased, spaces
// turned into hyphens, accents folded to their base letter, and anything
// outside [a-z0-9-] dropped. Slugify(Slugify(s)) == Slugify(s).
func Slugify(title string) string {
	s := cases.Lower(language.Und).String(title)
	s = strings.ReplaceAll(s, " ", "-")
	s = foldAccents(s)

	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return -1
	}, s)

	if strings.Trim(s, "-") == "" {
		return fallbackSlug
	}
	return s
}

// foldAccents decomposes s and removes combining marks, so "promoção"
// becomes "promocao".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
