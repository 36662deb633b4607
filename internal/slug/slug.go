// Package slug builds URL-safe identifiers from headwords and titles in any script.
package slug

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Empty is used when nothing sluggable is left of the input.
const Empty = "n-a"

// MaxLength bounds the length of a slug in bytes.
const MaxLength = 80

// Make returns the slug of s: diacritics stripped, lower-cased, every run of
// characters that are not letters or digits replaced by a single hyphen.
// Letters of non-Latin scripts are kept.
func Make(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	lowered := cases.Lower(language.Und).String(stripped)

	var b strings.Builder
	pendingHyphen := false
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	out := truncate(b.String(), MaxLength)
	if out == "" {
		return Empty
	}
	return out
}

// Unique returns base if it is free, otherwise base-2, base-3 and so on.
// exists reports whether a candidate is already taken.
func Unique(base string, exists func(candidate string) (bool, error)) (string, error) {
	candidate := base
	for n := 2; ; n++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		suffix := fmt.Sprintf("-%d", n)
		candidate = truncate(base, MaxLength-len(suffix)) + suffix
	}
}

// Set tracks slugs already handed out, for bulk backfills.
type Set map[string]struct{}

// Claim returns a slug for s that is not yet in the set and records it.
func (set Set) Claim(s string) string {
	unique, _ := Unique(Make(s), func(candidate string) (bool, error) {
		_, taken := set[candidate]
		return taken, nil
	})
	set[unique] = struct{}{}
	return unique
}

// truncate cuts s to at most n bytes on a rune boundary without a trailing hyphen.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := 0
	for i := range s {
		if i > n {
			break
		}
		cut = i
	}
	return strings.TrimRight(s[:cut], "-")
}
