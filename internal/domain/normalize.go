package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// diacriticStripper decomposes text (NFKD) and drops combining marks,
// so "café" and "cafe" normalize to the same string.
var diacriticStripper = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// StripDiacritics removes combining diacritical marks from text.
// Deterministic and total: on a transform error the input is returned as-is.
func StripDiacritics(text string) string {
	out, _, err := transform.String(diacriticStripper, text)
	if err != nil {
		return text
	}
	return out
}

// NormalizeForm prepares a word form for storage and matching:
//   - trims leading/trailing whitespace
//   - converts to lowercase
//   - strips diacritics
//
// Idempotent: NormalizeForm(NormalizeForm(s)) == NormalizeForm(s).
func NormalizeForm(form string) string {
	form = strings.TrimSpace(form)
	if form == "" {
		return ""
	}
	return StripDiacritics(strings.ToLower(form))
}

// DeriveLanguageCode returns the ISO 639-3 code when present, otherwise
// falls back to the first three runes of the lowercased language name.
// The fallback is a known heuristic, not authoritative.
func DeriveLanguageCode(code, languageName string) string {
	code = strings.TrimSpace(code)
	if code != "" {
		return strings.ToLower(code)
	}

	name := []rune(strings.ToLower(strings.TrimSpace(languageName)))
	if len(name) > 3 {
		name = name[:3]
	}
	return string(name)
}
