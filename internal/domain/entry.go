package domain

import "strings"

// RawAttestation is a not-yet-persisted attestation as produced by a source
// adapter: a text excerpt, its source, and an optional year.
type RawAttestation struct {
	Excerpt string
	Source  string
	Date    *int
}

// RawLexicalEntry is the normalized intermediate representation every source
// adapter (Wiktionary, CLLD, corpus, OCR) must produce before resolution.
// The resolver treats it as immutable: it is never mutated after construction.
type RawLexicalEntry struct {
	SourceName string
	SourceID   string

	Form         string
	FormPhonetic string

	Language     string
	LanguageCode string

	Etymology    string
	Definitions  []string
	PartOfSpeech []string
	Attestations []RawAttestation

	// DateAttested is the earliest known attestation year.
	// Negative years represent BCE.
	DateAttested *int

	// RawData carries the original source payload for debugging.
	// The resolver never interprets it.
	RawData map[string]any
}

// NormalizedForm returns the lowercased, diacritic-stripped form.
func (e *RawLexicalEntry) NormalizedForm() string {
	return NormalizeForm(e.Form)
}

// ResolvedLanguageCode returns the language code, deriving it from the
// language name when the code is missing.
func (e *RawLexicalEntry) ResolvedLanguageCode() string {
	return DeriveLanguageCode(e.LanguageCode, e.Language)
}

// JoinedDefinitions concatenates all definitions into one gloss text,
// used for semantic comparison against a candidate's primary definition.
func (e *RawLexicalEntry) JoinedDefinitions() string {
	return strings.TrimSpace(strings.Join(e.Definitions, " "))
}
