package resolver

import (
	"github.com/glossarch/stratigraphy/internal/domain"
)

// ConvertEntryToLSR builds a new LSR from a raw entry, used when resolution
// decides create_new. The first definition becomes the primary gloss and the
// remainder become alternates; a single attested year seeds both date bounds;
// the source name seeds the provenance list. Needs no resolver state.
func ConvertEntryToLSR(entry *domain.RawLexicalEntry) *domain.LSR {
	lsr := domain.NewLSR()

	lsr.FormOrthographic = entry.Form
	lsr.FormPhonetic = entry.FormPhonetic
	lsr.NormalizeForm()

	lsr.LanguageCode = entry.ResolvedLanguageCode()
	lsr.LanguageName = entry.Language

	if len(entry.Definitions) > 0 {
		lsr.DefinitionPrimary = entry.Definitions[0]
		if rest := entry.Definitions[1:]; len(rest) > 0 {
			lsr.DefinitionsAlternate = append([]string(nil), rest...)
		}
	}

	if len(entry.PartOfSpeech) > 0 {
		lsr.PartOfSpeech = append([]string(nil), entry.PartOfSpeech...)
	}

	if entry.DateAttested != nil {
		start := *entry.DateAttested
		end := *entry.DateAttested
		lsr.DateStart = &start
		lsr.DateEnd = &end
	}

	if entry.SourceName != "" {
		lsr.SourceDatabases = []string{entry.SourceName}
	}

	for _, raw := range entry.Attestations {
		lsr.AddAttestation(domain.NewAttestation(raw.Excerpt, raw.Source, raw.Date))
	}

	lsr.UpdateConfidence()
	return lsr
}
