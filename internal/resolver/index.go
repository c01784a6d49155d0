// Package resolver implements the entity resolution pipeline: deciding
// whether an incoming lexical entry duplicates an existing Lexical State
// Record, is a fuzzy variant requiring review, or is genuinely new.
package resolver

import (
	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"

	"github.com/glossarch/stratigraphy/internal/domain"
)

// maxFuzzyDistance is the edit-distance bound for Strategy B candidate lookup.
const maxFuzzyDistance = 2

// EditDistance returns the Levenshtein distance between two strings,
// counting runes, with unit cost for insert/delete/substitute.
func EditDistance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// CandidateIndex maps (normalized form, language code) to the LSR ids sharing
// that key. It is owned by one resolver instance, rebuilt wholesale by
// SetStore, grown one record at a time by Add, and read-only during retrieval.
type CandidateIndex struct {
	// forms[languageCode][formNormalized] -> ids sharing that exact key.
	forms map[string]map[string][]uuid.UUID
}

// NewCandidateIndex creates an empty index.
func NewCandidateIndex() *CandidateIndex {
	return &CandidateIndex{forms: make(map[string]map[string][]uuid.UUID)}
}

// SetStore replaces the indexed store and rebuilds the index. O(n) in store
// size. LSRs without a normalized form or language code are not indexed.
func (c *CandidateIndex) SetStore(store map[uuid.UUID]*domain.LSR) {
	c.forms = make(map[string]map[string][]uuid.UUID, len(store))

	for id, lsr := range store {
		if lsr == nil {
			continue
		}
		form := lsr.FormNormalized
		if form == "" {
			form = domain.NormalizeForm(lsr.FormOrthographic)
		}
		lang := domain.DeriveLanguageCode(lsr.LanguageCode, lsr.LanguageName)
		if form == "" || lang == "" {
			continue
		}

		byForm := c.forms[lang]
		if byForm == nil {
			byForm = make(map[string][]uuid.UUID)
			c.forms[lang] = byForm
		}
		byForm[form] = append(byForm[form], id)
	}
}

// Add indexes one LSR without rebuilding. Used during ingestion so records
// created mid-run become candidates for the entries that follow.
func (c *CandidateIndex) Add(id uuid.UUID, lsr *domain.LSR) {
	if lsr == nil {
		return
	}
	form := lsr.FormNormalized
	if form == "" {
		form = domain.NormalizeForm(lsr.FormOrthographic)
	}
	lang := domain.DeriveLanguageCode(lsr.LanguageCode, lsr.LanguageName)
	if form == "" || lang == "" {
		return
	}

	byForm := c.forms[lang]
	if byForm == nil {
		byForm = make(map[string][]uuid.UUID)
		c.forms[lang] = byForm
	}
	byForm[form] = append(byForm[form], id)
}

// Len returns the number of indexed keys.
func (c *CandidateIndex) Len() int {
	n := 0
	for _, byForm := range c.forms {
		n += len(byForm)
	}
	return n
}

// Retrieve returns the ids of plausible matches for the entry's form and
// language: exact key hits plus every indexed form in the same language
// within edit distance 2. The result is deduplicated; order is not
// significant. The fuzzy scan is linear in the keys of one language,
// which is acceptable at the index's working scale.
func (c *CandidateIndex) Retrieve(entry *domain.RawLexicalEntry) []uuid.UUID {
	form := entry.NormalizedForm()
	lang := entry.ResolvedLanguageCode()
	if form == "" || lang == "" {
		return nil
	}

	byForm := c.forms[lang]
	if len(byForm) == 0 {
		return nil
	}

	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID

	// Strategy A: exact key.
	for _, id := range byForm[form] {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	// Strategy B: bounded edit distance within the same language.
	for indexedForm, formIDs := range byForm {
		if indexedForm == form {
			continue
		}
		if EditDistance(form, indexedForm) > maxFuzzyDistance {
			continue
		}
		for _, id := range formIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	return ids
}
