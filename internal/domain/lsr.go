package domain

import (
	"time"

	"github.com/google/uuid"
)

// Year bounds accepted for attestation and LSR dates.
// Negative years represent BCE.
const (
	MinYear = -10000
	MaxYear = 2100
)

// Attestation is a recorded usage of a word form in a historical text.
// The LSR owns its attestations; LSRID is a back-reference, not ownership.
type Attestation struct {
	ID             uuid.UUID
	LSRID          uuid.UUID
	TextExcerpt    string
	TextSource     string
	TextDate       *int
	DateConfidence float64
	PageReference  string
	URL            string
}

// NewAttestation creates an attestation with a fresh ID and full date confidence.
func NewAttestation(excerpt, source string, date *int) Attestation {
	return Attestation{
		ID:             uuid.New(),
		TextExcerpt:    excerpt,
		TextSource:     source,
		TextDate:       date,
		DateConfidence: 1.0,
	}
}

// LSR is a Lexical State Record: the canonical stored entity representing a
// word-form/meaning pairing at a language and time period. Its ID is assigned
// at creation and never reassigned; Version increments by exactly 1 on every
// persisted mutation, merges included.
type LSR struct {
	ID        uuid.UUID
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time

	FormOrthographic string
	FormNormalized   string
	FormPhonetic     string

	LanguageCode   string
	LanguageName   string
	LanguageFamily string
	LanguageBranch []string
	PeriodLabel    string

	// DateStart/DateEnd form a signed-year range; DateEnd >= DateStart
	// whenever both are set.
	DateStart      *int
	DateEnd        *int
	DateConfidence float64

	DefinitionPrimary    string
	DefinitionsAlternate []string
	SemanticFields       []string
	PartOfSpeech         []string
	ConceptualDomain     []string

	Attestations []Attestation

	SourceDatabases    []string
	ConfidenceOverall  float64
	ReconstructionFlag bool
	HumanValidated     bool
	ValidationNotes    string
}

// NewLSR creates an empty LSR with a fresh identity, version 1,
// and full confidence.
func NewLSR() *LSR {
	now := time.Now().UTC()
	return &LSR{
		ID:                uuid.New(),
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
		DateConfidence:    1.0,
		ConfidenceOverall: 1.0,
	}
}

// NormalizeForm recomputes FormNormalized from FormOrthographic.
func (l *LSR) NormalizeForm() {
	l.FormNormalized = NormalizeForm(l.FormOrthographic)
}

// Validate checks structural invariants. It does not validate content quality;
// that is the surrounding validation pipeline's job.
func (l *LSR) Validate() error {
	var errs []FieldError

	if l.ID == uuid.Nil {
		errs = append(errs, FieldError{Field: "id", Message: "must not be zero"})
	}
	if l.Version < 1 {
		errs = append(errs, FieldError{Field: "version", Message: "must be >= 1"})
	}
	if l.DateStart != nil && (*l.DateStart < MinYear || *l.DateStart > MaxYear) {
		errs = append(errs, FieldError{Field: "date_start", Message: "year out of range"})
	}
	if l.DateEnd != nil && (*l.DateEnd < MinYear || *l.DateEnd > MaxYear) {
		errs = append(errs, FieldError{Field: "date_end", Message: "year out of range"})
	}
	if l.DateStart != nil && l.DateEnd != nil && *l.DateEnd < *l.DateStart {
		errs = append(errs, FieldError{Field: "date_end", Message: "must be >= date_start"})
	}
	if l.ConfidenceOverall < 0 || l.ConfidenceOverall > 1 {
		errs = append(errs, FieldError{Field: "confidence_overall", Message: "must be in [0,1]"})
	}

	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// AddAttestation links an attestation to this LSR, appends it, and widens
// the date range to cover the attestation's date if needed.
func (l *LSR) AddAttestation(att Attestation) {
	att.LSRID = l.ID
	l.Attestations = append(l.Attestations, att)
	l.updateDatesFromAttestations()
}

// updateDatesFromAttestations widens [DateStart, DateEnd] to cover every
// dated attestation. It never narrows the range.
func (l *LSR) updateDatesFromAttestations() {
	for _, att := range l.Attestations {
		if att.TextDate == nil {
			continue
		}
		d := *att.TextDate
		if l.DateStart == nil || d < *l.DateStart {
			l.DateStart = &d
		}
		if l.DateEnd == nil || d > *l.DateEnd {
			l.DateEnd = &d
		}
	}
}

// UpdateConfidence recalculates ConfidenceOverall as an unweighted average of
// the applicable factors: date confidence, an attestation-count factor
// (min(1, n*0.1+0.5), or 0.3 with no attestations), 0.6 when the record is a
// reconstructed proto-form, and 1.0 when human-validated.
func (l *LSR) UpdateConfidence() {
	factors := []float64{l.DateConfidence}

	if n := len(l.Attestations); n > 0 {
		factors = append(factors, min(1.0, float64(n)*0.1+0.5))
	} else {
		factors = append(factors, 0.3)
	}

	if l.ReconstructionFlag {
		factors = append(factors, 0.6)
	}
	if l.HumanValidated {
		factors = append(factors, 1.0)
	}

	var sum float64
	for _, f := range factors {
		sum += f
	}
	l.ConfidenceOverall = sum / float64(len(factors))
}

// SearchDocument flattens the record into the shape indexed for full-text
// search.
func (l *LSR) SearchDocument() map[string]any {
	return map[string]any{
		"id":                    l.ID.String(),
		"form_orthographic":     l.FormOrthographic,
		"form_normalized":       l.FormNormalized,
		"form_phonetic":         l.FormPhonetic,
		"language_code":         l.LanguageCode,
		"language_name":         l.LanguageName,
		"language_family":       l.LanguageFamily,
		"period_label":          l.PeriodLabel,
		"date_start":            l.DateStart,
		"date_end":              l.DateEnd,
		"definition_primary":    l.DefinitionPrimary,
		"definitions_alternate": l.DefinitionsAlternate,
		"part_of_speech":        l.PartOfSpeech,
		"semantic_fields":       l.SemanticFields,
		"confidence":            l.ConfidenceOverall,
	}
}

// MergeWith merges another LSR into this one, in place. Used during entity
// resolution when two records are determined to be the same word.
//
// The target's ID never changes and other is left untouched. Version is
// incremented by exactly 1 regardless of how many fields changed.
// Returns the names of the fields that absorbed data from other.
func (l *LSR) MergeWith(other *LSR) []string {
	var merged []string

	// Attestation union by ID; copies are re-linked to the target.
	existing := make(map[uuid.UUID]bool, len(l.Attestations))
	for _, att := range l.Attestations {
		existing[att.ID] = true
	}
	added := false
	for _, att := range other.Attestations {
		if existing[att.ID] {
			continue
		}
		att.LSRID = l.ID
		l.Attestations = append(l.Attestations, att)
		existing[att.ID] = true
		added = true
	}
	if added {
		merged = append(merged, "attestations")
	}

	// Date range expands to the union; a missing bound adopts the other side.
	datesChanged := false
	if other.DateStart != nil && (l.DateStart == nil || *other.DateStart < *l.DateStart) {
		v := *other.DateStart
		l.DateStart = &v
		datesChanged = true
	}
	if other.DateEnd != nil && (l.DateEnd == nil || *other.DateEnd > *l.DateEnd) {
		v := *other.DateEnd
		l.DateEnd = &v
		datesChanged = true
	}
	if datesChanged {
		merged = append(merged, "date_range")
	}

	// Source databases: set union, insertion order preserved.
	seen := make(map[string]bool, len(l.SourceDatabases))
	for _, src := range l.SourceDatabases {
		seen[src] = true
	}
	sourcesChanged := false
	for _, src := range other.SourceDatabases {
		if seen[src] {
			continue
		}
		l.SourceDatabases = append(l.SourceDatabases, src)
		seen[src] = true
		sourcesChanged = true
	}
	if sourcesChanged {
		merged = append(merged, "source_databases")
	}

	// Alternate definitions: append, skipping the target's primary and dups.
	known := make(map[string]bool, len(l.DefinitionsAlternate))
	for _, d := range l.DefinitionsAlternate {
		known[d] = true
	}
	defsChanged := false
	for _, d := range other.DefinitionsAlternate {
		if known[d] || d == l.DefinitionPrimary {
			continue
		}
		l.DefinitionsAlternate = append(l.DefinitionsAlternate, d)
		known[d] = true
		defsChanged = true
	}
	if defsChanged {
		merged = append(merged, "definitions_alternate")
	}

	l.Version++
	l.UpdatedAt = time.Now().UTC()
	l.UpdateConfidence()

	return merged
}
