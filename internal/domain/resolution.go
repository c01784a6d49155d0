package domain

import "github.com/google/uuid"

// ResolutionAction is the resolver's decision for one incoming entry.
// Exactly one action holds per resolution.
type ResolutionAction string

const (
	// ActionAutoMerge: the match is certain enough to merge without review.
	ActionAutoMerge ResolutionAction = "auto_merge"
	// ActionMergeWithFlag: merge, but flag the result for later review.
	ActionMergeWithFlag ResolutionAction = "merge_with_flag"
	// ActionFlagForReview: a plausible match exists; a human decides.
	ActionFlagForReview ResolutionAction = "flag_for_review"
	// ActionCreateNew: no acceptable match; the entry becomes a new LSR.
	ActionCreateNew ResolutionAction = "create_new"
)

// Valid reports whether a is one of the four known actions.
func (a ResolutionAction) Valid() bool {
	switch a {
	case ActionAutoMerge, ActionMergeWithFlag, ActionFlagForReview, ActionCreateNew:
		return true
	}
	return false
}

// Names of the five similarity features reported in ResolutionResult.FeatureScores.
const (
	FeatureFormExact       = "form_exact"
	FeatureFormFuzzy       = "form_fuzzy"
	FeatureSemantic        = "semantic"
	FeatureDateOverlap     = "date_overlap"
	FeatureSourceAgreement = "source_agreement"
)

// ResolutionResult is the resolver's decision output for one entry.
// Constructed once per resolve call; immutable; not persisted itself.
type ResolutionResult struct {
	Action ResolutionAction `json:"action"`

	// ExistingID is the matched LSR's identifier.
	// Nil for create_new, set for the three match actions.
	ExistingID *uuid.UUID `json:"existing_id,omitempty"`

	// SimilarityScore is the best score found, in [0,1].
	SimilarityScore float64 `json:"similarity_score"`

	// FeatureScores holds the five named sub-scores behind SimilarityScore,
	// kept for auditability.
	FeatureScores map[string]float64 `json:"feature_scores,omitempty"`

	// Issues records non-fatal problems hit while resolving this entry,
	// e.g. a scoring failure isolated during batch processing.
	Issues []string `json:"issues,omitempty"`
}

// ReviewItem is one ambiguous resolution queued for human triage.
type ReviewItem struct {
	ID              uuid.UUID          `json:"id"`
	EntryForm       string             `json:"entry_form"`
	EntryLanguage   string             `json:"entry_language"`
	EntrySource     string             `json:"entry_source"`
	CandidateID     *uuid.UUID         `json:"candidate_id,omitempty"`
	SimilarityScore float64            `json:"similarity_score"`
	FeatureScores   map[string]float64 `json:"feature_scores,omitempty"`
	Issues          []string           `json:"issues,omitempty"`
}

// SimilarityWeights configures the weighted blend of the five similarity
// features. Weights should sum to 1.0; this is not enforced, but the
// defaults do.
type SimilarityWeights struct {
	FormExact       float64 `yaml:"form_exact"       env:"RESOLVER_WEIGHT_FORM_EXACT"       env-default:"0.3"`
	FormFuzzy       float64 `yaml:"form_fuzzy"       env:"RESOLVER_WEIGHT_FORM_FUZZY"       env-default:"0.2"`
	Semantic        float64 `yaml:"semantic"         env:"RESOLVER_WEIGHT_SEMANTIC"         env-default:"0.3"`
	DateOverlap     float64 `yaml:"date_overlap"     env:"RESOLVER_WEIGHT_DATE_OVERLAP"     env-default:"0.1"`
	SourceAgreement float64 `yaml:"source_agreement" env:"RESOLVER_WEIGHT_SOURCE_AGREEMENT" env-default:"0.1"`
}

// DefaultSimilarityWeights returns the default feature weights (sum 1.0).
func DefaultSimilarityWeights() SimilarityWeights {
	return SimilarityWeights{
		FormExact:       0.3,
		FormFuzzy:       0.2,
		Semantic:        0.3,
		DateOverlap:     0.1,
		SourceAgreement: 0.1,
	}
}

// Sum returns the total of all five weights.
func (w SimilarityWeights) Sum() float64 {
	return w.FormExact + w.FormFuzzy + w.Semantic + w.DateOverlap + w.SourceAgreement
}
