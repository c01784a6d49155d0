package resolver

import (
	"strings"

	"github.com/glossarch/stratigraphy/internal/domain"
)

// neutralScore is used when a feature cannot be computed because one side
// lacks the required data. It neither rewards nor penalizes the candidate.
const neutralScore = 0.5

// dateDecayYears controls how fast the date feature decays when the attested
// year falls outside the candidate's range: zero at 100 years distance.
const dateDecayYears = 100.0

// Scorer computes the weighted similarity between an incoming entry and a
// candidate LSR. Pure: it holds only the configured weights.
type Scorer struct {
	weights domain.SimilarityWeights
}

// NewScorer creates a scorer with the given feature weights.
func NewScorer(weights domain.SimilarityWeights) *Scorer {
	return &Scorer{weights: weights}
}

// Score returns the blended similarity in [0,1] (assuming weights sum to 1)
// and the per-feature breakdown keyed by the domain.Feature* names.
func (s *Scorer) Score(entry *domain.RawLexicalEntry, candidate *domain.LSR) (float64, map[string]float64) {
	features := map[string]float64{
		domain.FeatureFormExact:       formExactScore(entry, candidate),
		domain.FeatureFormFuzzy:       formFuzzyScore(entry, candidate),
		domain.FeatureSemantic:        semanticScore(entry, candidate),
		domain.FeatureDateOverlap:     dateOverlapScore(entry, candidate),
		domain.FeatureSourceAgreement: sourceAgreementScore(entry, candidate),
	}

	total := features[domain.FeatureFormExact]*s.weights.FormExact +
		features[domain.FeatureFormFuzzy]*s.weights.FormFuzzy +
		features[domain.FeatureSemantic]*s.weights.Semantic +
		features[domain.FeatureDateOverlap]*s.weights.DateOverlap +
		features[domain.FeatureSourceAgreement]*s.weights.SourceAgreement

	return total, features
}

// formExactScore is 1.0 iff the normalized forms are identical and non-empty;
// a pair of empty forms never counts as an exact match.
func formExactScore(entry *domain.RawLexicalEntry, candidate *domain.LSR) float64 {
	if entry.NormalizedForm() == candidate.FormNormalized && candidate.FormNormalized != "" {
		return 1.0
	}
	return 0.0
}

// formFuzzyScore is 1 - distance/max(len(a), len(b), 1), floored at 0,
// with lengths counted in runes.
func formFuzzyScore(entry *domain.RawLexicalEntry, candidate *domain.LSR) float64 {
	a := entry.NormalizedForm()
	b := candidate.FormNormalized

	longest := max(len([]rune(a)), len([]rune(b)), 1)
	score := 1.0 - float64(EditDistance(a, b))/float64(longest)
	return max(score, 0.0)
}

// semanticScore is the Jaccard overlap of whitespace-tokenized lowercased
// words between the entry's joined definitions and the candidate's primary
// definition. Neutral when either side has no definition text.
func semanticScore(entry *domain.RawLexicalEntry, candidate *domain.LSR) float64 {
	entryText := entry.JoinedDefinitions()
	candText := strings.TrimSpace(candidate.DefinitionPrimary)
	if entryText == "" || candText == "" {
		return neutralScore
	}

	entryWords := tokenSet(entryText)
	candWords := tokenSet(candText)

	intersection := 0
	for w := range entryWords {
		if candWords[w] {
			intersection++
		}
	}
	union := len(entryWords) + len(candWords) - intersection
	if union == 0 {
		return neutralScore
	}

	return float64(intersection) / float64(union)
}

// tokenSet splits text on whitespace into a set of lowercased words.
func tokenSet(text string) map[string]bool {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// dateOverlapScore is 1.0 when the entry's attested year falls inside the
// candidate's date range, decaying linearly with distance to the nearest
// bound (zero at 100 years). Neutral when either side lacks dates.
// A missing bound on one side of the candidate's range is an open bound.
func dateOverlapScore(entry *domain.RawLexicalEntry, candidate *domain.LSR) float64 {
	if entry.DateAttested == nil {
		return neutralScore
	}
	if candidate.DateStart == nil && candidate.DateEnd == nil {
		return neutralScore
	}

	year := *entry.DateAttested
	distance := 0
	if candidate.DateStart != nil && year < *candidate.DateStart {
		distance = *candidate.DateStart - year
	} else if candidate.DateEnd != nil && year > *candidate.DateEnd {
		distance = year - *candidate.DateEnd
	}
	if distance == 0 {
		return 1.0
	}

	return max(1.0-float64(distance)/dateDecayYears, 0.0)
}

// sourceAgreementScore is 1.0 iff the entry's source is already recorded in
// the candidate's provenance list.
func sourceAgreementScore(entry *domain.RawLexicalEntry, candidate *domain.LSR) float64 {
	for _, src := range candidate.SourceDatabases {
		if src == entry.SourceName {
			return 1.0
		}
	}
	return 0.0
}
