package resolver

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/glossarch/stratigraphy/internal/domain"
)

// Config holds the resolver's decision thresholds and feature weights.
// Thresholds are checked in descending order against the best similarity
// score found.
type Config struct {
	AutoMergeThreshold     float64
	MergeWithFlagThreshold float64
	ReviewThreshold        float64
	Weights                domain.SimilarityWeights
}

// DefaultConfig returns the default thresholds (0.95 / 0.85 / 0.70) and
// feature weights.
func DefaultConfig() Config {
	return Config{
		AutoMergeThreshold:     0.95,
		MergeWithFlagThreshold: 0.85,
		ReviewThreshold:        0.70,
		Weights:                domain.DefaultSimilarityWeights(),
	}
}

// EntityResolver matches incoming lexical entries against a store of LSRs.
//
// The resolver is synchronous and single-threaded. Its only cross-call state
// is the candidate index, rebuilt wholesale by SetLSRStore and read-only
// during Resolve/ProcessBatch. The backing store is assumed externally
// synchronized; mutating it during an in-flight Resolve is undefined.
type EntityResolver struct {
	cfg    Config
	scorer *Scorer
	index  *CandidateIndex
	store  map[uuid.UUID]*domain.LSR
}

// New creates a resolver with the given configuration and an empty store.
// Resolving before SetLSRStore behaves as an empty store: everything
// resolves to create_new.
func New(cfg Config) *EntityResolver {
	return &EntityResolver{
		cfg:    cfg,
		scorer: NewScorer(cfg.Weights),
		index:  NewCandidateIndex(),
	}
}

// SetLSRStore replaces the resolver's view of the LSR store and rebuilds the
// candidate index synchronously.
func (r *EntityResolver) SetLSRStore(store map[uuid.UUID]*domain.LSR) {
	r.store = store
	r.index.SetStore(store)
}

// AddLSR adds one record to the store view and the candidate index. Records
// created mid-ingestion must be visible to the entries processed after them.
func (r *EntityResolver) AddLSR(lsr *domain.LSR) {
	if lsr == nil {
		return
	}
	if r.store == nil {
		r.store = make(map[uuid.UUID]*domain.LSR)
	}
	r.store[lsr.ID] = lsr
	r.index.Add(lsr.ID, lsr)
}

// StoreSize returns the number of LSRs in the resolver's current store view.
func (r *EntityResolver) StoreSize() int {
	return len(r.store)
}

// LSR returns the record with the given id from the store view, or nil.
func (r *EntityResolver) LSR(id uuid.UUID) *domain.LSR {
	return r.store[id]
}

// Resolve classifies a single entry against the store. One-shot: retrieval,
// scoring, threshold decision. It never returns an error: malformed entries
// (missing form or language) resolve to create_new with score 0, because
// lexical data is noisy and quality gating belongs to the validation
// pipeline, not the resolver.
func (r *EntityResolver) Resolve(entry *domain.RawLexicalEntry) *domain.ResolutionResult {
	candidateIDs := r.index.Retrieve(entry)
	if len(candidateIDs) == 0 {
		return &domain.ResolutionResult{
			Action:        domain.ActionCreateNew,
			FeatureScores: map[string]float64{},
		}
	}

	var (
		bestID       uuid.UUID
		bestScore    = -1.0
		bestFeatures map[string]float64
	)

	// Ties keep the first-seen candidate; candidate order is retrieval order.
	for _, id := range candidateIDs {
		candidate := r.store[id]
		if candidate == nil {
			continue
		}
		score, features := r.scorer.Score(entry, candidate)
		if score > bestScore {
			bestID = id
			bestScore = score
			bestFeatures = features
		}
	}

	if bestFeatures == nil {
		// Every retrieved id was missing from the store.
		return &domain.ResolutionResult{
			Action:        domain.ActionCreateNew,
			FeatureScores: map[string]float64{},
		}
	}

	result := &domain.ResolutionResult{
		SimilarityScore: bestScore,
		FeatureScores:   bestFeatures,
	}

	switch {
	case bestScore >= r.cfg.AutoMergeThreshold:
		result.Action = domain.ActionAutoMerge
		result.ExistingID = &bestID
	case bestScore >= r.cfg.MergeWithFlagThreshold:
		result.Action = domain.ActionMergeWithFlag
		result.ExistingID = &bestID
	case bestScore >= r.cfg.ReviewThreshold:
		result.Action = domain.ActionFlagForReview
		result.ExistingID = &bestID
	default:
		// Sub-threshold candidates are discarded entirely.
		result.Action = domain.ActionCreateNew
	}

	return result
}

// ProcessBatch resolves entries independently, in input order. A failure on
// one entry never aborts the batch: that entry's result falls back to
// create_new with the failure recorded as an issue, and processing continues.
func (r *EntityResolver) ProcessBatch(entries []*domain.RawLexicalEntry) []*domain.ResolutionResult {
	results := make([]*domain.ResolutionResult, len(entries))
	for i, entry := range entries {
		results[i] = r.resolveIsolated(entry)
	}
	return results
}

// resolveIsolated runs Resolve with panic isolation for batch processing.
func (r *EntityResolver) resolveIsolated(entry *domain.RawLexicalEntry) (result *domain.ResolutionResult) {
	defer func() {
		if rec := recover(); rec != nil {
			result = &domain.ResolutionResult{
				Action:        domain.ActionCreateNew,
				FeatureScores: map[string]float64{},
				Issues:        []string{fmt.Sprintf("resolution failed: %v", rec)},
			}
		}
	}()

	if entry == nil {
		return &domain.ResolutionResult{
			Action:        domain.ActionCreateNew,
			FeatureScores: map[string]float64{},
			Issues:        []string{"resolution failed: nil entry"},
		}
	}

	return r.Resolve(entry)
}

// MergeLog records what a merge changed, for audit logging by the caller.
type MergeLog struct {
	TargetID     uuid.UUID `json:"target_id"`
	SourceID     uuid.UUID `json:"source_id"`
	MergedFields []string  `json:"merged_fields"`
}

// MergeLSRs merges source into target in place and returns a merge log.
// The target keeps its identity; source is left untouched and the caller is
// responsible for discarding it.
func (r *EntityResolver) MergeLSRs(target, source *domain.LSR) MergeLog {
	merged := target.MergeWith(source)
	return MergeLog{
		TargetID:     target.ID,
		SourceID:     source.ID,
		MergedFields: merged,
	}
}
