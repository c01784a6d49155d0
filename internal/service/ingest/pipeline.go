// Package ingest orchestrates the offline ingestion pipeline: parse source
// dumps, resolve every raw entry against the stored records, and apply the
// resolution decisions in batched transactions.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/glossarch/stratigraphy/internal/adapter/source/clld"
	"github.com/glossarch/stratigraphy/internal/adapter/source/wiktionary"
	"github.com/glossarch/stratigraphy/internal/domain"
	"github.com/glossarch/stratigraphy/internal/resolver"
)

// allPhases defines the canonical execution order.
var allPhases = []string{"wiktionary", "clld"}

// PhaseResult holds the outcome of a single pipeline phase.
type PhaseResult struct {
	Parsed   int
	Created  int
	Merged   int
	Flagged  int
	Reviewed int
	Errors   int
	Duration time.Duration
	Err      error
}

// Pipeline runs source phases sequentially against one resolver whose view
// of the store grows as records are created, so entries later in the run can
// match records created earlier in the same run.
type Pipeline struct {
	log     *slog.Logger
	repo    LSRRepo
	tx      TxRunner
	res     *resolver.EntityResolver
	cfg     Config
	results map[string]PhaseResult
}

// NewPipeline creates a pipeline. The resolver should be freshly constructed;
// Run seeds its store from the repository.
func NewPipeline(log *slog.Logger, repo LSRRepo, tx TxRunner, res *resolver.EntityResolver, cfg Config) *Pipeline {
	return &Pipeline{
		log:     log,
		repo:    repo,
		tx:      tx,
		res:     res,
		cfg:     cfg,
		results: make(map[string]PhaseResult),
	}
}

// Results returns phase results after Run completes.
func (p *Pipeline) Results() map[string]PhaseResult {
	return p.results
}

// HasErrors reports whether any phase failed or recorded row-level errors.
func (p *Pipeline) HasErrors() bool {
	for _, r := range p.results {
		if r.Err != nil || r.Errors > 0 {
			return true
		}
	}
	return false
}

// Run executes the pipeline. If phases is non-empty, only the listed phases
// run, still in canonical order. A phase failure is recorded and the next
// phase still runs.
func (p *Pipeline) Run(ctx context.Context, phases []string) error {
	store, err := p.repo.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("load store: %w", err)
	}
	p.res.SetLSRStore(store)
	p.log.Info("resolver store loaded", slog.Int("records", p.res.StoreSize()))

	toRun := allPhases
	if len(phases) > 0 {
		filter := make(map[string]bool, len(phases))
		for _, ph := range phases {
			filter[ph] = true
		}
		var filtered []string
		for _, ph := range allPhases {
			if filter[ph] {
				filtered = append(filtered, ph)
			}
		}
		toRun = filtered
	}

	for _, phase := range toRun {
		start := time.Now()
		p.log.Info("starting phase", slog.String("phase", phase))

		var result PhaseResult
		switch phase {
		case "wiktionary":
			result = p.runWiktionary(ctx)
		case "clld":
			result = p.runCLLD(ctx)
		}
		result.Duration = time.Since(start)
		p.results[phase] = result

		if result.Err != nil {
			p.log.Warn("phase failed",
				slog.String("phase", phase),
				slog.String("error", result.Err.Error()),
				slog.Duration("duration", result.Duration),
			)
		} else {
			p.log.Info("phase completed",
				slog.String("phase", phase),
				slog.Int("parsed", result.Parsed),
				slog.Int("created", result.Created),
				slog.Int("merged", result.Merged),
				slog.Int("flagged", result.Flagged),
				slog.Int("reviewed", result.Reviewed),
				slog.Int("errors", result.Errors),
				slog.Duration("duration", result.Duration),
			)
		}
	}

	p.log.Info("pipeline completed", slog.Int("phases_run", len(toRun)))
	return nil
}

func (p *Pipeline) runWiktionary(ctx context.Context) PhaseResult {
	if p.cfg.WiktionaryPath == "" {
		return PhaseResult{Err: fmt.Errorf("wiktionary path not configured")}
	}

	entries, stats, err := wiktionary.ParseFile(p.cfg.WiktionaryPath, wiktionary.Options{
		Languages:  p.cfg.Languages,
		MaxEntries: p.cfg.MaxEntries,
	})
	if err != nil {
		return PhaseResult{Err: fmt.Errorf("parse wiktionary: %w", err)}
	}
	p.log.Info("wiktionary parsed",
		slog.Int("entries", len(entries)),
		slog.Int("total_lines", stats.TotalLines),
		slog.Int("malformed_lines", stats.MalformedLines),
	)

	return p.resolveAndApply(ctx, entries)
}

func (p *Pipeline) runCLLD(ctx context.Context) PhaseResult {
	if p.cfg.CLLDPath == "" {
		return PhaseResult{Err: fmt.Errorf("clld path not configured")}
	}

	dataset := p.cfg.CLLDDataset
	if dataset == "" {
		dataset = "clld"
	}

	entries, stats, err := clld.ParseFile(p.cfg.CLLDPath, dataset)
	if err != nil {
		return PhaseResult{Err: fmt.Errorf("parse clld: %w", err)}
	}
	if p.cfg.MaxEntries > 0 && len(entries) > p.cfg.MaxEntries {
		entries = entries[:p.cfg.MaxEntries]
	}
	p.log.Info("clld parsed",
		slog.Int("entries", len(entries)),
		slog.Int("skipped_rows", stats.SkippedRows),
	)

	return p.resolveAndApply(ctx, entries)
}

// resolveAndApply resolves entries in input order and applies each decision,
// one transaction per batch. A failing entry is counted and skipped; it never
// aborts the phase.
func (p *Pipeline) resolveAndApply(ctx context.Context, entries []domain.RawLexicalEntry) PhaseResult {
	result := PhaseResult{Parsed: len(entries)}

	batchSize := p.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}

	for start := 0; start < len(entries); start += batchSize {
		end := min(start+batchSize, len(entries))
		batch := entries[start:end]

		if p.cfg.DryRun {
			for i := range batch {
				p.applyDry(&batch[i], &result)
			}
			continue
		}

		err := p.tx.RunInTx(ctx, func(txCtx context.Context) error {
			for i := range batch {
				if err := p.apply(txCtx, &batch[i], &result); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			// The whole batch rolled back.
			p.log.Warn("batch failed",
				slog.Int("batch_start", start),
				slog.String("error", err.Error()),
			)
			result.Errors += len(batch)
		}
	}

	return result
}

// apply resolves one entry and executes its decision inside the caller's
// transaction.
func (p *Pipeline) apply(ctx context.Context, entry *domain.RawLexicalEntry, result *PhaseResult) error {
	decision := p.res.Resolve(entry)

	switch decision.Action {
	case domain.ActionCreateNew:
		rec := resolver.ConvertEntryToLSR(entry)
		if err := p.repo.Create(ctx, rec); err != nil {
			return fmt.Errorf("create %q: %w", entry.Form, err)
		}
		p.res.AddLSR(rec)
		result.Created++

	case domain.ActionAutoMerge, domain.ActionMergeWithFlag:
		target := p.res.LSR(*decision.ExistingID)
		if target == nil {
			return fmt.Errorf("merge %q: target %s missing from store", entry.Form, decision.ExistingID)
		}
		incoming := resolver.ConvertEntryToLSR(entry)
		mergeLog := p.res.MergeLSRs(target, incoming)
		if err := p.repo.Update(ctx, target); err != nil {
			return fmt.Errorf("merge %q into %s: %w", entry.Form, target.ID, err)
		}
		p.log.Debug("merged entry",
			slog.String("form", entry.Form),
			slog.String("target_id", mergeLog.TargetID.String()),
			slog.Any("merged_fields", mergeLog.MergedFields),
		)
		result.Merged++

		if decision.Action == domain.ActionMergeWithFlag {
			if err := p.repo.EnqueueReview(ctx, reviewItem(entry, decision, "merged automatically; audit requested")); err != nil {
				return fmt.Errorf("flag merge of %q: %w", entry.Form, err)
			}
			result.Flagged++
		}

	case domain.ActionFlagForReview:
		if err := p.repo.EnqueueReview(ctx, reviewItem(entry, decision)); err != nil {
			return fmt.Errorf("enqueue review for %q: %w", entry.Form, err)
		}
		result.Reviewed++
	}

	return nil
}

// applyDry counts the decision without touching storage. New records are
// still added to the resolver's in-memory view so the dry run mirrors the
// real run's intra-batch matching.
func (p *Pipeline) applyDry(entry *domain.RawLexicalEntry, result *PhaseResult) {
	decision := p.res.Resolve(entry)

	switch decision.Action {
	case domain.ActionCreateNew:
		p.res.AddLSR(resolver.ConvertEntryToLSR(entry))
		result.Created++
	case domain.ActionAutoMerge:
		result.Merged++
	case domain.ActionMergeWithFlag:
		result.Merged++
		result.Flagged++
	case domain.ActionFlagForReview:
		result.Reviewed++
	}
}

func reviewItem(entry *domain.RawLexicalEntry, decision *domain.ResolutionResult, extraIssues ...string) domain.ReviewItem {
	return domain.ReviewItem{
		EntryForm:       entry.Form,
		EntryLanguage:   entry.ResolvedLanguageCode(),
		EntrySource:     entry.SourceName,
		CandidateID:     decision.ExistingID,
		SimilarityScore: decision.SimilarityScore,
		FeatureScores:   decision.FeatureScores,
		Issues:          append(append([]string(nil), decision.Issues...), extraIssues...),
	}
}
