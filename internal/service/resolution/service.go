// Package resolution exposes entity resolution as an online service: a
// resolver with a periodically reloadable view of the stored records, safe
// for concurrent request handlers.
package resolution

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/glossarch/stratigraphy/internal/domain"
	"github.com/glossarch/stratigraphy/internal/resolver"
)

// Repo is the persistence surface the service needs.
type Repo interface {
	FetchAll(ctx context.Context) (map[uuid.UUID]*domain.LSR, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LSR, error)
	EnqueueReview(ctx context.Context, item domain.ReviewItem) error
}

// Service serializes access to one resolver. The resolver itself is
// single-threaded; the lock makes it safe under concurrent handlers.
// Resolution reads take the read lock, Reload takes the write lock.
type Service struct {
	log  *slog.Logger
	repo Repo

	mu  sync.RWMutex
	res *resolver.EntityResolver
}

// New creates the service. Call Reload before serving traffic; until then
// every entry resolves to create_new against an empty store.
func New(log *slog.Logger, repo Repo, cfg resolver.Config) *Service {
	return &Service{
		log:  log,
		repo: repo,
		res:  resolver.New(cfg),
	}
}

// Reload replaces the resolver's store view from the repository.
func (s *Service) Reload(ctx context.Context) error {
	store, err := s.repo.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("resolution: reload store: %w", err)
	}

	s.mu.Lock()
	s.res.SetLSRStore(store)
	size := s.res.StoreSize()
	s.mu.Unlock()

	s.log.Info("resolver store reloaded", slog.Int("records", size))
	return nil
}

// StoreSize returns the number of records in the current store view.
func (s *Service) StoreSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.res.StoreSize()
}

// Resolve classifies one entry against the current store view. Advisory:
// nothing is written; callers act on the returned decision.
func (s *Service) Resolve(ctx context.Context, entry *domain.RawLexicalEntry) (*domain.ResolutionResult, error) {
	if entry == nil {
		return nil, fmt.Errorf("resolution: %w: entry is required", domain.ErrValidation)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.res.Resolve(entry), nil
}

// ResolveBatch classifies entries independently, preserving input order.
func (s *Service) ResolveBatch(ctx context.Context, entries []*domain.RawLexicalEntry) ([]*domain.ResolutionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.res.ProcessBatch(entries), nil
}

// GetLSR fetches one stored record by id.
func (s *Service) GetLSR(ctx context.Context, id uuid.UUID) (*domain.LSR, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("resolution: %w: id is required", domain.ErrValidation)
	}
	return s.repo.GetByID(ctx, id)
}

// FlagForReview queues an entry and its decision for human triage.
func (s *Service) FlagForReview(ctx context.Context, entry *domain.RawLexicalEntry, decision *domain.ResolutionResult) error {
	if entry == nil || decision == nil {
		return fmt.Errorf("resolution: %w: entry and decision are required", domain.ErrValidation)
	}

	item := domain.ReviewItem{
		EntryForm:       entry.Form,
		EntryLanguage:   entry.ResolvedLanguageCode(),
		EntrySource:     entry.SourceName,
		CandidateID:     decision.ExistingID,
		SimilarityScore: decision.SimilarityScore,
		FeatureScores:   decision.FeatureScores,
		Issues:          decision.Issues,
	}
	return s.repo.EnqueueReview(ctx, item)
}
