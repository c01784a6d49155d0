package resolution

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossarch/stratigraphy/internal/domain"
	"github.com/glossarch/stratigraphy/internal/resolver"
)

type stubRepo struct {
	store    map[uuid.UUID]*domain.LSR
	reviews  []domain.ReviewItem
	fetchErr error
}

func (r *stubRepo) FetchAll(_ context.Context) (map[uuid.UUID]*domain.LSR, error) {
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	return r.store, nil
}

func (r *stubRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.LSR, error) {
	if rec, ok := r.store[id]; ok {
		return rec, nil
	}
	return nil, domain.ErrNotFound
}

func (r *stubRepo) EnqueueReview(_ context.Context, item domain.ReviewItem) error {
	r.reviews = append(r.reviews, item)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func storedRecord() *domain.LSR {
	rec := domain.NewLSR()
	rec.FormOrthographic = "stone"
	rec.NormalizeForm()
	rec.LanguageCode = "eng"
	rec.DefinitionPrimary = "a hard earthen substance"
	rec.SourceDatabases = []string{"wiktionary"}
	return rec
}

func TestServiceResolveAgainstStore(t *testing.T) {
	rec := storedRecord()
	repo := &stubRepo{store: map[uuid.UUID]*domain.LSR{rec.ID: rec}}
	svc := New(quietLogger(), repo, resolver.DefaultConfig())
	require.NoError(t, svc.Reload(context.Background()))

	entry := &domain.RawLexicalEntry{
		SourceName:   "wiktionary",
		Form:         "stone",
		LanguageCode: "eng",
		Definitions:  []string{"a hard earthen substance"},
	}

	result, err := svc.Resolve(context.Background(), entry)
	require.NoError(t, err)

	assert.Equal(t, domain.ActionAutoMerge, result.Action)
	require.NotNil(t, result.ExistingID)
	assert.Equal(t, rec.ID, *result.ExistingID)
}

func TestServiceResolveBeforeReload(t *testing.T) {
	repo := &stubRepo{store: map[uuid.UUID]*domain.LSR{}}
	svc := New(quietLogger(), repo, resolver.DefaultConfig())

	result, err := svc.Resolve(context.Background(), &domain.RawLexicalEntry{
		Form:         "stone",
		LanguageCode: "eng",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ActionCreateNew, result.Action)
}

func TestServiceResolveNilEntry(t *testing.T) {
	svc := New(quietLogger(), &stubRepo{}, resolver.DefaultConfig())

	_, err := svc.Resolve(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestServiceReloadError(t *testing.T) {
	repo := &stubRepo{fetchErr: errors.New("connection refused")}
	svc := New(quietLogger(), repo, resolver.DefaultConfig())

	err := svc.Reload(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reload store")
}

func TestServiceResolveBatchPreservesOrder(t *testing.T) {
	repo := &stubRepo{store: map[uuid.UUID]*domain.LSR{}}
	svc := New(quietLogger(), repo, resolver.DefaultConfig())
	require.NoError(t, svc.Reload(context.Background()))

	entries := []*domain.RawLexicalEntry{
		{Form: "stone", LanguageCode: "eng"},
		nil,
		{Form: "pierre", LanguageCode: "fra"},
	}

	results, err := svc.ResolveBatch(context.Background(), entries)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, domain.ActionCreateNew, results[0].Action)
	assert.Equal(t, domain.ActionCreateNew, results[1].Action)
	assert.NotEmpty(t, results[1].Issues)
	assert.Equal(t, domain.ActionCreateNew, results[2].Action)
}

func TestServiceGetLSR(t *testing.T) {
	rec := storedRecord()
	repo := &stubRepo{store: map[uuid.UUID]*domain.LSR{rec.ID: rec}}
	svc := New(quietLogger(), repo, resolver.DefaultConfig())

	got, err := svc.GetLSR(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	_, err = svc.GetLSR(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetLSR(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestServiceFlagForReview(t *testing.T) {
	repo := &stubRepo{store: map[uuid.UUID]*domain.LSR{}}
	svc := New(quietLogger(), repo, resolver.DefaultConfig())

	candidate := uuid.New()
	entry := &domain.RawLexicalEntry{Form: "stan", LanguageCode: "ang", SourceName: "clld_asjp"}
	decision := &domain.ResolutionResult{
		Action:          domain.ActionFlagForReview,
		ExistingID:      &candidate,
		SimilarityScore: 0.78,
	}

	require.NoError(t, svc.FlagForReview(context.Background(), entry, decision))
	require.Len(t, repo.reviews, 1)
	assert.Equal(t, "stan", repo.reviews[0].EntryForm)
	assert.Equal(t, &candidate, repo.reviews[0].CandidateID)
}

func TestServiceConcurrentResolve(t *testing.T) {
	rec := storedRecord()
	repo := &stubRepo{store: map[uuid.UUID]*domain.LSR{rec.ID: rec}}
	svc := New(quietLogger(), repo, resolver.DefaultConfig())
	require.NoError(t, svc.Reload(context.Background()))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, err := svc.Resolve(context.Background(), &domain.RawLexicalEntry{
					Form:         "stone",
					LanguageCode: "eng",
					Definitions:  []string{"a hard earthen substance"},
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}
