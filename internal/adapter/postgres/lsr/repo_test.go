package lsr

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossarch/stratigraphy/internal/domain"
)

func newMockRepo(t *testing.T) (*Repo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return New(mock), mock
}

func sampleLSR() *domain.LSR {
	rec := domain.NewLSR()
	rec.FormOrthographic = "stān"
	rec.NormalizeForm()
	rec.LanguageCode = "ang"
	rec.LanguageName = "Old English"
	rec.DefinitionPrimary = "stone"
	rec.SourceDatabases = []string{"wiktionary"}
	return rec
}

func lsrRow(rec *domain.LSR) *pgxmock.Rows {
	return pgxmock.NewRows(lsrColumns).AddRow(
		rec.ID, rec.Version, rec.CreatedAt, rec.UpdatedAt,
		rec.FormOrthographic, rec.FormNormalized, rec.FormPhonetic,
		rec.LanguageCode, rec.LanguageName, rec.LanguageFamily, rec.LanguageBranch, rec.PeriodLabel,
		rec.DateStart, rec.DateEnd, rec.DateConfidence,
		rec.DefinitionPrimary, rec.DefinitionsAlternate, rec.SemanticFields,
		rec.PartOfSpeech, rec.ConceptualDomain,
		rec.SourceDatabases, rec.ConfidenceOverall,
		rec.ReconstructionFlag, rec.HumanValidated, rec.ValidationNotes,
	)
}

func TestRepoCreate(t *testing.T) {
	repo, mock := newMockRepo(t)

	rec := sampleLSR()
	date := 900
	rec.AddAttestation(domain.NewAttestation("se stān wæs micel", "beowulf-ms", &date))

	mock.ExpectExec(`INSERT INTO lsrs`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO attestations`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoCreateNil(t *testing.T) {
	repo, _ := newMockRepo(t)

	err := repo.Create(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRepoCreateInvalid(t *testing.T) {
	repo, _ := newMockRepo(t)

	rec := sampleLSR()
	rec.Version = 0

	err := repo.Create(context.Background(), rec)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRepoUpdateVersionConflict(t *testing.T) {
	repo, mock := newMockRepo(t)

	rec := sampleLSR()
	rec.Version = 3

	// Stored version is not 2, so no row matches.
	mock.ExpectExec(`UPDATE lsrs`).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), rec)
	assert.ErrorIs(t, err, domain.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoUpdate(t *testing.T) {
	repo, mock := newMockRepo(t)

	rec := sampleLSR()
	rec.Version = 2

	mock.ExpectExec(`UPDATE lsrs`).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	// No attestations, so no second statement.
	require.NoError(t, repo.Update(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)

	rec := sampleLSR()
	date := 900
	att := domain.NewAttestation("se stān wæs micel", "beowulf-ms", &date)
	att.LSRID = rec.ID

	mock.ExpectQuery(`SELECT .+ FROM lsrs`).
		WithArgs(rec.ID).
		WillReturnRows(lsrRow(rec))
	mock.ExpectQuery(`SELECT .+ FROM attestations`).
		WillReturnRows(pgxmock.NewRows(attestationColumns).AddRow(
			att.ID, att.LSRID, att.TextExcerpt, att.TextSource, att.TextDate,
			att.DateConfidence, att.PageReference, att.URL,
		))

	got, err := repo.GetByID(context.Background(), rec.ID)
	require.NoError(t, err)

	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "stan", got.FormNormalized)
	require.Len(t, got.Attestations, 1)
	assert.Equal(t, att.ID, got.Attestations[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	id := uuid.New()
	mock.ExpectQuery(`SELECT .+ FROM lsrs`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepoFetchAll(t *testing.T) {
	repo, mock := newMockRepo(t)

	a := sampleLSR()
	b := sampleLSR()
	b.FormOrthographic = "stone"
	b.NormalizeForm()
	b.LanguageCode = "enm"

	mock.ExpectQuery(`SELECT .+ FROM lsrs`).
		WillReturnRows(lsrRow(a).AddRow(
			b.ID, b.Version, b.CreatedAt, b.UpdatedAt,
			b.FormOrthographic, b.FormNormalized, b.FormPhonetic,
			b.LanguageCode, b.LanguageName, b.LanguageFamily, b.LanguageBranch, b.PeriodLabel,
			b.DateStart, b.DateEnd, b.DateConfidence,
			b.DefinitionPrimary, b.DefinitionsAlternate, b.SemanticFields,
			b.PartOfSpeech, b.ConceptualDomain,
			b.SourceDatabases, b.ConfidenceOverall,
			b.ReconstructionFlag, b.HumanValidated, b.ValidationNotes,
		))
	mock.ExpectQuery(`SELECT .+ FROM attestations`).
		WillReturnRows(pgxmock.NewRows(attestationColumns))

	store, err := repo.FetchAll(context.Background())
	require.NoError(t, err)

	require.Len(t, store, 2)
	assert.Equal(t, "stan", store[a.ID].FormNormalized)
	assert.Equal(t, "stone", store[b.ID].FormNormalized)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoFetchByLanguage(t *testing.T) {
	repo, mock := newMockRepo(t)

	rec := sampleLSR()
	mock.ExpectQuery(`SELECT .+ FROM lsrs WHERE language_code = \$1`).
		WithArgs("ang").
		WillReturnRows(lsrRow(rec))
	mock.ExpectQuery(`SELECT .+ FROM attestations`).
		WillReturnRows(pgxmock.NewRows(attestationColumns))

	store, err := repo.FetchByLanguage(context.Background(), "ang")
	require.NoError(t, err)

	require.Len(t, store, 1)
	assert.Equal(t, "stan", store[rec.ID].FormNormalized)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoFetchAllEmpty(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM lsrs`).
		WillReturnRows(pgxmock.NewRows(lsrColumns))

	store, err := repo.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, store)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoEnqueueReview(t *testing.T) {
	repo, mock := newMockRepo(t)

	candidate := uuid.New()
	item := domain.ReviewItem{
		EntryForm:       "stan",
		EntryLanguage:   "ang",
		EntrySource:     "clld_cognates",
		CandidateID:     &candidate,
		SimilarityScore: 0.78,
		FeatureScores:   map[string]float64{"form_exact": 1.0},
	}

	mock.ExpectExec(`INSERT INTO review_queue`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.EnqueueReview(context.Background(), item))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoCreateMapsUniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)

	rec := sampleLSR()
	mock.ExpectExec(`INSERT INTO lsrs`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), rec)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}
