// Package lsr implements PostgreSQL persistence for lexical state records,
// their attestations, and the resolution review queue.
package lsr

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/glossarch/stratigraphy/internal/adapter/postgres"
	"github.com/glossarch/stratigraphy/internal/domain"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var lsrColumns = []string{
	"id", "version", "created_at", "updated_at",
	"form_orthographic", "form_normalized", "form_phonetic",
	"language_code", "language_name", "language_family", "language_branch", "period_label",
	"date_start", "date_end", "date_confidence",
	"definition_primary", "definitions_alternate", "semantic_fields",
	"part_of_speech", "conceptual_domain",
	"source_databases", "confidence_overall",
	"reconstruction_flag", "human_validated", "validation_notes",
}

var attestationColumns = []string{
	"id", "lsr_id", "text_excerpt", "text_source", "text_date",
	"date_confidence", "page_reference", "url",
}

// Repo persists LSRs. It runs against the querier it was constructed with
// unless a transaction is carried in the context, in which case the
// transaction wins.
type Repo struct {
	db postgres.Querier
}

// New creates a repository over the given querier (normally the pool).
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

func (r *Repo) q(ctx context.Context) postgres.Querier {
	return postgres.QuerierFromCtx(ctx, r.db)
}

// orEmpty maps a nil slice to an empty one; the array columns are NOT NULL.
func orEmpty(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

// Create inserts the LSR and its attestations.
func (r *Repo) Create(ctx context.Context, rec *domain.LSR) error {
	if rec == nil {
		return fmt.Errorf("lsr: %w: record is required", domain.ErrValidation)
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	sql, args, err := psql.Insert("lsrs").
		Columns(lsrColumns...).
		Values(
			rec.ID, rec.Version, rec.CreatedAt, rec.UpdatedAt,
			rec.FormOrthographic, rec.FormNormalized, rec.FormPhonetic,
			rec.LanguageCode, rec.LanguageName, rec.LanguageFamily, orEmpty(rec.LanguageBranch), rec.PeriodLabel,
			rec.DateStart, rec.DateEnd, rec.DateConfidence,
			rec.DefinitionPrimary, orEmpty(rec.DefinitionsAlternate), orEmpty(rec.SemanticFields),
			orEmpty(rec.PartOfSpeech), orEmpty(rec.ConceptualDomain),
			orEmpty(rec.SourceDatabases), rec.ConfidenceOverall,
			rec.ReconstructionFlag, rec.HumanValidated, rec.ValidationNotes,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.q(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "lsr", rec.ID)
	}

	return r.insertAttestations(ctx, rec.ID, rec.Attestations)
}

// Update rewrites the LSR row and reconciles its attestations. The WHERE
// clause enforces optimistic concurrency: the stored version must be exactly
// one below the record's, otherwise ErrConflict.
func (r *Repo) Update(ctx context.Context, rec *domain.LSR) error {
	if rec == nil {
		return fmt.Errorf("lsr: %w: record is required", domain.ErrValidation)
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	sql, args, err := psql.Update("lsrs").
		Set("version", rec.Version).
		Set("updated_at", rec.UpdatedAt).
		Set("form_orthographic", rec.FormOrthographic).
		Set("form_normalized", rec.FormNormalized).
		Set("form_phonetic", rec.FormPhonetic).
		Set("language_code", rec.LanguageCode).
		Set("language_name", rec.LanguageName).
		Set("language_family", rec.LanguageFamily).
		Set("language_branch", orEmpty(rec.LanguageBranch)).
		Set("period_label", rec.PeriodLabel).
		Set("date_start", rec.DateStart).
		Set("date_end", rec.DateEnd).
		Set("date_confidence", rec.DateConfidence).
		Set("definition_primary", rec.DefinitionPrimary).
		Set("definitions_alternate", orEmpty(rec.DefinitionsAlternate)).
		Set("semantic_fields", orEmpty(rec.SemanticFields)).
		Set("part_of_speech", orEmpty(rec.PartOfSpeech)).
		Set("conceptual_domain", orEmpty(rec.ConceptualDomain)).
		Set("source_databases", orEmpty(rec.SourceDatabases)).
		Set("confidence_overall", rec.ConfidenceOverall).
		Set("reconstruction_flag", rec.ReconstructionFlag).
		Set("human_validated", rec.HumanValidated).
		Set("validation_notes", rec.ValidationNotes).
		Where(squirrel.Eq{"id": rec.ID, "version": rec.Version - 1}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.q(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "lsr", rec.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lsr %s version %d: %w", rec.ID, rec.Version, domain.ErrConflict)
	}

	return r.insertAttestations(ctx, rec.ID, rec.Attestations)
}

// insertAttestations inserts the given attestations, ignoring ones already
// stored. Attestations are immutable once written, so DO NOTHING is safe.
func (r *Repo) insertAttestations(ctx context.Context, lsrID uuid.UUID, atts []domain.Attestation) error {
	if len(atts) == 0 {
		return nil
	}

	builder := psql.Insert("attestations").Columns(attestationColumns...)
	for _, att := range atts {
		builder = builder.Values(
			att.ID, lsrID, att.TextExcerpt, att.TextSource, att.TextDate,
			att.DateConfidence, att.PageReference, att.URL,
		)
	}
	sql, args, err := builder.Suffix("ON CONFLICT (id) DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("build attestation insert: %w", err)
	}

	if _, err := r.q(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "lsr", lsrID)
	}
	return nil
}

// GetByID fetches one LSR with its attestations.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.LSR, error) {
	sql, args, err := psql.Select(lsrColumns...).
		From("lsrs").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rec, err := scanLSR(r.q(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "lsr", id)
	}

	atts, err := r.attestationsFor(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	rec.Attestations = atts[id]

	return rec, nil
}

// FetchAll loads every LSR, keyed by ID, with attestations attached.
// Used to seed the resolver's candidate index.
func (r *Repo) FetchAll(ctx context.Context) (map[uuid.UUID]*domain.LSR, error) {
	return r.fetch(ctx, psql.Select(lsrColumns...).From("lsrs"))
}

// FetchByLanguage loads the LSRs for one language code, keyed by ID.
func (r *Repo) FetchByLanguage(ctx context.Context, code string) (map[uuid.UUID]*domain.LSR, error) {
	return r.fetch(ctx, psql.Select(lsrColumns...).
		From("lsrs").
		Where(squirrel.Eq{"language_code": code}))
}

func (r *Repo) fetch(ctx context.Context, query squirrel.SelectBuilder) (map[uuid.UUID]*domain.LSR, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "lsr", uuid.Nil)
	}
	defer rows.Close()

	store := make(map[uuid.UUID]*domain.LSR)
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		rec, err := scanLSR(rows)
		if err != nil {
			return nil, postgres.MapError(err, "lsr", uuid.Nil)
		}
		store[rec.ID] = rec
		ids = append(ids, rec.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "lsr", uuid.Nil)
	}

	if len(ids) == 0 {
		return store, nil
	}

	atts, err := r.attestationsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for id, list := range atts {
		if rec, ok := store[id]; ok {
			rec.Attestations = list
		}
	}

	return store, nil
}

func (r *Repo) attestationsFor(ctx context.Context, lsrIDs []uuid.UUID) (map[uuid.UUID][]domain.Attestation, error) {
	sql, args, err := psql.Select(attestationColumns...).
		From("attestations").
		Where(squirrel.Eq{"lsr_id": lsrIDs}).
		OrderBy("text_date NULLS LAST, id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build attestation select: %w", err)
	}

	rows, err := r.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "attestation", uuid.Nil)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]domain.Attestation)
	for rows.Next() {
		var att domain.Attestation
		if err := rows.Scan(
			&att.ID, &att.LSRID, &att.TextExcerpt, &att.TextSource, &att.TextDate,
			&att.DateConfidence, &att.PageReference, &att.URL,
		); err != nil {
			return nil, postgres.MapError(err, "attestation", uuid.Nil)
		}
		result[att.LSRID] = append(result[att.LSRID], att)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "attestation", uuid.Nil)
	}

	return result, nil
}

func scanLSR(row pgx.Row) (*domain.LSR, error) {
	var rec domain.LSR
	err := row.Scan(
		&rec.ID, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.FormOrthographic, &rec.FormNormalized, &rec.FormPhonetic,
		&rec.LanguageCode, &rec.LanguageName, &rec.LanguageFamily, &rec.LanguageBranch, &rec.PeriodLabel,
		&rec.DateStart, &rec.DateEnd, &rec.DateConfidence,
		&rec.DefinitionPrimary, &rec.DefinitionsAlternate, &rec.SemanticFields,
		&rec.PartOfSpeech, &rec.ConceptualDomain,
		&rec.SourceDatabases, &rec.ConfidenceOverall,
		&rec.ReconstructionFlag, &rec.HumanValidated, &rec.ValidationNotes,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// EnqueueReview records a flag_for_review decision for later human triage.
func (r *Repo) EnqueueReview(ctx context.Context, item domain.ReviewItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	scores, err := json.Marshal(item.FeatureScores)
	if err != nil {
		return fmt.Errorf("marshal feature scores: %w", err)
	}

	sql, args, err := psql.Insert("review_queue").
		Columns("id", "entry_form", "entry_language", "entry_source",
			"candidate_id", "similarity_score", "feature_scores", "issues").
		Values(item.ID, item.EntryForm, item.EntryLanguage, item.EntrySource,
			item.CandidateID, item.SimilarityScore, scores, orEmpty(item.Issues)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build review insert: %w", err)
	}

	if _, err := r.q(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "review_item", item.ID)
	}
	return nil
}
