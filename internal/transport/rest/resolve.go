// Package rest exposes entity resolution over HTTP: advisory resolve
// endpoints, stored record lookup, review flagging, and health probes.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/glossarch/stratigraphy/internal/domain"
)

// maxBatchSize bounds one resolve-batch request.
const maxBatchSize = 1000

// Resolver is the service surface the resolve endpoints need.
type Resolver interface {
	Resolve(ctx context.Context, entry *domain.RawLexicalEntry) (*domain.ResolutionResult, error)
	ResolveBatch(ctx context.Context, entries []*domain.RawLexicalEntry) ([]*domain.ResolutionResult, error)
	FlagForReview(ctx context.Context, entry *domain.RawLexicalEntry, decision *domain.ResolutionResult) error
	Reload(ctx context.Context) error
	StoreSize() int
}

// ResolveHandler serves the resolution endpoints.
type ResolveHandler struct {
	svc Resolver
}

// NewResolveHandler creates a ResolveHandler.
func NewResolveHandler(svc Resolver) *ResolveHandler {
	return &ResolveHandler{svc: svc}
}

// entryRequest is the wire form of a raw lexical entry.
type entryRequest struct {
	SourceName   string             `json:"source_name"`
	SourceID     string             `json:"source_id"`
	Form         string             `json:"form"`
	FormPhonetic string             `json:"form_phonetic"`
	Language     string             `json:"language"`
	LanguageCode string             `json:"language_code"`
	Etymology    string             `json:"etymology"`
	Definitions  []string           `json:"definitions"`
	PartOfSpeech []string           `json:"part_of_speech"`
	DateAttested *int               `json:"date_attested"`
	Attestations []attestationInput `json:"attestations"`
}

type attestationInput struct {
	Excerpt string `json:"excerpt"`
	Source  string `json:"source"`
	Date    *int   `json:"date"`
}

func (req *entryRequest) toDomain() *domain.RawLexicalEntry {
	entry := &domain.RawLexicalEntry{
		SourceName:   req.SourceName,
		SourceID:     req.SourceID,
		Form:         req.Form,
		FormPhonetic: req.FormPhonetic,
		Language:     req.Language,
		LanguageCode: req.LanguageCode,
		Etymology:    req.Etymology,
		Definitions:  req.Definitions,
		PartOfSpeech: req.PartOfSpeech,
		DateAttested: req.DateAttested,
	}
	for _, att := range req.Attestations {
		entry.Attestations = append(entry.Attestations, domain.RawAttestation{
			Excerpt: att.Excerpt,
			Source:  att.Source,
			Date:    att.Date,
		})
	}
	return entry
}

func (req *entryRequest) validate() error {
	if req.Form == "" {
		return fmt.Errorf("%w: form is required", domain.ErrValidation)
	}
	if req.Language == "" && req.LanguageCode == "" {
		return fmt.Errorf("%w: language or language_code is required", domain.ErrValidation)
	}
	return nil
}

// Resolve handles POST /v1/resolve: classify one entry against the store.
// Advisory only; nothing is written.
func (h *ResolveHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: decode body: %s", domain.ErrValidation, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.svc.Resolve(r.Context(), req.toDomain())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type batchRequest struct {
	Entries []entryRequest `json:"entries"`
}

type batchResponse struct {
	Results []*domain.ResolutionResult `json:"results"`
}

// ResolveBatch handles POST /v1/resolve/batch. Entries are resolved
// independently in input order; a bad entry yields a create_new result with
// issues rather than failing the batch.
func (h *ResolveHandler) ResolveBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: decode body: %s", domain.ErrValidation, err))
		return
	}
	if len(req.Entries) == 0 {
		writeError(w, fmt.Errorf("%w: entries are required", domain.ErrValidation))
		return
	}
	if len(req.Entries) > maxBatchSize {
		writeError(w, fmt.Errorf("%w: batch exceeds %d entries", domain.ErrValidation, maxBatchSize))
		return
	}

	entries := make([]*domain.RawLexicalEntry, len(req.Entries))
	for i := range req.Entries {
		entries[i] = req.Entries[i].toDomain()
	}

	results, err := h.svc.ResolveBatch(r.Context(), entries)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, batchResponse{Results: results})
}

type flagRequest struct {
	Entry    entryRequest             `json:"entry"`
	Decision *domain.ResolutionResult `json:"decision"`
}

// Flag handles POST /v1/review/flag: queue an entry and a previously
// obtained decision for human triage.
func (h *ResolveHandler) Flag(w http.ResponseWriter, r *http.Request) {
	var req flagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: decode body: %s", domain.ErrValidation, err))
		return
	}
	if err := req.Entry.validate(); err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.FlagForReview(r.Context(), req.Entry.toDomain(), req.Decision); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

type reloadResponse struct {
	Records int `json:"records"`
}

// Reload handles POST /v1/resolver/reload: refresh the resolver's store view
// from the database.
func (h *ResolveHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reload(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reloadResponse{Records: h.svc.StoreSize()})
}
