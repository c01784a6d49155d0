package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/glossarch/stratigraphy/internal/domain"
)

// LSRReader is the service surface the record endpoints need.
type LSRReader interface {
	GetLSR(ctx context.Context, id uuid.UUID) (*domain.LSR, error)
}

// LSRHandler serves stored record lookups.
type LSRHandler struct {
	svc LSRReader
}

// NewLSRHandler creates an LSRHandler.
func NewLSRHandler(svc LSRReader) *LSRHandler {
	return &LSRHandler{svc: svc}
}

// lsrResponse is the wire form of a stored record.
type lsrResponse struct {
	ID        uuid.UUID `json:"id"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FormOrthographic string `json:"form_orthographic"`
	FormNormalized   string `json:"form_normalized"`
	FormPhonetic     string `json:"form_phonetic,omitempty"`

	LanguageCode string `json:"language_code"`
	LanguageName string `json:"language_name,omitempty"`
	PeriodLabel  string `json:"period_label,omitempty"`

	DateStart      *int    `json:"date_start,omitempty"`
	DateEnd        *int    `json:"date_end,omitempty"`
	DateConfidence float64 `json:"date_confidence"`

	DefinitionPrimary    string   `json:"definition_primary,omitempty"`
	DefinitionsAlternate []string `json:"definitions_alternate,omitempty"`
	PartOfSpeech         []string `json:"part_of_speech,omitempty"`

	Attestations []attestationResponse `json:"attestations,omitempty"`

	SourceDatabases    []string `json:"source_databases,omitempty"`
	ConfidenceOverall  float64  `json:"confidence_overall"`
	ReconstructionFlag bool     `json:"reconstruction_flag"`
	HumanValidated     bool     `json:"human_validated"`
}

type attestationResponse struct {
	ID          uuid.UUID `json:"id"`
	TextExcerpt string    `json:"text_excerpt"`
	TextSource  string    `json:"text_source"`
	TextDate    *int      `json:"text_date,omitempty"`
}

func toLSRResponse(rec *domain.LSR) lsrResponse {
	resp := lsrResponse{
		ID:                   rec.ID,
		Version:              rec.Version,
		CreatedAt:            rec.CreatedAt,
		UpdatedAt:            rec.UpdatedAt,
		FormOrthographic:     rec.FormOrthographic,
		FormNormalized:       rec.FormNormalized,
		FormPhonetic:         rec.FormPhonetic,
		LanguageCode:         rec.LanguageCode,
		LanguageName:         rec.LanguageName,
		PeriodLabel:          rec.PeriodLabel,
		DateStart:            rec.DateStart,
		DateEnd:              rec.DateEnd,
		DateConfidence:       rec.DateConfidence,
		DefinitionPrimary:    rec.DefinitionPrimary,
		DefinitionsAlternate: rec.DefinitionsAlternate,
		PartOfSpeech:         rec.PartOfSpeech,
		SourceDatabases:      rec.SourceDatabases,
		ConfidenceOverall:    rec.ConfidenceOverall,
		ReconstructionFlag:   rec.ReconstructionFlag,
		HumanValidated:       rec.HumanValidated,
	}
	for _, att := range rec.Attestations {
		resp.Attestations = append(resp.Attestations, attestationResponse{
			ID:          att.ID,
			TextExcerpt: att.TextExcerpt,
			TextSource:  att.TextSource,
			TextDate:    att.TextDate,
		})
	}
	return resp
}

// Get handles GET /v1/lsrs/{id}.
func (h *LSRHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid id: %s", domain.ErrValidation, err))
		return
	}

	rec, err := h.svc.GetLSR(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toLSRResponse(rec))
}
