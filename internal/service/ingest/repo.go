package ingest

import (
	"context"

	"github.com/google/uuid"

	"github.com/glossarch/stratigraphy/internal/domain"
)

// LSRRepo is the persistence surface the pipeline needs. Satisfied by the
// postgres lsr repository.
type LSRRepo interface {
	FetchAll(ctx context.Context) (map[uuid.UUID]*domain.LSR, error)
	Create(ctx context.Context, rec *domain.LSR) error
	Update(ctx context.Context, rec *domain.LSR) error
	EnqueueReview(ctx context.Context, item domain.ReviewItem) error
}

// TxRunner runs a callback inside one database transaction. Satisfied by
// postgres.TxManager.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
