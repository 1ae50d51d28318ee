package port

import (
	"context"

	"github.com/google/uuid"

	"billforge/internal/domain"
)

// DocumentFilter narrows document list queries. Zero values mean "any".
type DocumentFilter struct {
	Type   domain.DocumentType
	Status domain.DocumentStatus
}

// DocumentRepository defines the contract for document persistence.
// All query methods include userID to enforce per-user isolation at the data layer.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, userID, docID uuid.UUID) (*domain.Document, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter DocumentFilter, offset, limit int) ([]domain.Document, int, error)
	ListForExport(ctx context.Context, userID uuid.UUID, filter DocumentFilter) ([]domain.Document, error)
	// LatestIdentifier returns the identifier of the most recently created
	// document of the given type, or "" when the user has none.
	LatestIdentifier(ctx context.Context, userID uuid.UUID, docType domain.DocumentType) (string, error)
	Update(ctx context.Context, doc *domain.Document) error
	UpdateStatus(ctx context.Context, userID, docID uuid.UUID, status domain.DocumentStatus) error
	Delete(ctx context.Context, userID, docID uuid.UUID) error
}
