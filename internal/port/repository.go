package port

import (
	"context"

	"github.com/google/uuid"

	"billforge/internal/domain"
)

// ClientRepository defines the contract for client persistence.
// All query methods include userID to enforce per-user isolation at the data layer.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, userID, clientID uuid.UUID) (*domain.Client, error)
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Client, int, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, userID, clientID uuid.UUID) error
}

// ProductRepository defines the contract for product catalog persistence.
// All query methods include userID for per-user isolation.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, userID, productID uuid.UUID) (*domain.Product, error)
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Product, int, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, userID, productID uuid.UUID) error
}
