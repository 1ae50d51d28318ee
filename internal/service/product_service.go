package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"billforge/internal/domain"
	"billforge/internal/match"
	"billforge/internal/money"
	"billforge/internal/port"
)

// CreateProductInput is the DTO for creating a catalog product. UnitPrice and
// TaxRate are decimal strings; malformed values are stored as "0" via the
// lenient parse.
type CreateProductInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	UnitPrice   string `json:"unit_price"`
	TaxRate     string `json:"tax_rate"`
}

// UpdateProductInput is the DTO for updating a product. Nil fields keep their
// stored value.
type UpdateProductInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	UnitPrice   *string `json:"unit_price"`
	TaxRate     *string `json:"tax_rate"`
}

// MatchProductInput is an extracted product mention to resolve against the
// user's catalog.
type MatchProductInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProductService defines the product catalog contract.
type ProductService interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateProductInput) (*domain.Product, error)
	GetByID(ctx context.Context, userID, productID uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Product, int, error)
	Update(ctx context.Context, userID, productID uuid.UUID, input UpdateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, userID, productID uuid.UUID) error
	Match(ctx context.Context, userID uuid.UUID, input MatchProductInput) (*match.Result, error)
}

type productService struct {
	repo   port.ProductRepository
	logger *zap.Logger
}

// NewProductService creates a new ProductService implementation.
func NewProductService(repo port.ProductRepository, logger *zap.Logger) ProductService {
	return &productService{repo: repo, logger: logger}
}

func (s *productService) Create(ctx context.Context, userID uuid.UUID, input CreateProductInput) (*domain.Product, error) {
	product := &domain.Product{
		UserID:      userID,
		Name:        input.Name,
		Description: input.Description,
		UnitPrice:   normalizeAmount(input.UnitPrice),
		TaxRate:     normalizeAmount(input.TaxRate),
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) GetByID(ctx context.Context, userID, productID uuid.UUID) (*domain.Product, error) {
	return s.repo.GetByID(ctx, userID, productID)
}

func (s *productService) List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Product, int, error) {
	return s.repo.ListByUser(ctx, userID, offset, limit)
}

func (s *productService) Update(ctx context.Context, userID, productID uuid.UUID, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.UnitPrice != nil {
		product.UnitPrice = normalizeAmount(*input.UnitPrice)
	}
	if input.TaxRate != nil {
		product.TaxRate = normalizeAmount(*input.TaxRate)
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, userID, productID uuid.UUID) error {
	return s.repo.Delete(ctx, userID, productID)
}

func (s *productService) Match(ctx context.Context, userID uuid.UUID, input MatchProductInput) (*match.Result, error) {
	products, _, err := s.repo.ListByUser(ctx, userID, 0, matchCandidateLimit)
	if err != nil {
		return nil, err
	}

	extracted := match.ExtractedEntity{
		Name:        input.Name,
		Description: input.Description,
	}
	result := match.Match(extracted, match.ProductCandidates(products), domain.MatchKindProduct)
	return &result, nil
}

// normalizeAmount canonicalizes a decimal-string input: trimmed separators,
// malformed or empty input stored as zero.
func normalizeAmount(s string) string {
	return money.ParseAmount(s).String()
}
