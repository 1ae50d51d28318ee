package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"billforge/internal/domain"
	"billforge/internal/match"
	"billforge/internal/port"
)

// matchCandidateLimit caps how many stored records a single match request
// scores. Beyond this a user's records no longer fit a brute-force scan and
// the product needs search infrastructure, not a bigger limit.
const matchCandidateLimit = 500

// CreateClientInput is the DTO for creating a client.
type CreateClientInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	TaxID   string `json:"tax_id"`
}

// UpdateClientInput is the DTO for updating a client. Nil fields keep their
// stored value.
type UpdateClientInput struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	TaxID   *string `json:"tax_id"`
}

// MatchClientInput is an extracted client mention to resolve against the
// user's stored clients. Every field is optional; empty fields contribute
// nothing to the score.
type MatchClientInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	TaxID   string `json:"tax_id"`
}

// ClientService defines the client management contract.
type ClientService interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateClientInput) (*domain.Client, error)
	GetByID(ctx context.Context, userID, clientID uuid.UUID) (*domain.Client, error)
	List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Client, int, error)
	Update(ctx context.Context, userID, clientID uuid.UUID, input UpdateClientInput) (*domain.Client, error)
	Delete(ctx context.Context, userID, clientID uuid.UUID) error
	Match(ctx context.Context, userID uuid.UUID, input MatchClientInput) (*match.Result, error)
}

type clientService struct {
	repo   port.ClientRepository
	logger *zap.Logger
}

// NewClientService creates a new ClientService implementation.
func NewClientService(repo port.ClientRepository, logger *zap.Logger) ClientService {
	return &clientService{repo: repo, logger: logger}
}

func (s *clientService) Create(ctx context.Context, userID uuid.UUID, input CreateClientInput) (*domain.Client, error) {
	client := &domain.Client{
		UserID:  userID,
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Address: input.Address,
		TaxID:   input.TaxID,
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *clientService) GetByID(ctx context.Context, userID, clientID uuid.UUID) (*domain.Client, error) {
	return s.repo.GetByID(ctx, userID, clientID)
}

func (s *clientService) List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Client, int, error) {
	return s.repo.ListByUser(ctx, userID, offset, limit)
}

func (s *clientService) Update(ctx context.Context, userID, clientID uuid.UUID, input UpdateClientInput) (*domain.Client, error) {
	client, err := s.repo.GetByID(ctx, userID, clientID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		client.Name = *input.Name
	}
	if input.Email != nil {
		client.Email = *input.Email
	}
	if input.Phone != nil {
		client.Phone = *input.Phone
	}
	if input.Address != nil {
		client.Address = *input.Address
	}
	if input.TaxID != nil {
		client.TaxID = *input.TaxID
	}

	if err := s.repo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *clientService) Delete(ctx context.Context, userID, clientID uuid.UUID) error {
	return s.repo.Delete(ctx, userID, clientID)
}

func (s *clientService) Match(ctx context.Context, userID uuid.UUID, input MatchClientInput) (*match.Result, error) {
	clients, _, err := s.repo.ListByUser(ctx, userID, 0, matchCandidateLimit)
	if err != nil {
		return nil, err
	}

	extracted := match.ExtractedEntity{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Address: input.Address,
		TaxID:   input.TaxID,
	}
	result := match.Match(extracted, match.ClientCandidates(clients), domain.MatchKindClient)
	return &result, nil
}
