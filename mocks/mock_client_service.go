package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"billforge/internal/domain"
	"billforge/internal/match"
	"billforge/internal/service"
)

// MockClientService is a mock implementation of service.ClientService.
type MockClientService struct {
	mock.Mock
}

func (m *MockClientService) Create(ctx context.Context, userID uuid.UUID, input service.CreateClientInput) (*domain.Client, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientService) GetByID(ctx context.Context, userID, clientID uuid.UUID) (*domain.Client, error) {
	args := m.Called(ctx, userID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientService) List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Client, int, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Client), args.Int(1), args.Error(2)
}

func (m *MockClientService) Update(ctx context.Context, userID, clientID uuid.UUID, input service.UpdateClientInput) (*domain.Client, error) {
	args := m.Called(ctx, userID, clientID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientService) Delete(ctx context.Context, userID, clientID uuid.UUID) error {
	args := m.Called(ctx, userID, clientID)
	return args.Error(0)
}

func (m *MockClientService) Match(ctx context.Context, userID uuid.UUID, input service.MatchClientInput) (*match.Result, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*match.Result), args.Error(1)
}
