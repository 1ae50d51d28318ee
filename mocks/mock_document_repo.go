package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"billforge/internal/domain"
	"billforge/internal/port"
)

// MockDocumentRepo is a mock implementation of port.DocumentRepository.
type MockDocumentRepo struct {
	mock.Mock
}

func (m *MockDocumentRepo) Create(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepo) GetByID(ctx context.Context, userID, docID uuid.UUID) (*domain.Document, error) {
	args := m.Called(ctx, userID, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepo) ListByUser(ctx context.Context, userID uuid.UUID, filter port.DocumentFilter, offset, limit int) ([]domain.Document, int, error) {
	args := m.Called(ctx, userID, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Document), args.Int(1), args.Error(2)
}

func (m *MockDocumentRepo) ListForExport(ctx context.Context, userID uuid.UUID, filter port.DocumentFilter) ([]domain.Document, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockDocumentRepo) LatestIdentifier(ctx context.Context, userID uuid.UUID, docType domain.DocumentType) (string, error) {
	args := m.Called(ctx, userID, docType)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentRepo) Update(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepo) UpdateStatus(ctx context.Context, userID, docID uuid.UUID, status domain.DocumentStatus) error {
	args := m.Called(ctx, userID, docID, status)
	return args.Error(0)
}

func (m *MockDocumentRepo) Delete(ctx context.Context, userID, docID uuid.UUID) error {
	args := m.Called(ctx, userID, docID)
	return args.Error(0)
}
