package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"billforge/internal/domain"
	"billforge/internal/port"
	"billforge/internal/service"
)

// MockDocumentService is a mock implementation of service.DocumentService.
type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Create(ctx context.Context, userID uuid.UUID, input service.CreateDocumentInput) (*service.DocumentResult, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentResult), args.Error(1)
}

func (m *MockDocumentService) Extract(ctx context.Context, userID uuid.UUID, input service.ExtractDocumentInput) (*service.DraftResult, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DraftResult), args.Error(1)
}

func (m *MockDocumentService) GetByID(ctx context.Context, userID, docID uuid.UUID) (*domain.Document, error) {
	args := m.Called(ctx, userID, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, userID uuid.UUID, input service.ListDocumentsInput) ([]domain.Document, int, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Document), args.Int(1), args.Error(2)
}

func (m *MockDocumentService) ListForExport(ctx context.Context, userID uuid.UUID, filter port.DocumentFilter) ([]domain.Document, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, userID, docID uuid.UUID, input service.UpdateDocumentInput) (*service.DocumentResult, error) {
	args := m.Called(ctx, userID, docID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentResult), args.Error(1)
}

func (m *MockDocumentService) UpdateStatus(ctx context.Context, userID, docID uuid.UUID, status domain.DocumentStatus) (*domain.Document, error) {
	args := m.Called(ctx, userID, docID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, userID, docID uuid.UUID) error {
	args := m.Called(ctx, userID, docID)
	return args.Error(0)
}

func (m *MockDocumentService) RenderPDF(ctx context.Context, userID, docID uuid.UUID) ([]byte, *domain.Document, error) {
	args := m.Called(ctx, userID, docID)
	var pdf []byte
	if args.Get(0) != nil {
		pdf = args.Get(0).([]byte)
	}
	var doc *domain.Document
	if args.Get(1) != nil {
		doc = args.Get(1).(*domain.Document)
	}
	return pdf, doc, args.Error(2)
}

func (m *MockDocumentService) Send(ctx context.Context, userID, docID uuid.UUID) (*domain.Document, error) {
	args := m.Called(ctx, userID, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}
