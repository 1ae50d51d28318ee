package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"billforge/internal/port"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendDocumentEmail(ctx context.Context, email port.DocumentEmail) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}
