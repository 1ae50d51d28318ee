package port

import (
	"context"

	"billforge/internal/domain"
)

// DocumentEmail carries everything needed to deliver a document to a client.
type DocumentEmail struct {
	To       string
	Document *domain.Document
	PDF      []byte
}

// EmailSender defines the contract for sending documents to clients.
type EmailSender interface {
	SendDocumentEmail(ctx context.Context, email DocumentEmail) error
}
