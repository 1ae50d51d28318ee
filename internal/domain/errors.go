package domain

import "errors"

var (
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrInvalidInput          = errors.New("invalid input")
	ErrNoLineItems           = errors.New("document has no line items")
	ErrInvalidDocumentType   = errors.New("invalid document type")
	ErrInvalidDocumentStatus = errors.New("status not allowed for this document type")
	ErrNoRecipient           = errors.New("document has no client email address")
	ErrExtractionUnavailable = errors.New("no extraction provider configured")
)
