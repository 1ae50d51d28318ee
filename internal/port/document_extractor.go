package port

import (
	"context"
	"encoding/json"

	"billforge/internal/domain"
)

// ExtractInput carries the free-form text to run structured extraction on.
type ExtractInput struct {
	Text         string
	DocumentType domain.DocumentType
}

// ExtractOutput contains the raw structured result from an LLM extractor.
// RawJSON is passed to normalization untrusted; callers must not assume it
// is well-formed.
type ExtractOutput struct {
	RawJSON    json.RawMessage
	ModelUsed  string
	PromptUsed string
}

// DocumentExtractor abstracts LLM-based extraction of document details
// from free text.
type DocumentExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}
