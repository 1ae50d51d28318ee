package noop

import (
	"context"

	"go.uber.org/zap"

	"billforge/internal/port"
)

type noopSender struct {
	logger *zap.Logger
}

// NewSender creates an EmailSender that logs deliveries instead of sending
// them, so the send flow works in development without AWS credentials.
func NewSender(logger *zap.Logger) port.EmailSender {
	return &noopSender{logger: logger}
}

func (s *noopSender) SendDocumentEmail(_ context.Context, email port.DocumentEmail) error {
	s.logger.Info("noop email: document delivery skipped",
		zap.String("to", email.To),
		zap.String("identifier", email.Document.Identifier),
		zap.String("type", string(email.Document.Type)),
		zap.Int("pdf_bytes", len(email.PDF)),
	)
	return nil
}
