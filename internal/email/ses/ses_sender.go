package ses

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"billforge/internal/config"
	"billforge/internal/domain"
	"billforge/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSender creates an SES-backed EmailSender. Static credentials are used
// when configured; otherwise the default AWS credential chain applies.
func NewSender(ctx context.Context, cfg config.EmailConfig) (port.EmailSender, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return &sesSender{
		client:      sesv2.NewFromConfig(awsCfg),
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
	}, nil
}

func (s *sesSender) SendDocumentEmail(ctx context.Context, email port.DocumentEmail) error {
	doc := email.Document

	subject := fmt.Sprintf("%s %s from %s", docLabel(doc.Type), doc.Identifier, s.fromName)
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{email.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(buildDocumentHTML(doc, s.fromName))},
					Text: &types.Content{Data: aws.String(buildDocumentText(doc, s.fromName))},
				},
				Attachments: []types.Attachment{{
					// Identifiers are generated as <PREFIX>-<digits>, safe as a filename.
					FileName:    aws.String(doc.Identifier + ".pdf"),
					ContentType: aws.String("application/pdf"),
					RawContent:  email.PDF,
				}},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func docLabel(t domain.DocumentType) string {
	if t == domain.DocumentTypeQuote {
		return "Quote"
	}
	return "Invoice"
}

func dueLabel(t domain.DocumentType) string {
	if t == domain.DocumentTypeQuote {
		return "Valid until"
	}
	return "Due date"
}

func buildDocumentText(doc *domain.Document, fromName string) string {
	return fmt.Sprintf(
		"Hi %s,\n\nPlease find attached %s %s.\n\nTotal: %s\n%s: %s\n\n%s",
		doc.ClientName,
		docLabel(doc.Type), doc.Identifier,
		doc.Total,
		dueLabel(doc.Type), doc.DueDate.Format("02 Jan 2006"),
		fromName,
	)
}

func buildDocumentHTML(doc *domain.Document, fromName string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">%s %s</h2>
  <p>Hi %s,</p>
  <p>Please find the attached %s.</p>
  <table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
    <tr>
      <td style="padding: 8px; border-bottom: 1px solid #eee; color: #666;">Total</td>
      <td style="padding: 8px; border-bottom: 1px solid #eee; text-align: right; font-weight: bold;">%s</td>
    </tr>
    <tr>
      <td style="padding: 8px; border-bottom: 1px solid #eee; color: #666;">%s</td>
      <td style="padding: 8px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
    </tr>
  </table>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">%s</p>
</body>
</html>`,
		docLabel(doc.Type), doc.Identifier,
		doc.ClientName,
		docLabel(doc.Type),
		doc.Total,
		dueLabel(doc.Type), doc.DueDate.Format("02 Jan 2006"),
		fromName,
	)
}
