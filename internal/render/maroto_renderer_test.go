package render_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billforge/internal/config"
	"billforge/internal/domain"
	"billforge/internal/render"
)

func testRenderer() *domain.Document {
	return &domain.Document{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Type:        domain.DocumentTypeInvoice,
		Identifier:  "INV-0042",
		Status:      domain.StatusDraft,
		ClientName:  "Acme Studio",
		ClientEmail: "billing@acme.example",
		IssueDate:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:     time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		Items: domain.LineItems{
			{Description: "Brand refresh", Quantity: "2", UnitPrice: "450", TaxRate: "19", Subtotal: "900.00", TaxAmount: "171.00", Total: "1071.00"},
			{Description: "Hosting (March)", Quantity: "1", UnitPrice: "25", TaxRate: "0", Subtotal: "25.00", TaxAmount: "0.00", Total: "25.00"},
		},
		Discount:  "50",
		Subtotal:  "925.00",
		TaxAmount: "171.00",
		Total:     "1046.00",
		Notes:     "Payment within 30 days.",
	}
}

func TestMarotoRenderer_RenderDocument(t *testing.T) {
	r := render.NewRenderer(config.PDFConfig{
		CompanyName:    "Studio Nine",
		CompanyAddress: "12 Harbor Lane, Rotterdam",
		FooterNote:     "Thank you for your business.",
	})

	pdf, err := r.RenderDocument(testRenderer())
	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestMarotoRenderer_RenderDocument_FlaggedQuote(t *testing.T) {
	r := render.NewRenderer(config.PDFConfig{CompanyName: "Studio Nine"})

	doc := testRenderer()
	doc.Type = domain.DocumentTypeQuote
	doc.Identifier = "Q-00007"
	doc.ClientName = ""
	doc.ClientEmail = ""
	doc.NeedsClarification = true
	doc.ClarificationQuestions = domain.StringList{
		"Which client is this document for?",
		"What should the unit price be?",
	}

	pdf, err := r.RenderDocument(doc)
	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}
